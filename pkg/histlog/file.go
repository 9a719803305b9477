package histlog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pierrec/lz4/v4"
)

// CompressedExt marks an LZ4-compressed history log file.
const CompressedExt = ".lz4"

// lz4ReadFile decompresses an LZ4 frame on read and closes the backing file.
type lz4ReadFile struct {
	io.Reader
	f *os.File
}

// Close closes the backing file.
func (l *lz4ReadFile) Close() error {
	err := l.f.Close()
	if err != nil {
		return fmt.Errorf("close history log: %w", err)
	}

	return nil
}

// lz4WriteFile compresses writes through an LZ4 frame. Close flushes the
// frame before closing the backing file.
type lz4WriteFile struct {
	zw *lz4.Writer
	f  *os.File
}

// Write writes compressed data.
func (l *lz4WriteFile) Write(p []byte) (int, error) {
	n, err := l.zw.Write(p)
	if err != nil {
		return n, fmt.Errorf("lz4 write: %w", err)
	}

	return n, nil
}

// Close flushes the LZ4 frame and closes the backing file.
func (l *lz4WriteFile) Close() error {
	flushErr := l.zw.Close()
	closeErr := l.f.Close()

	if flushErr != nil {
		return fmt.Errorf("flush lz4 frame: %w", flushErr)
	}

	if closeErr != nil {
		return fmt.Errorf("close history log: %w", closeErr)
	}

	return nil
}

// OpenFile opens a history log for reading. Files named with CompressedExt
// are decompressed transparently.
func OpenFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open history log: %w", err)
	}

	if strings.HasSuffix(path, CompressedExt) {
		return &lz4ReadFile{Reader: lz4.NewReader(f), f: f}, nil
	}

	return f, nil
}

// CreateFile creates a history log for writing. The stream is compressed
// when compress is set or the path carries CompressedExt.
func CreateFile(path string, compress bool) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create history log: %w", err)
	}

	if compress || strings.HasSuffix(path, CompressedExt) {
		return &lz4WriteFile{zw: lz4.NewWriter(f), f: f}, nil
	}

	return f, nil
}
