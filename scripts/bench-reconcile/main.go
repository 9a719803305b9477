// bench-reconcile measures reconciliation throughput and heap usage on a
// synthetic history log.
//
// Usage:
//
//	go run ./scripts/bench-reconcile --commits 100000 --files-per-commit 8 \
//	  --iterations 3 --profile-dir docs/profiles/reconcile
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/pierrec/lz4/v4"

	"github.com/Sumatoshi-tech/gitledger/pkg/reconcile"
)

func main() {
	commits := flag.Int("commits", 100000, "Number of synthetic commits to generate")
	filesPerCommit := flag.Int("files-per-commit", 8, "Numstat lines per commit")
	iterations := flag.Int("iterations", 3, "Number of timed reconcile passes")
	profileDir := flag.String("profile-dir", "", "Directory to write heap profiles (empty = no profiles)")
	cpuProfile := flag.Bool("cpu-profile", false, "Write CPU profile to profile-dir/cpu.prof")
	compressed := flag.Bool("lz4", false, "Feed the log through an LZ4 frame, as the CLI does for .lz4 files")

	flag.Parse()

	if *cpuProfile && *profileDir == "" {
		log.Fatal("--cpu-profile requires --profile-dir")
	}

	if *profileDir != "" {
		if err := os.MkdirAll(*profileDir, 0o755); err != nil {
			log.Fatalf("mkdir profile-dir: %v", err)
		}
	}

	if *cpuProfile {
		cpuPath := filepath.Join(*profileDir, "cpu.prof")

		cpuFile, cpuErr := os.Create(cpuPath)
		if cpuErr != nil {
			log.Fatalf("create cpu profile: %v", cpuErr)
		}
		defer cpuFile.Close()

		if startErr := pprof.StartCPUProfile(cpuFile); startErr != nil {
			log.Fatalf("start cpu profile: %v", startErr)
		}

		defer pprof.StopCPUProfile()

		log.Printf("CPU profiling enabled -> %s", cpuPath)
	}

	type heapSnapshot struct {
		label     string
		heapInUse uint64
		heapSys   uint64
		heapIdle  uint64
	}

	var snapshots []heapSnapshot

	takeSnapshot := func(label string) {
		runtime.GC()
		runtime.GC()

		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		snapshots = append(snapshots, heapSnapshot{
			label:     label,
			heapInUse: m.HeapInuse,
			heapSys:   m.HeapSys,
			heapIdle:  m.HeapIdle,
		})
		log.Printf("  [heap] %-30s inuse=%6.1f MB  sys=%6.1f MB  idle=%6.1f MB",
			label, float64(m.HeapInuse)/1e6, float64(m.HeapSys)/1e6, float64(m.HeapIdle)/1e6)
	}

	writeHeapProfile := func(name string) {
		if *profileDir == "" {
			return
		}

		runtime.GC()
		runtime.GC()

		path := filepath.Join(*profileDir, name)

		f, ferr := os.Create(path)
		if ferr != nil {
			log.Printf("warning: create heap profile %s: %v", path, ferr)

			return
		}
		defer f.Close()

		if perr := pprof.WriteHeapProfile(f); perr != nil {
			log.Printf("warning: write heap profile %s: %v", path, perr)
		}
	}

	takeSnapshot("before_generate")

	data := generateLog(*commits, *filesPerCommit)
	log.Printf("generated %d commits x %d files (%.1f MB)",
		*commits, *filesPerCommit, float64(len(data))/1e6)

	if *compressed {
		var buf bytes.Buffer

		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			log.Fatalf("compress log: %v", err)
		}

		if err := w.Close(); err != nil {
			log.Fatalf("flush lz4 frame: %v", err)
		}

		log.Printf("compressed to %.1f MB", float64(buf.Len())/1e6)
		data = buf.Bytes()
	}

	takeSnapshot("after_generate")
	writeHeapProfile("heap_after_generate.prof")

	type passResult struct {
		records int
		lines   int
		elapsed time.Duration
	}

	var results []passResult

	for iter := 1; iter <= *iterations; iter++ {
		var in io.Reader = bytes.NewReader(data)
		if *compressed {
			in = lz4.NewReader(in)
		}

		start := time.Now()

		records, stats, err := reconcile.Flatten(in, nil)
		if err != nil {
			log.Fatalf("reconcile pass %d: %v", iter, err)
		}

		elapsed := time.Since(start)
		results = append(results, passResult{records: len(records), lines: stats.Lines(), elapsed: elapsed})
		log.Printf("pass %d/%d: %d records in %v", iter, *iterations, len(records), elapsed.Round(time.Millisecond))

		if stats.Malformed > 0 {
			log.Fatalf("generator produced %d malformed lines", stats.Malformed)
		}

		if iter == 1 {
			takeSnapshot("after_first_pass")
			writeHeapProfile("heap_after_first_pass.prof")
		}
	}

	takeSnapshot("after_all_passes")
	writeHeapProfile("heap_after_all_passes.prof")

	// Print summary tables.
	fmt.Println()
	fmt.Println("=== Reconcile Throughput ===")
	fmt.Printf("%-6s %12s %12s %12s %10s\n", "Pass", "Records", "Lines", "Elapsed", "MB/s")
	fmt.Println("-------+------------+------------+------------+----------")

	for i, r := range results {
		mbps := float64(len(data)) / 1e6 / r.elapsed.Seconds()
		fmt.Printf("%-6d %12d %12d %12v %10.1f\n", i+1, r.records, r.lines, r.elapsed.Round(time.Millisecond), mbps)
	}

	fmt.Println()
	fmt.Println("=== Heap Memory Timeline ===")
	fmt.Printf("%-30s %10s %10s %10s\n", "Phase", "InUse(MB)", "Sys(MB)", "Idle(MB)")
	fmt.Println("------------------------------+----------+----------+----------")

	for _, s := range snapshots {
		fmt.Printf("%-30s %10.1f %10.1f %10.1f\n",
			s.label, float64(s.heapInUse)/1e6, float64(s.heapSys)/1e6, float64(s.heapIdle)/1e6)
	}
}

// authors cycle through the metadata lines so summaries have a few buckets.
var authors = []string{"Alice", "Bob", "Carol", "Dave"}

// generateLog builds a well-formed interleaved history log: one metadata line
// per commit followed by filesPerCommit numstat lines, with every 50th file
// binary.
func generateLog(commits, filesPerCommit int) []byte {
	var buf bytes.Buffer

	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).Unix()

	for i := 0; i < commits; i++ {
		fmt.Fprintf(&buf, "\t\t\t%040x\t%d\t%s\tCommit %d\n",
			i, base+int64(i)*60, authors[i%len(authors)], i)

		for j := 0; j < filesPerCommit; j++ {
			if (i*filesPerCommit+j)%50 == 49 {
				fmt.Fprintf(&buf, "-\t-\tassets/blob%d.bin\n", j)

				continue
			}

			fmt.Fprintf(&buf, "%d\t%d\tsrc/pkg%d/file%d.go\n", (i*7+j*13)%400, (i*3+j*5)%120, i%25, j)
		}
	}

	return buf.Bytes()
}
