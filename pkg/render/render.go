// Package render serializes reconciled change records into the supported
// output formats: yaml, json, csv, a terminal table and an HTML plot.
package render

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/gitledger/pkg/histlog"
)

// Serialization format constants.
const (
	FormatYAML  = "yaml"
	FormatJSON  = "json"
	FormatCSV   = "csv"
	FormatTable = "table"
	FormatPlot  = "plot"
)

// ErrUnknownFormat is returned when the requested format is not supported.
var ErrUnknownFormat = errors.New("unknown output format")

// binaryCount is rendered in place of line counts for binary files,
// mirroring git's numstat output.
const binaryCount = "-"

// csvHeader is the column order of tabular output.
var csvHeader = []string{"additions", "deletions", "filename", "commit_id", "timestamp", "author", "message"}

// Formats lists the supported format names.
func Formats() []string {
	return []string{FormatYAML, FormatJSON, FormatCSV, FormatTable, FormatPlot}
}

// Records writes change records to the writer in the given format.
func Records(records []histlog.ChangeRecord, format string, w io.Writer) error {
	if records == nil {
		records = []histlog.ChangeRecord{}
	}

	switch format {
	case FormatYAML:
		return renderYAML(records, w)
	case FormatJSON:
		return renderJSON(records, w)
	case FormatCSV:
		return renderCSV(records, w)
	case FormatTable:
		return renderTable(records, w)
	case FormatPlot:
		return renderPlot(records, w)
	default:
		return fmt.Errorf("%w: %q (expected one of: %s)", ErrUnknownFormat, format, strings.Join(Formats(), ", "))
	}
}

func renderYAML(records []histlog.ChangeRecord, w io.Writer) error {
	data, err := yaml.Marshal(records)
	if err != nil {
		return fmt.Errorf("yaml marshal: %w", err)
	}

	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("yaml write: %w", err)
	}

	return nil
}

func renderJSON(records []histlog.ChangeRecord, w io.Writer) error {
	err := json.NewEncoder(w).Encode(records)
	if err != nil {
		return fmt.Errorf("json encode: %w", err)
	}

	return nil
}

func renderCSV(records []histlog.ChangeRecord, w io.Writer) error {
	cw := csv.NewWriter(w)

	err := cw.Write(csvHeader)
	if err != nil {
		return fmt.Errorf("csv write header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			countField(rec.Additions, rec.Binary),
			countField(rec.Deletions, rec.Binary),
			rec.Path,
			rec.Hash,
			strconv.FormatInt(rec.Timestamp, 10),
			rec.Author,
			rec.Message,
		}

		err = cw.Write(row)
		if err != nil {
			return fmt.Errorf("csv write row: %w", err)
		}
	}

	cw.Flush()

	err = cw.Error()
	if err != nil {
		return fmt.Errorf("csv flush: %w", err)
	}

	return nil
}

// countField renders one numstat count, restoring git's "-" for binary files.
func countField(n int, binary bool) string {
	if binary {
		return binaryCount
	}

	return strconv.Itoa(n)
}
