// Package tabular implements ports.FileReader over plain XLSX and CSV
// telemetry exports: each file is expected to carry a header row followed
// by two columns, a timestamp and a value; the value column's header may
// name the reported unit in parentheses (spec.md §6's file-reader
// collaborator).
package tabular

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"chillgrid/domain/signal"
	"chillgrid/ports"
)

// Reader reads per-file (timestamp, value) rows from a directory of XLSX
// and CSV exports. It implements ports.FileReader.
type Reader struct{}

// NewReader creates a tabular file reader.
func NewReader() *Reader { return &Reader{} }

// ListFiles enumerates .xlsx and .csv files directly under dir.
func (r *Reader) ListFiles(ctx context.Context, dir string) ([]ports.SourceFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory: %w", err)
	}

	var out []ports.SourceFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".xlsx" && ext != ".csv" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, ports.SourceFile{Name: e.Name(), Size: info.Size()})
	}
	return out, nil
}

// ReadRows reads one file's (timestamp, value) pairs in original order,
// performing no interpolation or reordering (spec.md §6).
func (r *Reader) ReadRows(ctx context.Context, dir string, file ports.SourceFile) ([]ports.RawRow, string, error) {
	path := filepath.Join(dir, file.Name)
	ext := strings.ToLower(filepath.Ext(file.Name))

	start := time.Now()
	var rawRows [][]string
	var err error
	switch ext {
	case ".csv":
		rawRows, err = readCSV(path)
	case ".xlsx":
		rawRows, err = readXLSX(path)
	default:
		return nil, "", fmt.Errorf("unsupported file type: %s", ext)
	}
	if err != nil {
		return nil, "", err
	}
	log.Printf("[tabular] read %d rows from %s in %s", len(rawRows), file.Name, time.Since(start))

	if len(rawRows) < 2 {
		return nil, "", fmt.Errorf("%s: expected a header row and at least one data row", file.Name)
	}

	reportedUnit := detectUnitHeader(rawRows[0])

	rows := make([]ports.RawRow, 0, len(rawRows)-1)
	for i, row := range rawRows[1:] {
		if len(row) < 2 {
			continue
		}
		t, err := parseTimestamp(row[0])
		if err != nil {
			return nil, "", fmt.Errorf("%s row %d: bad timestamp %q: %w", file.Name, i+2, row[0], err)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			continue // non-numeric cell: skip, not a structural error
		}
		rows = append(rows, ports.RawRow{Time: signal.SampleTime(t), Value: v})
	}
	return rows, reportedUnit, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening csv file: %w", err)
	}
	defer f.Close()
	return csv.NewReader(f).ReadAll()
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening xlsx file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found")
	}
	return f.GetRows(sheets[0])
}

// detectUnitHeader looks for a unit marker in the value column header,
// e.g. "value (degF)" -> "degF".
func detectUnitHeader(header []string) string {
	if len(header) < 2 {
		return ""
	}
	col := header[1]
	if start := strings.Index(col, "("); start >= 0 {
		if end := strings.Index(col[start:], ")"); end > 0 {
			return strings.TrimSpace(col[start+1 : start+end])
		}
	}
	return ""
}

// parseTimestamp accepts either a raw epoch-seconds number or an RFC3339
// timestamp; the pipeline only cares about relative ordering (spec.md §3).
func parseTimestamp(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return float64(t.Unix()), nil
	}
	return 0, fmt.Errorf("not a numeric timestamp or RFC3339 string")
}
