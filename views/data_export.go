package views

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"motion-logger/models"
)

// CSVWriter is a concurrency-safe CSV row writer over any io.Writer.
// Errors are buffered by encoding/csv and surface on Flush.
type CSVWriter struct {
	mu   sync.Mutex
	csv  *csv.Writer
	rows uint64
}

// NewCSVWriter wraps w and writes header first when it is non-empty.
func NewCSVWriter(w io.Writer, header []string) (*CSVWriter, error) {
	cw := csv.NewWriter(w)
	if len(header) > 0 {
		if err := cw.Write(header); err != nil {
			return nil, fmt.Errorf("csv write header: %w", err)
		}
	}
	return &CSVWriter{csv: cw}, nil
}

// WriteRow appends a single CSV row. Thread-safe.
func (w *CSVWriter) WriteRow(row []string) {
	w.mu.Lock()
	_ = w.csv.Write(row) // error is buffered; checked on Flush
	w.rows++
	w.mu.Unlock()
}

// Flush pushes buffered rows to the underlying writer.
func (w *CSVWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.csv.Flush()
	return w.csv.Error()
}

// Rows returns the number of data rows written (excludes header).
func (w *CSVWriter) Rows() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rows
}

// WriteSeries streams series to w as acceleration CSV, with elapsed time
// measured from start, and returns the number of data rows written. A
// zero start reports every row at elapsed zero.
func WriteSeries(w io.Writer, series []models.Sample, start time.Time) (uint64, error) {
	cw, err := NewCSVWriter(w, models.Sample{}.CSVHeader())
	if err != nil {
		return 0, err
	}
	for _, s := range series {
		cw.WriteRow(s.CSVRow(start))
	}
	if err := cw.Flush(); err != nil {
		return cw.Rows(), fmt.Errorf("csv flush: %w", err)
	}
	return cw.Rows(), nil
}

// GenerateCSV renders series as acceleration CSV text:
//
//	Time,Acceleration
//	00:00:01.500,-0.0204
//
// It never fails; an empty series yields the header line only.
func GenerateCSV(series []models.Sample, start time.Time) string {
	var sb strings.Builder
	sb.Grow(len(ExportHeader) + 1 + len(series)*24)
	// strings.Builder writes cannot fail
	_, _ = WriteSeries(&sb, series, start)
	return sb.String()
}
