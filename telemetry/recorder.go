package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// Recorder keeps FrameStats rows and optionally streams them to a CSV file.
type Recorder struct {
	rows          []FrameStats
	file          *os.File
	headerWritten bool
}

// NewRecorder creates a recorder. An empty path keeps rows in memory only.
func NewRecorder(path string) (*Recorder, error) {
	r := &Recorder{}
	if path == "" {
		return r, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	r.file = f
	return r, nil
}

// Record appends s and writes it through when a file is attached.
func (r *Recorder) Record(s FrameStats) error {
	if r == nil {
		return nil
	}
	r.rows = append(r.rows, s)
	if r.file == nil {
		return nil
	}

	records := []FrameStats{s}
	if !r.headerWritten {
		if err := gocsv.Marshal(records, r.file); err != nil {
			return fmt.Errorf("writing telemetry: %w", err)
		}
		r.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, r.file); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// Rows returns the recorded rows in order.
func (r *Recorder) Rows() []FrameStats {
	if r == nil {
		return nil
	}
	return r.rows
}

// WriteCSV writes every recorded row with a header to w.
func (r *Recorder) WriteCSV(w io.Writer) error {
	return gocsv.Marshal(r.Rows(), w)
}

func (r *Recorder) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
