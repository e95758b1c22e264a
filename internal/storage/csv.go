package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/Skufu/triage/internal/consult"
)

var csvHeader = []string{"DateTime", "FullName", "Age", "Symptoms", "Condition", "Urgency", "Advice"}

// CSVLog appends consultation rows to a flat comma-separated file.
type CSVLog struct {
	path string
	mu   sync.Mutex
}

// NewCSVLog creates the file with its header row when it does not exist yet.
// An existing file is left untouched.
func NewCSVLog(path string) (*CSVLog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure csv log dir: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	switch {
	case errors.Is(err, fs.ErrExist):
		return &CSVLog{path: path}, nil
	case err != nil:
		return nil, fmt.Errorf("create csv log: %w", err)
	}
	defer f.Close()

	if err := writeRow(f, csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	return &CSVLog{path: path}, nil
}

func (l *CSVLog) Append(_ context.Context, r consult.Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open csv log: %w", err)
	}
	defer f.Close()

	row := []string{r.Timestamp, r.FullName, r.Age, r.Symptoms, r.Condition, string(r.Urgency), r.Advice}
	if err := writeRow(f, row); err != nil {
		return fmt.Errorf("append csv row: %w", err)
	}
	return nil
}

func writeRow(f *os.File, row []string) error {
	w := csv.NewWriter(f)
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
