/*
Package csvlog provides the default notification log: an append-only CSV file.

FILE FORMAT:
  timestamp,material_id,present_stock,safety_stock
  2025-03-10T09:30:00Z,100234,40,50

  The header is written once, by the append that creates the file.
  Timestamps are RFC3339 in UTC.

APPEND-ONLY ENFORCEMENT:
  The file is opened with O_APPEND and each record is encoded in memory and
  written with a single Write call. Nothing ever truncates or rewrites it.

CONCURRENCY:
  A mutex serializes appends within the process so rows never interleave.
  Separate processes sharing the file are not coordinated.

SEE ALSO:
  - forecast/notify.go: Interface definition
  - store/sqlite/sqlite.go: SQLite implementation
*/
package csvlog

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/accountrms/forecasting/forecast"
)

// Header is the first line of every log file.
var Header = []string{"timestamp", "material_id", "present_stock", "safety_stock"}

// Log implements forecast.NotificationLog on a CSV file.
type Log struct {
	path string
	mu   sync.Mutex
}

func New(path string) *Log {
	return &Log{path: path}
}

func (l *Log) Path() string { return l.path }

// Append writes one row, creating the file and its header on first use.
func (l *Log) Append(ctx context.Context, rec forecast.NotificationRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &forecast.IOFailure{Op: "append", Path: l.path, Err: err}
		}
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return &forecast.IOFailure{Op: "append", Path: l.path, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return &forecast.IOFailure{Op: "append", Path: l.path, Err: err}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if info.Size() == 0 {
		_ = w.Write(Header)
	}
	_ = w.Write(encode(rec))
	w.Flush()
	if err := w.Error(); err != nil {
		return &forecast.IOFailure{Op: "append", Path: l.path, Err: err}
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		return &forecast.IOFailure{Op: "append", Path: l.path, Err: err}
	}
	return nil
}

// List reads every record in file order. A missing file is an empty log.
func (l *Log) List(ctx context.Context) ([]forecast.NotificationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return []forecast.NotificationRecord{}, nil
	}
	if err != nil {
		return nil, &forecast.IOFailure{Op: "list", Path: l.path, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(Header)

	result := []forecast.NotificationRecord{}
	for line := 1; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &forecast.IOFailure{Op: "list", Path: l.path, Err: err}
		}
		if line == 1 {
			continue
		}
		rec, err := decode(row)
		if err != nil {
			return nil, &forecast.IOFailure{Op: "list", Path: l.path, Err: fmt.Errorf("line %d: %w", line, err)}
		}
		result = append(result, rec)
	}
	return result, nil
}

func encode(rec forecast.NotificationRecord) []string {
	return []string{
		rec.Timestamp.UTC().Format(time.RFC3339),
		string(rec.MaterialID),
		strconv.FormatFloat(rec.PresentStock, 'f', -1, 64),
		strconv.FormatFloat(rec.SafetyStock, 'f', -1, 64),
	}
}

func decode(row []string) (forecast.NotificationRecord, error) {
	ts, err := time.Parse(time.RFC3339, row[0])
	if err != nil {
		return forecast.NotificationRecord{}, err
	}
	present, err := strconv.ParseFloat(row[2], 64)
	if err != nil {
		return forecast.NotificationRecord{}, err
	}
	safety, err := strconv.ParseFloat(row[3], 64)
	if err != nil {
		return forecast.NotificationRecord{}, err
	}
	return forecast.NotificationRecord{
		Timestamp:    ts,
		MaterialID:   forecast.MaterialID(row[1]),
		PresentStock: present,
		SafetyStock:  safety,
	}, nil
}
