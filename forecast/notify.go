/*
notify.go - Low-stock notifier and the append-only event log

PURPOSE:
  Compares a user-observed present-stock reading against the safety stock and
  records every breach in a shared event log. The log is the one mutable
  shared resource in the system.

CRITICAL INVARIANTS:
  1. APPEND-ONLY: No Update, No Delete. EVER.
  2. ORDERED: Records have no identity beyond insertion order
  3. NO DE-DUPLICATION: Every qualifying observation appends a new record,
     even when identical to the previous one
  4. NOTHING DROPPED: A failed append is returned to the caller as IOFailure

IMPLEMENTATIONS:
  - store/csvlog/csvlog.go: CSV file with a header written on creation (default)
  - store/sqlite/sqlite.go: SQLite table
  - forecast/store/memory.go: In-memory for testing

EXAMPLE:
  n := forecast.NewNotifier(csvlog.New("files/notifications.csv"))
  rec, err := n.Check(ctx, "100234", 40, 50)
  // rec.Appended == true, one row written
*/
package forecast

import (
	"context"
	"math"
	"time"
)

// =============================================================================
// NOTIFICATION LOG - Interface for append-only persistence
// =============================================================================

// NotificationLog persists low-stock records in insertion order.
// Implementations must serialize concurrent appends so rows never interleave.
type NotificationLog interface {
	// Append persists one record. This is the ONLY write operation.
	Append(ctx context.Context, rec NotificationRecord) error

	// List returns all records in insertion order. Read-only.
	List(ctx context.Context) ([]NotificationRecord, error)
}

// MaterialHistory is implemented by logs that can filter by material
// themselves (the SQLite backend uses an index).
type MaterialHistory interface {
	ListByMaterial(ctx context.Context, material MaterialID) ([]NotificationRecord, error)
}

// History returns the records of one material in insertion order, falling
// back to a scan of List for logs without their own filter.
func History(ctx context.Context, log NotificationLog, material MaterialID) ([]NotificationRecord, error) {
	if h, ok := log.(MaterialHistory); ok {
		return h.ListByMaterial(ctx, material)
	}
	all, err := log.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []NotificationRecord{}
	for _, r := range all {
		if r.MaterialID == material {
			out = append(out, r)
		}
	}
	return out, nil
}

// =============================================================================
// NOTIFIER
// =============================================================================

type Notifier struct {
	Log   NotificationLog
	Clock func() time.Time
}

func NewNotifier(log NotificationLog) *Notifier {
	return &Notifier{Log: log, Clock: time.Now}
}

// Notification is the outcome of one check.
type Notification struct {
	Record   NotificationRecord
	Appended bool
}

// Check appends a record when reading < safety. A reading at or above the
// safety stock appends nothing.
func (n *Notifier) Check(ctx context.Context, material MaterialID, reading, safety float64) (Notification, error) {
	if math.IsNaN(reading) || math.IsInf(reading, 0) || reading < 0 {
		return Notification{}, &InvalidRangeError{Field: "present_stock", Value: reading, Want: ">= 0"}
	}
	if math.IsNaN(safety) || math.IsInf(safety, 0) || safety < 0 {
		return Notification{}, &InvalidRangeError{Field: "safety_stock", Value: safety, Want: ">= 0"}
	}

	rec := NotificationRecord{
		MaterialID:   material,
		PresentStock: reading,
		SafetyStock:  safety,
	}
	if reading >= safety {
		return Notification{Record: rec}, nil
	}

	rec.Timestamp = n.now()
	if err := n.Log.Append(ctx, rec); err != nil {
		return Notification{Record: rec}, err
	}
	return Notification{Record: rec, Appended: true}, nil
}

func (n *Notifier) now() time.Time {
	if n.Clock == nil {
		return time.Now()
	}
	return n.Clock()
}
