package repository

import (
	"context"
	"errors"
	"time"
)

// ErrVersionConflict is returned when a guarded update finds a stale row
// version, meaning another writer got there first.
var ErrVersionConflict = errors.New("row version conflict")

// TxRunner runs a function inside a storage transaction. Everything the
// function writes through the repositories commits or rolls back as a unit.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

func durationToSeconds(d *time.Duration) *int64 {
	if d == nil {
		return nil
	}
	secs := int64(d.Seconds())
	return &secs
}

func secondsToDuration(secs *int64) *time.Duration {
	if secs == nil {
		return nil
	}
	d := time.Duration(*secs) * time.Second
	return &d
}
