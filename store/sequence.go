package store

import (
	"context"

	"github.com/gluesql-go/gluesql/value"
)

// RowEntry is one (Key, DataRow) pair yielded by a scan.
type RowEntry struct {
	Key value.Key
	Row DataRow
}

// LazySequence is the concrete async-iterator abstraction storages hand
// back from scans, keeping a storage's own iteration type out of operator
// signatures. Next returns (entry, true, nil) per row, (zero, false, nil)
// at end of sequence, or (zero, false, err) on failure.
// Every call is a suspension point.
type LazySequence interface {
	Next(ctx context.Context) (RowEntry, bool, error)
	Close() error
}

// SliceSequence adapts a pre-materialized slice into a LazySequence; every
// in-repo storage (including storage/memory) builds its scans on top of it.
type SliceSequence struct {
	entries []RowEntry
	pos     int
}

func NewSliceSequence(entries []RowEntry) *SliceSequence {
	return &SliceSequence{entries: entries}
}

func (s *SliceSequence) Next(ctx context.Context) (RowEntry, bool, error) {
	if err := ctx.Err(); err != nil {
		return RowEntry{}, false, err
	}
	if s.pos >= len(s.entries) {
		return RowEntry{}, false, nil
	}
	e := s.entries[s.pos]
	s.pos++
	return e, true, nil
}

func (s *SliceSequence) Close() error { return nil }
