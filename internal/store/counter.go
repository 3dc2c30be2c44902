package store

import (
	"context"
	"strconv"

	"github.com/thurbox/thurbox/internal/thurerr"
)

// NextSessionCounter atomically increments and returns the
// instance-scoped session_counter used to number sessions
// deterministically across restarts.
func (s *Store) NextSessionCounter(ctx context.Context) (uint64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, thurerr.New(thurerr.StoreUnavailable, "begin tx", err)
	}
	defer tx.Rollback()

	var current uint64
	if err := tx.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = 'session_counter'").Scan(&valueScanner{&current}); err != nil {
		return 0, thurerr.New(thurerr.StoreUnavailable, "read session_counter", err)
	}
	next := current + 1
	if _, err := tx.ExecContext(ctx, "UPDATE metadata SET value = ? WHERE key = 'session_counter'", strconv.FormatUint(next, 10)); err != nil {
		return 0, thurerr.New(thurerr.StoreConflict, "write session_counter", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, thurerr.New(thurerr.StoreUnavailable, "commit session_counter", err)
	}
	return next, nil
}

// MergeSessionCounter reconciles a counter value observed from a peer
// instance's snapshot (via the file-based sync layer) by taking
// max(local, remote), so concurrently-running instances converge on a
// monotonically increasing counter without coordination.
func (s *Store) MergeSessionCounter(ctx context.Context, remote uint64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return thurerr.New(thurerr.StoreUnavailable, "begin tx", err)
	}
	defer tx.Rollback()

	var current uint64
	if err := tx.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = 'session_counter'").Scan(&valueScanner{&current}); err != nil {
		return thurerr.New(thurerr.StoreUnavailable, "read session_counter", err)
	}
	if remote <= current {
		return nil
	}
	if _, err := tx.ExecContext(ctx, "UPDATE metadata SET value = ? WHERE key = 'session_counter'", strconv.FormatUint(remote, 10)); err != nil {
		return thurerr.New(thurerr.StoreConflict, "merge session_counter", err)
	}
	return tx.Commit()
}

// valueScanner adapts a uint64 destination to sql.Scanner so the
// TEXT-typed metadata.value column can be read directly into it.
type valueScanner struct{ dst *uint64 }

func (v *valueScanner) Scan(src any) error {
	var s string
	switch t := src.(type) {
	case string:
		s = t
	case []byte:
		s = string(t)
	default:
		s = ""
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return err
	}
	*v.dst = n
	return nil
}
