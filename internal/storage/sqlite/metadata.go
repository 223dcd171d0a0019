package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// SetMetadata stores a key/value pair, replacing any existing value.
func (s *Store) SetMetadata(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set metadata %s: %w", key, err)
	}
	return nil
}

// GetMetadata returns the value for key, or "" when the key is absent.
func (s *Store) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get metadata %s: %w", key, err)
	}
	return value, nil
}

func lastSyncKey(handle string) string {
	return "last_sync:" + handle
}

// LastSyncTime returns when the project's log was last imported, or the zero
// time when it never was.
func (s *Store) LastSyncTime(ctx context.Context, handle string) (time.Time, error) {
	value, err := s.GetMetadata(ctx, lastSyncKey(handle))
	if err != nil || value == "" {
		return time.Time{}, err
	}
	nanos, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed last sync time %q: %w", value, err)
	}
	return time.Unix(0, nanos).UTC(), nil
}

// SetLastSyncTime records the log import time for a project, stored as
// nanoseconds so it compares exactly against file mtimes.
func (s *Store) SetLastSyncTime(ctx context.Context, handle string, t time.Time) error {
	return s.SetMetadata(ctx, lastSyncKey(handle), strconv.FormatInt(t.UnixNano(), 10))
}
