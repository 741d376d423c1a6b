package store

import (
	"context"
	"database/sql"
	"fmt"
)

const lastSignatureKey = "last_signature"

// LastScanSignature returns the newest transaction signature the scanner has
// already processed, or "" when no checkpoint exists yet.
func (s *Store) LastScanSignature(ctx context.Context) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM settings WHERE key = ?
	`, lastSignatureKey).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get scan checkpoint: %w", err)
	}
	return value, nil
}

// SaveScanSignature records the newest processed signature so subsequent
// scans stop there instead of re-walking already-processed history.
func (s *Store) SaveScanSignature(ctx context.Context, signature string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, lastSignatureKey, signature)
	if err != nil {
		return fmt.Errorf("save scan checkpoint: %w", err)
	}
	return nil
}

// ClearScanSignature removes the checkpoint, forcing the next scan to walk
// the full lookback window.
func (s *Store) ClearScanSignature(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM settings WHERE key = ?
	`, lastSignatureKey)
	if err != nil {
		return fmt.Errorf("clear scan checkpoint: %w", err)
	}
	return nil
}
