package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ProtectionEntry is a manual override: its presence makes an account
// unconditionally ineligible for reclaim.
type ProtectionEntry struct {
	Pubkey    string
	Reason    string
	CreatedAt time.Time
}

// Protect adds a protection entry for a pubkey. Idempotent: protecting an
// already-protected account keeps the original reason. Returns whether a new
// entry was added.
func (s *Store) Protect(ctx context.Context, pubkey, reason string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO protected_accounts (account_pubkey, reason)
		VALUES (?, ?)
		ON CONFLICT(account_pubkey) DO NOTHING
	`, pubkey, reason)
	if err != nil {
		return false, fmt.Errorf("protect %s: %w", pubkey, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("protect %s: %w", pubkey, err)
	}
	return n > 0, nil
}

// Unprotect removes the protection entry for a pubkey.
// Returns whether an entry was removed.
func (s *Store) Unprotect(ctx context.Context, pubkey string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM protected_accounts WHERE account_pubkey = ?
	`, pubkey)
	if err != nil {
		return false, fmt.Errorf("unprotect %s: %w", pubkey, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("unprotect %s: %w", pubkey, err)
	}
	return n > 0, nil
}

// IsProtected reports whether a protection entry exists for the pubkey.
func (s *Store) IsProtected(ctx context.Context, pubkey string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM protected_accounts WHERE account_pubkey = ?
	`, pubkey).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("is protected %s: %w", pubkey, err)
	}
	return true, nil
}

// ListProtected returns all protection entries ordered by pubkey.
func (s *Store) ListProtected(ctx context.Context) ([]ProtectionEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT account_pubkey, reason, created_at
		FROM protected_accounts
		ORDER BY account_pubkey
	`)
	if err != nil {
		return nil, fmt.Errorf("query protected accounts: %w", err)
	}
	defer rows.Close()

	var entries []ProtectionEntry
	for rows.Next() {
		var (
			e         ProtectionEntry
			createdAt string
		)
		if err := rows.Scan(&e.Pubkey, &e.Reason, &createdAt); err != nil {
			return nil, fmt.Errorf("scan protection entry: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate protected accounts: %w", err)
	}

	if entries == nil {
		entries = []ProtectionEntry{}
	}
	return entries, nil
}
