package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ReclaimRecord is one row of the append-only reclaim audit log. Every
// reclaim attempt, dry-run or real, writes exactly one record. Records are
// never updated or deleted.
type ReclaimRecord struct {
	ID                int64
	Pubkey            string
	ReclaimedLamports uint64
	Reason            string
	TxSignature       string // empty for dry runs
	DryRun            bool
	CreatedAt         time.Time
}

// AppendReclaim appends one record to the audit log.
func (s *Store) AppendReclaim(ctx context.Context, rec ReclaimRecord) error {
	var sig any
	if rec.TxSignature != "" {
		sig = rec.TxSignature
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reclaim_history
		(account_pubkey, reclaimed_lamports, reason, tx_signature, dry_run)
		VALUES (?, ?, ?, ?, ?)
	`,
		rec.Pubkey,
		rec.ReclaimedLamports,
		rec.Reason,
		sig,
		boolToInt(rec.DryRun),
	)
	if err != nil {
		return fmt.Errorf("append reclaim record %s: %w", rec.Pubkey, err)
	}
	return nil
}

// ListReclaims returns the full audit log in insertion order.
func (s *Store) ListReclaims(ctx context.Context) ([]ReclaimRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_pubkey, reclaimed_lamports, reason, tx_signature, dry_run, created_at
		FROM reclaim_history
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query reclaim history: %w", err)
	}
	defer rows.Close()

	var records []ReclaimRecord
	for rows.Next() {
		var (
			rec       ReclaimRecord
			sig       sql.NullString
			dryRun    int
			createdAt string
		)
		if err := rows.Scan(&rec.ID, &rec.Pubkey, &rec.ReclaimedLamports, &rec.Reason, &sig, &dryRun, &createdAt); err != nil {
			return nil, fmt.Errorf("scan reclaim record: %w", err)
		}
		rec.TxSignature = sig.String
		rec.DryRun = dryRun != 0
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			rec.CreatedAt = t
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reclaim history: %w", err)
	}

	if records == nil {
		records = []ReclaimRecord{}
	}
	return records, nil
}

// TotalReclaimed sums reclaimed lamports over the audit log. Dry runs are
// excluded: they record would-be amounts, not returned funds.
func (s *Store) TotalReclaimed(ctx context.Context) (uint64, error) {
	var total sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT SUM(reclaimed_lamports) FROM reclaim_history WHERE dry_run = 0
	`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum reclaimed lamports: %w", err)
	}
	return uint64(total.Int64), nil
}
