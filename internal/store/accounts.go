package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Account is one tracked sponsor-funded account.
//
// Pubkey, OwnerProgramAtCreation, FundedLamports and CreationSlot are funding
// facts set once at discovery and never changed. OwnerProgram, Executable,
// DataSize, Lamports and LastActivitySlot are observed state overwritten by
// the analyzer. Closed is monotonic: once true it never reverts.
type Account struct {
	Pubkey                 string
	OwnerProgram           string
	OwnerProgramAtCreation string
	FundedLamports         uint64
	CreationSlot           uint64
	LastActivitySlot       *uint64
	Closed                 bool
	Executable             bool
	DataSize               uint64
	Lamports               uint64
	CreatedAt              time.Time
}

const accountColumns = `account_pubkey, owner_program, owner_at_creation, funded_lamports,
	creation_slot, last_activity_slot, is_closed, is_executable, data_size, lamports, created_at`

// InsertAccount registers a newly discovered account. Discovery is
// idempotent: a duplicate pubkey is silently ignored, never overwritten.
// Returns whether a new row was inserted.
func (s *Store) InsertAccount(ctx context.Context, acc Account) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO sponsored_accounts
		(account_pubkey, owner_program, owner_at_creation, funded_lamports, creation_slot, lamports)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(account_pubkey) DO NOTHING
	`,
		acc.Pubkey,
		acc.OwnerProgram,
		acc.OwnerProgram,
		acc.FundedLamports,
		acc.CreationSlot,
		acc.FundedLamports,
	)
	if err != nil {
		return false, fmt.Errorf("insert account %s: %w", acc.Pubkey, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert account %s: %w", acc.Pubkey, err)
	}
	return n > 0, nil
}

// GetAccount returns the account with the given pubkey.
// The second return value is false when no such account is tracked.
func (s *Store) GetAccount(ctx context.Context, pubkey string) (Account, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM sponsored_accounts
		WHERE account_pubkey = ?
	`, pubkey)

	acc, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return Account{}, false, nil
	}
	if err != nil {
		return Account{}, false, fmt.Errorf("get account %s: %w", pubkey, err)
	}
	return acc, true, nil
}

// ListAccounts returns all tracked accounts, open and closed, ordered by
// pubkey for deterministic output.
func (s *Store) ListAccounts(ctx context.Context) ([]Account, error) {
	return s.listAccounts(ctx, `
		SELECT `+accountColumns+`
		FROM sponsored_accounts
		ORDER BY account_pubkey
	`)
}

// ListOpenAccounts returns tracked accounts that have not been closed.
// Closed accounts are terminal and never re-analyzed or re-evaluated.
func (s *Store) ListOpenAccounts(ctx context.Context) ([]Account, error) {
	return s.listAccounts(ctx, `
		SELECT `+accountColumns+`
		FROM sponsored_accounts
		WHERE is_closed = 0
		ORDER BY account_pubkey
	`)
}

func (s *Store) listAccounts(ctx context.Context, query string) ([]Account, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}

	if accounts == nil {
		accounts = []Account{}
	}
	return accounts, nil
}

// UpdateObserved overwrites the mutable observed-state fields of an open
// account with freshly fetched on-chain values. Closed accounts are never
// touched.
func (s *Store) UpdateObserved(ctx context.Context, pubkey, ownerProgram string, executable bool, dataSize, lamports uint64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sponsored_accounts
		SET owner_program = ?, is_executable = ?, data_size = ?, lamports = ?
		WHERE account_pubkey = ? AND is_closed = 0
	`, ownerProgram, boolToInt(executable), dataSize, lamports, pubkey)
	if err != nil {
		return fmt.Errorf("update observed state %s: %w", pubkey, err)
	}
	return nil
}

// UpdateActivity records the slot at which activity was last observed.
func (s *Store) UpdateActivity(ctx context.Context, pubkey string, slot uint64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sponsored_accounts
		SET last_activity_slot = ?
		WHERE account_pubkey = ? AND is_closed = 0
	`, slot, pubkey)
	if err != nil {
		return fmt.Errorf("update activity %s: %w", pubkey, err)
	}
	return nil
}

// MarkClosed transitions an account to the terminal closed state.
// The transition is monotonic; there is no un-close.
func (s *Store) MarkClosed(ctx context.Context, pubkey string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sponsored_accounts
		SET is_closed = 1
		WHERE account_pubkey = ?
	`, pubkey)
	if err != nil {
		return fmt.Errorf("mark closed %s: %w", pubkey, err)
	}
	return nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(r rowScanner) (Account, error) {
	var (
		acc       Account
		activity  sql.NullInt64
		closed    int
		exec      int
		createdAt string
	)
	err := r.Scan(
		&acc.Pubkey,
		&acc.OwnerProgram,
		&acc.OwnerProgramAtCreation,
		&acc.FundedLamports,
		&acc.CreationSlot,
		&activity,
		&closed,
		&exec,
		&acc.DataSize,
		&acc.Lamports,
		&createdAt,
	)
	if err != nil {
		return Account{}, err
	}

	if activity.Valid {
		v := uint64(activity.Int64)
		acc.LastActivitySlot = &v
	}
	acc.Closed = closed != 0
	acc.Executable = exec != 0
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		acc.CreatedAt = t
	}
	return acc, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
