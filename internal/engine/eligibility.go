package engine

import (
	"github.com/kora-labs/rent-reclaim/internal/chain"
	"github.com/kora-labs/rent-reclaim/internal/store"
)

// ActivityWindow is the minimum slot distance since last observed activity
// before an account is considered idle enough to reclaim.
const ActivityWindow = 10_000

// Decision reasons. Every decision carries exactly one of these.
const (
	ReasonExecutable     = "executable account"
	ReasonRecentlyActive = "recently active"
	ReasonUnknownProgram = "unknown program, no close support"
	ReasonAlreadyClosed  = "already closed"
	ReasonKnownClosable  = "known closable program"
	ReasonSystemEmpty    = "system-owned empty account"
	ReasonUncertain      = "uncertain eligibility"
)

// Snapshot is the complete input to the eligibility decision: the account's
// last-observed state plus the current finalized slot as reference point.
// Building it is the orchestrator's job; Decide itself never performs I/O
// and never consults the protection table (that override is layered above).
type Snapshot struct {
	Executable       bool
	LastActivitySlot *uint64
	Program          chain.ProgramClass
	Closed           bool
	DataSize         uint64
	Lamports         uint64
	KnownClosable    bool
	SystemOwnedEmpty bool
	CurrentSlot      uint64
}

// Decision is the eligibility verdict for one account.
type Decision struct {
	Eligible bool
	Reason   string
}

// NewSnapshot builds the decision input from a stored account row and a
// freshly fetched finalized slot.
func NewSnapshot(acc store.Account, currentSlot uint64) Snapshot {
	class := chain.ClassifyBase58(acc.OwnerProgram)
	return Snapshot{
		Executable:       acc.Executable,
		LastActivitySlot: acc.LastActivitySlot,
		Program:          class,
		Closed:           acc.Closed,
		DataSize:         acc.DataSize,
		Lamports:         acc.Lamports,
		KnownClosable:    class.Closable(),
		SystemOwnedEmpty: class == chain.ProgramSystem && acc.DataSize == 0,
		CurrentSlot:      currentSlot,
	}
}

// Decide maps an account snapshot to an eligibility verdict. Pure and total:
// every input resolves to a definite decision, defaulting to not eligible.
//
// Rule order encodes risk priority - the most dangerous disqualifiers are
// checked first, so an executable account is never reclaimed no matter what
// the other fields say, and recent activity always overrides closability.
func Decide(s Snapshot) Decision {
	// 1. Code accounts are never reclaimed.
	if s.Executable {
		return Decision{Eligible: false, Reason: ReasonExecutable}
	}

	// 2. Activity inside the window disqualifies even closable accounts.
	// A reference point at or behind the activity slot counts as recent
	// (guards the unsigned subtraction against stale reference points).
	if s.LastActivitySlot != nil {
		last := *s.LastActivitySlot
		if s.CurrentSlot <= last || s.CurrentSlot-last < ActivityWindow {
			return Decision{Eligible: false, Reason: ReasonRecentlyActive}
		}
	}

	// 3. Conservative default: unknown owner program means refuse.
	if !s.KnownClosable && !s.SystemOwnedEmpty && !s.Closed {
		return Decision{Eligible: false, Reason: ReasonUnknownProgram}
	}

	// 4. Already closed: record-only, no chain action will execute.
	if s.Closed {
		return Decision{Eligible: true, Reason: ReasonAlreadyClosed}
	}

	// 5. Whitelisted close support.
	if s.KnownClosable {
		return Decision{Eligible: true, Reason: ReasonKnownClosable}
	}

	// 6. System-owned with zero data: safe to drain fully.
	if s.SystemOwnedEmpty {
		return Decision{Eligible: true, Reason: ReasonSystemEmpty}
	}

	// 7. Unreachable given rule 3's coverage; kept so the function is total.
	return Decision{Eligible: false, Reason: ReasonUncertain}
}
