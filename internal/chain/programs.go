package chain

import "github.com/gagliardetto/solana-go"

// token2022ProgramID is the SPL Token-2022 program. The v1 token and system
// program IDs come from the SDK.
var token2022ProgramID = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")

// ProgramClass is the enumerated classification of an account's owner
// program. It is computed once per account and carried in the eligibility
// snapshot instead of re-matching base58 constants at each decision point.
type ProgramClass int

const (
	// ProgramUnknown is any owner program without explicit close support.
	ProgramUnknown ProgramClass = iota
	// ProgramSystem is the base system program (11111...).
	ProgramSystem
	// ProgramTokenV1 is the original SPL Token program.
	ProgramTokenV1
	// ProgramToken2022 is the SPL Token-2022 program.
	ProgramToken2022
)

// Classify maps an owner program ID to its ProgramClass.
// Anything not explicitly recognized is ProgramUnknown.
func Classify(owner solana.PublicKey) ProgramClass {
	switch {
	case owner.Equals(solana.SystemProgramID):
		return ProgramSystem
	case owner.Equals(solana.TokenProgramID):
		return ProgramTokenV1
	case owner.Equals(token2022ProgramID):
		return ProgramToken2022
	default:
		return ProgramUnknown
	}
}

// ClassifyBase58 is Classify for owner programs stored as base58 strings.
// An unparseable string classifies as ProgramUnknown.
func ClassifyBase58(owner string) ProgramClass {
	pk, err := solana.PublicKeyFromBase58(owner)
	if err != nil {
		return ProgramUnknown
	}
	return Classify(pk)
}

// Closable reports whether the program is whitelisted as supporting a safe
// close instruction. Only the two SPL token programs qualify; the system
// program is handled separately via the system-owned-empty rule.
func (c ProgramClass) Closable() bool {
	return c == ProgramTokenV1 || c == ProgramToken2022
}

func (c ProgramClass) String() string {
	switch c {
	case ProgramSystem:
		return "system"
	case ProgramTokenV1:
		return "token"
	case ProgramToken2022:
		return "token-2022"
	default:
		return "unknown"
	}
}

// ProgramID returns the on-chain program ID for a closable token class.
// Returns the zero PublicKey for classes without a close instruction.
func (c ProgramClass) ProgramID() solana.PublicKey {
	switch c {
	case ProgramTokenV1:
		return solana.TokenProgramID
	case ProgramToken2022:
		return token2022ProgramID
	default:
		return solana.PublicKey{}
	}
}
