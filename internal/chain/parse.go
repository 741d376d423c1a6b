package chain

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// System-program instruction layout: 4-byte little-endian instruction index,
// then the instruction-specific payload.
const (
	sysInstructionCreateAccount = 0

	// index(4) + lamports(8) + space(8) + owner(32)
	createAccountDataLen = 52
)

// ParseCreateAccounts extracts every system-program create-account effect
// from a decoded transaction. Transactions with zero or many such effects are
// both normal; only structurally broken instructions produce an error.
//
// A create-account instruction carries [funding, new] as its accounts and
// (lamports, space, owner) in its data.
func ParseCreateAccounts(tx *solana.Transaction) ([]CreateAccountEvent, error) {
	if tx == nil {
		return nil, fmt.Errorf("parse create accounts: nil transaction")
	}
	keys := tx.Message.AccountKeys

	var creates []CreateAccountEvent
	for i, ix := range tx.Message.Instructions {
		if int(ix.ProgramIDIndex) >= len(keys) {
			return nil, fmt.Errorf("parse create accounts: instruction %d: program index %d out of range", i, ix.ProgramIDIndex)
		}
		if !keys[ix.ProgramIDIndex].Equals(solana.SystemProgramID) {
			continue
		}
		data := []byte(ix.Data)
		if len(data) < 4 {
			continue
		}
		if binary.LittleEndian.Uint32(data[:4]) != sysInstructionCreateAccount {
			continue
		}
		if len(data) < createAccountDataLen {
			return nil, fmt.Errorf("parse create accounts: instruction %d: truncated create-account data (%d bytes)", i, len(data))
		}
		if len(ix.Accounts) < 2 {
			return nil, fmt.Errorf("parse create accounts: instruction %d: create-account with %d accounts", i, len(ix.Accounts))
		}
		newIdx := ix.Accounts[1]
		if int(newIdx) >= len(keys) {
			return nil, fmt.Errorf("parse create accounts: instruction %d: account index %d out of range", i, newIdx)
		}

		creates = append(creates, CreateAccountEvent{
			NewAccount: keys[newIdx],
			Owner:      solana.PublicKeyFromBytes(data[20:52]),
			Lamports:   binary.LittleEndian.Uint64(data[4:12]),
			Space:      binary.LittleEndian.Uint64(data[12:20]),
		})
	}
	return creates, nil
}

// FeePayer returns the transaction's fee payer (first static account key).
func FeePayer(tx *solana.Transaction) (solana.PublicKey, error) {
	if tx == nil || len(tx.Message.AccountKeys) == 0 {
		return solana.PublicKey{}, fmt.Errorf("fee payer: transaction has no account keys")
	}
	return tx.Message.AccountKeys[0], nil
}
