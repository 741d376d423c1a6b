// Package engine contains the account lifecycle and reclaim decision core:
// the scanner that discovers sponsor-funded accounts, the analyzer that
// refreshes their on-chain state, the pure eligibility function, the reclaim
// orchestrator, the reporter, and the cycle driver that runs them in
// sequence.
//
// The engine holds no persistent state of its own. All durable state lives
// in the store; all chain access goes through the chain.Client and
// chain.Broadcaster boundaries. Within a cycle everything runs sequentially:
// one account at a time, each external call awaited before the next, so no
// two mutations for the same account can ever race.
package engine
