package contract

import "crypto/ecdsa"

// MintCall is everything the transaction executor needs to submit one mint:
// the resolved interface, the selected entry point, the mapped positional
// arguments and the decrypted signing key.
type MintCall struct {
	Info     *Info
	Function *Entry
	Args     []any
	// PrivateKey signs the transaction. Held in memory only for the duration
	// of the call.
	PrivateKey *ecdsa.PrivateKey
	// FallbackTokenId is used when the receipt logs carry no token id.
	FallbackTokenId string
}

// MintResult is the on-chain outcome of a mint submission. TxHash may be set
// even when execution ultimately failed (timed out or reverted after
// submission) so callers can reconcile later.
type MintResult struct {
	TxHash  string
	TokenId string
}
