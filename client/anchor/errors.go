package anchor

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrUnsupportedOutputKind is returned when a plan would consume an Output kind that can not be spent.
	ErrUnsupportedOutputKind = errors.New("unsupported output kind")

	// ErrUnresolvedUnlockAddress is returned when a consumed Output carries no unlock condition that yields an
	// authorizing address.
	ErrUnresolvedUnlockAddress = errors.New("unresolved unlock address")

	// ErrInsufficientFunds is returned when the wallet holds no Basic Output that can cover the required amount.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientStorageDeposit is returned when a produced Output holds less than its minimum storage deposit.
	ErrInsufficientStorageDeposit = errors.New("insufficient storage deposit")

	// ErrUnbalancedTransaction is returned when the consumed and produced amounts of a plan do not match exactly.
	ErrUnbalancedTransaction = errors.New("unbalanced transaction")

	// ErrMissingSignerUnlock is returned when an input requires a first-time signature for an address the signer holds
	// no key for.
	ErrMissingSignerUnlock = errors.New("missing signer unlock")

	// ErrNoAnchoredDocument is returned when a Block carries no transaction payload or no Alias Output to extract a
	// document from.
	ErrNoAnchoredDocument = errors.New("no anchored document")

	// ErrInclusionTimeout is returned when the retry budget is exhausted before the Block was observed as included.
	// The transaction may still confirm later; the caller must re-resolve the ledger state before retrying.
	ErrInclusionTimeout = errors.New("inclusion timeout")
)
