/*
errors.go - Centralized error types for the ledger engine

ERROR CATEGORIES:
  1. Not-found errors - a lookup matched nothing
  2. Validation errors - the engine refused the operation before writing
  3. Concurrency errors - the stored balance no longer matches what the
     caller read
  4. Persistence failures - surfaced from the store wrapped with %w, the
     store's cause unmodified

Callers use errors.Is / errors.As, or the IsNotFound / IsRetryable
helpers, to branch on categories.
*/
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrAccountNotFound is returned when no account matches a selector.
	ErrAccountNotFound = errors.New("account not found")

	// ErrTransactionNotFound is returned when a transaction id matches nothing.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrNonPositiveAmount is returned when a recharge or transfer amount
	// is zero or negative. The engine validates this itself rather than
	// trusting the form layer.
	ErrNonPositiveAmount = errors.New("amount must be positive")

	// ErrSameAccount is returned when a transfer names the same account
	// as source and destination.
	ErrSameAccount = errors.New("source and destination account are the same")

	// ErrConcurrentModification is returned when the stored balance no
	// longer matches the balance the caller read at the start of the
	// operation. Nothing has been written; the caller may re-read and retry.
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ConcurrentModificationError reports the balance mismatch that aborted a
// mutation.
type ConcurrentModificationError struct {
	AccountID AccountID
	Read      decimal.Decimal // balance the caller supplied
	Stored    decimal.Decimal // balance found in storage under the lock
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("concurrent modification on account %s: read %s, stored %s",
		e.AccountID, e.Read, e.Stored)
}

func (e *ConcurrentModificationError) Unwrap() error {
	return ErrConcurrentModification
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound reports whether err means a lookup found nothing, so callers
// can render "does not exist" rather than a generic failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrTransactionNotFound)
}

// IsRetryable reports whether the operation might succeed if the caller
// re-reads the balance and tries again.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}
