/*
store.go - Persistence port for accounts and transactions

PURPOSE:
  Defines the interface the engine needs from storage and nothing more:
  create/read/update account, create/read transactions by account.
  Implementations live elsewhere (store/sqlite for production,
  ledger/store/memory for tests and development).

CONTRACT:
  Every call may fail: store unreachable, permission denied, not found.
  Calls are NOT transactional across each other. A store that can do
  better implements TxStore; the mutation protocol detects it and runs
  multi-step writes atomically. Against a plain Store the engine stops at
  the first failure and rolls nothing back.

TRANSACTION ROWS:
  Rows are created, never updated or deleted. GetTransactions gives no
  ordering guarantee; the facade sorts.
*/
package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ACCOUNT SELECTOR
// =============================================================================

type SelectorKind int

const (
	SelectByOwner SelectorKind = iota
	SelectByNumber
	SelectByID
)

// AccountSelector identifies one account by owner, display number or id.
type AccountSelector struct {
	Kind  SelectorKind
	Value string
}

func ByOwner(id OwnerID) AccountSelector {
	return AccountSelector{Kind: SelectByOwner, Value: string(id)}
}

func ByNumber(number string) AccountSelector {
	return AccountSelector{Kind: SelectByNumber, Value: number}
}

func ByID(id AccountID) AccountSelector {
	return AccountSelector{Kind: SelectByID, Value: string(id)}
}

// =============================================================================
// STORE - Persistence port
// =============================================================================

type Store interface {
	// CreateAccount persists a new account and returns the id storage
	// assigned to it.
	CreateAccount(ctx context.Context, account Account) (AccountID, error)

	// GetAccount returns the account matching the selector, or
	// ErrAccountNotFound.
	GetAccount(ctx context.Context, sel AccountSelector) (*Account, error)

	// UpdateAccountBalance overwrites the stored balance. It is the only
	// mutation an account supports after creation.
	UpdateAccountBalance(ctx context.Context, id AccountID, balance decimal.Decimal) error

	// CreateTransaction persists one row and returns its assigned id.
	CreateTransaction(ctx context.Context, tx Transaction) (TransactionID, error)

	// CreateTransactions persists a batch of rows as a single
	// success/failure unit.
	CreateTransactions(ctx context.Context, txs []Transaction) error

	// GetTransaction returns one row by id, or ErrTransactionNotFound.
	GetTransaction(ctx context.Context, id TransactionID) (*Transaction, error)

	// GetTransactions returns all rows owned by the account, in no
	// particular order. An account with no rows yields an empty slice.
	GetTransactions(ctx context.Context, accountID AccountID) ([]Transaction, error)
}

// =============================================================================
// TRANSACTIONAL STORE - atomic multi-step writes
// =============================================================================

// TxStore extends Store with an atomic execution scope. WithTx runs fn
// against a transactional view of the store: if fn returns an error every
// write inside it is rolled back, otherwise all are committed together.
type TxStore interface {
	Store

	WithTx(ctx context.Context, fn func(Store) error) error
}

// runAtomic executes fn inside WithTx when the store supports it, and
// directly otherwise. The fallback path keeps the documented
// partial-failure semantics: stop at the first error, no rollback.
func runAtomic(ctx context.Context, store Store, fn func(Store) error) error {
	if ts, ok := store.(TxStore); ok {
		return ts.WithTx(ctx, fn)
	}
	return fn(store)
}
