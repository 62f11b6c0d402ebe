/*
facade.go - Use-case surface of the ledger engine

PURPOSE:
  The operation list callers program against: create an account with a
  synthetic opening history, fetch an account with its statement, fetch
  transactions, recharge, transfer. Every operation returns a Result and
  holds no state between calls.

ERROR PROPAGATION:
  The first failure encountered stops the operation and travels back in
  the Result, unmodified. Nothing in here panics across the boundary.
*/
package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Service is the ledger facade. Construct with NewService; the zero value
// is not usable.
type Service struct {
	store Store
	gen   *Generator
	mut   *mutator
	now   func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithGenerator replaces the time-seeded history generator, letting tests
// pin a seed.
func WithGenerator(g *Generator) Option {
	return func(s *Service) { s.gen = g }
}

// WithClock replaces the wall clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds the facade over a persistence port. When the store
// also implements TxStore, multi-step operations run atomically;
// otherwise they follow the sequential stop-on-first-failure protocol.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		gen:   NewGenerator(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mut = newMutator(store, s.now)
	return s
}

// =============================================================================
// ACCOUNT CREATION
// =============================================================================

// CreateAccount opens an account for ownerID seeded with a synthetic
// history. The opening balance is the signed sum of the generated rows,
// so the account is born settled. Fails if persisting either the account
// or the row batch fails.
func (s *Service) CreateAccount(ctx context.Context, ownerID OwnerID, currency Currency) Result[Statement] {
	if !currency.Valid() {
		return Failure[Statement](fmt.Errorf("unsupported currency %q", currency))
	}

	now := s.now()
	rows := s.gen.History(now)
	account := Account{
		OwnerID:   ownerID,
		Number:    s.gen.AccountNumber(),
		Balance:   SumSigned(rows),
		Currency:  currency,
		CreatedAt: now,
	}

	err := runAtomic(ctx, s.store, func(st Store) error {
		id, err := st.CreateAccount(ctx, account)
		if err != nil {
			return fmt.Errorf("create account: %w", err)
		}
		account.ID = id
		for i := range rows {
			rows[i].AccountID = id
		}
		if err := st.CreateTransactions(ctx, rows); err != nil {
			return fmt.Errorf("create opening history: %w", err)
		}
		return nil
	})
	if err != nil {
		return Failure[Statement](err)
	}

	sortNewestFirst(rows)
	return Success(Statement{Account: account, Transactions: rows})
}

// =============================================================================
// FETCHES
// =============================================================================

// FetchAccount returns the owner's account and its newest-first history.
// An owner with no account is a not-found failure, not an empty success.
func (s *Service) FetchAccount(ctx context.Context, ownerID OwnerID) Result[Statement] {
	return s.fetchStatement(ctx, ByOwner(ownerID))
}

// FetchAccountByNumber is FetchAccount keyed by display number.
func (s *Service) FetchAccountByNumber(ctx context.Context, number string) Result[Statement] {
	return s.fetchStatement(ctx, ByNumber(number))
}

func (s *Service) fetchStatement(ctx context.Context, sel AccountSelector) Result[Statement] {
	account, err := s.store.GetAccount(ctx, sel)
	if err != nil {
		return Failure[Statement](err)
	}
	txs, err := s.store.GetTransactions(ctx, account.ID)
	if err != nil {
		return Failure[Statement](err)
	}
	sortNewestFirst(txs)
	return Success(Statement{Account: *account, Transactions: txs})
}

// FetchTransaction returns one row by id; absence is a failure.
func (s *Service) FetchTransaction(ctx context.Context, id TransactionID) Result[Transaction] {
	tx, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return Failure[Transaction](err)
	}
	return Success(*tx)
}

// FetchTransactions returns the account's rows newest first. An empty
// history is a valid success.
func (s *Service) FetchTransactions(ctx context.Context, accountID AccountID) Result[[]Transaction] {
	txs, err := s.store.GetTransactions(ctx, accountID)
	if err != nil {
		return Failure[[]Transaction](err)
	}
	sortNewestFirst(txs)
	return Success(txs)
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Recharge credits amount onto the account and records the DEPOSIT row
// that justifies it. currentBalance is the balance the caller last read;
// a stale value fails with ConcurrentModificationError.
func (s *Service) Recharge(ctx context.Context, accountID AccountID, amount, currentBalance decimal.Decimal, description string) Result[Transaction] {
	row, err := s.mut.recharge(ctx, accountID, amount, currentBalance, description)
	if err != nil {
		return Failure[Transaction](err)
	}
	return Success(row)
}

// Transfer moves amount between two accounts and records both legs.
func (s *Service) Transfer(ctx context.Context, order TransferOrder) Result[TransferReceipt] {
	receipt, err := s.mut.transfer(ctx, order)
	if err != nil {
		return Failure[TransferReceipt](err)
	}
	return Success(receipt)
}

// sortNewestFirst orders rows reverse-chronologically, ids breaking ties
// so repeated fetches agree.
func sortNewestFirst(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].CreatedAt.Equal(txs[j].CreatedAt) {
			return txs[i].CreatedAt.After(txs[j].CreatedAt)
		}
		return txs[i].ID > txs[j].ID
	})
}
