/*
mutation.go - Balance mutation protocol

PURPOSE:
  The only two code paths that move money: recharge (single account) and
  transfer (two accounts). Each pairs a balance update with the
  transaction row(s) that justify it, keeping the balance/history
  invariant intact.

SERIALIZATION:
  Balances carry no version column, so two concurrent mutations against
  the same account could race on read-modify-write. Two guards close
  that:
  1. A per-account mutex registry serializes mutations in-process.
     Transfers lock both accounts in id order so two opposing transfers
     cannot deadlock.
  2. Under the lock, the stored balance is compared against the balance
     the caller read. A mismatch aborts with ConcurrentModificationError
     before anything is written.

ATOMICITY:
  When the store implements TxStore, every write of an operation runs in
  one atomic scope; a failure rolls all of it back. Against a plain
  Store the protocol is sequential and stops at the first failure with
  no rollback, leaving the documented partial-failure window:
    recharge: balance updated, row missing
    transfer: source debited, destination untouched (worst case)
*/
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PER-ACCOUNT LOCK REGISTRY
// =============================================================================

type accountLocks struct {
	mu    sync.Mutex
	locks map[AccountID]*sync.Mutex
}

func newAccountLocks() *accountLocks {
	return &accountLocks{locks: make(map[AccountID]*sync.Mutex)}
}

func (l *accountLocks) get(id AccountID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	return m
}

// acquire locks every id and returns the matching release. Ids are
// deduplicated and taken in sorted order so two transfers between the
// same pair of accounts can never deadlock.
func (l *accountLocks) acquire(ids ...AccountID) func() {
	ordered := make([]AccountID, 0, len(ids))
	for _, id := range ids {
		dup := false
		for _, seen := range ordered {
			if seen == id {
				dup = true
				break
			}
		}
		if !dup {
			ordered = append(ordered, id)
		}
	}
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && ordered[j] < ordered[j-1]; j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}

	held := make([]*sync.Mutex, 0, len(ordered))
	for _, id := range ordered {
		m := l.get(id)
		m.Lock()
		held = append(held, m)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

// =============================================================================
// MUTATOR
// =============================================================================

type mutator struct {
	store Store
	locks *accountLocks
	now   func() time.Time
}

func newMutator(store Store, now func() time.Time) *mutator {
	return &mutator{store: store, locks: newAccountLocks(), now: now}
}

// readSettled loads the account under the caller-held lock and checks the
// stored balance against the balance the caller read.
func (m *mutator) readSettled(ctx context.Context, id AccountID, read decimal.Decimal) (*Account, error) {
	account, err := m.store.GetAccount(ctx, ByID(id))
	if err != nil {
		return nil, err
	}
	if !account.Balance.Equal(read) {
		return nil, &ConcurrentModificationError{
			AccountID: id,
			Read:      read,
			Stored:    account.Balance,
		}
	}
	return account, nil
}

// =============================================================================
// RECHARGE - single account
// =============================================================================

func (m *mutator) recharge(ctx context.Context, accountID AccountID, amount, currentBalance decimal.Decimal, description string) (Transaction, error) {
	if !amount.IsPositive() {
		return Transaction{}, ErrNonPositiveAmount
	}

	release := m.locks.acquire(accountID)
	defer release()

	account, err := m.readSettled(ctx, accountID, currentBalance)
	if err != nil {
		return Transaction{}, err
	}

	newBalance := RoundBalance(account.Balance.Add(amount))
	row := Transaction{
		AccountID:   accountID,
		Amount:      amount,
		Type:        TxDeposit,
		CreatedAt:   m.now(),
		Description: description,
	}

	err = runAtomic(ctx, m.store, func(s Store) error {
		if err := s.UpdateAccountBalance(ctx, accountID, newBalance); err != nil {
			return fmt.Errorf("update balance: %w", err)
		}
		id, err := s.CreateTransaction(ctx, row)
		if err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}
		row.ID = id
		return nil
	})
	if err != nil {
		return Transaction{}, err
	}
	return row, nil
}

// =============================================================================
// TRANSFER - two accounts
// =============================================================================

func (m *mutator) transfer(ctx context.Context, order TransferOrder) (TransferReceipt, error) {
	if !order.Amount.IsPositive() {
		return TransferReceipt{}, ErrNonPositiveAmount
	}
	if order.AccountID == order.DestinationAccountID {
		return TransferReceipt{}, ErrSameAccount
	}

	release := m.locks.acquire(order.AccountID, order.DestinationAccountID)
	defer release()

	source, err := m.readSettled(ctx, order.AccountID, order.CurrentBalance)
	if err != nil {
		return TransferReceipt{}, err
	}
	destination, err := m.readSettled(ctx, order.DestinationAccountID, order.DestinationBalance)
	if err != nil {
		return TransferReceipt{}, err
	}

	newSourceBalance := RoundBalance(source.Balance.Sub(order.Amount))
	newDestinationBalance := RoundBalance(destination.Balance.Add(order.Amount))

	createdAt := m.now()
	debit := Transaction{
		AccountID:            order.AccountID,
		DestinationAccountID: order.DestinationAccountID,
		Amount:               order.Amount,
		Type:                 TxTransfer,
		CreatedAt:            createdAt,
		Description:          order.Description,
	}
	credit := Transaction{
		AccountID:            order.DestinationAccountID,
		DestinationAccountID: order.AccountID,
		Amount:               order.Amount,
		Type:                 TxDeposit,
		CreatedAt:            createdAt,
		Description:          order.Description,
	}

	// Write order matters on the non-atomic path: the source debit goes
	// first, so a failure between the two updates leaves the destination
	// untouched rather than money created from nothing.
	err = runAtomic(ctx, m.store, func(s Store) error {
		if err := s.UpdateAccountBalance(ctx, order.AccountID, newSourceBalance); err != nil {
			return fmt.Errorf("update source balance: %w", err)
		}
		if err := s.UpdateAccountBalance(ctx, order.DestinationAccountID, newDestinationBalance); err != nil {
			return fmt.Errorf("update destination balance: %w", err)
		}
		if err := s.CreateTransactions(ctx, []Transaction{debit, credit}); err != nil {
			return fmt.Errorf("create transfer legs: %w", err)
		}
		return nil
	})
	if err != nil {
		return TransferReceipt{}, err
	}
	return TransferReceipt{Debit: debit, Credit: credit}, nil
}
