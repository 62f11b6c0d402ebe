// Package memory provides an in-memory ledger.Store for tests and
// development. It also implements ledger.TxStore: WithTx snapshots the
// maps up front and restores them if the function fails, giving the same
// all-or-nothing behavior the SQLite store gets from real transactions.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/deymer/ibank-ledger/ledger"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Store struct {
	mu           sync.RWMutex
	accounts     map[ledger.AccountID]ledger.Account
	transactions map[ledger.TransactionID]ledger.Transaction
}

func New() *Store {
	return &Store{
		accounts:     make(map[ledger.AccountID]ledger.Account),
		transactions: make(map[ledger.TransactionID]ledger.Transaction),
	}
}

// =============================================================================
// ACCOUNTS
// =============================================================================

func (m *Store) CreateAccount(_ context.Context, account ledger.Account) (ledger.AccountID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createAccountLocked(account)
}

func (m *Store) createAccountLocked(account ledger.Account) (ledger.AccountID, error) {
	id := ledger.AccountID(uuid.NewString())
	account.ID = id
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}
	m.accounts[id] = account
	return id, nil
}

func (m *Store) GetAccount(_ context.Context, sel ledger.AccountSelector) (*ledger.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getAccountLocked(sel)
}

func (m *Store) getAccountLocked(sel ledger.AccountSelector) (*ledger.Account, error) {
	if sel.Kind == ledger.SelectByID {
		if account, ok := m.accounts[ledger.AccountID(sel.Value)]; ok {
			cp := account
			return &cp, nil
		}
		return nil, ledger.ErrAccountNotFound
	}
	for _, account := range m.accounts {
		switch sel.Kind {
		case ledger.SelectByOwner:
			if string(account.OwnerID) == sel.Value {
				cp := account
				return &cp, nil
			}
		case ledger.SelectByNumber:
			if account.Number == sel.Value {
				cp := account
				return &cp, nil
			}
		}
	}
	return nil, ledger.ErrAccountNotFound
}

func (m *Store) UpdateAccountBalance(_ context.Context, id ledger.AccountID, balance decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateBalanceLocked(id, balance)
}

func (m *Store) updateBalanceLocked(id ledger.AccountID, balance decimal.Decimal) error {
	account, ok := m.accounts[id]
	if !ok {
		return ledger.ErrAccountNotFound
	}
	account.Balance = balance
	m.accounts[id] = account
	return nil
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func (m *Store) CreateTransaction(_ context.Context, tx ledger.Transaction) (ledger.TransactionID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createTransactionLocked(tx)
}

func (m *Store) createTransactionLocked(tx ledger.Transaction) (ledger.TransactionID, error) {
	id := ledger.TransactionID(uuid.NewString())
	tx.ID = id
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	m.transactions[id] = tx
	return id, nil
}

func (m *Store) CreateTransactions(_ context.Context, txs []ledger.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Single lock scope makes the batch one success/failure unit.
	for _, tx := range txs {
		if _, err := m.createTransactionLocked(tx); err != nil {
			return err
		}
	}
	return nil
}

func (m *Store) GetTransaction(_ context.Context, id ledger.TransactionID) (*ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getTransactionLocked(id)
}

func (m *Store) getTransactionLocked(id ledger.TransactionID) (*ledger.Transaction, error) {
	tx, ok := m.transactions[id]
	if !ok {
		return nil, ledger.ErrTransactionNotFound
	}
	cp := tx
	return &cp, nil
}

func (m *Store) GetTransactions(_ context.Context, accountID ledger.AccountID) ([]ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getTransactionsLocked(accountID), nil
}

func (m *Store) getTransactionsLocked(accountID ledger.AccountID) []ledger.Transaction {
	result := make([]ledger.Transaction, 0)
	for _, tx := range m.transactions {
		if tx.AccountID == accountID {
			result = append(result, tx)
		}
	}
	return result
}

// =============================================================================
// TRANSACTIONAL STORE
// =============================================================================

// WithTx executes fn against the store under one lock. On error the
// pre-call state is restored, so partial writes never become visible.
func (m *Store) WithTx(_ context.Context, fn func(ledger.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.snapshotLocked()
	if err := fn(&txView{parent: m}); err != nil {
		m.restoreLocked(snapshot)
		return err
	}
	return nil
}

type memorySnapshot struct {
	accounts     map[ledger.AccountID]ledger.Account
	transactions map[ledger.TransactionID]ledger.Transaction
}

func (m *Store) snapshotLocked() memorySnapshot {
	accounts := make(map[ledger.AccountID]ledger.Account, len(m.accounts))
	for k, v := range m.accounts {
		accounts[k] = v
	}
	transactions := make(map[ledger.TransactionID]ledger.Transaction, len(m.transactions))
	for k, v := range m.transactions {
		transactions[k] = v
	}
	return memorySnapshot{accounts: accounts, transactions: transactions}
}

func (m *Store) restoreLocked(s memorySnapshot) {
	m.accounts = s.accounts
	m.transactions = s.transactions
}

// txView exposes the locked internals to the WithTx function. The lock is
// already held by WithTx, so methods must not re-lock.
type txView struct {
	parent *Store
}

func (v *txView) CreateAccount(_ context.Context, account ledger.Account) (ledger.AccountID, error) {
	return v.parent.createAccountLocked(account)
}

func (v *txView) GetAccount(_ context.Context, sel ledger.AccountSelector) (*ledger.Account, error) {
	return v.parent.getAccountLocked(sel)
}

func (v *txView) UpdateAccountBalance(_ context.Context, id ledger.AccountID, balance decimal.Decimal) error {
	return v.parent.updateBalanceLocked(id, balance)
}

func (v *txView) CreateTransaction(_ context.Context, tx ledger.Transaction) (ledger.TransactionID, error) {
	return v.parent.createTransactionLocked(tx)
}

func (v *txView) CreateTransactions(_ context.Context, txs []ledger.Transaction) error {
	for _, tx := range txs {
		if _, err := v.parent.createTransactionLocked(tx); err != nil {
			return err
		}
	}
	return nil
}

func (v *txView) GetTransaction(_ context.Context, id ledger.TransactionID) (*ledger.Transaction, error) {
	return v.parent.getTransactionLocked(id)
}

func (v *txView) GetTransactions(_ context.Context, accountID ledger.AccountID) ([]ledger.Transaction, error) {
	return v.parent.getTransactionsLocked(accountID), nil
}
