/*
Package sqlite provides the SQLite-backed implementation of the ledger
persistence port.

INTERFACES IMPLEMENTED:
  ledger.Store:   account and transaction persistence
  ledger.TxStore: atomic multi-step writes via WithTx

KEY TABLES:
  accounts:     one row per account, balance stored as exact decimal text
  transactions: append-only movement rows, never updated or deleted

WAL MODE:
  The database is opened with WAL so readers do not block while a write
  is in flight. A process-level RWMutex serializes writers on top; with
  PostgreSQL the database itself would take that role.

USAGE:
  store, err := sqlite.New("./data/ibank.db")
  if err != nil { ... }
  defer store.Close()
  svc := ledger.NewService(store)
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/deymer/ibank-ledger/ledger"
)

// Store implements ledger.Store and ledger.TxStore on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: SQLite has a single writer anyway, and a ":memory:"
	// database exists per connection, so a pool would see empty schemas.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		number TEXT NOT NULL UNIQUE,
		balance TEXT NOT NULL,
		currency TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_accounts_owner
		ON accounts(owner_id);

	-- Movement rows are append-only: no UPDATE or DELETE is ever issued.
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		destination_account_id TEXT NOT NULL DEFAULT '',
		amount TEXT NOT NULL,
		tx_type TEXT NOT NULL,
		created_at TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (account_id) REFERENCES accounts(id)
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_account
		ON transactions(account_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// queryer is the slice of *sql.DB / *sql.Tx the helpers need, so the same
// code serves both the plain store and the WithTx view.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// ACCOUNTS (ledger.Store interface)
// =============================================================================

func (s *Store) CreateAccount(ctx context.Context, account ledger.Account) (ledger.AccountID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return createAccount(ctx, s.db, account)
}

func createAccount(ctx context.Context, db queryer, account ledger.Account) (ledger.AccountID, error) {
	id := ledger.AccountID(uuid.NewString())
	createdAt := account.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO accounts (id, owner_id, number, balance, currency, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id,
		account.OwnerID,
		account.Number,
		account.Balance.String(),
		account.Currency,
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create account: %w", err)
	}
	return id, nil
}

func (s *Store) GetAccount(ctx context.Context, sel ledger.AccountSelector) (*ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getAccount(ctx, s.db, sel)
}

func getAccount(ctx context.Context, db queryer, sel ledger.AccountSelector) (*ledger.Account, error) {
	var column string
	switch sel.Kind {
	case ledger.SelectByOwner:
		column = "owner_id"
	case ledger.SelectByNumber:
		column = "number"
	case ledger.SelectByID:
		column = "id"
	default:
		return nil, fmt.Errorf("unknown account selector kind %d", sel.Kind)
	}

	row := db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT id, owner_id, number, balance, currency, created_at
		FROM accounts WHERE %s = ?
		ORDER BY created_at LIMIT 1`, column),
		sel.Value,
	)
	return scanAccount(row)
}

func scanAccount(row *sql.Row) (*ledger.Account, error) {
	var (
		account            ledger.Account
		balance, createdAt string
	)
	err := row.Scan(&account.ID, &account.OwnerID, &account.Number, &balance, &account.Currency, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read account: %w", err)
	}

	if account.Balance, err = decimal.NewFromString(balance); err != nil {
		return nil, fmt.Errorf("corrupt balance for account %s: %w", account.ID, err)
	}
	if account.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("corrupt created_at for account %s: %w", account.ID, err)
	}
	return &account, nil
}

func (s *Store) UpdateAccountBalance(ctx context.Context, id ledger.AccountID, balance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateAccountBalance(ctx, s.db, id, balance)
}

func updateAccountBalance(ctx context.Context, db queryer, id ledger.AccountID, balance decimal.Decimal) error {
	res, err := db.ExecContext(ctx,
		`UPDATE accounts SET balance = ? WHERE id = ?`,
		balance.String(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	if affected == 0 {
		return ledger.ErrAccountNotFound
	}
	return nil
}

// =============================================================================
// TRANSACTIONS (ledger.Store interface)
// =============================================================================

func (s *Store) CreateTransaction(ctx context.Context, tx ledger.Transaction) (ledger.TransactionID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return createTransaction(ctx, s.db, tx)
}

func createTransaction(ctx context.Context, db queryer, tx ledger.Transaction) (ledger.TransactionID, error) {
	id := ledger.TransactionID(uuid.NewString())
	createdAt := tx.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO transactions
		(id, account_id, destination_account_id, amount, tx_type, created_at, description)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		tx.AccountID,
		tx.DestinationAccountID,
		tx.Amount.String(),
		tx.Type,
		createdAt.Format(time.RFC3339Nano),
		tx.Description,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create transaction: %w", err)
	}
	return id, nil
}

// CreateTransactions writes the batch inside one database transaction,
// so it is reported as a single success/failure unit.
func (s *Store) CreateTransactions(ctx context.Context, txs []ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := createTransactions(ctx, sqlTx, txs); err != nil {
		return err
	}
	return sqlTx.Commit()
}

func createTransactions(ctx context.Context, db queryer, txs []ledger.Transaction) error {
	for _, tx := range txs {
		if _, err := createTransaction(ctx, db, tx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id ledger.TransactionID) (*ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getTransaction(ctx, s.db, id)
}

func getTransaction(ctx context.Context, db queryer, id ledger.TransactionID) (*ledger.Transaction, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, account_id, destination_account_id, amount, tx_type, created_at, description
		FROM transactions WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read transaction: %w", err)
	}
	defer rows.Close()

	txs, err := scanTransactions(rows)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, ledger.ErrTransactionNotFound
	}
	return &txs[0], nil
}

func (s *Store) GetTransactions(ctx context.Context, accountID ledger.AccountID) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getTransactions(ctx, s.db, accountID)
}

func getTransactions(ctx context.Context, db queryer, accountID ledger.AccountID) ([]ledger.Transaction, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, account_id, destination_account_id, amount, tx_type, created_at, description
		FROM transactions WHERE account_id = ?`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func scanTransactions(rows *sql.Rows) ([]ledger.Transaction, error) {
	result := make([]ledger.Transaction, 0)
	for rows.Next() {
		var (
			tx                ledger.Transaction
			amount, createdAt string
		)
		if err := rows.Scan(&tx.ID, &tx.AccountID, &tx.DestinationAccountID, &amount, &tx.Type, &createdAt, &tx.Description); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		var err error
		if tx.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("corrupt amount for transaction %s: %w", tx.ID, err)
		}
		if tx.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("corrupt created_at for transaction %s: %w", tx.ID, err)
		}
		result = append(result, tx)
	}
	return result, rows.Err()
}

// =============================================================================
// TRANSACTIONAL STORE (ledger.TxStore interface)
// =============================================================================

// WithTx executes fn within one database transaction. If fn returns an
// error the transaction is rolled back, otherwise it is committed.
func (s *Store) WithTx(ctx context.Context, fn func(ledger.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// txStore runs every port method against the open *sql.Tx. It takes no
// locks of its own; WithTx already holds the writer lock.
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) CreateAccount(ctx context.Context, account ledger.Account) (ledger.AccountID, error) {
	return createAccount(ctx, ts.tx, account)
}

func (ts *txStore) GetAccount(ctx context.Context, sel ledger.AccountSelector) (*ledger.Account, error) {
	return getAccount(ctx, ts.tx, sel)
}

func (ts *txStore) UpdateAccountBalance(ctx context.Context, id ledger.AccountID, balance decimal.Decimal) error {
	return updateAccountBalance(ctx, ts.tx, id, balance)
}

func (ts *txStore) CreateTransaction(ctx context.Context, tx ledger.Transaction) (ledger.TransactionID, error) {
	return createTransaction(ctx, ts.tx, tx)
}

func (ts *txStore) CreateTransactions(ctx context.Context, txs []ledger.Transaction) error {
	return createTransactions(ctx, ts.tx, txs)
}

func (ts *txStore) GetTransaction(ctx context.Context, id ledger.TransactionID) (*ledger.Transaction, error) {
	return getTransaction(ctx, ts.tx, id)
}

func (ts *txStore) GetTransactions(ctx context.Context, accountID ledger.AccountID) ([]ledger.Transaction, error) {
	return getTransactions(ctx, ts.tx, accountID)
}
