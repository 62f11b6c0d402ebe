/*
Package ledger provides the core consistency engine for a personal-finance
ledger: one balance per account, a chronological list of signed movements,
and the rules that keep the two in agreement.

KEY CONCEPTS IN THIS FILE (types.go):
  - Account: a single-currency balance owned by one identity
  - Transaction: an immutable movement record (deposit, withdrawal, transfer leg)
  - Statement: an account paired with its newest-first history
  - RoundBalance: the one rounding rule applied to every balance computation

DESIGN PRINCIPLES:
  1. Immutability: transactions are created, never mutated or deleted
  2. Precision: decimal.Decimal everywhere, no float arithmetic on money
  3. Type safety: distinct ID types so account, owner and transaction
     identifiers cannot be mixed up
  4. Closed enums: transaction type drives its sign through an explicit
     lookup, never through runtime type inspection

INVARIANT:
  For any settled account, Balance equals the signed sum of all its
  transaction rows. Every operation in this package is written to preserve
  that equality.

SEE ALSO:
  - store.go: persistence port the engine writes through
  - mutation.go: recharge and transfer protocols
  - synthetic.go: opening-history generation for new accounts
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// AccountID is assigned by storage when an account is created.
type AccountID string

// OwnerID references the owning identity. The engine never interprets it.
type OwnerID string

// TransactionID is assigned by storage when a transaction is created.
type TransactionID string

// =============================================================================
// CURRENCY
// =============================================================================

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// Valid reports whether c is one of the supported currencies.
func (c Currency) Valid() bool {
	return c == CurrencyUSD || c == CurrencyEUR
}

// =============================================================================
// TRANSACTION TYPE - closed enum with explicit sign lookup
// =============================================================================

type TransactionType string

const (
	TxDeposit    TransactionType = "DEPOSIT"    // Credit: increases the owning account's balance
	TxWithdrawal TransactionType = "WITHDRAWAL" // Debit: decreases the owning account's balance
	TxTransfer   TransactionType = "TRANSFER"   // Debit leg of a transfer; the credit leg is a DEPOSIT on the counterparty
)

// Sign returns +1 for movements that credit the owning account and -1 for
// movements that debit it. Unknown types return 0 so a corrupted row can
// never silently move money.
func (t TransactionType) Sign() int {
	switch t {
	case TxDeposit:
		return 1
	case TxWithdrawal, TxTransfer:
		return -1
	default:
		return 0
	}
}

func (t TransactionType) Valid() bool {
	return t.Sign() != 0
}

// =============================================================================
// ENTITIES
// =============================================================================

// Account holds a single-currency balance. Number is generated once at
// creation and never changes; Balance moves only through the mutation
// protocol in mutation.go.
type Account struct {
	ID        AccountID
	OwnerID   OwnerID
	Number    string
	Balance   decimal.Decimal
	Currency  Currency
	CreatedAt time.Time
}

// Transaction is one signed movement. Amount is the unsigned magnitude;
// the sign comes from Type. DestinationAccountID is set only on transfer
// legs and identifies the counterparty account.
type Transaction struct {
	ID                   TransactionID
	AccountID            AccountID
	DestinationAccountID AccountID
	Amount               decimal.Decimal
	Type                 TransactionType
	CreatedAt            time.Time
	Description          string
}

// SignedAmount applies the type's sign to the magnitude.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Type.Sign() < 0 {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Statement is what account fetches return: the account plus its history
// sorted newest first.
type Statement struct {
	Account      Account
	Transactions []Transaction
}

// TransferOrder carries everything a transfer needs. Balances are the
// values the caller last read; the engine rejects the order if storage
// disagrees with them.
type TransferOrder struct {
	Amount               decimal.Decimal
	AccountID            AccountID
	CurrentBalance       decimal.Decimal
	DestinationAccountID AccountID
	DestinationBalance   decimal.Decimal
	Description          string
}

// TransferReceipt holds the two rows written for a completed transfer:
// the TRANSFER debit leg on the source and the DEPOSIT credit leg on the
// destination.
type TransferReceipt struct {
	Debit  Transaction
	Credit Transaction
}

// =============================================================================
// MONEY ARITHMETIC
// =============================================================================

// RoundBalance applies the single rounding rule used everywhere in the
// engine: two decimal places, half rounded up (away from zero). Rounding
// after every add or subtract keeps repeated mutations from drifting.
func RoundBalance(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// SumSigned folds a transaction list into the balance it justifies,
// applying RoundBalance after each step exactly as the mutation protocol
// does. For any settled account, SumSigned of its history equals its
// stored balance.
func SumSigned(txs []Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, tx := range txs {
		sum = RoundBalance(sum.Add(tx.SignedAmount()))
	}
	return sum
}
