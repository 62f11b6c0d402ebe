/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for the HTTP surface. They decouple the engine's
  decimal-backed domain model from the wire format: amounts travel as
  JSON numbers and are converted to exact decimals at the boundary.

NAMING CONVENTION:
  - *DTO: response types returned to clients
  - *Request: request body types from clients

VALIDATION:
  Request structs carry go-playground/validator tags; handlers run the
  validator after decoding. The engine re-checks the money rules itself,
  so the tags are a fast first gate, not the authority.
*/
package api

import (
	"time"

	"github.com/deymer/ibank-ledger/ledger"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// AccountDTO represents an account in API responses.
type AccountDTO struct {
	ID        string  `json:"id"`
	OwnerID   string  `json:"owner_id"`
	Number    string  `json:"number"`
	Balance   float64 `json:"balance"`
	Currency  string  `json:"currency"`
	CreatedAt string  `json:"created_at"`
}

// TransactionDTO represents one movement row.
type TransactionDTO struct {
	ID                   string  `json:"id,omitempty"`
	AccountID            string  `json:"account_id"`
	DestinationAccountID string  `json:"destination_account_id,omitempty"`
	Amount               float64 `json:"amount"`
	Type                 string  `json:"type"`
	CreatedAt            string  `json:"created_at"`
	Description          string  `json:"description"`
}

// StatementDTO is an account plus its newest-first history.
type StatementDTO struct {
	Account      AccountDTO       `json:"account"`
	Transactions []TransactionDTO `json:"transactions"`
}

// TransferReceiptDTO carries the two rows written for a transfer.
type TransferReceiptDTO struct {
	Debit  TransactionDTO `json:"debit"`
	Credit TransactionDTO `json:"credit"`
}

// ErrorResponse is the uniform failure body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CreateAccountRequest opens an account for an owner. Currency defaults
// to USD when omitted.
type CreateAccountRequest struct {
	OwnerID  string `json:"owner_id" validate:"required"`
	Currency string `json:"currency" validate:"omitempty,oneof=USD EUR"`
}

// RechargeRequest credits an amount onto the account in the URL.
// CurrentBalance is the balance the client last displayed.
type RechargeRequest struct {
	Amount         float64 `json:"amount" validate:"required,gt=0"`
	CurrentBalance float64 `json:"current_balance"`
	Description    string  `json:"description"`
}

// TransferRequest moves an amount between two accounts.
type TransferRequest struct {
	Amount               float64 `json:"amount" validate:"required,gt=0"`
	AccountID            string  `json:"account_id" validate:"required"`
	CurrentBalance       float64 `json:"current_balance"`
	DestinationAccountID string  `json:"destination_account_id" validate:"required"`
	DestinationBalance   float64 `json:"destination_balance"`
	Description          string  `json:"description"`
}

// =============================================================================
// DOMAIN -> DTO MAPPING
// =============================================================================

func toAccountDTO(a ledger.Account) AccountDTO {
	return AccountDTO{
		ID:        string(a.ID),
		OwnerID:   string(a.OwnerID),
		Number:    a.Number,
		Balance:   a.Balance.InexactFloat64(),
		Currency:  string(a.Currency),
		CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toTransactionDTO(tx ledger.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:                   string(tx.ID),
		AccountID:            string(tx.AccountID),
		DestinationAccountID: string(tx.DestinationAccountID),
		Amount:               tx.Amount.InexactFloat64(),
		Type:                 string(tx.Type),
		CreatedAt:            tx.CreatedAt.UTC().Format(time.RFC3339),
		Description:          tx.Description,
	}
}

func toStatementDTO(st ledger.Statement) StatementDTO {
	txs := make([]TransactionDTO, 0, len(st.Transactions))
	for _, tx := range st.Transactions {
		txs = append(txs, toTransactionDTO(tx))
	}
	return StatementDTO{Account: toAccountDTO(st.Account), Transactions: txs}
}

func toTransactionDTOs(txs []ledger.Transaction) []TransactionDTO {
	out := make([]TransactionDTO, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionDTO(tx))
	}
	return out
}
