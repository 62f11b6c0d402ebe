/*
handlers.go - HTTP handlers over the ledger facade

FLOW PER HANDLER:
  decode -> validate -> call the facade -> branch on the Result.
  Engine failures map onto status codes by category:
    not found                -> 404
    rejected by validation   -> 400 / 422
    concurrent modification  -> 409
    anything else            -> 500 (persistence failures included)

No business rule lives here; this layer only translates.
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/deymer/ibank-ledger/ledger"
)

// Handler carries the facade and request plumbing.
type Handler struct {
	svc      *ledger.Service
	logger   *zap.Logger
	validate *validator.Validate
}

func NewHandler(svc *ledger.Service, logger *zap.Logger) *Handler {
	return &Handler{
		svc:      svc,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// =============================================================================
// ACCOUNTS
// =============================================================================

// CreateAccount handles POST /api/accounts.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if !h.decode(w, r, &req) {
		return
	}

	currency := ledger.Currency(req.Currency)
	if req.Currency == "" {
		currency = ledger.CurrencyUSD
	}

	result := h.svc.CreateAccount(r.Context(), ledger.OwnerID(req.OwnerID), currency)
	if result.IsFailure() {
		h.writeFailure(w, r, result.Err())
		return
	}
	h.writeJSON(w, http.StatusCreated, toStatementDTO(result.Value()))
}

// GetAccount handles GET /api/accounts?owner=... or ?number=...
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	number := r.URL.Query().Get("number")

	var result ledger.Result[ledger.Statement]
	switch {
	case owner != "":
		result = h.svc.FetchAccount(r.Context(), ledger.OwnerID(owner))
	case number != "":
		result = h.svc.FetchAccountByNumber(r.Context(), number)
	default:
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "owner or number query parameter required"})
		return
	}

	if result.IsFailure() {
		h.writeFailure(w, r, result.Err())
		return
	}
	h.writeJSON(w, http.StatusOK, toStatementDTO(result.Value()))
}

// GetTransactions handles GET /api/accounts/{id}/transactions.
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	accountID := ledger.AccountID(chi.URLParam(r, "id"))

	result := h.svc.FetchTransactions(r.Context(), accountID)
	if result.IsFailure() {
		h.writeFailure(w, r, result.Err())
		return
	}
	h.writeJSON(w, http.StatusOK, toTransactionDTOs(result.Value()))
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// GetTransaction handles GET /api/transactions/{id}.
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id := ledger.TransactionID(chi.URLParam(r, "id"))

	result := h.svc.FetchTransaction(r.Context(), id)
	if result.IsFailure() {
		h.writeFailure(w, r, result.Err())
		return
	}
	h.writeJSON(w, http.StatusOK, toTransactionDTO(result.Value()))
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Recharge handles POST /api/accounts/{id}/recharge.
func (h *Handler) Recharge(w http.ResponseWriter, r *http.Request) {
	accountID := ledger.AccountID(chi.URLParam(r, "id"))

	var req RechargeRequest
	if !h.decode(w, r, &req) {
		return
	}

	result := h.svc.Recharge(
		r.Context(),
		accountID,
		amountFromFloat(req.Amount),
		amountFromFloat(req.CurrentBalance),
		req.Description,
	)
	if result.IsFailure() {
		h.writeFailure(w, r, result.Err())
		return
	}
	h.writeJSON(w, http.StatusOK, toTransactionDTO(result.Value()))
}

// Transfer handles POST /api/transfers.
func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if !h.decode(w, r, &req) {
		return
	}

	result := h.svc.Transfer(r.Context(), ledger.TransferOrder{
		Amount:               amountFromFloat(req.Amount),
		AccountID:            ledger.AccountID(req.AccountID),
		CurrentBalance:       amountFromFloat(req.CurrentBalance),
		DestinationAccountID: ledger.AccountID(req.DestinationAccountID),
		DestinationBalance:   amountFromFloat(req.DestinationBalance),
		Description:          req.Description,
	})
	if result.IsFailure() {
		h.writeFailure(w, r, result.Err())
		return
	}
	receipt := result.Value()
	h.writeJSON(w, http.StatusOK, TransferReceiptDTO{
		Debit:  toTransactionDTO(receipt.Debit),
		Credit: toTransactionDTO(receipt.Credit),
	})
}

// =============================================================================
// PLUMBING
// =============================================================================

// amountFromFloat converts a wire amount to the engine's exact
// representation, snapped to cents like every balance.
func amountFromFloat(f float64) decimal.Decimal {
	return ledger.RoundBalance(decimal.NewFromFloat(f))
}

// decode parses and validates the request body. On failure it writes the
// 400 itself and returns false.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return false
	}
	return true
}

func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case ledger.IsNotFound(err):
		status = http.StatusNotFound
	case ledger.IsRetryable(err):
		status = http.StatusConflict
	case errors.Is(err, ledger.ErrNonPositiveAmount), errors.Is(err, ledger.ErrSameAccount):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("operation failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	h.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}
