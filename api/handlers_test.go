package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/deymer/ibank-ledger/api"
	"github.com/deymer/ibank-ledger/ledger"
	"github.com/deymer/ibank-ledger/ledger/store/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := memory.New()
	svc := ledger.NewService(store, ledger.WithGenerator(ledger.NewSeededGenerator(42)))
	handler := api.NewHandler(svc, zap.NewNop())
	server := httptest.NewServer(api.NewRouter(handler))
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func createAccount(t *testing.T, server *httptest.Server, owner string) api.StatementDTO {
	t.Helper()
	resp := postJSON(t, server.URL+"/api/accounts", map[string]string{"owner_id": owner})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody[api.StatementDTO](t, resp)
}

// =============================================================================
// ACCOUNTS
// =============================================================================

func TestAPI_CreateAccount(t *testing.T) {
	server := newTestServer(t)

	statement := createAccount(t, server, "owner-1")
	assert.NotEmpty(t, statement.Account.ID)
	assert.Equal(t, "owner-1", statement.Account.OwnerID)
	assert.Equal(t, "USD", statement.Account.Currency, "currency defaults to USD")
	assert.Len(t, statement.Account.Number, 10)
	assert.NotEmpty(t, statement.Transactions, "a new account opens with history")
}

func TestAPI_CreateAccount_MissingOwner(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/accounts", map[string]string{"currency": "USD"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_CreateAccount_UnsupportedCurrency(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/accounts",
		map[string]string{"owner_id": "owner-1", "currency": "GBP"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_GetAccount_ByOwnerAndNumber(t *testing.T) {
	server := newTestServer(t)
	created := createAccount(t, server, "owner-1")

	resp, err := http.Get(server.URL + "/api/accounts?owner=owner-1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	byOwner := decodeBody[api.StatementDTO](t, resp)
	assert.Equal(t, created.Account.ID, byOwner.Account.ID)

	resp, err = http.Get(server.URL + "/api/accounts?number=" + created.Account.Number)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	byNumber := decodeBody[api.StatementDTO](t, resp)
	assert.Equal(t, created.Account.ID, byNumber.Account.ID)
}

func TestAPI_GetAccount_UnknownOwner(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/accounts?owner=nobody")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_GetAccount_MissingQuery(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/accounts")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// RECHARGE
// =============================================================================

func TestAPI_Recharge(t *testing.T) {
	server := newTestServer(t)
	created := createAccount(t, server, "owner-1")

	resp := postJSON(t, server.URL+"/api/accounts/"+created.Account.ID+"/recharge", map[string]any{
		"amount":          50.25,
		"current_balance": created.Account.Balance,
		"description":     "top up",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	row := decodeBody[api.TransactionDTO](t, resp)
	assert.Equal(t, "DEPOSIT", row.Type)
	assert.InDelta(t, 50.25, row.Amount, 0.001)
	assert.Equal(t, "top up", row.Description)

	// The balance moved by exactly the recharged amount.
	after, err := http.Get(server.URL + "/api/accounts?owner=owner-1")
	require.NoError(t, err)
	statement := decodeBody[api.StatementDTO](t, after)
	assert.InDelta(t, created.Account.Balance+50.25, statement.Account.Balance, 0.001)
}

func TestAPI_Recharge_NegativeAmount(t *testing.T) {
	server := newTestServer(t)
	created := createAccount(t, server, "owner-1")

	resp := postJSON(t, server.URL+"/api/accounts/"+created.Account.ID+"/recharge", map[string]any{
		"amount":          -10.0,
		"current_balance": created.Account.Balance,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "validator rejects before the engine sees it")
}

func TestAPI_Recharge_StaleBalance(t *testing.T) {
	server := newTestServer(t)
	created := createAccount(t, server, "owner-1")

	resp := postJSON(t, server.URL+"/api/accounts/"+created.Account.ID+"/recharge", map[string]any{
		"amount":          10.0,
		"current_balance": created.Account.Balance + 123.45,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAPI_Recharge_UnknownAccount(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/accounts/no-such-account/recharge", map[string]any{
		"amount":          10.0,
		"current_balance": 0.0,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// TRANSFERS
// =============================================================================

func TestAPI_Transfer(t *testing.T) {
	server := newTestServer(t)
	source := createAccount(t, server, "owner-a")
	dest := createAccount(t, server, "owner-b")

	resp := postJSON(t, server.URL+"/api/transfers", map[string]any{
		"amount":                 25.0,
		"account_id":             source.Account.ID,
		"current_balance":        source.Account.Balance,
		"destination_account_id": dest.Account.ID,
		"destination_balance":    dest.Account.Balance,
		"description":            "lunch",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	receipt := decodeBody[api.TransferReceiptDTO](t, resp)

	assert.Equal(t, "TRANSFER", receipt.Debit.Type)
	assert.Equal(t, source.Account.ID, receipt.Debit.AccountID)
	assert.Equal(t, dest.Account.ID, receipt.Debit.DestinationAccountID)

	assert.Equal(t, "DEPOSIT", receipt.Credit.Type)
	assert.Equal(t, dest.Account.ID, receipt.Credit.AccountID)
	assert.Equal(t, source.Account.ID, receipt.Credit.DestinationAccountID)

	sourceAfter, err := http.Get(server.URL + "/api/accounts?owner=owner-a")
	require.NoError(t, err)
	assert.InDelta(t, source.Account.Balance-25.0,
		decodeBody[api.StatementDTO](t, sourceAfter).Account.Balance, 0.001)

	destAfter, err := http.Get(server.URL + "/api/accounts?owner=owner-b")
	require.NoError(t, err)
	assert.InDelta(t, dest.Account.Balance+25.0,
		decodeBody[api.StatementDTO](t, destAfter).Account.Balance, 0.001)
}

func TestAPI_Transfer_SameAccount(t *testing.T) {
	server := newTestServer(t)
	source := createAccount(t, server, "owner-a")

	resp := postJSON(t, server.URL+"/api/transfers", map[string]any{
		"amount":                 25.0,
		"account_id":             source.Account.ID,
		"current_balance":        source.Account.Balance,
		"destination_account_id": source.Account.ID,
		"destination_balance":    source.Account.Balance,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestAPI_TransactionLookupAndHistory(t *testing.T) {
	server := newTestServer(t)
	created := createAccount(t, server, "owner-1")

	resp := postJSON(t, server.URL+"/api/accounts/"+created.Account.ID+"/recharge", map[string]any{
		"amount":          15.0,
		"current_balance": created.Account.Balance,
		"description":     "voucher",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	row := decodeBody[api.TransactionDTO](t, resp)
	require.NotEmpty(t, row.ID)

	single, err := http.Get(server.URL + "/api/transactions/" + row.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, single.StatusCode)
	fetched := decodeBody[api.TransactionDTO](t, single)
	assert.Equal(t, row.ID, fetched.ID)
	assert.Equal(t, "voucher", fetched.Description)

	history, err := http.Get(fmt.Sprintf("%s/api/accounts/%s/transactions", server.URL, created.Account.ID))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, history.StatusCode)
	rows := decodeBody[[]api.TransactionDTO](t, history)
	assert.Len(t, rows, len(created.Transactions)+1)
}

func TestAPI_GetTransaction_NotFound(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/transactions/no-such-row")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
