package z402_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	z402 "github.com/Blessedbiello/Z402"
	"github.com/Blessedbiello/Z402/pkg/budget"
	"github.com/Blessedbiello/Z402/pkg/transport"
)

const testAPIKey = "z402_test_key"

// facilitator is a minimal in-memory stand-in for the payment API. It
// records every request and answers payment-intent create/pay calls.
type facilitator struct {
	mu       sync.Mutex
	requests []*http.Request
	srv      *httptest.Server
}

func newFacilitator(t *testing.T) *facilitator {
	t.Helper()

	f := &facilitator{}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *facilitator) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Clone(context.Background()))
	f.mu.Unlock()

	intent := map[string]any{
		"id":       "pi_test",
		"amount":   "0.01",
		"resource": "https://api.example.com/data",
		"status":   "pending",
	}
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/payment-intents":
		var params map[string]any
		_ = json.NewDecoder(r.Body).Decode(&params)
		if amount, ok := params["amount"].(string); ok {
			intent["amount"] = amount
		}
	case r.Method == http.MethodPost && r.URL.Path == "/payment-intents/pi_test/pay":
		intent["status"] = "paid"
	}
	_ = json.NewEncoder(w).Encode(intent)
}

func (f *facilitator) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *facilitator) client(t *testing.T, opts ...z402.Option) *z402.Client {
	t.Helper()

	opts = append([]z402.Option{z402.WithBaseURL(f.srv.URL)}, opts...)
	client, err := z402.New(testAPIKey, opts...)
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func TestNew_ValidatesAPIKey(t *testing.T) {
	t.Parallel()

	_, err := z402.New("")
	require.ErrorIs(t, err, z402.ErrAPIKeyRequired)

	_, err = z402.New("sk_live_oops")
	require.ErrorIs(t, err, z402.ErrInvalidAPIKey)

	client, err := z402.New(testAPIKey)
	require.NoError(t, err)
	client.Close()
}

func TestPay_RecordsSpend(t *testing.T) {
	t.Parallel()

	f := newFacilitator(t)
	mgr, err := budget.New(mustLimits(t, "1.0", "", ""))
	require.NoError(t, err)
	client := f.client(t, z402.WithBudget(mgr))

	intent, err := client.Pay(context.Background(), z402.PayParams{
		Amount:      "0.01",
		Resource:    "https://api.example.com/data",
		FromAddress: "zs1sender",
		TxID:        "zc_tx_1",
		Metadata:    map[string]any{"agent_id": "bot-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_test", intent.ID)
	assert.Equal(t, z402.PaymentStatusPaid, intent.Status)

	// Create + pay.
	assert.Equal(t, 2, f.requestCount())

	spent, err := mgr.DailySpent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0.01", spent.String())

	history, err := mgr.History(context.Background(), budget.DailyWindow)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "pi_test", history[0].TransactionID)
	assert.Equal(t, "bot-1", history[0].Metadata["agent_id"])
}

func TestPay_BlockedByBudgetBeforeAnyRequest(t *testing.T) {
	t.Parallel()

	f := newFacilitator(t)
	mgr, err := budget.New(mustLimits(t, "0.005", "", ""))
	require.NoError(t, err)
	client := f.client(t, z402.WithBudget(mgr))

	_, err = client.Pay(context.Background(), z402.PayParams{
		Amount:   "0.01",
		Resource: "https://api.example.com/data",
	})
	require.ErrorIs(t, err, budget.ErrBudgetExceeded)

	// The affordability gate fires before the facilitator sees anything.
	assert.Equal(t, 0, f.requestCount())
}

func TestPay_SkipBudgetCheckStillRecords(t *testing.T) {
	t.Parallel()

	f := newFacilitator(t)
	mgr, err := budget.New(mustLimits(t, "1.0", "", "0.005"))
	require.NoError(t, err)
	client := f.client(t, z402.WithBudget(mgr))

	// 0.01 exceeds the per-transaction limit; the skip bypasses the gate
	// but the ledger still refuses the record afterwards.
	intent, err := client.Pay(context.Background(), z402.PayParams{
		Amount:          "0.01",
		Resource:        "https://api.example.com/data",
		SkipBudgetCheck: true,
	})
	require.ErrorIs(t, err, budget.ErrBudgetExceeded)
	require.NotNil(t, intent, "payment went through even though the ledger rejected it")
	assert.Equal(t, 2, f.requestCount())
}

func TestPay_InvalidAmount(t *testing.T) {
	t.Parallel()

	f := newFacilitator(t)
	client := f.client(t)

	_, err := client.Pay(context.Background(), z402.PayParams{Amount: "a lot"})
	require.ErrorIs(t, err, budget.ErrInvalidAmount)
	assert.Equal(t, 0, f.requestCount())
}

func TestPay_NoBudgetConfigured(t *testing.T) {
	t.Parallel()

	f := newFacilitator(t)
	client := f.client(t)

	intent, err := client.Pay(context.Background(), z402.PayParams{
		Amount:   "0.01",
		Resource: "https://api.example.com/data",
	})
	require.NoError(t, err)
	assert.Equal(t, z402.PaymentStatusPaid, intent.Status)
	assert.Nil(t, client.Budget)
}

func TestServices_PathsAndMethods(t *testing.T) {
	t.Parallel()

	type call struct {
		method string
		path   string
		query  string
	}

	var mu sync.Mutex
	var calls []call
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, call{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery})
		mu.Unlock()
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	client, err := z402.New(testAPIKey, z402.WithBaseURL(srv.URL))
	require.NoError(t, err)
	t.Cleanup(client.Close)

	ctx := context.Background()

	_, err = client.Payments.Get(ctx, "pi_1")
	require.NoError(t, err)
	_, err = client.Payments.Verify(ctx, "pi_1")
	require.NoError(t, err)
	_, err = client.Payments.Cancel(ctx, "pi_1")
	require.NoError(t, err)
	_, err = client.Transactions.List(ctx, z402.ListTransactionsParams{Limit: 5, Status: z402.TransactionStatusSettled})
	require.NoError(t, err)
	_, err = client.Transactions.Refund(ctx, "tx_1", z402.RefundParams{Reason: "duplicate"})
	require.NoError(t, err)
	_, err = client.Webhooks.Get(ctx)
	require.NoError(t, err)
	require.NoError(t, client.Webhooks.Delete(ctx))

	assert.Equal(t, []call{
		{method: http.MethodGet, path: "/payment-intents/pi_1"},
		{method: http.MethodGet, path: "/payment-intents/pi_1/verify"},
		{method: http.MethodPost, path: "/payment-intents/pi_1/cancel"},
		{method: http.MethodGet, path: "/transactions", query: "limit=5&status=settled"},
		{method: http.MethodPost, path: "/transactions/tx_1/refund"},
		{method: http.MethodGet, path: "/webhook-management"},
		{method: http.MethodDelete, path: "/webhook-management"},
	}, calls)
}

func TestCreatePaymentIntent_DefaultsExpiry(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"id":"pi_1","status":"pending"}`))
	}))
	t.Cleanup(srv.Close)

	client, err := z402.New(testAPIKey, z402.WithBaseURL(srv.URL))
	require.NoError(t, err)
	t.Cleanup(client.Close)

	_, err = client.Payments.Create(context.Background(), z402.CreatePaymentIntentParams{
		Amount:   "0.01",
		Resource: "https://api.example.com/data",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3600, gotBody["expiresIn"])
}

func TestListTransactionsParams_Values(t *testing.T) {
	t.Parallel()

	assert.Empty(t, z402.ListTransactionsParams{}.Values())

	q := z402.ListTransactionsParams{
		Limit:    50,
		Offset:   100,
		Status:   z402.TransactionStatusRefunded,
		DateFrom: "2026-08-01",
		DateTo:   "2026-08-25",
		Resource: "https://api.example.com/data",
	}.Values()
	assert.Equal(t, "50", q.Get("limit"))
	assert.Equal(t, "100", q.Get("offset"))
	assert.Equal(t, "refunded", q.Get("status"))
	assert.Equal(t, "2026-08-01", q.Get("dateFrom"))
	assert.Equal(t, "2026-08-25", q.Get("dateTo"))
	assert.Equal(t, "https://api.example.com/data", q.Get("resource"))
}

func TestWithMaxRetries_BoundsAttempts(t *testing.T) {
	t.Parallel()

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	client, err := z402.New(testAPIKey,
		z402.WithBaseURL(srv.URL),
		z402.WithRetryPolicy(transport.RetryPolicy{MaxRetries: 2, InitialDelay: 1, MaxDelay: 1, Multiplier: 2}))
	require.NoError(t, err)
	t.Cleanup(client.Close)

	_, err = client.Payments.Get(context.Background(), "pi_1")
	require.ErrorIs(t, err, transport.ErrAPI)
	assert.Equal(t, 3, calls)
}

func mustLimits(t *testing.T, daily, hourly, perTx string) budget.Limits {
	t.Helper()
	limits, err := budget.ParseLimits(daily, hourly, perTx)
	require.NoError(t, err)
	return limits
}
