package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/adarshpathak3408/FinFlow/internal/core"
	applog "github.com/adarshpathak3408/FinFlow/internal/log"
	"github.com/adarshpathak3408/FinFlow/internal/services"
	"github.com/adarshpathak3408/FinFlow/internal/storage"
)

type fakeBackend struct {
	transactions []core.Transaction
	budgets      core.Budgets

	createResult services.CreateResult
	createErr    error
	listErr      error
	deleted      []string
}

func (f *fakeBackend) Create(_ context.Context, tx core.Transaction) (services.CreateResult, error) {
	if f.createErr != nil {
		return services.CreateResult{}, f.createErr
	}
	if err := tx.Validate(); err != nil {
		return services.CreateResult{}, err
	}
	if f.createResult.Transaction.ID != "" {
		return f.createResult, nil
	}
	tx.ID = "generated-id"
	tx.CreatedAt = time.Now()
	return services.CreateResult{Transaction: tx}, nil
}

func (f *fakeBackend) Update(_ context.Context, tx core.Transaction) error {
	if tx.Date.IsZero() {
		return services.ErrDateRequired
	}
	if err := tx.Validate(); err != nil {
		return err
	}
	for i, existing := range f.transactions {
		if existing.ID == tx.ID {
			tx.CreatedAt = existing.CreatedAt
			f.transactions[i] = tx
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeBackend) Delete(_ context.Context, id string) error {
	for _, existing := range f.transactions {
		if existing.ID == id {
			f.deleted = append(f.deleted, id)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeBackend) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	for _, tx := range f.transactions {
		if tx.ID == id {
			return tx, nil
		}
	}
	return core.Transaction{}, storage.ErrNotFound
}

func (f *fakeBackend) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.transactions, nil
}

func (f *fakeBackend) SetBudget(_ context.Context, category string, amount float64) error {
	if f.budgets == nil {
		f.budgets = make(core.Budgets)
	}
	f.budgets[category] = amount
	return nil
}

func (f *fakeBackend) GetBudgets(_ context.Context) (core.Budgets, error) {
	return f.budgets, nil
}

func newTestServer(t *testing.T, backend *fakeBackend) *Server {
	t.Helper()
	s := NewServer(Options{
		Addr:      ":0",
		Service:   backend,
		Reader:    backend,
		Budgets:   backend,
		UPIVpa:    "payer@upi",
		PayeeName: "Payer",
		Logger:    applog.New(applog.Config{Handler: slog.NewTextHandler(io.Discard, nil)}),
	})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s
}

func doJSON(s *Server, method, target string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		encoded, _ := json.Marshal(body)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, &fakeBackend{})

	if rec := doJSON(s, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Errorf("healthz = %d, want 200", rec.Code)
	}
	if rec := doJSON(s, http.MethodGet, "/readyz", nil); rec.Code != http.StatusOK {
		t.Errorf("readyz = %d, want 200", rec.Code)
	}
}

func TestCreateTransaction(t *testing.T) {
	s := newTestServer(t, &fakeBackend{})

	rec := doJSON(s, http.MethodPost, "/api/transactions", map[string]any{
		"type":        "expense",
		"amount":      450.50,
		"category":    "Food",
		"description": "lunch",
		"date":        "2024-06-12",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp createTransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Transaction.ID == "" {
		t.Error("expected generated transaction id")
	}
	if resp.Transaction.Currency != "INR" {
		t.Errorf("currency = %q, want INR", resp.Transaction.Currency)
	}
	if resp.OverBudget {
		t.Error("no budget configured, over_budget must be false")
	}
}

func TestCreateTransactionOverBudget(t *testing.T) {
	backend := &fakeBackend{
		createResult: services.CreateResult{
			Transaction: core.Transaction{
				ID: "tx-1", Type: core.Expense, Amount: 500,
				Category: "Food", Date: time.Now(), CreatedAt: time.Now(),
			},
			OverBudget: true,
			Spent:      1100,
			Budget:     1000,
		},
	}
	s := newTestServer(t, backend)

	rec := doJSON(s, http.MethodPost, "/api/transactions", map[string]any{
		"type": "expense", "amount": 500, "category": "Food",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp createTransactionResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.OverBudget || resp.Spent != 1100 || resp.Budget != 1000 {
		t.Errorf("budget verdict = %+v, want over with 1100/1000", resp)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	s := newTestServer(t, &fakeBackend{})

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"negative amount", map[string]any{"type": "expense", "amount": -5, "category": "Food"}, http.StatusUnprocessableEntity},
		{"bad type", map[string]any{"type": "transfer", "amount": 5, "category": "Food"}, http.StatusUnprocessableEntity},
		{"unknown category", map[string]any{"type": "expense", "amount": 5, "category": "Gambling"}, http.StatusUnprocessableEntity},
		{"bad date", map[string]any{"type": "expense", "amount": 5, "category": "Food", "date": "12-06-2024"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := doJSON(s, http.MethodPost, "/api/transactions", tt.body); rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestListTransactionsConvertsCurrency(t *testing.T) {
	backend := &fakeBackend{transactions: []core.Transaction{
		{ID: "tx-1", Type: core.Expense, Amount: 1000, Category: "Food", Date: time.Now(), CreatedAt: time.Now()},
	}}
	s := newTestServer(t, backend)

	rec := doJSON(s, http.MethodGet, "/api/transactions?currency=usd", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp listTransactionsResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Currency != "USD" {
		t.Errorf("currency = %q, want USD", resp.Currency)
	}
	if len(resp.Transactions) != 1 {
		t.Fatalf("got %d transactions, want 1", len(resp.Transactions))
	}
	if got, want := resp.Transactions[0].Amount, 12.0; got != want {
		t.Errorf("converted amount = %v, want %v", got, want)
	}
}

func TestListTransactionsUnknownCurrency(t *testing.T) {
	s := newTestServer(t, &fakeBackend{})
	if rec := doJSON(s, http.MethodGet, "/api/transactions?currency=GBP", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetTransactionNotFound(t *testing.T) {
	s := newTestServer(t, &fakeBackend{})
	if rec := doJSON(s, http.MethodGet, "/api/transactions/missing", nil); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestUpdateTransactionKeepsStoredFields(t *testing.T) {
	created := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	backend := &fakeBackend{transactions: []core.Transaction{
		{ID: "tx-1", Type: core.Expense, Amount: 100, Category: "Food",
			Date: time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC), CreatedAt: created},
	}}
	s := newTestServer(t, backend)

	rec := doJSON(s, http.MethodPut, "/api/transactions/tx-1", map[string]any{
		"type": "expense", "amount": 250, "category": "Travel", "date": "2024-07-01",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp transactionJSON
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Date != "2024-07-01" || resp.Amount != 250 || resp.Category != "Travel" {
		t.Errorf("updated fields = %+v", resp)
	}
	if resp.CreatedAt != "2024-06-01T10:00:00Z" {
		t.Errorf("created_at = %q, want the stored value", resp.CreatedAt)
	}
}

func TestUpdateTransactionRequiresDate(t *testing.T) {
	backend := &fakeBackend{transactions: []core.Transaction{
		{ID: "tx-1", Type: core.Expense, Amount: 100, Category: "Food",
			Date: time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC), CreatedAt: time.Now()},
	}}
	s := newTestServer(t, backend)

	rec := doJSON(s, http.MethodPut, "/api/transactions/tx-1", map[string]any{
		"type": "expense", "amount": 20, "category": "Food",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
	}
	if stored := backend.transactions[0]; stored.Amount != 100 || stored.Date.IsZero() {
		t.Errorf("stored row changed on a dateless update: %+v", stored)
	}
}

func TestDeleteTransaction(t *testing.T) {
	backend := &fakeBackend{transactions: []core.Transaction{
		{ID: "tx-1", Type: core.Expense, Amount: 10, Category: "Food", Date: time.Now()},
	}}
	s := newTestServer(t, backend)

	if rec := doJSON(s, http.MethodDelete, "/api/transactions/tx-1", nil); rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if rec := doJSON(s, http.MethodDelete, "/api/transactions/tx-2", nil); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestExportTransactionsCSV(t *testing.T) {
	backend := &fakeBackend{transactions: []core.Transaction{
		{ID: "tx-1", Type: core.Expense, Amount: 450.5, Category: "Food",
			Description: "lunch", Date: time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)},
	}}
	s := newTestServer(t, backend)

	rec := doJSON(s, http.MethodGet, "/api/transactions/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "id,date,type,category,amount,description") {
		t.Errorf("missing CSV header: %s", body)
	}
	if !strings.Contains(body, "tx-1,2024-06-12,expense,Food,450.50,lunch") {
		t.Errorf("missing CSV row: %s", body)
	}
}

func TestSetBudgetValidation(t *testing.T) {
	s := newTestServer(t, &fakeBackend{})

	if rec := doJSON(s, http.MethodPut, "/api/budgets", map[string]any{"category": "Gambling", "amount": 100}); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("unknown category status = %d, want 422", rec.Code)
	}
	if rec := doJSON(s, http.MethodPut, "/api/budgets", map[string]any{"category": "Food", "amount": 0}); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("zero amount status = %d, want 422", rec.Code)
	}
	if rec := doJSON(s, http.MethodPut, "/api/budgets", map[string]any{"category": "Food", "amount": 1000}); rec.Code != http.StatusOK {
		t.Errorf("valid budget status = %d, want 200", rec.Code)
	}
}

func TestDashboard(t *testing.T) {
	backend := &fakeBackend{
		transactions: []core.Transaction{
			{ID: "a", Type: core.Income, Amount: 5000, Category: "Salary", Date: time.Now()},
			{ID: "b", Type: core.Expense, Amount: 600, Category: "Food", Date: time.Now()},
			{ID: "c", Type: core.Expense, Amount: 900, Category: "Food", Date: time.Now()},
		},
		budgets: core.Budgets{"Food": 1000},
	}
	s := newTestServer(t, backend)

	rec := doJSON(s, http.MethodGet, "/api/dashboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp dashboardResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.TotalIncome != 5000 || resp.TotalExpense != 1500 || resp.Balance != 3500 {
		t.Errorf("totals = %+v", resp)
	}
	if len(resp.Budgets) != 1 {
		t.Fatalf("got %d budget entries, want 1", len(resp.Budgets))
	}
	food := resp.Budgets[0]
	if !food.OverBudget || food.UsagePercent != 100 || food.Spent != 1500 {
		t.Errorf("food budget status = %+v", food)
	}
}

func TestDashboardCachesUntilWrite(t *testing.T) {
	backend := &fakeBackend{transactions: []core.Transaction{
		{ID: "a", Type: core.Expense, Amount: 100, Category: "Food", Date: time.Now()},
	}}
	s := newTestServer(t, backend)

	if rec := doJSON(s, http.MethodGet, "/api/dashboard", nil); rec.Code != http.StatusOK {
		t.Fatalf("first dashboard status = %d", rec.Code)
	}

	// Mutate behind the cache: the stale aggregate must survive reads.
	backend.transactions = append(backend.transactions, core.Transaction{
		ID: "b", Type: core.Expense, Amount: 900, Category: "Food", Date: time.Now(),
	})

	var cached dashboardResponse
	_ = json.Unmarshal(doJSON(s, http.MethodGet, "/api/dashboard", nil).Body.Bytes(), &cached)
	if cached.TotalExpense != 100 {
		t.Errorf("cached total = %v, want 100", cached.TotalExpense)
	}

	// A write invalidates.
	doJSON(s, http.MethodPost, "/api/transactions", map[string]any{
		"type": "expense", "amount": 1, "category": "Food",
	})

	var fresh dashboardResponse
	_ = json.Unmarshal(doJSON(s, http.MethodGet, "/api/dashboard", nil).Body.Bytes(), &fresh)
	if fresh.TotalExpense != 1000 {
		t.Errorf("fresh total = %v, want 1000", fresh.TotalExpense)
	}
}

func TestLoanEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeBackend{})

	rec := doJSON(s, http.MethodPost, "/api/loan", map[string]any{
		"principal": 100000, "annual_rate_percent": 10, "term_months": 12,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp loanResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if diff := resp.MonthlyPayment - 8791.59; diff < -0.01 || diff > 0.01 {
		t.Errorf("monthly payment = %v, want ~8791.59", resp.MonthlyPayment)
	}
	if len(resp.Schedule) != 12 {
		t.Errorf("schedule length = %d, want 12", len(resp.Schedule))
	}
	if last := resp.Schedule[len(resp.Schedule)-1]; last.RemainingBalance != 0 {
		t.Errorf("final balance = %v, want 0", last.RemainingBalance)
	}

	if rec := doJSON(s, http.MethodPost, "/api/loan", map[string]any{
		"principal": 0, "annual_rate_percent": 10, "term_months": 12,
	}); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid input status = %d, want 422", rec.Code)
	}
}

func TestExtractReceiptEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeBackend{})

	rec := doJSON(s, http.MethodPost, "/api/extract/receipt", map[string]any{
		"text": "Zomato Order\nTotal: Rs. 450.50\n12-06-2024",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp receiptResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Amount != "450.50" {
		t.Errorf("amount = %q, want 450.50", resp.Amount)
	}
	if resp.Date != "2024-06-12" {
		t.Errorf("date = %q, want 2024-06-12", resp.Date)
	}
	if resp.Merchant != "Zomato Order" || resp.Category != "Food" {
		t.Errorf("merchant/category = %q/%q", resp.Merchant, resp.Category)
	}

	if rec := doJSON(s, http.MethodPost, "/api/extract/receipt", map[string]any{"text": "  "}); rec.Code != http.StatusBadRequest {
		t.Errorf("empty text status = %d, want 400", rec.Code)
	}
}

func TestExtractSpeechEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeBackend{})

	rec := doJSON(s, http.MethodPost, "/api/extract/speech", map[string]any{
		"text": "spent 500 on food today",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp speechResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Amount != "500" || resp.Category != "Food" || resp.Type != "expense" {
		t.Errorf("speech result = %+v", resp)
	}
}

func TestShareEndpoint(t *testing.T) {
	backend := &fakeBackend{transactions: []core.Transaction{
		{ID: "tx-1", Type: core.Expense, Amount: 900, Category: "Food",
			Description: "team dinner", Date: time.Now()},
	}}
	s := newTestServer(t, backend)

	rec := doJSON(s, http.MethodPost, "/api/share", map[string]any{
		"transaction_id": "tx-1",
		"friends": []map[string]string{
			{"name": "Asha", "email": "asha@example.com"},
			{"name": "Ravi"},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp shareResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Total != 900 || resp.YourShare != 300 {
		t.Errorf("total/your share = %v/%v, want 900/300", resp.Total, resp.YourShare)
	}
	if len(resp.Friends) != 2 || resp.Friends[0].Share != 300 {
		t.Errorf("friends = %+v", resp.Friends)
	}
	if !strings.HasPrefix(resp.Friends[0].UPILink, "upi://pay?") {
		t.Errorf("upi link = %q", resp.Friends[0].UPILink)
	}

	if rec := doJSON(s, http.MethodPost, "/api/share", map[string]any{
		"transaction_id": "tx-1", "friends": []map[string]string{},
	}); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("no friends status = %d, want 422", rec.Code)
	}

	if rec := doJSON(s, http.MethodPost, "/api/share", map[string]any{
		"transaction_id": "missing", "friends": []map[string]string{{"name": "Asha"}},
	}); rec.Code != http.StatusNotFound {
		t.Errorf("missing tx status = %d, want 404", rec.Code)
	}
}

func TestRateLimitOnWrites(t *testing.T) {
	s := newTestServer(t, &fakeBackend{})

	var lastCode int
	for i := 0; i < requestsPerMinute+1; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/loan",
			strings.NewReader(`{"principal":1000,"annual_rate_percent":5,"term_months":6}`))
		req.Header.Set("X-Forwarded-For", "203.0.113.7")
		rec := httptest.NewRecorder()
		s.Server.Handler.ServeHTTP(rec, req)
		lastCode = rec.Code
	}
	if lastCode != http.StatusTooManyRequests {
		t.Errorf("final status = %d, want 429", lastCode)
	}
}
