package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dompetkeluarga/backend/internal/auth"
	"github.com/dompetkeluarga/backend/internal/logger"
	"github.com/dompetkeluarga/backend/internal/model"
	"github.com/dompetkeluarga/backend/internal/pricing"
	"github.com/dompetkeluarga/backend/internal/service"
	"github.com/dompetkeluarga/backend/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestRouter(t *testing.T) (*gin.Engine, store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewWithWriter(io.Discard)
	st := store.NewMemoryStore()
	svc := service.NewFinanceService(st, log)
	rec := service.NewReconciler(st, log)
	fx := pricing.NewExchangerWithBaseURL("http://127.0.0.1:0")
	gold := pricing.NewGoldClient(fx, 700_000, log).WithBaseURL("http://127.0.0.1:0")
	zakat := service.NewZakatCalculator(gold)
	allocator, err := service.NewAllocator(t.TempDir(), st, log)
	require.NoError(t, err)

	router := gin.New()
	api := router.Group("/api/v1")
	api.Use(auth.SkipMiddleware())
	New(svc, rec, zakat, allocator, gold, fx, log).Register(api)
	return router, st
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWalletEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/wallets", gin.H{
		"name": "Bank BCA", "type": "bank", "initialBalance": 1_000_000,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created model.Wallet
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, model.WalletBank, created.Kind)

	w = doJSON(t, router, http.MethodGet, "/api/v1/wallets", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var wallets []model.Wallet
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &wallets))
	require.Len(t, wallets, 1)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/wallets/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodPut, "/api/v1/wallets/"+created.ID, gin.H{"name": "X", "type": "bank"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateTransactionRejectsInvalid(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/transactions", gin.H{
		"type": "expense", "amount": 100,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSummaryEndpoint(t *testing.T) {
	router, st := newTestRouter(t)
	ctx := context.Background()

	require.NoError(t, st.CreateWallet(ctx, "local-dev-user", &model.Wallet{
		ID: "bank", Name: "Bank", Kind: model.WalletBank, InitialBalance: 500_000,
	}))
	require.NoError(t, st.CreateTransaction(ctx, "local-dev-user", &model.Transaction{
		Kind: model.TransactionIncome, Amount: 250_000, WalletID: "bank", Date: time.Now(),
	}))

	w := doJSON(t, router, http.MethodGet, "/api/v1/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var summary service.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, int64(750_000), summary.LiquidAssets)
	assert.Equal(t, int64(250_000), summary.Income)
}

func TestZakatEndpointManualPrice(t *testing.T) {
	router, st := newTestRouter(t)

	require.NoError(t, st.CreateWallet(context.Background(), "local-dev-user", &model.Wallet{
		ID: "bank", Name: "Bank", Kind: model.WalletBank, InitialBalance: 100_000_000,
	}))

	w := doJSON(t, router, http.MethodGet, "/api/v1/zakat?goldPrice=1000000", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var report struct {
		PriceSource string `json:"priceSource"`
		Obligated   bool   `json:"obligated"`
		Amount      string `json:"amount"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "manual", report.PriceSource)
	assert.True(t, report.Obligated)
	assert.Equal(t, "2500000", report.Amount)

	w = doJSON(t, router, http.MethodGet, "/api/v1/zakat?goldPrice=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReconcileEndpoint(t *testing.T) {
	router, st := newTestRouter(t)

	require.NoError(t, st.CreateSubscription(context.Background(), "local-dev-user", &model.Subscription{
		Name: "Netflix", Cost: 186_000, Cycle: model.CycleMonthly, PaymentDay: 1, WalletID: "bank",
	}))

	w := doJSON(t, router, http.MethodPost, "/api/v1/reconcile", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var res service.ReconcileResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Generated)
}

func TestAllocatorEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPut, "/api/v1/allocator/state", gin.H{
		"salary":   10_000_000,
		"walletId": "bank",
		"allocations": []gin.H{
			{"category": "Makanan", "amount": 2_500_000},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/allocator/state", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		State          service.AllocatorState `json:"state"`
		TotalAllocated int64                  `json:"totalAllocated"`
		Remaining      int64                  `json:"remaining"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(2_500_000), resp.TotalAllocated)
	assert.Equal(t, int64(7_500_000), resp.Remaining)
	assert.InDelta(t, 25.0, resp.State.Allocations[0].Percentage, 0.001)

	w = doJSON(t, router, http.MethodPost, "/api/v1/allocator/templates", gin.H{"name": "Bulanan"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/allocator/templates", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var templates []service.AllocatorTemplate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &templates))
	assert.Len(t, templates, 1)
}

func TestCreditUsageEndpoint(t *testing.T) {
	router, st := newTestRouter(t)
	ctx := context.Background()

	require.NoError(t, st.CreateWallet(ctx, "local-dev-user", &model.Wallet{
		ID: "cc", Name: "Kartu Kredit", Kind: model.WalletCreditCard, Limit: 10_000_000,
	}))
	require.NoError(t, st.CreateWallet(ctx, "local-dev-user", &model.Wallet{
		ID: "bank", Name: "Bank", Kind: model.WalletBank, InitialBalance: 500_000,
	}))
	require.NoError(t, st.CreateTransaction(ctx, "local-dev-user", &model.Transaction{
		Kind: model.TransactionExpense, Amount: 4_000_000, WalletID: "cc", Date: time.Now(),
	}))

	w := doJSON(t, router, http.MethodGet, "/api/v1/wallets/cc/credit-usage", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var usage service.CreditCardUsage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &usage))
	assert.Equal(t, int64(-4_000_000), usage.Debt)
	assert.InDelta(t, 40.0, usage.UsedPercent, 0.001)

	// Usage is only defined for credit card wallets.
	w = doJSON(t, router, http.MethodGet, "/api/v1/wallets/bank/credit-usage", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/wallets/missing/credit-usage", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportEndpointReturnsWorkbook(t *testing.T) {
	router, st := newTestRouter(t)
	ctx := context.Background()

	require.NoError(t, st.CreateTransaction(ctx, "local-dev-user", &model.Transaction{
		Kind: model.TransactionIncome, Amount: 250_000, WalletID: "bank",
		Category: "Gaji Pokok", Date: time.Now(),
	}))
	require.NoError(t, st.CreateTransaction(ctx, "local-dev-user", &model.Transaction{
		Kind: model.TransactionExpense, Amount: 50_000, WalletID: "bank",
		Category: "Makanan", Date: time.Now(),
	}))

	w := doJSON(t, router, http.MethodGet, "/api/v1/transactions/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	head, err := f.GetCellValue("Transaksi", "E1")
	require.NoError(t, err)
	assert.Equal(t, "Jumlah (Rp)", head)

	// Totals footer sits one blank row below the two data rows, in
	// Indonesian display format.
	income, err := f.GetCellValue("Transaksi", "E5")
	require.NoError(t, err)
	assert.Equal(t, model.FormatIDR(250_000), income)
	expense, err := f.GetCellValue("Transaksi", "E6")
	require.NoError(t, err)
	assert.Equal(t, "Rp 50.000", expense)
}
