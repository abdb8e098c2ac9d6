package service

import (
	"context"
	"testing"
	"time"

	"github.com/dompetkeluarga/backend/internal/model"
	"github.com/dompetkeluarga/backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*FinanceService, store.Store) {
	t.Helper()
	st := store.NewMemoryStore()
	return NewFinanceService(st, testLogger()), st
}

func TestEnsureDefaultsSeedsEmptyPartition(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureDefaults(ctx, testUser))

	categories, err := svc.ListCategories(ctx, testUser)
	require.NoError(t, err)
	assert.NotEmpty(t, categories)

	names := make(map[string]model.CategoryKind)
	for _, c := range categories {
		names[c.Name] = c.Kind
	}
	assert.Equal(t, model.CategoryExpense, names["Langganan"])
	assert.Equal(t, model.CategoryIncome, names["Gaji Pokok"])

	wallets, err := svc.ListWallets(ctx, testUser)
	require.NoError(t, err)
	assert.NotEmpty(t, wallets)

	goals, err := svc.ListGoals(ctx, testUser)
	require.NoError(t, err)
	assert.NotEmpty(t, goals)
}

func TestEnsureDefaultsLeavesExistingDataAlone(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	require.NoError(t, st.CreateCategory(ctx, testUser, &model.Category{
		Name: "Custom", Kind: model.CategoryExpense,
	}))

	require.NoError(t, svc.EnsureDefaults(ctx, testUser))

	categories, err := svc.ListCategories(ctx, testUser)
	require.NoError(t, err)
	assert.Len(t, categories, 1)
	assert.Equal(t, "Custom", categories[0].Name)
}

func TestCreateWalletClearsLimitForNonCreditCards(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	w, err := svc.CreateWallet(ctx, testUser, &model.Wallet{
		Name: "Bank", Kind: model.WalletBank, Limit: 5_000_000,
	})
	require.NoError(t, err)
	assert.Zero(t, w.Limit)
	assert.NotEmpty(t, w.ID)

	cc, err := svc.CreateWallet(ctx, testUser, &model.Wallet{
		Name: "CC", Kind: model.WalletCreditCard, Limit: 5_000_000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5_000_000), cc.Limit)
}

func TestCreateTransactionValidates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateTransaction(ctx, testUser, &model.Transaction{
		Kind: model.TransactionExpense, Amount: 100,
	})
	assert.Error(t, err, "expense without wallet")

	_, err = svc.CreateTransaction(ctx, testUser, &model.Transaction{
		Kind: model.TransactionTransfer, Amount: 100, SourceWalletID: "a", TargetWalletID: "a",
	})
	assert.Error(t, err, "transfer to the same wallet")

	created, err := svc.CreateTransaction(ctx, testUser, &model.Transaction{
		Kind: model.TransactionIncome, Amount: 100, WalletID: "bank", Date: time.Now(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
}

func TestCreateAssetWithFundingWallet(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	asset, err := svc.CreateAsset(ctx, testUser, &model.Asset{
		Name:          "Emas Antam",
		PurchaseValue: 10_000_000,
		CurrentValue:  10_000_000,
	}, "bank")
	require.NoError(t, err)
	assert.NotEmpty(t, asset.ID)

	transactions, err := st.ListTransactions(ctx, testUser, store.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, transactions, 1)

	purchase := transactions[0]
	assert.Equal(t, model.TransactionInvestment, purchase.Kind)
	assert.Equal(t, int64(10_000_000), purchase.Amount)
	assert.Equal(t, "Investasi", purchase.Category)
	assert.Equal(t, "bank", purchase.WalletID)
	assert.Equal(t, "Beli Aset: Emas Antam", purchase.Note)
}

func TestCreateAssetWithoutFundingWallet(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateAsset(ctx, testUser, &model.Asset{
		Name: "Saham BBCA", PurchaseValue: 5_000_000, CurrentValue: 5_500_000,
	}, "")
	require.NoError(t, err)

	transactions, err := st.ListTransactions(ctx, testUser, store.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, transactions)
}

func TestSubscriptionValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		sub  model.Subscription
	}{
		{"missing name", model.Subscription{Cycle: model.CycleMonthly, PaymentDay: 1}},
		{"payment day zero", model.Subscription{Name: "X", Cycle: model.CycleMonthly}},
		{"payment day 32", model.Subscription{Name: "X", Cycle: model.CycleMonthly, PaymentDay: 32}},
		{"bad cycle", model.Subscription{Name: "X", Cycle: "weekly", PaymentDay: 1}},
		{"negative cost", model.Subscription{Name: "X", Cost: -1, Cycle: model.CycleMonthly, PaymentDay: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateSubscription(ctx, testUser, &tc.sub)
			assert.Error(t, err)
		})
	}

	sub, err := svc.CreateSubscription(ctx, testUser, &model.Subscription{
		Name: "Netflix", Cost: 186_000, Cycle: model.CycleMonthly, PaymentDay: 10, WalletID: "bank",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID)
}

func TestServiceSummary(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	w, err := svc.CreateWallet(ctx, testUser, &model.Wallet{
		Name: "Bank", Kind: model.WalletBank, InitialBalance: 1_000_000,
	})
	require.NoError(t, err)

	_, err = svc.CreateTransaction(ctx, testUser, &model.Transaction{
		Kind: model.TransactionIncome, Amount: 500_000, WalletID: w.ID, Date: time.Now(),
	})
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, int64(1_500_000), summary.LiquidAssets)
	assert.Equal(t, int64(500_000), summary.Income)
}
