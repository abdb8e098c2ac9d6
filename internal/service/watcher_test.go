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

func TestWatcherRecomputesSummaryOnChange(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewFinanceService(st, testLogger())
	rec := NewReconciler(st, testLogger())
	summaries := make(chan Summary, 16)

	w := NewWatcher(st, svc, rec, testLogger()).OnSummary(func(s Summary) {
		summaries <- s
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx, testUser) }()

	waitFor := func(pred func(Summary) bool) Summary {
		deadline := time.After(3 * time.Second)
		for {
			select {
			case s := <-summaries:
				if pred(s) {
					return s
				}
			case <-deadline:
				t.Fatal("timed out waiting for summary")
			}
		}
	}

	// Initial snapshot produces an empty summary.
	waitFor(func(s Summary) bool { return len(s.WalletBalances) == 0 })

	require.NoError(t, st.CreateWallet(ctx, testUser, &model.Wallet{
		Name: "Bank", Kind: model.WalletBank, InitialBalance: 1_000_000,
	}))
	s := waitFor(func(s Summary) bool { return len(s.WalletBalances) == 1 })
	assert.Equal(t, int64(1_000_000), s.LiquidAssets)
}

func TestWatcherRunsReconcilerOnRefresh(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewFinanceService(st, testLogger())
	now := date(2026, time.September, 15)
	rec := NewReconciler(st, testLogger()).WithClock(func() time.Time { return now })
	summaries := make(chan Summary, 16)

	w := NewWatcher(st, svc, rec, testLogger()).OnSummary(func(s Summary) {
		summaries <- s
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx, testUser) }()

	require.NoError(t, st.CreateSubscription(ctx, testUser, &model.Subscription{
		Name: "Netflix", Cost: 186_000, Cycle: model.CycleMonthly, PaymentDay: 10, WalletID: "bank",
	}))

	// The subscription change triggers a refresh whose reconciler pass
	// generates the bill; no explicit reconcile call needed.
	deadline := time.After(3 * time.Second)
	for {
		transactions, err := st.ListTransactions(ctx, testUser, store.TransactionFilter{})
		require.NoError(t, err)
		if len(transactions) == 1 {
			assert.Equal(t, "Langganan", transactions[0].Category)
			break
		}
		select {
		case <-deadline:
			t.Fatal("bill was never generated")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
