package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dompetkeluarga/backend/internal/model"
	"github.com/dompetkeluarga/backend/internal/store"
	"github.com/rs/zerolog"
)

// billingCategory tags generated transactions with the stock
// subscription expense category.
const billingCategory = "Langganan"

// Reconciler materializes due subscription bills as expense
// transactions. It runs on every snapshot refresh rather than on a
// timer, so it must be idempotent: within one calendar month a
// subscription produces at most one generated transaction, enforced by
// the back-reference existence check, no matter how many times Run is
// invoked.
type Reconciler struct {
	store store.Store
	log   zerolog.Logger
	now   func() time.Time
}

// NewReconciler creates a reconciler using the real clock.
func NewReconciler(s store.Store, log zerolog.Logger) *Reconciler {
	return &Reconciler{store: s, log: log, now: time.Now}
}

// WithClock overrides the clock, for tests.
func (r *Reconciler) WithClock(now func() time.Time) *Reconciler {
	r.now = now
	return r
}

// ReconcileResult counts what one pass did.
type ReconcileResult struct {
	Generated int `json:"generated"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
}

// BillingDate returns this month's target billing date for a payment
// day, clamping to the last day of short months (day 31 in February
// bills on the 28th or 29th).
func BillingDate(paymentDay int, now time.Time) time.Time {
	last := daysInMonth(now.Year(), now.Month())
	day := paymentDay
	if day > last {
		day = last
	}
	return time.Date(now.Year(), now.Month(), day, 0, 0, 0, 0, now.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Run evaluates every subscription in the user's partition once.
// Yearly cycles are never auto-billed; they stay manual.
func (r *Reconciler) Run(ctx context.Context, userID string) (ReconcileResult, error) {
	var res ReconcileResult

	subs, err := r.store.ListSubscriptions(ctx, userID)
	if err != nil {
		return res, fmt.Errorf("list subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return res, nil
	}

	transactions, err := r.store.ListTransactions(ctx, userID, store.TransactionFilter{})
	if err != nil {
		return res, fmt.Errorf("list transactions: %w", err)
	}

	now := r.now()

	// Subscriptions already billed this calendar month.
	billed := make(map[string]bool)
	for _, t := range transactions {
		if t.SubscriptionID == "" || t.Date.IsZero() {
			continue
		}
		if t.Date.Year() == now.Year() && t.Date.Month() == now.Month() {
			billed[t.SubscriptionID] = true
		}
	}

	for _, sub := range subs {
		if sub.PaymentDay <= 0 || sub.WalletID == "" || sub.Cost == 0 || sub.Cycle != model.CycleMonthly {
			res.Skipped++
			continue
		}

		target := BillingDate(sub.PaymentDay, now)
		if !sub.StartDate.IsZero() && sub.StartDate.After(target) {
			res.Skipped++ // not yet active this month
			continue
		}
		if now.Before(target) {
			res.Skipped++ // not yet due
			continue
		}
		if billed[sub.ID] {
			res.Skipped++
			continue
		}

		t := &model.Transaction{
			Kind:           model.TransactionExpense,
			Amount:         sub.Cost,
			Category:       billingCategory,
			WalletID:       sub.WalletID,
			SubscriptionID: sub.ID,
			Note:           fmt.Sprintf("Tagihan Otomatis: %s", sub.Name),
			Date:           target,
		}
		if err := r.store.CreateTransaction(ctx, userID, t); err != nil {
			r.log.Error().Err(err).
				Str("user", userID).
				Str("subscription", sub.ID).
				Msg("failed to generate billing transaction")
			res.Errors++
			continue
		}

		billed[sub.ID] = true
		res.Generated++
		r.log.Info().
			Str("user", userID).
			Str("subscription", sub.ID).
			Str("name", sub.Name).
			Time("billingDate", target).
			Msg("generated subscription billing transaction")
	}

	return res, nil
}
