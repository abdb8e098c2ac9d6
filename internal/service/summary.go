package service

import (
	"sort"
	"time"

	"github.com/dompetkeluarga/backend/internal/model"
	"github.com/shopspring/decimal"
)

// The derivation engine. Everything in this file is a pure function
// over full collection snapshots: no store access, no side effects,
// recomputed from scratch on every refresh. Totals stay correct under
// partially-loaded collections (missing collections read as empty) and
// under dangling references (a transaction pointing at a deleted
// wallet still counts toward global income/expense).

// TrendMonths is the width of the dashboard trend windows.
const TrendMonths = 6

// WalletBalance is a wallet joined with its derived current balance.
type WalletBalance struct {
	model.Wallet
	CurrentBalance int64 `json:"currentBalance"`
}

// Summary is the derived financial position of one user partition.
// CreditCardDebt is signed: accumulated charges drive it negative, and
// it nets directly into NetWorth.
type Summary struct {
	Income          int64           `json:"income"`
	Expense         int64           `json:"expense"`
	LiquidAssets    int64           `json:"liquidAssets"`
	CreditCardDebt  int64           `json:"creditCardDebt"`
	InvestmentValue int64           `json:"investmentValue"`
	NetWorth        int64           `json:"netWorth"`
	WalletBalances  []WalletBalance `json:"walletBalances"`
}

// ComputeSummary derives wallet balances and aggregate totals.
//
// For each wallet: balance = initial + income - expense - transferOut
// + transferIn - investment purchases. The identity holds regardless
// of transaction order since it is a plain signed sum.
func ComputeSummary(wallets []*model.Wallet, transactions []*model.Transaction, assets []*model.Asset) Summary {
	var income, expense int64
	delta := make(map[string]int64, len(wallets))

	for _, t := range transactions {
		switch t.Kind {
		case model.TransactionIncome:
			income += t.Amount
			delta[t.WalletID] += t.Amount
		case model.TransactionExpense:
			expense += t.Amount
			delta[t.WalletID] -= t.Amount
		case model.TransactionTransfer:
			delta[t.SourceWalletID] -= t.Amount
			delta[t.TargetWalletID] += t.Amount
		case model.TransactionInvestment:
			delta[t.WalletID] -= t.Amount
		}
	}

	var investment int64
	for _, a := range assets {
		investment += a.CurrentValue
	}

	balances := make([]WalletBalance, 0, len(wallets))
	var liquid, ccDebt int64
	for _, w := range wallets {
		b := WalletBalance{Wallet: *w, CurrentBalance: w.InitialBalance + delta[w.ID]}
		balances = append(balances, b)
		if w.Kind == model.WalletCreditCard {
			ccDebt += b.CurrentBalance
		} else {
			liquid += b.CurrentBalance
		}
	}

	return Summary{
		Income:          income,
		Expense:         expense,
		LiquidAssets:    liquid,
		CreditCardDebt:  ccDebt,
		InvestmentValue: investment,
		NetWorth:        liquid + investment + ccDebt,
		WalletBalances:  balances,
	}
}

var shortMonths = [...]string{
	"Jan", "Feb", "Mar", "Apr", "Mei", "Jun",
	"Jul", "Agu", "Sep", "Okt", "Nov", "Des",
}

func monthLabel(t time.Time) string {
	return shortMonths[t.Month()-1] + " " + t.Format("06")
}

// TrendPoint is one month in the income/expense trend series.
type TrendPoint struct {
	Label   string `json:"label"`
	Year    int    `json:"year"`
	Month   int    `json:"month"`
	Income  int64  `json:"income"`
	Expense int64  `json:"expense"`
}

// MonthlyTrend buckets income and expense totals into the trailing six
// calendar months ending at now's month, oldest first. The series
// always has exactly six entries; months without data stay zero.
// Transactions with a zero date are skipped (they have no bucket).
func MonthlyTrend(transactions []*model.Transaction, now time.Time) []TrendPoint {
	points := make([]TrendPoint, 0, TrendMonths)
	index := make(map[int]int, TrendMonths)
	for i := TrendMonths - 1; i >= 0; i-- {
		d := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -i, 0)
		index[d.Year()*12+int(d.Month())] = len(points)
		points = append(points, TrendPoint{
			Label: monthLabel(d),
			Year:  d.Year(),
			Month: int(d.Month()),
		})
	}

	for _, t := range transactions {
		if t.Date.IsZero() {
			continue
		}
		i, ok := index[t.Date.Year()*12+int(t.Date.Month())]
		if !ok {
			continue
		}
		switch t.Kind {
		case model.TransactionIncome:
			points[i].Income += t.Amount
		case model.TransactionExpense:
			points[i].Expense += t.Amount
		}
	}
	return points
}

// GrowthPoint is one month-end valuation of the investment portfolio.
type GrowthPoint struct {
	Label       string `json:"label"`
	CostBasis   int64  `json:"costBasis"`
	MarketValue int64  `json:"marketValue"`
}

// AssetGrowth evaluates total cost basis and market value at each of
// the trailing six month-ends, counting only assets created on or
// before that month-end. Assets without a creation timestamp are
// treated as always active.
func AssetGrowth(assets []*model.Asset, now time.Time) []GrowthPoint {
	points := make([]GrowthPoint, 0, TrendMonths)
	for i := TrendMonths - 1; i >= 0; i-- {
		endOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).
			AddDate(0, 1-i, 0).Add(-time.Nanosecond)
		p := GrowthPoint{Label: monthLabel(endOfMonth)}
		for _, a := range assets {
			// zero CreatedAt is never after anything
			if a.CreatedAt.After(endOfMonth) {
				continue
			}
			p.CostBasis += a.PurchaseValue
			p.MarketValue += a.CurrentValue
		}
		points = append(points, p)
	}
	return points
}

// BudgetStatus reports current-month spend against one expense
// category's configured budget. Percent is not clamped: overspending
// reports above 100.
type BudgetStatus struct {
	model.Category
	Spent   int64   `json:"spent"`
	Percent float64 `json:"percent"`
}

// BudgetProgress joins this calendar month's expense spend per category
// name against expense categories with a budget set, sorted by percent
// consumed, highest first.
func BudgetProgress(transactions []*model.Transaction, categories []*model.Category, now time.Time) []BudgetStatus {
	spend := make(map[string]int64)
	for _, t := range transactions {
		if t.Kind != model.TransactionExpense || t.Date.IsZero() {
			continue
		}
		if t.Date.Year() == now.Year() && t.Date.Month() == now.Month() {
			spend[t.Category] += t.Amount
		}
	}

	out := make([]BudgetStatus, 0, len(categories))
	for _, c := range categories {
		if c.Kind != model.CategoryExpense || c.Budget <= 0 {
			continue
		}
		spent := spend[c.Name]
		out = append(out, BudgetStatus{
			Category: *c,
			Spent:    spent,
			Percent:  float64(spent) / float64(c.Budget) * 100,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Percent > out[j].Percent })
	return out
}

// GoalStatus reports progress of one investment goal. Percent is not
// clamped upward; a goal without a target reports 0, never NaN.
type GoalStatus struct {
	model.Goal
	CurrentTotal int64   `json:"currentTotal"`
	Percent      float64 `json:"percent"`
}

// GoalProgress totals the market value of assets attached to each goal,
// matching by goal id with a legacy name fallback, sorted by percent
// complete, highest first.
func GoalProgress(goals []*model.Goal, assets []*model.Asset) []GoalStatus {
	goalList := make([]model.Goal, len(goals))
	for i, g := range goals {
		goalList[i] = *g
	}

	totals := make(map[string]int64, len(goals))
	for _, a := range assets {
		if id := model.ResolveGoalID(*a, goalList); id != "" {
			totals[id] += a.CurrentValue
		}
	}

	out := make([]GoalStatus, 0, len(goals))
	for _, g := range goals {
		st := GoalStatus{Goal: *g, CurrentTotal: totals[g.ID]}
		if g.Target > 0 {
			st.Percent = float64(st.CurrentTotal) / float64(g.Target) * 100
		}
		if st.Percent < 0 {
			st.Percent = 0
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Percent > out[j].Percent })
	return out
}

// CreditCardUsage describes how much of a credit card's limit is
// consumed. UsedPercent is the true figure and may exceed 100;
// RemainingRoom is clamped at zero for display.
type CreditCardUsage struct {
	Debt          int64   `json:"debt"`
	UsedPercent   float64 `json:"usedPercent"`
	RemainingRoom int64   `json:"remainingRoom"`
}

// CreditUsage derives limit consumption from a credit card wallet's
// signed balance. The underlying debt figure is never clamped.
func CreditUsage(w WalletBalance) CreditCardUsage {
	debt := w.CurrentBalance
	used := debt
	if used < 0 {
		used = -used
	}
	u := CreditCardUsage{Debt: debt}
	if w.Limit > 0 {
		u.UsedPercent = float64(used) / float64(w.Limit) * 100
	}
	if room := w.Limit - used; room > 0 {
		u.RemainingRoom = room
	}
	return u
}

// SubscriptionTotals returns the combined monthly burn of all
// subscriptions (yearly cycles contribute cost/12) and its yearly
// equivalent.
func SubscriptionTotals(subs []*model.Subscription) (monthly, yearly decimal.Decimal) {
	twelve := decimal.NewFromInt(12)
	for _, s := range subs {
		cost := decimal.NewFromInt(s.Cost)
		if s.Cycle == model.CycleYearly {
			cost = cost.Div(twelve)
		}
		monthly = monthly.Add(cost)
	}
	return monthly, monthly.Mul(twelve)
}
