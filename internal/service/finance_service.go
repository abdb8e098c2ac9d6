package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dompetkeluarga/backend/internal/model"
	"github.com/dompetkeluarga/backend/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// FinanceService owns entity CRUD and the read-side queries derived
// from collection snapshots.
type FinanceService struct {
	store store.Store
	log   zerolog.Logger
	now   func() time.Time
}

func NewFinanceService(s store.Store, log zerolog.Logger) *FinanceService {
	return &FinanceService{store: s, log: log, now: time.Now}
}

// WithClock overrides the clock, for tests.
func (s *FinanceService) WithClock(now func() time.Time) *FinanceService {
	s.now = now
	return s
}

// EnsureDefaults seeds starter categories, wallets, and goals into an
// empty partition so a fresh account is usable immediately. Collections
// that already contain data are left alone.
func (s *FinanceService) EnsureDefaults(ctx context.Context, userID string) error {
	cats, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	if len(cats) == 0 {
		for _, c := range model.DefaultCategories() {
			c := c
			if err := s.store.CreateCategory(ctx, userID, &c); err != nil {
				return fmt.Errorf("seed category %q: %w", c.Name, err)
			}
		}
	}

	wallets, err := s.store.ListWallets(ctx, userID)
	if err != nil {
		return fmt.Errorf("list wallets: %w", err)
	}
	if len(wallets) == 0 {
		for _, w := range model.DefaultWallets() {
			w := w
			if err := s.store.CreateWallet(ctx, userID, &w); err != nil {
				return fmt.Errorf("seed wallet %q: %w", w.Name, err)
			}
		}
	}

	goals, err := s.store.ListGoals(ctx, userID)
	if err != nil {
		return fmt.Errorf("list goals: %w", err)
	}
	if len(goals) == 0 {
		for _, g := range model.DefaultGoals() {
			g := g
			if err := s.store.CreateGoal(ctx, userID, &g); err != nil {
				return fmt.Errorf("seed goal %q: %w", g.Name, err)
			}
		}
	}

	return nil
}

// Wallet operations

func (s *FinanceService) CreateWallet(ctx context.Context, userID string, w *model.Wallet) (*model.Wallet, error) {
	if w.Name == "" {
		return nil, fmt.Errorf("wallet name is required")
	}
	if w.Kind != model.WalletCreditCard {
		w.Limit = 0
	}
	w.ID = uuid.New().String()
	if err := s.store.CreateWallet(ctx, userID, w); err != nil {
		return nil, fmt.Errorf("create wallet: %w", err)
	}
	return w, nil
}

func (s *FinanceService) UpdateWallet(ctx context.Context, userID string, w *model.Wallet) error {
	if w.ID == "" {
		return fmt.Errorf("wallet id is required")
	}
	if w.Kind != model.WalletCreditCard {
		w.Limit = 0
	}
	if err := s.store.UpdateWallet(ctx, userID, w); err != nil {
		return fmt.Errorf("update wallet: %w", err)
	}
	return nil
}

// DeleteWallet removes the wallet only. Transactions keep their
// reference; they drop out of per-wallet balances but stay in the
// global totals.
func (s *FinanceService) DeleteWallet(ctx context.Context, userID, walletID string) error {
	if err := s.store.DeleteWallet(ctx, userID, walletID); err != nil {
		return fmt.Errorf("delete wallet: %w", err)
	}
	return nil
}

func (s *FinanceService) ListWallets(ctx context.Context, userID string) ([]*model.Wallet, error) {
	return s.store.ListWallets(ctx, userID)
}

// Transaction operations

func (s *FinanceService) CreateTransaction(ctx context.Context, userID string, t *model.Transaction) (*model.Transaction, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	t.ID = uuid.New().String()
	if err := s.store.CreateTransaction(ctx, userID, t); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	return t, nil
}

func (s *FinanceService) UpdateTransaction(ctx context.Context, userID string, t *model.Transaction) error {
	if t.ID == "" {
		return fmt.Errorf("transaction id is required")
	}
	if err := t.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateTransaction(ctx, userID, t); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return nil
}

func (s *FinanceService) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	if err := s.store.DeleteTransaction(ctx, userID, transactionID); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

func (s *FinanceService) ListTransactions(ctx context.Context, userID string, filter store.TransactionFilter) ([]*model.Transaction, error) {
	return s.store.ListTransactions(ctx, userID, filter)
}

// Category operations

func (s *FinanceService) CreateCategory(ctx context.Context, userID string, c *model.Category) (*model.Category, error) {
	if c.Name == "" {
		return nil, fmt.Errorf("category name is required")
	}
	if c.Kind != model.CategoryExpense {
		c.Budget = 0
	}
	c.ID = uuid.New().String()
	if err := s.store.CreateCategory(ctx, userID, c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (s *FinanceService) UpdateCategory(ctx context.Context, userID string, c *model.Category) error {
	if c.ID == "" {
		return fmt.Errorf("category id is required")
	}
	if c.Kind != model.CategoryExpense {
		c.Budget = 0
	}
	if err := s.store.UpdateCategory(ctx, userID, c); err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

func (s *FinanceService) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	if err := s.store.DeleteCategory(ctx, userID, categoryID); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func (s *FinanceService) ListCategories(ctx context.Context, userID string) ([]*model.Category, error) {
	return s.store.ListCategories(ctx, userID)
}

// Goal operations

func (s *FinanceService) CreateGoal(ctx context.Context, userID string, g *model.Goal) (*model.Goal, error) {
	if g.Name == "" {
		return nil, fmt.Errorf("goal name is required")
	}
	g.ID = uuid.New().String()
	if err := s.store.CreateGoal(ctx, userID, g); err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}
	return g, nil
}

func (s *FinanceService) UpdateGoal(ctx context.Context, userID string, g *model.Goal) error {
	if g.ID == "" {
		return fmt.Errorf("goal id is required")
	}
	if err := s.store.UpdateGoal(ctx, userID, g); err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return nil
}

func (s *FinanceService) DeleteGoal(ctx context.Context, userID, goalID string) error {
	if err := s.store.DeleteGoal(ctx, userID, goalID); err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return nil
}

func (s *FinanceService) ListGoals(ctx context.Context, userID string) ([]*model.Goal, error) {
	return s.store.ListGoals(ctx, userID)
}

// Asset operations

// CreateAsset stores an investment asset. When fundingWalletID is set,
// an investment-purchase transaction for the cost basis is written
// against that wallet in the same call. The two writes are not atomic;
// balances are derived, so a failure between them cannot corrupt
// state, only omit the purchase record.
func (s *FinanceService) CreateAsset(ctx context.Context, userID string, a *model.Asset, fundingWalletID string) (*model.Asset, error) {
	if a.Name == "" {
		return nil, fmt.Errorf("asset name is required")
	}
	a.ID = uuid.New().String()
	if err := s.store.CreateAsset(ctx, userID, a); err != nil {
		return nil, fmt.Errorf("create asset: %w", err)
	}

	if fundingWalletID != "" {
		t := &model.Transaction{
			ID:       uuid.New().String(),
			Kind:     model.TransactionInvestment,
			Amount:   a.PurchaseValue,
			Category: "Investasi",
			WalletID: fundingWalletID,
			Note:     fmt.Sprintf("Beli Aset: %s", a.Name),
			Date:     s.now(),
		}
		if err := s.store.CreateTransaction(ctx, userID, t); err != nil {
			return nil, fmt.Errorf("create purchase transaction: %w", err)
		}
	}

	return a, nil
}

func (s *FinanceService) UpdateAsset(ctx context.Context, userID string, a *model.Asset) error {
	if a.ID == "" {
		return fmt.Errorf("asset id is required")
	}
	if err := s.store.UpdateAsset(ctx, userID, a); err != nil {
		return fmt.Errorf("update asset: %w", err)
	}
	return nil
}

func (s *FinanceService) DeleteAsset(ctx context.Context, userID, assetID string) error {
	if err := s.store.DeleteAsset(ctx, userID, assetID); err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	return nil
}

func (s *FinanceService) ListAssets(ctx context.Context, userID string) ([]*model.Asset, error) {
	return s.store.ListAssets(ctx, userID)
}

// Subscription operations

func (s *FinanceService) CreateSubscription(ctx context.Context, userID string, sub *model.Subscription) (*model.Subscription, error) {
	if err := validateSubscription(sub); err != nil {
		return nil, err
	}
	sub.ID = uuid.New().String()
	if err := s.store.CreateSubscription(ctx, userID, sub); err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}
	return sub, nil
}

func (s *FinanceService) UpdateSubscription(ctx context.Context, userID string, sub *model.Subscription) error {
	if sub.ID == "" {
		return fmt.Errorf("subscription id is required")
	}
	if err := validateSubscription(sub); err != nil {
		return err
	}
	if err := s.store.UpdateSubscription(ctx, userID, sub); err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	return nil
}

func (s *FinanceService) DeleteSubscription(ctx context.Context, userID, subscriptionID string) error {
	if err := s.store.DeleteSubscription(ctx, userID, subscriptionID); err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	return nil
}

func (s *FinanceService) ListSubscriptions(ctx context.Context, userID string) ([]*model.Subscription, error) {
	return s.store.ListSubscriptions(ctx, userID)
}

func validateSubscription(sub *model.Subscription) error {
	if sub.Name == "" {
		return fmt.Errorf("subscription name is required")
	}
	if sub.Cost < 0 {
		return fmt.Errorf("subscription cost must be non-negative")
	}
	if sub.PaymentDay < 1 || sub.PaymentDay > 31 {
		return fmt.Errorf("payment day must be between 1 and 31")
	}
	if sub.Cycle != model.CycleMonthly && sub.Cycle != model.CycleYearly {
		return fmt.Errorf("unknown billing cycle %q", sub.Cycle)
	}
	return nil
}

// Derived queries. Each re-lists the needed collections and runs the
// pure derivation over the snapshot.

func (s *FinanceService) Summary(ctx context.Context, userID string) (Summary, error) {
	wallets, err := s.store.ListWallets(ctx, userID)
	if err != nil {
		return Summary{}, fmt.Errorf("list wallets: %w", err)
	}
	transactions, err := s.store.ListTransactions(ctx, userID, store.TransactionFilter{})
	if err != nil {
		return Summary{}, fmt.Errorf("list transactions: %w", err)
	}
	assets, err := s.store.ListAssets(ctx, userID)
	if err != nil {
		return Summary{}, fmt.Errorf("list assets: %w", err)
	}
	return ComputeSummary(wallets, transactions, assets), nil
}

func (s *FinanceService) MonthlyTrend(ctx context.Context, userID string) ([]TrendPoint, error) {
	transactions, err := s.store.ListTransactions(ctx, userID, store.TransactionFilter{})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return MonthlyTrend(transactions, s.now()), nil
}

func (s *FinanceService) AssetGrowth(ctx context.Context, userID string) ([]GrowthPoint, error) {
	assets, err := s.store.ListAssets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	return AssetGrowth(assets, s.now()), nil
}

func (s *FinanceService) BudgetProgress(ctx context.Context, userID string) ([]BudgetStatus, error) {
	transactions, err := s.store.ListTransactions(ctx, userID, store.TransactionFilter{})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	categories, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return BudgetProgress(transactions, categories, s.now()), nil
}

func (s *FinanceService) GoalProgress(ctx context.Context, userID string) ([]GoalStatus, error) {
	goals, err := s.store.ListGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	assets, err := s.store.ListAssets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	return GoalProgress(goals, assets), nil
}
