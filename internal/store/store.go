package store

import (
	"context"
	"errors"
	"time"

	"github.com/dompetkeluarga/backend/internal/model"
)

// Collection names the six per-user entity collections. The Firestore
// names are kept for compatibility with existing data partitions.
type Collection string

const (
	Wallets       Collection = "wallets"
	Transactions  Collection = "transactions"
	Categories    Collection = "categories"
	Goals         Collection = "investment_types"
	Assets        Collection = "investments"
	Subscriptions Collection = "subscriptions"
)

// AllCollections lists every collection a watcher should subscribe to.
var AllCollections = []Collection{
	Wallets, Transactions, Categories, Goals, Assets, Subscriptions,
}

// ErrNotFound is returned when a document id does not exist.
var ErrNotFound = errors.New("document not found")

// TransactionFilter narrows a transaction listing. Zero values mean no
// constraint on that dimension.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	WalletID  string
}

// Store defines all database operations used by the services. Every
// operation is scoped to a single user's data partition. Creates assign
// a generated id when the entity carries none and return it on the
// entity. Updates are full-document sets. Deletes do not cascade:
// transactions referencing a deleted wallet or category keep their
// dangling reference.
type Store interface {
	// Wallet operations
	CreateWallet(ctx context.Context, userID string, w *model.Wallet) error
	GetWallet(ctx context.Context, userID, walletID string) (*model.Wallet, error)
	UpdateWallet(ctx context.Context, userID string, w *model.Wallet) error
	DeleteWallet(ctx context.Context, userID, walletID string) error
	ListWallets(ctx context.Context, userID string) ([]*model.Wallet, error)

	// Transaction operations
	CreateTransaction(ctx context.Context, userID string, t *model.Transaction) error
	GetTransaction(ctx context.Context, userID, transactionID string) (*model.Transaction, error)
	UpdateTransaction(ctx context.Context, userID string, t *model.Transaction) error
	DeleteTransaction(ctx context.Context, userID, transactionID string) error
	ListTransactions(ctx context.Context, userID string, filter TransactionFilter) ([]*model.Transaction, error)

	// Category operations
	CreateCategory(ctx context.Context, userID string, c *model.Category) error
	UpdateCategory(ctx context.Context, userID string, c *model.Category) error
	DeleteCategory(ctx context.Context, userID, categoryID string) error
	ListCategories(ctx context.Context, userID string) ([]*model.Category, error)

	// Goal (investment type) operations
	CreateGoal(ctx context.Context, userID string, g *model.Goal) error
	UpdateGoal(ctx context.Context, userID string, g *model.Goal) error
	DeleteGoal(ctx context.Context, userID, goalID string) error
	ListGoals(ctx context.Context, userID string) ([]*model.Goal, error)

	// Asset (investment) operations
	CreateAsset(ctx context.Context, userID string, a *model.Asset) error
	UpdateAsset(ctx context.Context, userID string, a *model.Asset) error
	DeleteAsset(ctx context.Context, userID, assetID string) error
	ListAssets(ctx context.Context, userID string) ([]*model.Asset, error)

	// Subscription operations
	CreateSubscription(ctx context.Context, userID string, s *model.Subscription) error
	GetSubscription(ctx context.Context, userID, subscriptionID string) (*model.Subscription, error)
	UpdateSubscription(ctx context.Context, userID string, s *model.Subscription) error
	DeleteSubscription(ctx context.Context, userID, subscriptionID string) error
	ListSubscriptions(ctx context.Context, userID string) ([]*model.Subscription, error)

	// Watch delivers a signal on every mutation of the collection within
	// the user's partition, including one initial signal once the first
	// snapshot is available. The receiver re-lists the collection to get
	// the full current contents; delivery order across collections is
	// not guaranteed. The stream closes when ctx is cancelled.
	Watch(ctx context.Context, userID string, c Collection) (<-chan struct{}, error)
}

func matchTransaction(t *model.Transaction, f TransactionFilter) bool {
	if f.WalletID != "" &&
		t.WalletID != f.WalletID && t.SourceWalletID != f.WalletID && t.TargetWalletID != f.WalletID {
		return false
	}
	if f.StartDate != nil && (t.Date.IsZero() || t.Date.Before(*f.StartDate)) {
		return false
	}
	if f.EndDate != nil && (t.Date.IsZero() || t.Date.After(*f.EndDate)) {
		return false
	}
	return true
}
