package store

import (
	"context"
	"sort"
	"sync"

	"github.com/dompetkeluarga/backend/internal/model"
	"github.com/google/uuid"
)

// MemoryStore implements Store with in-memory maps, used for local
// development and tests. Watch notifications are delivered through
// coalescing buffered channels, mirroring how Firestore snapshot
// listeners collapse rapid successive mutations.
type MemoryStore struct {
	mu sync.RWMutex

	// userID -> documentID -> entity
	wallets       map[string]map[string]*model.Wallet
	transactions  map[string]map[string]*model.Transaction
	categories    map[string]map[string]*model.Category
	goals         map[string]map[string]*model.Goal
	assets        map[string]map[string]*model.Asset
	subscriptions map[string]map[string]*model.Subscription

	wmu      sync.Mutex
	watchers map[watchKey][]chan struct{}
}

type watchKey struct {
	userID     string
	collection Collection
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		wallets:       make(map[string]map[string]*model.Wallet),
		transactions:  make(map[string]map[string]*model.Transaction),
		categories:    make(map[string]map[string]*model.Category),
		goals:         make(map[string]map[string]*model.Goal),
		assets:        make(map[string]map[string]*model.Asset),
		subscriptions: make(map[string]map[string]*model.Subscription),
		watchers:      make(map[watchKey][]chan struct{}),
	}
}

func (m *MemoryStore) notify(userID string, c Collection) {
	m.wmu.Lock()
	defer m.wmu.Unlock()
	for _, ch := range m.watchers[watchKey{userID, c}] {
		select {
		case ch <- struct{}{}:
		default: // a refresh is already pending, coalesce
		}
	}
}

// Watch registers a notification channel for the collection. An initial
// signal is delivered immediately so subscribers start from the current
// snapshot.
func (m *MemoryStore) Watch(ctx context.Context, userID string, c Collection) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)
	ch <- struct{}{}

	key := watchKey{userID, c}
	m.wmu.Lock()
	m.watchers[key] = append(m.watchers[key], ch)
	m.wmu.Unlock()

	go func() {
		<-ctx.Done()
		m.wmu.Lock()
		defer m.wmu.Unlock()
		chans := m.watchers[key]
		for i, registered := range chans {
			if registered == ch {
				m.watchers[key] = append(chans[:i], chans[i+1:]...)
				break
			}
		}
		close(ch)
	}()

	return ch, nil
}

// Wallet operations

func (m *MemoryStore) CreateWallet(ctx context.Context, userID string, w *model.Wallet) error {
	m.mu.Lock()
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	if m.wallets[userID] == nil {
		m.wallets[userID] = make(map[string]*model.Wallet)
	}
	cp := *w
	m.wallets[userID][w.ID] = &cp
	m.mu.Unlock()

	m.notify(userID, Wallets)
	return nil
}

func (m *MemoryStore) GetWallet(ctx context.Context, userID, walletID string) (*model.Wallet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.wallets[userID][walletID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (m *MemoryStore) UpdateWallet(ctx context.Context, userID string, w *model.Wallet) error {
	m.mu.Lock()
	if _, ok := m.wallets[userID][w.ID]; !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	cp := *w
	m.wallets[userID][w.ID] = &cp
	m.mu.Unlock()

	m.notify(userID, Wallets)
	return nil
}

func (m *MemoryStore) DeleteWallet(ctx context.Context, userID, walletID string) error {
	m.mu.Lock()
	delete(m.wallets[userID], walletID)
	m.mu.Unlock()

	m.notify(userID, Wallets)
	return nil
}

func (m *MemoryStore) ListWallets(ctx context.Context, userID string) ([]*model.Wallet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Wallet, 0, len(m.wallets[userID]))
	for _, w := range m.wallets[userID] {
		cp := *w
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Transaction operations

func (m *MemoryStore) CreateTransaction(ctx context.Context, userID string, t *model.Transaction) error {
	m.mu.Lock()
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if m.transactions[userID] == nil {
		m.transactions[userID] = make(map[string]*model.Transaction)
	}
	cp := *t
	m.transactions[userID][t.ID] = &cp
	m.mu.Unlock()

	m.notify(userID, Transactions)
	return nil
}

func (m *MemoryStore) GetTransaction(ctx context.Context, userID, transactionID string) (*model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.transactions[userID][transactionID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MemoryStore) UpdateTransaction(ctx context.Context, userID string, t *model.Transaction) error {
	m.mu.Lock()
	if _, ok := m.transactions[userID][t.ID]; !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	cp := *t
	m.transactions[userID][t.ID] = &cp
	m.mu.Unlock()

	m.notify(userID, Transactions)
	return nil
}

func (m *MemoryStore) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	m.mu.Lock()
	delete(m.transactions[userID], transactionID)
	m.mu.Unlock()

	m.notify(userID, Transactions)
	return nil
}

func (m *MemoryStore) ListTransactions(ctx context.Context, userID string, filter TransactionFilter) ([]*model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Transaction, 0, len(m.transactions[userID]))
	for _, t := range m.transactions[userID] {
		if !matchTransaction(t, filter) {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	// Newest first, transactions without a usable date last.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

// Category operations

func (m *MemoryStore) CreateCategory(ctx context.Context, userID string, c *model.Category) error {
	m.mu.Lock()
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if m.categories[userID] == nil {
		m.categories[userID] = make(map[string]*model.Category)
	}
	cp := *c
	m.categories[userID][c.ID] = &cp
	m.mu.Unlock()

	m.notify(userID, Categories)
	return nil
}

func (m *MemoryStore) UpdateCategory(ctx context.Context, userID string, c *model.Category) error {
	m.mu.Lock()
	if _, ok := m.categories[userID][c.ID]; !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	cp := *c
	m.categories[userID][c.ID] = &cp
	m.mu.Unlock()

	m.notify(userID, Categories)
	return nil
}

func (m *MemoryStore) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	m.mu.Lock()
	delete(m.categories[userID], categoryID)
	m.mu.Unlock()

	m.notify(userID, Categories)
	return nil
}

func (m *MemoryStore) ListCategories(ctx context.Context, userID string) ([]*model.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Category, 0, len(m.categories[userID]))
	for _, c := range m.categories[userID] {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Goal operations

func (m *MemoryStore) CreateGoal(ctx context.Context, userID string, g *model.Goal) error {
	m.mu.Lock()
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if m.goals[userID] == nil {
		m.goals[userID] = make(map[string]*model.Goal)
	}
	cp := *g
	m.goals[userID][g.ID] = &cp
	m.mu.Unlock()

	m.notify(userID, Goals)
	return nil
}

func (m *MemoryStore) UpdateGoal(ctx context.Context, userID string, g *model.Goal) error {
	m.mu.Lock()
	if _, ok := m.goals[userID][g.ID]; !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	cp := *g
	m.goals[userID][g.ID] = &cp
	m.mu.Unlock()

	m.notify(userID, Goals)
	return nil
}

func (m *MemoryStore) DeleteGoal(ctx context.Context, userID, goalID string) error {
	m.mu.Lock()
	delete(m.goals[userID], goalID)
	m.mu.Unlock()

	m.notify(userID, Goals)
	return nil
}

func (m *MemoryStore) ListGoals(ctx context.Context, userID string) ([]*model.Goal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Goal, 0, len(m.goals[userID]))
	for _, g := range m.goals[userID] {
		cp := *g
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Asset operations

func (m *MemoryStore) CreateAsset(ctx context.Context, userID string, a *model.Asset) error {
	m.mu.Lock()
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if m.assets[userID] == nil {
		m.assets[userID] = make(map[string]*model.Asset)
	}
	cp := *a
	m.assets[userID][a.ID] = &cp
	m.mu.Unlock()

	m.notify(userID, Assets)
	return nil
}

func (m *MemoryStore) UpdateAsset(ctx context.Context, userID string, a *model.Asset) error {
	m.mu.Lock()
	if _, ok := m.assets[userID][a.ID]; !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	cp := *a
	m.assets[userID][a.ID] = &cp
	m.mu.Unlock()

	m.notify(userID, Assets)
	return nil
}

func (m *MemoryStore) DeleteAsset(ctx context.Context, userID, assetID string) error {
	m.mu.Lock()
	delete(m.assets[userID], assetID)
	m.mu.Unlock()

	m.notify(userID, Assets)
	return nil
}

func (m *MemoryStore) ListAssets(ctx context.Context, userID string) ([]*model.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Asset, 0, len(m.assets[userID]))
	for _, a := range m.assets[userID] {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Subscription operations

func (m *MemoryStore) CreateSubscription(ctx context.Context, userID string, s *model.Subscription) error {
	m.mu.Lock()
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if m.subscriptions[userID] == nil {
		m.subscriptions[userID] = make(map[string]*model.Subscription)
	}
	cp := *s
	m.subscriptions[userID][s.ID] = &cp
	m.mu.Unlock()

	m.notify(userID, Subscriptions)
	return nil
}

func (m *MemoryStore) GetSubscription(ctx context.Context, userID, subscriptionID string) (*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.subscriptions[userID][subscriptionID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MemoryStore) UpdateSubscription(ctx context.Context, userID string, s *model.Subscription) error {
	m.mu.Lock()
	if _, ok := m.subscriptions[userID][s.ID]; !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	cp := *s
	m.subscriptions[userID][s.ID] = &cp
	m.mu.Unlock()

	m.notify(userID, Subscriptions)
	return nil
}

func (m *MemoryStore) DeleteSubscription(ctx context.Context, userID, subscriptionID string) error {
	m.mu.Lock()
	delete(m.subscriptions[userID], subscriptionID)
	m.mu.Unlock()

	m.notify(userID, Subscriptions)
	return nil
}

func (m *MemoryStore) ListSubscriptions(ctx context.Context, userID string) ([]*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Subscription, 0, len(m.subscriptions[userID]))
	for _, s := range m.subscriptions[userID] {
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
