package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/dompetkeluarga/backend/internal/model"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore implements Store on Cloud Firestore. Data lives under
// artifacts/{appID}/users/{userID}/<collection>, the layout the web
// client reads directly.
type FirestoreStore struct {
	client *firestore.Client
	appID  string
}

// NewFirestoreStore creates a Firestore-backed store scoped to the
// given app partition.
func NewFirestoreStore(client *firestore.Client, appID string) *FirestoreStore {
	return &FirestoreStore{client: client, appID: appID}
}

func (s *FirestoreStore) col(userID string, c Collection) *firestore.CollectionRef {
	return s.client.Collection("artifacts").Doc(s.appID).
		Collection("users").Doc(userID).
		Collection(string(c))
}

func (s *FirestoreStore) setDoc(ctx context.Context, userID string, c Collection, docID string, data interface{}) error {
	if _, err := s.col(userID, c).Doc(docID).Set(ctx, data); err != nil {
		return fmt.Errorf("set %s/%s: %w", c, docID, err)
	}
	return nil
}

func (s *FirestoreStore) getDoc(ctx context.Context, userID string, c Collection, docID string) (*firestore.DocumentSnapshot, error) {
	doc, err := s.col(userID, c).Doc(docID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", c, docID, err)
	}
	return doc, nil
}

func (s *FirestoreStore) deleteDoc(ctx context.Context, userID string, c Collection, docID string) error {
	if _, err := s.col(userID, c).Doc(docID).Delete(ctx); err != nil {
		return fmt.Errorf("delete %s/%s: %w", c, docID, err)
	}
	return nil
}

// Watch streams a signal for every snapshot the collection delivers.
// Firestore pushes an initial snapshot on listen and one per mutation,
// which matches the refresh semantics subscribers rely on.
func (s *FirestoreStore) Watch(ctx context.Context, userID string, c Collection) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)
	iter := s.col(userID, c).Query.Snapshots(ctx)

	go func() {
		defer close(ch)
		defer iter.Stop()
		for {
			if _, err := iter.Next(); err != nil {
				return
			}
			select {
			case ch <- struct{}{}:
			default: // coalesce, a refresh is already pending
			}
		}
	}()

	return ch, nil
}

// Wallet operations

func (s *FirestoreStore) CreateWallet(ctx context.Context, userID string, w *model.Wallet) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	return s.setDoc(ctx, userID, Wallets, w.ID, w)
}

func (s *FirestoreStore) GetWallet(ctx context.Context, userID, walletID string) (*model.Wallet, error) {
	doc, err := s.getDoc(ctx, userID, Wallets, walletID)
	if err != nil {
		return nil, err
	}
	var w model.Wallet
	if err := doc.DataTo(&w); err != nil {
		return nil, fmt.Errorf("parse wallet %s: %w", walletID, err)
	}
	w.ID = doc.Ref.ID
	return &w, nil
}

func (s *FirestoreStore) UpdateWallet(ctx context.Context, userID string, w *model.Wallet) error {
	return s.setDoc(ctx, userID, Wallets, w.ID, w)
}

func (s *FirestoreStore) DeleteWallet(ctx context.Context, userID, walletID string) error {
	return s.deleteDoc(ctx, userID, Wallets, walletID)
}

func (s *FirestoreStore) ListWallets(ctx context.Context, userID string) ([]*model.Wallet, error) {
	docs, err := s.col(userID, Wallets).OrderBy("name", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	out := make([]*model.Wallet, 0, len(docs))
	for _, doc := range docs {
		var w model.Wallet
		if err := doc.DataTo(&w); err != nil {
			continue // malformed documents are excluded, not fatal
		}
		w.ID = doc.Ref.ID
		out = append(out, &w)
	}
	return out, nil
}

// Transaction operations

func (s *FirestoreStore) CreateTransaction(ctx context.Context, userID string, t *model.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return s.setDoc(ctx, userID, Transactions, t.ID, t)
}

func (s *FirestoreStore) GetTransaction(ctx context.Context, userID, transactionID string) (*model.Transaction, error) {
	doc, err := s.getDoc(ctx, userID, Transactions, transactionID)
	if err != nil {
		return nil, err
	}
	t := decodeTransaction(doc)
	if t == nil {
		return nil, fmt.Errorf("parse transaction %s: unreadable document", transactionID)
	}
	return t, nil
}

func (s *FirestoreStore) UpdateTransaction(ctx context.Context, userID string, t *model.Transaction) error {
	return s.setDoc(ctx, userID, Transactions, t.ID, t)
}

func (s *FirestoreStore) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	return s.deleteDoc(ctx, userID, Transactions, transactionID)
}

func (s *FirestoreStore) ListTransactions(ctx context.Context, userID string, filter TransactionFilter) ([]*model.Transaction, error) {
	docs, err := s.col(userID, Transactions).
		OrderBy("date", firestore.Desc).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]*model.Transaction, 0, len(docs))
	for _, doc := range docs {
		t := decodeTransaction(doc)
		if t == nil {
			continue
		}
		if matchTransaction(t, filter) {
			out = append(out, t)
		}
	}
	return out, nil
}

// decodeTransaction reads a transaction document tolerantly. Documents
// written by older client versions may carry the date as a string or
// the amount as a float; those fields degrade to zero values rather
// than rejecting the document, because a transaction with a broken
// date must still count toward wallet balances.
func decodeTransaction(doc *firestore.DocumentSnapshot) *model.Transaction {
	var t model.Transaction
	if err := doc.DataTo(&t); err == nil {
		t.ID = doc.Ref.ID
		return &t
	}

	data := doc.Data()
	if data == nil {
		return nil
	}
	t = model.Transaction{ID: doc.Ref.ID}
	if v, ok := data["type"].(string); ok {
		t.Kind = model.TransactionKind(v)
	}
	t.Amount = toInt64(data["amount"])
	t.Date = toTime(data["date"])
	if v, ok := data["category"].(string); ok {
		t.Category = v
	}
	if v, ok := data["walletId"].(string); ok {
		t.WalletID = v
	}
	if v, ok := data["sourceWalletId"].(string); ok {
		t.SourceWalletID = v
	}
	if v, ok := data["targetWalletId"].(string); ok {
		t.TargetWalletID = v
	}
	if v, ok := data["note"].(string); ok {
		t.Note = v
	}
	if v, ok := data["subscriptionId"].(string); ok {
		t.SubscriptionID = v
	}
	t.CreatedAt = toTime(data["createdAt"])
	t.UpdatedAt = toTime(data["updatedAt"])
	return &t
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

func toTime(v interface{}) time.Time {
	switch d := v.(type) {
	case time.Time:
		return d
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if parsed, err := time.Parse(layout, d); err == nil {
				return parsed
			}
		}
	}
	return time.Time{}
}

// Category operations

func (s *FirestoreStore) CreateCategory(ctx context.Context, userID string, c *model.Category) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return s.setDoc(ctx, userID, Categories, c.ID, c)
}

func (s *FirestoreStore) UpdateCategory(ctx context.Context, userID string, c *model.Category) error {
	return s.setDoc(ctx, userID, Categories, c.ID, c)
}

func (s *FirestoreStore) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	return s.deleteDoc(ctx, userID, Categories, categoryID)
}

func (s *FirestoreStore) ListCategories(ctx context.Context, userID string) ([]*model.Category, error) {
	docs, err := s.col(userID, Categories).OrderBy("name", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]*model.Category, 0, len(docs))
	for _, doc := range docs {
		var c model.Category
		if err := doc.DataTo(&c); err != nil {
			continue
		}
		c.ID = doc.Ref.ID
		out = append(out, &c)
	}
	return out, nil
}

// Goal operations

func (s *FirestoreStore) CreateGoal(ctx context.Context, userID string, g *model.Goal) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	return s.setDoc(ctx, userID, Goals, g.ID, g)
}

func (s *FirestoreStore) UpdateGoal(ctx context.Context, userID string, g *model.Goal) error {
	return s.setDoc(ctx, userID, Goals, g.ID, g)
}

func (s *FirestoreStore) DeleteGoal(ctx context.Context, userID, goalID string) error {
	return s.deleteDoc(ctx, userID, Goals, goalID)
}

func (s *FirestoreStore) ListGoals(ctx context.Context, userID string) ([]*model.Goal, error) {
	docs, err := s.col(userID, Goals).OrderBy("name", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	out := make([]*model.Goal, 0, len(docs))
	for _, doc := range docs {
		var g model.Goal
		if err := doc.DataTo(&g); err != nil {
			continue
		}
		g.ID = doc.Ref.ID
		out = append(out, &g)
	}
	return out, nil
}

// Asset operations

func (s *FirestoreStore) CreateAsset(ctx context.Context, userID string, a *model.Asset) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return s.setDoc(ctx, userID, Assets, a.ID, a)
}

func (s *FirestoreStore) UpdateAsset(ctx context.Context, userID string, a *model.Asset) error {
	return s.setDoc(ctx, userID, Assets, a.ID, a)
}

func (s *FirestoreStore) DeleteAsset(ctx context.Context, userID, assetID string) error {
	return s.deleteDoc(ctx, userID, Assets, assetID)
}

func (s *FirestoreStore) ListAssets(ctx context.Context, userID string) ([]*model.Asset, error) {
	docs, err := s.col(userID, Assets).OrderBy("name", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	out := make([]*model.Asset, 0, len(docs))
	for _, doc := range docs {
		var a model.Asset
		if err := doc.DataTo(&a); err != nil {
			continue
		}
		a.ID = doc.Ref.ID
		out = append(out, &a)
	}
	return out, nil
}

// Subscription operations

func (s *FirestoreStore) CreateSubscription(ctx context.Context, userID string, sub *model.Subscription) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	return s.setDoc(ctx, userID, Subscriptions, sub.ID, sub)
}

func (s *FirestoreStore) GetSubscription(ctx context.Context, userID, subscriptionID string) (*model.Subscription, error) {
	doc, err := s.getDoc(ctx, userID, Subscriptions, subscriptionID)
	if err != nil {
		return nil, err
	}
	var sub model.Subscription
	if err := doc.DataTo(&sub); err != nil {
		return nil, fmt.Errorf("parse subscription %s: %w", subscriptionID, err)
	}
	sub.ID = doc.Ref.ID
	return &sub, nil
}

func (s *FirestoreStore) UpdateSubscription(ctx context.Context, userID string, sub *model.Subscription) error {
	return s.setDoc(ctx, userID, Subscriptions, sub.ID, sub)
}

func (s *FirestoreStore) DeleteSubscription(ctx context.Context, userID, subscriptionID string) error {
	return s.deleteDoc(ctx, userID, Subscriptions, subscriptionID)
}

func (s *FirestoreStore) ListSubscriptions(ctx context.Context, userID string) ([]*model.Subscription, error) {
	docs, err := s.col(userID, Subscriptions).OrderBy("name", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	out := make([]*model.Subscription, 0, len(docs))
	for _, doc := range docs {
		var sub model.Subscription
		if err := doc.DataTo(&sub); err != nil {
			continue
		}
		sub.ID = doc.Ref.ID
		out = append(out, &sub)
	}
	return out, nil
}
