package model

import (
	"fmt"
	"time"
)

// WalletKind is the account type of a wallet.
type WalletKind string

const (
	WalletCash       WalletKind = "cash"
	WalletBank       WalletKind = "bank"
	WalletEWallet    WalletKind = "e_wallet"
	WalletCreditCard WalletKind = "credit_card"
	WalletBrokerage  WalletKind = "brokerage"
)

// TransactionKind distinguishes the four ledger entry types.
type TransactionKind string

const (
	TransactionIncome     TransactionKind = "income"
	TransactionExpense    TransactionKind = "expense"
	TransactionTransfer   TransactionKind = "transfer"
	TransactionInvestment TransactionKind = "investment"
)

// CategoryKind is the direction a category applies to.
type CategoryKind string

const (
	CategoryExpense CategoryKind = "expense"
	CategoryIncome  CategoryKind = "income"
)

// BillingCycle is how often a subscription bills.
type BillingCycle string

const (
	CycleMonthly BillingCycle = "monthly"
	CycleYearly  BillingCycle = "yearly"
)

// Wallet is a money account. Amounts are whole rupiah.
// A credit_card wallet's balance is a liability and goes negative as
// charges accumulate; Limit is only meaningful for credit cards.
type Wallet struct {
	ID             string     `firestore:"-" json:"id"`
	Name           string     `firestore:"name" json:"name"`
	Kind           WalletKind `firestore:"type" json:"type"`
	InitialBalance int64      `firestore:"initialBalance" json:"initialBalance"`
	Limit          int64      `firestore:"limit" json:"limit"`
	Icon           string     `firestore:"icon" json:"icon"`
}

// Transaction is a single ledger entry. Exactly one of WalletID or the
// SourceWalletID/TargetWalletID pair is populated, depending on Kind.
// A zero Date means the stored date was missing or unparseable; such
// transactions still affect balances but are excluded from trend buckets.
type Transaction struct {
	ID             string          `firestore:"-" json:"id"`
	Kind           TransactionKind `firestore:"type" json:"type"`
	Amount         int64           `firestore:"amount" json:"amount"`
	Date           time.Time       `firestore:"date" json:"date"`
	Category       string          `firestore:"category,omitempty" json:"category,omitempty"`
	WalletID       string          `firestore:"walletId,omitempty" json:"walletId,omitempty"`
	SourceWalletID string          `firestore:"sourceWalletId,omitempty" json:"sourceWalletId,omitempty"`
	TargetWalletID string          `firestore:"targetWalletId,omitempty" json:"targetWalletId,omitempty"`
	Note           string          `firestore:"note,omitempty" json:"note,omitempty"`
	SubscriptionID string          `firestore:"subscriptionId,omitempty" json:"subscriptionId,omitempty"`
	CreatedAt      time.Time       `firestore:"createdAt,serverTimestamp" json:"createdAt"`
	UpdatedAt      time.Time       `firestore:"updatedAt,serverTimestamp" json:"updatedAt"`
}

// Category names a spending or income bucket. Budget is a monthly
// ceiling for expense categories; 0 means unset. Name uniqueness is not
// enforced by the store.
type Category struct {
	ID     string       `firestore:"-" json:"id"`
	Name   string       `firestore:"name" json:"name"`
	Kind   CategoryKind `firestore:"type" json:"type"`
	Budget int64        `firestore:"budget" json:"budget"`
}

// Goal is an investment target bucket (stored as investment_types).
type Goal struct {
	ID       string     `firestore:"-" json:"id"`
	Name     string     `firestore:"name" json:"name"`
	Target   int64      `firestore:"target" json:"target"`
	Deadline *time.Time `firestore:"deadline,omitempty" json:"deadline,omitempty"`
	Icon     string     `firestore:"icon" json:"icon"`
}

// Asset is a purchased investment position. Older documents reference
// their goal by name through LegacyType instead of GoalID.
type Asset struct {
	ID            string    `firestore:"-" json:"id"`
	Name          string    `firestore:"name" json:"name"`
	GoalID        string    `firestore:"typeId,omitempty" json:"goalId,omitempty"`
	LegacyType    string    `firestore:"type,omitempty" json:"legacyType,omitempty"`
	Units         float64   `firestore:"amount" json:"units"`
	PurchaseValue int64     `firestore:"purchaseValue" json:"purchaseValue"`
	CurrentValue  int64     `firestore:"currentValue" json:"currentValue"`
	Icon          string    `firestore:"icon" json:"icon"`
	CreatedAt     time.Time `firestore:"createdAt,serverTimestamp" json:"createdAt"`
}

// ROI is the unrealized gain of the asset.
func (a Asset) ROI() int64 {
	return a.CurrentValue - a.PurchaseValue
}

// Subscription is a recurring service bill funded from a wallet.
// Cost is in rupiah; ForeignCost/Currency record the originally quoted
// price when the service bills in a foreign currency.
type Subscription struct {
	ID          string       `firestore:"-" json:"id"`
	Name        string       `firestore:"name" json:"name"`
	Cost        int64        `firestore:"cost" json:"cost"`
	ForeignCost float64      `firestore:"foreignCost,omitempty" json:"foreignCost,omitempty"`
	Currency    string       `firestore:"currency,omitempty" json:"currency,omitempty"`
	Cycle       BillingCycle `firestore:"cycle" json:"cycle"`
	PaymentDay  int          `firestore:"paymentDay" json:"paymentDay"`
	StartDate   time.Time    `firestore:"startDate" json:"startDate"`
	WalletID    string       `firestore:"walletId" json:"walletId"`
	CreatedAt   time.Time    `firestore:"createdAt,serverTimestamp" json:"createdAt"`
}

// Validate checks the structural invariants of a transaction before it
// is written. Derivation stays total over whatever is already stored;
// validation only guards new writes.
func (t Transaction) Validate() error {
	if t.Amount < 0 {
		return fmt.Errorf("amount must be non-negative")
	}
	switch t.Kind {
	case TransactionIncome, TransactionExpense, TransactionInvestment:
		if t.WalletID == "" {
			return fmt.Errorf("%s transaction requires a wallet", t.Kind)
		}
		if t.SourceWalletID != "" || t.TargetWalletID != "" {
			return fmt.Errorf("%s transaction must not carry transfer wallets", t.Kind)
		}
	case TransactionTransfer:
		if t.SourceWalletID == "" || t.TargetWalletID == "" {
			return fmt.Errorf("transfer requires source and target wallets")
		}
		if t.SourceWalletID == t.TargetWalletID {
			return fmt.Errorf("transfer wallets must be distinct")
		}
		if t.WalletID != "" {
			return fmt.Errorf("transfer must not carry a single wallet reference")
		}
	default:
		return fmt.Errorf("unknown transaction type %q", t.Kind)
	}
	return nil
}

// ResolveGoalID returns the goal an asset belongs to, falling back to a
// name match for legacy documents that predate goal ids. Empty string
// means the asset is unattached (or its goal was deleted).
func ResolveGoalID(a Asset, goals []Goal) string {
	if a.GoalID != "" {
		return a.GoalID
	}
	if a.LegacyType == "" {
		return ""
	}
	for _, g := range goals {
		if g.Name == a.LegacyType {
			return g.ID
		}
	}
	return ""
}
