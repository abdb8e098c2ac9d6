// seed populates a user partition with demo data: wallets, a few months
// of transactions, categories with budgets, goals, assets, and
// subscriptions. Useful for exercising the dashboard against Firestore.
//
// Usage:
//
//	export GOOGLE_APPLICATION_CREDENTIALS=/path/to/service-account.json
//	go run ./cmd/seed -project your-project-id -user demo-user
package main

import (
	"context"
	"flag"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/dompetkeluarga/backend/internal/logger"
	"github.com/dompetkeluarga/backend/internal/model"
	"github.com/dompetkeluarga/backend/internal/service"
	"github.com/dompetkeluarga/backend/internal/store"
)

func main() {
	projectID := flag.String("project", "", "GCP project id")
	appID := flag.String("app", "dompet-keluarga", "data partition app id")
	userID := flag.String("user", "demo-user", "user partition to seed")
	flag.Parse()

	log := logger.New()
	if *projectID == "" {
		log.Fatal().Msg("-project is required")
	}

	ctx := context.Background()
	client, err := firestore.NewClient(ctx, *projectID)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create firestore client")
	}
	defer client.Close()

	st := store.NewFirestoreStore(client, *appID)
	svc := service.NewFinanceService(st, log)

	if err := svc.EnsureDefaults(ctx, *userID); err != nil {
		log.Fatal().Err(err).Msg("failed to seed defaults")
	}

	wallets, err := svc.ListWallets(ctx, *userID)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to list wallets")
	}
	var bank, cash string
	for _, w := range wallets {
		switch w.Kind {
		case model.WalletBank:
			bank = w.ID
		case model.WalletCash:
			cash = w.ID
		}
	}
	if bank == "" || cash == "" {
		log.Fatal().Msg("expected seeded bank and cash wallets")
	}

	now := time.Now()
	monthStart := func(offset int) time.Time {
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, offset, 0)
	}

	// Three months of salary, spending, and a transfer each month.
	for offset := -2; offset <= 0; offset++ {
		base := monthStart(offset)
		entries := []*model.Transaction{
			{Kind: model.TransactionIncome, Amount: 12_000_000, Category: "Gaji Pokok", WalletID: bank, Date: base.AddDate(0, 0, 0)},
			{Kind: model.TransactionExpense, Amount: 2_300_000, Category: "Belanja Bulanan", WalletID: bank, Date: base.AddDate(0, 0, 4)},
			{Kind: model.TransactionExpense, Amount: 600_000, Category: "Transportasi", WalletID: cash, Date: base.AddDate(0, 0, 9)},
			{Kind: model.TransactionTransfer, Amount: 1_500_000, SourceWalletID: bank, TargetWalletID: cash, Date: base.AddDate(0, 0, 2)},
		}
		for _, t := range entries {
			if t.Date.After(now) {
				continue
			}
			if _, err := svc.CreateTransaction(ctx, *userID, t); err != nil {
				log.Fatal().Err(err).Msg("failed to seed transaction")
			}
		}
	}

	if _, err := svc.CreateSubscription(ctx, *userID, &model.Subscription{
		Name:       "Netflix",
		Cost:       186_000,
		Cycle:      model.CycleMonthly,
		PaymentDay: 10,
		StartDate:  monthStart(-2),
		WalletID:   bank,
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to seed subscription")
	}

	goals, err := svc.ListGoals(ctx, *userID)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to list goals")
	}
	if len(goals) > 0 {
		if _, err := svc.CreateAsset(ctx, *userID, &model.Asset{
			Name:          "Reksa Dana Indeks",
			GoalID:        goals[0].ID,
			Units:         120.5,
			PurchaseValue: 10_000_000,
			CurrentValue:  10_850_000,
		}, bank); err != nil {
			log.Fatal().Err(err).Msg("failed to seed asset")
		}
	}

	log.Info().Str("user", *userID).Msg("demo data seeded")
}
