package model

// Starter data written the first time a user's partition delivers an
// empty snapshot, matching what a fresh install of the app expects.

var DefaultExpenseCategories = []string{
	"Belanja Bulanan", "Makan Luar", "Transportasi", "Listrik & Air",
	"Pulsa & Internet", "Zakat & Infaq", "Pendidikan (SPP)",
	"Cicilan Rumah", "Kesehatan", "Langganan",
}

var DefaultIncomeCategories = []string{
	"Gaji Pokok", "Bonus/THR", "Sampingan", "Dividen",
}

func DefaultCategories() []Category {
	cats := make([]Category, 0, len(DefaultExpenseCategories)+len(DefaultIncomeCategories))
	for _, name := range DefaultExpenseCategories {
		cats = append(cats, Category{Name: name, Kind: CategoryExpense})
	}
	for _, name := range DefaultIncomeCategories {
		cats = append(cats, Category{Name: name, Kind: CategoryIncome})
	}
	return cats
}

func DefaultWallets() []Wallet {
	return []Wallet{
		{Name: "Dompet Tunai", Kind: WalletCash, Icon: "💵"},
		{Name: "Bank BCA", Kind: WalletBank, Icon: "🏦"},
		{Name: "Kartu Kredit Mandiri", Kind: WalletCreditCard, Limit: 10_000_000, Icon: "💳"},
	}
}

func DefaultGoals() []Goal {
	return []Goal{
		{Name: "Emas (Logam Mulia)", Target: 100_000_000, Icon: "🥇"},
		{Name: "Saham Bluechip", Target: 500_000_000, Icon: "📊"},
		{Name: "Reksadana Pasar Uang", Target: 50_000_000, Icon: "📈"},
	}
}
