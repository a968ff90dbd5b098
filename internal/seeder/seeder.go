package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	accountmodels "eshmarket/internal/account/models"
	catalogmodels "eshmarket/internal/catalog/models"
	donationmodels "eshmarket/internal/donation/models"
	id "eshmarket/pkg/domain"
)

// ProductStore defines methods for seeding products
type ProductStore interface {
	Create(ctx context.Context, p *catalogmodels.Product) error
}

// AccountStore defines methods for seeding accounts
type AccountStore interface {
	Upsert(ctx context.Context, a *accountmodels.Account) error
}

// DonationStore defines methods for seeding the donation ledger
type DonationStore interface {
	Append(ctx context.Context, d *donationmodels.Donation) error
}

// Seeder populates in-memory stores with demo data
type Seeder struct {
	products  ProductStore
	accounts  AccountStore
	donations DonationStore
	logger    *slog.Logger
}

// New creates a new seeder
func New(products ProductStore, accounts AccountStore, donations DonationStore, logger *slog.Logger) *Seeder {
	return &Seeder{
		products:  products,
		accounts:  accounts,
		donations: donations,
		logger:    logger,
	}
}

// SeedAll populates all stores with demo data
func (s *Seeder) SeedAll(ctx context.Context) error {
	s.logger.Info("seeding demo data...")

	products, err := s.seedProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	accounts, err := s.seedAccounts(ctx, products)
	if err != nil {
		return fmt.Errorf("failed to seed accounts: %w", err)
	}

	if err := s.seedDonations(ctx, accounts); err != nil {
		return fmt.Errorf("failed to seed donations: %w", err)
	}

	s.logger.Info("demo data seeded successfully",
		"products", len(products),
		"accounts", len(accounts),
	)

	return nil
}

func (s *Seeder) seedProducts(ctx context.Context) ([]*catalogmodels.Product, error) {
	now := time.Now()

	demoProducts := []struct {
		title        string
		description  string
		dl           int64
		money        int64
		showcaseLink string
	}{
		{"AutoFarm", "Farms and replants a configurable tile pattern.", 5, 50000, "https://youtu.be/demo-autofarm"},
		{"AutoFish", "Casts, waits, reels, repeats. Bait-aware.", 10, 25000, "https://youtu.be/demo-autofish"},
		{"AutoClear", "Clears a world of a chosen block type.", 3, 15000, ""},
		{"TradeGuard", "Watches incoming trades for scam patterns.", 8, 40000, ""},
	}

	var products []*catalogmodels.Product
	for _, p := range demoProducts {
		product, err := catalogmodels.NewProduct(
			id.NewProductID(),
			p.title,
			p.description,
			catalogmodels.Price{DiamondLocks: p.dl, Money: p.money},
			p.showcaseLink,
			fmt.Sprintf("-- %s demo build\nprint('%s loaded')\n", p.title, p.title),
			now,
		)
		if err != nil {
			return nil, err
		}

		if err := s.products.Create(ctx, product); err != nil {
			return nil, err
		}

		products = append(products, product)
	}

	return products, nil
}

func (s *Seeder) seedAccounts(ctx context.Context, products []*catalogmodels.Product) ([]*accountmodels.Account, error) {
	now := time.Now()

	demoAccounts := []struct {
		externalID string
		username   string
		admin      bool
		balance    accountmodels.Balance
		ownsFirst  bool
	}{
		{"100000000000000001", "growseller", true, accountmodels.Balance{DiamondLocks: 100, Money: 0}, false},
		{"100000000000000002", "bluewing", false, accountmodels.Balance{Money: 75000}, true},
		{"100000000000000003", "farmhand", false, accountmodels.Balance{}, false},
		{"100000000000000004", "redcap", false, accountmodels.Balance{Money: 10000}, false},
	}

	var accounts []*accountmodels.Account
	for _, a := range demoAccounts {
		account := &accountmodels.Account{
			ID:         id.NewAccountID(),
			ExternalID: a.externalID,
			Username:   a.username,
			IsAdmin:    a.admin,
			Balance:    a.balance,
			CreatedAt:  now,
		}
		if a.ownsFirst && len(products) > 0 {
			account.PurchasedProductIDs = []id.ProductID{products[0].ID}
		}

		if err := s.accounts.Upsert(ctx, account); err != nil {
			return nil, err
		}

		accounts = append(accounts, account)
	}

	return accounts, nil
}

func (s *Seeder) seedDonations(ctx context.Context, accounts []*accountmodels.Account) error {
	now := time.Now()

	// A few recent ledger entries, one of which exactly matches a product
	// price so the donation path can be demoed end to end.
	donations := []struct {
		accountIdx int
		amount     int64
		offset     time.Duration
	}{
		{2, 25000, -2 * time.Minute},
		{3, 7000, -5 * time.Minute},
		{1, 50000, -45 * time.Minute},
	}

	for i, d := range donations {
		if d.accountIdx >= len(accounts) {
			continue
		}

		donation := &donationmodels.Donation{
			TransactionID: fmt.Sprintf("demo-trx-%03d", i+1),
			SupporterName: accounts[d.accountIdx].Username,
			Amount:        d.amount,
			CreatedAt:     now.Add(d.offset),
		}

		if err := s.donations.Append(ctx, donation); err != nil {
			return err
		}
	}

	return nil
}
