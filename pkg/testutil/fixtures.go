package testutil

import (
	"time"

	"github.com/google/uuid"

	accountmodels "eshmarket/internal/account/models"
	catalogmodels "eshmarket/internal/catalog/models"
	id "eshmarket/pkg/domain"
)

// TestIDs provides convenient pre-generated IDs for tests.
// Use these for deterministic test data.
var TestIDs = struct {
	AccountID1 id.AccountID
	AccountID2 id.AccountID
	ProductID1 id.ProductID
	ProductID2 id.ProductID
}{
	AccountID1: id.AccountID(uuid.MustParse("11111111-1111-1111-1111-111111111111")),
	AccountID2: id.AccountID(uuid.MustParse("22222222-2222-2222-2222-222222222222")),
	ProductID1: id.ProductID(uuid.MustParse("aaaa0000-0000-0000-0000-000000000001")),
	ProductID2: id.ProductID(uuid.MustParse("aaaa0000-0000-0000-0000-000000000002")),
}

// AccountBuilder provides a fluent interface for building test accounts.
type AccountBuilder struct {
	account *accountmodels.Account
}

// NewAccountBuilder creates a new AccountBuilder with sensible defaults.
func NewAccountBuilder() *AccountBuilder {
	return &AccountBuilder{
		account: &accountmodels.Account{
			ID:         id.NewAccountID(),
			ExternalID: "100000000000000001",
			Username:   "testbuyer",
			CreatedAt:  time.Now(),
		},
	}
}

func (b *AccountBuilder) WithID(accountID id.AccountID) *AccountBuilder {
	b.account.ID = accountID
	return b
}

func (b *AccountBuilder) WithExternalID(externalID string) *AccountBuilder {
	b.account.ExternalID = externalID
	return b
}

func (b *AccountBuilder) WithUsername(username string) *AccountBuilder {
	b.account.Username = username
	return b
}

func (b *AccountBuilder) WithBalance(diamondLocks, money int64) *AccountBuilder {
	b.account.Balance = accountmodels.Balance{DiamondLocks: diamondLocks, Money: money}
	return b
}

func (b *AccountBuilder) Owning(productIDs ...id.ProductID) *AccountBuilder {
	b.account.PurchasedProductIDs = append(b.account.PurchasedProductIDs, productIDs...)
	return b
}

func (b *AccountBuilder) Admin() *AccountBuilder {
	b.account.IsAdmin = true
	return b
}

func (b *AccountBuilder) Build() *accountmodels.Account {
	return b.account
}

// ProductBuilder provides a fluent interface for building test products.
type ProductBuilder struct {
	product *catalogmodels.Product
}

// NewProductBuilder creates a new ProductBuilder with sensible defaults.
func NewProductBuilder() *ProductBuilder {
	now := time.Now()
	return &ProductBuilder{
		product: &catalogmodels.Product{
			ID:          id.NewProductID(),
			Title:       "AutoFarm",
			Description: "Automates farming runs.",
			Price:       catalogmodels.Price{DiamondLocks: 5, Money: 50000},
			Content:     "print('hello')",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}

func (b *ProductBuilder) WithID(productID id.ProductID) *ProductBuilder {
	b.product.ID = productID
	return b
}

func (b *ProductBuilder) WithTitle(title string) *ProductBuilder {
	b.product.Title = title
	return b
}

func (b *ProductBuilder) WithPrice(diamondLocks, money int64) *ProductBuilder {
	b.product.Price = catalogmodels.Price{DiamondLocks: diamondLocks, Money: money}
	return b
}

func (b *ProductBuilder) WithContent(content string) *ProductBuilder {
	b.product.Content = content
	return b
}

func (b *ProductBuilder) Build() *catalogmodels.Product {
	return b.product
}
