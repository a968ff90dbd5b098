package service

import (
	"fmt"
	"time"

	accountmodels "eshmarket/internal/account/models"
	catalogmodels "eshmarket/internal/catalog/models"
	"eshmarket/internal/notify"
)

func priceLine(p catalogmodels.Price) string {
	return fmt.Sprintf("%d DL | Rp %d", p.DiamondLocks, p.Money)
}

func partyFields(account *accountmodels.Account, product *catalogmodels.Product) []notify.Field {
	return []notify.Field{
		{Name: "Buyer", Value: account.Username, Inline: true},
		{Name: "Buyer ID", Value: account.ExternalID, Inline: true},
		{Name: "Product", Value: product.Title, Inline: true},
		{Name: "Price", Value: priceLine(product.Price), Inline: true},
	}
}

func reviewEmbed(account *accountmodels.Account, product *catalogmodels.Product, approveURL string) notify.Embed {
	embed := notify.Embed{
		Title:       "Purchase awaiting review",
		Description: fmt.Sprintf("Check the attached proof, then [approve](%s) to deliver the product.", approveURL),
		Fields:      partyFields(account, product),
		Color:       notify.ColorPending,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	if account.AvatarURL != "" {
		embed.Thumbnail = &notify.Image{URL: account.AvatarURL}
	}
	return embed
}

func approvedEmbed(account *accountmodels.Account, product *catalogmodels.Product, resolvedAt time.Time) notify.Embed {
	return notify.Embed{
		Title:       "Purchase approved",
		Description: "The product has been delivered to the buyer.",
		Fields:      partyFields(account, product),
		Color:       notify.ColorApproved,
		Timestamp:   resolvedAt.UTC().Format(time.RFC3339),
	}
}

func expiredEmbed(account *accountmodels.Account, product *catalogmodels.Product, resolvedAt time.Time) notify.Embed {
	return notify.Embed{
		Title:       "Purchase review expired",
		Description: "Nobody approved this request before its review window closed.",
		Fields:      partyFields(account, product),
		Color:       notify.ColorExpired,
		Timestamp:   resolvedAt.UTC().Format(time.RFC3339),
	}
}

func fulfillmentEmbed(account *accountmodels.Account, product *catalogmodels.Product) notify.Embed {
	return notify.Embed{
		Title:       fmt.Sprintf("Thanks for buying %s!", product.Title),
		Description: "Your script is attached. You can re-download it from your library at any time.",
		Fields: []notify.Field{
			{Name: "Product", Value: product.Title, Inline: true},
			{Name: "Price", Value: priceLine(product.Price), Inline: true},
		},
		Color: notify.ColorApproved,
	}
}
