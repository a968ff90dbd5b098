package audit

import (
	"context"

	id "eshmarket/pkg/domain"
)

type Store interface {
	Append(ctx context.Context, event Event) error
	ListByAccount(ctx context.Context, accountID id.AccountID) ([]Event, error)
}
