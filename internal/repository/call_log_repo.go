package repository

import (
	"context"

	"bendigotelco/connecthub/internal/model"
)

// CallLogRepository persists local audit rows for calls logged upstream.
type CallLogRepository interface {
	Create(ctx context.Context, log *model.CallLog) error
	ListByCustomerID(ctx context.Context, customerID string) ([]model.CallLog, error)
}
