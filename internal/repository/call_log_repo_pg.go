package repository

import (
	"context"

	"gorm.io/gorm"

	"bendigotelco/connecthub/internal/model"
)

type pgCallLogRepository struct {
	db *gorm.DB
}

func NewPGCallLogRepository(db *gorm.DB) CallLogRepository {
	return &pgCallLogRepository{db: db}
}

func (r *pgCallLogRepository) Create(ctx context.Context, log *model.CallLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *pgCallLogRepository) ListByCustomerID(ctx context.Context, customerID string) ([]model.CallLog, error) {
	var logs []model.CallLog
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("started_at DESC").
		Find(&logs).Error
	return logs, err
}
