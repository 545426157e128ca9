package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"salonbook-backend/models"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, entry *models.NotificationLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("log notification: %w", err)
	}
	return nil
}

// ListByKind returns the latest attempts first. An empty kind matches all.
func (r *NotificationRepository) ListByKind(ctx context.Context, kind string, limit int) ([]models.NotificationLog, error) {
	logs := []models.NotificationLog{}
	query := r.db.WithContext(ctx).Order("sent_at DESC").Limit(limit)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	err := query.Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return logs, nil
}
