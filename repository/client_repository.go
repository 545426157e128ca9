package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"salonbook-backend/models"
)

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, client *models.Client) error {
	if err := r.db.WithContext(ctx).Create(client).Error; err != nil {
		return fmt.Errorf("create client: %w", translate(err))
	}
	return nil
}

func (r *ClientRepository) Get(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	if err := r.db.WithContext(ctx).First(&client, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("get client %s: %w", id, translate(err))
	}
	return &client, nil
}

// ExistsActive reports whether an active client with this id exists.
func (r *ClientRepository) ExistsActive(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Client{}).
		Where("id = ? AND status = ?", id, models.StatusActive).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check client %s: %w", id, err)
	}
	return count > 0, nil
}

func (r *ClientRepository) ListActive(ctx context.Context) ([]models.Client, error) {
	clients := []models.Client{}
	err := r.db.WithContext(ctx).
		Where("status = ?", models.StatusActive).
		Order("name ASC").
		Find(&clients).Error
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

// Search matches active clients by name or phone, case-insensitively.
func (r *ClientRepository) Search(ctx context.Context, query string, limit int) ([]models.Client, error) {
	clients := []models.Client{}
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(query))) + "%"
	err := r.db.WithContext(ctx).
		Where("status = ?", models.StatusActive).
		Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(phone) LIKE ? ESCAPE '\')`, pattern, pattern).
		Order("name ASC").
		Limit(limit).
		Find(&clients).Error
	if err != nil {
		return nil, fmt.Errorf("search clients: %w", err)
	}
	return clients, nil
}

func (r *ClientRepository) Save(ctx context.Context, client *models.Client) error {
	if err := r.db.WithContext(ctx).Save(client).Error; err != nil {
		return fmt.Errorf("save client %s: %w", client.ID, translate(err))
	}
	return nil
}

// SetStatus moves a client to status and returns the updated record.
func (r *ClientRepository) SetStatus(ctx context.Context, id uuid.UUID, status models.Status) (*models.Client, error) {
	result := r.db.WithContext(ctx).Model(&models.Client{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return nil, fmt.Errorf("update client %s status: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("update client %s status: %w", id, ErrNotFound)
	}
	return r.Get(ctx, id)
}

func (r *ClientRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Client{}).
		Where("status = ?", models.StatusActive).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count clients: %w", err)
	}
	return count, nil
}
