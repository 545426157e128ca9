package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"salonbook-backend/models"
)

type ServiceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

func (r *ServiceRepository) Create(ctx context.Context, service *models.Service) error {
	if err := r.db.WithContext(ctx).Create(service).Error; err != nil {
		return fmt.Errorf("create service: %w", translate(err))
	}
	return nil
}

func (r *ServiceRepository) Get(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	var service models.Service
	if err := r.db.WithContext(ctx).First(&service, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("get service %s: %w", id, translate(err))
	}
	return &service, nil
}

func (r *ServiceRepository) GetByName(ctx context.Context, name string) (*models.Service, error) {
	var service models.Service
	if err := r.db.WithContext(ctx).First(&service, "name = ?", name).Error; err != nil {
		return nil, fmt.Errorf("get service %q: %w", name, translate(err))
	}
	return &service, nil
}

// List returns the whole catalog, active and inactive, sorted by name.
func (r *ServiceRepository) List(ctx context.Context) ([]models.Service, error) {
	services := []models.Service{}
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&services).Error; err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return services, nil
}

// FindActiveByIDs returns the active services among ids. Unknown and
// inactive ids are silently left out, so callers compare lengths.
func (r *ServiceRepository) FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Service, error) {
	services := []models.Service{}
	if len(ids) == 0 {
		return services, nil
	}
	err := r.db.WithContext(ctx).
		Where("id IN ? AND status = ?", ids, models.StatusActive).
		Find(&services).Error
	if err != nil {
		return nil, fmt.Errorf("find services: %w", err)
	}
	return services, nil
}

func (r *ServiceRepository) Save(ctx context.Context, service *models.Service) error {
	if err := r.db.WithContext(ctx).Save(service).Error; err != nil {
		return fmt.Errorf("save service %s: %w", service.ID, translate(err))
	}
	return nil
}
