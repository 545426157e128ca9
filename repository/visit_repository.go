package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"salonbook-backend/models"
)

type VisitRepository struct {
	db *gorm.DB
}

func NewVisitRepository(db *gorm.DB) *VisitRepository {
	return &VisitRepository{db: db}
}

// VisitTotals is the SQL-side sum and count of visits in a range.
type VisitTotals struct {
	Total float64
	Count int64
}

// RecentVisit is a dashboard row: a visit joined with its client name.
type RecentVisit struct {
	VisitID      uuid.UUID `json:"visitId"`
	ClientID     uuid.UUID `json:"clientId"`
	ClientName   string    `json:"clientName"`
	VisitDate    time.Time `json:"visitDate"`
	TotalAmount  float64   `json:"totalAmount"`
	ServiceNames []string  `json:"services" gorm:"-"`
}

// Create inserts the visit and its lines in one transaction.
func (r *VisitRepository) Create(ctx context.Context, visit *models.Visit) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(visit).Error
	})
	if err != nil {
		return fmt.Errorf("create visit: %w", translate(err))
	}
	return nil
}

func (r *VisitRepository) Get(ctx context.Context, id uuid.UUID) (*models.Visit, error) {
	var visit models.Visit
	err := r.db.WithContext(ctx).
		Preload("Services", orderLines).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&visit).Error
	if err != nil {
		return nil, fmt.Errorf("get visit %s: %w", id, translate(err))
	}
	return &visit, nil
}

// ListBetween returns non-deleted visits with from <= visit_date <= to,
// without their lines.
func (r *VisitRepository) ListBetween(ctx context.Context, from, to time.Time) ([]models.Visit, error) {
	visits := []models.Visit{}
	err := r.db.WithContext(ctx).
		Select("id", "client_id", "visit_date", "total_amount").
		Where("visit_date BETWEEN ? AND ? AND is_deleted = ?", from.UTC(), to.UTC(), false).
		Order("visit_date ASC").
		Find(&visits).Error
	if err != nil {
		return nil, fmt.Errorf("list visits: %w", err)
	}
	return visits, nil
}

// ListByClient returns a client's visits, newest first, with their lines.
func (r *VisitRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Visit, error) {
	visits := []models.Visit{}
	err := r.db.WithContext(ctx).
		Preload("Services", orderLines).
		Where("client_id = ? AND is_deleted = ?", clientID, false).
		Order("visit_date DESC").
		Find(&visits).Error
	if err != nil {
		return nil, fmt.Errorf("list visits for client %s: %w", clientID, err)
	}
	return visits, nil
}

func (r *VisitRepository) Totals(ctx context.Context, from, to time.Time) (VisitTotals, error) {
	var totals VisitTotals
	err := r.db.WithContext(ctx).Model(&models.Visit{}).
		Select("COALESCE(SUM(total_amount), 0) AS total, COUNT(*) AS count").
		Where("visit_date BETWEEN ? AND ? AND is_deleted = ?", from.UTC(), to.UTC(), false).
		Scan(&totals).Error
	if err != nil {
		return VisitTotals{}, fmt.Errorf("sum visits: %w", err)
	}
	return totals, nil
}

// Recent returns the latest visits with the names of the services charged.
func (r *VisitRepository) Recent(ctx context.Context, limit int) ([]RecentVisit, error) {
	recent := []RecentVisit{}
	err := r.db.WithContext(ctx).Table("visits").
		Select("visits.id AS visit_id, visits.client_id, clients.name AS client_name, visits.visit_date, visits.total_amount").
		Joins("JOIN clients ON clients.id = visits.client_id").
		Where("visits.is_deleted = ?", false).
		Order("visits.visit_date DESC").
		Limit(limit).
		Scan(&recent).Error
	if err != nil {
		return nil, fmt.Errorf("recent visits: %w", err)
	}
	if len(recent) == 0 {
		return recent, nil
	}

	ids := make([]uuid.UUID, len(recent))
	for i, v := range recent {
		ids[i] = v.VisitID
	}
	var lines []models.VisitLine
	err = r.db.WithContext(ctx).
		Where("visit_id IN ?", ids).
		Order("position ASC").
		Find(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("recent visit lines: %w", err)
	}

	names := make(map[uuid.UUID][]string, len(recent))
	for _, l := range lines {
		names[l.VisitID] = append(names[l.VisitID], l.Name)
	}
	for i := range recent {
		recent[i].ServiceNames = names[recent[i].VisitID]
	}
	return recent, nil
}

// MarkDeleted flags a visit as deleted. Deleted visits drop out of every
// list and report.
func (r *VisitRepository) MarkDeleted(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.Visit{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("is_deleted", true)
	if result.Error != nil {
		return fmt.Errorf("delete visit %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete visit %s: %w", id, ErrNotFound)
	}
	return nil
}

func orderLines(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}
