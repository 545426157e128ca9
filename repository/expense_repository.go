package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"salonbook-backend/models"
)

type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// ExpenseFilter bounds are inclusive; a nil bound is open.
type ExpenseFilter struct {
	From *time.Time
	To   *time.Time
}

func (r *ExpenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	if err := r.db.WithContext(ctx).Create(expense).Error; err != nil {
		return fmt.Errorf("create expense: %w", translate(err))
	}
	return nil
}

// List returns matching expenses, newest first.
func (r *ExpenseRepository) List(ctx context.Context, filter ExpenseFilter) ([]models.Expense, error) {
	expenses := []models.Expense{}
	q := r.db.WithContext(ctx)
	if filter.From != nil {
		q = q.Where("date >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		q = q.Where("date <= ?", filter.To.UTC())
	}
	if err := q.Order("date DESC").Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// ListBetween returns expenses with from <= date <= to, oldest first.
func (r *ExpenseRepository) ListBetween(ctx context.Context, from, to time.Time) ([]models.Expense, error) {
	expenses := []models.Expense{}
	err := r.db.WithContext(ctx).
		Select("id", "date", "category", "amount").
		Where("date BETWEEN ? AND ?", from.UTC(), to.UTC()).
		Order("date ASC").
		Find(&expenses).Error
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

func (r *ExpenseRepository) Total(ctx context.Context, from, to time.Time) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&models.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("date BETWEEN ? AND ?", from.UTC(), to.UTC()).
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("sum expenses: %w", err)
	}
	return total, nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Expense{})
	if result.Error != nil {
		return fmt.Errorf("delete expense %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete expense %s: %w", id, ErrNotFound)
	}
	return nil
}
