package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Expense struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Date     time.Time `gorm:"index;not null" json:"date"`
	Category string    `gorm:"not null;index" json:"category"`
	Amount   float64   `gorm:"type:numeric;not null" json:"amount"`
	Notes    string    `json:"notes"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (e *Expense) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}
