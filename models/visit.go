package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Visit is a billed appointment. TotalAmount is a snapshot taken when the
// visit is created and is never recomputed from the lines.
type Visit struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID uuid.UUID `gorm:"type:uuid;index;not null" json:"clientId"`

	VisitDate   time.Time   `gorm:"index;not null" json:"visitDate"`
	Services    []VisitLine `gorm:"foreignKey:VisitID;constraint:OnDelete:CASCADE" json:"services"`
	TotalAmount float64     `gorm:"type:numeric;not null" json:"totalAmount"`
	Notes       string      `json:"notes"`
	IsDeleted   bool        `gorm:"not null;default:false;index" json:"isDeleted"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// VisitLine is one charged service of a visit. Name and BasePrice are copied
// from the catalog at billing time so later catalog edits do not rewrite
// history.
type VisitLine struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	VisitID  uuid.UUID `gorm:"type:uuid;index;not null" json:"-"`
	Position int       `gorm:"not null" json:"-"`

	ServiceID    uuid.UUID `gorm:"type:uuid;index;not null" json:"serviceId"`
	Name         string    `gorm:"not null" json:"name"`
	BasePrice    float64   `gorm:"type:numeric;not null" json:"basePrice"`
	ChargedPrice float64   `gorm:"type:numeric;not null" json:"chargedPrice"`
	LineTotal    float64   `gorm:"type:numeric;not null" json:"lineTotal"`
}

func (v *Visit) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return
}

func (l *VisitLine) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return
}
