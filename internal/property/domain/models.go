// Package domain contains persistence models for landlord-managed rental
// units.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// PropertyStatus represents lifecycle states for a managed property.
type PropertyStatus string

const (
	PropertyStatusVacant   PropertyStatus = "vacant"
	PropertyStatusOccupied PropertyStatus = "occupied"
	PropertyStatusArchived PropertyStatus = "archived"
)

// ManagedProperty is a rentable unit owned by a landlord. Status must reflect
// whether at least one active tenant references it; archived is a terminal
// soft-delete set explicitly by the owner.
type ManagedProperty struct {
	ID          snowflake.ID      `json:"id" gorm:"primaryKey"`
	OwnerID     snowflake.ID      `json:"owner_id" gorm:"not null;index"`
	Title       string            `json:"title" gorm:"type:text;not null"`
	Slug        string            `json:"slug" gorm:"type:text;not null;index"`
	Address     string            `json:"address,omitempty" gorm:"type:text"`
	MonthlyRent int64             `json:"monthly_rent" gorm:"not null"`
	Charges     int64             `json:"charges" gorm:"not null;default:0"`
	Currency    string            `json:"currency" gorm:"type:text;not null"`
	Status      PropertyStatus    `json:"status" gorm:"type:text;not null"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt   time.Time         `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time         `json:"updated_at" gorm:"not null"`
}

// TableName sets the database table name.
func (ManagedProperty) TableName() string { return "managed_properties" }
