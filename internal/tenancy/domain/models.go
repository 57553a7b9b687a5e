// Package domain contains persistence models for tenants of managed
// properties.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// TenantStatus represents lifecycle states for a tenant.
type TenantStatus string

const (
	TenantStatusActive     TenantStatus = "active"
	TenantStatusTerminated TenantStatus = "terminated"
)

// Tenant occupies exactly one managed property. MonthlyRent and Charges are
// copied from the property at creation and may diverge from it afterwards;
// due dates freeze their own snapshot again at generation time.
type Tenant struct {
	ID           snowflake.ID `json:"id" gorm:"primaryKey"`
	PropertyID   snowflake.ID `json:"property_id" gorm:"not null;index"`
	OwnerID      snowflake.ID `json:"owner_id" gorm:"not null;index"`
	FullName     string       `json:"full_name" gorm:"type:text;not null"`
	Email        string       `json:"email,omitempty" gorm:"type:text"`
	Phone        string       `json:"phone,omitempty" gorm:"type:text"`
	MonthlyRent  int64        `json:"monthly_rent" gorm:"not null"`
	Charges      int64        `json:"charges" gorm:"not null;default:0"`
	DueDay       int          `json:"due_day" gorm:"not null"`
	Status       TenantStatus `json:"status" gorm:"type:text;not null"`
	TerminatedAt *time.Time   `json:"terminated_at,omitempty"`
	CreatedAt    time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt    time.Time    `json:"updated_at" gorm:"not null"`
}

// TableName sets the database table name.
func (Tenant) TableName() string { return "tenants" }
