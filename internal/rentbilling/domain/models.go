// Package domain contains persistence models for the rental ledger: monthly
// due dates and the payments settled against them.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// DueDateStatus represents lifecycle states for a monthly obligation.
type DueDateStatus string

const (
	DueDateStatusPending   DueDateStatus = "pending"
	DueDateStatusPaid      DueDateStatus = "paid"
	DueDateStatusOverdue   DueDateStatus = "overdue"
	DueDateStatusCancelled DueDateStatus = "cancelled"
)

// DueDate is one monthly billing obligation for a tenant. RentAmount,
// ChargesAmount and TotalAmount are frozen at generation time and never
// recomputed, even when the tenant's rent later changes.
type DueDate struct {
	ID            snowflake.ID  `json:"id" gorm:"primaryKey"`
	TenantID      snowflake.ID  `json:"tenant_id" gorm:"not null;index"`
	PropertyID    snowflake.ID  `json:"property_id" gorm:"not null;index"`
	OwnerID       snowflake.ID  `json:"owner_id" gorm:"not null;index"`
	Month         int           `json:"month" gorm:"not null"`
	Year          int           `json:"year" gorm:"not null"`
	RentAmount    int64         `json:"rent_amount" gorm:"not null"`
	ChargesAmount int64         `json:"charges_amount" gorm:"not null;default:0"`
	TotalAmount   int64         `json:"total_amount" gorm:"not null"`
	DueOn         time.Time     `json:"due_on" gorm:"not null"`
	Status        DueDateStatus `json:"status" gorm:"type:text;not null"`
	CreatedAt     time.Time     `json:"created_at" gorm:"not null"`
	UpdatedAt     time.Time     `json:"updated_at" gorm:"not null"`
}

// TableName sets the database table name.
func (DueDate) TableName() string { return "due_dates" }

// Payment is a monetary settlement, optionally tied to a due date. Payments
// are immutable once recorded; creating one is the sole trigger for due-date
// status recomputation.
type Payment struct {
	ID         snowflake.ID  `json:"id" gorm:"primaryKey"`
	TenantID   snowflake.ID  `json:"tenant_id" gorm:"not null;index"`
	DueDateID  *snowflake.ID `json:"due_date_id,omitempty" gorm:"index"`
	Amount     int64         `json:"amount" gorm:"not null"`
	Method     string        `json:"method" gorm:"type:text;not null"`
	ReceiptNo  string        `json:"receipt_no" gorm:"type:text;not null"`
	PaidOn     time.Time     `json:"paid_on" gorm:"not null"`
	RecordedBy snowflake.ID  `json:"recorded_by" gorm:"not null"`
	Cancelled  bool          `json:"cancelled" gorm:"not null;default:false"`
	CreatedAt  time.Time     `json:"created_at" gorm:"not null"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }
