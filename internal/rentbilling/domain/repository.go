package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// StatsScope narrows aggregates to a tenant, a property, or everything a
// landlord owns. Zero fields are unbounded.
type StatsScope struct {
	OwnerID    snowflake.ID
	TenantID   snowflake.ID
	PropertyID snowflake.ID
}

// DueDateAggregate is the read-side roll-up over obligations in scope.
type DueDateAggregate struct {
	TotalDue     int64 `gorm:"column:total_due"`
	PendingCount int64 `gorm:"column:pending_count"`
	OverdueCount int64 `gorm:"column:overdue_count"`
	PaidCount    int64 `gorm:"column:paid_count"`
}

type Repository interface {
	InsertDueDate(ctx context.Context, db *gorm.DB, dueDate *DueDate) error
	InsertPayment(ctx context.Context, db *gorm.DB, payment *Payment) error
	FindDueDateByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*DueDate, error)
	FindDueDateByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*DueDate, error)
	FindDueDateByTenantPeriod(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, month, year int) (*DueDate, error)
	FindPaymentsByDueDate(ctx context.Context, db *gorm.DB, dueDateID snowflake.ID) ([]Payment, error)
	UpdateDueDateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status DueDateStatus, at time.Time) error
	AggregateDueDates(ctx context.Context, db *gorm.DB, scope StatsScope) (DueDateAggregate, error)
	SumPayments(ctx context.Context, db *gorm.DB, scope StatsScope) (int64, error)
	MarkOverdue(ctx context.Context, db *gorm.DB, before, at time.Time) (int64, error)
}
