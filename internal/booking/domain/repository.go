package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// OverviewAggregate is the raw roll-up scanned from the bookings table.
type OverviewAggregate struct {
	PendingCount    int64 `gorm:"column:pending_count"`
	ConfirmedCount  int64 `gorm:"column:confirmed_count"`
	CheckedInCount  int64 `gorm:"column:checked_in_count"`
	CheckedOutCount int64 `gorm:"column:checked_out_count"`
	CancelledCount  int64 `gorm:"column:cancelled_count"`
	NoShowCount     int64 `gorm:"column:no_show_count"`
	Revenue         int64 `gorm:"column:revenue"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, booking *Booking) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Booking, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Booking, error)
	Save(ctx context.Context, db *gorm.DB, booking *Booking) error
	Aggregate(ctx context.Context, db *gorm.DB, establishmentID snowflake.ID) (OverviewAggregate, error)
	CountArrivals(ctx context.Context, db *gorm.DB, establishmentID snowflake.ID, dayStart, dayEnd time.Time) (int64, error)
	CountDepartures(ctx context.Context, db *gorm.DB, establishmentID snowflake.ID, dayStart, dayEnd time.Time) (int64, error)
}
