package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"

	bookingdomain "github.com/arafateouronile-glitch/immokey/internal/booking/domain"
	"github.com/arafateouronile-glitch/immokey/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() bookingdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, gdb *gorm.DB, booking *bookingdomain.Booking) error {
	return gdb.WithContext(ctx).Create(booking).Error
}

func (r *repo) FindByID(ctx context.Context, gdb *gorm.DB, id snowflake.ID) (*bookingdomain.Booking, error) {
	return r.find(ctx, gdb, id, "")
}

func (r *repo) FindByIDForUpdate(ctx context.Context, gdb *gorm.DB, id snowflake.ID) (*bookingdomain.Booking, error) {
	return r.find(ctx, gdb, id, db.LockingSuffix(gdb))
}

func (r *repo) find(ctx context.Context, gdb *gorm.DB, id snowflake.ID, suffix string) (*bookingdomain.Booking, error) {
	var booking bookingdomain.Booking
	err := gdb.WithContext(ctx).Raw(
		`SELECT * FROM bookings WHERE id = ?`+suffix,
		id,
	).Scan(&booking).Error
	if err != nil {
		return nil, err
	}
	if booking.ID == 0 {
		return nil, nil
	}
	return &booking, nil
}

func (r *repo) Save(ctx context.Context, gdb *gorm.DB, booking *bookingdomain.Booking) error {
	return gdb.WithContext(ctx).Save(booking).Error
}

func (r *repo) Aggregate(ctx context.Context, gdb *gorm.DB, establishmentID snowflake.ID) (bookingdomain.OverviewAggregate, error) {
	query := `SELECT
		COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0) AS pending_count,
		COALESCE(SUM(CASE WHEN status = 'confirmed' THEN 1 ELSE 0 END), 0) AS confirmed_count,
		COALESCE(SUM(CASE WHEN status = 'checked_in' THEN 1 ELSE 0 END), 0) AS checked_in_count,
		COALESCE(SUM(CASE WHEN status = 'checked_out' THEN 1 ELSE 0 END), 0) AS checked_out_count,
		COALESCE(SUM(CASE WHEN status = 'cancelled' THEN 1 ELSE 0 END), 0) AS cancelled_count,
		COALESCE(SUM(CASE WHEN status = 'no_show' THEN 1 ELSE 0 END), 0) AS no_show_count,
		COALESCE(SUM(CASE WHEN payment_status IN ('paid', 'partial') THEN total_amount ELSE 0 END), 0) AS revenue
	 FROM bookings`

	args := []any{}
	if establishmentID != 0 {
		query += ` WHERE establishment_id = ?`
		args = append(args, establishmentID)
	}

	var aggregate bookingdomain.OverviewAggregate
	err := gdb.WithContext(ctx).Raw(query, args...).Scan(&aggregate).Error
	return aggregate, err
}

func (r *repo) CountArrivals(ctx context.Context, gdb *gorm.DB, establishmentID snowflake.ID, dayStart, dayEnd time.Time) (int64, error) {
	return r.countInWindow(ctx, gdb, establishmentID, "check_in", bookingdomain.BookingStatusConfirmed, dayStart, dayEnd)
}

func (r *repo) CountDepartures(ctx context.Context, gdb *gorm.DB, establishmentID snowflake.ID, dayStart, dayEnd time.Time) (int64, error) {
	return r.countInWindow(ctx, gdb, establishmentID, "check_out", bookingdomain.BookingStatusCheckedIn, dayStart, dayEnd)
}

func (r *repo) countInWindow(ctx context.Context, gdb *gorm.DB, establishmentID snowflake.ID, column string, status bookingdomain.BookingStatus, dayStart, dayEnd time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE ` + column + ` >= ? AND ` + column + ` < ? AND status = ?`
	args := []any{dayStart, dayEnd, status}
	if establishmentID != 0 {
		query += ` AND establishment_id = ?`
		args = append(args, establishmentID)
	}

	var count int64
	err := gdb.WithContext(ctx).Raw(query, args...).Scan(&count).Error
	return count, err
}
