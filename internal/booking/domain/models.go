// Package domain contains persistence models for hospitality reservations.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// BookingStatus represents lifecycle states for a reservation.
type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusCheckedIn  BookingStatus = "checked_in"
	BookingStatusCheckedOut BookingStatus = "checked_out"
	BookingStatusCancelled  BookingStatus = "cancelled"
	BookingStatusNoShow     BookingStatus = "no_show"
)

// PaymentStatus is operator-asserted; unlike due dates it is never derived
// from a payments ledger.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPartial  PaymentStatus = "partial"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Booking reserves one room for a guest over a date range. Nights, Subtotal
// and TotalAmount are derived values recomputed on every edit that touches a
// pricing field; they are never frozen the way due-date totals are.
type Booking struct {
	ID              snowflake.ID      `json:"id" gorm:"primaryKey"`
	EstablishmentID snowflake.ID      `json:"establishment_id" gorm:"not null;index"`
	RoomID          snowflake.ID      `json:"room_id" gorm:"not null;index"`
	GuestName       string            `json:"guest_name" gorm:"type:text;not null"`
	GuestEmail      string            `json:"guest_email,omitempty" gorm:"type:text"`
	GuestPhone      string            `json:"guest_phone,omitempty" gorm:"type:text"`
	CheckIn         time.Time         `json:"check_in" gorm:"not null"`
	CheckOut        time.Time         `json:"check_out" gorm:"not null"`
	Nights          int               `json:"nights" gorm:"not null"`
	PricePerNight   int64             `json:"price_per_night" gorm:"not null"`
	Taxes           int64             `json:"taxes" gorm:"not null;default:0"`
	Fees            int64             `json:"fees" gorm:"not null;default:0"`
	Discount        int64             `json:"discount" gorm:"not null;default:0"`
	Subtotal        int64             `json:"subtotal" gorm:"not null"`
	TotalAmount     int64             `json:"total_amount" gorm:"not null"`
	Currency        string            `json:"currency" gorm:"type:text;not null"`
	Reference       string            `json:"reference" gorm:"type:text;not null;index"`
	Status          BookingStatus     `json:"status" gorm:"type:text;not null"`
	PaymentStatus   PaymentStatus     `json:"payment_status" gorm:"type:text;not null"`
	ConfirmedAt     *time.Time        `json:"confirmed_at,omitempty"`
	CheckedInAt     *time.Time        `json:"checked_in_at,omitempty"`
	CheckedOutAt    *time.Time        `json:"checked_out_at,omitempty"`
	CancelledAt     *time.Time        `json:"cancelled_at,omitempty"`
	BalancePaidAt   *time.Time        `json:"balance_paid_at,omitempty"`
	Metadata        datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt       time.Time         `json:"created_at" gorm:"not null"`
	UpdatedAt       time.Time         `json:"updated_at" gorm:"not null"`
}

// TableName sets the database table name.
func (Booking) TableName() string { return "bookings" }
