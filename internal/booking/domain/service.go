package domain

import (
	"context"
	"errors"
	"time"
)

type CreateBookingRequest struct {
	EstablishmentID string         `json:"establishment_id"`
	RoomID          string         `json:"room_id"`
	GuestName       string         `json:"guest_name"`
	GuestEmail      string         `json:"guest_email,omitempty"`
	GuestPhone      string         `json:"guest_phone,omitempty"`
	CheckIn         string         `json:"check_in"`
	CheckOut        string         `json:"check_out"`
	PricePerNight   int64          `json:"price_per_night"`
	Taxes           int64          `json:"taxes,omitempty"`
	Fees            int64          `json:"fees,omitempty"`
	Discount        int64          `json:"discount,omitempty"`
	Currency        string         `json:"currency,omitempty"`
	Reference       string         `json:"reference,omitempty"`
	Status          BookingStatus  `json:"status,omitempty"`
	PaymentStatus   PaymentStatus  `json:"payment_status,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// UpdateBookingRequest is a partial update; nil fields keep their current
// value. Touching any pricing field (dates, price, taxes, fees, discount)
// recomputes nights, subtotal and total from the merged record.
type UpdateBookingRequest struct {
	RoomID        *string        `json:"room_id,omitempty"`
	GuestName     *string        `json:"guest_name,omitempty"`
	GuestEmail    *string        `json:"guest_email,omitempty"`
	GuestPhone    *string        `json:"guest_phone,omitempty"`
	CheckIn       *string        `json:"check_in,omitempty"`
	CheckOut      *string        `json:"check_out,omitempty"`
	PricePerNight *int64         `json:"price_per_night,omitempty"`
	Taxes         *int64         `json:"taxes,omitempty"`
	Fees          *int64         `json:"fees,omitempty"`
	Discount      *int64         `json:"discount,omitempty"`
	Currency      *string        `json:"currency,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

type ListBookingsRequest struct {
	EstablishmentID string
	RoomID          string
	Status          string
	PaymentStatus   string
}

type ListBookingsResponse struct {
	Bookings []Booking `json:"bookings"`
}

// OverviewResponse is the hospitality dashboard roll-up.
type OverviewResponse struct {
	StatusCounts   map[BookingStatus]int64 `json:"status_counts"`
	ArrivingToday  int64                   `json:"arriving_today"`
	DepartingToday int64                   `json:"departing_today"`
	Revenue        int64                   `json:"revenue"`
}

type Service interface {
	Create(ctx context.Context, req CreateBookingRequest) (Booking, error)
	GetByID(ctx context.Context, id string) (Booking, error)
	List(ctx context.Context, req ListBookingsRequest) (ListBookingsResponse, error)
	Update(ctx context.Context, id string, req UpdateBookingRequest) (Booking, error)
	Confirm(ctx context.Context, id string) (Booking, error)
	CheckIn(ctx context.Context, id string) (Booking, error)
	CheckOut(ctx context.Context, id string) (Booking, error)
	Cancel(ctx context.Context, id string) (Booking, error)
	MarkNoShow(ctx context.Context, id string) (Booking, error)
	SetPaymentStatus(ctx context.Context, id string, status PaymentStatus) (Booking, error)
	Overview(ctx context.Context, establishmentID string, today time.Time) (OverviewResponse, error)
}

var (
	ErrInvalidID            = errors.New("invalid_booking_id")
	ErrInvalidEstablishment = errors.New("invalid_establishment_id")
	ErrInvalidRoom          = errors.New("invalid_room_id")
	ErrInvalidGuestName     = errors.New("invalid_guest_name")
	ErrInvalidCheckIn       = errors.New("invalid_check_in")
	ErrInvalidCheckOut      = errors.New("invalid_check_out")
	ErrInvalidDateRange     = errors.New("check_out_not_after_check_in")
	ErrInvalidPrice         = errors.New("invalid_price_per_night")
	ErrInvalidCharge        = errors.New("invalid_charge_amount")
	ErrInvalidStatus        = errors.New("invalid_status")
	ErrInvalidPaymentStatus = errors.New("invalid_payment_status")
	ErrNotFound             = errors.New("booking_not_found")
	ErrInvalidTransition    = errors.New("invalid_booking_transition")
)
