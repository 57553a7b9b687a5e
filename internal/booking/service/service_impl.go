package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	bookingdomain "github.com/arafateouronile-glitch/immokey/internal/booking/domain"
	"github.com/arafateouronile-glitch/immokey/internal/clock"
	"github.com/arafateouronile-glitch/immokey/internal/config"
	"github.com/arafateouronile-glitch/immokey/internal/period"
	"github.com/arafateouronile-glitch/immokey/pkg/db/option"
	"github.com/arafateouronile-glitch/immokey/pkg/repository"
)

const dateLayout = "2006-01-02"

// Service owns reservation pricing and the booking lifecycle. Unlike the
// rental ledger, booking totals are derived values: every edit that touches
// dates or money recomputes nights, subtotal and total from the merged
// record.
type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID       *snowflake.Node
	clock       clock.Clock
	repo        bookingdomain.Repository
	marketplace *config.MarketplaceConfigHolder

	bookingStore repository.Repository[bookingdomain.Booking]
}

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        bookingdomain.Repository
	Marketplace *config.MarketplaceConfigHolder
}

func NewService(p Params) bookingdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("booking.service"),

		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		marketplace: p.Marketplace,

		bookingStore: repository.ProvideStore[bookingdomain.Booking](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req bookingdomain.CreateBookingRequest) (bookingdomain.Booking, error) {
	establishmentID, err := snowflake.ParseString(strings.TrimSpace(req.EstablishmentID))
	if err != nil {
		return bookingdomain.Booking{}, bookingdomain.ErrInvalidEstablishment
	}
	roomID, err := snowflake.ParseString(strings.TrimSpace(req.RoomID))
	if err != nil {
		return bookingdomain.Booking{}, bookingdomain.ErrInvalidRoom
	}
	guestName := strings.TrimSpace(req.GuestName)
	if guestName == "" {
		return bookingdomain.Booking{}, bookingdomain.ErrInvalidGuestName
	}

	checkIn, err := parseDate(req.CheckIn)
	if err != nil {
		return bookingdomain.Booking{}, bookingdomain.ErrInvalidCheckIn
	}
	checkOut, err := parseDate(req.CheckOut)
	if err != nil {
		return bookingdomain.Booking{}, bookingdomain.ErrInvalidCheckOut
	}

	status := req.Status
	if status == "" {
		status = bookingdomain.BookingStatusPending
	}
	if !validStatus(status) {
		return bookingdomain.Booking{}, bookingdomain.ErrInvalidStatus
	}
	paymentStatus := req.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = bookingdomain.PaymentStatusPending
	}
	if !validPaymentStatus(paymentStatus) {
		return bookingdomain.Booking{}, bookingdomain.ErrInvalidPaymentStatus
	}

	rules := s.marketplace.Get()
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = rules.DefaultCurrency
	}

	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		reference = newReference(rules.BookingReferencePrefix, checkIn.Year())
	}

	now := s.clock.Now()
	booking := bookingdomain.Booking{
		ID:              s.genID.Generate(),
		EstablishmentID: establishmentID,
		RoomID:          roomID,
		GuestName:       guestName,
		GuestEmail:      strings.TrimSpace(req.GuestEmail),
		GuestPhone:      strings.TrimSpace(req.GuestPhone),
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		PricePerNight:   req.PricePerNight,
		Taxes:           req.Taxes,
		Fees:            req.Fees,
		Discount:        req.Discount,
		Currency:        currency,
		Reference:       reference,
		Status:          status,
		PaymentStatus:   paymentStatus,
		Metadata:        datatypes.JSONMap(req.Metadata),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := recompute(&booking); err != nil {
		return bookingdomain.Booking{}, err
	}

	if err := s.repo.Insert(ctx, s.db, &booking); err != nil {
		return bookingdomain.Booking{}, err
	}

	s.log.Info("booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("reference", booking.Reference),
		zap.Int("nights", booking.Nights),
	)
	return booking, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (bookingdomain.Booking, error) {
	bookingID, err := parseID(id)
	if err != nil {
		return bookingdomain.Booking{}, err
	}

	booking, err := s.repo.FindByID(ctx, s.db, bookingID)
	if err != nil {
		return bookingdomain.Booking{}, err
	}
	if booking == nil {
		return bookingdomain.Booking{}, bookingdomain.ErrNotFound
	}
	return *booking, nil
}

func (s *Service) List(ctx context.Context, req bookingdomain.ListBookingsRequest) (bookingdomain.ListBookingsResponse, error) {
	filter := &bookingdomain.Booking{}

	if raw := strings.TrimSpace(req.EstablishmentID); raw != "" {
		parsed, err := snowflake.ParseString(raw)
		if err != nil {
			return bookingdomain.ListBookingsResponse{}, bookingdomain.ErrInvalidEstablishment
		}
		filter.EstablishmentID = parsed
	}
	if raw := strings.TrimSpace(req.RoomID); raw != "" {
		parsed, err := snowflake.ParseString(raw)
		if err != nil {
			return bookingdomain.ListBookingsResponse{}, bookingdomain.ErrInvalidRoom
		}
		filter.RoomID = parsed
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		filter.Status = bookingdomain.BookingStatus(status)
	}
	if status := strings.TrimSpace(req.PaymentStatus); status != "" {
		filter.PaymentStatus = bookingdomain.PaymentStatus(status)
	}

	items, err := s.bookingStore.Find(ctx, filter,
		option.WithSortBy(option.WithQuerySortBy("created_at", "desc", map[string]bool{"created_at": true})),
	)
	if err != nil {
		return bookingdomain.ListBookingsResponse{}, err
	}

	bookings := make([]bookingdomain.Booking, 0, len(items))
	for _, item := range items {
		bookings = append(bookings, *item)
	}
	return bookingdomain.ListBookingsResponse{Bookings: bookings}, nil
}

func (s *Service) Update(ctx context.Context, id string, req bookingdomain.UpdateBookingRequest) (bookingdomain.Booking, error) {
	bookingID, err := parseID(id)
	if err != nil {
		return bookingdomain.Booking{}, err
	}

	var updated bookingdomain.Booking
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := s.repo.FindByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if booking == nil {
			return bookingdomain.ErrNotFound
		}

		if req.RoomID != nil {
			parsed, err := snowflake.ParseString(strings.TrimSpace(*req.RoomID))
			if err != nil {
				return bookingdomain.ErrInvalidRoom
			}
			booking.RoomID = parsed
		}
		if req.GuestName != nil {
			name := strings.TrimSpace(*req.GuestName)
			if name == "" {
				return bookingdomain.ErrInvalidGuestName
			}
			booking.GuestName = name
		}
		if req.GuestEmail != nil {
			booking.GuestEmail = strings.TrimSpace(*req.GuestEmail)
		}
		if req.GuestPhone != nil {
			booking.GuestPhone = strings.TrimSpace(*req.GuestPhone)
		}
		if req.Currency != nil {
			booking.Currency = strings.ToUpper(strings.TrimSpace(*req.Currency))
		}
		if req.Metadata != nil {
			booking.Metadata = datatypes.JSONMap(req.Metadata)
		}

		repriced := false
		if req.CheckIn != nil {
			checkIn, err := parseDate(*req.CheckIn)
			if err != nil {
				return bookingdomain.ErrInvalidCheckIn
			}
			booking.CheckIn = checkIn
			repriced = true
		}
		if req.CheckOut != nil {
			checkOut, err := parseDate(*req.CheckOut)
			if err != nil {
				return bookingdomain.ErrInvalidCheckOut
			}
			booking.CheckOut = checkOut
			repriced = true
		}
		if req.PricePerNight != nil {
			booking.PricePerNight = *req.PricePerNight
			repriced = true
		}
		if req.Taxes != nil {
			booking.Taxes = *req.Taxes
			repriced = true
		}
		if req.Fees != nil {
			booking.Fees = *req.Fees
			repriced = true
		}
		if req.Discount != nil {
			booking.Discount = *req.Discount
			repriced = true
		}

		if repriced {
			if err := recompute(booking); err != nil {
				return err
			}
		}

		booking.UpdatedAt = s.clock.Now()
		if err := s.repo.Save(ctx, tx, booking); err != nil {
			return err
		}
		updated = *booking
		return nil
	})
	if err != nil {
		return bookingdomain.Booking{}, err
	}
	return updated, nil
}

func (s *Service) Confirm(ctx context.Context, id string) (bookingdomain.Booking, error) {
	return s.transition(ctx, id, bookingdomain.BookingStatusConfirmed)
}

func (s *Service) CheckIn(ctx context.Context, id string) (bookingdomain.Booking, error) {
	return s.transition(ctx, id, bookingdomain.BookingStatusCheckedIn)
}

func (s *Service) CheckOut(ctx context.Context, id string) (bookingdomain.Booking, error) {
	return s.transition(ctx, id, bookingdomain.BookingStatusCheckedOut)
}

func (s *Service) Cancel(ctx context.Context, id string) (bookingdomain.Booking, error) {
	return s.transition(ctx, id, bookingdomain.BookingStatusCancelled)
}

func (s *Service) MarkNoShow(ctx context.Context, id string) (bookingdomain.Booking, error) {
	return s.transition(ctx, id, bookingdomain.BookingStatusNoShow)
}

// transition applies one guarded status change. Timestamps are stamped on the
// first transition only; re-running a transition on the same booking is
// rejected by the guard before any write.
func (s *Service) transition(ctx context.Context, id string, target bookingdomain.BookingStatus) (bookingdomain.Booking, error) {
	bookingID, err := parseID(id)
	if err != nil {
		return bookingdomain.Booking{}, err
	}

	var updated bookingdomain.Booking
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := s.repo.FindByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if booking == nil {
			return bookingdomain.ErrNotFound
		}

		if !allowedTransition(booking.Status, target) {
			return bookingdomain.ErrInvalidTransition
		}

		now := s.clock.Now()
		booking.Status = target
		switch target {
		case bookingdomain.BookingStatusConfirmed:
			if booking.ConfirmedAt == nil {
				booking.ConfirmedAt = &now
			}
		case bookingdomain.BookingStatusCheckedIn:
			if booking.CheckedInAt == nil {
				booking.CheckedInAt = &now
			}
		case bookingdomain.BookingStatusCheckedOut:
			if booking.CheckedOutAt == nil {
				booking.CheckedOutAt = &now
			}
		case bookingdomain.BookingStatusCancelled:
			if booking.CancelledAt == nil {
				booking.CancelledAt = &now
			}
		}

		// Transitions flow through the same derivation path as edits.
		if err := recompute(booking); err != nil {
			return err
		}

		booking.UpdatedAt = now
		if err := s.repo.Save(ctx, tx, booking); err != nil {
			return err
		}
		updated = *booking
		return nil
	})
	if err != nil {
		return bookingdomain.Booking{}, err
	}

	s.log.Info("booking transitioned",
		zap.String("booking_id", updated.ID.String()),
		zap.String("status", string(updated.Status)),
	)
	return updated, nil
}

func (s *Service) SetPaymentStatus(ctx context.Context, id string, status bookingdomain.PaymentStatus) (bookingdomain.Booking, error) {
	if !validPaymentStatus(status) {
		return bookingdomain.Booking{}, bookingdomain.ErrInvalidPaymentStatus
	}

	bookingID, err := parseID(id)
	if err != nil {
		return bookingdomain.Booking{}, err
	}

	var updated bookingdomain.Booking
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := s.repo.FindByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if booking == nil {
			return bookingdomain.ErrNotFound
		}

		now := s.clock.Now()
		booking.PaymentStatus = status
		if status == bookingdomain.PaymentStatusPaid && booking.BalancePaidAt == nil {
			booking.BalancePaidAt = &now
		}

		booking.UpdatedAt = now
		if err := s.repo.Save(ctx, tx, booking); err != nil {
			return err
		}
		updated = *booking
		return nil
	})
	if err != nil {
		return bookingdomain.Booking{}, err
	}
	return updated, nil
}

func (s *Service) Overview(ctx context.Context, establishmentID string, today time.Time) (bookingdomain.OverviewResponse, error) {
	var scope snowflake.ID
	if raw := strings.TrimSpace(establishmentID); raw != "" {
		parsed, err := snowflake.ParseString(raw)
		if err != nil {
			return bookingdomain.OverviewResponse{}, bookingdomain.ErrInvalidEstablishment
		}
		scope = parsed
	}

	aggregate, err := s.repo.Aggregate(ctx, s.db, scope)
	if err != nil {
		return bookingdomain.OverviewResponse{}, err
	}

	dayStart := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	arriving, err := s.repo.CountArrivals(ctx, s.db, scope, dayStart, dayEnd)
	if err != nil {
		return bookingdomain.OverviewResponse{}, err
	}
	departing, err := s.repo.CountDepartures(ctx, s.db, scope, dayStart, dayEnd)
	if err != nil {
		return bookingdomain.OverviewResponse{}, err
	}

	return bookingdomain.OverviewResponse{
		StatusCounts: map[bookingdomain.BookingStatus]int64{
			bookingdomain.BookingStatusPending:    aggregate.PendingCount,
			bookingdomain.BookingStatusConfirmed:  aggregate.ConfirmedCount,
			bookingdomain.BookingStatusCheckedIn:  aggregate.CheckedInCount,
			bookingdomain.BookingStatusCheckedOut: aggregate.CheckedOutCount,
			bookingdomain.BookingStatusCancelled:  aggregate.CancelledCount,
			bookingdomain.BookingStatusNoShow:     aggregate.NoShowCount,
		},
		ArrivingToday:  arriving,
		DepartingToday: departing,
		Revenue:        aggregate.Revenue,
	}, nil
}

// recompute validates the merged record and derives nights, subtotal and
// total. It runs on creation, on every pricing edit and on every transition.
func recompute(booking *bookingdomain.Booking) error {
	if !booking.CheckOut.After(booking.CheckIn) {
		return bookingdomain.ErrInvalidDateRange
	}
	if booking.PricePerNight <= 0 {
		return bookingdomain.ErrInvalidPrice
	}
	if booking.Taxes < 0 || booking.Fees < 0 || booking.Discount < 0 {
		return bookingdomain.ErrInvalidCharge
	}

	booking.Nights = period.Nights(booking.CheckIn, booking.CheckOut)
	booking.Subtotal = booking.PricePerNight * int64(booking.Nights)
	booking.TotalAmount = booking.Subtotal + booking.Taxes + booking.Fees - booking.Discount
	return nil
}

func allowedTransition(from, to bookingdomain.BookingStatus) bool {
	switch to {
	case bookingdomain.BookingStatusConfirmed:
		return from == bookingdomain.BookingStatusPending
	case bookingdomain.BookingStatusCheckedIn:
		return from == bookingdomain.BookingStatusPending || from == bookingdomain.BookingStatusConfirmed
	case bookingdomain.BookingStatusCheckedOut:
		return from == bookingdomain.BookingStatusCheckedIn
	case bookingdomain.BookingStatusCancelled:
		return from != bookingdomain.BookingStatusCheckedOut && from != bookingdomain.BookingStatusCancelled
	case bookingdomain.BookingStatusNoShow:
		return from == bookingdomain.BookingStatusConfirmed
	default:
		return false
	}
}

func validStatus(status bookingdomain.BookingStatus) bool {
	switch status {
	case bookingdomain.BookingStatusPending,
		bookingdomain.BookingStatusConfirmed,
		bookingdomain.BookingStatusCheckedIn,
		bookingdomain.BookingStatusCheckedOut,
		bookingdomain.BookingStatusCancelled,
		bookingdomain.BookingStatusNoShow:
		return true
	default:
		return false
	}
}

func validPaymentStatus(status bookingdomain.PaymentStatus) bool {
	switch status {
	case bookingdomain.PaymentStatusPending,
		bookingdomain.PaymentStatusPartial,
		bookingdomain.PaymentStatusPaid,
		bookingdomain.PaymentStatusRefunded:
		return true
	default:
		return false
	}
}

// newReference builds `<PREFIX>-<year>-<4-char suffix>`. Uniqueness is
// best-effort: the suffix is random and no retry loop checks the table.
func newReference(prefix string, year int) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:4]
	return strings.ToUpper(strings.TrimSpace(prefix)) + "-" + strconv.Itoa(year) + "-" + suffix
}

func parseID(raw string) (snowflake.ID, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, bookingdomain.ErrInvalidID
	}
	return parsed, nil
}

func parseDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if parsed, err := time.Parse(dateLayout, value); err == nil {
		return parsed.UTC(), nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return parsed.UTC(), nil
}
