package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	bookingdomain "github.com/arafateouronile-glitch/immokey/internal/booking/domain"
	bookingrepo "github.com/arafateouronile-glitch/immokey/internal/booking/repository"
	"github.com/arafateouronile-glitch/immokey/internal/clock"
	"github.com/arafateouronile-glitch/immokey/internal/config"
)

type bookingTestEnv struct {
	db    *gorm.DB
	svc   bookingdomain.Service
	clock *clock.FakeClock
	node  *snowflake.Node
}

func newBookingTestEnv(t *testing.T, now time.Time) *bookingTestEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&bookingdomain.Booking{}))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)
	fake := clock.NewFakeClock(now)

	svc := NewService(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       fake,
		Repo:        bookingrepo.Provide(),
		Marketplace: config.NewStaticMarketplaceConfigHolder(config.DefaultMarketplaceConfig()),
	})

	return &bookingTestEnv{db: db, svc: svc, clock: fake, node: node}
}

func (e *bookingTestEnv) createBooking(t *testing.T, establishmentID, roomID snowflake.ID, checkIn, checkOut string) bookingdomain.Booking {
	t.Helper()

	booking, err := e.svc.Create(context.Background(), bookingdomain.CreateBookingRequest{
		EstablishmentID: establishmentID.String(),
		RoomID:          roomID.String(),
		GuestName:       "Fatou Sarr",
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		PricePerNight:   10000,
	})
	require.NoError(t, err)
	return booking
}

func TestCreateBooking_Pricing(t *testing.T) {
	env := newBookingTestEnv(t, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	booking, err := env.svc.Create(ctx, bookingdomain.CreateBookingRequest{
		EstablishmentID: env.node.Generate().String(),
		RoomID:          env.node.Generate().String(),
		GuestName:       "Fatou Sarr",
		CheckIn:         "2025-03-10",
		CheckOut:        "2025-03-14",
		PricePerNight:   10000,
		Taxes:           3000,
		Fees:            2000,
		Discount:        1000,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, booking.Nights)
	assert.Equal(t, int64(40000), booking.Subtotal)
	assert.Equal(t, int64(44000), booking.TotalAmount)
	assert.Equal(t, "XOF", booking.Currency)
	assert.Equal(t, bookingdomain.BookingStatusPending, booking.Status)
	assert.Equal(t, bookingdomain.PaymentStatusPending, booking.PaymentStatus)
	assert.True(t, strings.HasPrefix(booking.Reference, "BK-2025-"), booking.Reference)

	// A stay shorter than a full day still bills one night.
	short, err := env.svc.Create(ctx, bookingdomain.CreateBookingRequest{
		EstablishmentID: env.node.Generate().String(),
		RoomID:          env.node.Generate().String(),
		GuestName:       "Fatou Sarr",
		CheckIn:         "2025-03-10T14:00:00Z",
		CheckOut:        "2025-03-10T20:00:00Z",
		PricePerNight:   10000,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, short.Nights)
	assert.Equal(t, int64(10000), short.TotalAmount)

	_, err = env.svc.Create(ctx, bookingdomain.CreateBookingRequest{
		EstablishmentID: env.node.Generate().String(),
		RoomID:          env.node.Generate().String(),
		GuestName:       "Fatou Sarr",
		CheckIn:         "2025-03-14",
		CheckOut:        "2025-03-10",
		PricePerNight:   10000,
	})
	assert.ErrorIs(t, err, bookingdomain.ErrInvalidDateRange)

	_, err = env.svc.Create(ctx, bookingdomain.CreateBookingRequest{
		EstablishmentID: env.node.Generate().String(),
		RoomID:          env.node.Generate().String(),
		GuestName:       "Fatou Sarr",
		CheckIn:         "2025-03-10",
		CheckOut:        "2025-03-14",
		PricePerNight:   0,
	})
	assert.ErrorIs(t, err, bookingdomain.ErrInvalidPrice)

	_, err = env.svc.Create(ctx, bookingdomain.CreateBookingRequest{
		EstablishmentID: env.node.Generate().String(),
		RoomID:          env.node.Generate().String(),
		GuestName:       "Fatou Sarr",
		CheckIn:         "2025-03-10",
		CheckOut:        "2025-03-14",
		PricePerNight:   10000,
		Discount:        -5,
	})
	assert.ErrorIs(t, err, bookingdomain.ErrInvalidCharge)
}

func TestUpdateBooking_Repricing(t *testing.T) {
	env := newBookingTestEnv(t, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	booking := env.createBooking(t, env.node.Generate(), env.node.Generate(), "2025-03-10", "2025-03-14")
	ctx := context.Background()

	// Non-pricing edits leave derived amounts untouched.
	email := "fatou@example.com"
	updated, err := env.svc.Update(ctx, booking.ID.String(), bookingdomain.UpdateBookingRequest{
		GuestEmail: &email,
	})
	require.NoError(t, err)
	assert.Equal(t, booking.Nights, updated.Nights)
	assert.Equal(t, booking.TotalAmount, updated.TotalAmount)

	// Touching any pricing field recomputes from the merged record.
	price := int64(15000)
	checkOut := "2025-03-12"
	updated, err = env.svc.Update(ctx, booking.ID.String(), bookingdomain.UpdateBookingRequest{
		PricePerNight: &price,
		CheckOut:      &checkOut,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Nights)
	assert.Equal(t, int64(30000), updated.Subtotal)
	assert.Equal(t, int64(30000), updated.TotalAmount)

	badCheckOut := "2025-03-01"
	_, err = env.svc.Update(ctx, booking.ID.String(), bookingdomain.UpdateBookingRequest{
		CheckOut: &badCheckOut,
	})
	assert.ErrorIs(t, err, bookingdomain.ErrInvalidDateRange)
}

func TestBookingTransitions(t *testing.T) {
	env := newBookingTestEnv(t, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	establishmentID := env.node.Generate()
	roomID := env.node.Generate()
	ctx := context.Background()

	booking := env.createBooking(t, establishmentID, roomID, "2025-03-10", "2025-03-14")

	// Check-out requires a checked-in guest.
	_, err := env.svc.CheckOut(ctx, booking.ID.String())
	assert.ErrorIs(t, err, bookingdomain.ErrInvalidTransition)

	confirmed, err := env.svc.Confirm(ctx, booking.ID.String())
	require.NoError(t, err)
	assert.Equal(t, bookingdomain.BookingStatusConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.ConfirmedAt)

	_, err = env.svc.Confirm(ctx, booking.ID.String())
	assert.ErrorIs(t, err, bookingdomain.ErrInvalidTransition)

	checkedIn, err := env.svc.CheckIn(ctx, booking.ID.String())
	require.NoError(t, err)
	require.NotNil(t, checkedIn.CheckedInAt)

	// No-show only applies to confirmed bookings.
	_, err = env.svc.MarkNoShow(ctx, booking.ID.String())
	assert.ErrorIs(t, err, bookingdomain.ErrInvalidTransition)

	checkedOut, err := env.svc.CheckOut(ctx, booking.ID.String())
	require.NoError(t, err)
	require.NotNil(t, checkedOut.CheckedOutAt)

	// A completed stay can no longer be cancelled.
	_, err = env.svc.Cancel(ctx, booking.ID.String())
	assert.ErrorIs(t, err, bookingdomain.ErrInvalidTransition)

	// Walk-ins check in straight from pending.
	walkIn := env.createBooking(t, establishmentID, roomID, "2025-03-20", "2025-03-22")
	checkedIn, err = env.svc.CheckIn(ctx, walkIn.ID.String())
	require.NoError(t, err)
	assert.Equal(t, bookingdomain.BookingStatusCheckedIn, checkedIn.Status)

	noShow := env.createBooking(t, establishmentID, roomID, "2025-03-25", "2025-03-27")
	_, err = env.svc.Confirm(ctx, noShow.ID.String())
	require.NoError(t, err)
	marked, err := env.svc.MarkNoShow(ctx, noShow.ID.String())
	require.NoError(t, err)
	assert.Equal(t, bookingdomain.BookingStatusNoShow, marked.Status)
}

func TestSetPaymentStatus_StampsBalancePaidOnce(t *testing.T) {
	env := newBookingTestEnv(t, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	booking := env.createBooking(t, env.node.Generate(), env.node.Generate(), "2025-03-10", "2025-03-14")
	ctx := context.Background()

	paid, err := env.svc.SetPaymentStatus(ctx, booking.ID.String(), bookingdomain.PaymentStatusPaid)
	require.NoError(t, err)
	require.NotNil(t, paid.BalancePaidAt)
	firstStamp := *paid.BalancePaidAt

	env.clock.Advance(48 * time.Hour)
	refunded, err := env.svc.SetPaymentStatus(ctx, booking.ID.String(), bookingdomain.PaymentStatusRefunded)
	require.NoError(t, err)
	assert.Equal(t, bookingdomain.PaymentStatusRefunded, refunded.PaymentStatus)

	paidAgain, err := env.svc.SetPaymentStatus(ctx, booking.ID.String(), bookingdomain.PaymentStatusPaid)
	require.NoError(t, err)
	require.NotNil(t, paidAgain.BalancePaidAt)
	assert.Equal(t, firstStamp, *paidAgain.BalancePaidAt)

	_, err = env.svc.SetPaymentStatus(ctx, booking.ID.String(), "settled")
	assert.ErrorIs(t, err, bookingdomain.ErrInvalidPaymentStatus)
}

func TestOverview(t *testing.T) {
	env := newBookingTestEnv(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	establishmentID := env.node.Generate()
	roomID := env.node.Generate()
	ctx := context.Background()

	// Arriving today, confirmed.
	arriving := env.createBooking(t, establishmentID, roomID, "2025-03-10", "2025-03-14")
	_, err := env.svc.Confirm(ctx, arriving.ID.String())
	require.NoError(t, err)
	_, err = env.svc.SetPaymentStatus(ctx, arriving.ID.String(), bookingdomain.PaymentStatusPartial)
	require.NoError(t, err)

	// Departing today, checked in.
	departing := env.createBooking(t, establishmentID, roomID, "2025-03-05", "2025-03-10")
	_, err = env.svc.Confirm(ctx, departing.ID.String())
	require.NoError(t, err)
	_, err = env.svc.CheckIn(ctx, departing.ID.String())
	require.NoError(t, err)
	_, err = env.svc.SetPaymentStatus(ctx, departing.ID.String(), bookingdomain.PaymentStatusPaid)
	require.NoError(t, err)

	// Pending with no payment, excluded from revenue.
	env.createBooking(t, establishmentID, roomID, "2025-03-20", "2025-03-22")

	// Another establishment's booking never leaks into the scope.
	env.createBooking(t, env.node.Generate(), env.node.Generate(), "2025-03-10", "2025-03-12")

	overview, err := env.svc.Overview(ctx, establishmentID.String(), env.clock.Now())
	require.NoError(t, err)

	assert.Equal(t, int64(1), overview.StatusCounts[bookingdomain.BookingStatusPending])
	assert.Equal(t, int64(1), overview.StatusCounts[bookingdomain.BookingStatusConfirmed])
	assert.Equal(t, int64(1), overview.StatusCounts[bookingdomain.BookingStatusCheckedIn])
	assert.Equal(t, int64(1), overview.ArrivingToday)
	assert.Equal(t, int64(1), overview.DepartingToday)
	// Paid and partial bookings both count toward revenue: 4 and 5 nights
	// at 10000.
	assert.Equal(t, int64(90000), overview.Revenue)
}
