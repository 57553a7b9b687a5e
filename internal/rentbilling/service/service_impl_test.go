package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/arafateouronile-glitch/immokey/internal/actorcontext"
	"github.com/arafateouronile-glitch/immokey/internal/clock"
	"github.com/arafateouronile-glitch/immokey/internal/config"
	"github.com/arafateouronile-glitch/immokey/internal/period"
	rentbillingdomain "github.com/arafateouronile-glitch/immokey/internal/rentbilling/domain"
	rentbillingrepo "github.com/arafateouronile-glitch/immokey/internal/rentbilling/repository"
	tenancydomain "github.com/arafateouronile-glitch/immokey/internal/tenancy/domain"
	tenancyrepo "github.com/arafateouronile-glitch/immokey/internal/tenancy/repository"
)

type billingTestEnv struct {
	db    *gorm.DB
	svc   rentbillingdomain.Service
	clock *clock.FakeClock
	node  *snowflake.Node
}

func newBillingTestEnv(t *testing.T, now time.Time) *billingTestEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&tenancydomain.Tenant{},
		&rentbillingdomain.DueDate{},
		&rentbillingdomain.Payment{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(now)

	svc := NewService(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       fake,
		Repo:        rentbillingrepo.Provide(),
		TenantRepo:  tenancyrepo.Provide(),
		Marketplace: config.NewStaticMarketplaceConfigHolder(config.DefaultMarketplaceConfig()),
	})

	return &billingTestEnv{db: db, svc: svc, clock: fake, node: node}
}

func (e *billingTestEnv) seedTenant(t *testing.T, ownerID snowflake.ID, rent, charges int64, dueDay int) tenancydomain.Tenant {
	t.Helper()

	tenant := tenancydomain.Tenant{
		ID:          e.node.Generate(),
		PropertyID:  e.node.Generate(),
		OwnerID:     ownerID,
		FullName:    "Awa Diop",
		MonthlyRent: rent,
		Charges:     charges,
		DueDay:      dueDay,
		Status:      tenancydomain.TenantStatusActive,
		CreatedAt:   e.clock.Now(),
		UpdatedAt:   e.clock.Now(),
	}
	require.NoError(t, e.db.Create(&tenant).Error)
	return tenant
}

func actorCtx(ownerID snowflake.ID) context.Context {
	return actorcontext.WithActorID(context.Background(), int64(ownerID))
}

func TestGenerateDueDates_ClampAndIdempotence(t *testing.T) {
	env := newBillingTestEnv(t, time.Date(2024, 12, 1, 9, 0, 0, 0, time.UTC))
	ownerID := env.node.Generate()
	tenant := env.seedTenant(t, ownerID, 100000, 10000, 31)
	ctx := actorCtx(ownerID)

	resp, err := env.svc.GenerateDueDates(ctx, rentbillingdomain.GenerateDueDatesRequest{
		TenantID: tenant.ID.String(),
		From:     period.Period{Year: 2024, Month: 12},
		To:       period.Period{Year: 2025, Month: 2},
	})
	require.NoError(t, err)
	require.Len(t, resp.DueDates, 3)
	assert.Equal(t, 0, resp.Skipped)

	// Due day 31 clamps to the shorter months.
	assert.Equal(t, 31, resp.DueDates[0].DueOn.Day())
	assert.Equal(t, 31, resp.DueDates[1].DueOn.Day())
	assert.Equal(t, 28, resp.DueDates[2].DueOn.Day())
	assert.Equal(t, time.February, resp.DueDates[2].DueOn.Month())

	for _, dd := range resp.DueDates {
		assert.Equal(t, int64(100000), dd.RentAmount)
		assert.Equal(t, int64(10000), dd.ChargesAmount)
		assert.Equal(t, int64(110000), dd.TotalAmount)
		assert.Equal(t, rentbillingdomain.DueDateStatusPending, dd.Status)
	}

	// Re-running the same range creates nothing new.
	again, err := env.svc.GenerateDueDates(ctx, rentbillingdomain.GenerateDueDatesRequest{
		TenantID: tenant.ID.String(),
		From:     period.Period{Year: 2024, Month: 12},
		To:       period.Period{Year: 2025, Month: 2},
	})
	require.NoError(t, err)
	assert.Empty(t, again.DueDates)
	assert.Equal(t, 3, again.Skipped)

	_, err = env.svc.GenerateDueDates(ctx, rentbillingdomain.GenerateDueDatesRequest{
		TenantID: tenant.ID.String(),
		From:     period.Period{Year: 2025, Month: 3},
		To:       period.Period{Year: 2025, Month: 1},
	})
	assert.ErrorIs(t, err, period.ErrReversedRange)
}

func TestCreatePayment_Reconciliation(t *testing.T) {
	env := newBillingTestEnv(t, time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC))
	ownerID := env.node.Generate()
	tenant := env.seedTenant(t, ownerID, 100000, 10000, 31)
	ctx := actorCtx(ownerID)

	gen, err := env.svc.GenerateDueDates(ctx, rentbillingdomain.GenerateDueDatesRequest{
		TenantID: tenant.ID.String(),
		From:     period.Period{Year: 2025, Month: 1},
		To:       period.Period{Year: 2025, Month: 1},
	})
	require.NoError(t, err)
	dueDateID := gen.DueDates[0].ID.String()

	// Partial payment before the due date keeps the obligation pending.
	_, err = env.svc.CreatePayment(ctx, rentbillingdomain.CreatePaymentRequest{
		TenantID:  tenant.ID.String(),
		DueDateID: &dueDateID,
		Amount:    50000,
		Method:    "cash",
	})
	require.NoError(t, err)
	assert.Equal(t, rentbillingdomain.DueDateStatusPending, env.dueDateStatus(t, dueDateID))

	// The remainder settles it.
	payment, err := env.svc.CreatePayment(ctx, rentbillingdomain.CreatePaymentRequest{
		TenantID:  tenant.ID.String(),
		DueDateID: &dueDateID,
		Amount:    60000,
		Method:    "transfer",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, payment.ReceiptNo)
	assert.Equal(t, rentbillingdomain.DueDateStatusPaid, env.dueDateStatus(t, dueDateID))

	// Extra payments never downgrade a paid obligation.
	env.clock.Advance(60 * 24 * time.Hour)
	_, err = env.svc.CreatePayment(ctx, rentbillingdomain.CreatePaymentRequest{
		TenantID:  tenant.ID.String(),
		DueDateID: &dueDateID,
		Amount:    1,
		Method:    "cash",
	})
	require.NoError(t, err)
	assert.Equal(t, rentbillingdomain.DueDateStatusPaid, env.dueDateStatus(t, dueDateID))

	// A payment referencing another tenant's obligation is rejected.
	other := env.seedTenant(t, ownerID, 80000, 0, 5)
	_, err = env.svc.CreatePayment(ctx, rentbillingdomain.CreatePaymentRequest{
		TenantID:  other.ID.String(),
		DueDateID: &dueDateID,
		Amount:    1000,
		Method:    "cash",
	})
	assert.ErrorIs(t, err, rentbillingdomain.ErrDueDateMismatch)
}

func TestCreatePayment_OverdueWhenPastDue(t *testing.T) {
	env := newBillingTestEnv(t, time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC))
	ownerID := env.node.Generate()
	tenant := env.seedTenant(t, ownerID, 100000, 0, 15)
	ctx := actorCtx(ownerID)

	gen, err := env.svc.GenerateDueDates(ctx, rentbillingdomain.GenerateDueDatesRequest{
		TenantID: tenant.ID.String(),
		From:     period.Period{Year: 2025, Month: 1},
		To:       period.Period{Year: 2025, Month: 1},
	})
	require.NoError(t, err)
	dueDateID := gen.DueDates[0].ID.String()

	// A partial payment after the due date flips the obligation to overdue.
	env.clock.Advance(34 * 24 * time.Hour) // 2025-02-05
	_, err = env.svc.CreatePayment(ctx, rentbillingdomain.CreatePaymentRequest{
		TenantID:  tenant.ID.String(),
		DueDateID: &dueDateID,
		Amount:    1000,
		Method:    "cash",
	})
	require.NoError(t, err)
	assert.Equal(t, rentbillingdomain.DueDateStatusOverdue, env.dueDateStatus(t, dueDateID))
}

func TestCreatePayment_OverdueRespectsGraceDays(t *testing.T) {
	env := newBillingTestEnv(t, time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC))
	ownerID := env.node.Generate()
	tenant := env.seedTenant(t, ownerID, 100000, 0, 15)
	ctx := actorCtx(ownerID)

	rules := config.DefaultMarketplaceConfig()
	rules.OverdueGraceDays = 5
	svc := NewService(Params{
		DB:          env.db,
		Log:         zap.NewNop(),
		GenID:       env.node,
		Clock:       env.clock,
		Repo:        rentbillingrepo.Provide(),
		TenantRepo:  tenancyrepo.Provide(),
		Marketplace: config.NewStaticMarketplaceConfigHolder(rules),
	})

	gen, err := svc.GenerateDueDates(ctx, rentbillingdomain.GenerateDueDatesRequest{
		TenantID: tenant.ID.String(),
		From:     period.Period{Year: 2025, Month: 1},
		To:       period.Period{Year: 2025, Month: 1},
	})
	require.NoError(t, err)
	dueDateID := gen.DueDates[0].ID.String()

	// Three days past due is still inside the 5-day grace window.
	env.clock.Advance(16 * 24 * time.Hour) // 2025-01-18
	_, err = svc.CreatePayment(ctx, rentbillingdomain.CreatePaymentRequest{
		TenantID:  tenant.ID.String(),
		DueDateID: &dueDateID,
		Amount:    1000,
		Method:    "cash",
	})
	require.NoError(t, err)
	assert.Equal(t, rentbillingdomain.DueDateStatusPending, env.dueDateStatus(t, dueDateID))

	// Past the grace window the next payment event flips it.
	env.clock.Advance(4 * 24 * time.Hour) // 2025-01-22
	_, err = svc.CreatePayment(ctx, rentbillingdomain.CreatePaymentRequest{
		TenantID:  tenant.ID.String(),
		DueDateID: &dueDateID,
		Amount:    1000,
		Method:    "cash",
	})
	require.NoError(t, err)
	assert.Equal(t, rentbillingdomain.DueDateStatusOverdue, env.dueDateStatus(t, dueDateID))
}

func TestCancelDueDate(t *testing.T) {
	env := newBillingTestEnv(t, time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))
	ownerID := env.node.Generate()
	tenant := env.seedTenant(t, ownerID, 90000, 0, 10)
	ctx := actorCtx(ownerID)

	gen, err := env.svc.GenerateDueDates(ctx, rentbillingdomain.GenerateDueDatesRequest{
		TenantID: tenant.ID.String(),
		From:     period.Period{Year: 2025, Month: 3},
		To:       period.Period{Year: 2025, Month: 4},
	})
	require.NoError(t, err)

	first := gen.DueDates[0].ID.String()
	second := gen.DueDates[1].ID.String()

	cancelled, err := env.svc.CancelDueDate(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, rentbillingdomain.DueDateStatusCancelled, cancelled.Status)

	// Cancelling twice is a no-op, not an error.
	cancelled, err = env.svc.CancelDueDate(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, rentbillingdomain.DueDateStatusCancelled, cancelled.Status)

	// Payments against a cancelled obligation never resurrect it.
	_, err = env.svc.CreatePayment(ctx, rentbillingdomain.CreatePaymentRequest{
		TenantID:  tenant.ID.String(),
		DueDateID: &first,
		Amount:    90000,
		Method:    "cash",
	})
	require.NoError(t, err)
	assert.Equal(t, rentbillingdomain.DueDateStatusCancelled, env.dueDateStatus(t, first))

	// A settled obligation cannot be cancelled.
	_, err = env.svc.CreatePayment(ctx, rentbillingdomain.CreatePaymentRequest{
		TenantID:  tenant.ID.String(),
		DueDateID: &second,
		Amount:    90000,
		Method:    "transfer",
	})
	require.NoError(t, err)
	_, err = env.svc.CancelDueDate(ctx, second)
	assert.ErrorIs(t, err, rentbillingdomain.ErrDueDateSettled)
}

func TestMarkOverdueSweep(t *testing.T) {
	env := newBillingTestEnv(t, time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC))
	ownerID := env.node.Generate()
	tenant := env.seedTenant(t, ownerID, 50000, 0, 10)
	ctx := actorCtx(ownerID)

	gen, err := env.svc.GenerateDueDates(ctx, rentbillingdomain.GenerateDueDatesRequest{
		TenantID: tenant.ID.String(),
		From:     period.Period{Year: 2025, Month: 1},
		To:       period.Period{Year: 2025, Month: 2},
	})
	require.NoError(t, err)

	// Only the January obligation is past due on Jan 20.
	flipped, err := env.svc.MarkOverdue(ctx, time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1), flipped)
	assert.Equal(t, rentbillingdomain.DueDateStatusOverdue, env.dueDateStatus(t, gen.DueDates[0].ID.String()))
	assert.Equal(t, rentbillingdomain.DueDateStatusPending, env.dueDateStatus(t, gen.DueDates[1].ID.String()))

	// Re-running finds nothing left to flip.
	flipped, err = env.svc.MarkOverdue(ctx, time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(0), flipped)
}

func TestStats(t *testing.T) {
	env := newBillingTestEnv(t, time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC))
	ownerID := env.node.Generate()
	tenant := env.seedTenant(t, ownerID, 100000, 10000, 5)
	ctx := actorCtx(ownerID)

	gen, err := env.svc.GenerateDueDates(ctx, rentbillingdomain.GenerateDueDatesRequest{
		TenantID: tenant.ID.String(),
		From:     period.Period{Year: 2025, Month: 5},
		To:       period.Period{Year: 2025, Month: 6},
	})
	require.NoError(t, err)

	dueDateID := gen.DueDates[0].ID.String()
	_, err = env.svc.CreatePayment(ctx, rentbillingdomain.CreatePaymentRequest{
		TenantID:  tenant.ID.String(),
		DueDateID: &dueDateID,
		Amount:    110000,
		Method:    "transfer",
	})
	require.NoError(t, err)

	stats, err := env.svc.Stats(ctx, rentbillingdomain.StatsRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(220000), stats.TotalDue)
	assert.Equal(t, int64(110000), stats.TotalPaid)
	assert.Equal(t, int64(1), stats.PaidCount)
	assert.Equal(t, int64(1), stats.PendingCount)

	// Scoped to the tenant the numbers stay identical here, but another
	// actor sees nothing.
	otherCtx := actorCtx(env.node.Generate())
	otherStats, err := env.svc.Stats(otherCtx, rentbillingdomain.StatsRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), otherStats.TotalDue)
	assert.Equal(t, int64(0), otherStats.TotalPaid)
}

func (e *billingTestEnv) dueDateStatus(t *testing.T, id string) rentbillingdomain.DueDateStatus {
	t.Helper()

	parsed, err := snowflake.ParseString(id)
	require.NoError(t, err)

	var dueDate rentbillingdomain.DueDate
	require.NoError(t, e.db.Raw(`SELECT * FROM due_dates WHERE id = ?`, parsed).Scan(&dueDate).Error)
	return dueDate.Status
}
