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
	propertydomain "github.com/arafateouronile-glitch/immokey/internal/property/domain"
	propertyrepo "github.com/arafateouronile-glitch/immokey/internal/property/repository"
	tenancydomain "github.com/arafateouronile-glitch/immokey/internal/tenancy/domain"
	tenancyrepo "github.com/arafateouronile-glitch/immokey/internal/tenancy/repository"
)

type tenancyTestEnv struct {
	db    *gorm.DB
	svc   tenancydomain.Service
	clock *clock.FakeClock
	node  *snowflake.Node
}

func newTenancyTestEnv(t *testing.T) *tenancyTestEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&propertydomain.ManagedProperty{},
		&tenancydomain.Tenant{},
	))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC))

	svc := NewService(Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Clock:        fake,
		Repo:         tenancyrepo.Provide(),
		PropertyRepo: propertyrepo.Provide(),
	})

	return &tenancyTestEnv{db: db, svc: svc, clock: fake, node: node}
}

func (e *tenancyTestEnv) seedProperty(t *testing.T, ownerID snowflake.ID, status propertydomain.PropertyStatus) propertydomain.ManagedProperty {
	t.Helper()

	property := propertydomain.ManagedProperty{
		ID:          e.node.Generate(),
		OwnerID:     ownerID,
		Title:       "Appartement Plateau",
		Slug:        "appartement-plateau",
		MonthlyRent: 150000,
		Charges:     15000,
		Currency:    "XOF",
		Status:      status,
		CreatedAt:   e.clock.Now(),
		UpdatedAt:   e.clock.Now(),
	}
	require.NoError(t, e.db.Create(&property).Error)
	return property
}

func (e *tenancyTestEnv) propertyStatus(t *testing.T, id snowflake.ID) propertydomain.PropertyStatus {
	t.Helper()

	var property propertydomain.ManagedProperty
	require.NoError(t, e.db.Raw(`SELECT * FROM managed_properties WHERE id = ?`, id).Scan(&property).Error)
	return property.Status
}

func TestTenantLifecycle_Occupancy(t *testing.T) {
	env := newTenancyTestEnv(t)
	ownerID := env.node.Generate()
	property := env.seedProperty(t, ownerID, propertydomain.PropertyStatusVacant)
	ctx := actorcontext.WithActorID(context.Background(), int64(ownerID))

	tenant, err := env.svc.Create(ctx, tenancydomain.CreateTenantRequest{
		PropertyID: property.ID.String(),
		FullName:   "Moussa Ndiaye",
		DueDay:     5,
	})
	require.NoError(t, err)
	assert.Equal(t, tenancydomain.TenantStatusActive, tenant.Status)
	// Rent and charges default from the property.
	assert.Equal(t, int64(150000), tenant.MonthlyRent)
	assert.Equal(t, int64(15000), tenant.Charges)
	assert.Equal(t, propertydomain.PropertyStatusOccupied, env.propertyStatus(t, property.ID))

	// One active tenant per property.
	_, err = env.svc.Create(ctx, tenancydomain.CreateTenantRequest{
		PropertyID: property.ID.String(),
		FullName:   "Binta Sow",
		DueDay:     1,
	})
	assert.ErrorIs(t, err, tenancydomain.ErrPropertyOccupied)

	terminated, err := env.svc.Terminate(ctx, tenant.ID.String())
	require.NoError(t, err)
	assert.Equal(t, tenancydomain.TenantStatusTerminated, terminated.Status)
	require.NotNil(t, terminated.TerminatedAt)
	assert.Equal(t, propertydomain.PropertyStatusVacant, env.propertyStatus(t, property.ID))

	_, err = env.svc.Terminate(ctx, tenant.ID.String())
	assert.ErrorIs(t, err, tenancydomain.ErrNotActive)

	// The vacated property can take a new lease, with negotiated amounts.
	rent := int64(120000)
	charges := int64(0)
	replacement, err := env.svc.Create(ctx, tenancydomain.CreateTenantRequest{
		PropertyID:  property.ID.String(),
		FullName:    "Binta Sow",
		MonthlyRent: &rent,
		Charges:     &charges,
		DueDay:      1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(120000), replacement.MonthlyRent)
	assert.Equal(t, int64(0), replacement.Charges)
	assert.Equal(t, propertydomain.PropertyStatusOccupied, env.propertyStatus(t, property.ID))
}

func TestCreateTenant_Guards(t *testing.T) {
	env := newTenancyTestEnv(t)
	ownerID := env.node.Generate()
	ctx := actorcontext.WithActorID(context.Background(), int64(ownerID))

	archived := env.seedProperty(t, ownerID, propertydomain.PropertyStatusArchived)
	_, err := env.svc.Create(ctx, tenancydomain.CreateTenantRequest{
		PropertyID: archived.ID.String(),
		FullName:   "Moussa Ndiaye",
		DueDay:     5,
	})
	assert.ErrorIs(t, err, tenancydomain.ErrPropertyArchived)

	foreign := env.seedProperty(t, env.node.Generate(), propertydomain.PropertyStatusVacant)
	_, err = env.svc.Create(ctx, tenancydomain.CreateTenantRequest{
		PropertyID: foreign.ID.String(),
		FullName:   "Moussa Ndiaye",
		DueDay:     5,
	})
	assert.ErrorIs(t, err, tenancydomain.ErrNotOwner)

	ok := env.seedProperty(t, ownerID, propertydomain.PropertyStatusVacant)
	_, err = env.svc.Create(ctx, tenancydomain.CreateTenantRequest{
		PropertyID: ok.ID.String(),
		FullName:   "Moussa Ndiaye",
		DueDay:     32,
	})
	assert.ErrorIs(t, err, tenancydomain.ErrInvalidDueDay)

	_, err = env.svc.Create(ctx, tenancydomain.CreateTenantRequest{
		PropertyID: ok.ID.String(),
		FullName:   "   ",
		DueDay:     5,
	})
	assert.ErrorIs(t, err, tenancydomain.ErrInvalidName)

	_, err = env.svc.Create(context.Background(), tenancydomain.CreateTenantRequest{
		PropertyID: ok.ID.String(),
		FullName:   "Moussa Ndiaye",
		DueDay:     5,
	})
	assert.ErrorIs(t, err, tenancydomain.ErrInvalidActor)
}
