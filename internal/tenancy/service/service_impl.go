package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/arafateouronile-glitch/immokey/internal/actorcontext"
	"github.com/arafateouronile-glitch/immokey/internal/clock"
	propertydomain "github.com/arafateouronile-glitch/immokey/internal/property/domain"
	tenancydomain "github.com/arafateouronile-glitch/immokey/internal/tenancy/domain"
	"github.com/arafateouronile-glitch/immokey/pkg/db/option"
	"github.com/arafateouronile-glitch/immokey/pkg/repository"
)

// Service owns the tenant lifecycle and keeps property occupancy consistent
// with it: a property is occupied iff at least one active tenant references
// it.
type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID        *snowflake.Node
	clock        clock.Clock
	repo         tenancydomain.Repository
	propertyRepo propertydomain.Repository

	tenantStore repository.Repository[tenancydomain.Tenant]
}

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         tenancydomain.Repository
	PropertyRepo propertydomain.Repository
}

func NewService(p Params) tenancydomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("tenancy.service"),

		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		propertyRepo: p.PropertyRepo,

		tenantStore: repository.ProvideStore[tenancydomain.Tenant](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req tenancydomain.CreateTenantRequest) (tenancydomain.Tenant, error) {
	actorID, ok := actorcontext.ActorIDFromContext(ctx)
	if !ok || actorID == 0 {
		return tenancydomain.Tenant{}, tenancydomain.ErrInvalidActor
	}

	propertyID, err := snowflake.ParseString(strings.TrimSpace(req.PropertyID))
	if err != nil {
		return tenancydomain.Tenant{}, tenancydomain.ErrInvalidPropertyID
	}

	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return tenancydomain.Tenant{}, tenancydomain.ErrInvalidName
	}
	if req.DueDay < 1 || req.DueDay > 31 {
		return tenancydomain.Tenant{}, tenancydomain.ErrInvalidDueDay
	}
	if req.MonthlyRent != nil && *req.MonthlyRent <= 0 {
		return tenancydomain.Tenant{}, tenancydomain.ErrInvalidRent
	}
	if req.Charges != nil && *req.Charges < 0 {
		return tenancydomain.Tenant{}, tenancydomain.ErrInvalidCharges
	}

	var tenant tenancydomain.Tenant
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		property, err := s.propertyRepo.FindByIDForUpdate(ctx, tx, propertyID)
		if err != nil {
			return err
		}
		if property == nil {
			return propertydomain.ErrNotFound
		}
		if property.OwnerID != actorID {
			return tenancydomain.ErrNotOwner
		}
		if property.Status == propertydomain.PropertyStatusArchived {
			return tenancydomain.ErrPropertyArchived
		}

		active, err := s.repo.CountActiveByProperty(ctx, tx, propertyID)
		if err != nil {
			return err
		}
		if active > 0 {
			return tenancydomain.ErrPropertyOccupied
		}

		// Rent and charges are copied from the property unless the lease
		// agreed different amounts; due dates snapshot these again later.
		rent := property.MonthlyRent
		if req.MonthlyRent != nil {
			rent = *req.MonthlyRent
		}
		charges := property.Charges
		if req.Charges != nil {
			charges = *req.Charges
		}

		now := s.clock.Now()
		tenant = tenancydomain.Tenant{
			ID:          s.genID.Generate(),
			PropertyID:  propertyID,
			OwnerID:     property.OwnerID,
			FullName:    fullName,
			Email:       strings.TrimSpace(req.Email),
			Phone:       strings.TrimSpace(req.Phone),
			MonthlyRent: rent,
			Charges:     charges,
			DueDay:      req.DueDay,
			Status:      tenancydomain.TenantStatusActive,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.repo.Insert(ctx, tx, &tenant); err != nil {
			return err
		}

		return s.propertyRepo.UpdateStatus(ctx, tx, propertyID, propertydomain.PropertyStatusOccupied)
	})
	if err != nil {
		return tenancydomain.Tenant{}, err
	}

	s.log.Info("tenant created",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("property_id", propertyID.String()),
	)
	return tenant, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (tenancydomain.Tenant, error) {
	tenantID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return tenancydomain.Tenant{}, tenancydomain.ErrInvalidID
	}

	tenant, err := s.repo.FindByID(ctx, s.db, tenantID)
	if err != nil {
		return tenancydomain.Tenant{}, err
	}
	if tenant == nil {
		return tenancydomain.Tenant{}, tenancydomain.ErrNotFound
	}
	return *tenant, nil
}

func (s *Service) List(ctx context.Context, req tenancydomain.ListTenantsRequest) (tenancydomain.ListTenantsResponse, error) {
	actorID, ok := actorcontext.ActorIDFromContext(ctx)
	if !ok || actorID == 0 {
		return tenancydomain.ListTenantsResponse{}, tenancydomain.ErrInvalidActor
	}

	filter := &tenancydomain.Tenant{OwnerID: actorID}

	if propertyID := strings.TrimSpace(req.PropertyID); propertyID != "" {
		parsed, err := snowflake.ParseString(propertyID)
		if err != nil {
			return tenancydomain.ListTenantsResponse{}, tenancydomain.ErrInvalidPropertyID
		}
		filter.PropertyID = parsed
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		filter.Status = tenancydomain.TenantStatus(status)
	}

	items, err := s.tenantStore.Find(ctx, filter,
		option.WithSortBy(option.WithQuerySortBy("created_at", "desc", map[string]bool{"created_at": true})),
	)
	if err != nil {
		return tenancydomain.ListTenantsResponse{}, err
	}

	tenants := make([]tenancydomain.Tenant, 0, len(items))
	for _, item := range items {
		tenants = append(tenants, *item)
	}
	return tenancydomain.ListTenantsResponse{Tenants: tenants}, nil
}

func (s *Service) Terminate(ctx context.Context, id string) (tenancydomain.Tenant, error) {
	actorID, ok := actorcontext.ActorIDFromContext(ctx)
	if !ok || actorID == 0 {
		return tenancydomain.Tenant{}, tenancydomain.ErrInvalidActor
	}

	tenantID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return tenancydomain.Tenant{}, tenancydomain.ErrInvalidID
	}

	var tenant tenancydomain.Tenant
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := s.repo.FindByID(ctx, tx, tenantID)
		if err != nil {
			return err
		}
		if found == nil {
			return tenancydomain.ErrNotFound
		}
		if found.OwnerID != actorID {
			return tenancydomain.ErrNotOwner
		}
		if found.Status != tenancydomain.TenantStatusActive {
			return tenancydomain.ErrNotActive
		}

		// Lock the property row so concurrent terminations on the same
		// property serialize their occupancy recomputation.
		if _, err := s.propertyRepo.FindByIDForUpdate(ctx, tx, found.PropertyID); err != nil {
			return err
		}

		now := s.clock.Now()
		if err := s.repo.Terminate(ctx, tx, tenantID, now); err != nil {
			return err
		}

		// The count runs after the termination write so the departing tenant
		// is never counted.
		active, err := s.repo.CountActiveByProperty(ctx, tx, found.PropertyID)
		if err != nil {
			return err
		}
		if active == 0 {
			if err := s.propertyRepo.UpdateStatus(ctx, tx, found.PropertyID, propertydomain.PropertyStatusVacant); err != nil {
				return err
			}
		}

		tenant = *found
		tenant.Status = tenancydomain.TenantStatusTerminated
		tenant.TerminatedAt = &now
		tenant.UpdatedAt = now
		return nil
	})
	if err != nil {
		return tenancydomain.Tenant{}, err
	}

	s.log.Info("tenant terminated",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("property_id", tenant.PropertyID.String()),
	)
	return tenant, nil
}
