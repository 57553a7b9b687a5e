package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/arafateouronile-glitch/immokey/internal/actorcontext"
	"github.com/arafateouronile-glitch/immokey/internal/clock"
	propertydomain "github.com/arafateouronile-glitch/immokey/internal/property/domain"
	"github.com/arafateouronile-glitch/immokey/pkg/db/option"
	"github.com/arafateouronile-glitch/immokey/pkg/db/pagination"
	"github.com/arafateouronile-glitch/immokey/pkg/repository"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID *snowflake.Node
	clock clock.Clock
	repo  propertydomain.Repository

	propertyStore repository.Repository[propertydomain.ManagedProperty]
}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  propertydomain.Repository
}

func NewService(p Params) propertydomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("property.service"),

		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,

		propertyStore: repository.ProvideStore[propertydomain.ManagedProperty](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req propertydomain.CreatePropertyRequest) (propertydomain.ManagedProperty, error) {
	ownerID, ok := actorcontext.ActorIDFromContext(ctx)
	if !ok || ownerID == 0 {
		return propertydomain.ManagedProperty{}, propertydomain.ErrInvalidActor
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return propertydomain.ManagedProperty{}, propertydomain.ErrInvalidTitle
	}
	if req.MonthlyRent <= 0 {
		return propertydomain.ManagedProperty{}, propertydomain.ErrInvalidRent
	}
	if req.Charges < 0 {
		return propertydomain.ManagedProperty{}, propertydomain.ErrInvalidCharges
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "XOF"
	}
	if len(currency) != 3 {
		return propertydomain.ManagedProperty{}, propertydomain.ErrInvalidCurrency
	}

	now := s.clock.Now()
	id := s.genID.Generate()
	property := propertydomain.ManagedProperty{
		ID:          id,
		OwnerID:     ownerID,
		Title:       title,
		Slug:        slug.Make(title) + "-" + strings.ToLower(id.Base36()),
		Address:     strings.TrimSpace(req.Address),
		MonthlyRent: req.MonthlyRent,
		Charges:     req.Charges,
		Currency:    currency,
		Status:      propertydomain.PropertyStatusVacant,
		Metadata:    datatypes.JSONMap(req.Metadata),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &property); err != nil {
		return propertydomain.ManagedProperty{}, err
	}

	s.log.Info("property created",
		zap.String("property_id", property.ID.String()),
		zap.String("owner_id", ownerID.String()),
	)
	return property, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (propertydomain.ManagedProperty, error) {
	propertyID, err := s.parseID(id)
	if err != nil {
		return propertydomain.ManagedProperty{}, err
	}

	property, err := s.repo.FindByID(ctx, s.db, propertyID)
	if err != nil {
		return propertydomain.ManagedProperty{}, err
	}
	if property == nil {
		return propertydomain.ManagedProperty{}, propertydomain.ErrNotFound
	}
	return *property, nil
}

func (s *Service) List(ctx context.Context, req propertydomain.ListPropertiesRequest) (propertydomain.ListPropertiesResponse, error) {
	ownerID, ok := actorcontext.ActorIDFromContext(ctx)
	if !ok || ownerID == 0 {
		return propertydomain.ListPropertiesResponse{}, propertydomain.ErrInvalidActor
	}

	filter := &propertydomain.ManagedProperty{OwnerID: ownerID}

	opts := []option.QueryOption{
		option.WithSortBy(option.WithQuerySortBy("created_at", "desc", map[string]bool{"created_at": true})),
	}

	status := strings.TrimSpace(req.Status)
	if status != "" {
		filter.Status = propertydomain.PropertyStatus(status)
	} else if !req.IncludeArchived {
		// Active listings never include archived units.
		opts = append(opts, option.ApplyOperator(option.Condition{
			Field:    "status",
			Operator: option.NEQ,
			Value:    propertydomain.PropertyStatusArchived,
		}))
	}

	size := int(req.PageSize)
	if size <= 0 {
		size = 10
	}
	opts = append(opts, option.ApplyPagination(pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  size,
	}))

	items, err := s.propertyStore.Find(ctx, filter, opts...)
	if err != nil {
		return propertydomain.ListPropertiesResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int32(size), func(p *propertydomain.ManagedProperty) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID: p.ID.String(),
			// Plain datetime text compares correctly against the stored
			// created_at on every supported dialect.
			CreatedAt: p.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if len(items) > size {
		items = items[:size]
	}

	properties := make([]propertydomain.ManagedProperty, 0, len(items))
	for _, item := range items {
		properties = append(properties, *item)
	}
	return propertydomain.ListPropertiesResponse{Properties: properties, PageInfo: pageInfo}, nil
}

func (s *Service) Update(ctx context.Context, id string, req propertydomain.UpdatePropertyRequest) (propertydomain.ManagedProperty, error) {
	property, err := s.ownedProperty(ctx, id)
	if err != nil {
		return propertydomain.ManagedProperty{}, err
	}
	if property.Status == propertydomain.PropertyStatusArchived {
		return propertydomain.ManagedProperty{}, propertydomain.ErrArchived
	}

	// Merge the patch, then validate the merged record before any write.
	if req.Title != nil {
		property.Title = strings.TrimSpace(*req.Title)
	}
	if req.Address != nil {
		property.Address = strings.TrimSpace(*req.Address)
	}
	if req.MonthlyRent != nil {
		property.MonthlyRent = *req.MonthlyRent
	}
	if req.Charges != nil {
		property.Charges = *req.Charges
	}
	if req.Currency != nil {
		property.Currency = strings.ToUpper(strings.TrimSpace(*req.Currency))
	}
	if req.Metadata != nil {
		property.Metadata = datatypes.JSONMap(req.Metadata)
	}

	if property.Title == "" {
		return propertydomain.ManagedProperty{}, propertydomain.ErrInvalidTitle
	}
	if property.MonthlyRent <= 0 {
		return propertydomain.ManagedProperty{}, propertydomain.ErrInvalidRent
	}
	if property.Charges < 0 {
		return propertydomain.ManagedProperty{}, propertydomain.ErrInvalidCharges
	}
	if len(property.Currency) != 3 {
		return propertydomain.ManagedProperty{}, propertydomain.ErrInvalidCurrency
	}

	property.UpdatedAt = s.clock.Now()
	if err := s.propertyStore.BatchUpdate(ctx, []*propertydomain.ManagedProperty{&property}); err != nil {
		return propertydomain.ManagedProperty{}, err
	}
	return property, nil
}

func (s *Service) Archive(ctx context.Context, id string) (propertydomain.ManagedProperty, error) {
	property, err := s.ownedProperty(ctx, id)
	if err != nil {
		return propertydomain.ManagedProperty{}, err
	}
	if property.Status == propertydomain.PropertyStatusArchived {
		return property, nil
	}

	if err := s.repo.UpdateStatus(ctx, s.db, property.ID, propertydomain.PropertyStatusArchived); err != nil {
		return propertydomain.ManagedProperty{}, err
	}
	property.Status = propertydomain.PropertyStatusArchived

	s.log.Info("property archived", zap.String("property_id", property.ID.String()))
	return property, nil
}

func (s *Service) ownedProperty(ctx context.Context, id string) (propertydomain.ManagedProperty, error) {
	actorID, ok := actorcontext.ActorIDFromContext(ctx)
	if !ok || actorID == 0 {
		return propertydomain.ManagedProperty{}, propertydomain.ErrInvalidActor
	}

	propertyID, err := s.parseID(id)
	if err != nil {
		return propertydomain.ManagedProperty{}, err
	}

	property, err := s.repo.FindByID(ctx, s.db, propertyID)
	if err != nil {
		return propertydomain.ManagedProperty{}, err
	}
	if property == nil {
		return propertydomain.ManagedProperty{}, propertydomain.ErrNotFound
	}
	if property.OwnerID != actorID {
		return propertydomain.ManagedProperty{}, propertydomain.ErrNotOwner
	}
	return *property, nil
}

func (s *Service) parseID(raw string) (snowflake.ID, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, propertydomain.ErrInvalidID
	}
	return parsed, nil
}
