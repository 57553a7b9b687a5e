package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/arafateouronile-glitch/immokey/pkg/db/pagination"
)

type CreatePropertyRequest struct {
	Title       string         `json:"title"`
	Address     string         `json:"address,omitempty"`
	MonthlyRent int64          `json:"monthly_rent"`
	Charges     int64          `json:"charges,omitempty"`
	Currency    string         `json:"currency,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// UpdatePropertyRequest is a partial update; nil fields keep their current
// value. Merge-then-validate happens in the service, never in storage.
type UpdatePropertyRequest struct {
	Title       *string        `json:"title,omitempty"`
	Address     *string        `json:"address,omitempty"`
	MonthlyRent *int64         `json:"monthly_rent,omitempty"`
	Charges     *int64         `json:"charges,omitempty"`
	Currency    *string        `json:"currency,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type ListPropertiesRequest struct {
	Status          string
	IncludeArchived bool
	PageToken       string
	PageSize        int32
}

type ListPropertiesResponse struct {
	Properties []ManagedProperty    `json:"properties"`
	PageInfo   *pagination.PageInfo `json:"page_info,omitempty"`
}

type Service interface {
	Create(ctx context.Context, req CreatePropertyRequest) (ManagedProperty, error)
	GetByID(ctx context.Context, id string) (ManagedProperty, error)
	List(ctx context.Context, req ListPropertiesRequest) (ListPropertiesResponse, error)
	Update(ctx context.Context, id string, req UpdatePropertyRequest) (ManagedProperty, error)
	Archive(ctx context.Context, id string) (ManagedProperty, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, property *ManagedProperty) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ManagedProperty, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ManagedProperty, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status PropertyStatus) error
}

var (
	ErrInvalidActor    = errors.New("invalid_actor")
	ErrInvalidID       = errors.New("invalid_property_id")
	ErrInvalidTitle    = errors.New("invalid_title")
	ErrInvalidRent     = errors.New("invalid_monthly_rent")
	ErrInvalidCharges  = errors.New("invalid_charges")
	ErrInvalidCurrency = errors.New("invalid_currency")
	ErrNotFound        = errors.New("property_not_found")
	ErrNotOwner        = errors.New("not_property_owner")
	ErrArchived        = errors.New("property_archived")
)
