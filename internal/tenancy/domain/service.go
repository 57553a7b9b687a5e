package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type CreateTenantRequest struct {
	PropertyID  string `json:"property_id"`
	FullName    string `json:"full_name"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	MonthlyRent *int64 `json:"monthly_rent,omitempty"`
	Charges     *int64 `json:"charges,omitempty"`
	DueDay      int    `json:"due_day"`
}

type ListTenantsRequest struct {
	PropertyID string
	Status     string
}

type ListTenantsResponse struct {
	Tenants []Tenant `json:"tenants"`
}

type Service interface {
	Create(ctx context.Context, req CreateTenantRequest) (Tenant, error)
	GetByID(ctx context.Context, id string) (Tenant, error)
	List(ctx context.Context, req ListTenantsRequest) (ListTenantsResponse, error)
	Terminate(ctx context.Context, id string) (Tenant, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, tenant *Tenant) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Tenant, error)
	Terminate(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
	CountActiveByProperty(ctx context.Context, db *gorm.DB, propertyID snowflake.ID) (int64, error)
}

var (
	ErrInvalidActor      = errors.New("invalid_actor")
	ErrInvalidID         = errors.New("invalid_tenant_id")
	ErrInvalidPropertyID = errors.New("invalid_property_id")
	ErrInvalidName       = errors.New("invalid_full_name")
	ErrInvalidRent       = errors.New("invalid_monthly_rent")
	ErrInvalidCharges    = errors.New("invalid_charges")
	ErrInvalidDueDay     = errors.New("invalid_due_day")
	ErrNotFound          = errors.New("tenant_not_found")
	ErrNotOwner          = errors.New("not_property_owner")
	ErrPropertyArchived  = errors.New("property_archived")
	ErrPropertyOccupied  = errors.New("property_already_occupied")
	ErrNotActive         = errors.New("tenant_not_active")
)
