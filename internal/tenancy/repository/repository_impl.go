package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"

	tenancydomain "github.com/arafateouronile-glitch/immokey/internal/tenancy/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() tenancydomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, gdb *gorm.DB, tenant *tenancydomain.Tenant) error {
	return gdb.WithContext(ctx).Create(tenant).Error
}

func (r *repo) FindByID(ctx context.Context, gdb *gorm.DB, id snowflake.ID) (*tenancydomain.Tenant, error) {
	var tenant tenancydomain.Tenant
	err := gdb.WithContext(ctx).Raw(
		`SELECT * FROM tenants WHERE id = ?`,
		id,
	).Scan(&tenant).Error
	if err != nil {
		return nil, err
	}
	if tenant.ID == 0 {
		return nil, nil
	}
	return &tenant, nil
}

func (r *repo) Terminate(ctx context.Context, gdb *gorm.DB, id snowflake.ID, at time.Time) error {
	return gdb.WithContext(ctx).Exec(
		`UPDATE tenants SET status = ?, terminated_at = ?, updated_at = ? WHERE id = ?`,
		tenancydomain.TenantStatusTerminated,
		at,
		at,
		id,
	).Error
}

func (r *repo) CountActiveByProperty(ctx context.Context, gdb *gorm.DB, propertyID snowflake.ID) (int64, error) {
	var count int64
	err := gdb.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM tenants WHERE property_id = ? AND status = ?`,
		propertyID,
		tenancydomain.TenantStatusActive,
	).Scan(&count).Error
	return count, err
}
