package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"

	propertydomain "github.com/arafateouronile-glitch/immokey/internal/property/domain"
	"github.com/arafateouronile-glitch/immokey/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() propertydomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, gdb *gorm.DB, property *propertydomain.ManagedProperty) error {
	return gdb.WithContext(ctx).Create(property).Error
}

func (r *repo) FindByID(ctx context.Context, gdb *gorm.DB, id snowflake.ID) (*propertydomain.ManagedProperty, error) {
	var property propertydomain.ManagedProperty
	err := gdb.WithContext(ctx).Raw(
		`SELECT * FROM managed_properties WHERE id = ?`,
		id,
	).Scan(&property).Error
	if err != nil {
		return nil, err
	}
	if property.ID == 0 {
		return nil, nil
	}
	return &property, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, gdb *gorm.DB, id snowflake.ID) (*propertydomain.ManagedProperty, error) {
	var property propertydomain.ManagedProperty
	err := gdb.WithContext(ctx).Raw(
		`SELECT * FROM managed_properties WHERE id = ?`+db.LockingSuffix(gdb),
		id,
	).Scan(&property).Error
	if err != nil {
		return nil, err
	}
	if property.ID == 0 {
		return nil, nil
	}
	return &property, nil
}

func (r *repo) UpdateStatus(ctx context.Context, gdb *gorm.DB, id snowflake.ID, status propertydomain.PropertyStatus) error {
	return gdb.WithContext(ctx).Exec(
		`UPDATE managed_properties SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status,
		id,
	).Error
}
