// Package repository exposes the generic persistence port shared by every
// domain: insert, get-by-id, update-by-id and query-with-filter over a record
// collection. Engines depend on this interface rather than on gorm directly.
package repository

import (
	"context"

	"github.com/arafateouronile-glitch/immokey/pkg/db/option"
)

type Repository[T any] interface {
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindByID(ctx context.Context, id int64) (*T, error)
	Create(ctx context.Context, resource *T) error
	Update(ctx context.Context, resourceID string, resource any) error
	BatchUpdate(ctx context.Context, resources []*T) error
}
