package option

import (
	"fmt"

	"github.com/arafateouronile-glitch/immokey/pkg/db/pagination"
	"gorm.io/gorm"
)

// QueryOption mutates a gorm statement before execution. Options compose with
// the struct filter applied by the generic store.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type Operator string

const (
	EQ     Operator = "="
	NEQ    Operator = "<>"
	GT     Operator = ">"
	GTE    Operator = ">="
	LT     Operator = "<"
	LTE    Operator = "<="
	IN     Operator = "IN"
	IsNull Operator = "IS NULL"
)

// Condition is a single field comparison appended to the WHERE clause.
type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

type operatorOption struct {
	cond Condition
}

func (o operatorOption) Apply(db *gorm.DB) *gorm.DB {
	switch o.cond.Operator {
	case IN:
		return db.Where(fmt.Sprintf("%s IN ?", o.cond.Field), o.cond.Value)
	case IsNull:
		return db.Where(fmt.Sprintf("%s IS NULL", o.cond.Field))
	default:
		return db.Where(fmt.Sprintf("%s %s ?", o.cond.Field, o.cond.Operator), o.cond.Value)
	}
}

func ApplyOperator(cond Condition) QueryOption {
	return operatorOption{cond: cond}
}

type sortOption struct {
	clause string
}

func (o sortOption) Apply(db *gorm.DB) *gorm.DB {
	if o.clause == "" {
		return db
	}
	return db.Order(o.clause)
}

// WithSortBy orders results by a caller-provided clause.
func WithSortBy(clause string) QueryOption {
	return sortOption{clause: clause}
}

// WithQuerySortBy validates the requested sort field against an allow-list and
// falls back to the default when the field is not sortable.
func WithQuerySortBy(field, direction string, allowed map[string]bool) string {
	if !allowed[field] {
		field = "created_at"
	}
	if direction != "asc" && direction != "desc" {
		direction = "desc"
	}
	return fmt.Sprintf("%s %s", field, direction)
}

type limitOption struct {
	limit int
}

func (o limitOption) Apply(db *gorm.DB) *gorm.DB {
	if o.limit <= 0 {
		return db
	}
	return db.Limit(o.limit)
}

func WithLimit(limit int) QueryOption {
	return limitOption{limit: limit}
}

type paginationOption struct {
	page pagination.Pagination
}

func (o paginationOption) Apply(db *gorm.DB) *gorm.DB {
	size := o.page.PageSize
	if size <= 0 {
		size = 10
	}

	if o.page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(o.page.PageToken)
		if err == nil && cursor.CreatedAt != "" {
			db = db.Where("created_at < ?", cursor.CreatedAt)
		}
	}

	// Fetch one extra row so the caller can detect another page.
	return db.Limit(size + 1)
}

// ApplyPagination applies cursor pagination on created_at.
func ApplyPagination(page pagination.Pagination) QueryOption {
	return paginationOption{page: page}
}
