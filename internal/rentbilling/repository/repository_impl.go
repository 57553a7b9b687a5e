package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"

	rentbillingdomain "github.com/arafateouronile-glitch/immokey/internal/rentbilling/domain"
	"github.com/arafateouronile-glitch/immokey/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() rentbillingdomain.Repository {
	return &repo{}
}

func (r *repo) InsertDueDate(ctx context.Context, gdb *gorm.DB, dueDate *rentbillingdomain.DueDate) error {
	return gdb.WithContext(ctx).Create(dueDate).Error
}

func (r *repo) InsertPayment(ctx context.Context, gdb *gorm.DB, payment *rentbillingdomain.Payment) error {
	return gdb.WithContext(ctx).Create(payment).Error
}

func (r *repo) FindDueDateByID(ctx context.Context, gdb *gorm.DB, id snowflake.ID) (*rentbillingdomain.DueDate, error) {
	return r.findDueDate(ctx, gdb, id, "")
}

func (r *repo) FindDueDateByIDForUpdate(ctx context.Context, gdb *gorm.DB, id snowflake.ID) (*rentbillingdomain.DueDate, error) {
	return r.findDueDate(ctx, gdb, id, db.LockingSuffix(gdb))
}

func (r *repo) findDueDate(ctx context.Context, gdb *gorm.DB, id snowflake.ID, suffix string) (*rentbillingdomain.DueDate, error) {
	var dueDate rentbillingdomain.DueDate
	err := gdb.WithContext(ctx).Raw(
		`SELECT * FROM due_dates WHERE id = ?`+suffix,
		id,
	).Scan(&dueDate).Error
	if err != nil {
		return nil, err
	}
	if dueDate.ID == 0 {
		return nil, nil
	}
	return &dueDate, nil
}

func (r *repo) FindDueDateByTenantPeriod(ctx context.Context, gdb *gorm.DB, tenantID snowflake.ID, month, year int) (*rentbillingdomain.DueDate, error) {
	var dueDate rentbillingdomain.DueDate
	err := gdb.WithContext(ctx).Raw(
		`SELECT * FROM due_dates WHERE tenant_id = ? AND month = ? AND year = ?`,
		tenantID,
		month,
		year,
	).Scan(&dueDate).Error
	if err != nil {
		return nil, err
	}
	if dueDate.ID == 0 {
		return nil, nil
	}
	return &dueDate, nil
}

func (r *repo) FindPaymentsByDueDate(ctx context.Context, gdb *gorm.DB, dueDateID snowflake.ID) ([]rentbillingdomain.Payment, error) {
	var payments []rentbillingdomain.Payment
	err := gdb.WithContext(ctx).Raw(
		`SELECT * FROM payments WHERE due_date_id = ? AND cancelled = ? ORDER BY created_at ASC`,
		dueDateID,
		false,
	).Scan(&payments).Error
	return payments, err
}

func (r *repo) UpdateDueDateStatus(ctx context.Context, gdb *gorm.DB, id snowflake.ID, status rentbillingdomain.DueDateStatus, at time.Time) error {
	return gdb.WithContext(ctx).Exec(
		`UPDATE due_dates SET status = ?, updated_at = ? WHERE id = ?`,
		status,
		at,
		id,
	).Error
}

func (r *repo) AggregateDueDates(ctx context.Context, gdb *gorm.DB, scope rentbillingdomain.StatsScope) (rentbillingdomain.DueDateAggregate, error) {
	query := `SELECT
		COALESCE(SUM(CASE WHEN status <> 'cancelled' THEN total_amount ELSE 0 END), 0) AS total_due,
		COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0) AS pending_count,
		COALESCE(SUM(CASE WHEN status = 'overdue' THEN 1 ELSE 0 END), 0) AS overdue_count,
		COALESCE(SUM(CASE WHEN status = 'paid' THEN 1 ELSE 0 END), 0) AS paid_count
	 FROM due_dates`

	where, args := scopeConditions(scope, "")

	var aggregate rentbillingdomain.DueDateAggregate
	err := gdb.WithContext(ctx).Raw(query+where, args...).Scan(&aggregate).Error
	return aggregate, err
}

func (r *repo) SumPayments(ctx context.Context, gdb *gorm.DB, scope rentbillingdomain.StatsScope) (int64, error) {
	query := `SELECT COALESCE(SUM(p.amount), 0)
	 FROM payments p JOIN tenants t ON t.id = p.tenant_id
	 WHERE p.cancelled = false`

	conds := make([]string, 0, 3)
	args := make([]any, 0, 3)
	if scope.TenantID != 0 {
		conds = append(conds, "p.tenant_id = ?")
		args = append(args, scope.TenantID)
	}
	if scope.PropertyID != 0 {
		conds = append(conds, "t.property_id = ?")
		args = append(args, scope.PropertyID)
	}
	if scope.OwnerID != 0 {
		conds = append(conds, "t.owner_id = ?")
		args = append(args, scope.OwnerID)
	}
	if len(conds) > 0 {
		query += " AND " + strings.Join(conds, " AND ")
	}

	var total int64
	err := gdb.WithContext(ctx).Raw(query, args...).Scan(&total).Error
	return total, err
}

func (r *repo) MarkOverdue(ctx context.Context, gdb *gorm.DB, before, at time.Time) (int64, error) {
	result := gdb.WithContext(ctx).Exec(
		`UPDATE due_dates SET status = ?, updated_at = ? WHERE status = ? AND due_on < ?`,
		rentbillingdomain.DueDateStatusOverdue,
		at,
		rentbillingdomain.DueDateStatusPending,
		before,
	)
	return result.RowsAffected, result.Error
}

func scopeConditions(scope rentbillingdomain.StatsScope, prefix string) (string, []any) {
	conds := make([]string, 0, 3)
	args := make([]any, 0, 3)
	if scope.TenantID != 0 {
		conds = append(conds, prefix+"tenant_id = ?")
		args = append(args, scope.TenantID)
	}
	if scope.PropertyID != 0 {
		conds = append(conds, prefix+"property_id = ?")
		args = append(args, scope.PropertyID)
	}
	if scope.OwnerID != 0 {
		conds = append(conds, prefix+"owner_id = ?")
		args = append(args, scope.OwnerID)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
