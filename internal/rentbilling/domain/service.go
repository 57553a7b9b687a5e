package domain

import (
	"context"
	"errors"
	"time"

	"github.com/arafateouronile-glitch/immokey/internal/period"
)

type GenerateDueDatesRequest struct {
	TenantID string        `json:"tenant_id"`
	From     period.Period `json:"from"`
	To       period.Period `json:"to"`
}

type GenerateDueDatesResponse struct {
	DueDates []DueDate `json:"due_dates"`
	Skipped  int       `json:"skipped"`
}

type CreatePaymentRequest struct {
	TenantID  string  `json:"tenant_id"`
	DueDateID *string `json:"due_date_id,omitempty"`
	Amount    int64   `json:"amount"`
	Method    string  `json:"method"`
	PaidOn    string  `json:"paid_on,omitempty"` // YYYY-MM-DD, defaults to today
}

type ListDueDatesRequest struct {
	TenantID   string
	PropertyID string
	Status     string
}

type ListDueDatesResponse struct {
	DueDates []DueDate `json:"due_dates"`
}

type ListPaymentsRequest struct {
	TenantID  string
	DueDateID string
}

type ListPaymentsResponse struct {
	Payments []Payment `json:"payments"`
}

// StatsRequest scopes the roll-up: tenant, property, or every obligation
// owned by the current actor when both are empty.
type StatsRequest struct {
	TenantID   string
	PropertyID string
}

type StatsResponse struct {
	TotalDue     int64 `json:"total_due"`
	TotalPaid    int64 `json:"total_paid"`
	PendingCount int64 `json:"pending_count"`
	OverdueCount int64 `json:"overdue_count"`
	PaidCount    int64 `json:"paid_count"`
}

type Service interface {
	GenerateDueDates(ctx context.Context, req GenerateDueDatesRequest) (GenerateDueDatesResponse, error)
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (Payment, error)
	CancelDueDate(ctx context.Context, id string) (DueDate, error)
	ListDueDates(ctx context.Context, req ListDueDatesRequest) (ListDueDatesResponse, error)
	ListPayments(ctx context.Context, req ListPaymentsRequest) (ListPaymentsResponse, error)
	Stats(ctx context.Context, req StatsRequest) (StatsResponse, error)

	// MarkOverdue flips pending obligations past their due date to overdue.
	// It exists for the optional background sweep; the engine default leaves
	// overdue detection to payment-time recomputation.
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

var (
	ErrInvalidActor     = errors.New("invalid_actor")
	ErrInvalidTenantID  = errors.New("invalid_tenant_id")
	ErrInvalidProperty  = errors.New("invalid_property_id")
	ErrInvalidDueDateID = errors.New("invalid_due_date_id")
	ErrTenantNotFound   = errors.New("tenant_not_found")
	ErrDueDateNotFound  = errors.New("due_date_not_found")
	ErrNotOwner         = errors.New("not_property_owner")
	ErrInvalidAmount    = errors.New("invalid_amount")
	ErrInvalidMethod    = errors.New("invalid_method")
	ErrInvalidPaidOn    = errors.New("invalid_paid_on")
	ErrDueDateMismatch  = errors.New("due_date_tenant_mismatch")
	ErrDueDateSettled   = errors.New("due_date_already_paid")
)
