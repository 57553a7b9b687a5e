package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/arafateouronile-glitch/immokey/internal/actorcontext"
	"github.com/arafateouronile-glitch/immokey/internal/clock"
	"github.com/arafateouronile-glitch/immokey/internal/config"
	"github.com/arafateouronile-glitch/immokey/internal/period"
	rentbillingdomain "github.com/arafateouronile-glitch/immokey/internal/rentbilling/domain"
	tenancydomain "github.com/arafateouronile-glitch/immokey/internal/tenancy/domain"
	"github.com/arafateouronile-glitch/immokey/pkg/db/option"
	"github.com/arafateouronile-glitch/immokey/pkg/repository"
)

const paidOnLayout = "2006-01-02"

// Service owns due-date generation and payment reconciliation. Due-date
// totals are frozen at generation time; statuses are recomputed from the full
// payment history on every payment event.
type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID       *snowflake.Node
	clock       clock.Clock
	repo        rentbillingdomain.Repository
	tenantRepo  tenancydomain.Repository
	marketplace *config.MarketplaceConfigHolder

	dueDateStore repository.Repository[rentbillingdomain.DueDate]
	paymentStore repository.Repository[rentbillingdomain.Payment]
}

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        rentbillingdomain.Repository
	TenantRepo  tenancydomain.Repository
	Marketplace *config.MarketplaceConfigHolder
}

func NewService(p Params) rentbillingdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("rentbilling.service"),

		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		tenantRepo:  p.TenantRepo,
		marketplace: p.Marketplace,

		dueDateStore: repository.ProvideStore[rentbillingdomain.DueDate](p.DB),
		paymentStore: repository.ProvideStore[rentbillingdomain.Payment](p.DB),
	}
}

func (s *Service) GenerateDueDates(ctx context.Context, req rentbillingdomain.GenerateDueDatesRequest) (rentbillingdomain.GenerateDueDatesResponse, error) {
	tenant, err := s.ownedTenant(ctx, req.TenantID)
	if err != nil {
		return rentbillingdomain.GenerateDueDatesResponse{}, err
	}

	periods, err := period.Range(req.From, req.To)
	if err != nil {
		return rentbillingdomain.GenerateDueDatesResponse{}, err
	}

	created := make([]rentbillingdomain.DueDate, 0, len(periods))
	skipped := 0
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range periods {
			existing, err := s.repo.FindDueDateByTenantPeriod(ctx, tx, tenant.ID, int(p.Month), p.Year)
			if err != nil {
				return err
			}
			if existing != nil {
				// Idempotence: a period that already carries an obligation
				// for this tenant is left untouched.
				skipped++
				continue
			}

			now := s.clock.Now()
			dueDate := rentbillingdomain.DueDate{
				ID:            s.genID.Generate(),
				TenantID:      tenant.ID,
				PropertyID:    tenant.PropertyID,
				OwnerID:       tenant.OwnerID,
				Month:         int(p.Month),
				Year:          p.Year,
				RentAmount:    tenant.MonthlyRent,
				ChargesAmount: tenant.Charges,
				TotalAmount:   tenant.MonthlyRent + tenant.Charges,
				DueOn:         period.DueOn(p, tenant.DueDay),
				Status:        rentbillingdomain.DueDateStatusPending,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := s.repo.InsertDueDate(ctx, tx, &dueDate); err != nil {
				return err
			}
			created = append(created, dueDate)
		}
		return nil
	})
	if err != nil {
		return rentbillingdomain.GenerateDueDatesResponse{}, err
	}

	s.log.Info("due dates generated",
		zap.String("tenant_id", tenant.ID.String()),
		zap.Int("created", len(created)),
		zap.Int("skipped", skipped),
	)
	return rentbillingdomain.GenerateDueDatesResponse{DueDates: created, Skipped: skipped}, nil
}

func (s *Service) CreatePayment(ctx context.Context, req rentbillingdomain.CreatePaymentRequest) (rentbillingdomain.Payment, error) {
	actorID, ok := actorcontext.ActorIDFromContext(ctx)
	if !ok || actorID == 0 {
		return rentbillingdomain.Payment{}, rentbillingdomain.ErrInvalidActor
	}

	tenant, err := s.ownedTenant(ctx, req.TenantID)
	if err != nil {
		return rentbillingdomain.Payment{}, err
	}

	if req.Amount <= 0 {
		return rentbillingdomain.Payment{}, rentbillingdomain.ErrInvalidAmount
	}
	method := strings.TrimSpace(req.Method)
	if method == "" {
		return rentbillingdomain.Payment{}, rentbillingdomain.ErrInvalidMethod
	}

	paidOn := s.clock.Now()
	if raw := strings.TrimSpace(req.PaidOn); raw != "" {
		parsed, err := time.Parse(paidOnLayout, raw)
		if err != nil {
			return rentbillingdomain.Payment{}, rentbillingdomain.ErrInvalidPaidOn
		}
		paidOn = parsed
	}

	var dueDateID *snowflake.ID
	if req.DueDateID != nil && strings.TrimSpace(*req.DueDateID) != "" {
		parsed, err := snowflake.ParseString(strings.TrimSpace(*req.DueDateID))
		if err != nil {
			return rentbillingdomain.Payment{}, rentbillingdomain.ErrInvalidDueDateID
		}
		dueDateID = &parsed
	}

	payment := rentbillingdomain.Payment{
		ID:         s.genID.Generate(),
		TenantID:   tenant.ID,
		DueDateID:  dueDateID,
		Amount:     req.Amount,
		Method:     method,
		ReceiptNo:  ulid.Make().String(),
		PaidOn:     paidOn,
		RecordedBy: actorID,
		CreatedAt:  s.clock.Now(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if dueDateID == nil {
			// Free payment, not tied to an obligation.
			return s.repo.InsertPayment(ctx, tx, &payment)
		}

		dueDate, err := s.repo.FindDueDateByIDForUpdate(ctx, tx, *dueDateID)
		if err != nil {
			return err
		}
		if dueDate == nil {
			return rentbillingdomain.ErrDueDateNotFound
		}
		if dueDate.TenantID != tenant.ID {
			return rentbillingdomain.ErrDueDateMismatch
		}

		if err := s.repo.InsertPayment(ctx, tx, &payment); err != nil {
			return err
		}

		return s.reconcileDueDate(ctx, tx, dueDate)
	})
	if err != nil {
		return rentbillingdomain.Payment{}, err
	}

	s.log.Info("payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("tenant_id", tenant.ID.String()),
		zap.Int64("amount", payment.Amount),
	)
	return payment, nil
}

// reconcileDueDate recomputes an obligation's status from its full payment
// history: paid once the non-cancelled sum covers the frozen total, overdue
// when unpaid past the due date, pending otherwise. A paid obligation is
// never downgraded. The full-history sum keeps the recomputation correct
// under retried or out-of-order payment calls.
func (s *Service) reconcileDueDate(ctx context.Context, tx *gorm.DB, dueDate *rentbillingdomain.DueDate) error {
	if dueDate.Status == rentbillingdomain.DueDateStatusCancelled {
		return nil
	}

	payments, err := s.repo.FindPaymentsByDueDate(ctx, tx, dueDate.ID)
	if err != nil {
		return err
	}

	var sum int64
	for _, p := range payments {
		sum += p.Amount
	}

	status := dueDate.Status
	switch {
	case sum >= dueDate.TotalAmount:
		status = rentbillingdomain.DueDateStatusPaid
	case dueDate.Status == rentbillingdomain.DueDateStatusPaid:
		// Never downgrade.
	case s.pastDue(dueDate.DueOn):
		status = rentbillingdomain.DueDateStatusOverdue
	default:
		status = rentbillingdomain.DueDateStatusPending
	}

	if status == dueDate.Status {
		return nil
	}
	return s.repo.UpdateDueDateStatus(ctx, tx, dueDate.ID, status, s.clock.Now())
}

func (s *Service) CancelDueDate(ctx context.Context, id string) (rentbillingdomain.DueDate, error) {
	actorID, ok := actorcontext.ActorIDFromContext(ctx)
	if !ok || actorID == 0 {
		return rentbillingdomain.DueDate{}, rentbillingdomain.ErrInvalidActor
	}

	dueDateID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return rentbillingdomain.DueDate{}, rentbillingdomain.ErrInvalidDueDateID
	}

	dueDate, err := s.repo.FindDueDateByID(ctx, s.db, dueDateID)
	if err != nil {
		return rentbillingdomain.DueDate{}, err
	}
	if dueDate == nil {
		return rentbillingdomain.DueDate{}, rentbillingdomain.ErrDueDateNotFound
	}
	if dueDate.OwnerID != actorID {
		return rentbillingdomain.DueDate{}, rentbillingdomain.ErrNotOwner
	}
	if dueDate.Status == rentbillingdomain.DueDateStatusPaid {
		return rentbillingdomain.DueDate{}, rentbillingdomain.ErrDueDateSettled
	}
	if dueDate.Status == rentbillingdomain.DueDateStatusCancelled {
		return *dueDate, nil
	}

	now := s.clock.Now()
	if err := s.repo.UpdateDueDateStatus(ctx, s.db, dueDateID, rentbillingdomain.DueDateStatusCancelled, now); err != nil {
		return rentbillingdomain.DueDate{}, err
	}
	dueDate.Status = rentbillingdomain.DueDateStatusCancelled
	dueDate.UpdatedAt = now
	return *dueDate, nil
}

func (s *Service) ListDueDates(ctx context.Context, req rentbillingdomain.ListDueDatesRequest) (rentbillingdomain.ListDueDatesResponse, error) {
	actorID, ok := actorcontext.ActorIDFromContext(ctx)
	if !ok || actorID == 0 {
		return rentbillingdomain.ListDueDatesResponse{}, rentbillingdomain.ErrInvalidActor
	}

	filter := &rentbillingdomain.DueDate{OwnerID: actorID}
	if raw := strings.TrimSpace(req.TenantID); raw != "" {
		parsed, err := snowflake.ParseString(raw)
		if err != nil {
			return rentbillingdomain.ListDueDatesResponse{}, rentbillingdomain.ErrInvalidTenantID
		}
		filter.TenantID = parsed
	}
	if raw := strings.TrimSpace(req.PropertyID); raw != "" {
		parsed, err := snowflake.ParseString(raw)
		if err != nil {
			return rentbillingdomain.ListDueDatesResponse{}, rentbillingdomain.ErrInvalidProperty
		}
		filter.PropertyID = parsed
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		filter.Status = rentbillingdomain.DueDateStatus(status)
	}

	items, err := s.dueDateStore.Find(ctx, filter,
		option.WithSortBy("year asc, month asc"),
	)
	if err != nil {
		return rentbillingdomain.ListDueDatesResponse{}, err
	}

	dueDates := make([]rentbillingdomain.DueDate, 0, len(items))
	for _, item := range items {
		dueDates = append(dueDates, *item)
	}
	return rentbillingdomain.ListDueDatesResponse{DueDates: dueDates}, nil
}

func (s *Service) ListPayments(ctx context.Context, req rentbillingdomain.ListPaymentsRequest) (rentbillingdomain.ListPaymentsResponse, error) {
	tenant, err := s.ownedTenant(ctx, req.TenantID)
	if err != nil {
		return rentbillingdomain.ListPaymentsResponse{}, err
	}

	filter := &rentbillingdomain.Payment{TenantID: tenant.ID}
	opts := []option.QueryOption{
		option.WithSortBy(option.WithQuerySortBy("created_at", "desc", map[string]bool{"created_at": true})),
		// Payment history is newest-first and capped.
		option.WithLimit(200),
	}
	if raw := strings.TrimSpace(req.DueDateID); raw != "" {
		parsed, err := snowflake.ParseString(raw)
		if err != nil {
			return rentbillingdomain.ListPaymentsResponse{}, rentbillingdomain.ErrInvalidDueDateID
		}
		opts = append(opts, option.ApplyOperator(option.Condition{
			Field:    "due_date_id",
			Operator: option.EQ,
			Value:    parsed,
		}))
	}

	items, err := s.paymentStore.Find(ctx, filter, opts...)
	if err != nil {
		return rentbillingdomain.ListPaymentsResponse{}, err
	}

	payments := make([]rentbillingdomain.Payment, 0, len(items))
	for _, item := range items {
		payments = append(payments, *item)
	}
	return rentbillingdomain.ListPaymentsResponse{Payments: payments}, nil
}

func (s *Service) Stats(ctx context.Context, req rentbillingdomain.StatsRequest) (rentbillingdomain.StatsResponse, error) {
	actorID, ok := actorcontext.ActorIDFromContext(ctx)
	if !ok || actorID == 0 {
		return rentbillingdomain.StatsResponse{}, rentbillingdomain.ErrInvalidActor
	}

	scope := rentbillingdomain.StatsScope{OwnerID: actorID}
	if raw := strings.TrimSpace(req.TenantID); raw != "" {
		parsed, err := snowflake.ParseString(raw)
		if err != nil {
			return rentbillingdomain.StatsResponse{}, rentbillingdomain.ErrInvalidTenantID
		}
		scope.TenantID = parsed
	}
	if raw := strings.TrimSpace(req.PropertyID); raw != "" {
		parsed, err := snowflake.ParseString(raw)
		if err != nil {
			return rentbillingdomain.StatsResponse{}, rentbillingdomain.ErrInvalidProperty
		}
		scope.PropertyID = parsed
	}

	aggregate, err := s.repo.AggregateDueDates(ctx, s.db, scope)
	if err != nil {
		return rentbillingdomain.StatsResponse{}, err
	}
	totalPaid, err := s.repo.SumPayments(ctx, s.db, scope)
	if err != nil {
		return rentbillingdomain.StatsResponse{}, err
	}

	return rentbillingdomain.StatsResponse{
		TotalDue:     aggregate.TotalDue,
		TotalPaid:    totalPaid,
		PendingCount: aggregate.PendingCount,
		OverdueCount: aggregate.OverdueCount,
		PaidCount:    aggregate.PaidCount,
	}, nil
}

func (s *Service) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.AddDate(0, 0, -s.marketplace.Get().OverdueGraceDays)
	flipped, err := s.repo.MarkOverdue(ctx, s.db, cutoff, now)
	if err != nil {
		return 0, err
	}
	if flipped > 0 {
		s.log.Info("due dates marked overdue", zap.Int64("count", flipped))
	}
	return flipped, nil
}

// pastDue applies the operator-tunable grace window before an unpaid
// obligation flips to overdue.
func (s *Service) pastDue(dueOn time.Time) bool {
	grace := s.marketplace.Get().OverdueGraceDays
	return dueOn.AddDate(0, 0, grace).Before(s.clock.Now())
}

func (s *Service) ownedTenant(ctx context.Context, id string) (tenancydomain.Tenant, error) {
	actorID, ok := actorcontext.ActorIDFromContext(ctx)
	if !ok || actorID == 0 {
		return tenancydomain.Tenant{}, rentbillingdomain.ErrInvalidActor
	}

	tenantID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return tenancydomain.Tenant{}, rentbillingdomain.ErrInvalidTenantID
	}

	tenant, err := s.tenantRepo.FindByID(ctx, s.db, tenantID)
	if err != nil {
		return tenancydomain.Tenant{}, err
	}
	if tenant == nil {
		return tenancydomain.Tenant{}, rentbillingdomain.ErrTenantNotFound
	}
	if tenant.OwnerID != actorID {
		return tenancydomain.Tenant{}, rentbillingdomain.ErrNotOwner
	}
	return *tenant, nil
}
