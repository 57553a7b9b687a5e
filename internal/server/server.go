package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/arafateouronile-glitch/immokey/internal/booking"
	bookingdomain "github.com/arafateouronile-glitch/immokey/internal/booking/domain"
	"github.com/arafateouronile-glitch/immokey/internal/clock"
	"github.com/arafateouronile-glitch/immokey/internal/config"
	"github.com/arafateouronile-glitch/immokey/internal/property"
	propertydomain "github.com/arafateouronile-glitch/immokey/internal/property/domain"
	"github.com/arafateouronile-glitch/immokey/internal/ratelimit"
	"github.com/arafateouronile-glitch/immokey/internal/rentbilling"
	rentbillingdomain "github.com/arafateouronile-glitch/immokey/internal/rentbilling/domain"
	"github.com/arafateouronile-glitch/immokey/internal/scheduler"
	"github.com/arafateouronile-glitch/immokey/internal/tenancy"
	tenancydomain "github.com/arafateouronile-glitch/immokey/internal/tenancy/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	property.Module,
	tenancy.Module,
	rentbilling.Module,
	booking.Module,
	ratelimit.Module,
	scheduler.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	clock  clock.Clock

	propertySvc propertydomain.Service
	tenancySvc  tenancydomain.Service
	billingSvc  rentbillingdomain.Service
	bookingSvc  bookingdomain.Service
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Clock       clock.Clock
	PropertySvc propertydomain.Service
	TenancySvc  tenancydomain.Service
	BillingSvc  rentbillingdomain.Service
	BookingSvc  bookingdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		clock:       p.Clock,
		propertySvc: p.PropertySvc,
		tenancySvc:  p.TenancySvc,
		billingSvc:  p.BillingSvc,
		bookingSvc:  p.BookingSvc,
	}

	svc.registerRentalRoutes()
	svc.registerHospitalityRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Rental routes are owner-scoped: every request carries X-Actor-ID and the
// services reject objects the actor does not own.
func (s *Server) registerRentalRoutes() {
	api := s.engine.Group("/api", s.ActorRequired())

	// -------- Properties --------
	api.GET("/properties", s.ListProperties)
	api.POST("/properties", s.CreateProperty)
	api.GET("/properties/:id", s.GetPropertyByID)
	api.PATCH("/properties/:id", s.UpdateProperty)
	api.POST("/properties/:id/archive", s.ArchiveProperty)

	// -------- Tenants --------
	api.GET("/tenants", s.ListTenants)
	api.POST("/tenants", s.CreateTenant)
	api.GET("/tenants/:id", s.GetTenantByID)
	api.POST("/tenants/:id/terminate", s.TerminateTenant)

	// -------- Due dates --------
	api.GET("/due-dates", s.ListDueDates)
	api.POST("/due-dates/generate", s.GenerateDueDates)
	api.POST("/due-dates/:id/cancel", s.CancelDueDate)

	// -------- Payments --------
	api.GET("/payments", s.ListPayments)
	api.POST("/payments", s.CreatePayment)

	api.GET("/stats", s.GetStats)
	api.GET("/dashboard", s.GetLandlordDashboard)
}

// Hospitality routes are establishment-scoped; booking payment status is
// operator-asserted so no ledger reconciliation happens here.
func (s *Server) registerHospitalityRoutes() {
	api := s.engine.Group("/api")

	api.GET("/bookings", s.ListBookings)
	api.POST("/bookings", s.CreateBooking)
	api.GET("/bookings/:id", s.GetBookingByID)
	api.PATCH("/bookings/:id", s.UpdateBooking)
	api.POST("/bookings/:id/confirm", s.ConfirmBooking)
	api.POST("/bookings/:id/check-in", s.CheckInBooking)
	api.POST("/bookings/:id/check-out", s.CheckOutBooking)
	api.POST("/bookings/:id/cancel", s.CancelBooking)
	api.POST("/bookings/:id/no-show", s.MarkBookingNoShow)
	api.PATCH("/bookings/:id/payment-status", s.SetBookingPaymentStatus)

	api.GET("/dashboard/overview", s.GetDashboardOverview)
}
