package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	bookingdomain "github.com/arafateouronile-glitch/immokey/internal/booking/domain"
)

func (s *Server) CreateBooking(c *gin.Context) {
	var req bookingdomain.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.bookingSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListBookings(c *gin.Context) {
	var query struct {
		EstablishmentID string `form:"establishment_id"`
		RoomID          string `form:"room_id"`
		Status          string `form:"status"`
		PaymentStatus   string `form:"payment_status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.bookingSvc.List(c.Request.Context(), bookingdomain.ListBookingsRequest{
		EstablishmentID: strings.TrimSpace(query.EstablishmentID),
		RoomID:          strings.TrimSpace(query.RoomID),
		Status:          strings.TrimSpace(query.Status),
		PaymentStatus:   strings.TrimSpace(query.PaymentStatus),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBookingByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.bookingSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateBooking(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req bookingdomain.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.bookingSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ConfirmBooking(c *gin.Context) {
	s.transitionBooking(c, s.bookingSvc.Confirm)
}

func (s *Server) CheckInBooking(c *gin.Context) {
	s.transitionBooking(c, s.bookingSvc.CheckIn)
}

func (s *Server) CheckOutBooking(c *gin.Context) {
	s.transitionBooking(c, s.bookingSvc.CheckOut)
}

func (s *Server) CancelBooking(c *gin.Context) {
	s.transitionBooking(c, s.bookingSvc.Cancel)
}

func (s *Server) MarkBookingNoShow(c *gin.Context) {
	s.transitionBooking(c, s.bookingSvc.MarkNoShow)
}

func (s *Server) transitionBooking(c *gin.Context, fn func(ctx context.Context, id string) (bookingdomain.Booking, error)) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := fn(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type setPaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status"`
}

func (s *Server) SetBookingPaymentStatus(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req setPaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.bookingSvc.SetPaymentStatus(c.Request.Context(), id, bookingdomain.PaymentStatus(strings.TrimSpace(req.PaymentStatus)))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetDashboardOverview(c *gin.Context) {
	var query struct {
		EstablishmentID string `form:"establishment_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.bookingSvc.Overview(c.Request.Context(), strings.TrimSpace(query.EstablishmentID), s.clock.Now())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
