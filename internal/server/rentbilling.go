package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arafateouronile-glitch/immokey/internal/period"
	rentbillingdomain "github.com/arafateouronile-glitch/immokey/internal/rentbilling/domain"
)

type generateDueDatesRequest struct {
	TenantID  string `json:"tenant_id"`
	FromYear  int    `json:"from_year"`
	FromMonth int    `json:"from_month"`
	ToYear    int    `json:"to_year"`
	ToMonth   int    `json:"to_month"`
}

func (s *Server) GenerateDueDates(c *gin.Context) {
	var req generateDueDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.billingSvc.GenerateDueDates(c.Request.Context(), rentbillingdomain.GenerateDueDatesRequest{
		TenantID: strings.TrimSpace(req.TenantID),
		From:     period.Period{Year: req.FromYear, Month: time.Month(req.FromMonth)},
		To:       period.Period{Year: req.ToYear, Month: time.Month(req.ToMonth)},
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListDueDates(c *gin.Context) {
	var query struct {
		TenantID   string `form:"tenant_id"`
		PropertyID string `form:"property_id"`
		Status     string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.billingSvc.ListDueDates(c.Request.Context(), rentbillingdomain.ListDueDatesRequest{
		TenantID:   strings.TrimSpace(query.TenantID),
		PropertyID: strings.TrimSpace(query.PropertyID),
		Status:     strings.TrimSpace(query.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelDueDate(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.billingSvc.CancelDueDate(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreatePayment(c *gin.Context) {
	var req rentbillingdomain.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.billingSvc.CreatePayment(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListPayments(c *gin.Context) {
	var query struct {
		TenantID  string `form:"tenant_id"`
		DueDateID string `form:"due_date_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.billingSvc.ListPayments(c.Request.Context(), rentbillingdomain.ListPaymentsRequest{
		TenantID:  strings.TrimSpace(query.TenantID),
		DueDateID: strings.TrimSpace(query.DueDateID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetStats(c *gin.Context) {
	var query struct {
		TenantID   string `form:"tenant_id"`
		PropertyID string `form:"property_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.billingSvc.Stats(c.Request.Context(), rentbillingdomain.StatsRequest{
		TenantID:   strings.TrimSpace(query.TenantID),
		PropertyID: strings.TrimSpace(query.PropertyID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
