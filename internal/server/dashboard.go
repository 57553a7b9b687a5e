package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	rentbillingdomain "github.com/arafateouronile-glitch/immokey/internal/rentbilling/domain"
)

// GetLandlordDashboard aggregates the rental billing stats with the
// hospitality overview so the landlord home screen needs a single call.
func (s *Server) GetLandlordDashboard(c *gin.Context) {
	var query struct {
		EstablishmentID string `form:"establishment_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	stats, err := s.billingSvc.Stats(c.Request.Context(), rentbillingdomain.StatsRequest{})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	overview, err := s.bookingSvc.Overview(c.Request.Context(), strings.TrimSpace(query.EstablishmentID), s.clock.Now())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"rentals":     stats,
		"hospitality": overview,
	}})
}
