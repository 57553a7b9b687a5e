package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	tenancydomain "github.com/arafateouronile-glitch/immokey/internal/tenancy/domain"
)

func (s *Server) CreateTenant(c *gin.Context) {
	var req tenancydomain.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tenancySvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListTenants(c *gin.Context) {
	var query struct {
		PropertyID string `form:"property_id"`
		Status     string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tenancySvc.List(c.Request.Context(), tenancydomain.ListTenantsRequest{
		PropertyID: strings.TrimSpace(query.PropertyID),
		Status:     strings.TrimSpace(query.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetTenantByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.tenancySvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// TerminateTenant ends the lease and releases the property back to vacant
// when no other active tenant remains.
func (s *Server) TerminateTenant(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.tenancySvc.Terminate(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
