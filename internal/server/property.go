package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	propertydomain "github.com/arafateouronile-glitch/immokey/internal/property/domain"
	"github.com/arafateouronile-glitch/immokey/pkg/db/pagination"
)

func (s *Server) CreateProperty(c *gin.Context) {
	var req propertydomain.CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.propertySvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListProperties(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status          string `form:"status"`
		IncludeArchived bool   `form:"include_archived"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.propertySvc.List(c.Request.Context(), propertydomain.ListPropertiesRequest{
		Status:          strings.TrimSpace(query.Status),
		IncludeArchived: query.IncludeArchived,
		PageToken:       query.PageToken,
		PageSize:        int32(query.PageSize),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPropertyByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.propertySvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateProperty(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req propertydomain.UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.propertySvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ArchiveProperty(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.propertySvc.Archive(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
