package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nginxforge/nginxforge/internal/metrics"
	"github.com/nginxforge/nginxforge/internal/nginx"
	"github.com/nginxforge/nginxforge/internal/services"
)

// ImportHandler turns raw nginx configuration text into managed sites.
type ImportHandler struct {
	sites *services.SiteService
}

func NewImportHandler(sites *services.SiteService) *ImportHandler {
	return &ImportHandler{sites: sites}
}

type ImportPreviewRequest struct {
	Config string `json:"config" binding:"required"`
}

// Preview parses raw configuration text and shows what a managed site built
// from it would look like, without persisting anything.
func (h *ImportHandler) Preview(c *gin.Context) {
	var req ImportPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := nginx.ImportText(req.Config)
	metrics.IncImport()

	preview := nginx.Generate(res.Model)
	report := nginx.Lint(res.Model)

	c.JSON(http.StatusOK, gin.H{
		"config":   res.Model,
		"warnings": res.Warnings,
		"errors":   res.Errors,
		"preview":  preview.Text,
		"report":   report,
	})
}

type ImportCommitRequest struct {
	Name   string `json:"name" binding:"required"`
	Config string `json:"config" binding:"required"`
}

// Commit parses raw configuration text and creates a site from the result.
// Parse errors block the import; warnings are returned alongside the site.
func (h *ImportHandler) Commit(c *gin.Context) {
	var req ImportCommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := nginx.ImportText(req.Config)
	metrics.IncImport()
	if len(res.Errors) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "configuration could not be parsed",
			"errors": res.Errors,
		})
		return
	}

	site, err := h.sites.Create(req.Name, res.Model)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"site": site, "warnings": res.Warnings})
}
