package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nginxforge/nginxforge/internal/models"
	"github.com/nginxforge/nginxforge/internal/nginx"
	"github.com/nginxforge/nginxforge/internal/services"
)

type SiteHandler struct {
	sites *services.SiteService
}

func NewSiteHandler(sites *services.SiteService) *SiteHandler {
	return &SiteHandler{sites: sites}
}

// siteFromParam resolves the :id route parameter. It writes the error
// response itself; callers just return on nil.
func (h *SiteHandler) siteFromParam(c *gin.Context) *models.Site {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid site ID"})
		return nil
	}
	site, err := h.sites.Get(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Site not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return nil
	}
	return site
}

func (h *SiteHandler) List(c *gin.Context) {
	sites, err := h.sites.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sites)
}

func (h *SiteHandler) Get(c *gin.Context) {
	site := h.siteFromParam(c)
	if site == nil {
		return
	}
	model, err := h.sites.Model(site)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"site": site, "config": model})
}

type CreateSiteRequest struct {
	Name   string              `json:"name" binding:"required"`
	Config *nginx.ServerConfig `json:"config"`
}

func (h *SiteHandler) Create(c *gin.Context) {
	var req CreateSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	site, err := h.sites.Create(req.Name, req.Config)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, site)
}

func (h *SiteHandler) Update(c *gin.Context) {
	site := h.siteFromParam(c)
	if site == nil {
		return
	}

	var model nginx.ServerConfig
	if err := c.ShouldBindJSON(&model); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.sites.UpdateModel(site.ID, &model)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *SiteHandler) Patch(c *gin.Context) {
	site := h.siteFromParam(c)
	if site == nil {
		return
	}

	var patch nginx.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	model, err := h.sites.ApplyPatch(site, &patch)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"config": model})
}

func (h *SiteHandler) Delete(c *gin.Context) {
	site := h.siteFromParam(c)
	if site == nil {
		return
	}
	if err := h.sites.Delete(site.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Site deleted"})
}

func (h *SiteHandler) Generate(c *gin.Context) {
	site := h.siteFromParam(c)
	if site == nil {
		return
	}
	res, err := h.sites.Generate(site)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": res.Text, "warnings": res.Warnings})
}

func (h *SiteHandler) Lint(c *gin.Context) {
	site := h.siteFromParam(c)
	if site == nil {
		return
	}
	report, err := h.sites.Lint(site)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *SiteHandler) LintHistory(c *gin.Context) {
	site := h.siteFromParam(c)
	if site == nil {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	audits, err := h.sites.LintHistory(site, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, audits)
}

func (h *SiteHandler) ApplyFix(c *gin.Context) {
	site := h.siteFromParam(c)
	if site == nil {
		return
	}
	res, err := h.sites.ApplyFix(site, c.Param("ruleId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *SiteHandler) ApplyAllFixes(c *gin.Context) {
	site := h.siteFromParam(c)
	if site == nil {
		return
	}
	res, err := h.sites.ApplyAllFixes(site)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *SiteHandler) Deploy(c *gin.Context) {
	site := h.siteFromParam(c)
	if site == nil {
		return
	}
	hash, err := h.sites.Deploy(site)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Site deployed", "config_hash": hash})
}

func (h *SiteHandler) Rollback(c *gin.Context) {
	site := h.siteFromParam(c)
	if site == nil {
		return
	}
	if err := h.sites.Rollback(site); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rolled back to previous deployment"})
}

// ListRules exposes the lint rule catalog so clients can render docs links
// and fixability without hardcoding rule metadata.
func ListRules(c *gin.Context) {
	out := make([]gin.H, 0, len(nginx.Rules))
	for _, r := range nginx.Rules {
		out = append(out, gin.H{
			"id":       r.ID,
			"title":    r.Title,
			"category": r.Category,
			"severity": r.Severity,
			"docs_url": r.DocsURL,
			"fixable":  r.Fix != nil,
		})
	}
	c.JSON(http.StatusOK, out)
}
