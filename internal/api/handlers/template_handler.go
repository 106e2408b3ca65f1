package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Adarsh-MG101/VerifyCert2/internal/api/middleware"
	"github.com/Adarsh-MG101/VerifyCert2/internal/config"
	"github.com/Adarsh-MG101/VerifyCert2/internal/services"
	"github.com/Adarsh-MG101/VerifyCert2/internal/util"
)

// TemplateHandler exposes template management endpoints.
type TemplateHandler struct {
	templates *services.TemplateService
	cfg       config.Config
}

func NewTemplateHandler(templates *services.TemplateService, cfg config.Config) *TemplateHandler {
	return &TemplateHandler{templates: templates, cfg: cfg}
}

// Upload accepts a multipart DOCX upload and registers it as a template.
func (h *TemplateHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("template")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "template file is required"})
		return
	}
	if !strings.EqualFold(filepath.Ext(file.Filename), ".docx") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only .docx templates are supported"})
		return
	}

	name := c.PostForm("name")
	if name == "" {
		name = file.Filename
	}

	saved := filepath.Join(h.cfg.UploadsDir,
		fmt.Sprintf("%d-%s", time.Now().UnixMilli(), util.SanitizeFilename(file.Filename)))
	if err := c.SaveUploadedFile(file, saved); err != nil {
		middleware.GetRequestLogger(c).WithError(err).Error("failed to save uploaded template")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save uploaded file"})
		return
	}

	scope := middleware.GetScope(c)
	tpl, err := h.templates.Upload(c.Request.Context(), scope.OrganizationID, name, saved)
	if err != nil {
		if services.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		middleware.GetRequestLogger(c).WithError(err).Error("template upload failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process template"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"template": tpl})
}

func (h *TemplateHandler) List(c *gin.Context) {
	onlyEnabled := c.Query("enabled") == "true"
	items, err := h.templates.List(middleware.GetScope(c), c.Query("search"), onlyEnabled)
	if err != nil {
		middleware.GetRequestLogger(c).WithError(err).Error("failed to list templates")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list templates"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": items})
}

func (h *TemplateHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	tpl, err := h.templates.Get(middleware.GetScope(c), id)
	if err != nil {
		respondTemplateError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": tpl})
}

type renameRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *TemplateHandler) Rename(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	tpl, err := h.templates.Rename(middleware.GetScope(c), id, req.Name)
	if err != nil {
		respondTemplateError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": tpl})
}

func (h *TemplateHandler) Toggle(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	tpl, err := h.templates.Toggle(middleware.GetScope(c), id)
	if err != nil {
		respondTemplateError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": tpl})
}

// Refresh rescans placeholders and regenerates the thumbnail.
func (h *TemplateHandler) Refresh(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	tpl, err := h.templates.Refresh(c.Request.Context(), middleware.GetScope(c), id)
	if err != nil {
		respondTemplateError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": tpl})
}

func (h *TemplateHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.templates.Delete(middleware.GetScope(c), id); err != nil {
		respondTemplateError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "template deleted"})
}

func respondTemplateError(c *gin.Context, err error) {
	switch {
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		middleware.GetRequestLogger(c).WithError(err).Error("template operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// pathID parses the :id path parameter, responding 400 itself on failure.
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}
