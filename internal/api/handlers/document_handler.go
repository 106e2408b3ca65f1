package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Adarsh-MG101/VerifyCert2/internal/api/middleware"
	"github.com/Adarsh-MG101/VerifyCert2/internal/docx"
	"github.com/Adarsh-MG101/VerifyCert2/internal/services"
)

// DocumentHandler exposes certificate generation, listing and verification.
type DocumentHandler struct {
	documents *services.DocumentService
	batch     *services.BatchService
}

func NewDocumentHandler(documents *services.DocumentService, batch *services.BatchService) *DocumentHandler {
	return &DocumentHandler{documents: documents, batch: batch}
}

type generateRequest struct {
	TemplateID uint                   `json:"template_id" binding:"required"`
	Data       map[string]interface{} `json:"data" binding:"required"`
}

func (h *DocumentHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "template_id and data are required"})
		return
	}

	res, err := h.documents.Generate(c.Request.Context(), middleware.GetScope(c), req.TemplateID, req.Data)
	if err != nil {
		respondGenerateError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// GenerateBulk accepts a CSV upload and generates one certificate per row.
func (h *DocumentHandler) GenerateBulk(c *gin.Context) {
	templateID, err := strconv.ParseUint(c.PostForm("template_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "template_id is required"})
		return
	}
	file, err := c.FormFile("csv")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "csv file is required"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read csv file"})
		return
	}
	defer f.Close()

	res, err := h.batch.Run(middleware.GetScope(c), uint(templateID), f)
	if err != nil {
		if errors.Is(err, services.ErrBatchFailed) {
			// every row failed; the per-row errors explain why
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":  err.Error(),
				"result": res,
			})
			return
		}
		respondGenerateError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *DocumentHandler) List(c *gin.Context) {
	f := services.ListFilter{Search: c.Query("search")}
	if v, err := strconv.ParseUint(c.Query("template_id"), 10, 32); err == nil {
		f.TemplateID = uint(v)
	}
	if v, err := strconv.Atoi(c.Query("page")); err == nil {
		f.Page = v
	}
	if v, err := strconv.Atoi(c.Query("per_page")); err == nil {
		f.PerPage = v
	}
	if t, err := time.Parse("2006-01-02", c.Query("from")); err == nil {
		f.From = &t
	}
	if t, err := time.Parse("2006-01-02", c.Query("to")); err == nil {
		end := t.Add(24*time.Hour - time.Nanosecond)
		f.To = &end
	}

	items, total, err := h.documents.List(middleware.GetScope(c), f)
	if err != nil {
		middleware.GetRequestLogger(c).WithError(err).Error("failed to list documents")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list documents"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": items, "total": total})
}

// Download streams a document's PDF.
func (h *DocumentHandler) Download(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	doc, err := h.documents.Get(middleware.GetScope(c), id)
	if err != nil {
		if services.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
			return
		}
		middleware.GetRequestLogger(c).WithError(err).Error("failed to load document")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.FileAttachment(doc.FilePath, doc.UniqueID+".pdf")
}

// Verify is the public verification endpoint. It never distinguishes between
// "unknown ID" variants; an unknown ID is simply not valid.
func (h *DocumentHandler) Verify(c *gin.Context) {
	res, err := h.documents.Verify(c.Param("id"))
	if err != nil {
		middleware.GetRequestLogger(c).WithError(err).Error("verification lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "verification is temporarily unavailable"})
		return
	}
	if !res.Valid {
		c.JSON(http.StatusNotFound, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

func respondGenerateError(c *gin.Context, err error) {
	var renderErr *docx.RenderError
	switch {
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &renderErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": renderErr.Error()})
	default:
		middleware.GetRequestLogger(c).WithError(err).Error("certificate generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate certificate"})
	}
}
