package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Adarsh-MG101/VerifyCert2/internal/api/middleware"
	"github.com/Adarsh-MG101/VerifyCert2/internal/config"
	"github.com/Adarsh-MG101/VerifyCert2/internal/qr"
	"github.com/Adarsh-MG101/VerifyCert2/internal/services"
)

// EmailHandler sends generated certificates by email.
type EmailHandler struct {
	mail      *services.MailService
	documents *services.DocumentService
	cfg       config.Config
}

func NewEmailHandler(mail *services.MailService, documents *services.DocumentService, cfg config.Config) *EmailHandler {
	return &EmailHandler{mail: mail, documents: documents, cfg: cfg}
}

type sendCertificateRequest struct {
	DocumentID uint   `json:"document_id" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
}

func (h *EmailHandler) SendCertificate(c *gin.Context) {
	var req sendCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document_id and a valid email are required"})
		return
	}

	if !h.mail.IsConfigured() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "SMTP is not configured"})
		return
	}

	doc, err := h.documents.Get(middleware.GetScope(c), req.DocumentID)
	if err != nil {
		if services.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
			return
		}
		middleware.GetRequestLogger(c).WithError(err).Error("failed to load document")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	verifyURL := qr.VerificationURL(h.cfg.BaseURL, doc.UniqueID)
	res, err := h.documents.Verify(doc.UniqueID)
	templateName := ""
	if err == nil && res.Valid {
		templateName = res.TemplateName
	}

	if err := h.mail.SendCertificate(req.Email, doc.UniqueID, templateName, verifyURL, doc.FilePath); err != nil {
		middleware.GetRequestLogger(c).WithError(err).Error("failed to send certificate email")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "certificate sent"})
}
