package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Adarsh-MG101/VerifyCert2/internal/api/middleware"
	"github.com/Adarsh-MG101/VerifyCert2/internal/services"
)

// SettingsHandler manages stored SMTP configuration.
type SettingsHandler struct {
	mail *services.MailService
}

func NewSettingsHandler(mail *services.MailService) *SettingsHandler {
	return &SettingsHandler{mail: mail}
}

func (h *SettingsHandler) GetSMTP(c *gin.Context) {
	cfg, err := h.mail.GetSMTPConfig()
	if err != nil {
		middleware.GetRequestLogger(c).WithError(err).Error("failed to load SMTP settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load SMTP settings"})
		return
	}
	// never echo the stored password
	cfg.Password = ""
	c.JSON(http.StatusOK, gin.H{"smtp": cfg})
}

func (h *SettingsHandler) SaveSMTP(c *gin.Context) {
	var cfg services.SMTPConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid SMTP configuration"})
		return
	}
	if err := h.mail.SaveSMTPConfig(&cfg); err != nil {
		middleware.GetRequestLogger(c).WithError(err).Error("failed to save SMTP settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save SMTP settings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "SMTP settings saved"})
}

func (h *SettingsHandler) TestSMTP(c *gin.Context) {
	if err := h.mail.TestConnection(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "SMTP connection OK"})
}
