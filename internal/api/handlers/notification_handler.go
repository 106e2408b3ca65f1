package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Adarsh-MG101/VerifyCert2/internal/api/middleware"
	"github.com/Adarsh-MG101/VerifyCert2/internal/services"
)

// NotificationHandler exposes in-app notifications.
type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) List(c *gin.Context) {
	items, err := h.notifications.List(c.Query("unread") == "true")
	if err != nil {
		middleware.GetRequestLogger(c).WithError(err).Error("failed to list notifications")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": items})
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	if err := h.notifications.MarkAsRead(c.Param("id")); err != nil {
		if services.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}
		middleware.GetRequestLogger(c).WithError(err).Error("failed to mark notification read")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification marked as read"})
}

func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	if err := h.notifications.MarkAllAsRead(); err != nil {
		middleware.GetRequestLogger(c).WithError(err).Error("failed to mark notifications read")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "all notifications marked as read"})
}
