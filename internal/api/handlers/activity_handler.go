package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Adarsh-MG101/VerifyCert2/internal/api/middleware"
	"github.com/Adarsh-MG101/VerifyCert2/internal/services"
)

// ActivityHandler exposes the login/logout audit trail.
type ActivityHandler struct {
	activity *services.ActivityService
}

func NewActivityHandler(activity *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

func (h *ActivityHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	items, err := h.activity.List(limit)
	if err != nil {
		middleware.GetRequestLogger(c).WithError(err).Error("failed to list activity")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list activity"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": items})
}
