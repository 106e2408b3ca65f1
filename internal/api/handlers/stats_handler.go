package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Adarsh-MG101/VerifyCert2/internal/api/middleware"
	"github.com/Adarsh-MG101/VerifyCert2/internal/models"
	"github.com/Adarsh-MG101/VerifyCert2/internal/services"
)

// StatsHandler aggregates dashboard counters.
type StatsHandler struct {
	db *gorm.DB
}

func NewStatsHandler(db *gorm.DB) *StatsHandler {
	return &StatsHandler{db: db}
}

func (h *StatsHandler) Get(c *gin.Context) {
	scope := middleware.GetScope(c)

	var templates, documents, recentDocuments int64
	if err := h.scoped(scope, &models.Template{}).Count(&templates).Error; err != nil {
		h.fail(c, err)
		return
	}
	if err := h.scoped(scope, &models.Document{}).Count(&documents).Error; err != nil {
		h.fail(c, err)
		return
	}
	weekAgo := time.Now().AddDate(0, 0, -7)
	if err := h.scoped(scope, &models.Document{}).
		Where("created_at >= ?", weekAgo).Count(&recentDocuments).Error; err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"templates":        templates,
		"documents":        documents,
		"documents_7_days": recentDocuments,
	})
}

func (h *StatsHandler) scoped(scope services.Scope, model interface{}) *gorm.DB {
	q := h.db.Model(model)
	if !scope.SuperAdmin {
		q = q.Where("organization_id = ?", scope.OrganizationID)
	}
	return q
}

func (h *StatsHandler) fail(c *gin.Context, err error) {
	middleware.GetRequestLogger(c).WithError(err).Error("failed to compute stats")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute stats"})
}
