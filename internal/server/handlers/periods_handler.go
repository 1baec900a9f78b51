package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dairyops/coop/internal/service/periods"
)

// PeriodsHandler serves the bill-period calendar endpoints.
type PeriodsHandler struct {
	svc    *periods.Service
	logger *zap.Logger
}

// NewPeriodsHandler constructs the HTTP handler adapter.
func NewPeriodsHandler(svc *periods.Service, logger *zap.Logger) *PeriodsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PeriodsHandler{svc: svc, logger: logger}
}

// List returns the rolling window of bill periods plus any locked extras.
func (h *PeriodsHandler) List(c *gin.Context) {
	result, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed listing periods", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to load bill periods"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Classify buckets a date into its owning bill period.
func (h *PeriodsHandler) Classify(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date is required"})
		return
	}

	id, err := h.svc.Classify(c.Request.Context(), date)
	if err != nil {
		h.logger.Error("failed classifying date", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to classify date"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "periodId": id})
}

// Name renders a period id for display.
func (h *PeriodsHandler) Name(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}

	name, err := h.svc.DisplayName(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("failed resolving period name", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to resolve period name"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "name": name})
}
