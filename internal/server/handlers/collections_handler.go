package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dairyops/coop/internal/domain/models"
	"github.com/dairyops/coop/internal/repository/store"
	"github.com/dairyops/coop/internal/service/collections"
	"github.com/dairyops/coop/pkg/clients/pricing"
)

// CollectionsHandler serves collection entry CRUD, bulk import and
// recalculation triggers.
type CollectionsHandler struct {
	svc    *collections.Service
	logger *zap.Logger
}

// NewCollectionsHandler constructs the HTTP handler adapter.
func NewCollectionsHandler(svc *collections.Service, logger *zap.Logger) *CollectionsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CollectionsHandler{svc: svc, logger: logger}
}

// List returns entries filtered by the query string.
func (h *CollectionsHandler) List(c *gin.Context) {
	q := store.Query{
		From:     c.Query("from"),
		To:       c.Query("to"),
		BranchID: c.Query("branchId"),
		Shift:    c.Query("shift"),
		PeriodID: c.Query("periodId"),
		FarmerID: c.Query("farmerId"),
	}

	result, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		h.logger.Error("failed listing collections", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to load collections"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Create stores one new entry with derived fields filled in.
func (h *CollectionsHandler) Create(c *gin.Context) {
	var entry models.CollectionEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		h.logger.Warn("invalid entry payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	saved, err := h.svc.Create(c.Request.Context(), entry)
	if err != nil {
		h.respondSaveError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// Update rewrites an existing entry, re-deriving the computed fields.
func (h *CollectionsHandler) Update(c *gin.Context) {
	var entry models.CollectionEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		h.logger.Warn("invalid entry payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	entry.ID = c.Param("id")

	saved, err := h.svc.Update(c.Request.Context(), entry)
	if err != nil {
		h.respondSaveError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// Import stores a batch of entries.
func (h *CollectionsHandler) Import(c *gin.Context) {
	var entries []models.CollectionEntry
	if err := c.ShouldBindJSON(&entries); err != nil {
		h.logger.Warn("invalid import payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	summary, err := h.svc.Import(c.Request.Context(), entries)
	if err != nil {
		h.logger.Error("bulk import failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "import failed", "saved": summary.Saved, "skipped": summary.Skipped})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Recalculate asks the pricing service to reprice a date range.
func (h *CollectionsHandler) Recalculate(c *gin.Context) {
	var req pricing.RecalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.From == "" || req.To == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required"})
		return
	}

	updated, err := h.svc.Recalculate(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, collections.ErrPricingUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "pricing service not configured"})
			return
		}
		h.logger.Error("recalculation failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "recalculation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

func (h *CollectionsHandler) respondSaveError(c *gin.Context, err error) {
	if errors.Is(err, collections.ErrInvalidEntry) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entry needs date, farmerId and an AM/PM shift"})
		return
	}
	h.logger.Error("failed saving entry", zap.Error(err))
	c.JSON(http.StatusBadGateway, gin.H{"error": "unable to save entry"})
}
