package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dairyops/coop/internal/repository/mongodb"
	"github.com/dairyops/coop/internal/service/reports"
)

// ReportsHandler serves the analytical report endpoints.
type ReportsHandler struct {
	svc     *reports.Service
	archive mongodb.Repository
	logger  *zap.Logger
}

// NewReportsHandler constructs the HTTP handler adapter. archive may be nil
// when no snapshot store is configured.
func NewReportsHandler(svc *reports.Service, archive mongodb.Repository, logger *zap.Logger) *ReportsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportsHandler{svc: svc, archive: archive, logger: logger}
}

// BillCheck renders one bill period's payable breakdown, per farmer by
// default or per category with groupBy=category.
func (h *ReportsHandler) BillCheck(c *gin.Context) {
	periodID := c.Query("periodId")
	if periodID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "periodId is required"})
		return
	}

	report, err := h.svc.BillCheck(c.Request.Context(), periodID, c.Query("groupBy"), targetRate(c))
	if err != nil {
		h.logger.Error("bill check failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to build bill check"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// SupplyAnalysis renders per-branch per-shift totals over a date range.
func (h *ReportsHandler) SupplyAnalysis(c *gin.Context) {
	from, to := c.Query("from"), c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required"})
		return
	}

	report, err := h.svc.UnitSupplyAnalysis(c.Request.Context(), from, to, targetRate(c))
	if err != nil {
		h.logger.Error("supply analysis failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to build supply analysis"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// ProcurementComparison renders bill periods side by side.
func (h *ReportsHandler) ProcurementComparison(c *gin.Context) {
	raw := c.Query("periodIds")
	ids := strings.Split(raw, ",")
	ids = trimNonEmpty(ids)
	if len(ids) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "periodIds needs at least two comma-separated ids"})
		return
	}

	report, err := h.svc.ProcurementComparison(c.Request.Context(), ids, targetRate(c))
	if err != nil {
		h.logger.Error("procurement comparison failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to build comparison"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// LatestSnapshot returns the most recently archived daily procurement
// snapshot.
func (h *ReportsHandler) LatestSnapshot(c *gin.Context) {
	if h.archive == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "snapshot archive is not configured"})
		return
	}

	snapshot, err := h.archive.LatestSnapshot(c.Request.Context())
	if err != nil {
		h.logger.Error("latest snapshot lookup failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to read snapshot archive"})
		return
	}
	if snapshot == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no snapshots archived yet"})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func targetRate(c *gin.Context) float64 {
	rate, err := strconv.ParseFloat(c.Query("targetRate"), 64)
	if err != nil {
		return 0
	}
	return rate
}

func trimNonEmpty(values []string) []string {
	out := values[:0]
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
