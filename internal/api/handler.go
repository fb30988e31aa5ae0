package api

import (
	"context"
	"errors"
	"net/http"

	"snapback/pkg/domain"
	"snapback/pkg/logger"
	"snapback/pkg/serrors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Coordinator is the scan lifecycle surface the API boundary needs.
type Coordinator interface {
	Start(ctx context.Context, targetDate string) (domain.ScanStatus, error)
	Status() domain.ScanStatus
}

// ReportStore is the persisted-report surface the API boundary needs.
type ReportStore interface {
	List() ([]string, error)
	Load(date string) (domain.Report, error)
	CSVPath(date string) (string, error)
}

type handler struct {
	coordinator Coordinator
	reports     ReportStore
}

// newEngine builds the route engine. Access logging and CORS are applied by
// the outer middlewares in NewServer, so the engine only carries recovery.
func newEngine(deps Deps) *gin.Engine {
	h := &handler{
		coordinator: deps.Coordinator,
		reports:     deps.Reports,
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/healthz", h.health)

	api := engine.Group("/api")
	api.GET("/reports", h.listReports)
	api.GET("/reports/:date", h.getReport)
	api.GET("/reports/:date/csv", h.downloadCSV)
	api.POST("/scan", h.startScan)
	api.GET("/scan/status", h.scanStatus)

	return engine
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// listReports returns the dates of all persisted reports, newest first.
func (h *handler) listReports(c *gin.Context) {
	dates, err := h.reports.List()
	if err != nil {
		writeError(c, err)

		return
	}
	if dates == nil {
		dates = []string{}
	}

	c.JSON(http.StatusOK, dates)
}

func (h *handler) getReport(c *gin.Context) {
	rep, err := h.reports.Load(c.Param("date"))
	if err != nil {
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, rep)
}

func (h *handler) downloadCSV(c *gin.Context) {
	date := c.Param("date")

	path, err := h.reports.CSVPath(date)
	if err != nil {
		writeError(c, err)

		return
	}

	c.FileAttachment(path, date+".csv")
}

// scanRequest is the optional POST /api/scan body.
type scanRequest struct {
	Date string `json:"date"`
}

// startScan launches a background scan and acknowledges immediately. A run
// already in flight yields a conflict; callers poll the status endpoint.
func (h *handler) startScan(c *gin.Context) {
	var req scanRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})

			return
		}
	}

	status, err := h.coordinator.Start(c.Request.Context(), req.Date)
	if err != nil {
		writeError(c, err)

		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "Scan started", "status": status})
}

func (h *handler) scanStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.coordinator.Status())
}

// writeError maps semantic error kinds to HTTP statuses. Unclassified errors
// are logged and reported as an opaque 500.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, serrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, serrors.ErrBadRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, serrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error(c.Request.Context(), "request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
