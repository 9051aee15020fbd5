package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"worktime/internal/model"
	"worktime/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type exportFunc func(ctx context.Context, user model.User, year int, month time.Month) (*bytes.Buffer, string, error)

// ReportHandler serves monthly reports and their exports
type ReportHandler struct {
	service service.ReportService
	loc     *time.Location
	now     func() time.Time
	logger  *zap.Logger
}

// NewReportHandler creates a new ReportHandler. Missing year or month query
// parameters default to the current month in loc.
func NewReportHandler(s service.ReportService, loc *time.Location, logger *zap.Logger) *ReportHandler {
	if loc == nil {
		loc = time.Local
	}
	return &ReportHandler{service: s, loc: loc, now: time.Now, logger: logger}
}

func (h *ReportHandler) period(c *gin.Context) (int, time.Month, error) {
	now := h.now().In(h.loc)
	year, month := now.Year(), now.Month()

	if yearParam := c.Query("year"); yearParam != "" {
		y, err := strconv.Atoi(yearParam)
		if err != nil {
			return 0, 0, errors.New("invalid year format")
		}
		year = y
	}
	if monthParam := c.Query("month"); monthParam != "" {
		m, err := strconv.Atoi(monthParam)
		if err != nil {
			return 0, 0, errors.New("invalid month format")
		}
		month = time.Month(m)
	}
	return year, month, nil
}

func (h *ReportHandler) reportError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrInvalidPeriod):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNoReportData):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logger.Error(msg, zap.Error(err))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

func (h *ReportHandler) MonthlyReport(c *gin.Context) {
	user, err := getAuthUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	year, month, err := h.period(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.service.MonthlyReport(c.Request.Context(), user, year, month)
	if err != nil {
		h.reportError(c, err, "Failed to build monthly report")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) export(export exportFunc, contentType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := getAuthUser(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		year, month, err := h.period(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		buffer, fileName, err := export(c.Request.Context(), user, year, month)
		if err != nil {
			h.reportError(c, err, "Failed to export monthly report")
			return
		}

		c.Header("Content-Description", "File Transfer")
		c.Header("Content-Disposition", "attachment; filename="+fileName)
		c.Data(http.StatusOK, contentType, buffer.Bytes())
	}
}

// RegisterReportRoutes registers report routes
func (h *ReportHandler) RegisterReportRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc, adminMW gin.HandlerFunc) {
	exportCSV := h.export(h.service.ExportCSV, "text/csv; charset=utf-8")

	reports := rg.Group("/reports")
	reports.Use(authMW)
	{
		reports.GET("/monthly", h.MonthlyReport)
		reports.GET("/monthly/export/csv", exportCSV)
		reports.GET("/monthly/export/xlsx", h.export(h.service.ExportXLSX, xlsxContentType))
	}

	adminRoutes := rg.Group("/admin")
	adminRoutes.Use(authMW)
	adminRoutes.Use(adminMW)
	{
		adminRoutes.GET("/reports/monthly/export/csv", exportCSV)
	}
}
