package handler

import (
	"errors"
	"net/http"
	"strconv"

	"worktime/internal/geo"
	"worktime/internal/model"
	"worktime/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionHandler handles check-in, check-out and log listing
type SessionHandler struct {
	service service.SessionService
	logger  *zap.Logger
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(s service.SessionService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{service: s, logger: logger}
}

type coordinateQuery struct {
	Lat *float64 `form:"lat" binding:"required"`
	Lng *float64 `form:"lng" binding:"required"`
}

// sessionErrorStatus maps session and validation errors to HTTP status codes
func sessionErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrMissingJobName),
		errors.Is(err, service.ErrMissingLocation),
		errors.Is(err, service.ErrInvalidLocation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrLogNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAlreadyActive), errors.Is(err, service.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, service.ErrOutOfRange):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *SessionHandler) fail(c *gin.Context, err error, msg string) {
	status := sessionErrorStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(msg, zap.Error(err))
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (h *SessionHandler) CheckIn(c *gin.Context) {
	user, err := getAuthUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req model.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	log, err := h.service.CheckIn(c.Request.Context(), user.Username, req)
	if err != nil {
		h.fail(c, err, "Failed to check in")
		return
	}
	c.JSON(http.StatusCreated, log)
}

func (h *SessionHandler) ActiveJob(c *gin.Context) {
	user, err := getAuthUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	log, err := h.service.ActiveJob(c.Request.Context(), user.Username)
	if err != nil {
		h.fail(c, err, "Failed to load active job")
		return
	}
	c.JSON(http.StatusOK, gin.H{"active": log})
}

func (h *SessionHandler) Proximity(c *gin.Context) {
	user, err := getAuthUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var q coordinateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng query parameters are required"})
		return
	}

	preview, err := h.service.PreviewCheckout(c.Request.Context(), user.Username, model.Location{Lat: *q.Lat, Lng: *q.Lng})
	if err != nil {
		h.fail(c, err, "Failed to evaluate check-out distance")
		return
	}
	c.JSON(http.StatusOK, preview)
}

func (h *SessionHandler) CheckOut(c *gin.Context) {
	user, err := getAuthUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req model.CheckOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	log, err := h.service.CheckOut(c.Request.Context(), user, c.Param("id"), req)
	if err != nil {
		h.fail(c, err, "Failed to check out")
		return
	}
	c.JSON(http.StatusOK, log)
}

func (h *SessionHandler) GetLogs(c *gin.Context) {
	user, err := getAuthUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	limit := 0
	if limitParam := c.Query("limit"); limitParam != "" {
		limit, err = strconv.Atoi(limitParam)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit, use a non-negative integer"})
			return
		}
	}

	logs, err := h.service.GetLogs(c.Request.Context(), user, limit)
	if err != nil {
		h.fail(c, err, "Failed to retrieve work logs")
		return
	}
	c.JSON(http.StatusOK, logs)
}

// Distance is the unauthenticated haversine helper
func (h *SessionHandler) Distance(c *gin.Context) {
	var q struct {
		Lat1 *float64 `form:"lat1" binding:"required"`
		Lng1 *float64 `form:"lng1" binding:"required"`
		Lat2 *float64 `form:"lat2" binding:"required"`
		Lng2 *float64 `form:"lng2" binding:"required"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat1, lng1, lat2 and lng2 query parameters are required"})
		return
	}

	from := model.Location{Lat: *q.Lat1, Lng: *q.Lng1}
	to := model.Location{Lat: *q.Lat2, Lng: *q.Lng2}
	if !from.Valid() || !to.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrInvalidLocation.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"distanceMeters": geo.DistanceMeters(from, to)})
}

// RegisterSessionRoutes registers session, log and geo routes
func (h *SessionHandler) RegisterSessionRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	sessions := rg.Group("/sessions")
	sessions.Use(authMW)
	{
		sessions.POST("/check-in", h.CheckIn)
		sessions.GET("/active", h.ActiveJob)
		sessions.GET("/active/proximity", h.Proximity)
		sessions.POST("/:id/check-out", h.CheckOut) // Service layer handles ownership
	}

	rg.GET("/logs", authMW, h.GetLogs)
	rg.GET("/geo/distance", h.Distance)
}
