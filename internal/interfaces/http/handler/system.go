package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	catalogapp "github.com/shopbot/backend/internal/application/catalog"
	"github.com/shopbot/backend/internal/infrastructure/config"
	"github.com/shopbot/backend/internal/infrastructure/persistence"
	"github.com/shopbot/backend/internal/interfaces/http/dto"
)

// Storage is the slice of the database the ops endpoints need
type Storage interface {
	Ping() error
	Stats() (persistence.ConnectionStats, error)
}

// SystemHandler serves the liveness and system information endpoints
type SystemHandler struct {
	db        Storage
	products  *catalogapp.ProductService
	app       config.AppConfig
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db Storage, products *catalogapp.ProductService, app config.AppConfig) *SystemHandler {
	return &SystemHandler{
		db:        db,
		products:  products,
		app:       app,
		startTime: time.Now(),
	}
}

// HealthResponse represents the liveness probe response
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// Health reports liveness. The database is pinged so a wedged connection
// pool flips the probe to failing.
func (h *SystemHandler) Health(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse("UNHEALTHY", "database unreachable"))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(HealthResponse{Status: "ok"}))
}

// DatabaseInfo represents connection pool statistics
type DatabaseInfo struct {
	OpenConnections int `json:"open_connections"`
	InUse           int `json:"in_use"`
	Idle            int `json:"idle"`
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name        string        `json:"name" example:"shopbot"`
	Version     string        `json:"version" example:"1.0.0"`
	Environment string        `json:"environment" example:"production"`
	GoVersion   string        `json:"go_version" example:"go1.24.2"`
	Uptime      string        `json:"uptime" example:"1h30m45s"`
	Products    int64         `json:"products"`
	Database    *DatabaseInfo `json:"database,omitempty"`
}

// GetSystemInfo returns build identity, uptime, catalog size and connection
// pool statistics
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	count, err := h.products.CountProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("PERSISTENCE_ERROR", "failed to count products"))
		return
	}

	info := SystemInfoResponse{
		Name:        h.app.Name,
		Version:     h.app.Version,
		Environment: h.app.Env,
		GoVersion:   runtime.Version(),
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		Products:    count,
	}
	if stats, err := h.db.Stats(); err == nil {
		info.Database = &DatabaseInfo{
			OpenConnections: stats.OpenConnections,
			InUse:           stats.InUse,
			Idle:            stats.Idle,
		}
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(info))
}
