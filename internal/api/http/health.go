package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Store     string    `json:"store"`
	Driver    string    `json:"driver,omitempty"`
}

type HealthHandler struct {
	serviceName string
	version     string
	driver      string
	store       Pinger
}

func NewHealthHandler(serviceName, version, driver string, store Pinger) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		driver:      driver,
		store:       store,
	}
}

// HealthCheck answers 200 while the store is reachable and 503 otherwise.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	storeStatus := "disabled"
	if h.store != nil {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		if err := h.store.Ping(pingCtx); err != nil {
			storeStatus = "down"
			status, code = "degraded", http.StatusServiceUnavailable
		} else {
			storeStatus = "up"
		}
	}

	c.JSON(code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		Store:     storeStatus,
		Driver:    h.driver,
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
