package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	httpapi "github.com/webforge-app/webforge-backend/internal/api/http"
	apimw "github.com/webforge-app/webforge-backend/internal/api/http/middleware"
	"github.com/webforge-app/webforge-backend/internal/auth"
	authmw "github.com/webforge-app/webforge-backend/internal/auth/middleware"
	contenthttp "github.com/webforge-app/webforge-backend/internal/content/http"
	"github.com/webforge-app/webforge-backend/internal/content/service"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	StoreDriver    string
	AllowedOrigins []string
	Store          httpapi.Pinger
	Service        *service.ContentService
	Gate           auth.SessionGate
	// RateLimiter is optional; nil disables write throttling.
	RateLimiter *apimw.RateLimiter
	Registry    *prometheus.Registry
	Logger      *zap.Logger
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(apimw.RequestIDMiddleware(dep.Logger))
	r.Use(httpapi.NewHTTPMetrics(dep.Registry).Middleware())
	r.Use(cors.New(corsConfig(dep.AllowedOrigins)))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.StoreDriver, dep.Store)
	healthHandler.RegisterRoutes(r)
	httpapi.RegisterMetricsRoute(r, dep.Registry)

	api := r.Group("/api")
	api.Use(authmw.SessionMiddleware(dep.Gate, dep.Logger))

	var write []gin.HandlerFunc
	if dep.RateLimiter != nil {
		write = append(write, dep.RateLimiter.Middleware())
	}
	contenthttp.New(dep.Service, dep.Logger).Register(api, write...)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", auth.HeaderUserID, auth.HeaderUserEmail, auth.HeaderUserRole, apimw.HeaderRequestID},
		ExposeHeaders: []string{apimw.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
