package routes

import (
	"fmt"

	"cityfixer-be/config"
	"cityfixer-be/controllers"
	"cityfixer-be/middlewares"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options holds the edge settings applied to the engine.
type Options struct {
	CORSOrigin string
	// TrustedProxies may set X-Forwarded-For. With none, the client IP is
	// always the socket peer.
	TrustedProxies []string
}

// SetupRoutes installs global middleware and every route on r
func SetupRoutes(r *gin.Engine, h *controllers.Handler, limiter middlewares.IssueLimiter, opts Options) error {
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return fmt.Errorf("trusted proxies: %w", err)
	}

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.Logger(config.GetLogger()))
	r.Use(middlewares.Metrics())
	r.Use(middlewares.SecurityHeaders())

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middlewares.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middlewares.RequestIDHeader},
	}
	if opts.CORSOrigin == "" || opts.CORSOrigin == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = []string{opts.CORSOrigin}
	}
	r.Use(cors.New(corsConfig))

	r.GET("/", controllers.Home)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	IssueRoutes(r, h, limiter)
	PaymentRoutes(r, h)
	return nil
}
