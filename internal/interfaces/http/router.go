// Package http wires the gin router and the HTTP server lifecycle.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/arqgene/dockprep/internal/infrastructure/monitoring/logging"
	"github.com/arqgene/dockprep/internal/infrastructure/monitoring/prometheus"
	"github.com/arqgene/dockprep/internal/interfaces/http/handlers"
	"github.com/arqgene/dockprep/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and infrastructure the route tree
// needs.  Nil handlers skip their routes, which keeps tests small.
type RouterConfig struct {
	PrepareHandler *handlers.PrepareHandler
	DockHandler    *handlers.DockHandler
	VerifyHandler  *handlers.VerifyHandler
	HealthHandler  *handlers.HealthHandler

	Logger        logging.Logger
	Metrics       *prometheus.Metrics
	MaxUploadSize int64
}

// NewRouter builds the full route tree.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogger(cfg.Logger))
	}
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.MaxUploadSize > 0 {
		r.MaxMultipartMemory = cfg.MaxUploadSize
	}

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api/v1")
	if h := cfg.PrepareHandler; h != nil {
		api.POST("/prepare/protein", h.PrepareProtein)
		api.POST("/prepare/protein/upload", h.PrepareProteinUpload)
		api.POST("/prepare/ligand", h.PrepareLigand)
		api.POST("/prepare/ligand/upload", h.PrepareLigandUpload)
	}
	if h := cfg.VerifyHandler; h != nil {
		api.POST("/verify", h.Verify)
		api.POST("/weight", h.Weight)
	}
	if h := cfg.DockHandler; h != nil {
		api.POST("/dock", h.Dock)
		api.GET("/jobs/:id", h.GetJob)
		api.GET("/jobs/:id/poses", h.ListPoses)
		api.GET("/jobs/:id/poses/:index/complex", h.DownloadComplex)
	}

	return r
}
