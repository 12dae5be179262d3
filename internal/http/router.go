package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/arbor/internal/http/handlers"
	httpMW "github.com/yungbote/arbor/internal/http/middleware"
	"github.com/yungbote/arbor/internal/observability"
	"github.com/yungbote/arbor/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	FolderHandler *httpH.FolderHandler
	HealthHandler *httpH.HealthHandler

	// AuthMiddleware guards /api when set; a nil value leaves the API open,
	// which is the local dev default.
	AuthMiddleware *httpMW.AuthMiddleware

	Metrics        *observability.Metrics
	AllowedOrigins []string
	ServiceName    string
	TracingEnabled bool
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		name := cfg.ServiceName
		if name == "" {
			name = "arbor"
		}
		r.Use(otelgin.Middleware(name))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS(cfg.AllowedOrigins))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.AuthMiddleware != nil {
			api.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Folders
		if cfg.FolderHandler != nil {
			api.POST("/folders", cfg.FolderHandler.CreateFolder)
			api.GET("/folders/roots", cfg.FolderHandler.ListRoots)
			api.GET("/folders/:id", cfg.FolderHandler.GetFolder)
			api.GET("/folders/:id/children", cfg.FolderHandler.ListChildren)
			api.GET("/folders/:id/ancestors", cfg.FolderHandler.ListAncestors)
			api.GET("/folders/:id/subtree", cfg.FolderHandler.GetSubtree)
			api.POST("/folders/:id/move", cfg.FolderHandler.MoveFolder)
			api.DELETE("/folders/:id", cfg.FolderHandler.DeleteFolder)
		}
	}

	return r
}
