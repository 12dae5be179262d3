package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/arbor/internal/config"
	"github.com/yungbote/arbor/internal/http"
	httpH "github.com/yungbote/arbor/internal/http/handlers"
	httpMW "github.com/yungbote/arbor/internal/http/middleware"
	"github.com/yungbote/arbor/internal/observability"
	"github.com/yungbote/arbor/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health *httpH.HealthHandler
	Folder *httpH.FolderHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(),
		Folder: httpH.NewFolderHandler(log, services.Folder),
	}
}

func wireMiddleware(log *logger.Logger, cfg config.Config) Middleware {
	log.Info("Wiring middleware...")
	mw := Middleware{}
	if cfg.Auth.JWTSecret != "" {
		mw.Auth = httpMW.NewAuthMiddleware(log, cfg.Auth.JWTSecret)
	} else {
		log.Warn("JWT_SECRET_KEY unset, API routes are unauthenticated")
	}
	return mw
}

func wireRouter(log *logger.Logger, cfg config.Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:            log,
		FolderHandler:  handlers.Folder,
		HealthHandler:  handlers.Health,
		AuthMiddleware: middleware.Auth,
		Metrics:        metrics,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		ServiceName:    cfg.Server.ServiceName,
		TracingEnabled: observability.TracingEnabled(),
	})
}
