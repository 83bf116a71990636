package v1

import (
	"log"

	"github.com/gofiber/fiber/v3"

	"linklens/internal/config"
	"linklens/internal/database"
	"linklens/internal/delivery/http/handler"
	"linklens/internal/delivery/http/middleware"
	"linklens/internal/infrastructure/cache"
	"linklens/internal/infrastructure/persistence/postgres"
	"linklens/internal/pkg/jwt"
	"linklens/internal/usecase"
	ucauth "linklens/internal/usecase/auth"
	"linklens/internal/usecase/provision"
	wshub "linklens/internal/ws"
)

func Register(r fiber.Router, cfg config.Config, db database.DB, cacheSvc *cache.Redis, hub *wshub.Hub, logger *log.Logger) {
	if r == nil {
		return
	}

	jwtSvc := jwt.NewHMACService(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiresIn,
		cfg.JWT.RefreshExpiresIn,
	)

	authMw := middleware.NewAuthMiddleware(jwtSvc)

	profileRepo := postgres.NewProfileRepository(db)
	credentialRepo := postgres.NewCredentialRepository(db)
	captureRepo := postgres.NewCaptureRepository(db)

	var sessionCache usecase.SessionCache
	if cacheSvc != nil {
		sessionCache = cacheSvc
	}

	authUC := usecase.NewAuthUsecase(ucauth.NewService(credentialRepo), jwtSvc)
	sessionUC := usecase.NewSessionUsecase(provision.NewService(profileRepo), sessionCache)
	captureUC := usecase.NewCaptureUsecase(captureRepo, sessionCache)
	exportUC := usecase.NewExportUsecase(captureUC)

	authHandler := handler.NewAuthHandler(authUC)
	sessionHandler := handler.NewSessionHandler(sessionUC)
	captureHandler := handler.NewCaptureHandler(captureUC, exportUC, sessionUC)

	authGroup := r.Group("/auth")
	authHandler.RegisterRoutes(authGroup)

	protected := r.Group("", authMw.Middleware())

	sessionHandler.RegisterRoutes(protected)

	capturesGroup := protected.Group("/captures")
	captureHandler.RegisterRoutes(capturesGroup)

	if hub != nil {
		wsHandler := wshub.NewHandler(hub, sessionUC, logger)
		protected.Get("/ws/captures", wsHandler.HandleCapturesWS)
	}
}
