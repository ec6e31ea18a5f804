package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"smartcampus/portal/internal/cache"
	"smartcampus/portal/internal/config"
	"smartcampus/portal/internal/middleware"
	"smartcampus/portal/internal/service"
)

// HealthCheck pings one backing service.
type HealthCheck func(ctx context.Context) error

type Deps struct {
	Log       zerolog.Logger
	Config    *config.AppConfig
	Auth      *service.AuthService
	Sessions  *service.SessionService
	Profiles  *service.ProfileService
	Reference *service.ReferenceService
	Throttle  *cache.LoginThrottle
	Database  HealthCheck
	Cache     HealthCheck
}

type HandlerSet struct {
	log        zerolog.Logger
	cfg        *config.AppConfig
	auth       *service.AuthService
	sessions   *service.SessionService
	profiles   *service.ProfileService
	reference  *service.ReferenceService
	throttle   *cache.LoginThrottle
	dbCheck    HealthCheck
	cacheCheck HealthCheck
}

func NewHandlerSet(deps Deps) HandlerSet {
	return HandlerSet{
		log:        deps.Log,
		cfg:        deps.Config,
		auth:       deps.Auth,
		sessions:   deps.Sessions,
		profiles:   deps.Profiles,
		reference:  deps.Reference,
		throttle:   deps.Throttle,
		dbCheck:    deps.Database,
		cacheCheck: deps.Cache,
	}
}

// Routes mounts every endpoint under router.
func (h HandlerSet) Routes(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/login-nfc", h.LoginNFC)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", middleware.Auth(h.sessions), h.Logout)

		protected := v1.Group("")
		protected.Use(middleware.Auth(h.sessions))
		protected.GET("/me", h.Me)
		protected.GET("/sessions", h.ListSessions)
		protected.DELETE("/sessions/:deviceId", h.RevokeSession)
		protected.GET("/dashboard", h.Dashboard)
		protected.GET("/profile", h.GetProfile)
		protected.PUT("/profile", h.UpdateProfile)
		protected.POST("/profile/avatar", h.UploadAvatar)

		admin := v1.Group("/admin")
		admin.Use(
			middleware.Auth(h.sessions),
			middleware.RequireRoles(h.cfg.Security.AdminRoles...),
		)
		admin.GET("/classes", h.AdminClasses)
		admin.GET("/filieres", h.AdminFilieres)
		admin.GET("/matieres", h.AdminMatieres)
	}
}
