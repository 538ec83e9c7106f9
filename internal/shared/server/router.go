package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amk92987/wos-optimizer/internal/account"
	googleauth "github.com/amk92987/wos-optimizer/internal/auth"
	"github.com/amk92987/wos-optimizer/internal/profiles"
	"github.com/amk92987/wos-optimizer/internal/recommend"
	"github.com/amk92987/wos-optimizer/internal/reports"
	"github.com/amk92987/wos-optimizer/internal/saves"
	"github.com/amk92987/wos-optimizer/internal/shared/config"
	"github.com/amk92987/wos-optimizer/internal/shared/metrics"
	"github.com/amk92987/wos-optimizer/internal/shared/server/middleware"
	"github.com/amk92987/wos-optimizer/internal/shared/server/respond"
	"github.com/amk92987/wos-optimizer/internal/uploads"
	"github.com/amk92987/wos-optimizer/internal/usage"
	"github.com/amk92987/wos-optimizer/internal/users"
)

// RouterDeps carries the handlers the router wires up. Nil handlers are
// skipped so partial wirings stay usable in tests.
type RouterDeps struct {
	Config           config.Config
	ProfilesHandler  *profiles.Handler
	SavesHandler     *saves.Handler
	ReportsHandler   *reports.Handler
	RecommendHandler *recommend.Handler
	UsageHandler     *usage.Handler
	UsersHandler     *users.Handler
	AccountHandler   *account.Handler
	UploadsHandler   *uploads.Handler
	GoogleAuth       *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Registered before the middleware chain so scrapes skip auth.
	if deps.Config.Env == "dev" {
		r.GET("/metrics", metrics.Handler())
	}

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    middleware.RateLimitRules(deps.Config.Env),
			GroupFor: middleware.RateGroupFor,
		}),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.UsersHandler != nil {
		deps.UsersHandler.RegisterRoutes(api)
	}
	if deps.ProfilesHandler != nil {
		deps.ProfilesHandler.RegisterRoutes(api)
	}
	if deps.SavesHandler != nil {
		deps.SavesHandler.RegisterRoutes(api)
	}
	if deps.ReportsHandler != nil {
		deps.ReportsHandler.RegisterRoutes(api)
	}
	if deps.RecommendHandler != nil {
		deps.RecommendHandler.RegisterRoutes(api)
	}
	if deps.UsageHandler != nil {
		deps.UsageHandler.RegisterRoutes(api)
	}
	if deps.AccountHandler != nil {
		deps.AccountHandler.RegisterRoutes(api)
	}
	if deps.UploadsHandler != nil {
		deps.UploadsHandler.RegisterRoutes(api)
	}

	if deps.Config.Env == "dev" {
		dev := api.Group("/dev")
		if deps.UsageHandler != nil {
			deps.UsageHandler.RegisterDevRoutes(dev)
		}
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
