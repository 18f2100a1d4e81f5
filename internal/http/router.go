package http

import (
	"log/slog"
	"net/http"

	"github.com/geocoder89/listinghub/internal/accounts"
	"github.com/geocoder89/listinghub/internal/auth"
	"github.com/geocoder89/listinghub/internal/config"
	"github.com/geocoder89/listinghub/internal/http/handlers"
	"github.com/geocoder89/listinghub/internal/http/middlewares"
	"github.com/geocoder89/listinghub/internal/listings"
	"github.com/geocoder89/listinghub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Dependencies are the stores and collaborators the routes run on.
type Dependencies struct {
	Users accounts.UserRepository
	Posts listings.Repository
	// nil reports healthy
	Ping handlers.Pinger

	// optional; nil disables /metrics and the metrics middleware
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	// shared counter for auth throttling; in-process when nil
	RateCounter middlewares.Counter
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Dependencies) *gin.Engine {
	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	r.Use(otelgin.Middleware(observability.ServiceName))

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	tokens := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL())
	authMW := middlewares.NewAuthMiddleware(tokens)

	accountSvc := accounts.NewService(deps.Users, cfg.BcryptCost)
	postSvc := listings.NewService(deps.Posts)

	var observer handlers.AuthObserver
	if deps.Prom != nil {
		observer = deps.Prom
	}

	authHandler := handlers.NewAuthHandler(accountSvc, tokens, observer)
	postsHandler := handlers.NewPostsHandler(postSvc)
	health := handlers.NewHealthHandler(deps.Ping)

	limiter := middlewares.NewRateLimiter(deps.RateCounter, cfg.AuthRateLimit, cfg.AuthRateWindow(), log)

	r.GET("/healthz", health.Healthz)
	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)

	// after the limiter and the auth gate, so 429 and 401 win over 415
	jsonBody := middlewares.RequireJSON()

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/health", health.Health)

		api.POST("/register", limiter.Middleware("register", middlewares.KeyByIP), jsonBody, authHandler.Register)
		api.POST("/login", limiter.Middleware("login", middlewares.KeyByIP), jsonBody, authHandler.Login)

		api.GET("/posts", postsHandler.List)
		api.GET("/posts/:id", postsHandler.Get)

		private := api.Group("")
		private.Use(authMW.RequireAuth())
		{
			private.GET("/profile", authHandler.Profile)
			private.POST("/posts", jsonBody, postsHandler.Create)
			private.PUT("/posts/:id", jsonBody, postsHandler.Update)
			private.DELETE("/posts/:id", postsHandler.Delete)
		}
	}

	r.NoRoute(func(ctx *gin.Context) {
		handlers.RespondError(ctx, http.StatusNotFound, "Route not found", nil)
	})

	return r
}
