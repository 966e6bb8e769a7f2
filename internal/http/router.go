package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/taskpit/taskpit/internal/auth"
	"github.com/taskpit/taskpit/internal/cache"
	"github.com/taskpit/taskpit/internal/config"
	"github.com/taskpit/taskpit/internal/http/handlers"
	"github.com/taskpit/taskpit/internal/http/middlewares"
	"github.com/taskpit/taskpit/internal/observability"
	"github.com/taskpit/taskpit/internal/placeholder"
	"github.com/taskpit/taskpit/internal/repo/postgres"
)

// NewRouter wires every route group to its explicit handler/gate chain.
// Route registration lives here and nowhere else.
func NewRouter(log *slog.Logger, pool *pgxpool.Pool, todoCache *cache.Cache, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" && cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("taskpit"))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(prom.GinHandleMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(1 << 20))

	// health + metrics
	ping := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		if pool != nil {
			if err := pool.Ping(ctx); err != nil {
				return err
			}
		}

		if todoCache != nil {
			if err := todoCache.Ping(ctx); err != nil {
				return err
			}
		}

		return nil
	}

	health := handlers.NewHealthHandler(ping)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// wire up repositories and collaborators
	usersRepo := postgres.NewUsersRepo(pool, prom)
	tasksRepo := postgres.NewTasksRepo(pool, prom)
	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL())
	importer := placeholder.New(cfg.ImportBaseURL, cfg.ImportTimeout(), todoCache, prom)

	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, jwtManager)
	tasksHandler := handlers.NewTasksHandler(tasksRepo, importer)

	authGate := middlewares.NewAuthMiddleware(jwtManager, usersRepo)
	ownerGate := middlewares.NewTaskOwnerMiddleware(tasksRepo)

	publicLimiter := middlewares.NewRateLimiter(30, time.Minute)
	taskLimiter := middlewares.NewRateLimiter(120, time.Minute)

	v1 := r.Group("/v1")

	authRoutes := v1.Group("/auth")
	authRoutes.Use(publicLimiter.RateLimiterMiddleware(middlewares.KeyByIP))
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.GET("/whoami", authGate.RequireAuth(), authHandler.Whoami)

	taskRoutes := v1.Group("/tasks")
	taskRoutes.Use(authGate.RequireAuth())
	taskRoutes.Use(taskLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP))
	taskRoutes.POST("", tasksHandler.CreateTask)
	taskRoutes.GET("", tasksHandler.ListTasks)
	taskRoutes.POST("/import", tasksHandler.ImportTasks)

	owned := taskRoutes.Group("/:id")
	owned.Use(ownerGate.RequireOwner())
	owned.GET("", tasksHandler.GetTask)
	owned.PUT("", tasksHandler.UpdateTask)
	owned.DELETE("", tasksHandler.DeleteTask)

	return r
}
