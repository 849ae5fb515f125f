// Package http wires the HTTP surface: repositories, services, handlers, and
// the gin router serving them.
package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	accessApp "accessgate/internal/application/access"
	directoryApp "accessgate/internal/application/directory"
	reconcileApp "accessgate/internal/application/reconcile"
	"accessgate/internal/infrastructure/cache"
	catalogInfra "accessgate/internal/infrastructure/catalog"
	"accessgate/internal/infrastructure/config"
	"accessgate/internal/infrastructure/incident"
	"accessgate/internal/infrastructure/repository"
	"accessgate/internal/interfaces/http/handlers"
	"accessgate/internal/interfaces/http/middleware"
	sharedDb "accessgate/internal/shared/db"
	"accessgate/internal/shared/logger"
)

// Router represents the HTTP router configuration
type Router struct {
	engine *gin.Engine
}

// NewRouter builds the full dependency graph and registers all routes.
// redisClient may be nil; reconciliation then runs without cross-instance
// locking.
func NewRouter(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log logger.Interface) *Router {
	if cfg.Server.Mode == "production" || cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.Logger(log))

	groupRepo := repository.NewGroupRepository(db, log)
	userRepo := repository.NewUserRepository(db, log)
	membershipRepo := repository.NewMembershipRepository(db, log)
	requestRepo := repository.NewAccessRequestRepository(db, log)

	var fetcher catalogInfra.Fetcher
	if cfg.Catalog.S3Bucket != "" {
		fetcher = catalogInfra.NewS3Fetcher(&cfg.Catalog, log)
	}
	catalogStore := catalogInfra.NewStore(&cfg.Catalog, fetcher, log)

	members := directoryApp.NewMemberResolver(groupRepo, membershipRepo, log)
	incidents := incident.NewClient(&cfg.PagerDuty, log)
	decisionEngine := accessApp.NewDecisionEngine(membershipRepo, members, incidents, log)
	evaluateUseCase := accessApp.NewEvaluateUseCase(requestRepo, groupRepo, userRepo, catalogStore, decisionEngine, log)

	var locker reconcileApp.Locker
	if redisClient != nil {
		ttl := time.Duration(cfg.Reconcile.LockTTLSeconds) * time.Second
		locker = cache.NewReconcileLock(redisClient, cache.ReconcileLockPrefix, ttl)
	}
	reconcileService := reconcileApp.NewService(
		groupRepo,
		userRepo,
		membershipRepo,
		members,
		sharedDb.NewTransactionManager(db),
		locker,
		time.Duration(cfg.Reconcile.EntryTimeoutSecs)*time.Second,
		log,
	)

	accessHandler := handlers.NewAccessRequestHandler(evaluateUseCase, log)
	reconcileHandler := handlers.NewReconcileHandler(reconcileService, catalogStore, log)
	healthHandler := handlers.NewHealthHandler(db)

	engine.GET("/health", healthHandler.Check)

	v1 := engine.Group("/api/v1")
	{
		v1.POST("/access-requests/:id/evaluate", accessHandler.Evaluate)
		v1.POST("/reconcile", reconcileHandler.Run)
	}

	return &Router{engine: engine}
}

// Engine returns the underlying gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Run starts the HTTP server on addr.
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
