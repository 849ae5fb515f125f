package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	directoryApp "accessgate/internal/application/directory"
	reconcileApp "accessgate/internal/application/reconcile"
	"accessgate/internal/infrastructure/cache"
	catalogInfra "accessgate/internal/infrastructure/catalog"
	"accessgate/internal/infrastructure/config"
	"accessgate/internal/infrastructure/database"
	"accessgate/internal/infrastructure/repository"
	"accessgate/internal/infrastructure/scheduler"
	sharedDb "accessgate/internal/shared/db"
	"accessgate/internal/shared/logger"
)

func main() {
	env := "development"
	if len(os.Args) > 1 {
		env = os.Args[1]
	}
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger()
	log.Infow("starting reconcile worker", "environment", env)

	if err := database.Init(&cfg.Database); err != nil {
		log.Fatalw("failed to initialize database", "error", err)
	}
	defer database.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	var locker reconcileApp.Locker
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Warnw("redis unavailable, reconcile locking disabled", "error", err)
	} else {
		log.Infow("redis connection established", "address", cfg.Redis.GetAddr())
		ttl := time.Duration(cfg.Reconcile.LockTTLSeconds) * time.Second
		locker = cache.NewReconcileLock(redisClient, cache.ReconcileLockPrefix, ttl)
	}

	groupRepo := repository.NewGroupRepository(database.Get(), log)
	userRepo := repository.NewUserRepository(database.Get(), log)
	membershipRepo := repository.NewMembershipRepository(database.Get(), log)
	members := directoryApp.NewMemberResolver(groupRepo, membershipRepo, log)

	var fetcher catalogInfra.Fetcher
	if cfg.Catalog.S3Bucket != "" {
		fetcher = catalogInfra.NewS3Fetcher(&cfg.Catalog, log)
	}
	catalogStore := catalogInfra.NewStore(&cfg.Catalog, fetcher, log)

	service := reconcileApp.NewService(
		groupRepo,
		userRepo,
		membershipRepo,
		members,
		sharedDb.NewTransactionManager(database.Get()),
		locker,
		time.Duration(cfg.Reconcile.EntryTimeoutSecs)*time.Second,
		log,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interval := time.Duration(cfg.Reconcile.IntervalMinutes) * time.Minute
	sched := scheduler.NewReconcileScheduler(service, catalogStore, interval, log)
	sched.Start(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Infow("received signal, shutting down", "signal", sig)

	sched.Stop()
	cancel()
	log.Infow("reconcile worker stopped")
}
