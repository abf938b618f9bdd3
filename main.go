package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"postpilot/domain/repository"
	"postpilot/infrastructure/cache"
	"postpilot/infrastructure/clients/platforms"
	"postpilot/infrastructure/clients/worker"
	"postpilot/infrastructure/configuration"
	"postpilot/infrastructure/logger"
	"postpilot/infrastructure/objectstore"
	"postpilot/infrastructure/persistence"
	"postpilot/infrastructure/pubsub"
	"postpilot/infrastructure/servicebus"
	httpHandler "postpilot/interfaces/http"
	"postpilot/server"
	"postpilot/usecase"

	"golang.org/x/sync/errgroup"
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	// Load env from files (non-destructive; OS env still has precedence)
	configuration.LoadEnvFromFile("config.env", ".env")

	app := configuration.C.App

	mongoDb, err := persistence.NewMongoDb(
		configuration.C.Database.Mongo.Host,
		configuration.C.Database.Mongo.Port,
		configuration.C.Database.Mongo.User,
		configuration.C.Database.Mongo.Password,
		configuration.C.Database.Mongo.Name,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("MongoDB not available - post and usage features degraded")
		mongoDb = nil
	} else if err := persistence.PingMongo(ctx, mongoDb); err != nil {
		logger.GetLogger().WithField("error", err).Warn("MongoDB ping failed - post and usage features degraded")
		mongoDb = nil
	} else {
		logger.GetLogger().Info("MongoDB connected successfully")
	}

	auditDb, auditRepo := InitiateAuditStore()
	if auditDb != nil {
		defer func() { _ = auditDb.Close() }()
	}

	redisClient, err := cache.NewCache(
		ctx,
		fmt.Sprintf("%s:%s", configuration.C.RedisClient.Host, configuration.C.RedisClient.Port),
		configuration.C.RedisClient.Username,
		configuration.C.RedisClient.Password,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not available - publish lock runs fail-open")
		redisClient = nil
	}
	publishLock := cache.NewPublishLock(redisClient)

	var resolver repository.IArtifactResolver
	storageClient, err := objectstore.NewStorageClient(ctx)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Object storage not available - publishing disabled until configured")
	} else {
		resolver = objectstore.NewGCSResolver(
			storageClient,
			configuration.C.Storage.Bucket,
			time.Duration(configuration.C.Storage.SignedURLTTLMin)*time.Minute,
		)
	}

	pubSubClient, err := pubsub.NewPubSub(ctx, configuration.C.Pubsub.ProjectID)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("PubSub not available - result events disabled")
		pubSubClient = nil
	}
	var resultPublisher pubsub.IResultPublisher
	if pubSubClient != nil {
		resultPublisher = pubsub.NewResultPublisher(pubSubClient, configuration.C.Pubsub.ResultTopic)
	}

	azServiceBusClient, err := servicebus.NewServiceBus(ctx, configuration.C.ServiceBus.Namespace)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Azure Service Bus not available - failure alerts disabled")
		azServiceBusClient = nil
	}
	var failureNotifier servicebus.IFailureNotifier
	if azServiceBusClient != nil {
		failureNotifier = servicebus.NewFailureNotifier(azServiceBusClient, configuration.C.ServiceBus.FailureQueue)
	}

	workerClient := worker.NewWorkerClient(configuration.C.Worker.Endpoint, configuration.C.Worker.ServiceKey)

	postRepository := persistence.NewPostRepository(mongoDb, configuration.C.Database.Mongo.Name)
	usageRepository := persistence.NewUsageStatsRepository(mongoDb, configuration.C.Database.Mongo.Name)

	publishers := InitiatePublishers()

	publishUsecase := usecase.NewPublishUsecase(
		postRepository,
		resolver,
		publishers,
		publishLock,
		auditRepo,
		usageRepository,
		resultPublisher,
		failureNotifier,
		usecase.PublishOptions{
			MaxConcurrent:      configuration.C.Publish.MaxConcurrent,
			PerPlatformTimeout: time.Duration(configuration.C.Publish.PerPlatformTimeout) * time.Second,
		},
	)
	sweeperUsecase := usecase.NewSweeperUsecase(usageRepository, usecase.SweeperOptions{
		RetentionDays: configuration.C.Sweeper.RetentionDays,
		Concurrency:   configuration.C.Sweeper.Concurrency,
	})
	signedURLUsecase := usecase.NewSignedURLUsecase(
		workerClient,
		configuration.C.Storage.Bucket,
		configuration.C.Storage.AccountID,
	)

	publishHandler := httpHandler.NewPublishHandler(publishUsecase, postRepository, auditRepo)
	storageHandler := httpHandler.NewStorageHandler(signedURLUsecase)
	sweepHandler := httpHandler.NewSweepHandler(sweeperUsecase)

	router := server.InitiateRouter(publishHandler, storageHandler, sweepHandler)

	// Usage-retention sweeps also run in-process so a missed cron trigger
	// never lets stale counters pile up.
	g.Go(func() error {
		return runSweepSchedule(ctx, "daily", nextDailyRun, sweeperUsecase.SweepDaily)
	})
	g.Go(func() error {
		return runSweepSchedule(ctx, "weekly", nextWeeklyRun, sweeperUsecase.SweepWeekly)
	})

	port := app.Port
	logger.GetLogger().WithFields(map[string]interface{}{"port": port, "tls": app.TLSEnabled}).Info("Starting application")
	g.Go(func() error {
		httpServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}
		if app.TLSEnabled {
			cert := app.TLSCertFile
			key := app.TLSKeyFile
			if cert == "" || key == "" {
				logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
				if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			}
			logger.GetLogger().WithFields(map[string]interface{}{"cert": cert, "key": key}).Info("Serving HTTPS")
			if err := httpServer.ListenAndServeTLS(cert, key); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}

// InitiateAuditStore connects the publication audit log. Contract: MSSQL in
// production (or with DB_VENDOR=mssql), PostgreSQL otherwise. A nil repo means
// auditing is disabled; publishing still works without it.
func InitiateAuditStore() (*sql.DB, repository.IPublicationAudit) {
	env := os.Getenv("ENV")
	if os.Getenv("DB_VENDOR") == "mssql" || env == "production" || env == "prod" {
		db, err := persistence.NewMSSQLDB()
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Cannot connect to MSSQL - publication audit disabled")
			return nil, nil
		}
		if err := persistence.EnsurePublicationAuditSchemaMSSQL(db); err != nil {
			logger.GetLogger().WithField("error", err).Error("failed ensuring publication audit schema")
		}
		return db, persistence.NewAuditRepositoryMSSQL(db)
	}

	db, err := persistence.NewPostgreSQLDB()
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Cannot connect to PostgreSQL - publication audit disabled")
		return nil, nil
	}
	if err := persistence.EnsurePublicationAuditSchema(db); err != nil {
		logger.GetLogger().WithField("error", err).Error("failed ensuring publication audit schema")
	}
	return db, persistence.NewAuditRepository(db)
}

// InitiatePublishers builds the registered platform -> publisher mapping from
// configuration. YouTube goes live when OAuth client credentials are present;
// every other configured platform gets a stub that reports a failed outcome.
func InitiatePublishers() map[string]repository.IPlatformPublisher {
	publishers := make(map[string]repository.IPlatformPublisher, len(configuration.C.Publish.Platforms))
	for _, platform := range configuration.C.Publish.Platforms {
		publishers[platform] = platforms.NewStubPublisher(platform)
	}

	yt := configuration.C.YouTube
	if yt.ClientID != "" && yt.ClientSecret != "" {
		publishers[platforms.PlatformYouTube] = platforms.NewYouTubePublisher(platforms.YouTubeConfig{
			ClientID:     yt.ClientID,
			ClientSecret: yt.ClientSecret,
			RedirectURL:  yt.RedirectURI,
		})
		logger.GetLogger().Info("YouTube publisher initialized in live mode")
	} else {
		logger.GetLogger().Info("YouTube OAuth credentials not configured - YouTube publishes report failed outcomes")
	}

	logger.GetLogger().WithField("platforms", configuration.C.Publish.Platforms).Info("Platform publishers registered")
	return publishers
}

// runSweepSchedule sleeps until next(now), fires job, repeats. Exits when the
// context is cancelled.
func runSweepSchedule(ctx context.Context, name string, next func(time.Time) time.Time, job func(context.Context) (int, error)) error {
	for {
		wait := time.Until(next(time.Now().UTC()))
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		jobCtx, cancelJob := context.WithTimeout(ctx, 10*time.Minute)
		affected, err := job(jobCtx)
		cancelJob()
		if err != nil {
			logger.GetLogger().WithField("sweep", name).WithField("error", err).Error("scheduled sweep failed")
			continue
		}
		logger.GetLogger().WithField("sweep", name).WithField("users_affected", affected).Info("scheduled sweep completed")
	}
}

// nextDailyRun returns the next 00:00 UTC strictly after now.
func nextDailyRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// nextWeeklyRun returns the next Sunday 02:00 UTC strictly after now.
func nextWeeklyRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), 2, 0, 0, 0, time.UTC)
	for next.Weekday() != time.Sunday || !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
