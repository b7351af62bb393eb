// @title readr API
// @version 1.0
// @description Multi-user feed reader API.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"readr/internal/config"
	"readr/internal/db"
	"readr/internal/handler"
	transport "readr/internal/http"
	"readr/internal/logger"
	"readr/internal/network"
	"readr/internal/repository"
	"readr/internal/scheduler"
	"readr/internal/service"
	"readr/internal/snowflake"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	logger.Init(logger.ParseLevel(cfg.LogLevel))
	startedAt := time.Now()

	if err := snowflake.Init(cfg.NodeID); err != nil {
		fatal("init snowflake", err)
	}

	dbConn, err := db.Open(cfg.DBPath)
	if err != nil {
		fatal("open database", err)
	}
	defer dbConn.Close()

	userRepo := repository.NewUserRepository(dbConn)
	userSettingsRepo := repository.NewUserSettingsRepository(dbConn)
	settingsRepo := repository.NewSettingsRepository(dbConn)
	feedRepo := repository.NewFeedRepository(dbConn)
	subscriptionRepo := repository.NewSubscriptionRepository(dbConn)
	categoryRepo := repository.NewCategoryRepository(dbConn)
	itemRepo := repository.NewItemRepository(dbConn)

	clientFactory := network.NewClientFactory(network.StaticProxy(cfg.ProxyURL), config.UserAgent)

	iconService := service.NewIconService(feedRepo, clientFactory)
	refreshService := service.NewRefreshService(feedRepo, itemRepo, iconService, clientFactory, service.RefreshOptions{
		Concurrency: cfg.RefreshConcurrency,
		HostRate:    cfg.HostRate,
		MaxRetries:  cfg.FetchRetries,
	})
	onboardingService := service.NewOnboardingService(feedRepo, subscriptionRepo, categoryRepo, service.DefaultFeed{
		URL:      cfg.DefaultFeedURL,
		Title:    cfg.DefaultFeedTitle,
		Category: cfg.DefaultFeedCategory,
	})
	authService := service.NewAuthService(userRepo, settingsRepo, onboardingService)
	feedService := service.NewFeedService(feedRepo, subscriptionRepo, categoryRepo, refreshService)
	categoryService := service.NewCategoryService(categoryRepo, subscriptionRepo)
	itemService := service.NewItemService(itemRepo, feedRepo, userSettingsRepo)
	collectionService := service.NewCollectionService(feedRepo, categoryRepo, subscriptionRepo, itemRepo)
	readabilityService := service.NewReadabilityService(itemRepo, clientFactory)
	opmlService := service.NewOPMLService(feedService, refreshService, feedRepo)
	preferencesService := service.NewPreferencesService(userRepo, userSettingsRepo)
	systemService := service.NewSystemService(feedRepo, categoryRepo, itemRepo, startedAt)

	sessionStore := transport.NewSessionStore(cfg.SessionKey)

	router := transport.NewRouter(transport.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Collections: handler.NewCollectionHandler(collectionService, feedService, categoryService, itemService),
		Feeds:       handler.NewFeedHandler(feedService, refreshService),
		Items:       handler.NewItemHandler(itemService, readabilityService),
		OPML:        handler.NewOPMLHandler(opmlService, service.NewImportTaskService()),
		Preferences: handler.NewPreferencesHandler(preferencesService),
		System:      handler.NewSystemHandler(systemService),
		Legacy: handler.NewLegacyHandler(sessionStore, handler.LegacyServices{
			Auth:        authService,
			Feeds:       feedService,
			Categories:  categoryService,
			Items:       itemService,
			Readability: readabilityService,
			OPML:        opmlService,
			System:      systemService,
		}),
	}, authService, sessionStore, cfg.StaticDir)

	sched, err := scheduler.New(refreshService, iconService, cfg.RefreshSchedule, cfg.RefreshTimeout)
	if err != nil {
		fatal("create scheduler", err)
	}
	sched.Start()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", "module", "server", "action", "start", "resource", "http", "result", "ok", "addr", cfg.Addr, "version", config.AppVersion)
		if err := router.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "module", "server", "action", "start", "resource", "http", "result", "failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down", "module", "server", "action", "stop", "resource", "http", "result", "ok")

	sched.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := router.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "module", "server", "action", "stop", "resource", "http", "result", "failed", "error", err)
	}
}

func fatal(action string, err error) {
	logger.Error(action+" failed", "module", "server", "action", "start", "resource", "server", "result", "failed", "error", err)
	os.Exit(1)
}
