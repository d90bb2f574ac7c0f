package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodshare/config"
	"foodshare/handlers"
	"foodshare/logger"
	"foodshare/middleware"
	"foodshare/routes"
	"foodshare/services"
	"foodshare/session"
	"foodshare/store"
	"foodshare/validation"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(cfg.GinMode)

	// Open the account store once and share it
	db, err := store.Open(cfg.DBPath, cfg.StoreTimeout, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open store")
	}
	defer db.Close()
	log.WithField("path", cfg.DBPath).Info("database connected and migrated")

	for _, w := range cfg.Warnings() {
		log.Warn(w)
	}

	sessions := session.NewManager(cfg.SessionSecret, cfg.SessionTTL)
	h := handlers.New(
		services.NewRegistrationService(db, validation.New(), cfg.BcryptCost, log),
		services.NewSessionService(db, sessions, cfg.BcryptCost, log),
		services.NewFeedbackService(db, log),
		services.NewDirectoryService(db, log),
		db,
		handlers.Options{CookieSecure: cfg.CookieSecure, WebRoot: cfg.WebRoot},
		log,
	)

	stop := make(chan struct{})
	limiter := middleware.NewRateLimiter(cfg.LoginRatePerSec, cfg.LoginBurst, log)
	limiter.StartCleanup(10*time.Minute, stop)

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestLogger(log),
		middleware.Metrics(),
		middleware.CORS(cfg.CORSOrigins),
	)
	routes.SetupRoutes(r, h, middleware.NewAuth(sessions, db, log), limiter)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		log.Infof("listening on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	close(stop)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	log.Info("server stopped")
}
