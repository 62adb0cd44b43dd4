package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/moneyfold/backend/internal/auth"
	"github.com/moneyfold/backend/internal/config"
	"github.com/moneyfold/backend/internal/connectivity"
	"github.com/moneyfold/backend/internal/models"
	"github.com/moneyfold/backend/internal/remote"
	"github.com/moneyfold/backend/internal/router"
	"github.com/moneyfold/backend/internal/sync"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// gin uses debug as the default mode, we use release for
	// security reasons
	ginMode, ok := os.LookupEnv("GIN_MODE")
	if !ok {
		gin.SetMode("release")
	} else {
		gin.SetMode(ginMode)
	}

	// Log format can be explicitly set.
	// If it is not set, it defaults to human readable for development
	// and JSON for release
	logFormat, ok := os.LookupEnv("LOG_FORMAT")
	output := io.Writer(os.Stdout)
	if (!ok && gin.IsDebugging()) || (ok && logFormat == "human") {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if gin.IsDebugging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(output).With().Timestamp().Logger()

	cfg := config.Load()
	err := cfg.Validate()
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	db, err := models.Connect(cfg.SQLiteDBPath)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	monitor := connectivity.NewMonitor()
	if len(cfg.ProbeTargets) > 0 {
		monitor.Targets = cfg.ProbeTargets
	}
	monitor.ProbeTimeout = cfg.ProbeTimeout

	grace := auth.NewGraceController()
	grace.GracePeriod = cfg.GracePeriod

	var store remote.Store = remote.NewHTTPStore(cfg.RemoteBaseURL, cfg.RemoteToken)

	// The user is fixed per deployment until a real login flow exists,
	// see USER_ID in the environment
	userID := uuid.New()
	if id, ok := os.LookupEnv("USER_ID"); ok {
		userID, err = uuid.Parse(id)
		if err != nil {
			log.Fatal().Str("USER_ID", id).Msg("USER_ID is not a valid UUID")
		}
	}

	err = sync.RegisterMetrics()
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	engine := sync.New(db, store, monitor, grace, userID, sync.Config{
		SyncInterval: cfg.SyncInterval,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = engine.Start(ctx)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	r, err := router.Config()
	if err != nil {
		log.Fatal().Msg(err.Error())
	}
	router.AttachRoutes(engine, r.Group(""))

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msg(err.Error())
		}
	}()

	log.Info().Str("port", cfg.Port).Msg("backend startup complete")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = server.Shutdown(shutdownCtx)
	if err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	engine.Teardown()
}
