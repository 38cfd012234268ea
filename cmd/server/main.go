package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"articles-api/internal/config"
	"articles-api/internal/es"
	"articles-api/internal/events"
	"articles-api/internal/handlers"
	"articles-api/internal/logging"
	authmw "articles-api/internal/middleware/auth"
	"articles-api/internal/token"
	httpserver "articles-api/internal/transport/http"
	loggingmw "articles-api/pkg/middleware/logging"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LogLevel)

	db, err := config.InitDB(context.Background(), configuration)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	tokens := token.NewIssuer(
		[]byte(configuration.JWT_SECRET),
		time.Duration(configuration.TokenTTLMinutes)*time.Minute,
	)

	producer := events.NewProducer(configuration.KAFKA_ADDRESS)

	var searchHandler *handlers.SearchHandler
	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatalf("elasticsearch init failed: %v", err)
		}
		searchHandler = handlers.NewSearchHandler(esClient, "articles")
	} else {
		logger.Warn("ES_URL not set, article search disabled")
		searchHandler = &handlers.SearchHandler{}
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		DB:             db,
		Auth:           &authmw.Middleware{DB: db, Tokens: tokens},
		UserHandler:    &handlers.UserHandler{DB: db, Tokens: tokens, Producer: producer},
		ArticleHandler: &handlers.ArticleHandler{DB: db, Producer: producer},
		SearchHandler:  searchHandler,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.AppAddr,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	} else {
		logger.Error("db() error", "error", err)
	}

	if err := producer.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
