package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/octobees/prospect-agent/internal/adapter/apollo"
	"github.com/octobees/prospect-agent/internal/adapter/hunter"
	"github.com/octobees/prospect-agent/internal/adapter/outreach"
	"github.com/octobees/prospect-agent/internal/adapter/places"
	"github.com/octobees/prospect-agent/internal/adapter/serper"
	"github.com/octobees/prospect-agent/internal/adapter/techdetect"
	"github.com/octobees/prospect-agent/internal/adapter/zerobounce"
	"github.com/octobees/prospect-agent/internal/auth"
	"github.com/octobees/prospect-agent/internal/config"
	"github.com/octobees/prospect-agent/internal/database"
	"github.com/octobees/prospect-agent/internal/enrich"
	"github.com/octobees/prospect-agent/internal/filter"
	"github.com/octobees/prospect-agent/internal/handler"
	"github.com/octobees/prospect-agent/internal/logging"
	middlewarepkg "github.com/octobees/prospect-agent/internal/middleware"
	"github.com/octobees/prospect-agent/internal/pipeline"
	"github.com/octobees/prospect-agent/internal/repository"
	"github.com/octobees/prospect-agent/internal/router"
	"github.com/octobees/prospect-agent/internal/scoring"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(os.Getenv("LOG_LEVEL"))
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
	defer connectCancel()

	pool, err := database.Connect(connectCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}
	defer pool.Close()

	repo := repository.NewPGXProspectsRepository(pool)

	serperClient := serper.New(cfg.SerperAPIKey,
		serper.WithLocale(countryCode(cfg.Campaign.Country), "fr"),
		serper.WithPhoneRegion(phoneRegion(cfg.Campaign.Country)),
	)
	hunterClient := hunter.New(cfg.HunterAPIKey)
	techDetector := techdetect.New()

	sources := []pipeline.Source{
		{Name: serper.SourceName, Discover: serperClient.Search},
	}

	enrichSources := enrich.Sources{
		Emails:   hunterClient,
		Techs:    techDetector,
		LinkedIn: serperClient,
	}

	if cfg.ApolloAPIKey != "" {
		enrichSources.Organizations = apollo.New(cfg.ApolloAPIKey)
	} else {
		logger.Warn("APOLLO_API_KEY not set, skipping organization enrichment")
	}

	if cfg.GoogleMapsAPIKey != "" {
		placesClient, err := places.New(ctx, cfg.GoogleMapsAPIKey)
		if err != nil {
			logger.Fatal("failed to build places client", zap.Error(err))
		}
		sources = append(sources, pipeline.Source{Name: places.SourceName, Discover: placesClient.Discover})
		enrichSources.Local = placesClient
	} else {
		logger.Warn("GOOGLE_MAPS_API_KEY not set, skipping local search")
	}

	if cfg.ZeroBounceAPIKey != "" {
		verifier := zerobounce.New(cfg.ZeroBounceAPIKey)
		enrichSources.Verifier = verifier
		if credits, err := verifier.Credits(ctx); err != nil {
			logger.Warn("zerobounce credit check failed", zap.Error(err))
		} else {
			logger.Info("zerobounce credits available", zap.Int("credits", credits))
		}
	} else {
		logger.Warn("ZEROBOUNCE_API_KEY not set, skipping email verification")
	}

	generator, err := outreach.New(ctx, outreach.Config{
		APIKey: cfg.GeminiAPIKey,
		Model:  cfg.GeminiModel,
	})
	if err != nil {
		logger.Fatal("failed to build outreach generator", zap.Error(err))
	}

	location := cfg.Campaign.City + ", " + cfg.Campaign.Country
	merger := enrich.NewMerger(enrichSources, location, phoneRegion(cfg.Campaign.Country), logger)

	agent := pipeline.New(
		cfg.Campaign,
		sources,
		filter.New(cfg.Campaign.Country),
		merger,
		scoring.NewEngine(cfg.Campaign.ServiceOffered),
		generator,
		repo,
		logger,
	)

	agentDone := make(chan struct{})
	go func() {
		defer close(agentDone)
		if err := agent.Run(ctx); err != nil {
			logger.Error("agent stopped", zap.Error(err))
		}
	}()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(logger))
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, jwtManager, router.Handlers{
		Auth:      handler.NewAuthHandler(auth.NewVerifier(cfg.AdminEmail, cfg.AdminPasswordHash), jwtManager),
		Prospects: handler.NewProspectsHandler(repo),
		Admin:     handler.NewAdminHandler(agent),
	})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
		return
	}

	cancel()
	<-agentDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// phoneRegion maps the campaign country to the region used when
// parsing phone numbers that lack an international prefix.
func phoneRegion(country string) string {
	switch strings.ToLower(strings.TrimSpace(country)) {
	case "france":
		return "FR"
	case "belgique", "belgium":
		return "BE"
	case "canada", "québec", "quebec":
		return "CA"
	default:
		return "CH"
	}
}

// countryCode maps the campaign country to the search API country code.
func countryCode(country string) string {
	switch strings.ToLower(strings.TrimSpace(country)) {
	case "france":
		return "fr"
	case "belgique", "belgium":
		return "be"
	case "canada", "québec", "quebec":
		return "ca"
	default:
		return "ch"
	}
}
