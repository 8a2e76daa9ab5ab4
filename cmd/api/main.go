package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/waypointhq/waypoint-backend/internal/adapters/cache"
	"github.com/waypointhq/waypoint-backend/internal/adapters/database"
	"github.com/waypointhq/waypoint-backend/internal/adapters/events"
	"github.com/waypointhq/waypoint-backend/internal/adapters/providers/flight"
	"github.com/waypointhq/waypoint-backend/internal/adapters/providers/place"
	"github.com/waypointhq/waypoint-backend/internal/adapters/providers/transit"
	"github.com/waypointhq/waypoint-backend/internal/adapters/search"
	"github.com/waypointhq/waypoint-backend/internal/api/handlers"
	"github.com/waypointhq/waypoint-backend/internal/api/middleware"
	"github.com/waypointhq/waypoint-backend/internal/api/routes"
	"github.com/waypointhq/waypoint-backend/internal/application/services"
	"github.com/waypointhq/waypoint-backend/internal/domain/providers"
	"github.com/waypointhq/waypoint-backend/internal/domain/repositories"
	"github.com/waypointhq/waypoint-backend/internal/infrastructure/clients/openai"
	"github.com/waypointhq/waypoint-backend/internal/infrastructure/clients/postgres"
	"github.com/waypointhq/waypoint-backend/internal/infrastructure/clients/redis"
	"github.com/waypointhq/waypoint-backend/internal/infrastructure/clients/typesense"
	"github.com/waypointhq/waypoint-backend/internal/infrastructure/observability"
	"github.com/waypointhq/waypoint-backend/pkg/config"
)

func main() {
	// Load .env if present; real environments set variables directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Warn().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	log.Info().Msg("PostgreSQL client initialized")

	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize Redis client, continuing without response cache")
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Info().Msg("Redis client initialized")
	}

	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize Typesense client, itinerary search disabled")
		typesenseClient = nil
	} else {
		log.Info().Msg("Typesense client initialized")
	}

	// Database adapters
	userRepo := database.NewUserAdapter(pgClient)
	connectionRepo := database.NewConnectionAdapter(pgClient)
	blockRepo := database.NewBlockAdapter(pgClient)
	matchRepo := database.NewMatchAdapter(pgClient)
	itineraryRepo := database.NewItineraryAdapter(pgClient)
	segmentRepo := database.NewSegmentAdapter(pgClient)
	checklistRepo := database.NewChecklistAdapter(pgClient)
	authProvider := database.NewSessionAuthAdapter(pgClient)

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		log.Info().Msg("event bus initialized")
	}

	var searchRepo repositories.ItinerarySearchRepository
	if typesenseClient != nil {
		adapter := search.NewTypesenseAdapter(typesenseClient)
		if err := adapter.InitSchema(context.Background()); err != nil {
			log.Warn().Err(err).Msg("failed to init Typesense schema")
		}
		searchRepo = adapter
	}

	// Autofill providers
	var flightProvider providers.FlightProvider
	switch cfg.Flight.Provider {
	case "aerodatabox":
		if cfg.Flight.APIKey == "" {
			log.Warn().Msg("FLIGHT_API_KEY is not set, using mock flight provider")
			flightProvider = flight.NewMockFlightProvider()
		} else {
			flightProvider = flight.NewAeroDataBoxProvider(cfg.Flight.APIKey)
		}
	default:
		flightProvider = flight.NewMockFlightProvider()
	}

	var transitProvider providers.TransitProvider
	switch cfg.Transit.Provider {
	case "transitland":
		transitProvider = transit.NewTransitlandProvider(cfg.Transit.APIKey)
	default:
		transitProvider = transit.NewMockTransitProvider()
	}

	var placeProvider providers.PlaceProvider
	switch cfg.Places.Provider {
	case "google":
		if cfg.Places.APIKey == "" {
			log.Warn().Msg("PLACES_API_KEY is not set, using mock place provider")
			placeProvider = place.NewMockPlaceProvider()
		} else {
			placeProvider = place.NewGooglePlaceProvider(cfg.Places.APIKey, cacheProvider)
		}
	default:
		placeProvider = place.NewMockPlaceProvider()
	}

	var chatProvider providers.ChatProvider
	if cfg.OpenAI.APIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is not set, trip assistant disabled")
	} else {
		openaiClient, err := openai.NewClient(&cfg.OpenAI)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize OpenAI client")
		} else {
			chatProvider = openaiClient
		}
	}

	// Services
	userService := services.NewUserService(userRepo)
	connectionService := services.NewConnectionService(connectionRepo, blockRepo, userRepo)
	blockService := services.NewBlockService(blockRepo, connectionRepo, userRepo)
	matchService := services.NewMatchService(matchRepo)
	itineraryService := services.NewItineraryService(itineraryRepo, segmentRepo, searchRepo)
	segmentService := services.NewSegmentService(segmentRepo, itineraryRepo, itineraryService, eventBus)
	checklistService := services.NewChecklistService(checklistRepo, segmentService)
	assistantService := services.NewAssistantService(chatProvider, itineraryService, segmentService)
	autofillService := services.NewSegmentAutofillService(
		flightProvider,
		transitProvider,
		placeProvider,
		time.Duration(cfg.Autofill.CacheTTLSeconds)*time.Second,
		time.Now,
	)

	var cacheInvalidationService *services.CacheInvalidationService
	if cacheProvider != nil && eventBus != nil {
		cacheInvalidationService = services.NewCacheInvalidationService(cacheProvider, eventBus)
		if err := cacheInvalidationService.Start(); err != nil {
			log.Warn().Err(err).Msg("failed to start cache invalidation service")
		}
	}

	// Handlers
	userHandler := handlers.NewUserHandler(userService)
	connectionHandler := handlers.NewConnectionHandler(connectionService)
	blockHandler := handlers.NewBlockHandler(blockService)
	matchHandler := handlers.NewMatchHandler(matchService)
	itineraryHandler := handlers.NewItineraryHandler(itineraryService)
	segmentHandler := handlers.NewSegmentHandler(segmentService)
	checklistHandler := handlers.NewChecklistHandler(checklistService)
	autofillHandler := handlers.NewSegmentAutofillHandler(autofillService)
	assistantHandler := handlers.NewAssistantHandler(assistantService)

	authMiddleware := middleware.NewAuthMiddleware(authProvider)

	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider)
	}

	router := routes.NewRouter(
		userHandler,
		connectionHandler,
		blockHandler,
		matchHandler,
		itineraryHandler,
		segmentHandler,
		checklistHandler,
		autofillHandler,
		assistantHandler,
		authMiddleware,
		cacheMiddleware,
		metrics,
	)

	handler := router.SetupRoutes()

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("error during server shutdown")
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing event bus")
		}
	}

	if cacheInvalidationService != nil {
		cacheInvalidationService.Stop()
	}

	log.Info().Msg("server stopped")
}
