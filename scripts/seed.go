package main

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/waypointhq/waypoint-backend/internal/adapters/database"
	"github.com/waypointhq/waypoint-backend/internal/adapters/search"
	"github.com/waypointhq/waypoint-backend/internal/application/services"
	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
	"github.com/waypointhq/waypoint-backend/internal/domain/repositories"
	"github.com/waypointhq/waypoint-backend/internal/infrastructure/clients/postgres"
	"github.com/waypointhq/waypoint-backend/internal/infrastructure/clients/typesense"
	"github.com/waypointhq/waypoint-backend/internal/infrastructure/observability"
	"github.com/waypointhq/waypoint-backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	observability.InitLogger("waypoint-seed", cfg.Env)

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pgClient.Close()

	var searchRepo repositories.ItinerarySearchRepository
	if tsClient, err := typesense.NewClient(&cfg.Typesense); err == nil {
		adapter := search.NewTypesenseAdapter(tsClient)
		if err := adapter.InitSchema(context.Background()); err == nil {
			searchRepo = adapter
		}
	}

	userRepo := database.NewUserAdapter(pgClient)
	itineraryRepo := database.NewItineraryAdapter(pgClient)
	segmentRepo := database.NewSegmentAdapter(pgClient)
	itineraryService := services.NewItineraryService(itineraryRepo, segmentRepo, searchRepo)

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				checklist_items,
				segments,
				itineraries,
				matches,
				blocks,
				connections,
				sessions,
				users
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to truncate tables")
		}
	}

	now := time.Now()

	users := []*entities.User{
		{
			ID:          uuid.New().String(),
			Email:       "ada@example.com",
			DisplayName: "Ada",
			HomeCity:    "San Francisco",
			Bio:         "Weekend-trip enthusiast",
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          uuid.New().String(),
			Email:       "bruno@example.com",
			DisplayName: "Bruno",
			HomeCity:    "Lisbon",
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}

	for _, u := range users {
		if err := userRepo.Create(ctx, u); err != nil {
			log.Warn().Err(err).Str("email", u.Email).Msg("failed to seed user")
		}
	}

	itinerary := &entities.Itinerary{
		Title:       "Tokyo in Spring",
		Description: "Cherry blossom week with day trips",
		Destination: "Tokyo, Japan",
		StartDate:   "2026-03-28",
		EndDate:     "2026-04-04",
	}
	created, err := itineraryService.Create(ctx, users[0].ID, itinerary)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed itinerary")
	}

	start := time.Date(2026, 3, 28, 11, 5, 0, 0, time.UTC)
	end := start.Add(11 * time.Hour)
	segments := []*entities.Segment{
		{
			ID:              uuid.New().String(),
			ItineraryID:     created.ID,
			Type:            entities.SegmentTypeFlight,
			Title:           "Flight NH107 SFO-HND",
			ProviderName:    "ANA",
			TransportNumber: "NH107",
			StartTime:       &start,
			EndTime:         &end,
			Position:        0,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		{
			ID:           uuid.New().String(),
			ItineraryID:  created.ID,
			Type:         entities.SegmentTypeHotel,
			Title:        "Park Hyatt Tokyo",
			LocationName: "Park Hyatt Tokyo",
			Position:     1,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}

	for _, seg := range segments {
		if err := segmentRepo.Create(ctx, seg); err != nil {
			log.Warn().Err(err).Str("title", seg.Title).Msg("failed to seed segment")
		}
	}

	itineraryService.Reindex(ctx, created.ID)

	log.Info().
		Int("users", len(users)).
		Int("segments", len(segments)).
		Msg("seed complete")
}
