package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
	"github.com/waypointhq/waypoint-backend/internal/domain/repositories"
	tsclient "github.com/waypointhq/waypoint-backend/internal/infrastructure/clients/typesense"
)

const collectionName = "itineraries"

// TypesenseAdapter implements itinerary search using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

var _ repositories.ItinerarySearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the itineraries collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	_, err := a.client.Client().Collection(collectionName).Retrieve(ctx)
	if err == nil {
		return nil
	}

	schema := &api.CollectionSchema{
		Name: collectionName,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "owner_id", Type: "string", Facet: pointer.True()},
			{Name: "title", Type: "string"},
			{Name: "description", Type: "string", Optional: pointer.True()},
			{Name: "destination", Type: "string", Optional: pointer.True()},
			{Name: "segment_titles", Type: "string[]", Optional: pointer.True()},
			{Name: "segment_locations", Type: "string[]", Optional: pointer.True()},
			{Name: "start_date", Type: "string", Optional: pointer.True()},
			{Name: "end_date", Type: "string", Optional: pointer.True()},
			{Name: "is_archived", Type: "bool"},
			{Name: "created_at", Type: "int64"},
		},
		DefaultSortingField: pointer.String("created_at"),
	}

	_, err = a.client.Client().Collections().Create(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}

	return nil
}

// Index upserts an itinerary document, denormalizing segment titles and
// locations into searchable arrays
func (a *TypesenseAdapter) Index(ctx context.Context, itinerary *entities.Itinerary, segments []*entities.Segment) error {
	segmentTitles := make([]string, 0, len(segments))
	segmentLocations := make([]string, 0, len(segments))
	for _, segment := range segments {
		if segment.Title != "" {
			segmentTitles = append(segmentTitles, segment.Title)
		}
		if segment.LocationName != "" {
			segmentLocations = append(segmentLocations, segment.LocationName)
		}
	}

	document := map[string]interface{}{
		"id":                itinerary.ID,
		"owner_id":          itinerary.OwnerID,
		"title":             itinerary.Title,
		"description":       itinerary.Description,
		"destination":       itinerary.Destination,
		"segment_titles":    segmentTitles,
		"segment_locations": segmentLocations,
		"start_date":        itinerary.StartDate,
		"end_date":          itinerary.EndDate,
		"is_archived":       itinerary.IsArchived,
		"created_at":        itinerary.CreatedAt.Unix(),
	}

	_, err := a.client.Client().Collection(collectionName).Documents().Upsert(ctx, document)
	if err != nil {
		return fmt.Errorf("failed to index itinerary: %w", err)
	}

	return nil
}

// Delete removes an itinerary from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, itineraryID string) error {
	_, err := a.client.Client().Collection(collectionName).Document(itineraryID).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete itinerary from index: %w", err)
	}
	return nil
}

// Search searches a user's itineraries by free text
func (a *TypesenseAdapter) Search(ctx context.Context, ownerID, query string, limit int) ([]*entities.Itinerary, error) {
	if strings.TrimSpace(query) == "" {
		query = "*"
	}
	if limit <= 0 {
		limit = 20
	}

	searchParams := &api.SearchCollectionParams{
		Q:        pointer.String(query),
		QueryBy:  pointer.String("title,description,destination,segment_titles,segment_locations"),
		FilterBy: pointer.String(fmt.Sprintf("owner_id:=%s && is_archived:=false", ownerID)),
		PerPage:  pointer.Int(limit),
	}

	result, err := a.client.Client().Collection(collectionName).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search itineraries: %w", err)
	}

	itineraries := []*entities.Itinerary{}
	if result.Hits == nil {
		return itineraries, nil
	}

	for _, hit := range *result.Hits {
		doc := *hit.Document

		itinerary := &entities.Itinerary{}
		if val, ok := doc["id"].(string); ok {
			itinerary.ID = val
		}
		if val, ok := doc["owner_id"].(string); ok {
			itinerary.OwnerID = val
		}
		if val, ok := doc["title"].(string); ok {
			itinerary.Title = val
		}
		if val, ok := doc["description"].(string); ok {
			itinerary.Description = val
		}
		if val, ok := doc["destination"].(string); ok {
			itinerary.Destination = val
		}
		if val, ok := doc["start_date"].(string); ok {
			itinerary.StartDate = val
		}
		if val, ok := doc["end_date"].(string); ok {
			itinerary.EndDate = val
		}

		itineraries = append(itineraries, itinerary)
	}

	return itineraries, nil
}
