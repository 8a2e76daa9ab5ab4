package place

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
	"github.com/waypointhq/waypoint-backend/internal/domain/providers"
	apperrors "github.com/waypointhq/waypoint-backend/pkg/errors"
)

const (
	googlePlacesTextURL  = "https://maps.googleapis.com/maps/api/place/textsearch/json"
	defaultPlaceCacheTTL = 60 * 60 * 24
	defaultHTTPTimeout   = 8 * time.Second
	defaultRadiusMeters  = 5000
)

// categoryPlaceTypes maps autofill categories to Google place types
var categoryPlaceTypes = map[string]string{
	"hotel":    "lodging",
	"meal":     "restaurant",
	"activity": "tourist_attraction",
}

// GooglePlaceProvider implements the PlaceProvider against the Google Places
// text search API, with resolved places cached in the shared byte cache.
type GooglePlaceProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      providers.CacheProvider
}

// NewGooglePlaceProvider creates a new Google place provider. cache may be nil.
func NewGooglePlaceProvider(apiKey string, cache providers.CacheProvider) providers.PlaceProvider {
	return NewGooglePlaceProviderWithOptions(apiKey, cache, googlePlacesTextURL, nil)
}

// NewGooglePlaceProviderWithOptions allows overriding base URL and HTTP client (used for tests)
func NewGooglePlaceProviderWithOptions(apiKey string, cache providers.CacheProvider, baseURL string, httpClient *http.Client) providers.PlaceProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = googlePlacesTextURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &GooglePlaceProvider{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		cache:      cache,
	}
}

type placeResult struct {
	Name             string `json:"name"`
	FormattedAddress string `json:"formatted_address"`
	PlaceID          string `json:"place_id"`
	Rating           float64 `json:"rating"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

type placeResponse struct {
	Status  string        `json:"status"`
	Results []placeResult `json:"results"`
}

// LookupPlace resolves a free-text place query into a suggestion, biased by
// category and an optional geographic context
func (p *GooglePlaceProvider) LookupPlace(ctx context.Context, query, category string, geo *entities.AutofillContext) (*entities.SegmentAutofillSuggestion, error) {
	cacheKey := placeCacheKey(query, category, geo)
	if p.cache != nil {
		if cached, err := p.cache.Get(ctx, cacheKey); err == nil && len(cached) > 0 {
			var suggestion entities.SegmentAutofillSuggestion
			if err := json.Unmarshal(cached, &suggestion); err == nil {
				return &suggestion, nil
			}
		}
	}

	params := url.Values{
		"query": []string{query},
		"key":   []string{p.apiKey},
	}
	if placeType, ok := categoryPlaceTypes[category]; ok {
		params.Set("type", placeType)
	}
	if geo != nil && geo.Latitude != nil && geo.Longitude != nil {
		params.Set("location", fmt.Sprintf("%f,%f", *geo.Latitude, *geo.Longitude))
		radius := float64(defaultRadiusMeters)
		if geo.RadiusMeters != nil {
			radius = *geo.RadiusMeters
		}
		params.Set("radius", fmt.Sprintf("%.0f", radius))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build place request", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewProviderUnavailableError("place provider unreachable", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, apperrors.NewProviderUnavailableError(
			fmt.Sprintf("place provider returned status %d", resp.StatusCode), nil)
	case resp.StatusCode >= 400:
		return nil, apperrors.NewProviderRequestError(
			fmt.Sprintf("place provider rejected request with status %d", resp.StatusCode), nil)
	}

	var payload placeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.NewProviderRequestError("failed to decode place response", err)
	}

	switch payload.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, nil
	case "OVER_QUERY_LIMIT":
		return nil, apperrors.NewProviderUnavailableError("place provider quota exceeded", nil)
	case "INVALID_REQUEST":
		return nil, apperrors.NewProviderRequestError("place provider rejected the query", nil)
	default:
		return nil, apperrors.NewProviderRequestError(
			fmt.Sprintf("place provider returned status %s", payload.Status), nil)
	}
	if len(payload.Results) == 0 {
		return nil, nil
	}

	suggestion := suggestionFromPlace(payload.Results[0])

	if p.cache != nil {
		if encoded, err := json.Marshal(suggestion); err == nil {
			_ = p.cache.Set(ctx, cacheKey, encoded, defaultPlaceCacheTTL)
		}
	}

	return suggestion, nil
}

func suggestionFromPlace(result placeResult) *entities.SegmentAutofillSuggestion {
	name := result.Name
	address := result.FormattedAddress
	lat := result.Geometry.Location.Lat
	lng := result.Geometry.Location.Lng

	return &entities.SegmentAutofillSuggestion{
		Title:           &name,
		LocationName:    &name,
		LocationAddress: &address,
		LocationLat:     &lat,
		LocationLng:     &lng,
		Metadata: map[string]interface{}{
			"place_id": result.PlaceID,
			"rating":   result.Rating,
		},
		Source: "google-places",
	}
}

func placeCacheKey(query, category string, geo *entities.AutofillContext) string {
	raw := strings.ToLower(strings.TrimSpace(query)) + "|" + category
	if geo != nil {
		if geo.Latitude != nil && geo.Longitude != nil {
			raw += fmt.Sprintf("|%.4f,%.4f", *geo.Latitude, *geo.Longitude)
		}
		if geo.RadiusMeters != nil {
			raw += fmt.Sprintf("|%.0f", *geo.RadiusMeters)
		}
	}
	sum := sha256.Sum256([]byte(raw))
	return "place:v1:" + hex.EncodeToString(sum[:])
}
