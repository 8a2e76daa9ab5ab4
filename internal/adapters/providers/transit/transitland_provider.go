package transit

import (
	"context"
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
	transitlandURL     = "https://transit.land/api/v2/rest"
	defaultHTTPTimeout = 8 * time.Second
)

// TransitlandProvider implements the TransitProvider against the Transitland
// REST API. Trips are matched by route short name or trip short name.
type TransitlandProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewTransitlandProvider creates a new Transitland provider
func NewTransitlandProvider(apiKey string) providers.TransitProvider {
	return NewTransitlandProviderWithOptions(apiKey, transitlandURL, nil)
}

// NewTransitlandProviderWithOptions allows overriding base URL and HTTP client (used for tests)
func NewTransitlandProviderWithOptions(apiKey, baseURL string, httpClient *http.Client) providers.TransitProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = transitlandURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &TransitlandProvider{
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

type transitStopTime struct {
	Arrival   string `json:"arrival_time"`
	Departure string `json:"departure_time"`
	Stop      struct {
		Name string `json:"stop_name"`
	} `json:"stop"`
}

type transitTrip struct {
	TripShortName string `json:"trip_short_name"`
	TripHeadsign  string `json:"trip_headsign"`
	Route         struct {
		ShortName string `json:"route_short_name"`
		LongName  string `json:"route_long_name"`
		Agency    struct {
			Name string `json:"agency_name"`
		} `json:"agency"`
	} `json:"route"`
	StopTimes []transitStopTime `json:"stop_times"`
}

type transitResponse struct {
	Trips []transitTrip `json:"trips"`
}

// LookupTrip resolves a free-text trip query into a suggestion. The stop
// sequence of the matched trip is carried in metadata for leg synthesis.
func (p *TransitlandProvider) LookupTrip(ctx context.Context, query, date string) (*entities.SegmentAutofillSuggestion, error) {
	params := url.Values{"search": []string{strings.TrimSpace(query)}, "limit": []string{"1"}}
	if date != "" {
		params.Set("service_date", date)
	}
	if p.apiKey != "" {
		params.Set("apikey", p.apiKey)
	}

	endpoint := fmt.Sprintf("%s/trips?%s", p.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build transit request", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewProviderUnavailableError("transit provider unreachable", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, apperrors.NewProviderUnavailableError(
			fmt.Sprintf("transit provider returned status %d", resp.StatusCode), nil)
	case resp.StatusCode >= 400:
		return nil, apperrors.NewProviderRequestError(
			fmt.Sprintf("transit provider rejected request with status %d", resp.StatusCode), nil)
	}

	var payload transitResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.NewProviderRequestError("failed to decode transit response", err)
	}
	if len(payload.Trips) == 0 {
		return nil, nil
	}

	return suggestionFromTrip(payload.Trips[0]), nil
}

func suggestionFromTrip(trip transitTrip) *entities.SegmentAutofillSuggestion {
	name := trip.Route.ShortName
	if name == "" {
		name = trip.TripShortName
	}
	title := strings.TrimSpace(fmt.Sprintf("%s to %s", name, trip.TripHeadsign))

	stopTimes := make([]interface{}, 0, len(trip.StopTimes))
	for _, st := range trip.StopTimes {
		stopTimes = append(stopTimes, map[string]interface{}{
			"arrival":   st.Arrival,
			"departure": st.Departure,
			"stop": map[string]interface{}{
				"name": st.Stop.Name,
			},
			"trip_short_name": trip.TripShortName,
		})
	}

	suggestion := &entities.SegmentAutofillSuggestion{
		Title: &title,
		Metadata: map[string]interface{}{
			"stop_times": stopTimes,
		},
		Source: "transitland",
	}

	if trip.Route.Agency.Name != "" {
		agency := trip.Route.Agency.Name
		suggestion.ProviderName = &agency
	}
	if trip.TripShortName != "" {
		number := trip.TripShortName
		suggestion.TransportNumber = &number
	}
	if len(trip.StopTimes) > 0 {
		first := trip.StopTimes[0]
		last := trip.StopTimes[len(trip.StopTimes)-1]
		if first.Stop.Name != "" {
			origin := first.Stop.Name
			suggestion.LocationName = &origin
		}
		if first.Departure != "" {
			departure := first.Departure
			suggestion.StartTime = &departure
		}
		if last.Arrival != "" {
			arrival := last.Arrival
			suggestion.EndTime = &arrival
		}
	}

	return suggestion
}
