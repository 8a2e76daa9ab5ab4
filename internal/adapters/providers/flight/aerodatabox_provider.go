package flight

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
	aeroDataBoxURL     = "https://aerodatabox.p.rapidapi.com"
	defaultHTTPTimeout = 8 * time.Second
)

// AeroDataBoxProvider implements the FlightProvider against the AeroDataBox
// flight status API.
type AeroDataBoxProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewAeroDataBoxProvider creates a new AeroDataBox flight provider
func NewAeroDataBoxProvider(apiKey string) providers.FlightProvider {
	return NewAeroDataBoxProviderWithOptions(apiKey, aeroDataBoxURL, nil)
}

// NewAeroDataBoxProviderWithOptions allows overriding base URL and HTTP client (used for tests)
func NewAeroDataBoxProviderWithOptions(apiKey, baseURL string, httpClient *http.Client) providers.FlightProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = aeroDataBoxURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &AeroDataBoxProvider{
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

type flightEndpoint struct {
	Airport struct {
		Name string `json:"name"`
		IATA string `json:"iata"`
	} `json:"airport"`
	ScheduledTime struct {
		UTC   string `json:"utc"`
		Local string `json:"local"`
	} `json:"scheduledTime"`
	Terminal string `json:"terminal"`
}

type flightLeg struct {
	Number    string         `json:"number"`
	Status    string         `json:"status"`
	Departure flightEndpoint `json:"departure"`
	Arrival   flightEndpoint `json:"arrival"`
	Airline   struct {
		Name string `json:"name"`
	} `json:"airline"`
	Aircraft struct {
		Model string `json:"model"`
	} `json:"aircraft"`
}

// LookupFlight resolves a flight number and date into a suggestion. The
// upstream returns one entry per leg for multi-leg flight numbers.
func (p *AeroDataBoxProvider) LookupFlight(ctx context.Context, query, date string) (*entities.SegmentAutofillSuggestion, error) {
	number := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(query), " ", ""))

	endpoint := fmt.Sprintf("%s/flights/number/%s", p.baseURL, url.PathEscape(number))
	if date != "" {
		endpoint += "/" + url.PathEscape(date)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build flight request", err)
	}
	req.Header.Set("X-RapidAPI-Key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewProviderUnavailableError("flight provider unreachable", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent:
		return nil, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, apperrors.NewProviderUnavailableError(
			fmt.Sprintf("flight provider returned status %d", resp.StatusCode), nil)
	case resp.StatusCode >= 400:
		return nil, apperrors.NewProviderRequestError(
			fmt.Sprintf("flight provider rejected request with status %d", resp.StatusCode), nil)
	}

	var legs []flightLeg
	if err := json.NewDecoder(resp.Body).Decode(&legs); err != nil {
		return nil, apperrors.NewProviderRequestError("failed to decode flight response", err)
	}
	if len(legs) == 0 {
		return nil, nil
	}

	return suggestionFromLegs(number, legs), nil
}

func suggestionFromLegs(number string, legs []flightLeg) *entities.SegmentAutofillSuggestion {
	first, last := legs[0], legs[len(legs)-1]

	title := fmt.Sprintf("Flight %s", number)
	if first.Departure.Airport.IATA != "" && last.Arrival.Airport.IATA != "" {
		title = fmt.Sprintf("Flight %s %s-%s", number, first.Departure.Airport.IATA, last.Arrival.Airport.IATA)
	}

	rawLegs := make([]interface{}, 0, len(legs))
	for _, leg := range legs {
		encoded, err := json.Marshal(leg)
		if err != nil {
			continue
		}
		var generic map[string]interface{}
		if err := json.Unmarshal(encoded, &generic); err != nil {
			continue
		}
		rawLegs = append(rawLegs, generic)
	}

	suggestion := &entities.SegmentAutofillSuggestion{
		Title:           &title,
		TransportNumber: &number,
		Metadata: map[string]interface{}{
			"legs": rawLegs,
		},
		Source: "aerodatabox",
	}

	if first.Airline.Name != "" {
		airline := first.Airline.Name
		suggestion.ProviderName = &airline
	}
	if name := first.Departure.Airport.Name; name != "" {
		suggestion.LocationName = &name
	}
	if t := preferLocal(first.Departure.ScheduledTime.Local, first.Departure.ScheduledTime.UTC); t != "" {
		suggestion.StartTime = &t
	}
	if t := preferLocal(last.Arrival.ScheduledTime.Local, last.Arrival.ScheduledTime.UTC); t != "" {
		suggestion.EndTime = &t
	}

	return suggestion
}

func preferLocal(local, utc string) string {
	if local != "" {
		return local
	}
	return utc
}
