package services

import (
	"time"

	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
)

// localTimeLayout is the wall-clock shape used by time inputs in the segment
// edit form.
const localTimeLayout = "2006-01-02T15:04"

// MergeSuggestion merges an autofill suggestion into an editable segment
// form and returns a new form state. Each field takes the suggestion's value
// only when the suggestion supplies one; the caller's state is never mutated.
func MergeSuggestion(form *entities.SegmentFormState, suggestion *entities.SegmentAutofillSuggestion, segType entities.SegmentType) *entities.SegmentFormState {
	out := *form
	out.Metadata = copyMetadata(form.Metadata)
	out.Legs = append([]entities.SegmentLeg(nil), form.Legs...)

	if suggestion == nil {
		return &out
	}

	out.Title = coalesceString(suggestion.Title, out.Title)
	out.Description = coalesceString(suggestion.Description, out.Description)
	out.LocationName = coalesceString(suggestion.LocationName, out.LocationName)
	out.LocationAddress = coalesceString(suggestion.LocationAddress, out.LocationAddress)
	out.ProviderName = coalesceString(suggestion.ProviderName, out.ProviderName)
	out.ConfirmationCode = coalesceString(suggestion.ConfirmationCode, out.ConfirmationCode)
	out.TransportNumber = coalesceString(suggestion.TransportNumber, out.TransportNumber)
	out.Timezone = coalesceString(suggestion.Timezone, out.Timezone)

	if suggestion.LocationLat != nil {
		lat := *suggestion.LocationLat
		out.LocationLat = &lat
	}
	if suggestion.LocationLng != nil {
		lng := *suggestion.LocationLng
		out.LocationLng = &lng
	}
	if suggestion.IsAllDay != nil {
		out.IsAllDay = *suggestion.IsAllDay
	}
	if suggestion.StartTime != nil {
		out.StartTime = toLocalInputTime(*suggestion.StartTime)
	}
	if suggestion.EndTime != nil {
		out.EndTime = toLocalInputTime(*suggestion.EndTime)
	}

	if len(suggestion.Metadata) > 0 || suggestion.Source != "" {
		if out.Metadata == nil {
			out.Metadata = make(map[string]interface{})
		}
		for k, v := range suggestion.Metadata {
			out.Metadata[k] = v
		}
		out.Metadata["smartFillSource"] = suggestion.Source
	}

	if isMultiLegType(segType) {
		if legs := ExtractLegs(suggestion.Metadata); len(legs) > 0 {
			out.Legs = legs
		}
	}

	return &out
}

func isMultiLegType(segType entities.SegmentType) bool {
	switch segType {
	case entities.SegmentTypeFlight, entities.SegmentTypeTrain, entities.SegmentTypeTransport:
		return true
	default:
		return false
	}
}

func coalesceString(suggested *string, existing string) string {
	if suggested != nil {
		return *suggested
	}
	return existing
}

func copyMetadata(metadata map[string]interface{}) map[string]interface{} {
	if metadata == nil {
		return nil
	}
	out := make(map[string]interface{}, len(metadata))
	for k, v := range metadata {
		out[k] = v
	}
	return out
}

// legStrategy attempts to read an ordered leg list out of one known provider
// payload shape. It returns nil when the shape is absent.
type legStrategy func(metadata map[string]interface{}) []entities.SegmentLeg

// legStrategies is tried in priority order; the first strategy yielding at
// least one leg wins.
var legStrategies = []legStrategy{
	explicitLegs,
	flightShapedLegs,
	stopTimePairs,
}

// ExtractLegs normalizes a provider metadata payload into an ordered leg
// list. Different providers express multi-hop journeys in structurally
// incompatible shapes, so extraction is a fixed chain of per-shape parsers.
func ExtractLegs(metadata map[string]interface{}) []entities.SegmentLeg {
	if metadata == nil {
		return nil
	}
	for _, strategy := range legStrategies {
		if legs := strategy(metadata); len(legs) > 0 {
			return legs
		}
	}
	return nil
}

// explicitLegs handles metadata that already carries a normalized legs array
func explicitLegs(metadata map[string]interface{}) []entities.SegmentLeg {
	raw, ok := metadata["legs"].([]interface{})
	if !ok {
		return nil
	}

	var legs []entities.SegmentLeg
	for _, item := range raw {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		origin := stringField(entry, "origin")
		destination := stringField(entry, "destination")
		if origin == "" && destination == "" {
			continue
		}
		legs = append(legs, entities.SegmentLeg{
			Origin:        origin,
			Destination:   destination,
			DepartureTime: toLocalInputTime(stringField(entry, "departureTime", "departure_time")),
			ArrivalTime:   toLocalInputTime(stringField(entry, "arrivalTime", "arrival_time")),
			Carrier:       stringField(entry, "carrier"),
			Number:        stringField(entry, "number"),
			Seat:          stringField(entry, "seat"),
		})
	}
	return legs
}

// flightShapedLegs handles flight-provider payloads where each leg is an
// object with departure/arrival sub-objects
func flightShapedLegs(metadata map[string]interface{}) []entities.SegmentLeg {
	var raw []interface{}
	switch v := metadata["legs"].(type) {
	case []interface{}:
		raw = v
	default:
		if leg, ok := metadata["leg"].(map[string]interface{}); ok {
			raw = []interface{}{leg}
		}
	}
	if raw == nil {
		return nil
	}

	var legs []entities.SegmentLeg
	for _, item := range raw {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		departure, depOK := entry["departure"].(map[string]interface{})
		arrival, arrOK := entry["arrival"].(map[string]interface{})
		if !depOK && !arrOK {
			continue
		}

		leg := entities.SegmentLeg{
			Origin:        endpointName(departure),
			Destination:   endpointName(arrival),
			DepartureTime: endpointTime(departure),
			ArrivalTime:   endpointTime(arrival),
			Number:        stringField(entry, "number"),
		}
		if airline, ok := entry["airline"].(map[string]interface{}); ok {
			leg.Carrier = stringField(airline, "name")
		}
		legs = append(legs, leg)
	}
	return legs
}

// stopTimePairs handles transit-provider payloads: an ordered stop_times
// array from which consecutive stop pairs become legs
func stopTimePairs(metadata map[string]interface{}) []entities.SegmentLeg {
	raw, ok := metadata["stop_times"].([]interface{})
	if !ok || len(raw) < 2 {
		return nil
	}

	stops := make([]map[string]interface{}, 0, len(raw))
	for _, item := range raw {
		if stop, ok := item.(map[string]interface{}); ok {
			stops = append(stops, stop)
		}
	}

	var legs []entities.SegmentLeg
	for i := 0; i+1 < len(stops); i++ {
		from, to := stops[i], stops[i+1]
		legs = append(legs, entities.SegmentLeg{
			Origin:        stopName(from),
			Destination:   stopName(to),
			DepartureTime: toLocalInputTime(stringField(from, "departure", "departure_time")),
			ArrivalTime:   toLocalInputTime(stringField(to, "arrival", "arrival_time")),
			Number:        stringField(from, "trip_short_name"),
		})
	}
	return legs
}

// endpointName reads the airport name from a flight departure/arrival object
func endpointName(endpoint map[string]interface{}) string {
	if endpoint == nil {
		return ""
	}
	if airport, ok := endpoint["airport"].(map[string]interface{}); ok {
		if name := stringField(airport, "name"); name != "" {
			return name
		}
		return stringField(airport, "iata")
	}
	return stringField(endpoint, "name")
}

// endpointTime reads the scheduled time from a flight departure/arrival
// object, preferring the local representation over UTC
func endpointTime(endpoint map[string]interface{}) string {
	if endpoint == nil {
		return ""
	}
	if scheduled, ok := endpoint["scheduledTime"].(map[string]interface{}); ok {
		if local := stringField(scheduled, "local"); local != "" {
			return toLocalInputTime(local)
		}
		return toLocalInputTime(stringField(scheduled, "utc"))
	}
	return toLocalInputTime(stringField(endpoint, "scheduledTime", "scheduled_time"))
}

func stopName(stop map[string]interface{}) string {
	if stop == nil {
		return ""
	}
	if s, ok := stop["stop"].(map[string]interface{}); ok {
		return stringField(s, "name")
	}
	return stringField(stop, "stop_name", "name")
}

// stringField returns the first non-empty string value among the given keys
func stringField(m map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// toLocalInputTime normalizes a timestamp to the form's local input shape.
// A value already in that shape passes through unchanged; otherwise common
// absolute-timestamp layouts are parsed and reformatted as local wall-clock.
func toLocalInputTime(value string) string {
	if value == "" {
		return ""
	}
	if _, err := time.Parse(localTimeLayout, value); err == nil {
		return value
	}
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04-07:00",
	} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(localTimeLayout)
		}
	}
	return value
}

// FormStateFromSegment projects a stored segment into the editable form
// shape, converting absolute times into the local input representation.
func FormStateFromSegment(segment *entities.Segment) *entities.SegmentFormState {
	form := &entities.SegmentFormState{
		Title:            segment.Title,
		Description:      segment.Description,
		LocationName:     segment.LocationName,
		LocationAddress:  segment.LocationAddress,
		LocationLat:      segment.LocationLat,
		LocationLng:      segment.LocationLng,
		IsAllDay:         segment.IsAllDay,
		ProviderName:     segment.ProviderName,
		ConfirmationCode: segment.ConfirmationCode,
		TransportNumber:  segment.TransportNumber,
		Timezone:         segment.Timezone,
		Metadata:         copyMetadata(segment.Metadata),
	}
	if segment.StartTime != nil {
		form.StartTime = segment.StartTime.Format(localTimeLayout)
	}
	if segment.EndTime != nil {
		form.EndTime = segment.EndTime.Format(localTimeLayout)
	}
	if segment.Metadata != nil {
		form.Legs = ExtractLegs(segment.Metadata)
	}
	return form
}
