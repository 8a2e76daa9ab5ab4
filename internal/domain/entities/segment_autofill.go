package entities

// AutofillContext is an optional geographic bias for place lookups.
// Fields are independently optional; a context with no valid field is
// represented as a nil pointer, never as an empty struct.
type AutofillContext struct {
	Latitude     *float64 `json:"lat,omitempty"`
	Longitude    *float64 `json:"lng,omitempty"`
	RadiusMeters *float64 `json:"radiusMeters,omitempty"`
}

// SegmentAutofillRequest is a normalized autofill lookup request.
// Type and Query are always present after normalization.
type SegmentAutofillRequest struct {
	Type     SegmentType            `json:"type"`
	Query    string                 `json:"query"`
	Date     string                 `json:"date,omitempty"`
	Context  *AutofillContext       `json:"context,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// SegmentAutofillSuggestion is the normalized output of a provider lookup.
// Every field is independently nullable so the merge layer can distinguish
// "provider does not know" from "provider says empty".
type SegmentAutofillSuggestion struct {
	Title            *string                `json:"title,omitempty"`
	Description      *string                `json:"description,omitempty"`
	LocationName     *string                `json:"location_name,omitempty"`
	LocationAddress  *string                `json:"location_address,omitempty"`
	LocationLat      *float64               `json:"location_lat,omitempty"`
	LocationLng      *float64               `json:"location_lng,omitempty"`
	StartTime        *string                `json:"start_time,omitempty"`
	EndTime          *string                `json:"end_time,omitempty"`
	IsAllDay         *bool                  `json:"is_all_day,omitempty"`
	ProviderName     *string                `json:"provider_name,omitempty"`
	ConfirmationCode *string                `json:"confirmation_code,omitempty"`
	TransportNumber  *string                `json:"transport_number,omitempty"`
	Timezone         *string                `json:"timezone,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
	Source           string                 `json:"source"`
}
