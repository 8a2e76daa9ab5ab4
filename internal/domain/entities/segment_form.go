package entities

// SegmentLeg is one origin-to-destination hop within a multi-stop journey
type SegmentLeg struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureTime string `json:"departureTime,omitempty"`
	ArrivalTime   string `json:"arrivalTime,omitempty"`
	Carrier       string `json:"carrier,omitempty"`
	Number        string `json:"number,omitempty"`
	Seat          string `json:"seat,omitempty"`
}

// SegmentFormState is the editable segment form as the UI holds it.
// Time fields use the local wall-clock input shape (2006-01-02T15:04).
type SegmentFormState struct {
	Title            string                 `json:"title"`
	Description      string                 `json:"description"`
	LocationName     string                 `json:"locationName"`
	LocationAddress  string                 `json:"locationAddress"`
	LocationLat      *float64               `json:"locationLat,omitempty"`
	LocationLng      *float64               `json:"locationLng,omitempty"`
	StartTime        string                 `json:"startTime"`
	EndTime          string                 `json:"endTime"`
	IsAllDay         bool                   `json:"isAllDay"`
	ProviderName     string                 `json:"providerName"`
	ConfirmationCode string                 `json:"confirmationCode"`
	TransportNumber  string                 `json:"transportNumber"`
	Timezone         string                 `json:"timezone"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
	Legs             []SegmentLeg           `json:"legs,omitempty"`
}
