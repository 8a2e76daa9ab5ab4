package entities

import "time"

// SegmentType is the canonical kind of a travel segment
type SegmentType string

const (
	SegmentTypeFlight    SegmentType = "flight"
	SegmentTypeTrain     SegmentType = "train"
	SegmentTypeTransport SegmentType = "transport"
	SegmentTypeHotel     SegmentType = "hotel"
	SegmentTypeMeal      SegmentType = "meal"
	SegmentTypeActivity  SegmentType = "activity"
	SegmentTypeCustom    SegmentType = "custom"
)

// Segment represents a single entry in an itinerary
type Segment struct {
	ID               string                 `json:"id"`
	ItineraryID      string                 `json:"itinerary_id"`
	Type             SegmentType            `json:"type"`
	Title            string                 `json:"title"`
	Description      string                 `json:"description,omitempty"`
	LocationName     string                 `json:"location_name,omitempty"`
	LocationAddress  string                 `json:"location_address,omitempty"`
	LocationLat      *float64               `json:"location_lat,omitempty"`
	LocationLng      *float64               `json:"location_lng,omitempty"`
	StartTime        *time.Time             `json:"start_time,omitempty"`
	EndTime          *time.Time             `json:"end_time,omitempty"`
	IsAllDay         bool                   `json:"is_all_day"`
	ProviderName     string                 `json:"provider_name,omitempty"`
	ConfirmationCode string                 `json:"confirmation_code,omitempty"`
	TransportNumber  string                 `json:"transport_number,omitempty"`
	Timezone         string                 `json:"timezone,omitempty"`
	Position         int                    `json:"position"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

// ChecklistItem represents a to-do item attached to a segment
type ChecklistItem struct {
	ID        string    `json:"id"`
	SegmentID string    `json:"segment_id"`
	Label     string    `json:"label"`
	IsDone    bool      `json:"is_done"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
