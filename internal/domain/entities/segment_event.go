package entities

import "time"

// SegmentEventType identifies a segment change event
type SegmentEventType string

const (
	SegmentEventCreated SegmentEventType = "segment.created"
	SegmentEventUpdated SegmentEventType = "segment.updated"
	SegmentEventDeleted SegmentEventType = "segment.deleted"
)

// SegmentEvent is published on segment writes so cached itinerary
// responses for the owning user can be invalidated.
type SegmentEvent struct {
	ID          string           `json:"id"`
	Type        SegmentEventType `json:"type"`
	SegmentID   string           `json:"segment_id"`
	ItineraryID string           `json:"itinerary_id"`
	OwnerID     string           `json:"owner_id"`
	OccurredAt  time.Time        `json:"occurred_at"`
}
