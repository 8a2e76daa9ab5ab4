package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/waypointhq/waypoint-backend/internal/domain/entities"
	"github.com/waypointhq/waypoint-backend/internal/domain/providers"
	apperrors "github.com/waypointhq/waypoint-backend/pkg/errors"
)

// AssistantService answers conversational questions about a user's trip by
// grounding the chat backend with the itinerary and its segments.
type AssistantService struct {
	chat             providers.ChatProvider
	itineraryService *ItineraryService
	segmentService   *SegmentService
}

// NewAssistantService creates a new assistant service. chat may be nil when
// no completion backend is configured.
func NewAssistantService(
	chat providers.ChatProvider,
	itineraryService *ItineraryService,
	segmentService *SegmentService,
) *AssistantService {
	return &AssistantService{
		chat:             chat,
		itineraryService: itineraryService,
		segmentService:   segmentService,
	}
}

const maxConversationTurns = 20

// Ask returns the assistant's reply for a conversation about an itinerary
func (s *AssistantService) Ask(ctx context.Context, userID, itineraryID string, messages []entities.ChatMessage) (string, error) {
	if s.chat == nil {
		return "", apperrors.NewExternalError("assistant is not available", nil)
	}
	if len(messages) == 0 {
		return "", apperrors.NewValidationError("at least one message is required")
	}
	if len(messages) > maxConversationTurns {
		messages = messages[len(messages)-maxConversationTurns:]
	}
	for _, m := range messages {
		if m.Role != entities.ChatRoleUser && m.Role != entities.ChatRoleAssistant {
			return "", apperrors.NewValidationError("messages may only use user or assistant roles")
		}
		if strings.TrimSpace(m.Content) == "" {
			return "", apperrors.NewValidationError("message content cannot be empty")
		}
	}

	grounded := messages
	if itineraryID != "" {
		itinerary, err := s.itineraryService.Get(ctx, userID, itineraryID)
		if err != nil {
			return "", err
		}
		segments, err := s.segmentService.List(ctx, userID, itineraryID)
		if err != nil {
			return "", err
		}

		grounded = append([]entities.ChatMessage{{
			Role:    entities.ChatRoleSystem,
			Content: itineraryContext(itinerary, segments),
		}}, messages...)
	}

	return s.chat.Complete(ctx, grounded)
}

// itineraryContext renders the trip as a compact plain-text block for the
// completion prompt
func itineraryContext(itinerary *entities.Itinerary, segments []*entities.Segment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The user is planning the trip %q", itinerary.Title)
	if itinerary.Destination != "" {
		fmt.Fprintf(&b, " to %s", itinerary.Destination)
	}
	if itinerary.StartDate != "" || itinerary.EndDate != "" {
		fmt.Fprintf(&b, " (%s to %s)", itinerary.StartDate, itinerary.EndDate)
	}
	b.WriteString(".\nCurrent segments:\n")

	if len(segments) == 0 {
		b.WriteString("(none yet)\n")
	}
	for _, seg := range segments {
		fmt.Fprintf(&b, "- [%s] %s", seg.Type, seg.Title)
		if seg.LocationName != "" {
			fmt.Fprintf(&b, " at %s", seg.LocationName)
		}
		if seg.StartTime != nil {
			fmt.Fprintf(&b, " starting %s", seg.StartTime.Format("2006-01-02 15:04"))
		}
		b.WriteString("\n")
	}
	return b.String()
}
