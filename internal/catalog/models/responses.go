package models

import (
	"time"

	"eventgate/internal/domain"
)

// UpcomingEvent is the public listing shape. Attendee ids are not exposed,
// only their count.
type UpcomingEvent struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Date        time.Time  `json:"date"`
	Location    string     `json:"location"`
	Capacity    *int       `json:"capacity"`
	Count       EventCount `json:"_count"`
}

type EventCount struct {
	Attendees int `json:"attendees"`
}

func NewUpcomingEvent(e *domain.Event) UpcomingEvent {
	return UpcomingEvent{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		Date:        e.Date,
		Location:    e.Location,
		Capacity:    e.Capacity,
		Count:       EventCount{Attendees: len(e.Attendees)},
	}
}

// ContentResponse wraps a content item a principal is allowed to view.
type ContentResponse struct {
	Success bool                `json:"success"`
	Content *domain.ContentItem `json:"content"`
}
