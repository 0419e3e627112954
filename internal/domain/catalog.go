package domain

import "time"

// PerkType groups perks for display; it has no authorization meaning.
type PerkType string

const (
	PerkMaterial    PerkType = "material"
	PerkAccess      PerkType = "access"
	PerkCertificate PerkType = "certificate"
	PerkOther       PerkType = "other"
)

func (t PerkType) IsValid() bool {
	switch t {
	case PerkMaterial, PerkAccess, PerkCertificate, PerkOther:
		return true
	}
	return false
}

// Perk is a named entitlement. Its ID is the string carried in User.Perks and
// ContentItem.RequiredPerks.
type Perk struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Type        PerkType  `json:"type"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ContentType tells clients how to render the payload locator.
type ContentType string

const (
	ContentPDF    ContentType = "pdf"
	ContentImages ContentType = "images"
)

func (t ContentType) IsValid() bool {
	return t == ContentPDF || t == ContentImages
}

// ContentItem is a gated digital asset. An empty RequiredPerks list makes the
// item visible to any active principal.
type ContentItem struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Description   string      `json:"description,omitempty"`
	Type          ContentType `json:"type"`
	URL           string      `json:"url,omitempty"`
	Images        []string    `json:"images,omitempty"`
	RequiredPerks []string    `json:"requiredPerks"`
	CreatedAt     time.Time   `json:"createdAt"`
	CreatedBy     string      `json:"createdBy,omitempty"`
}

// Event is a dated gathering with an attendee list. Capacity is informational.
type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location"`
	Date        time.Time `json:"date"`
	Capacity    *int      `json:"capacity"`
	Attendees   []string  `json:"attendees"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	CreatedBy   string    `json:"createdBy,omitempty"`
}

// IsUpcoming reports whether the event date is strictly after now.
func (e *Event) IsUpcoming(now time.Time) bool {
	return e.Date.After(now)
}

// HasAttendee reports whether userID is on the attendee list.
func (e *Event) HasAttendee(userID string) bool {
	for _, a := range e.Attendees {
		if a == userID {
			return true
		}
	}
	return false
}
