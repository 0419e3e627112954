package models

import (
	"fmt"
	"strings"
	"time"

	"eventgate/internal/domain"
	dErrors "eventgate/pkg/domain-errors"
	pstrings "eventgate/pkg/platform/strings"
)

const (
	MaxNameLength   = 200
	MaxListEntries  = 500
	MaxDescription  = 4000
	DefaultUpcoming = 5
)

// CreatePerkRequest creates a perk. ID is optional; slugs such as
// "material-digital" let content reference perks by a readable name.
type CreatePerkRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

func (r *CreatePerkRequest) Normalize() {
	r.ID = strings.TrimSpace(r.ID)
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	r.Type = strings.ToLower(strings.TrimSpace(r.Type))
	if r.Type == "" {
		r.Type = string(domain.PerkOther)
	}
}

func (r *CreatePerkRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if len(r.Name) > MaxNameLength {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("name must be at most %d characters", MaxNameLength))
	}
	if !domain.PerkType(r.Type).IsValid() {
		return dErrors.New(dErrors.CodeValidation, "type must be one of material, access, certificate, other")
	}
	return nil
}

// UpdatePerkRequest is a partial perk update. Nil fields are left unchanged.
type UpdatePerkRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Type        *string `json:"type"`
}

func (r *UpdatePerkRequest) Validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name cannot be empty")
	}
	if r.Type != nil && !domain.PerkType(strings.ToLower(strings.TrimSpace(*r.Type))).IsValid() {
		return dErrors.New(dErrors.CodeValidation, "type must be one of material, access, certificate, other")
	}
	return nil
}

func (r *UpdatePerkRequest) Attributes() map[string]any {
	attrs := map[string]any{}
	if r.Name != nil {
		attrs["name"] = strings.TrimSpace(*r.Name)
	}
	if r.Description != nil {
		attrs["description"] = strings.TrimSpace(*r.Description)
	}
	if r.Type != nil {
		attrs["type"] = strings.ToLower(strings.TrimSpace(*r.Type))
	}
	return attrs
}

// CreateEventRequest creates an event. Name, date and location are required.
type CreateEventRequest struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Date        time.Time `json:"date"`
	Capacity    *int      `json:"capacity"`
	Attendees   []string  `json:"attendees"`
	IsActive    *bool     `json:"isActive"`
}

func (r *CreateEventRequest) Normalize() {
	r.ID = strings.TrimSpace(r.ID)
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	r.Location = strings.TrimSpace(r.Location)
	r.Attendees = pstrings.DedupeAndTrim(r.Attendees)
}

func (r *CreateEventRequest) Validate() error {
	if r.Name == "" || r.Date.IsZero() || r.Location == "" {
		return dErrors.New(dErrors.CodeValidation, "name, date and location are required")
	}
	if len(r.Name) > MaxNameLength {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("name must be at most %d characters", MaxNameLength))
	}
	if len(r.Description) > MaxDescription {
		return dErrors.New(dErrors.CodeValidation, "description is too long")
	}
	if r.Capacity != nil && *r.Capacity < 0 {
		return dErrors.New(dErrors.CodeValidation, "capacity cannot be negative")
	}
	if len(r.Attendees) > MaxListEntries {
		return dErrors.New(dErrors.CodeValidation, "too many attendees")
	}
	return nil
}

// UpdateEventRequest is a partial event update. A non-nil Attendees replaces
// the whole list.
type UpdateEventRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	Date        *time.Time `json:"date"`
	Capacity    *int       `json:"capacity"`
	Attendees   []string   `json:"attendees"`
	IsActive    *bool      `json:"isActive"`
}

func (r *UpdateEventRequest) Validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name cannot be empty")
	}
	if r.Location != nil && strings.TrimSpace(*r.Location) == "" {
		return dErrors.New(dErrors.CodeValidation, "location cannot be empty")
	}
	if r.Date != nil && r.Date.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "date cannot be empty")
	}
	if r.Capacity != nil && *r.Capacity < 0 {
		return dErrors.New(dErrors.CodeValidation, "capacity cannot be negative")
	}
	if len(r.Attendees) > MaxListEntries {
		return dErrors.New(dErrors.CodeValidation, "too many attendees")
	}
	return nil
}

func (r *UpdateEventRequest) Attributes() map[string]any {
	attrs := map[string]any{}
	if r.Name != nil {
		attrs["name"] = strings.TrimSpace(*r.Name)
	}
	if r.Description != nil {
		attrs["description"] = strings.TrimSpace(*r.Description)
	}
	if r.Location != nil {
		attrs["location"] = strings.TrimSpace(*r.Location)
	}
	if r.Date != nil {
		attrs["date"] = r.Date.UTC()
	}
	if r.Capacity != nil {
		attrs["capacity"] = *r.Capacity
	}
	if r.Attendees != nil {
		attrs["attendees"] = pstrings.DedupeAndTrim(r.Attendees)
	}
	if r.IsActive != nil {
		attrs["isActive"] = *r.IsActive
	}
	return attrs
}

// AttendeeRequest adds one user to an event.
type AttendeeRequest struct {
	UserID string `json:"userId"`
}

// CreateContentRequest creates a gated content item. An empty RequiredPerks
// makes it public to any active account.
type CreateContentRequest struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Type          string   `json:"type"`
	URL           string   `json:"url"`
	Images        []string `json:"images"`
	RequiredPerks []string `json:"requiredPerks"`
}

func (r *CreateContentRequest) Normalize() {
	r.ID = strings.TrimSpace(r.ID)
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Type = strings.ToLower(strings.TrimSpace(r.Type))
	r.URL = strings.TrimSpace(r.URL)
	r.Images = pstrings.DedupeAndTrim(r.Images)
	r.RequiredPerks = pstrings.DedupeAndTrim(r.RequiredPerks)
	if r.Type == "" {
		r.Type = string(domain.ContentPDF)
		if len(r.Images) > 0 {
			r.Type = string(domain.ContentImages)
		}
	}
}

func (r *CreateContentRequest) Validate() error {
	if r.Title == "" {
		return dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if len(r.Title) > MaxNameLength {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("title must be at most %d characters", MaxNameLength))
	}
	switch domain.ContentType(r.Type) {
	case domain.ContentPDF:
		if r.URL == "" {
			return dErrors.New(dErrors.CodeValidation, "url is required for pdf content")
		}
	case domain.ContentImages:
		if len(r.Images) == 0 {
			return dErrors.New(dErrors.CodeValidation, "images are required for image content")
		}
	default:
		return dErrors.New(dErrors.CodeValidation, "type must be pdf or images")
	}
	if len(r.Images) > MaxListEntries || len(r.RequiredPerks) > MaxListEntries {
		return dErrors.New(dErrors.CodeValidation, "too many list entries")
	}
	return nil
}

// UpdateContentRequest is a partial content update.
type UpdateContentRequest struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	Type          *string  `json:"type"`
	URL           *string  `json:"url"`
	Images        []string `json:"images"`
	RequiredPerks []string `json:"requiredPerks"`
}

func (r *UpdateContentRequest) Validate() error {
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return dErrors.New(dErrors.CodeValidation, "title cannot be empty")
	}
	if r.Type != nil && !domain.ContentType(strings.ToLower(strings.TrimSpace(*r.Type))).IsValid() {
		return dErrors.New(dErrors.CodeValidation, "type must be pdf or images")
	}
	if len(r.Images) > MaxListEntries || len(r.RequiredPerks) > MaxListEntries {
		return dErrors.New(dErrors.CodeValidation, "too many list entries")
	}
	return nil
}

func (r *UpdateContentRequest) Attributes() map[string]any {
	attrs := map[string]any{}
	if r.Title != nil {
		attrs["title"] = strings.TrimSpace(*r.Title)
	}
	if r.Description != nil {
		attrs["description"] = strings.TrimSpace(*r.Description)
	}
	if r.Type != nil {
		attrs["type"] = strings.ToLower(strings.TrimSpace(*r.Type))
	}
	if r.URL != nil {
		attrs["url"] = strings.TrimSpace(*r.URL)
	}
	if r.Images != nil {
		attrs["images"] = pstrings.DedupeAndTrim(r.Images)
	}
	if r.RequiredPerks != nil {
		attrs["requiredPerks"] = pstrings.DedupeAndTrim(r.RequiredPerks)
	}
	return attrs
}
