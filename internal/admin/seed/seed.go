// Package seed loads development fixtures: one account per role, the
// standard workshop perks, a sample event and gated content.
package seed

import (
	"context"
	"log/slog"
	"time"

	authModels "eventgate/internal/auth/models"
	catalogModels "eventgate/internal/catalog/models"
	"eventgate/internal/domain"
	dErrors "eventgate/pkg/domain-errors"
	"eventgate/pkg/requestcontext"
)

type Accounts interface {
	CreateUser(ctx context.Context, req authModels.CreateUserRequest) (*domain.User, error)
}

type Catalog interface {
	CreatePerk(ctx context.Context, req catalogModels.CreatePerkRequest) (*domain.Perk, error)
	CreateEvent(ctx context.Context, req catalogModels.CreateEventRequest) (*domain.Event, error)
	CreateContent(ctx context.Context, req catalogModels.CreateContentRequest) (*domain.ContentItem, error)
}

const EventID = "workshop-2024"

var perks = []catalogModels.CreatePerkRequest{
	{ID: "material-digital", Name: "Material digital", Description: "Slides and PDFs", Type: string(domain.PerkMaterial)},
	{ID: "material-impreso", Name: "Material impreso", Description: "Printed handouts", Type: string(domain.PerkMaterial)},
	{ID: "videos-extra", Name: "Videos extra", Description: "Session recordings", Type: string(domain.PerkAccess)},
	{ID: "certificado", Name: "Certificado", Description: "Attendance certificate", Type: string(domain.PerkCertificate)},
}

var allPerks = []string{"material-digital", "material-impreso", "videos-extra", "certificado"}

type account struct {
	req      authModels.CreateUserRequest
	attendee bool
}

var accounts = []account{
	{req: authModels.CreateUserRequest{
		Email: "admin@example.com", Password: "adminpassword", Name: "Administrador",
		Role: string(domain.RoleAdmin), Perks: allPerks, EventAccess: []string{EventID},
	}},
	{req: authModels.CreateUserRequest{
		Email: "staff@example.com", Password: "staffpassword", Name: "Staff",
		Role: string(domain.RoleStaff), Perks: []string{"material-digital"},
	}},
	{req: authModels.CreateUserRequest{
		Email: "user@example.com", Password: "userpassword", Name: "Usuario",
		Role: string(domain.RoleUser), Perks: []string{"material-digital", "videos-extra"}, EventAccess: []string{EventID},
	}, attendee: true},
}

// Run creates the fixtures. Records that already exist are left as they are,
// so Run is safe to call on every start.
func Run(ctx context.Context, users Accounts, catalog Catalog, logger *slog.Logger) error {
	var attendees []string
	for _, a := range accounts {
		u, err := users.CreateUser(ctx, a.req)
		if err := skipExisting(ctx, logger, "user", a.req.Email, err); err != nil {
			return err
		}
		if u != nil && a.attendee {
			attendees = append(attendees, u.ID)
		}
	}

	for _, p := range perks {
		_, err := catalog.CreatePerk(ctx, p)
		if err := skipExisting(ctx, logger, "perk", p.ID, err); err != nil {
			return err
		}
	}

	capacity := 50
	_, err := catalog.CreateEvent(ctx, catalogModels.CreateEventRequest{
		ID:          EventID,
		Name:        "Workshop 2024",
		Description: "Hands-on workshop",
		Location:    "Sala principal",
		Date:        requestcontext.Now(ctx).Add(30 * 24 * time.Hour).Truncate(time.Hour),
		Capacity:    &capacity,
		Attendees:   attendees,
	})
	if err := skipExisting(ctx, logger, "event", EventID, err); err != nil {
		return err
	}

	content := []catalogModels.CreateContentRequest{
		{ID: "guia-taller", Title: "Guia del taller", Type: string(domain.ContentPDF), URL: "/content/guia-taller.pdf"},
		{ID: "slides-dia-1", Title: "Slides dia 1", Type: string(domain.ContentPDF), URL: "/content/slides-dia-1.pdf", RequiredPerks: []string{"material-digital"}},
		{ID: "galeria", Title: "Galeria", Type: string(domain.ContentImages), Images: []string{"/content/galeria/1.jpg", "/content/galeria/2.jpg"}, RequiredPerks: []string{"videos-extra", "certificado"}},
	}
	for _, c := range content {
		_, err := catalog.CreateContent(ctx, c)
		if err := skipExisting(ctx, logger, "content", c.ID, err); err != nil {
			return err
		}
	}

	logger.InfoContext(ctx, "development seed applied", "users", len(accounts), "perks", len(perks), "content", len(content))
	return nil
}

func skipExisting(ctx context.Context, logger *slog.Logger, kind, key string, err error) error {
	if err == nil {
		return nil
	}
	if dErrors.HasCode(err, dErrors.CodeConflict) {
		logger.DebugContext(ctx, "seed record already present", "kind", kind, "key", key)
		return nil
	}
	return err
}
