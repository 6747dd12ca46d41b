package domain

import (
	"context"
	"regexp"
	"strings"
	"time"
)

// Event represents an in-person event
// swagger:model Event
type Event struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Slug             string    `json:"slug"`
	Details          *string   `json:"details,omitempty"`
	MaximumAttendees *int      `json:"maximumAttendees,omitempty"`
	AgeRestricted    bool      `json:"ageRestricted"`
	DateStart        time.Time `json:"dateStart"`
	DateEnd          time.Time `json:"dateEnd"`
	CreatorID        string    `json:"eventCreatorId"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
func NewEvent(title, creatorID string, dateStart, dateEnd, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Title:     title,
		Slug:      Slugify(title),
		CreatorID: creatorID,
		DateStart: dateStart,
		DateEnd:   dateEnd,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9 -]`)
	slugSpaces       = regexp.MustCompile(`\s+`)
	slugHyphens      = regexp.MustCompile(`-+`)
)

// Slugify derives the URL identifier of a title: lowercased, trimmed, characters other than
// a-z, 0-9, space and hyphen removed, whitespace runs turned into one hyphen.
func Slugify(title string) string {
	s := strings.TrimSpace(strings.ToLower(title))
	s = slugInvalidChars.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	return slugHyphens.ReplaceAllString(s, "-")
}

// Attendee is a registered user as listed on an event.
// swagger:model Attendee
type Attendee struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	BirthDate time.Time `json:"birthDate"`
	CheckedIn bool      `json:"checkedIn"`
}

// EventWithAttendees bundles an event with its registered attendees.
// swagger:model EventWithAttendees
type EventWithAttendees struct {
	*Event
	Attendees []*Attendee `json:"attendees"`
}

// CreateEventInput holds the fields accepted when creating an event.
type CreateEventInput struct {
	Title            string
	Details          *string
	MaximumAttendees *int
	AgeRestricted    bool
	DateStart        time.Time
	DateEnd          time.Time
}

// UpdateEventInput holds a partial event update; nil fields are left unchanged.
// ClearMaximumAttendees removes the capacity limit and takes precedence over MaximumAttendees.
type UpdateEventInput struct {
	Title                 *string
	Details               *string
	MaximumAttendees      *int
	ClearMaximumAttendees bool
	AgeRestricted         *bool
	DateStart             *time.Time
	DateEnd               *time.Time
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetBySlug(ctx context.Context, slug string) (*Event, error)
	// GetBySlugForUpdate is GetBySlug taking a row lock; only meaningful inside a transaction.
	GetBySlugForUpdate(ctx context.Context, slug string) (*Event, error)
	List(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	ListEndedBefore(ctx context.Context, cutoff time.Time) ([]*Event, error)
	CountByCreator(ctx context.Context, creatorID string) (int, error)
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id string) error
}

// EventService defines event management operations.
type EventService interface {
	CreateEvent(ctx context.Context, creatorID string, in *CreateEventInput) (*Event, error)
	ListEvents(ctx context.Context, params PaginationParams) ([]*EventWithAttendees, int, error)
	GetEvent(ctx context.Context, slug string) (*EventWithAttendees, error)
	UpdateEvent(ctx context.Context, slug, callerID string, in *UpdateEventInput) (*Event, error)
	DeleteEvent(ctx context.Context, slug, callerID string) error
	// RemovePastEvents deletes events that ended more than 30 days ago, with their check-ins.
	RemovePastEvents(ctx context.Context) (int, error)
}
