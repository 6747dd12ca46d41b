package domain

import (
	"context"
	"time"
)

// CheckIn is the attendance record of a user for an event. Its existence means the user is
// registered; CheckedIn means the user was marked present.
// swagger:model CheckIn
type CheckIn struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId"`
	UserID    string    `json:"userId"`
	CheckedIn bool      `json:"checkedIn"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewCheckIn creates a new, not yet checked in, CheckIn. ID is typically set by the repository on create.
func NewCheckIn(eventID, userID string, createdAt, updatedAt time.Time) *CheckIn {
	return &CheckIn{
		EventID:   eventID,
		UserID:    userID,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// CheckInRepository defines storage operations for attendance records.
// At most one record exists per (event, user); Create returns ErrAlreadyRegistered otherwise.
type CheckInRepository interface {
	Create(ctx context.Context, c *CheckIn) error
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*CheckIn, error)
	CountByEvent(ctx context.Context, eventID string) (int, error)
	ListAttendees(ctx context.Context, eventID string) ([]*Attendee, error)
	ListByUserID(ctx context.Context, userID string) ([]*CheckIn, error)
	// MarkCheckedIn flips checked_in to true; returns ErrAlreadyCheckedIn if it already was.
	MarkCheckedIn(ctx context.Context, eventID, userID string) (*CheckIn, error)
	DeleteByEvent(ctx context.Context, eventID string) (int64, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// Repositories groups repositories that share one transaction.
type Repositories struct {
	Users    UserRepository
	Events   EventRepository
	CheckIns CheckInRepository
}

// Transactor runs fn inside a single store transaction. The transaction commits if fn
// returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// EventRegistrationWithEvent bundles a registration with its related event.
type EventRegistrationWithEvent struct {
	Registration *CheckIn `json:"registration"`
	Event        *Event   `json:"event"`
}

// AttendeeService defines attendee-facing operations such as event registration.
type AttendeeService interface {
	RegisterForEvent(ctx context.Context, eventSlug, userID string) (*CheckIn, error)
	ListMyRegisteredEvents(ctx context.Context, userID string) ([]*EventRegistrationWithEvent, error)
}

// Badge is the scannable check-in pass of a registered user.
// swagger:model Badge
type Badge struct {
	EventID    string `json:"eventId"`
	UserID     string `json:"userId"`
	CheckInURL string `json:"checkInUrl"`
	// Image is the PNG QR code as a data URL.
	Image string `json:"image"`
	PNG   []byte `json:"-"`
}

// BadgeEncoder turns text into a scannable PNG image.
type BadgeEncoder interface {
	Encode(content string) ([]byte, error)
}

// CheckInService generates badges and marks attendees present.
type CheckInService interface {
	GetBadge(ctx context.Context, eventSlug, userID string) (*Badge, error)
	CheckIn(ctx context.Context, eventID, userID, callerID string) (*CheckIn, error)
}
