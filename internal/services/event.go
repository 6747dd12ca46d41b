package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"passin/internal/domain"
)

// PastEventRetention is how long after its end an event is kept before the sweep removes it.
const PastEventRetention = 30 * 24 * time.Hour

type eventService struct {
	eventRepo      domain.EventRepository
	checkInRepo    domain.CheckInRepository
	tx             domain.Transactor
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time
}

func NewEventService(
	eventRepo domain.EventRepository,
	checkInRepo domain.CheckInRepository,
	tx domain.Transactor,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		checkInRepo:    checkInRepo,
		tx:             tx,
		logger:         logger,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func validateEventFields(e *domain.Event) error {
	if strings.TrimSpace(e.Title) == "" {
		return domain.InvalidInputf("title is required")
	}
	if e.Slug == "" {
		return domain.InvalidInputf("title must contain at least one letter or digit")
	}
	if e.DateStart.IsZero() || e.DateEnd.IsZero() {
		return domain.InvalidInputf("dateStart and dateEnd are required")
	}
	if e.DateEnd.Before(e.DateStart) {
		return domain.InvalidInputf("dateEnd must not be before dateStart")
	}
	if e.MaximumAttendees != nil && *e.MaximumAttendees < 0 {
		return domain.InvalidInputf("maximumAttendees must not be negative")
	}
	return nil
}

func (s *eventService) CreateEvent(ctx context.Context, creatorID string, in *domain.CreateEventInput) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if creatorID == "" {
		return nil, fmt.Errorf("event creator is required")
	}
	now := s.now()
	event := domain.NewEvent(strings.TrimSpace(in.Title), creatorID, in.DateStart, in.DateEnd, now, now)
	event.Details = in.Details
	event.MaximumAttendees = in.MaximumAttendees
	event.AgeRestricted = in.AgeRestricted
	if err := validateEventFields(event); err != nil {
		return nil, err
	}

	if _, err := s.eventRepo.GetBySlug(ctx, event.Slug); err == nil {
		return nil, domain.ErrDuplicateSlug
	} else if !errors.Is(err, domain.ErrEventNotFound) {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		if errors.Is(err, domain.ErrDuplicateSlug) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

func (s *eventService) withAttendees(ctx context.Context, e *domain.Event) (*domain.EventWithAttendees, error) {
	attendees, err := s.checkInRepo.ListAttendees(ctx, e.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendees: %w", err)
	}
	return &domain.EventWithAttendees{Event: e, Attendees: attendees}, nil
}

func (s *eventService) ListEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.EventWithAttendees, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	out := make([]*domain.EventWithAttendees, 0, len(events))
	for _, e := range events {
		ewa, err := s.withAttendees(ctx, e)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, ewa)
	}
	return out, total, nil
}

func (s *eventService) getBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	event, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, slug string) (*domain.EventWithAttendees, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.getBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.withAttendees(ctx, event)
}

func (s *eventService) UpdateEvent(ctx context.Context, slug, callerID string, in *domain.UpdateEventInput) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.getBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if event.CreatorID != callerID {
		return nil, domain.ErrNotEventCreator
	}

	if in.Title != nil {
		event.Title = strings.TrimSpace(*in.Title)
		event.Slug = domain.Slugify(event.Title)
	}
	if in.Details != nil {
		event.Details = in.Details
	}
	switch {
	case in.ClearMaximumAttendees:
		event.MaximumAttendees = nil
	case in.MaximumAttendees != nil:
		event.MaximumAttendees = in.MaximumAttendees
	}
	if in.AgeRestricted != nil {
		event.AgeRestricted = *in.AgeRestricted
	}
	if in.DateStart != nil {
		event.DateStart = *in.DateStart
	}
	if in.DateEnd != nil {
		event.DateEnd = *in.DateEnd
	}
	if err := validateEventFields(event); err != nil {
		return nil, err
	}

	if event.Slug != slug {
		if other, err := s.eventRepo.GetBySlug(ctx, event.Slug); err == nil && other.ID != event.ID {
			return nil, domain.ErrDuplicateSlug
		} else if err != nil && !errors.Is(err, domain.ErrEventNotFound) {
			return nil, fmt.Errorf("failed to check slug: %w", err)
		}
	}
	event.UpdatedAt = s.now()
	if err := s.eventRepo.Update(ctx, event); err != nil {
		if errors.Is(err, domain.ErrDuplicateSlug) || errors.Is(err, domain.ErrEventNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, slug, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.getBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if event.CreatorID != callerID {
		return domain.ErrNotEventCreator
	}
	return s.deleteWithCheckIns(ctx, event.ID)
}

func (s *eventService) deleteWithCheckIns(ctx context.Context, eventID string) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context, repos domain.Repositories) error {
		if _, err := repos.CheckIns.DeleteByEvent(ctx, eventID); err != nil {
			return fmt.Errorf("failed to delete check-ins: %w", err)
		}
		if err := repos.Events.Delete(ctx, eventID); err != nil {
			if errors.Is(err, domain.ErrEventNotFound) {
				return err
			}
			return fmt.Errorf("failed to delete event: %w", err)
		}
		return nil
	})
}

// RemovePastEvents deletes every event that ended more than PastEventRetention ago. Each event
// is removed in its own transaction; events already gone are skipped, so re-running is safe.
func (s *eventService) RemovePastEvents(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-PastEventRetention)
	events, err := s.eventRepo.ListEndedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list past events: %w", err)
	}
	removed := 0
	for _, e := range events {
		if err := s.deleteWithCheckIns(ctx, e.ID); err != nil {
			if errors.Is(err, domain.ErrEventNotFound) {
				continue
			}
			return removed, fmt.Errorf("failed to remove event %s: %w", e.ID, err)
		}
		removed++
	}
	s.logger.InfoContext(ctx, "past events removed", "count", removed, "cutoff", cutoff)
	return removed, nil
}
