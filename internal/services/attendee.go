package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"passin/internal/domain"
)

const (
	minimumAge          = 18
	registrationMailFmt = "02/01/2006 15:04"
)

type attendeeService struct {
	tx             domain.Transactor
	eventRepo      domain.EventRepository
	checkInRepo    domain.CheckInRepository
	emailService   domain.EmailService
	zone           *time.Location
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time
}

// NewAttendeeService creates an AttendeeService. emailService may be nil to skip confirmations.
// zone is where the confirmation mail's start time is shown; nil means UTC.
func NewAttendeeService(
	tx domain.Transactor,
	eventRepo domain.EventRepository,
	checkInRepo domain.CheckInRepository,
	emailService domain.EmailService,
	zone *time.Location,
	logger *slog.Logger,
	timeout time.Duration,
) domain.AttendeeService {
	if zone == nil {
		zone = time.UTC
	}
	return &attendeeService{
		tx:             tx,
		eventRepo:      eventRepo,
		checkInRepo:    checkInRepo,
		emailService:   emailService,
		zone:           zone,
		logger:         logger,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

// RegisterForEvent runs every registration gate inside one transaction with the event row
// locked, so concurrent registrations for the same event are serialized. The confirmation
// mail is sent only after commit and its failure does not fail the registration.
func (s *attendeeService) RegisterForEvent(ctx context.Context, eventSlug, userID string) (*domain.CheckIn, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var (
		reg   *domain.CheckIn
		event *domain.Event
		user  *domain.User
	)
	now := s.now()
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		event, err = repos.Events.GetBySlugForUpdate(ctx, eventSlug)
		if err != nil {
			if errors.Is(err, domain.ErrEventNotFound) {
				return err
			}
			return fmt.Errorf("get event: %w", err)
		}

		if civilDate(now.UTC()).After(civilDate(event.DateEnd.UTC())) {
			return domain.ErrEventEnded
		}

		if event.MaximumAttendees != nil {
			count, err := repos.CheckIns.CountByEvent(ctx, event.ID)
			if err != nil {
				return fmt.Errorf("count attendees: %w", err)
			}
			if count >= *event.MaximumAttendees {
				return domain.ErrEventFull
			}
		}

		user, err = repos.Users.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return err
			}
			return fmt.Errorf("get user: %w", err)
		}
		if event.AgeRestricted && user.AgeAt(now) < minimumAge {
			return domain.ErrAgeRestricted
		}

		if _, err := repos.CheckIns.GetByEventAndUser(ctx, event.ID, userID); err == nil {
			return domain.ErrAlreadyRegistered
		} else if !errors.Is(err, domain.ErrNotRegistered) {
			return fmt.Errorf("get registration: %w", err)
		}

		reg = domain.NewCheckIn(event.ID, userID, now, now)
		if err := repos.CheckIns.Create(ctx, reg); err != nil {
			if errors.Is(err, domain.ErrAlreadyRegistered) {
				return err
			}
			return fmt.Errorf("create registration: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sendConfirmation(ctx, user, event)
	return reg, nil
}

func (s *attendeeService) sendConfirmation(ctx context.Context, user *domain.User, event *domain.Event) {
	if s.emailService == nil {
		return
	}
	data := &domain.RegistrationEmailData{
		Email:     user.Email,
		FirstName: user.FirstName,
		Title:     event.Title,
		Date:      event.DateStart.In(s.zone).Format(registrationMailFmt),
	}
	if event.Details != nil {
		data.Details = *event.Details
	}
	if err := s.emailService.SendRegistrationConfirmation(ctx, data); err != nil {
		s.logger.ErrorContext(ctx, "registration confirmation not sent",
			"error", err, "event_id", event.ID, "user_id", user.ID)
	}
}

func (s *attendeeService) ListMyRegisteredEvents(ctx context.Context, userID string) ([]*domain.EventRegistrationWithEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	regs, err := s.checkInRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	out := make([]*domain.EventRegistrationWithEvent, 0, len(regs))
	for _, reg := range regs {
		event, err := s.eventRepo.GetByID(ctx, reg.EventID)
		if err != nil {
			if errors.Is(err, domain.ErrEventNotFound) {
				continue
			}
			return nil, fmt.Errorf("get event: %w", err)
		}
		out = append(out, &domain.EventRegistrationWithEvent{Registration: reg, Event: event})
	}
	return out, nil
}
