package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"passin/internal/domain"
)

// badgeLeadTime is how long before the start of an event its badge becomes available.
const badgeLeadTime = time.Hour

type checkInService struct {
	eventRepo      domain.EventRepository
	checkInRepo    domain.CheckInRepository
	encoder        domain.BadgeEncoder
	baseURL        string
	zone           *time.Location
	contextTimeout time.Duration
	now            func() time.Time
}

// NewCheckInService creates a CheckInService. zone is the local zone in which "today" is
// evaluated for the badge window; baseURL prefixes the encoded check-in URL.
func NewCheckInService(
	eventRepo domain.EventRepository,
	checkInRepo domain.CheckInRepository,
	encoder domain.BadgeEncoder,
	baseURL string,
	zone *time.Location,
	timeout time.Duration,
) domain.CheckInService {
	if zone == nil {
		zone = time.UTC
	}
	return &checkInService{
		eventRepo:      eventRepo,
		checkInRepo:    checkInRepo,
		encoder:        encoder,
		baseURL:        strings.TrimRight(baseURL, "/"),
		zone:           zone,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

// BadgeZone returns the fixed zone at the given UTC offset used for the badge window.
func BadgeZone(offsetHours int) *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", offsetHours), offsetHours*int(time.Hour/time.Second))
}

func (s *checkInService) GetBadge(ctx context.Context, eventSlug, userID string) (*domain.Badge, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetBySlug(ctx, eventSlug)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if _, err := s.checkInRepo.GetByEventAndUser(ctx, event.ID, userID); err != nil {
		if errors.Is(err, domain.ErrNotRegistered) {
			return nil, err
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	if !badgeAvailable(s.now(), event, s.zone) {
		return nil, domain.ErrBadgeTooEarly
	}

	url := fmt.Sprintf("%s/events/%s/attendee/%s/check-in", s.baseURL, event.ID, userID)
	png, err := s.encoder.Encode(url)
	if err != nil {
		return nil, fmt.Errorf("encode badge: %w", err)
	}
	return &domain.Badge{
		EventID:    event.ID,
		UserID:     userID,
		CheckInURL: url,
		Image:      "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		PNG:        png,
	}, nil
}

// badgeAvailable reports whether a badge may be issued at now. "Today" is taken in zone while
// event days are UTC calendar days. Days after the start day up to the end day always qualify;
// on the start day itself the badge opens badgeLeadTime before the start.
func badgeAvailable(now time.Time, event *domain.Event, zone *time.Location) bool {
	today := civilDate(now.In(zone))
	startDay := civilDate(event.DateStart.UTC())
	endDay := civilDate(event.DateEnd.UTC())
	if today.After(startDay) && !today.After(endDay) {
		return true
	}
	return today.Equal(startDay) && event.DateStart.Sub(now) <= badgeLeadTime
}

func (s *checkInService) CheckIn(ctx context.Context, eventID, userID, callerID string) (*domain.CheckIn, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.CreatorID != callerID {
		return nil, domain.ErrCheckInForbidden
	}
	reg, err := s.checkInRepo.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotRegistered) {
			return nil, err
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	if reg.CheckedIn {
		return nil, domain.ErrAlreadyCheckedIn
	}
	updated, err := s.checkInRepo.MarkCheckedIn(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyCheckedIn) {
			return nil, err
		}
		return nil, fmt.Errorf("mark checked in: %w", err)
	}
	return updated, nil
}
