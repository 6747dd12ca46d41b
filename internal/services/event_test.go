package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"passin/internal/domain"
)

var eventNow = time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC)

func newEventFixture() (*eventService, *memStore) {
	store := newMemStore()
	svc := NewEventService(&memEventRepo{store}, &memCheckInRepo{store}, store, discardLogger(), time.Second).(*eventService)
	svc.now = fixedClock(eventNow)
	return svc, store
}

func eventInput(title string) *domain.CreateEventInput {
	return &domain.CreateEventInput{
		Title:     title,
		DateStart: time.Date(2024, 8, 6, 19, 0, 0, 0, time.UTC),
		DateEnd:   time.Date(2024, 8, 6, 22, 0, 0, 0, time.UTC),
	}
}

func TestEventService_CreateEvent(t *testing.T) {
	svc, _ := newEventFixture()
	details := "Lightning talks"
	limit := 10
	in := eventInput("  Go Meetup: São Paulo!  ")
	in.Details = &details
	in.MaximumAttendees = &limit

	event, err := svc.CreateEvent(context.Background(), "user-1", in)
	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "Go Meetup: São Paulo!", event.Title)
	assert.Equal(t, "go-meetup-so-paulo", event.Slug)
	assert.Equal(t, "user-1", event.CreatorID)
	assert.Equal(t, eventNow, event.CreatedAt)
	assert.Equal(t, &limit, event.MaximumAttendees)
}

func TestEventService_CreateEvent_same_title_twice(t *testing.T) {
	titles := []string{"Demo Day", "Go  Meetup", "Rust & Go", "2024 Kickoff"}
	for _, title := range titles {
		t.Run(title, func(t *testing.T) {
			svc, _ := newEventFixture()
			_, err := svc.CreateEvent(context.Background(), "user-1", eventInput(title))
			require.NoError(t, err)

			_, err = svc.CreateEvent(context.Background(), "user-2", eventInput(title))
			require.ErrorIs(t, err, domain.ErrDuplicateSlug)
			assert.ErrorIs(t, err, domain.ErrConflict)
		})
	}
}

func TestEventService_CreateEvent_validation(t *testing.T) {
	negative := -1
	tests := []struct {
		name   string
		modify func(in *domain.CreateEventInput)
	}{
		{"empty title", func(in *domain.CreateEventInput) { in.Title = "   " }},
		{"title without slug characters", func(in *domain.CreateEventInput) { in.Title = "!!!" }},
		{"missing start", func(in *domain.CreateEventInput) { in.DateStart = time.Time{} }},
		{"end before start", func(in *domain.CreateEventInput) { in.DateEnd = in.DateStart.Add(-time.Hour) }},
		{"negative capacity", func(in *domain.CreateEventInput) { in.MaximumAttendees = &negative }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newEventFixture()
			in := eventInput("Go Meetup")
			tt.modify(in)
			_, err := svc.CreateEvent(context.Background(), "user-1", in)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, store.events)
		})
	}
}

func TestEventService_GetEvent_with_attendees(t *testing.T) {
	svc, store := newEventFixture()
	ev := store.addEvent(domain.Event{Title: "Go Meetup", CreatorID: "user-1"})
	u := store.addUser("Ada", "ada@example.com", time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC))
	store.addCheckIn(ev.ID, u.ID, true)

	got, err := svc.GetEvent(context.Background(), "go-meetup")
	require.NoError(t, err)
	assert.Equal(t, ev.ID, got.ID)
	require.Len(t, got.Attendees, 1)
	assert.Equal(t, "ada@example.com", got.Attendees[0].Email)
	assert.True(t, got.Attendees[0].CheckedIn)

	_, err = svc.GetEvent(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestEventService_ListEvents(t *testing.T) {
	svc, store := newEventFixture()
	store.addEvent(domain.Event{Title: "A", CreatorID: "user-1"})
	store.addEvent(domain.Event{Title: "B", CreatorID: "user-1"})

	events, total, err := svc.ListEvents(context.Background(), domain.PaginationParams{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, events, 2)
	assert.NotNil(t, events[0].Attendees)
}

func TestEventService_UpdateEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("creator renames and re-slugs", func(t *testing.T) {
		svc, store := newEventFixture()
		created, err := svc.CreateEvent(ctx, "user-1", eventInput("Go Meetup"))
		require.NoError(t, err)

		title := "Go Meetup Reloaded"
		updated, err := svc.UpdateEvent(ctx, "go-meetup", "user-1", &domain.UpdateEventInput{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "go-meetup-reloaded", updated.Slug)
		assert.Equal(t, "go-meetup-reloaded", store.events[created.ID].Slug)
	})

	t.Run("capacity can be changed and removed", func(t *testing.T) {
		svc, store := newEventFixture()
		limit := 10
		in := eventInput("Go Meetup")
		in.MaximumAttendees = &limit
		created, err := svc.CreateEvent(ctx, "user-1", in)
		require.NoError(t, err)

		smaller := 5
		updated, err := svc.UpdateEvent(ctx, "go-meetup", "user-1", &domain.UpdateEventInput{MaximumAttendees: &smaller})
		require.NoError(t, err)
		require.NotNil(t, updated.MaximumAttendees)
		assert.Equal(t, 5, *updated.MaximumAttendees)

		details := "now unlimited"
		updated, err = svc.UpdateEvent(ctx, "go-meetup", "user-1", &domain.UpdateEventInput{Details: &details})
		require.NoError(t, err)
		require.NotNil(t, updated.MaximumAttendees, "omitted capacity stays unchanged")

		updated, err = svc.UpdateEvent(ctx, "go-meetup", "user-1", &domain.UpdateEventInput{ClearMaximumAttendees: true})
		require.NoError(t, err)
		assert.Nil(t, updated.MaximumAttendees)
		assert.Nil(t, store.events[created.ID].MaximumAttendees)
	})

	t.Run("title collides with another event", func(t *testing.T) {
		svc, _ := newEventFixture()
		_, err := svc.CreateEvent(ctx, "user-1", eventInput("Go Meetup"))
		require.NoError(t, err)
		_, err = svc.CreateEvent(ctx, "user-1", eventInput("Rust Meetup"))
		require.NoError(t, err)

		title := "go meetup"
		_, err = svc.UpdateEvent(ctx, "rust-meetup", "user-1", &domain.UpdateEventInput{Title: &title})
		require.ErrorIs(t, err, domain.ErrDuplicateSlug)
	})

	t.Run("non creator", func(t *testing.T) {
		svc, _ := newEventFixture()
		_, err := svc.CreateEvent(ctx, "user-1", eventInput("Go Meetup"))
		require.NoError(t, err)

		restricted := true
		_, err = svc.UpdateEvent(ctx, "go-meetup", "user-2", &domain.UpdateEventInput{AgeRestricted: &restricted})
		require.ErrorIs(t, err, domain.ErrNotEventCreator)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("invalid dates", func(t *testing.T) {
		svc, _ := newEventFixture()
		_, err := svc.CreateEvent(ctx, "user-1", eventInput("Go Meetup"))
		require.NoError(t, err)

		end := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
		_, err = svc.UpdateEvent(ctx, "go-meetup", "user-1", &domain.UpdateEventInput{DateEnd: &end})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestEventService_DeleteEvent(t *testing.T) {
	ctx := context.Background()
	svc, store := newEventFixture()
	ev := store.addEvent(domain.Event{Title: "Go Meetup", CreatorID: "user-1"})
	store.addCheckIn(ev.ID, "user-2", false)
	store.addCheckIn(ev.ID, "user-3", true)

	require.ErrorIs(t, svc.DeleteEvent(ctx, "go-meetup", "user-2"), domain.ErrNotEventCreator)
	assert.Equal(t, 2, store.countCheckIns(ev.ID))

	require.NoError(t, svc.DeleteEvent(ctx, "go-meetup", "user-1"))
	assert.NotContains(t, store.events, ev.ID)
	assert.Equal(t, 0, store.countCheckIns(ev.ID))

	require.ErrorIs(t, svc.DeleteEvent(ctx, "go-meetup", "user-1"), domain.ErrEventNotFound)
}

func TestEventService_RemovePastEvents(t *testing.T) {
	ctx := context.Background()
	svc, store := newEventFixture()

	old := store.addEvent(domain.Event{Title: "Old", CreatorID: "user-1",
		DateEnd: eventNow.Add(-PastEventRetention - time.Minute)})
	recent := store.addEvent(domain.Event{Title: "Recent", CreatorID: "user-1",
		DateEnd: eventNow.Add(-PastEventRetention + time.Minute)})
	upcoming := store.addEvent(domain.Event{Title: "Upcoming", CreatorID: "user-1",
		DateEnd: eventNow.Add(48 * time.Hour)})
	store.addCheckIn(old.ID, "user-2", true)
	store.addCheckIn(recent.ID, "user-2", true)

	removed, err := svc.RemovePastEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.NotContains(t, store.events, old.ID)
	assert.Contains(t, store.events, recent.ID)
	assert.Contains(t, store.events, upcoming.ID)
	assert.Equal(t, 0, store.countCheckIns(old.ID))
	assert.Equal(t, 1, store.countCheckIns(recent.ID))

	removed, err = svc.RemovePastEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, removed, "sweep is idempotent")
}
