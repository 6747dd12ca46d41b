package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"passin/internal/delivery/http/helpers"
	"passin/internal/delivery/http/middleware"
	"passin/internal/domain"
)

const (
	aliceID = "6f1c2a9e-3b4d-4e5f-8a7b-9c0d1e2f3a4b"
	bobID   = "0b6e3d1c-1f7a-4a3e-9d7e-2f4c5b6a7d8e"
	eventID = "a3c5e7f9-1b2d-4f6a-8c0e-2d4f6a8c0e1b"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func asUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(middleware.SetClaims(r.Context(), &domain.TokenClaims{ID: userID, Email: "alice@example.com"}))
}

func decode(t *testing.T, w *httptest.ResponseRecorder) (helpers.APIResponse, map[string]any) {
	t.Helper()
	var raw struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	var data map[string]any
	if len(raw.Data) > 0 && raw.Data[0] == '{' {
		require.NoError(t, json.Unmarshal(raw.Data, &data))
	}
	return helpers.APIResponse{Data: raw.Data, Error: raw.Error}, data
}

type mockAuthService struct {
	pair    *domain.TokenPair
	err     error
	gotArgs []string
}

func (m *mockAuthService) Authenticate(context.Context, string, string) (*domain.User, error) {
	return nil, m.err
}

func (m *mockAuthService) Login(_ context.Context, email, password string) (*domain.TokenPair, error) {
	m.gotArgs = []string{email, password}
	return m.pair, m.err
}

func (m *mockAuthService) IssueTokens(*domain.User) (*domain.TokenPair, error) { return m.pair, m.err }

func (m *mockAuthService) Refresh(_ context.Context, token string) (*domain.TokenPair, error) {
	m.gotArgs = []string{token}
	return m.pair, m.err
}

type mockUserService struct {
	user      *domain.User
	users     []*domain.User
	total     int
	err       error
	gotCreate *domain.CreateUserInput
	gotUpdate *domain.UpdateUserInput
	gotImage  []byte
	gotParams domain.PaginationParams
	gotIDs    []string
}

func (m *mockUserService) Create(_ context.Context, in *domain.CreateUserInput) (*domain.User, error) {
	m.gotCreate = in
	if in.Image != nil {
		m.gotImage, _ = io.ReadAll(in.Image.Body)
	}
	return m.user, m.err
}

func (m *mockUserService) List(_ context.Context, params domain.PaginationParams) ([]*domain.User, int, error) {
	m.gotParams = params
	return m.users, m.total, m.err
}

func (m *mockUserService) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.gotIDs = []string{id}
	return m.user, m.err
}

func (m *mockUserService) Update(_ context.Context, id, callerID string, in *domain.UpdateUserInput) (*domain.User, error) {
	m.gotIDs = []string{id, callerID}
	m.gotUpdate = in
	return m.user, m.err
}

func (m *mockUserService) Delete(_ context.Context, id, callerID string) error {
	m.gotIDs = []string{id, callerID}
	return m.err
}

type mockEventService struct {
	event     *domain.Event
	withAtt   *domain.EventWithAttendees
	list      []*domain.EventWithAttendees
	total     int
	err       error
	gotCreate *domain.CreateEventInput
	gotUpdate *domain.UpdateEventInput
	gotArgs   []string
}

func (m *mockEventService) CreateEvent(_ context.Context, creatorID string, in *domain.CreateEventInput) (*domain.Event, error) {
	m.gotArgs = []string{creatorID}
	m.gotCreate = in
	return m.event, m.err
}

func (m *mockEventService) ListEvents(context.Context, domain.PaginationParams) ([]*domain.EventWithAttendees, int, error) {
	return m.list, m.total, m.err
}

func (m *mockEventService) GetEvent(_ context.Context, slug string) (*domain.EventWithAttendees, error) {
	m.gotArgs = []string{slug}
	return m.withAtt, m.err
}

func (m *mockEventService) UpdateEvent(_ context.Context, slug, callerID string, in *domain.UpdateEventInput) (*domain.Event, error) {
	m.gotArgs = []string{slug, callerID}
	m.gotUpdate = in
	return m.event, m.err
}

func (m *mockEventService) DeleteEvent(_ context.Context, slug, callerID string) error {
	m.gotArgs = []string{slug, callerID}
	return m.err
}

func (m *mockEventService) RemovePastEvents(context.Context) (int, error) { return 0, m.err }

type mockAttendeeService struct {
	reg           *domain.CheckIn
	registrations []*domain.EventRegistrationWithEvent
	err           error
	gotArgs       []string
}

func (m *mockAttendeeService) RegisterForEvent(_ context.Context, eventSlug, userID string) (*domain.CheckIn, error) {
	m.gotArgs = []string{eventSlug, userID}
	return m.reg, m.err
}

func (m *mockAttendeeService) ListMyRegisteredEvents(_ context.Context, userID string) ([]*domain.EventRegistrationWithEvent, error) {
	m.gotArgs = []string{userID}
	return m.registrations, m.err
}

type mockCheckInService struct {
	badge   *domain.Badge
	reg     *domain.CheckIn
	err     error
	gotArgs []string
}

func (m *mockCheckInService) GetBadge(_ context.Context, eventSlug, userID string) (*domain.Badge, error) {
	m.gotArgs = []string{eventSlug, userID}
	return m.badge, m.err
}

func (m *mockCheckInService) CheckIn(_ context.Context, eventID, userID, callerID string) (*domain.CheckIn, error) {
	m.gotArgs = []string{eventID, userID, callerID}
	return m.reg, m.err
}

type mockHealthService struct{ report *domain.HealthReport }

func (m mockHealthService) Check(context.Context) *domain.HealthReport { return m.report }

func intPtr(v int) *int { return &v }
