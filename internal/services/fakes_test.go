package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"passin/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore is an in-memory store shared by the fake repositories. It enforces the same
// uniqueness rules as the schema (email, slug, event+user).
type memStore struct {
	mu       sync.Mutex
	txMu     sync.Mutex
	seq      int
	users    map[string]domain.User
	events   map[string]domain.Event
	checkIns map[string]domain.CheckIn
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]domain.User{},
		events:   map[string]domain.Event{},
		checkIns: map[string]domain.CheckIn{},
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func checkInKey(eventID, userID string) string { return eventID + ":" + userID }

func (s *memStore) repos() domain.Repositories {
	return domain.Repositories{
		Users:    &memUserRepo{s},
		Events:   &memEventRepo{s},
		CheckIns: &memCheckInRepo{s},
	}
}

// WithinTx serializes transactions and restores the previous state when fn fails.
func (s *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	users, events, checkIns := cloneMap(s.users), cloneMap(s.events), cloneMap(s.checkIns)
	s.mu.Unlock()

	if err := fn(ctx, s.repos()); err != nil {
		s.mu.Lock()
		s.users, s.events, s.checkIns = users, events, checkIns
		s.mu.Unlock()
		return err
	}
	return nil
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) addUser(first, email string, birth time.Time) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := domain.User{ID: s.nextID("user"), FirstName: first, LastName: "Test", Email: email, BirthDate: birth}
	s.users[u.ID] = u
	return &u
}

func (s *memStore) addEvent(e domain.Event) *domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = s.nextID("event")
	}
	if e.Slug == "" {
		e.Slug = domain.Slugify(e.Title)
	}
	s.events[e.ID] = e
	return &e
}

func (s *memStore) addCheckIn(eventID, userID string, checkedIn bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkIns[checkInKey(eventID, userID)] = domain.CheckIn{
		ID: s.nextID("checkin"), EventID: eventID, UserID: userID, CheckedIn: checkedIn,
	}
}

func (s *memStore) countCheckIns(eventID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.checkIns {
		if c.EventID == eventID {
			n++
		}
	}
	return n
}

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	u.ID = r.s.nextID("user")
	r.s.users[u.ID] = *u
	return nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *memUserRepo) List(_ context.Context, params domain.PaginationParams) ([]*domain.User, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := make([]*domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		u := u
		all = append(all, &u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, params), len(all), nil
}

func (r *memUserRepo) Update(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	for id, existing := range r.s.users {
		if id != u.ID && existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.s.users, id)
	return nil
}

type memEventRepo struct{ s *memStore }

func (r *memEventRepo) Create(_ context.Context, e *domain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.events {
		if existing.Slug == e.Slug {
			return domain.ErrDuplicateSlug
		}
	}
	e.ID = r.s.nextID("event")
	r.s.events[e.ID] = *e
	return nil
}

func (r *memEventRepo) GetByID(_ context.Context, id string) (*domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return &e, nil
}

func (r *memEventRepo) GetBySlug(_ context.Context, slug string) (*domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.events {
		if e.Slug == slug {
			return &e, nil
		}
	}
	return nil, domain.ErrEventNotFound
}

func (r *memEventRepo) GetBySlugForUpdate(ctx context.Context, slug string) (*domain.Event, error) {
	return r.GetBySlug(ctx, slug)
}

func (r *memEventRepo) List(_ context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := make([]*domain.Event, 0, len(r.s.events))
	for _, e := range r.s.events {
		e := e
		all = append(all, &e)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, params), len(all), nil
}

func (r *memEventRepo) ListEndedBefore(_ context.Context, cutoff time.Time) ([]*domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*domain.Event, 0)
	for _, e := range r.s.events {
		if e.DateEnd.Before(cutoff) {
			e := e
			out = append(out, &e)
		}
	}
	return out, nil
}

func (r *memEventRepo) CountByCreator(_ context.Context, creatorID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, e := range r.s.events {
		if e.CreatorID == creatorID {
			n++
		}
	}
	return n, nil
}

func (r *memEventRepo) Update(_ context.Context, e *domain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[e.ID]; !ok {
		return domain.ErrEventNotFound
	}
	for id, existing := range r.s.events {
		if id != e.ID && existing.Slug == e.Slug {
			return domain.ErrDuplicateSlug
		}
	}
	r.s.events[e.ID] = *e
	return nil
}

func (r *memEventRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[id]; !ok {
		return domain.ErrEventNotFound
	}
	delete(r.s.events, id)
	return nil
}

type memCheckInRepo struct{ s *memStore }

func (r *memCheckInRepo) Create(_ context.Context, c *domain.CheckIn) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := checkInKey(c.EventID, c.UserID)
	if _, ok := r.s.checkIns[key]; ok {
		return domain.ErrAlreadyRegistered
	}
	c.ID = r.s.nextID("checkin")
	r.s.checkIns[key] = *c
	return nil
}

func (r *memCheckInRepo) GetByEventAndUser(_ context.Context, eventID, userID string) (*domain.CheckIn, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.checkIns[checkInKey(eventID, userID)]
	if !ok {
		return nil, domain.ErrNotRegistered
	}
	return &c, nil
}

func (r *memCheckInRepo) CountByEvent(_ context.Context, eventID string) (int, error) {
	return r.s.countCheckIns(eventID), nil
}

func (r *memCheckInRepo) ListAttendees(_ context.Context, eventID string) ([]*domain.Attendee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*domain.Attendee, 0)
	for _, c := range r.s.checkIns {
		if c.EventID != eventID {
			continue
		}
		u := r.s.users[c.UserID]
		out = append(out, &domain.Attendee{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName,
			Email: u.Email, BirthDate: u.BirthDate, CheckedIn: c.CheckedIn})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memCheckInRepo) ListByUserID(_ context.Context, userID string) ([]*domain.CheckIn, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*domain.CheckIn, 0)
	for _, c := range r.s.checkIns {
		if c.UserID == userID {
			c := c
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventID < out[j].EventID })
	return out, nil
}

func (r *memCheckInRepo) MarkCheckedIn(_ context.Context, eventID, userID string) (*domain.CheckIn, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := checkInKey(eventID, userID)
	c, ok := r.s.checkIns[key]
	if !ok || c.CheckedIn {
		return nil, domain.ErrAlreadyCheckedIn
	}
	c.CheckedIn = true
	r.s.checkIns[key] = c
	return &c, nil
}

func (r *memCheckInRepo) DeleteByEvent(_ context.Context, eventID string) (int64, error) {
	return r.deleteWhere(func(c domain.CheckIn) bool { return c.EventID == eventID }), nil
}

func (r *memCheckInRepo) DeleteByUser(_ context.Context, userID string) (int64, error) {
	return r.deleteWhere(func(c domain.CheckIn) bool { return c.UserID == userID }), nil
}

func (r *memCheckInRepo) deleteWhere(match func(domain.CheckIn) bool) int64 {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for k, c := range r.s.checkIns {
		if match(c) {
			delete(r.s.checkIns, k)
			n++
		}
	}
	return n
}

func page[T any](all []T, params domain.PaginationParams) []T {
	start := params.Offset()
	if start >= len(all) {
		return []T{}
	}
	end := start + params.Limit()
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

// fakeHasher "hashes" by concatenation so tests stay fast and deterministic.
type fakeHasher struct{ salts int }

func (h *fakeHasher) GenerateSalt() (string, error) {
	h.salts++
	return fmt.Sprintf("salt%d", h.salts), nil
}

func (h *fakeHasher) Hash(salt, password string) (string, error) {
	return "hash:" + salt + ":" + password, nil
}

func (h *fakeHasher) Compare(hash, salt, password string) error {
	if hash != "hash:"+salt+":"+password {
		return fmt.Errorf("mismatch")
	}
	return nil
}

type fakeStorage struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (f *fakeStorage) Put(_ context.Context, key, _ string, body io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	return "https://bucket.example.com/" + key, nil
}

type fakeEmailService struct {
	mu   sync.Mutex
	sent []*domain.RegistrationEmailData
	err  error
}

func (f *fakeEmailService) SendRegistrationConfirmation(_ context.Context, data *domain.RegistrationEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, data)
	return f.err
}

func (f *fakeEmailService) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeEncoder struct{ err error }

func (f fakeEncoder) Encode(content string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("png:" + strings.ToUpper(content)), nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
