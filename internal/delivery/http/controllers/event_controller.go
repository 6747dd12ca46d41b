package controllers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"passin/internal/delivery/http/helpers"
	"passin/internal/delivery/http/middleware"
	"passin/internal/domain"
)

// CreateEventRequest is the request body for POST /events.
// Dates are RFC 3339 timestamps or YYYY-MM-DD, which is read as midnight UTC.
type CreateEventRequest struct {
	Title            string  `json:"title"`
	Details          *string `json:"details"`
	MaximumAttendees *int    `json:"maximumAttendees"`
	AgeRestricted    bool    `json:"ageRestricted"`
	DateStart        *string `json:"dateStart"`
	DateEnd          *string `json:"dateEnd"`
}

// Validate implements Validator. Returns error messages for required and format rules.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	if c.DateStart == nil {
		errs = append(errs, "dateStart is required")
	}
	if c.DateEnd == nil {
		errs = append(errs, "dateEnd is required")
	}
	errs = append(errs, validateEventDates(c.DateStart, c.DateEnd)...)
	if c.MaximumAttendees != nil && *c.MaximumAttendees < 0 {
		errs = append(errs, "maximumAttendees must not be negative")
	}
	return errs
}

// UpdateEventRequest is the request body for PATCH /events/{slug}. All fields optional; omitted fields are unchanged.
// An explicit "maximumAttendees": null removes the capacity limit.
type UpdateEventRequest struct {
	Title            *string     `json:"title"`
	Details          *string     `json:"details"`
	MaximumAttendees nullableInt `json:"maximumAttendees" swaggertype:"integer"`
	AgeRestricted    *bool       `json:"ageRestricted"`
	DateStart        *string     `json:"dateStart"`
	DateEnd          *string     `json:"dateEnd"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	var errs []string
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		errs = append(errs, "title must not be empty")
	}
	errs = append(errs, validateEventDates(u.DateStart, u.DateEnd)...)
	if u.MaximumAttendees.Value != nil && *u.MaximumAttendees.Value < 0 {
		errs = append(errs, "maximumAttendees must not be negative")
	}
	return errs
}

// nullableInt tells an absent field apart from an explicit null.
type nullableInt struct {
	Set   bool
	Value *int
}

func (n *nullableInt) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func validateEventDates(start, end *string) []string {
	var errs []string
	for _, f := range []struct {
		name  string
		value *string
	}{{"dateStart", start}, {"dateEnd", end}} {
		if f.value == nil {
			continue
		}
		if _, err := parseEventTime(*f.value); err != nil {
			errs = append(errs, f.name+" must be an RFC 3339 timestamp or a YYYY-MM-DD date")
		}
	}
	return errs
}

func parseEventTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(domain.DateLayout, s)
}

// optionalEventTime converts a validated optional date field.
func optionalEventTime(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := parseEventTime(*s)
	if err != nil {
		return nil
	}
	return &t
}

// ListEventsResponse is the data of GET /events.
type ListEventsResponse struct {
	Events     []*domain.EventWithAttendees `json:"events"`
	Pagination helpers.PaginationMeta       `json:"pagination"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *EventController) callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
	}
	return userID, ok
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Creates an event owned by the authenticated user. The slug is derived from the title and must be unique.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} helpers.APIResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := c.callerID(w, r)
	if !ok {
		return
	}
	event, err := c.Service.CreateEvent(r.Context(), userID, &domain.CreateEventInput{
		Title:            req.Title,
		Details:          req.Details,
		MaximumAttendees: req.MaximumAttendees,
		AgeRestricted:    req.AgeRestricted,
		DateStart:        *optionalEventTime(req.DateStart),
		DateEnd:          *optionalEventTime(req.DateEnd),
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// ListEvents godoc
// @Summary List events
// @Description Paginated events ordered by start date, each with its attendees.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains events and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	events, total, err := c.Service.ListEvents(r.Context(), params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{
		Events:     events,
		Pagination: helpers.NewPaginationMeta(params, total),
	})
}

// GetEvent godoc
// @Summary Get an event by slug
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Event slug"
// @Success 200 {object} helpers.APIResponse "data contains the event and its attendees"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{slug} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := c.Service.GetEvent(r.Context(), r.PathValue("slug"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Only the creator can update. Changing the title changes the slug.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Event slug"
// @Param body body UpdateEventRequest true "Fields to update (all optional)"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /events/{slug} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := c.callerID(w, r)
	if !ok {
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), r.PathValue("slug"), userID, &domain.UpdateEventInput{
		Title:                 req.Title,
		Details:               req.Details,
		MaximumAttendees:      req.MaximumAttendees.Value,
		ClearMaximumAttendees: req.MaximumAttendees.Set && req.MaximumAttendees.Value == nil,
		AgeRestricted:         req.AgeRestricted,
		DateStart:             optionalEventTime(req.DateStart),
		DateEnd:               optionalEventTime(req.DateEnd),
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Only the creator can delete. Registrations are deleted with the event.
// @Tags events
// @Security BearerAuth
// @Param slug path string true "Event slug"
// @Success 204 "No Content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{slug} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.callerID(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), r.PathValue("slug"), userID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
