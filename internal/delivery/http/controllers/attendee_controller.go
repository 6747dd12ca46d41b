package controllers

import (
	"log/slog"
	"net/http"

	"passin/internal/delivery/http/helpers"
	"passin/internal/delivery/http/middleware"
	"passin/internal/domain"
)

type AttendeeController struct {
	Logger  *slog.Logger
	Service domain.AttendeeService
}

func NewAttendeeController(logger *slog.Logger, svc domain.AttendeeService) *AttendeeController {
	return &AttendeeController{
		Logger:  logger,
		Service: svc,
	}
}

// selfFromPath reads the {userId} path value and requires it to be the authenticated caller.
func selfFromPath(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	userID, ok := helpers.PathUUID(w, r, name)
	if !ok {
		return "", false
	}
	callerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return "", false
	}
	if callerID != userID {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, domain.ErrNotSelf.Message)
		return "", false
	}
	return userID, true
}

// RegisterForEvent godoc
// @Summary Register for an event
// @Description Registers the authenticated user for the event. Fails when the event ended, is full, is age restricted for the user, or the user is already registered. A confirmation e-mail is sent after registration.
// @Tags attendee
// @Produce json
// @Security BearerAuth
// @Param eventSlug path string true "Event slug"
// @Param userId path string true "User ID (UUID), must be the caller"
// @Success 201 {object} helpers.APIResponse "data contains the registration"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventSlug}/attendee/{userId}/register [post]
func (c *AttendeeController) RegisterForEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := selfFromPath(w, r, "userId")
	if !ok {
		return
	}
	reg, err := c.Service.RegisterForEvent(r.Context(), r.PathValue("eventSlug"), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, reg)
}

// ListMyRegisteredEvents godoc
// @Summary List the caller's registrations
// @Description Returns the events the authenticated user is registered for. An empty list is returned when there are none.
// @Tags attendee
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID (UUID), must be the caller"
// @Success 200 {object} helpers.APIResponse "data contains registrations with their events"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{id}/events [get]
func (c *AttendeeController) ListMyRegisteredEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := selfFromPath(w, r, "id")
	if !ok {
		return
	}
	list, err := c.Service.ListMyRegisteredEvents(r.Context(), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if list == nil {
		list = []*domain.EventRegistrationWithEvent{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, list)
}
