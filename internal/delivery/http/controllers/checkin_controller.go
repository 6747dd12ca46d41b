package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"passin/internal/delivery/http/helpers"
	"passin/internal/delivery/http/middleware"
	"passin/internal/domain"
)

// CheckInRequest is the optional body of POST /events/{eventId}/attendee/{userId}/check-in.
// When EventCreatorID is sent it must match the authenticated caller.
type CheckInRequest struct {
	EventCreatorID *string `json:"eventCreatorId"`
}

type CheckInController struct {
	Logger  *slog.Logger
	Service domain.CheckInService
}

func NewCheckInController(logger *slog.Logger, svc domain.CheckInService) *CheckInController {
	return &CheckInController{
		Logger:  logger,
		Service: svc,
	}
}

// GetBadge godoc
// @Summary Get the check-in badge
// @Description Returns the QR code badge encoding the check-in URL. Available from one hour before the event starts until its end day. With format=png the raw image is returned.
// @Tags check-in
// @Produce json,png
// @Security BearerAuth
// @Param eventSlug path string true "Event slug"
// @Param userId path string true "User ID (UUID), must be the caller"
// @Param format query string false "png for the raw image"
// @Success 200 {object} helpers.APIResponse "data contains checkInUrl and image (data URL)"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventSlug}/attendee/{userId}/badge [get]
func (c *CheckInController) GetBadge(w http.ResponseWriter, r *http.Request) {
	userID, ok := selfFromPath(w, r, "userId")
	if !ok {
		return
	}
	badge, err := c.Service.GetBadge(r.Context(), r.PathValue("eventSlug"), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if strings.EqualFold(r.URL.Query().Get("format"), "png") {
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(badge.PNG)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, badge)
}

// CheckIn godoc
// @Summary Check in an attendee
// @Description Marks a registered attendee as present. Only the event creator may check attendees in, and only once per attendee.
// @Tags check-in
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventId path string true "Event ID (UUID)"
// @Param userId path string true "Attendee user ID (UUID)"
// @Param body body CheckInRequest false "Optional creator confirmation"
// @Success 200 {object} helpers.APIResponse "data contains the updated registration"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /events/{eventId}/attendee/{userId}/check-in [post]
func (c *CheckInController) CheckIn(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventId")
	if !ok {
		return
	}
	userID, ok := helpers.PathUUID(w, r, "userId")
	if !ok {
		return
	}
	callerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req CheckInRequest
	if !helpers.DecodeOptional(w, r, &req) {
		return
	}
	if req.EventCreatorID != nil && *req.EventCreatorID != callerID {
		helpers.WriteServiceError(w, r, c.Logger, domain.ErrCheckInForbidden)
		return
	}
	reg, err := c.Service.CheckIn(r.Context(), eventID, userID, callerID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}
