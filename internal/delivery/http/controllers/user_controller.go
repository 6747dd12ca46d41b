package controllers

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	h "passin/internal/delivery/http/helpers"
	"passin/internal/delivery/http/middleware"
	"passin/internal/domain"
)

// DefaultMaxUploadBytes bounds multipart user payloads (profile image included).
const DefaultMaxUploadBytes = 5 << 20

// UserRequest is the body of POST /users and PATCH /users/{id}, sent either as JSON or as
// multipart/form-data with an optional "image" file. birthDate uses YYYY-MM-DD.
type UserRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	BirthDate *string `json:"birthDate"`
}

func (u UserRequest) validateBirthDate() []string {
	if u.BirthDate == nil {
		return nil
	}
	if _, err := time.Parse(domain.DateLayout, *u.BirthDate); err != nil {
		return []string{"birthDate must use the YYYY-MM-DD format"}
	}
	return nil
}

// CreateUserRequest requires every field.
type CreateUserRequest struct{ UserRequest }

// Validate implements Validator.
func (c CreateUserRequest) Validate() []string {
	var errs []string
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"firstName", c.FirstName},
		{"lastName", c.LastName},
		{"email", c.Email},
		{"password", c.Password},
		{"birthDate", c.BirthDate},
	} {
		if f.value == nil || strings.TrimSpace(*f.value) == "" {
			errs = append(errs, f.name+" is required")
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return c.validateBirthDate()
}

// UpdateUserRequest accepts any subset of fields.
type UpdateUserRequest struct{ UserRequest }

// Validate implements Validator.
func (u UpdateUserRequest) Validate() []string { return u.validateBirthDate() }

// ListUsersResponse is the data of GET /users.
type ListUsersResponse struct {
	Users      []*domain.User   `json:"users"`
	Pagination h.PaginationMeta `json:"pagination"`
}

type UserController struct {
	Logger         *slog.Logger
	Service        domain.UserService
	MaxUploadBytes int64
}

func NewUserController(logger *slog.Logger, svc domain.UserService) *UserController {
	return &UserController{
		Logger:         logger,
		Service:        svc,
		MaxUploadBytes: DefaultMaxUploadBytes,
	}
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

// decodeUser fills dest from a JSON or multipart body. The returned cleanup closes the uploaded
// file, if any, and must be called once the request is served.
func (c *UserController) decodeUser(w http.ResponseWriter, r *http.Request, fields *UserRequest, dest any) (*domain.ImageUpload, func(), bool) {
	noop := func() {}
	if !isMultipart(r) {
		return nil, noop, h.DecodeAndValidate(w, r, dest)
	}

	r.Body = http.MaxBytesReader(w, r.Body, c.MaxUploadBytes)
	if err := r.ParseMultipartForm(c.MaxUploadBytes); err != nil {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid multipart body: "+err.Error())
		return nil, noop, false
	}
	formValue := func(key string) *string {
		if vs, ok := r.MultipartForm.Value[key]; ok && len(vs) > 0 {
			v := vs[0]
			return &v
		}
		return nil
	}
	fields.FirstName = formValue("firstName")
	fields.LastName = formValue("lastName")
	fields.Email = formValue("email")
	fields.Password = formValue("password")
	fields.BirthDate = formValue("birthDate")
	if !h.ValidateOnly(w, dest) {
		return nil, noop, false
	}

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, true
	}
	if err != nil {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid image: "+err.Error())
		return nil, noop, false
	}
	img := &domain.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}
	return img, func() { _ = file.Close() }, true
}

func parseBirthDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := time.Parse(domain.DateLayout, *s)
	if err != nil {
		return nil
	}
	return &t
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Create godoc
// @Summary Create a user
// @Description Creates a user account. Accepts JSON or multipart/form-data with an optional "image" file used as profile picture.
// @Tags users
// @Accept json,mpfd
// @Produce json
// @Param body body CreateUserRequest true "User data"
// @Success 201 {object} helpers.APIResponse "data contains the created user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users [post]
func (c *UserController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	img, cleanup, ok := c.decodeUser(w, r, &req.UserRequest, &req)
	defer cleanup()
	if !ok {
		return
	}
	in := &domain.CreateUserInput{
		FirstName: deref(req.FirstName),
		LastName:  deref(req.LastName),
		Email:     deref(req.Email),
		Password:  deref(req.Password),
		BirthDate: *parseBirthDate(req.BirthDate),
		Image:     img,
	}
	user, err := c.Service.Create(r.Context(), in)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, user)
}

// List godoc
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains users and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /users [get]
func (c *UserController) List(w http.ResponseWriter, r *http.Request) {
	params := h.ParsePagination(r)
	users, total, err := c.Service.List(r.Context(), params)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, ListUsersResponse{
		Users:      users,
		Pagination: h.NewPaginationMeta(params, total),
	})
}

// Get godoc
// @Summary Get a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{id} [get]
func (c *UserController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathUUID(w, r, "id")
	if !ok {
		return
	}
	user, err := c.Service.GetByID(r.Context(), id)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, user)
}

// Update godoc
// @Summary Update a user
// @Description Partially updates the caller's own account. Accepts JSON or multipart/form-data with an optional "image" file.
// @Tags users
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID (UUID)"
// @Param body body UpdateUserRequest true "Fields to update (all optional)"
// @Success 200 {object} helpers.APIResponse "data contains the updated user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /users/{id} [patch]
func (c *UserController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathUUID(w, r, "id")
	if !ok {
		return
	}
	callerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req UpdateUserRequest
	img, cleanup, ok := c.decodeUser(w, r, &req.UserRequest, &req)
	defer cleanup()
	if !ok {
		return
	}
	in := &domain.UpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		BirthDate: parseBirthDate(req.BirthDate),
		Image:     img,
	}
	user, err := c.Service.Update(r.Context(), id, callerID, in)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, user)
}

// Delete godoc
// @Summary Delete a user
// @Description Deletes the caller's own account and its registrations. Refused while the user still owns events.
// @Tags users
// @Security BearerAuth
// @Param id path string true "User ID (UUID)"
// @Success 204 "No Content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /users/{id} [delete]
func (c *UserController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathUUID(w, r, "id")
	if !ok {
		return
	}
	callerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.Delete(r.Context(), id, callerID); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
