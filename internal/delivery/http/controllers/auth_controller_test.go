package controllers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"passin/internal/delivery/http/helpers"
	"passin/internal/domain"
)

func TestAuthController_Login(t *testing.T) {
	pair := &domain.TokenPair{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer"}

	tests := []struct {
		name       string
		body       string
		svc        *mockAuthService
		wantStatus int
		wantCode   string
	}{
		{"success", `{"email":"alice@example.com","password":"Secret123!"}`, &mockAuthService{pair: pair}, http.StatusOK, ""},
		{"missing password", `{"email":"alice@example.com"}`, &mockAuthService{pair: pair}, http.StatusBadRequest, helpers.ErrCodeBadRequest},
		{"invalid credentials", `{"email":"alice@example.com","password":"nope"}`,
			&mockAuthService{err: domain.ErrInvalidCredentials}, http.StatusUnauthorized, helpers.ErrCodeUnauthorized},
		{"store failure", `{"email":"alice@example.com","password":"nope"}`,
			&mockAuthService{err: errors.New("db down")}, http.StatusInternalServerError, helpers.ErrCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewAuthController(testLogger(), tt.svc)
			w := httptest.NewRecorder()
			ctrl.Login(w, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.body)))

			require.Equal(t, tt.wantStatus, w.Code)
			resp, data := decode(t, w)
			if tt.wantCode == "" {
				assert.Nil(t, resp.Error)
				assert.Equal(t, "a", data["accessToken"])
				assert.Equal(t, "r", data["refreshToken"])
				assert.Equal(t, "Bearer", data["tokenType"])
				return
			}
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestAuthController_Login_hides_failure_reason(t *testing.T) {
	ctrl := NewAuthController(testLogger(), &mockAuthService{err: domain.ErrInvalidCredentials})
	w := httptest.NewRecorder()
	ctrl.Login(w, httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"ghost@example.com","password":"x"}`)))

	resp, _ := decode(t, w)
	assert.Equal(t, "invalid credentials", resp.Error.Message)
}

func TestAuthController_RefreshToken(t *testing.T) {
	svc := &mockAuthService{pair: &domain.TokenPair{AccessToken: "a2", RefreshToken: "r2", TokenType: "Bearer"}}
	ctrl := NewAuthController(testLogger(), svc)

	w := httptest.NewRecorder()
	ctrl.RefreshToken(w, httptest.NewRequest(http.MethodPost, "/auth/refresh-token", strings.NewReader(`{"token":" r1 "}`)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"r1"}, svc.gotArgs)

	svc.err = domain.ErrInvalidToken
	w = httptest.NewRecorder()
	ctrl.RefreshToken(w, httptest.NewRequest(http.MethodPost, "/auth/refresh-token", strings.NewReader(`{"token":"forged"}`)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	ctrl.RefreshToken(w, httptest.NewRequest(http.MethodPost, "/auth/refresh-token", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthController_Profile(t *testing.T) {
	ctrl := NewAuthController(testLogger(), &mockAuthService{})

	w := httptest.NewRecorder()
	ctrl.Profile(w, httptest.NewRequest(http.MethodPost, "/auth/profile", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	ctrl.Profile(w, asUser(httptest.NewRequest(http.MethodPost, "/auth/profile", nil), aliceID))
	require.Equal(t, http.StatusOK, w.Code)
	_, data := decode(t, w)
	assert.Equal(t, aliceID, data["id"])
	assert.Equal(t, "alice@example.com", data["email"])
}
