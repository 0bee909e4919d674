package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/padel-manager/models"
	"github.com/Dosada05/padel-manager/services"
)

var testSecret = []byte("test-secret")

func actorEcho(t *testing.T, got **services.Actor) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = ActorFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func bearer(t *testing.T, user *models.User, now time.Time) string {
	t.Helper()
	token, err := GenerateToken(testSecret, user, now)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAuthenticate(t *testing.T) {
	user := &models.User{ID: 7, Role: models.RoleClub}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantActor  *services.Actor
	}{
		{"valid token", bearer(t, user, time.Now()), http.StatusNoContent, &services.Actor{UserID: 7, Role: models.RoleClub}},
		{"missing header", "", http.StatusUnauthorized, nil},
		{"not bearer", "Basic abc", http.StatusUnauthorized, nil},
		{"expired", bearer(t, user, time.Now().Add(-48*time.Hour)), http.StatusUnauthorized, nil},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *services.Actor
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			Authenticate(testSecret)(actorEcho(t, &got)).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantActor, got)
		})
	}
}

func TestAuthenticate_WrongSecret(t *testing.T) {
	token, err := GenerateToken([]byte("other"), &models.User{ID: 1, Role: models.RoleAdmin}, time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	Authenticate(testSecret)(http.NotFoundHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_RejectsNoneAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": 1, "role": "admin"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	Authenticate(testSecret)(http.NotFoundHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalAuthenticate(t *testing.T) {
	var got *services.Actor
	handler := OptionalAuthenticate(testSecret)(actorEcho(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/tournaments/1/view", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Nil(t, got)

	req.Header.Set("Authorization", bearer(t, &models.User{ID: 3, Role: models.RolePlayer}, time.Now()))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, models.RolePlayer, got.Role)

	req.Header.Set("Authorization", "Bearer broken")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequirePermission(t *testing.T) {
	protected := Authenticate(testSecret)(RequirePermission(services.PermMatchResult)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })))

	for role, want := range map[models.UserRole]int{
		models.RoleClub:   http.StatusOK,
		models.RoleAdmin:  http.StatusOK,
		models.RolePlayer: http.StatusForbidden,
		models.RoleCoach:  http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodPut, "/matches/1/result", nil)
		req.Header.Set("Authorization", bearer(t, &models.User{ID: 9, Role: role}, time.Now()))
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, "role %s", role)
	}
}

func TestGetUserRoleFromContext_UnknownRole(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1, "role": "organizer", "exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(testSecret)
	require.NoError(t, err)

	var got *services.Actor
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	Authenticate(testSecret)(actorEcho(t, &got)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Nil(t, got)
}
