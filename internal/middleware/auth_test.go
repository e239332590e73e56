package middleware_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/budgetboard-dev/budgetboard/internal/models"
	"github.com/budgetboard-dev/budgetboard/internal/testutil"
	"github.com/budgetboard-dev/budgetboard/internal/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate(t *testing.T) {
	tc := testutil.Setup(t)
	user := tc.CreateUser(t, "Auth User")

	serve := func(t *testing.T, header string) *httptest.ResponseRecorder {
		t.Helper()

		req, err := http.NewRequest("GET", "/api/auth/me", nil)
		require.NoError(t, err)

		if header != "" {
			req.Header.Set("Authorization", header)
		}

		rr := httptest.NewRecorder()
		tc.Router.ServeHTTP(rr, req)
		return rr
	}

	t.Run("missing header", func(t *testing.T) {
		rr := serve(t, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "Access denied. No token provided.")
	})

	t.Run("wrong scheme", func(t *testing.T) {
		rr := serve(t, "Basic abc123")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "Authorization header format must be Bearer {token}")
	})

	t.Run("garbage token", func(t *testing.T) {
		rr := serve(t, "Bearer not.a.token")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "Invalid token.")
	})

	t.Run("expired token", func(t *testing.T) {
		claims := jwt.MapClaims{
			"user_id": user.ID,
			"email":   user.Email,
			"exp":     time.Now().Add(-time.Hour).Unix(),
		}
		expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret-key"))
		require.NoError(t, err)

		rr := serve(t, "Bearer "+expired)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "Token expired. Please login again.")
	})

	t.Run("token for a deleted account", func(t *testing.T) {
		ghost := tc.CreateUser(t, "Ghost User")
		token := tc.Token(t, ghost)
		require.NoError(t, tc.DB.Unscoped().Delete(&models.User{}, ghost.ID).Error)

		rr := serve(t, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "Invalid token. User not found.")
	})

	t.Run("valid token passes", func(t *testing.T) {
		rr := serve(t, "Bearer "+tc.Token(t, user))
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestRequireProjectRole(t *testing.T) {
	tc := testutil.Setup(t)
	owner := tc.CreateUser(t, "Role Owner")
	viewer := tc.CreateUser(t, "Role Viewer")
	outsider := tc.CreateUser(t, "Role Outsider")
	project := tc.CreateProject(t, owner, "0")
	tc.AddMember(t, project, viewer, types.RoleViewer)

	path := fmt.Sprintf("/api/projects/%d", project.ID)

	t.Run("membership required", func(t *testing.T) {
		rr := tc.DoAs(t, outsider, "GET", path, nil)
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Contains(t, rr.Body.String(), "You are not a member of this project.")
	})

	t.Run("role list names the requirement", func(t *testing.T) {
		rr := tc.DoAs(t, viewer, "DELETE", path, nil)
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Contains(t, rr.Body.String(), "Insufficient permissions. Required: owner")
	})

	t.Run("any member passes an unrestricted gate", func(t *testing.T) {
		rr := tc.DoAs(t, viewer, "GET", path, nil)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("non-numeric project id", func(t *testing.T) {
		rr := tc.DoAs(t, owner, "GET", "/api/projects/abc", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
