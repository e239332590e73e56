package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/budgetboard-dev/budgetboard/internal/handlers"
	"github.com/budgetboard-dev/budgetboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	tc := testutil.Setup(t)

	t.Run("successful registration", func(t *testing.T) {
		body := map[string]string{
			"name":     "Alice Umutoni",
			"email":    "alice@example.com",
			"password": "secret123",
		}

		rr := tc.Do(t, "POST", "/api/auth/register", body, "")
		assert.Equal(t, http.StatusCreated, rr.Code)

		var resp struct {
			Token string                `json:"token"`
			User  handlers.UserResponse `json:"user"`
		}
		testutil.Decode(t, rr, &resp)

		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "Alice Umutoni", resp.User.Name)
		assert.Equal(t, "alice@example.com", resp.User.Email)
		assert.Equal(t, "AU", resp.User.Avatar)
	})

	t.Run("duplicate email is a conflict regardless of case", func(t *testing.T) {
		body := map[string]string{
			"name":     "Alice Again",
			"email":    "ALICE@Example.com",
			"password": "secret123",
		}

		rr := tc.Do(t, "POST", "/api/auth/register", body, "")
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("short password rejected", func(t *testing.T) {
		body := map[string]string{
			"name":     "Bob",
			"email":    "bob@example.com",
			"password": "abc",
		}

		rr := tc.Do(t, "POST", "/api/auth/register", body, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		rr := tc.Do(t, "POST", "/api/auth/register", map[string]string{"email": "x@example.com"}, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("password hash never stored in plaintext", func(t *testing.T) {
		user := tc.CreateUser(t, "Hash Check")
		assert.NotEqual(t, testutil.TestPassword, user.PasswordHash)
		assert.True(t, strings.HasPrefix(user.PasswordHash, "$2"))
	})
}

func TestLogin(t *testing.T) {
	tc := testutil.Setup(t)
	user := tc.CreateUser(t, "Login User")

	t.Run("successful login", func(t *testing.T) {
		body := map[string]string{"email": user.Email, "password": testutil.TestPassword}

		rr := tc.Do(t, "POST", "/api/auth/login", body, "")
		assert.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Token string `json:"token"`
		}
		testutil.Decode(t, rr, &resp)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("wrong password and unknown email yield the same message", func(t *testing.T) {
		wrongPassword := tc.Do(t, "POST", "/api/auth/login",
			map[string]string{"email": user.Email, "password": "nope-nope"}, "")
		unknownEmail := tc.Do(t, "POST", "/api/auth/login",
			map[string]string{"email": "ghost@example.com", "password": testutil.TestPassword}, "")

		assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
		assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
		assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
	})
}

func TestMeAndProfile(t *testing.T) {
	tc := testutil.Setup(t)
	user := tc.CreateUser(t, "Profile User")

	t.Run("me returns the authenticated user", func(t *testing.T) {
		rr := tc.DoAs(t, user, "GET", "/api/auth/me", nil)
		assert.Equal(t, http.StatusOK, rr.Code)

		var resp handlers.UserResponse
		testutil.Decode(t, rr, &resp)
		assert.Equal(t, user.Email, resp.Email)
	})

	t.Run("me without token is unauthorized", func(t *testing.T) {
		rr := tc.Do(t, "GET", "/api/auth/me", nil, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("profile update recomputes initials", func(t *testing.T) {
		rr := tc.DoAs(t, user, "PUT", "/api/auth/profile", map[string]string{"name": "Grace Ingabire"})
		require.Equal(t, http.StatusOK, rr.Code)

		var resp handlers.UserResponse
		testutil.Decode(t, rr, &resp)
		assert.Equal(t, "Grace Ingabire", resp.Name)
		assert.Equal(t, "GI", resp.Avatar)
	})

	t.Run("omitted fields are left unchanged", func(t *testing.T) {
		rr := tc.DoAs(t, user, "PUT", "/api/auth/profile", map[string]string{})
		require.Equal(t, http.StatusOK, rr.Code)

		var resp handlers.UserResponse
		testutil.Decode(t, rr, &resp)
		assert.Equal(t, "Grace Ingabire", resp.Name)
	})
}

func TestInitials(t *testing.T) {
	assert.Equal(t, "AU", handlers.Initials("alice umutoni"))
	assert.Equal(t, "A", handlers.Initials("alice"))
	assert.Equal(t, "AB", handlers.Initials("Alice Bob Carol"))
	assert.Equal(t, "", handlers.Initials("   "))
}
