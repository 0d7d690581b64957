package web

import (
	"net/http"
	"testing"

	"github.com/VitaminP8/blogapp/internal/auth"
	"github.com/VitaminP8/blogapp/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountController(t *testing.T) {
	const secret = "test_jwt_secret"
	app := newTestApp(t, secret)

	register := map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password123",
	}

	t.Run("Register", func(t *testing.T) {
		w := app.do(t, "POST", "/Account/Register", register, "")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var u models.User
		decode(t, w, &u)
		assert.Equal(t, uint(1), u.ID)
		assert.Equal(t, "alice", u.Username)
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("Register duplicate", func(t *testing.T) {
		w := app.do(t, "POST", "/Account/Register", register, "")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Register with short password", func(t *testing.T) {
		w := app.do(t, "POST", "/Account/Register", map[string]string{
			"username": "bob",
			"email":    "bob@example.com",
			"password": "123",
		}, "")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	var token string
	t.Run("Login", func(t *testing.T) {
		w := app.do(t, "POST", "/Account/Login", map[string]string{"username": "alice", "password": "password123"}, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp tokenResponse
		decode(t, w, &resp)
		require.NotEmpty(t, resp.Token)
		token = resp.Token

		claims, err := auth.ParseToken(secret, token)
		require.NoError(t, err)
		assert.Equal(t, uint(1), claims.UserID)
		assert.Equal(t, "alice", claims.Username)
	})

	t.Run("Login with wrong password", func(t *testing.T) {
		w := app.do(t, "POST", "/Account/Login", map[string]string{"username": "alice", "password": "nope"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Login unknown user", func(t *testing.T) {
		w := app.do(t, "POST", "/Account/Login", map[string]string{"username": "nobody", "password": "password123"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Me", func(t *testing.T) {
		w := app.do(t, "GET", "/Account/Me", nil, token)
		require.Equal(t, http.StatusOK, w.Code)

		var u models.User
		decode(t, w, &u)
		assert.Equal(t, "alice", u.Username)
	})

	t.Run("Me without token", func(t *testing.T) {
		w := app.do(t, "GET", "/Account/Me", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAccountController_LoginWithoutSecret(t *testing.T) {
	app := newTestApp(t, "")

	w := app.do(t, "POST", "/Account/Register", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = app.do(t, "POST", "/Account/Login", map[string]string{"username": "alice", "password": "password123"}, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
