package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/VitaminP8/blogapp/internal/auth"
	"github.com/VitaminP8/blogapp/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostsController(t *testing.T) {
	app := newTestApp(t, "")

	var created models.BlogPost
	t.Run("Create", func(t *testing.T) {
		w := app.do(t, "POST", "/Posts/Create", map[string]string{"title": "Hello", "content": "World"}, "")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		decode(t, w, &created)
		assert.Equal(t, uint(1), created.ID)
		assert.Equal(t, "Hello", created.Title)
		assert.Equal(t, "World", created.Content)
		assert.WithinDuration(t, time.Now(), created.DateCreated, time.Minute)
	})

	t.Run("Create without title", func(t *testing.T) {
		w := app.do(t, "POST", "/Posts/Create", map[string]string{"content": "no title"}, "")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Create with malformed JSON", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/Posts/Create", strings.NewReader("{oops"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		app.handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Create from form", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/Posts/Create", strings.NewReader("title=Form+post&content=body"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		app.handler.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var p models.BlogPost
		decode(t, w, &p)
		assert.Equal(t, "Form post", p.Title)
	})

	t.Run("Details", func(t *testing.T) {
		w := app.do(t, "GET", "/Posts/Details/1", nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		var p models.BlogPost
		decode(t, w, &p)
		assert.Equal(t, created.ID, p.ID)
		assert.Equal(t, "Hello", p.Title)
	})

	t.Run("Index with search", func(t *testing.T) {
		w := app.do(t, "GET", "/Posts/Index?q=form", nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp postsResponse
		decode(t, w, &resp)
		require.Len(t, resp.Posts, 1)
		assert.Equal(t, "Form post", resp.Posts[0].Title)

		w = app.do(t, "GET", "/Posts?limit=1&offset=1", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		decode(t, w, &resp)
		require.Len(t, resp.Posts, 1)
		assert.Equal(t, uint(2), resp.Posts[0].ID)
	})

	t.Run("Edit keeps missing fields", func(t *testing.T) {
		w := app.do(t, "PUT", "/Posts/Edit/1", map[string]string{"title": "Hello again"}, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var p models.BlogPost
		decode(t, w, &p)
		assert.Equal(t, "Hello again", p.Title)
		assert.Equal(t, "World", p.Content)
		assert.Equal(t, created.ID, p.ID)
	})

	t.Run("Edit not exist post", func(t *testing.T) {
		w := app.do(t, "POST", "/Posts/Edit/999", map[string]string{"title": "x"}, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Home shows post count", func(t *testing.T) {
		w := app.do(t, "GET", "/", nil, "")
		var resp homeResponse
		decode(t, w, &resp)
		assert.Equal(t, 2, resp.Posts)
	})

	t.Run("Delete", func(t *testing.T) {
		w := app.do(t, "DELETE", "/Posts/Delete/1", nil, "")
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = app.do(t, "GET", "/Posts/Details/1", nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = app.do(t, "POST", "/Posts/Delete/1", nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPostsController_Authorization(t *testing.T) {
	const secret = "test_jwt_secret"
	app := newTestApp(t, secret)

	t.Run("Anonymous write is rejected", func(t *testing.T) {
		w := app.do(t, "POST", "/Posts/Create", map[string]string{"title": "Hello"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Anonymous read is allowed", func(t *testing.T) {
		w := app.do(t, "GET", "/Posts", nil, "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Authorized write", func(t *testing.T) {
		token, err := auth.IssueToken(secret, 1, "alice", time.Hour)
		require.NoError(t, err)

		w := app.do(t, "POST", "/Posts/Create", map[string]string{"title": "Hello"}, token)
		assert.Equal(t, http.StatusCreated, w.Code)

		w = app.do(t, "DELETE", "/Posts/Delete/1", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
