package web

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/VitaminP8/blogapp/internal/auth"
	"github.com/VitaminP8/blogapp/internal/middleware"
	"github.com/VitaminP8/blogapp/internal/storage/memory"
	"github.com/VitaminP8/blogapp/internal/subscription"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	handler http.Handler
	store   *memory.Store
	hub     *subscription.SubscriptionManager
}

func newTestApp(t *testing.T, secret string) *testApp {
	t.Helper()
	store := memory.NewStore()
	hub := subscription.NewSubscriptionManager()

	router := NewRouter(Options{
		JWTSecret:     secret,
		Subscriptions: hub,
	})
	handler := middleware.Chain(router,
		auth.Authorization(secret),
		middleware.Scoped(store),
	)
	return &testApp{handler: handler, store: store, hub: hub}
}

func (a *testApp) do(t *testing.T, method, target string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
