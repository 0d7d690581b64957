package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime"
	"net/http"
	"strconv"

	"github.com/VitaminP8/blogapp/internal/auth"
	"github.com/VitaminP8/blogapp/internal/storage"
	"github.com/VitaminP8/blogapp/internal/user"
	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 20

var (
	errBadRequest   = errors.New("bad request")
	errUnauthorized = errors.New("authentication required")
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Ошибка записи ответа: %v", err)
	}
}

// statusFor переводит ошибки хранилища и сервисов в HTTP статус
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, errUnauthorized), errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrConstraintViolation), errors.Is(err, user.ErrWeakPassword):
		return http.StatusUnprocessableEntity
	case errors.Is(err, storage.ErrConnection):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("Ошибка обработки %s %s: %v", r.Method, r.URL.Path, err)
		if !s.opts.Development {
			msg = "internal server error"
		}
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

// blogContext достает BlogContext запроса, положенный middleware.Scoped
func (s *Server) blogContext(w http.ResponseWriter, r *http.Request) (storage.BlogContext, bool) {
	bc, err := storage.FromContext(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return bc, true
}

// requireUser проверяет авторизацию для изменяющих действий.
// Без секрета авторизация выключена и пропускаются все.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) bool {
	if s.opts.JWTSecret == "" {
		return true
	}
	if _, err := auth.GetUserIDFromContext(r.Context()); err != nil {
		s.writeError(w, r, errUnauthorized)
		return false
	}
	return true
}

func parseID(r *http.Request) (uint, error) {
	raw := mux.Vars(r)["id"]
	if raw == "" {
		return 0, fmt.Errorf("%w: id is required", errBadRequest)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid id %q", errBadRequest, raw)
	}
	return uint(id), nil
}

// bind читает строковые поля из JSON тела или из формы
func bind(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return nil, fmt.Errorf("%w: could not parse form: %v", errBadRequest, err)
		}
		fields := make(map[string]string, len(r.PostForm))
		for key := range r.PostForm {
			fields[key] = r.PostForm.Get(key)
		}
		return fields, nil
	}

	fields := map[string]string{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", errBadRequest, err)
	}
	return fields, nil
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", errBadRequest, key, raw)
	}
	return v, nil
}
