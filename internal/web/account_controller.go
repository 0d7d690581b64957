package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/VitaminP8/blogapp/internal/auth"
	"github.com/VitaminP8/blogapp/internal/storage"
	"github.com/VitaminP8/blogapp/internal/user"
)

type tokenResponse struct {
	Token string `json:"token"`
}

func (s *Server) accountRegister(w http.ResponseWriter, r *http.Request) {
	bc, ok := s.blogContext(w, r)
	if !ok {
		return
	}

	fields, err := bind(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	u, err := user.Register(r.Context(), bc.Users(), fields["username"], fields["email"], fields["password"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// accountLogin возвращает JWT. Без настроенного секрета токены не выдаются.
func (s *Server) accountLogin(w http.ResponseWriter, r *http.Request) {
	if s.opts.JWTSecret == "" {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "authentication is not configured"})
		return
	}
	bc, ok := s.blogContext(w, r)
	if !ok {
		return
	}

	fields, err := bind(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	u, err := user.Authenticate(r.Context(), bc.Users(), fields["username"], fields["password"])
	if errors.Is(err, storage.ErrNotFound) {
		// не раскрываем, существует ли пользователь
		err = user.ErrInvalidCredentials
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	token, err := auth.IssueToken(s.opts.JWTSecret, u.ID, u.Username, s.opts.TokenTTL)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("could not issue token: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (s *Server) accountMe(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserIDFromContext(r.Context())
	if err != nil {
		s.writeError(w, r, errUnauthorized)
		return
	}
	bc, ok := s.blogContext(w, r)
	if !ok {
		return
	}

	u, err := bc.Users().GetByID(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
