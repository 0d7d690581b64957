package web

import (
	"net/http"
	"strings"

	"github.com/VitaminP8/blogapp/internal/post"
	"github.com/VitaminP8/blogapp/models"
)

type postsResponse struct {
	Posts  []*models.BlogPost `json:"posts"`
	Limit  int                `json:"limit,omitempty"`
	Offset int                `json:"offset,omitempty"`
}

// postsIndex: GET /Posts?q=&limit=&offset=
func (s *Server) postsIndex(w http.ResponseWriter, r *http.Request) {
	bc, ok := s.blogContext(w, r)
	if !ok {
		return
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	posts, err := bc.Posts().Find(r.Context(), post.Filter{
		TitleContains: strings.TrimSpace(r.URL.Query().Get("q")),
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, postsResponse{Posts: posts, Limit: limit, Offset: offset})
}

func (s *Server) postsDetails(w http.ResponseWriter, r *http.Request) {
	bc, ok := s.blogContext(w, r)
	if !ok {
		return
	}
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := bc.Posts().GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) postsCreate(w http.ResponseWriter, r *http.Request) {
	if !s.requireUser(w, r) {
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

	p := &models.BlogPost{
		Title:   fields["title"],
		Content: fields["content"],
	}
	if err := bc.Posts().Create(r.Context(), p); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) postsEdit(w http.ResponseWriter, r *http.Request) {
	if !s.requireUser(w, r) {
		return
	}
	bc, ok := s.blogContext(w, r)
	if !ok {
		return
	}
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	existing, err := bc.Posts().GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	fields, err := bind(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	// не переданные поля остаются прежними
	if title, ok := fields["title"]; ok {
		existing.Title = title
	}
	if content, ok := fields["content"]; ok {
		existing.Content = content
	}

	if err := bc.Posts().Update(r.Context(), existing); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, existing)
}

func (s *Server) postsDelete(w http.ResponseWriter, r *http.Request) {
	if !s.requireUser(w, r) {
		return
	}
	bc, ok := s.blogContext(w, r)
	if !ok {
		return
	}
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := bc.Posts().Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
