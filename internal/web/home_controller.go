package web

import (
	"net/http"

	"github.com/VitaminP8/blogapp/internal/middleware"
)

type homeResponse struct {
	Name  string `json:"name"`
	Posts int    `json:"posts"`
}

func (s *Server) homeIndex(w http.ResponseWriter, r *http.Request) {
	bc, ok := s.blogContext(w, r)
	if !ok {
		return
	}

	count, err := bc.Posts().Count(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, homeResponse{Name: "blogapp", Posts: count})
}

type errorPageResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// homeError - страница ошибки, на нее ExceptionHandler переадресует упавшие запросы
func (s *Server) homeError(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, errorPageResponse{
		Error:     "An error occurred while processing your request.",
		RequestID: w.Header().Get(middleware.RequestIDHeader),
	})
}
