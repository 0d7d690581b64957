package web

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/VitaminP8/blogapp/internal/auth"
	"github.com/VitaminP8/blogapp/models"
)

// commentsIndex: GET /Comments/Index/{postId}
func (s *Server) commentsIndex(w http.ResponseWriter, r *http.Request) {
	bc, ok := s.blogContext(w, r)
	if !ok {
		return
	}
	postID, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// 404 для несуществующего поста, а не пустой список
	if _, err := bc.Posts().GetByID(r.Context(), postID); err != nil {
		s.writeError(w, r, err)
		return
	}

	comments, err := bc.Comments().ListByPost(r.Context(), postID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (s *Server) commentsDetails(w http.ResponseWriter, r *http.Request) {
	bc, ok := s.blogContext(w, r)
	if !ok {
		return
	}
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	c, err := bc.Comments().GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// commentsCreate: POST /Comments/Create/{postId}. Новый комментарий рассылается подписчикам поста.
func (s *Server) commentsCreate(w http.ResponseWriter, r *http.Request) {
	if !s.requireUser(w, r) {
		return
	}
	bc, ok := s.blogContext(w, r)
	if !ok {
		return
	}
	postID, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	fields, err := bind(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	c := &models.Comment{
		BlogPostID: postID,
		Author:     fields["author"],
		Content:    fields["content"],
	}

	// автор по умолчанию - имя авторизованного пользователя
	if c.Author == "" {
		if userID, err := auth.GetUserIDFromContext(r.Context()); err == nil {
			if u, err := bc.Users().GetByID(r.Context(), userID); err == nil {
				c.Author = u.Username
			}
		}
	}

	if err := bc.Comments().Create(r.Context(), c); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.opts.Subscriptions.Publish(postID, c)
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) commentsEdit(w http.ResponseWriter, r *http.Request) {
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

	existing, err := bc.Comments().GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	fields, err := bind(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if author, ok := fields["author"]; ok {
		existing.Author = author
	}
	if content, ok := fields["content"]; ok {
		existing.Content = content
	}

	if err := bc.Comments().Update(r.Context(), existing); err != nil {
		s.writeError(w, r, err)
		return
	}
	existing.BlogPost = nil
	writeJSON(w, http.StatusOK, existing)
}

func (s *Server) commentsDelete(w http.ResponseWriter, r *http.Request) {
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

	if err := bc.Comments().Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// commentsStream: GET /Comments/Stream/{postId}, server-sent events с новыми комментариями
func (s *Server) commentsStream(w http.ResponseWriter, r *http.Request) {
	bc, ok := s.blogContext(w, r)
	if !ok {
		return
	}
	postID, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := bc.Posts().GetByID(r.Context(), postID); err != nil {
		s.writeError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, r, fmt.Errorf("streaming is not supported"))
		return
	}

	ch, cancel := s.opts.Subscriptions.Subscribe(postID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case c, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(c)
			if err != nil {
				log.Printf("Ошибка сериализации комментария %d: %v", c.ID, err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: comment\nid: %d\ndata: %s\n\n", c.ID, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
