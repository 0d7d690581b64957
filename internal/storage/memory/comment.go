package memory

import (
	"context"
	"fmt"

	"github.com/VitaminP8/blogapp/internal/storage"
	"github.com/VitaminP8/blogapp/models"
)

type CommentMemoryStorage struct {
	c *Context
}

func (s *CommentMemoryStorage) Create(ctx context.Context, c *models.Comment) error {
	if err := s.c.check(ctx); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("could not create comment: %w: %v", storage.ErrConstraintViolation, err)
	}

	st := s.c.store
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, exists := st.posts[c.BlogPostID]; !exists {
		return fmt.Errorf("could not create comment: %w: post with ID %d not found", storage.ErrConstraintViolation, c.BlogPostID)
	}

	c.ID = st.nextCommentID
	st.nextCommentID++
	c.BlogPost = nil
	c.BeforeCreate()

	stored := *c
	st.comments[c.ID] = &stored
	return nil
}

func (s *CommentMemoryStorage) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	if err := s.c.check(ctx); err != nil {
		return nil, err
	}

	st := s.c.store
	st.mu.Lock()
	defer st.mu.Unlock()

	c, exists := st.comments[id]
	if !exists {
		return nil, fmt.Errorf("could not get comment %d: %w", id, storage.ErrNotFound)
	}

	result := *c
	if p, ok := st.posts[c.BlogPostID]; ok {
		parent := *p
		result.BlogPost = &parent
	}
	return &result, nil
}

func (s *CommentMemoryStorage) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if err := s.c.check(ctx); err != nil {
		return nil, err
	}

	st := s.c.store
	st.mu.Lock()
	defer st.mu.Unlock()

	comments := st.commentsOf(postID)
	if comments == nil {
		comments = []*models.Comment{}
	}
	return comments, nil
}

func (s *CommentMemoryStorage) Update(ctx context.Context, c *models.Comment) error {
	if err := s.c.check(ctx); err != nil {
		return err
	}
	if err := c.ValidateContent(); err != nil {
		return fmt.Errorf("could not update comment: %w: %v", storage.ErrConstraintViolation, err)
	}

	st := s.c.store
	st.mu.Lock()
	defer st.mu.Unlock()

	stored, exists := st.comments[c.ID]
	if !exists {
		return fmt.Errorf("could not update comment %d: %w", c.ID, storage.ErrNotFound)
	}

	stored.Author = c.Author
	stored.Content = c.Content
	return nil
}

func (s *CommentMemoryStorage) Delete(ctx context.Context, id uint) error {
	if err := s.c.check(ctx); err != nil {
		return err
	}

	st := s.c.store
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, exists := st.comments[id]; !exists {
		return fmt.Errorf("could not delete comment %d: %w", id, storage.ErrNotFound)
	}
	delete(st.comments, id)
	return nil
}
