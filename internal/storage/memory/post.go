package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/VitaminP8/blogapp/internal/post"
	"github.com/VitaminP8/blogapp/internal/storage"
	"github.com/VitaminP8/blogapp/models"
)

type PostMemoryStorage struct {
	c *Context
}

func (s *PostMemoryStorage) Create(ctx context.Context, p *models.BlogPost) error {
	if err := s.c.check(ctx); err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("could not create post: %w: %v", storage.ErrConstraintViolation, err)
	}

	st := s.c.store
	st.mu.Lock()
	defer st.mu.Unlock()

	p.ID = st.nextPostID
	st.nextPostID++
	p.BeforeCreate()

	stored := *p
	stored.Comments = nil
	st.posts[p.ID] = &stored

	// вложенные комментарии создаются вместе с постом, как это делает gorm
	for i := range p.Comments {
		c := &p.Comments[i]
		c.ID = st.nextCommentID
		st.nextCommentID++
		c.BlogPostID = p.ID
		c.BlogPost = nil
		c.BeforeCreate()

		storedComment := *c
		st.comments[c.ID] = &storedComment
	}
	return nil
}

func (s *PostMemoryStorage) GetByID(ctx context.Context, id uint) (*models.BlogPost, error) {
	if err := s.c.check(ctx); err != nil {
		return nil, err
	}

	st := s.c.store
	st.mu.Lock()
	defer st.mu.Unlock()

	p, exists := st.posts[id]
	if !exists {
		return nil, fmt.Errorf("could not get post %d: %w", id, storage.ErrNotFound)
	}

	result := *p
	result.Comments = []models.Comment{}
	for _, c := range st.commentsOf(id) {
		result.Comments = append(result.Comments, *c)
	}
	return &result, nil
}

// Find сравнивает заголовок без учета регистра, как LIKE в SQLite
func (s *PostMemoryStorage) Find(ctx context.Context, filter post.Filter) ([]*models.BlogPost, error) {
	if err := s.c.check(ctx); err != nil {
		return nil, err
	}

	st := s.c.store
	st.mu.Lock()
	defer st.mu.Unlock()

	needle := strings.ToLower(filter.TitleContains)
	posts := []*models.BlogPost{}
	for _, p := range st.posts {
		if needle != "" && !strings.Contains(strings.ToLower(p.Title), needle) {
			continue
		}
		cp := *p
		posts = append(posts, &cp)
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].ID < posts[j].ID
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(posts) {
			return []*models.BlogPost{}, nil
		}
		posts = posts[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(posts) {
		posts = posts[:filter.Limit]
	}
	return posts, nil
}

func (s *PostMemoryStorage) Count(ctx context.Context) (int, error) {
	if err := s.c.check(ctx); err != nil {
		return 0, err
	}

	st := s.c.store
	st.mu.Lock()
	defer st.mu.Unlock()

	return len(st.posts), nil
}

func (s *PostMemoryStorage) Update(ctx context.Context, p *models.BlogPost) error {
	if err := s.c.check(ctx); err != nil {
		return err
	}
	if err := p.ValidateFields(); err != nil {
		return fmt.Errorf("could not update post: %w: %v", storage.ErrConstraintViolation, err)
	}

	st := s.c.store
	st.mu.Lock()
	defer st.mu.Unlock()

	stored, exists := st.posts[p.ID]
	if !exists {
		return fmt.Errorf("could not update post %d: %w", p.ID, storage.ErrNotFound)
	}

	stored.Title = p.Title
	stored.Content = p.Content
	return nil
}

func (s *PostMemoryStorage) Delete(ctx context.Context, id uint) error {
	if err := s.c.check(ctx); err != nil {
		return err
	}

	st := s.c.store
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, exists := st.posts[id]; !exists {
		return fmt.Errorf("could not delete post %d: %w", id, storage.ErrNotFound)
	}

	delete(st.posts, id)
	for cid, c := range st.comments {
		if c.BlogPostID == id {
			delete(st.comments, cid)
		}
	}
	return nil
}
