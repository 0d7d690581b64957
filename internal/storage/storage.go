package storage

import (
	"context"
	"errors"

	"github.com/VitaminP8/blogapp/internal/comment"
	"github.com/VitaminP8/blogapp/internal/post"
	"github.com/VitaminP8/blogapp/internal/user"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrConnection          = errors.New("storage connection failed")
	ErrContextClosed       = errors.New("blog context is closed")
)

// BlogContext - доступ к коллекциям в рамках одной единицы работы (обычно одного HTTP запроса).
// Не безопасен для конкурентного использования.
type BlogContext interface {
	Posts() post.PostStorage
	Comments() comment.CommentStorage
	Users() user.UserStorage
	Close() error
}

// Factory создает BlogContext на каждый запрос и владеет подключением к хранилищу
type Factory interface {
	NewContext(ctx context.Context) BlogContext
	Migrate() error
	Close() error
}

type contextKey string

const blogContextKey = contextKey("blogContext")

// WithBlogContext сохраняет BlogContext запроса в context
func WithBlogContext(ctx context.Context, bc BlogContext) context.Context {
	return context.WithValue(ctx, blogContextKey, bc)
}

// FromContext достает BlogContext, положенный middleware Scoped
func FromContext(ctx context.Context) (BlogContext, error) {
	bc, ok := ctx.Value(blogContextKey).(BlogContext)
	if !ok || bc == nil {
		return nil, errors.New("blog context not found in request context")
	}
	return bc, nil
}
