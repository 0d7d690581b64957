package mocks

import (
	"context"

	"github.com/VitaminP8/blogapp/internal/comment"
	"github.com/VitaminP8/blogapp/internal/post"
	"github.com/VitaminP8/blogapp/internal/storage"
	"github.com/VitaminP8/blogapp/internal/user"
	"github.com/VitaminP8/blogapp/models"
)

// FailingFactory выдает контексты, все операции которых возвращают Err.
// Нужен для проверки обработки ошибок хранилища (например, потерянного соединения).
type FailingFactory struct {
	Err error
}

func (f *FailingFactory) NewContext(ctx context.Context) storage.BlogContext {
	return &failingContext{err: f.Err}
}

func (f *FailingFactory) Migrate() error { return f.Err }

func (f *FailingFactory) Close() error { return nil }

type failingContext struct {
	err error
}

func (c *failingContext) Posts() post.PostStorage          { return failingPosts{c.err} }
func (c *failingContext) Comments() comment.CommentStorage { return failingComments{c.err} }
func (c *failingContext) Users() user.UserStorage          { return failingUsers{c.err} }
func (c *failingContext) Close() error                     { return nil }

type failingPosts struct{ err error }

func (s failingPosts) Create(context.Context, *models.BlogPost) error { return s.err }
func (s failingPosts) GetByID(context.Context, uint) (*models.BlogPost, error) {
	return nil, s.err
}
func (s failingPosts) Find(context.Context, post.Filter) ([]*models.BlogPost, error) {
	return nil, s.err
}
func (s failingPosts) Count(context.Context) (int, error)             { return 0, s.err }
func (s failingPosts) Update(context.Context, *models.BlogPost) error { return s.err }
func (s failingPosts) Delete(context.Context, uint) error             { return s.err }

type failingComments struct{ err error }

func (s failingComments) Create(context.Context, *models.Comment) error { return s.err }
func (s failingComments) GetByID(context.Context, uint) (*models.Comment, error) {
	return nil, s.err
}
func (s failingComments) ListByPost(context.Context, uint) ([]*models.Comment, error) {
	return nil, s.err
}
func (s failingComments) Update(context.Context, *models.Comment) error { return s.err }
func (s failingComments) Delete(context.Context, uint) error            { return s.err }

type failingUsers struct{ err error }

func (s failingUsers) Create(context.Context, *models.User) error { return s.err }
func (s failingUsers) GetByID(context.Context, uint) (*models.User, error) {
	return nil, s.err
}
func (s failingUsers) GetByUsername(context.Context, string) (*models.User, error) {
	return nil, s.err
}
func (s failingUsers) Update(context.Context, *models.User) error { return s.err }
func (s failingUsers) Delete(context.Context, uint) error         { return s.err }
