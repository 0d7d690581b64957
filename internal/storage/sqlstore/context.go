package sqlstore

import (
	"context"

	"github.com/VitaminP8/blogapp/internal/comment"
	"github.com/VitaminP8/blogapp/internal/post"
	"github.com/VitaminP8/blogapp/internal/storage"
	"github.com/VitaminP8/blogapp/internal/user"
	"github.com/jinzhu/gorm"
)

// Context реализует storage.BlogContext поверх gorm.
// Хэндл к базе берется при первом обращении и отпускается в Close.
type Context struct {
	database *Database
	db       *gorm.DB
	closed   bool

	posts    *PostStorage
	comments *CommentStorage
	users    *UserStorage
}

func newContext(d *Database) *Context {
	c := &Context{database: d}
	c.posts = &PostStorage{c: c}
	c.comments = &CommentStorage{c: c}
	c.users = &UserStorage{c: c}
	return c
}

func (c *Context) Posts() post.PostStorage          { return c.posts }
func (c *Context) Comments() comment.CommentStorage { return c.comments }
func (c *Context) Users() user.UserStorage          { return c.users }

func (c *Context) Close() error {
	c.closed = true
	c.db = nil
	return nil
}

// session проверяет отмену запроса и лениво получает хэндл
func (c *Context) session(ctx context.Context) (*gorm.DB, error) {
	if c.closed {
		return nil, storage.ErrContextClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.db == nil {
		db, err := c.database.conn()
		if err != nil {
			return nil, err
		}
		c.db = db
	}
	return c.db, nil
}
