package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/VitaminP8/blogapp/internal/comment"
	"github.com/VitaminP8/blogapp/internal/post"
	"github.com/VitaminP8/blogapp/internal/storage"
	"github.com/VitaminP8/blogapp/internal/user"
	"github.com/VitaminP8/blogapp/models"
)

// Store - хранилище в памяти с теми же инвариантами, что и SQL:
// комментарий нельзя создать без поста, удаление поста удаляет его комментарии.
type Store struct {
	mu       sync.Mutex
	posts    map[uint]*models.BlogPost
	comments map[uint]*models.Comment
	users    map[uint]*models.User

	// Для хранения актуальных ID
	nextPostID    uint
	nextCommentID uint
	nextUserID    uint
}

func NewStore() *Store {
	return &Store{
		posts:         make(map[uint]*models.BlogPost),
		comments:      make(map[uint]*models.Comment),
		users:         make(map[uint]*models.User),
		nextPostID:    1,
		nextCommentID: 1,
		nextUserID:    1,
	}
}

func (s *Store) NewContext(ctx context.Context) storage.BlogContext {
	c := &Context{store: s}
	c.posts = &PostMemoryStorage{c: c}
	c.comments = &CommentMemoryStorage{c: c}
	c.users = &UserMemoryStorage{c: c}
	return c
}

// Migrate ничего не делает: схемы у хранилища в памяти нет
func (s *Store) Migrate() error { return nil }

func (s *Store) Close() error { return nil }

// commentsOf возвращает копии комментариев поста по возрастанию ID; вызывать под s.mu
func (s *Store) commentsOf(postID uint) []*models.Comment {
	var result []*models.Comment
	for _, c := range s.comments {
		if c.BlogPostID == postID {
			cp := *c
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

type Context struct {
	store  *Store
	closed bool

	posts    *PostMemoryStorage
	comments *CommentMemoryStorage
	users    *UserMemoryStorage
}

func (c *Context) Posts() post.PostStorage          { return c.posts }
func (c *Context) Comments() comment.CommentStorage { return c.comments }
func (c *Context) Users() user.UserStorage          { return c.users }

func (c *Context) Close() error {
	c.closed = true
	return nil
}

func (c *Context) check(ctx context.Context) error {
	if c.closed {
		return storage.ErrContextClosed
	}
	return ctx.Err()
}
