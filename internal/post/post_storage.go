package post

import (
	"context"

	"github.com/VitaminP8/blogapp/models"
)

// Filter задает выборку постов для Find; нулевой Limit означает "без ограничения"
type Filter struct {
	TitleContains string
	Limit         int
	Offset        int
}

type PostStorage interface {
	Create(ctx context.Context, post *models.BlogPost) error
	// GetByID возвращает пост вместе с комментариями, упорядоченными по ID
	GetByID(ctx context.Context, id uint) (*models.BlogPost, error)
	Find(ctx context.Context, filter Filter) ([]*models.BlogPost, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, post *models.BlogPost) error
	Delete(ctx context.Context, id uint) error
}
