package comment

import (
	"context"

	"github.com/VitaminP8/blogapp/models"
)

type CommentStorage interface {
	Create(ctx context.Context, comment *models.Comment) error
	// GetByID заполняет обратную ссылку BlogPost
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
}
