package sqlstore

import (
	"context"
	"fmt"

	"github.com/VitaminP8/blogapp/internal/storage"
	"github.com/VitaminP8/blogapp/models"
)

type CommentStorage struct {
	c *Context
}

// Create не проверяет существование поста: ссылочную целостность обеспечивает внешний ключ
func (s *CommentStorage) Create(ctx context.Context, c *models.Comment) error {
	db, err := s.c.session(ctx)
	if err != nil {
		return err
	}

	if err := c.Validate(); err != nil {
		return validationError("could not create comment", err)
	}

	c.ID = 0
	c.BlogPost = nil

	err = db.Create(c).Error
	if err != nil {
		return translateError("could not create comment", err)
	}
	return nil
}

func (s *CommentStorage) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	db, err := s.c.session(ctx)
	if err != nil {
		return nil, err
	}

	var c models.Comment
	err = db.Preload("BlogPost").Where("id = ?", id).First(&c).Error
	if err != nil {
		return nil, translateError(fmt.Sprintf("could not get comment %d", id), err)
	}
	return &c, nil
}

func (s *CommentStorage) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	db, err := s.c.session(ctx)
	if err != nil {
		return nil, err
	}

	var comments []*models.Comment
	err = db.Where("blog_post_id = ?", postID).Order("id asc").Find(&comments).Error
	if err != nil {
		return nil, translateError(fmt.Sprintf("could not get comments of post %d", postID), err)
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return comments, nil
}

// Update меняет автора и текст; привязка к посту, ID и дата не меняются
func (s *CommentStorage) Update(ctx context.Context, c *models.Comment) error {
	db, err := s.c.session(ctx)
	if err != nil {
		return err
	}

	if err := c.ValidateContent(); err != nil {
		return validationError("could not update comment", err)
	}

	res := db.Model(&models.Comment{}).Where("id = ?", c.ID).Updates(map[string]interface{}{
		"author":  c.Author,
		"content": c.Content,
	})
	if res.Error != nil {
		return translateError(fmt.Sprintf("could not update comment %d", c.ID), res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("could not update comment %d: %w", c.ID, storage.ErrNotFound)
	}
	return nil
}

func (s *CommentStorage) Delete(ctx context.Context, id uint) error {
	db, err := s.c.session(ctx)
	if err != nil {
		return err
	}

	res := db.Where("id = ?", id).Delete(&models.Comment{})
	if res.Error != nil {
		return translateError(fmt.Sprintf("could not delete comment %d", id), res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("could not delete comment %d: %w", id, storage.ErrNotFound)
	}
	return nil
}
