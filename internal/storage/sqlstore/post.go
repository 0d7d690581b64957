package sqlstore

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/VitaminP8/blogapp/internal/post"
	"github.com/VitaminP8/blogapp/internal/storage"
	"github.com/VitaminP8/blogapp/models"
	"github.com/jinzhu/gorm"
)

// likeEscaper экранирует спецсимволы LIKE, чтобы поиск шел по подстроке буквально
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type PostStorage struct {
	c *Context
}

func (s *PostStorage) Create(ctx context.Context, p *models.BlogPost) error {
	db, err := s.c.session(ctx)
	if err != nil {
		return err
	}

	if err := p.Validate(); err != nil {
		return validationError("could not create post", err)
	}

	// ID назначает база
	p.ID = 0
	for i := range p.Comments {
		p.Comments[i].ID = 0
		p.Comments[i].BlogPost = nil
	}

	err = db.Create(p).Error
	if err != nil {
		return translateError("could not create post", err)
	}
	return nil
}

func (s *PostStorage) GetByID(ctx context.Context, id uint) (*models.BlogPost, error) {
	db, err := s.c.session(ctx)
	if err != nil {
		return nil, err
	}

	var p models.BlogPost
	err = db.Preload("Comments", func(db *gorm.DB) *gorm.DB {
		return db.Order("id asc")
	}).Where("id = ?", id).First(&p).Error
	if err != nil {
		return nil, translateError(fmt.Sprintf("could not get post %d", id), err)
	}

	if p.Comments == nil {
		p.Comments = []models.Comment{}
	}
	return &p, nil
}

func (s *PostStorage) Find(ctx context.Context, filter post.Filter) ([]*models.BlogPost, error) {
	db, err := s.c.session(ctx)
	if err != nil {
		return nil, err
	}

	q := db.Model(&models.BlogPost{}).Order("id asc")
	if filter.TitleContains != "" {
		q = q.Where(`title LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(filter.TitleContains)+"%")
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	} else if filter.Offset > 0 && db.Dialect().GetName() == DriverSQLite {
		// SQLite не принимает OFFSET без LIMIT
		q = q.Limit(int64(math.MaxInt64))
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var posts []*models.BlogPost
	err = q.Find(&posts).Error
	if err != nil {
		return nil, translateError("could not get posts", err)
	}
	if posts == nil {
		posts = []*models.BlogPost{}
	}
	return posts, nil
}

func (s *PostStorage) Count(ctx context.Context) (int, error) {
	db, err := s.c.session(ctx)
	if err != nil {
		return 0, err
	}

	var count int
	err = db.Model(&models.BlogPost{}).Count(&count).Error
	if err != nil {
		return 0, translateError("could not count posts", err)
	}
	return count, nil
}

// Update меняет только изменяемые поля; ID и DateCreated остаются прежними
func (s *PostStorage) Update(ctx context.Context, p *models.BlogPost) error {
	db, err := s.c.session(ctx)
	if err != nil {
		return err
	}

	if err := p.ValidateFields(); err != nil {
		return validationError("could not update post", err)
	}

	res := db.Model(&models.BlogPost{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"title":   p.Title,
		"content": p.Content,
	})
	if res.Error != nil {
		return translateError(fmt.Sprintf("could not update post %d", p.ID), res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("could not update post %d: %w", p.ID, storage.ErrNotFound)
	}
	return nil
}

// Delete удаляет пост; комментарии удаляет база (ON DELETE CASCADE)
func (s *PostStorage) Delete(ctx context.Context, id uint) error {
	db, err := s.c.session(ctx)
	if err != nil {
		return err
	}

	res := db.Where("id = ?", id).Delete(&models.BlogPost{})
	if res.Error != nil {
		return translateError(fmt.Sprintf("could not delete post %d", id), res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("could not delete post %d: %w", id, storage.ErrNotFound)
	}
	return nil
}
