package sqlstore

import (
	"context"
	"fmt"

	"github.com/VitaminP8/blogapp/internal/storage"
	"github.com/VitaminP8/blogapp/models"
)

type UserStorage struct {
	c *Context
}

func (s *UserStorage) Create(ctx context.Context, u *models.User) error {
	db, err := s.c.session(ctx)
	if err != nil {
		return err
	}

	if err := u.Validate(); err != nil {
		return validationError("failed to create user", err)
	}

	u.ID = 0
	err = db.Create(u).Error
	if err != nil {
		return translateError("failed to create user", err)
	}
	return nil
}

func (s *UserStorage) GetByID(ctx context.Context, id uint) (*models.User, error) {
	db, err := s.c.session(ctx)
	if err != nil {
		return nil, err
	}

	var u models.User
	err = db.Where("id = ?", id).First(&u).Error
	if err != nil {
		return nil, translateError(fmt.Sprintf("could not get user %d", id), err)
	}
	return &u, nil
}

func (s *UserStorage) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	db, err := s.c.session(ctx)
	if err != nil {
		return nil, err
	}

	var u models.User
	err = db.Where("username = ?", username).First(&u).Error
	if err != nil {
		return nil, translateError(fmt.Sprintf("user with username %s", username), err)
	}
	return &u, nil
}

func (s *UserStorage) Update(ctx context.Context, u *models.User) error {
	db, err := s.c.session(ctx)
	if err != nil {
		return err
	}

	if err := u.Validate(); err != nil {
		return validationError("failed to update user", err)
	}

	updates := map[string]interface{}{
		"username": u.Username,
		"email":    u.Email,
	}
	if u.PasswordHash != "" {
		updates["password_hash"] = u.PasswordHash
	}

	res := db.Model(&models.User{}).Where("id = ?", u.ID).Updates(updates)
	if res.Error != nil {
		return translateError(fmt.Sprintf("failed to update user %d", u.ID), res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to update user %d: %w", u.ID, storage.ErrNotFound)
	}
	return nil
}

func (s *UserStorage) Delete(ctx context.Context, id uint) error {
	db, err := s.c.session(ctx)
	if err != nil {
		return err
	}

	res := db.Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return translateError(fmt.Sprintf("failed to delete user %d", id), res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to delete user %d: %w", id, storage.ErrNotFound)
	}
	return nil
}
