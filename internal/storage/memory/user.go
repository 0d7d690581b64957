package memory

import (
	"context"
	"fmt"

	"github.com/VitaminP8/blogapp/internal/storage"
	"github.com/VitaminP8/blogapp/models"
)

type UserMemoryStorage struct {
	c *Context
}

// uniqueViolation проверяет уникальность username и email; вызывать под mu
func (s *UserMemoryStorage) uniqueViolation(u *models.User) error {
	for id, existing := range s.c.store.users {
		if id == u.ID {
			continue
		}
		if existing.Username == u.Username {
			return fmt.Errorf("%w: user with username %s already exists", storage.ErrConstraintViolation, u.Username)
		}
		if existing.Email == u.Email {
			return fmt.Errorf("%w: email %s already registered", storage.ErrConstraintViolation, u.Email)
		}
	}
	return nil
}

func (s *UserMemoryStorage) Create(ctx context.Context, u *models.User) error {
	if err := s.c.check(ctx); err != nil {
		return err
	}
	if err := u.Validate(); err != nil {
		return fmt.Errorf("failed to create user: %w: %v", storage.ErrConstraintViolation, err)
	}

	st := s.c.store
	st.mu.Lock()
	defer st.mu.Unlock()

	u.ID = 0
	if err := s.uniqueViolation(u); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	u.ID = st.nextUserID
	st.nextUserID++
	u.BeforeCreate()

	stored := *u
	st.users[u.ID] = &stored
	return nil
}

func (s *UserMemoryStorage) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if err := s.c.check(ctx); err != nil {
		return nil, err
	}

	st := s.c.store
	st.mu.Lock()
	defer st.mu.Unlock()

	u, exists := st.users[id]
	if !exists {
		return nil, fmt.Errorf("could not get user %d: %w", id, storage.ErrNotFound)
	}
	result := *u
	return &result, nil
}

func (s *UserMemoryStorage) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if err := s.c.check(ctx); err != nil {
		return nil, err
	}

	st := s.c.store
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, u := range st.users {
		if u.Username == username {
			result := *u
			return &result, nil
		}
	}
	return nil, fmt.Errorf("user with username %s: %w", username, storage.ErrNotFound)
}

func (s *UserMemoryStorage) Update(ctx context.Context, u *models.User) error {
	if err := s.c.check(ctx); err != nil {
		return err
	}
	if err := u.Validate(); err != nil {
		return fmt.Errorf("failed to update user: %w: %v", storage.ErrConstraintViolation, err)
	}

	st := s.c.store
	st.mu.Lock()
	defer st.mu.Unlock()

	stored, exists := st.users[u.ID]
	if !exists {
		return fmt.Errorf("failed to update user %d: %w", u.ID, storage.ErrNotFound)
	}
	if err := s.uniqueViolation(u); err != nil {
		return fmt.Errorf("failed to update user %d: %w", u.ID, err)
	}

	stored.Username = u.Username
	stored.Email = u.Email
	if u.PasswordHash != "" {
		stored.PasswordHash = u.PasswordHash
	}
	return nil
}

func (s *UserMemoryStorage) Delete(ctx context.Context, id uint) error {
	if err := s.c.check(ctx); err != nil {
		return err
	}

	st := s.c.store
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, exists := st.users[id]; !exists {
		return fmt.Errorf("failed to delete user %d: %w", id, storage.ErrNotFound)
	}
	delete(st.users, id)
	return nil
}
