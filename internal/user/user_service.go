package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/VitaminP8/blogapp/models"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

var (
	ErrInvalidCredentials = errors.New("invalid password or username")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", minPasswordLength)
)

// Register хэширует пароль и создает пользователя.
// Повтор username или email возвращается хранилищем как нарушение ограничения.
func Register(ctx context.Context, users UserStorage, username, email, password string) (*models.User, error) {
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if err := users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate проверяет пароль пользователя. Ошибка поиска пользователя возвращается как есть.
func Authenticate(ctx context.Context, users UserStorage, username, password string) (*models.User, error) {
	u, err := users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	err = bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	return u, nil
}
