package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"thundergames/backend/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// NewUser describes an account to create.
type NewUser struct {
	Username  string `json:"username" validate:"required,max=150"`
	Password  string `json:"password" validate:"required"`
	FirstName string
	LastName  string
	Superuser bool
}

type AuthService interface {
	// Authenticate checks credentials and returns the active account they belong to.
	Authenticate(ctx context.Context, username, password string) (models.User, error)
	GetUser(ctx context.Context, id uint) (models.User, error)
	CreateUser(ctx context.Context, input NewUser) (models.User, error)
	// EnsureSuperuser creates the account, or promotes it and resets its password.
	EnsureSuperuser(ctx context.Context, username, password string) (models.User, error)
}

type authService struct {
	db *gorm.DB
}

func NewAuthService(db *gorm.DB) AuthService {
	return &authService{db: db}
}

func (s *authService) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.User{}, &ValidationError{Field: "username", Message: "Username and password are required."}
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrUnauthorized
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	if !user.IsActive {
		return models.User{}, ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrUnauthorized
	}
	return user, nil
}

func (s *authService) GetUser(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, notFoundOr(err, "User")
	}
	return user, nil
}

func (s *authService) CreateUser(ctx context.Context, input NewUser) (models.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	if err := validateStruct(input); err != nil {
		return models.User{}, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:     input.Username,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: string(hashedPassword),
		IsSuperuser:  input.Superuser,
		IsActive:     true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *authService) EnsureSuperuser(ctx context.Context, username, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.CreateUser(ctx, NewUser{Username: username, Password: password, Superuser: true})
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	if password == "" {
		return models.User{}, requiredError("password")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	err = s.db.WithContext(ctx).Model(&user).Updates(map[string]any{
		"password_hash": string(hashedPassword),
		"is_superuser":  true,
		"is_active":     true,
	}).Error
	if err != nil {
		return models.User{}, fmt.Errorf("promote user: %w", err)
	}
	user.PasswordHash = string(hashedPassword)
	user.IsSuperuser = true
	user.IsActive = true
	return user, nil
}
