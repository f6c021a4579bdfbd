package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/dmorenov/cajadesk/internal/models"
	apperrors "github.com/dmorenov/cajadesk/pkg/errors"
)

// CreateUserInput defines attributes for a new operator account.
type CreateUserInput struct {
	Username    string
	DisplayName string
	Role        string
}

// UpdateUserInput describes a partial user update; nil fields are unchanged.
type UpdateUserInput struct {
	DisplayName *string
	Role        *string
	IsActive    *bool
}

// UserService manages console operator accounts. Users are a fingerprinted
// realtime domain: any write here surfaces as one aggregate update event on
// the next poll.
type UserService struct {
	db *gorm.DB
}

// NewUserService constructs a UserService.
func NewUserService(db *gorm.DB) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{db: db}, nil
}

// Create registers a new operator.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, apperrors.NewBadRequest("username is required")
	}

	user := models.User{
		Username:    username,
		DisplayName: strings.TrimSpace(input.DisplayName),
		Role:        defaultIfEmpty(input.Role, "operator"),
		IsActive:    true,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("user service: create: %w", err)
	}
	return &user, nil
}

// List returns every operator ordered by username.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	ctx = ensureContext(ctx)

	var rows []models.User
	if err := s.db.WithContext(ctx).Order("username ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("user service: list: %w", err)
	}
	return rows, nil
}

// Update applies a partial change to an operator.
func (s *UserService) Update(ctx context.Context, id string, input UpdateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	if err := s.db.WithContext(ctx).Take(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("user service: load: %w", err)
	}

	updates := map[string]any{}
	if input.DisplayName != nil {
		updates["display_name"] = strings.TrimSpace(*input.DisplayName)
	}
	if input.Role != nil {
		updates["role"] = defaultIfEmpty(*input.Role, user.Role)
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return &user, nil
	}

	if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("user service: update: %w", err)
	}
	return &user, nil
}

// Delete removes an operator account.
func (s *UserService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	if result.Error != nil {
		return fmt.Errorf("user service: delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func defaultIfEmpty(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}
