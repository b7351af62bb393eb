package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"readr/internal/logger"
	"readr/internal/model"
	"readr/internal/repository"
)

type CategoryService interface {
	Create(ctx context.Context, userID int64, name string, color *string) (model.Category, error)
	List(ctx context.Context, userID int64) ([]model.Category, error)
	Get(ctx context.Context, userID, id int64) (model.Category, error)
	// Update renames or recolors a category. A rename relabels the user's
	// subscriptions carrying the old name.
	Update(ctx context.Context, userID, id int64, name, color *string) (model.Category, error)
	// Delete removes the category and clears the label from subscriptions.
	Delete(ctx context.Context, userID, id int64) error
}

type categoryService struct {
	categories    repository.CategoryRepository
	subscriptions repository.SubscriptionRepository
}

func NewCategoryService(categories repository.CategoryRepository, subscriptions repository.SubscriptionRepository) CategoryService {
	return &categoryService{categories: categories, subscriptions: subscriptions}
}

func (s *categoryService) Create(ctx context.Context, userID int64, name string, color *string) (model.Category, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return model.Category{}, ErrInvalid
	}
	if existing, err := s.categories.FindByName(ctx, userID, trimmed); err != nil {
		return model.Category{}, fmt.Errorf("check category name: %w", err)
	} else if existing != nil {
		return model.Category{}, ErrConflict
	}
	return s.categories.Create(ctx, userID, trimmed, optionalStringPtr(color))
}

func (s *categoryService) List(ctx context.Context, userID int64) ([]model.Category, error) {
	return s.categories.List(ctx, userID)
}

func (s *categoryService) Get(ctx context.Context, userID, id int64) (model.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Category{}, ErrNotFound
		}
		return model.Category{}, fmt.Errorf("get category: %w", err)
	}
	if category.UserID != userID {
		return model.Category{}, ErrNotFound
	}
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, userID, id int64, name, color *string) (model.Category, error) {
	category, err := s.Get(ctx, userID, id)
	if err != nil {
		return model.Category{}, err
	}

	newName := category.Name
	if name != nil {
		newName = strings.TrimSpace(*name)
		if newName == "" {
			return model.Category{}, ErrInvalid
		}
	}
	newColor := category.Color
	if color != nil {
		newColor = optionalStringPtr(color)
	}

	renamed := newName != category.Name
	if renamed && !strings.EqualFold(newName, category.Name) {
		if existing, err := s.categories.FindByName(ctx, userID, newName); err != nil {
			return model.Category{}, fmt.Errorf("check category name: %w", err)
		} else if existing != nil {
			return model.Category{}, ErrConflict
		}
	}

	updated, err := s.categories.Update(ctx, id, newName, newColor)
	if err != nil {
		return model.Category{}, err
	}
	if renamed {
		if err := s.subscriptions.RenameCategory(ctx, userID, category.Name, newName); err != nil {
			return model.Category{}, err
		}
	}
	return updated, nil
}

func (s *categoryService) Delete(ctx context.Context, userID, id int64) error {
	category, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.subscriptions.RenameCategory(ctx, userID, category.Name, ""); err != nil {
		return err
	}
	logger.Info("category deleted", "module", "service", "action", "delete", "resource", "category", "result", "ok", "user_id", userID, "category_id", id)
	return nil
}

// ensureCategory finds a category case-insensitively or creates it.
func ensureCategory(ctx context.Context, categories repository.CategoryRepository, userID int64, name string) (model.Category, error) {
	if existing, err := categories.FindByName(ctx, userID, name); err != nil {
		return model.Category{}, fmt.Errorf("find category: %w", err)
	} else if existing != nil {
		return *existing, nil
	}

	created, err := categories.Create(ctx, userID, name, nil)
	if err != nil {
		// Lost a race with a concurrent create.
		if existing, findErr := categories.FindByName(ctx, userID, name); findErr == nil && existing != nil {
			return *existing, nil
		}
		return model.Category{}, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func optionalStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	return optionalString(*value)
}
