package service

import (
	"context"
	"fmt"
	"strings"

	"readr/internal/logger"
	"readr/internal/model"
	"readr/internal/repository"
)

type Preferences struct {
	Theme            string
	DefaultSortOrder string
	FetchInterval    int
	SidebarWidth     int
	ArticleWidth     int
}

// PreferencesInput is a partial update; nil fields keep their value.
type PreferencesInput struct {
	Theme            *string
	DefaultSortOrder *string
	FetchInterval    *int
	SidebarWidth     *int
	ArticleWidth     *int
}

type PreferencesService interface {
	Get(ctx context.Context, userID int64) (Preferences, error)
	Update(ctx context.Context, userID int64, input PreferencesInput) (Preferences, error)
}

type preferencesService struct {
	users        repository.UserRepository
	userSettings repository.UserSettingsRepository
}

func NewPreferencesService(users repository.UserRepository, userSettings repository.UserSettingsRepository) PreferencesService {
	return &preferencesService{users: users, userSettings: userSettings}
}

func (s *preferencesService) Get(ctx context.Context, userID int64) (Preferences, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return Preferences{}, mapNoRows(err, "get user")
	}
	settings, err := s.userSettings.Get(ctx, userID)
	if err != nil {
		return Preferences{}, fmt.Errorf("get user settings: %w", err)
	}
	return toPreferences(user.Theme, settings), nil
}

func (s *preferencesService) Update(ctx context.Context, userID int64, input PreferencesInput) (Preferences, error) {
	if err := validatePreferences(input); err != nil {
		return Preferences{}, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return Preferences{}, mapNoRows(err, "get user")
	}
	settings, err := s.userSettings.Get(ctx, userID)
	if err != nil {
		return Preferences{}, fmt.Errorf("get user settings: %w", err)
	}

	if input.Theme != nil {
		theme := strings.ToLower(strings.TrimSpace(*input.Theme))
		if theme != user.Theme {
			user, err = s.users.UpdateProfile(ctx, userID, user.DisplayName, theme)
			if err != nil {
				logger.Error("theme update failed", "module", "service", "action", "update", "resource", "preferences", "result", "failed", "user_id", userID, "error", err)
				return Preferences{}, fmt.Errorf("update theme: %w", err)
			}
		}
	}

	if input.DefaultSortOrder != nil {
		settings.DefaultSortOrder = strings.ToLower(strings.TrimSpace(*input.DefaultSortOrder))
	}
	if input.FetchInterval != nil {
		settings.FetchInterval = *input.FetchInterval
	}
	if input.SidebarWidth != nil {
		settings.SidebarWidth = *input.SidebarWidth
	}
	if input.ArticleWidth != nil {
		settings.ArticleWidth = *input.ArticleWidth
	}
	settings.UserID = userID

	saved, err := s.userSettings.Upsert(ctx, settings)
	if err != nil {
		logger.Error("preferences save failed", "module", "service", "action", "update", "resource", "preferences", "result", "failed", "user_id", userID, "error", err)
		return Preferences{}, err
	}
	logger.Info("preferences updated", "module", "service", "action", "update", "resource", "preferences", "result", "ok", "user_id", userID)
	return toPreferences(user.Theme, saved), nil
}

func validatePreferences(input PreferencesInput) error {
	if input.Theme != nil {
		switch strings.ToLower(strings.TrimSpace(*input.Theme)) {
		case model.ThemeLight, model.ThemeDark, model.ThemeSystem:
		default:
			return fmt.Errorf("%w: theme must be light, dark or system", ErrInvalid)
		}
	}
	if input.DefaultSortOrder != nil {
		if !isValidSortOrder(strings.ToLower(strings.TrimSpace(*input.DefaultSortOrder))) {
			return fmt.Errorf("%w: sort order must be newest or oldest", ErrInvalid)
		}
	}
	if input.FetchInterval != nil && *input.FetchInterval < 1 {
		return fmt.Errorf("%w: fetch interval must be at least one minute", ErrInvalid)
	}
	if input.SidebarWidth != nil && *input.SidebarWidth < 0 {
		return fmt.Errorf("%w: sidebar width must not be negative", ErrInvalid)
	}
	if input.ArticleWidth != nil && *input.ArticleWidth < 0 {
		return fmt.Errorf("%w: article width must not be negative", ErrInvalid)
	}
	return nil
}

func toPreferences(theme string, settings model.UserSettings) Preferences {
	if theme == "" {
		theme = model.ThemeSystem
	}
	return Preferences{
		Theme:            theme,
		DefaultSortOrder: settings.DefaultSortOrder,
		FetchInterval:    settings.FetchInterval,
		SidebarWidth:     settings.SidebarWidth,
		ArticleWidth:     settings.ArticleWidth,
	}
}
