package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"readr/internal/model"
)

type UserSettingsRepository interface {
	// Get returns the stored preferences or the defaults when none exist.
	Get(ctx context.Context, userID int64) (model.UserSettings, error)
	Upsert(ctx context.Context, settings model.UserSettings) (model.UserSettings, error)
}

type userSettingsRepository struct {
	db dbtx
}

func NewUserSettingsRepository(db dbtx) UserSettingsRepository {
	return &userSettingsRepository{db: db}
}

func (r *userSettingsRepository) Get(ctx context.Context, userID int64) (model.UserSettings, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT user_id, default_sort_order, fetch_interval, sidebar_width, article_width, updated_at FROM user_settings WHERE user_id = ?`,
		userID,
	)
	var s model.UserSettings
	var updatedAt string
	if err := row.Scan(&s.UserID, &s.DefaultSortOrder, &s.FetchInterval, &s.SidebarWidth, &s.ArticleWidth, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.DefaultUserSettings(userID), nil
		}
		return model.UserSettings{}, fmt.Errorf("get user settings: %w", err)
	}
	s.UpdatedAt, _ = parseTime(updatedAt)
	return s, nil
}

func (r *userSettingsRepository) Upsert(ctx context.Context, s model.UserSettings) (model.UserSettings, error) {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO user_settings (user_id, default_sort_order, fetch_interval, sidebar_width, article_width, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   default_sort_order = excluded.default_sort_order,
		   fetch_interval = excluded.fetch_interval,
		   sidebar_width = excluded.sidebar_width,
		   article_width = excluded.article_width,
		   updated_at = excluded.updated_at`,
		s.UserID,
		s.DefaultSortOrder,
		s.FetchInterval,
		s.SidebarWidth,
		s.ArticleWidth,
		formatTime(now),
	)
	if err != nil {
		return model.UserSettings{}, fmt.Errorf("save user settings: %w", err)
	}
	s.UpdatedAt = now
	return s, nil
}
