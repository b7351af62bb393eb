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

const (
	defaultItemLimit = 50
	maxItemLimit     = 100
)

type ItemListParams struct {
	FeedID      *int64
	Category    *string
	UnreadOnly  bool
	StarredOnly bool
	Search      string
	// Sort is newest or oldest. Empty uses the user's preference.
	Sort   string
	Limit  int
	Offset int
}

type ItemPage struct {
	Items   []model.FeedItem
	HasMore bool
}

type ItemService interface {
	List(ctx context.Context, userID int64, params ItemListParams) (ItemPage, error)
	Get(ctx context.Context, userID, id int64) (model.FeedItem, error)
	SetRead(ctx context.Context, userID, id int64, read bool) error
	SetStarred(ctx context.Context, userID, id int64, starred bool) error
	// MarkAllRead marks the user's unread items read, optionally limited to
	// a feed or a category, and returns how many changed.
	MarkAllRead(ctx context.Context, userID int64, feedID *int64, category *string) (int64, error)
	UnreadCounts(ctx context.Context, userID int64) (map[int64]int, error)
	Stats(ctx context.Context, userID int64) (repository.ItemStats, error)
}

type itemService struct {
	items        repository.ItemRepository
	feeds        repository.FeedRepository
	userSettings repository.UserSettingsRepository
}

func NewItemService(items repository.ItemRepository, feeds repository.FeedRepository, userSettings repository.UserSettingsRepository) ItemService {
	return &itemService{items: items, feeds: feeds, userSettings: userSettings}
}

func (s *itemService) List(ctx context.Context, userID int64, params ItemListParams) (ItemPage, error) {
	if params.FeedID != nil {
		if _, err := s.feeds.GetForUser(ctx, userID, *params.FeedID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ItemPage{}, ErrNotFound
			}
			return ItemPage{}, fmt.Errorf("check feed: %w", err)
		}
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultItemLimit
	}
	if limit > maxItemLimit {
		limit = maxItemLimit
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	sortOrder, err := s.sortOrder(ctx, userID, params.Sort)
	if err != nil {
		return ItemPage{}, err
	}

	items, err := s.items.List(ctx, repository.ItemListFilter{
		UserID:      userID,
		FeedID:      params.FeedID,
		Category:    params.Category,
		UnreadOnly:  params.UnreadOnly,
		StarredOnly: params.StarredOnly,
		Search:      params.Search,
		Oldest:      sortOrder == model.SortOldest,
		Limit:       limit + 1,
		Offset:      offset,
	})
	if err != nil {
		return ItemPage{}, err
	}

	page := ItemPage{Items: items}
	if len(items) > limit {
		page.Items = items[:limit]
		page.HasMore = true
	}
	return page, nil
}

func isValidSortOrder(order string) bool {
	return order == model.SortNewest || order == model.SortOldest
}

func (s *itemService) sortOrder(ctx context.Context, userID int64, requested string) (string, error) {
	if isValidSortOrder(requested) {
		return requested, nil
	}
	if requested != "" {
		return "", ErrInvalid
	}
	if s.userSettings == nil {
		return model.SortNewest, nil
	}
	settings, err := s.userSettings.Get(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load preferences: %w", err)
	}
	if settings.DefaultSortOrder == model.SortOldest {
		return model.SortOldest, nil
	}
	return model.SortNewest, nil
}

func (s *itemService) Get(ctx context.Context, userID, id int64) (model.FeedItem, error) {
	item, err := s.items.GetForUser(ctx, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.FeedItem{}, ErrNotFound
		}
		return model.FeedItem{}, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

func (s *itemService) SetRead(ctx context.Context, userID, id int64, read bool) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.items.SetRead(ctx, userID, id, read)
}

func (s *itemService) SetStarred(ctx context.Context, userID, id int64, starred bool) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.items.SetStarred(ctx, userID, id, starred)
}

func (s *itemService) MarkAllRead(ctx context.Context, userID int64, feedID *int64, category *string) (int64, error) {
	if feedID != nil {
		if _, err := s.feeds.GetForUser(ctx, userID, *feedID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, ErrNotFound
			}
			return 0, fmt.Errorf("check feed: %w", err)
		}
	}
	if category != nil && strings.TrimSpace(*category) == "" {
		category = nil
	}
	count, err := s.items.MarkAllRead(ctx, userID, feedID, category)
	if err != nil {
		return 0, err
	}
	logger.Info("items marked read", "module", "service", "action", "update", "resource", "item", "result", "ok", "user_id", userID, "count", count)
	return count, nil
}

func (s *itemService) UnreadCounts(ctx context.Context, userID int64) (map[int64]int, error) {
	counts, err := s.items.UnreadCounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := make(map[int64]int, len(counts))
	for _, c := range counts {
		result[c.FeedID] = c.Count
	}
	return result, nil
}

func (s *itemService) Stats(ctx context.Context, userID int64) (repository.ItemStats, error) {
	return s.items.Stats(ctx, userID)
}
