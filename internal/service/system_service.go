package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"readr/internal/config"
	"readr/internal/repository"
)

type SystemInfo struct {
	Version    string
	StartedAt  time.Time
	Uptime     string
	Feeds      int
	Categories int
	Items      int
	Unread     int
	Starred    int
}

type SystemService interface {
	Info(ctx context.Context, userID int64) (SystemInfo, error)
}

type systemService struct {
	feeds      repository.FeedRepository
	categories repository.CategoryRepository
	items      repository.ItemRepository
	startedAt  time.Time
	now        func() time.Time
}

func NewSystemService(
	feeds repository.FeedRepository,
	categories repository.CategoryRepository,
	items repository.ItemRepository,
	startedAt time.Time,
) SystemService {
	return &systemService{
		feeds:      feeds,
		categories: categories,
		items:      items,
		startedAt:  startedAt,
		now:        time.Now,
	}
}

func (s *systemService) Info(ctx context.Context, userID int64) (SystemInfo, error) {
	feeds, err := s.feeds.ListForUser(ctx, userID, nil)
	if err != nil {
		return SystemInfo{}, fmt.Errorf("list feeds: %w", err)
	}
	categories, err := s.categories.List(ctx, userID)
	if err != nil {
		return SystemInfo{}, fmt.Errorf("list categories: %w", err)
	}
	stats, err := s.items.Stats(ctx, userID)
	if err != nil {
		return SystemInfo{}, fmt.Errorf("item stats: %w", err)
	}

	return SystemInfo{
		Version:    config.AppVersion,
		StartedAt:  s.startedAt,
		Uptime:     strings.TrimSpace(humanize.RelTime(s.startedAt, s.now(), "", "")),
		Feeds:      len(feeds),
		Categories: len(categories),
		Items:      stats.Total,
		Unread:     stats.Unread,
		Starred:    stats.Starred,
	}, nil
}
