package service

import (
	"context"
	"strings"

	"readr/internal/logger"
	"readr/internal/model"
	"readr/internal/repository"
)

// DefaultFeed describes the feed every new account is subscribed to.
type DefaultFeed struct {
	URL      string
	Title    string
	Category string
}

// OnboardingService runs after an account is created.
type OnboardingService interface {
	// OnUserCreated subscribes the user to the default feed. Failures are
	// logged and never reported to the caller.
	OnUserCreated(ctx context.Context, userID int64)
}

type onboardingService struct {
	feeds         repository.FeedRepository
	subscriptions repository.SubscriptionRepository
	categories    repository.CategoryRepository
	defaults      DefaultFeed
}

func NewOnboardingService(
	feeds repository.FeedRepository,
	subscriptions repository.SubscriptionRepository,
	categories repository.CategoryRepository,
	defaults DefaultFeed,
) OnboardingService {
	return &onboardingService{
		feeds:         feeds,
		subscriptions: subscriptions,
		categories:    categories,
		defaults:      defaults,
	}
}

func (s *onboardingService) OnUserCreated(ctx context.Context, userID int64) {
	feed, err := s.defaultFeed(ctx)
	if err != nil {
		logger.Error("default feed lookup failed", "module", "service", "action", "onboard", "resource", "feed", "result", "failed", "user_id", userID, "error", err)
		return
	}
	if feed == nil {
		return
	}

	category := strings.TrimSpace(s.defaults.Category)
	if category != "" {
		if created, err := ensureCategory(ctx, s.categories, userID, category); err != nil {
			logger.Warn("default category create failed", "module", "service", "action", "onboard", "resource", "category", "result", "failed", "user_id", userID, "error", err)
		} else {
			category = created.Name
		}
	}

	if _, err := s.subscriptions.Create(ctx, model.Subscription{
		UserID:   userID,
		FeedID:   feed.ID,
		Category: category,
	}); err != nil {
		logger.Error("default subscription failed", "module", "service", "action", "onboard", "resource", "subscription", "result", "failed", "user_id", userID, "feed_id", feed.ID, "error", err)
		return
	}
	logger.Info("user onboarded", "module", "service", "action", "onboard", "resource", "subscription", "result", "ok", "user_id", userID, "feed_id", feed.ID)
}

// defaultFeed returns the flagged default feed, creating it from the
// configured defaults when none exists. A nil feed means none is configured.
func (s *onboardingService) defaultFeed(ctx context.Context) (*model.Feed, error) {
	existing, err := s.feeds.FindDefault(ctx)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	feedURL := strings.TrimSpace(s.defaults.URL)
	if feedURL == "" {
		return nil, nil
	}

	// The URL may already be known as an ordinary feed.
	if byURL, err := s.feeds.FindByURL(ctx, feedURL); err != nil {
		return nil, err
	} else if byURL != nil {
		byURL.IsDefault = true
		updated, err := s.feeds.UpdateMetadata(ctx, *byURL)
		if err != nil {
			return nil, err
		}
		return &updated, nil
	}

	title := strings.TrimSpace(s.defaults.Title)
	if title == "" {
		title = feedURL
	}
	created, err := s.feeds.Create(ctx, model.Feed{
		URL:         feedURL,
		Title:       title,
		IsDefault:   true,
		FetchStatus: model.FetchStatusPending,
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}
