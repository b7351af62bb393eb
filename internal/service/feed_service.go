package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"readr/internal/logger"
	"readr/internal/model"
	"readr/internal/repository"
)

const backgroundRefreshTimeout = 2 * time.Minute

type AddFeedInput struct {
	URL      string
	Category string
	Title    string
}

type FeedService interface {
	// AddFeed subscribes the user to the feed at URL, creating the shared
	// feed when unknown, and refreshes it in the background.
	AddFeed(ctx context.Context, userID int64, input AddFeedInput) (model.UserFeed, error)
	// ImportFeed is AddFeed without the refresh. Already subscribed feeds
	// are reported with subscribed=false instead of an error.
	ImportFeed(ctx context.Context, userID int64, input AddFeedInput) (feed model.Feed, subscribed bool, err error)
	// EnsureFeed finds or creates the shared feed without subscribing.
	EnsureFeed(ctx context.Context, feedURL, title string) (model.Feed, error)
	Subscribe(ctx context.Context, userID, feedID int64, category string) (model.Subscription, error)
	// RemoveFeed drops the user's subscription and deletes the feed once no
	// subscriber remains.
	RemoveFeed(ctx context.Context, userID, feedID int64) error
	Unsubscribe(ctx context.Context, userID, subscriptionID int64) error
	GetSubscription(ctx context.Context, userID, subscriptionID int64) (model.Subscription, error)
	UpdateSubscription(ctx context.Context, userID, feedID int64, title, category *string) (model.UserFeed, error)
	List(ctx context.Context, userID int64, category *string) ([]model.UserFeed, error)
	Get(ctx context.Context, userID, feedID int64) (model.UserFeed, error)
}

type feedService struct {
	feeds         repository.FeedRepository
	subscriptions repository.SubscriptionRepository
	categories    repository.CategoryRepository
	refresh       RefreshService
}

func NewFeedService(
	feeds repository.FeedRepository,
	subscriptions repository.SubscriptionRepository,
	categories repository.CategoryRepository,
	refresh RefreshService,
) FeedService {
	return &feedService{
		feeds:         feeds,
		subscriptions: subscriptions,
		categories:    categories,
		refresh:       refresh,
	}
}

func (s *feedService) AddFeed(ctx context.Context, userID int64, input AddFeedInput) (model.UserFeed, error) {
	feed, _, err := s.subscribeURL(ctx, userID, input)
	if err != nil {
		return model.UserFeed{}, err
	}

	if feed.LastFetched == nil {
		s.refreshAsync(feed.ID)
	}

	userFeed, err := s.feeds.GetForUser(ctx, userID, feed.ID)
	if err != nil {
		return model.UserFeed{}, fmt.Errorf("load subscribed feed: %w", err)
	}
	return userFeed, nil
}

func (s *feedService) ImportFeed(ctx context.Context, userID int64, input AddFeedInput) (model.Feed, bool, error) {
	feed, _, err := s.subscribeURL(ctx, userID, input)
	if err != nil {
		var conflict *FeedConflictError
		if errors.As(err, &conflict) {
			return conflict.ExistingFeed, false, nil
		}
		return model.Feed{}, false, err
	}
	return feed, true, nil
}

func (s *feedService) EnsureFeed(ctx context.Context, feedURL, title string) (model.Feed, error) {
	trimmedURL := strings.TrimSpace(feedURL)
	if !isValidURL(trimmedURL) {
		return model.Feed{}, ErrInvalid
	}
	return s.findOrCreateFeed(ctx, trimmedURL, strings.TrimSpace(title))
}

func (s *feedService) Subscribe(ctx context.Context, userID, feedID int64, category string) (model.Subscription, error) {
	feed, err := s.feeds.GetByID(ctx, feedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Subscription{}, ErrNotFound
		}
		return model.Subscription{}, fmt.Errorf("get feed: %w", err)
	}
	sub, err := s.createSubscription(ctx, userID, feed, s.resolveCategory(ctx, userID, category), nil)
	if err != nil {
		return model.Subscription{}, err
	}
	if feed.LastFetched == nil {
		s.refreshAsync(feed.ID)
	}
	return sub, nil
}

func (s *feedService) RemoveFeed(ctx context.Context, userID, feedID int64) error {
	sub, err := s.subscriptions.Find(ctx, userID, feedID)
	if err != nil {
		return fmt.Errorf("find subscription: %w", err)
	}
	if sub == nil {
		return ErrNotFound
	}
	return s.dropSubscription(ctx, *sub)
}

func (s *feedService) Unsubscribe(ctx context.Context, userID, subscriptionID int64) error {
	sub, err := s.GetSubscription(ctx, userID, subscriptionID)
	if err != nil {
		return err
	}
	return s.dropSubscription(ctx, sub)
}

// GetSubscription hides subscriptions of other users behind ErrNotFound.
func (s *feedService) GetSubscription(ctx context.Context, userID, subscriptionID int64) (model.Subscription, error) {
	sub, err := s.subscriptions.GetByID(ctx, subscriptionID)
	if err != nil {
		return model.Subscription{}, mapNoRows(err, "get subscription")
	}
	if sub.UserID != userID {
		return model.Subscription{}, ErrNotFound
	}
	return sub, nil
}

func (s *feedService) UpdateSubscription(ctx context.Context, userID, feedID int64, title, category *string) (model.UserFeed, error) {
	sub, err := s.subscriptions.Find(ctx, userID, feedID)
	if err != nil {
		return model.UserFeed{}, fmt.Errorf("find subscription: %w", err)
	}
	if sub == nil {
		return model.UserFeed{}, ErrNotFound
	}

	if title != nil {
		sub.Title = optionalString(*title)
	}
	if category != nil {
		sub.Category = s.resolveCategory(ctx, userID, *category)
	}
	if _, err := s.subscriptions.Update(ctx, *sub); err != nil {
		return model.UserFeed{}, err
	}
	return s.Get(ctx, userID, feedID)
}

func (s *feedService) List(ctx context.Context, userID int64, category *string) ([]model.UserFeed, error) {
	return s.feeds.ListForUser(ctx, userID, category)
}

func (s *feedService) Get(ctx context.Context, userID, feedID int64) (model.UserFeed, error) {
	feed, err := s.feeds.GetForUser(ctx, userID, feedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.UserFeed{}, ErrNotFound
		}
		return model.UserFeed{}, fmt.Errorf("get feed: %w", err)
	}
	return feed, nil
}

func (s *feedService) subscribeURL(ctx context.Context, userID int64, input AddFeedInput) (model.Feed, model.Subscription, error) {
	trimmedURL := strings.TrimSpace(input.URL)
	if !isValidURL(trimmedURL) {
		return model.Feed{}, model.Subscription{}, ErrInvalid
	}
	title := strings.TrimSpace(input.Title)

	category := s.resolveCategory(ctx, userID, input.Category)

	feed, err := s.findOrCreateFeed(ctx, trimmedURL, title)
	if err != nil {
		return model.Feed{}, model.Subscription{}, err
	}

	var customTitle *string
	if title != "" && title != feed.Title {
		customTitle = &title
	}
	sub, err := s.createSubscription(ctx, userID, feed, category, customTitle)
	if err != nil {
		return model.Feed{}, model.Subscription{}, err
	}
	logger.Info("feed subscribed", "module", "service", "action", "create", "resource", "subscription", "result", "ok", "user_id", userID, "feed_id", feed.ID)
	return feed, sub, nil
}

// resolveCategory returns the stored spelling of a category, creating it
// when missing. A failure keeps the label as given.
func (s *feedService) resolveCategory(ctx context.Context, userID int64, name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	category, err := ensureCategory(ctx, s.categories, userID, trimmed)
	if err != nil {
		logger.Warn("category ensure failed", "module", "service", "action", "create", "resource", "category", "result", "failed", "user_id", userID, "category", trimmed, "error", err)
		return trimmed
	}
	return category.Name
}

func (s *feedService) findOrCreateFeed(ctx context.Context, feedURL, title string) (model.Feed, error) {
	if existing, err := s.feeds.FindByURL(ctx, feedURL); err != nil {
		return model.Feed{}, fmt.Errorf("check feed url: %w", err)
	} else if existing != nil {
		return *existing, nil
	}

	if title == "" {
		title = feedURL
	}
	created, err := s.feeds.Create(ctx, model.Feed{
		URL:         feedURL,
		Title:       title,
		FetchStatus: model.FetchStatusPending,
	})
	if err != nil {
		// Lost a race with another subscriber adding the same URL.
		if existing, findErr := s.feeds.FindByURL(ctx, feedURL); findErr == nil && existing != nil {
			return *existing, nil
		}
		return model.Feed{}, fmt.Errorf("create feed: %w", err)
	}
	logger.Info("feed created", "module", "service", "action", "create", "resource", "feed", "result", "ok", "feed_id", created.ID, "url", feedURL)
	return created, nil
}

func (s *feedService) createSubscription(ctx context.Context, userID int64, feed model.Feed, category string, title *string) (model.Subscription, error) {
	if existing, err := s.subscriptions.Find(ctx, userID, feed.ID); err != nil {
		return model.Subscription{}, fmt.Errorf("check subscription: %w", err)
	} else if existing != nil {
		return model.Subscription{}, &FeedConflictError{ExistingFeed: feed}
	}
	sub, err := s.subscriptions.Create(ctx, model.Subscription{
		UserID:   userID,
		FeedID:   feed.ID,
		Category: category,
		Title:    title,
	})
	if err != nil {
		return model.Subscription{}, fmt.Errorf("create subscription: %w", err)
	}
	return sub, nil
}

func (s *feedService) dropSubscription(ctx context.Context, sub model.Subscription) error {
	if err := s.subscriptions.Delete(ctx, sub.ID); err != nil {
		return err
	}
	remaining, err := s.subscriptions.CountByFeed(ctx, sub.FeedID)
	if err != nil {
		return fmt.Errorf("count subscribers: %w", err)
	}
	if remaining == 0 {
		if err := s.feeds.Delete(ctx, sub.FeedID); err != nil {
			return err
		}
		logger.Info("orphaned feed deleted", "module", "service", "action", "delete", "resource", "feed", "result", "ok", "feed_id", sub.FeedID)
	}
	return nil
}

func (s *feedService) refreshAsync(feedID int64) {
	if s.refresh == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), backgroundRefreshTimeout)
		defer cancel()
		if err := s.refresh.RefreshFeed(ctx, feedID); err != nil {
			logger.Warn("background refresh failed", "module", "service", "action", "refresh", "resource", "feed", "result", "failed", "feed_id", feedID, "error", err)
		}
	}()
}

func isValidURL(value string) bool {
	parsed, err := url.ParseRequestURI(value)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}
