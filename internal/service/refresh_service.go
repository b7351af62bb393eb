package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"readr/internal/logger"
	"readr/internal/model"
	"readr/internal/network"
	"readr/internal/repository"
)

var ErrAlreadyRefreshing = errors.New("refresh already in progress")

const (
	feedFetchTimeout = 30 * time.Second
	maxFeedBodyBytes = 10 << 20
)

type RefreshOptions struct {
	Concurrency int
	// HostRate is the number of requests per second allowed per host.
	HostRate      float64
	MaxRetries    int
	RetryInterval time.Duration
}

type RefreshService interface {
	RefreshAll(ctx context.Context) error
	RefreshFeeds(ctx context.Context, feedIDs []int64) error
	RefreshFeed(ctx context.Context, feedID int64) error
	// RefreshForUser refreshes every feed the user subscribes to.
	RefreshForUser(ctx context.Context, userID int64) error
	IsRefreshing() bool
}

type refreshService struct {
	feeds         repository.FeedRepository
	items         repository.ItemRepository
	icons         IconService
	clientFactory *network.ClientFactory
	opts          RefreshOptions
	limiter       *hostLimiter

	mu           sync.Mutex
	isRefreshing bool
}

func NewRefreshService(
	feeds repository.FeedRepository,
	items repository.ItemRepository,
	icons IconService,
	clientFactory *network.ClientFactory,
	opts RefreshOptions,
) RefreshService {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 500 * time.Millisecond
	}
	return &refreshService{
		feeds:         feeds,
		items:         items,
		icons:         icons,
		clientFactory: clientFactory,
		opts:          opts,
		limiter:       newHostLimiter(opts.HostRate),
	}
}

func (s *refreshService) RefreshAll(ctx context.Context) error {
	s.mu.Lock()
	if s.isRefreshing {
		s.mu.Unlock()
		return ErrAlreadyRefreshing
	}
	s.isRefreshing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isRefreshing = false
		s.mu.Unlock()
	}()

	feeds, err := s.feeds.List(ctx)
	if err != nil {
		return fmt.Errorf("list feeds: %w", err)
	}
	return s.refreshBatch(ctx, feeds)
}

func (s *refreshService) IsRefreshing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRefreshing
}

func (s *refreshService) RefreshFeeds(ctx context.Context, feedIDs []int64) error {
	feeds, err := s.feeds.ListByIDs(ctx, feedIDs)
	if err != nil {
		return fmt.Errorf("list feeds: %w", err)
	}
	return s.refreshBatch(ctx, feeds)
}

func (s *refreshService) RefreshForUser(ctx context.Context, userID int64) error {
	userFeeds, err := s.feeds.ListForUser(ctx, userID, nil)
	if err != nil {
		return fmt.Errorf("list user feeds: %w", err)
	}
	feeds := make([]model.Feed, 0, len(userFeeds))
	for _, uf := range userFeeds {
		feeds = append(feeds, uf.Feed)
	}
	return s.refreshBatch(ctx, feeds)
}

func (s *refreshService) RefreshFeed(ctx context.Context, feedID int64) error {
	feed, err := s.feeds.GetByID(ctx, feedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return s.refreshFeed(ctx, feed)
}

func (s *refreshService) refreshBatch(ctx context.Context, feeds []model.Feed) error {
	if len(feeds) == 0 {
		return nil
	}
	start := time.Now()
	var failed atomic.Int32

	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)
	for _, feed := range feeds {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if err := s.refreshFeed(ctx, feed); err != nil {
				failed.Add(1)
				logger.Warn("feed refresh failed", "module", "service", "action", "refresh", "resource", "feed", "result", "failed", "feed_id", feed.ID, "url", feed.URL, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	logger.Info("refresh completed", "module", "service", "action", "refresh", "resource", "feed", "result", "ok", "count", len(feeds), "failed", failed.Load(), "duration", time.Since(start).String())
	return ctx.Err()
}

type fetchResponse struct {
	notModified  bool
	body         []byte
	etag         string
	lastModified string
}

type httpStatusError struct {
	code int
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.code)
}

// refreshFeed fetches, parses and stores one feed. The fetch outcome is
// always recorded on the feed row; the returned error reports it as well.
func (s *refreshService) refreshFeed(ctx context.Context, feed model.Feed) error {
	resp, err := s.fetch(ctx, feed)
	if err != nil {
		s.recordFailure(ctx, feed, err)
		return err
	}

	if resp.notModified {
		return s.feeds.UpdateFetchResult(ctx, feed.ID, repository.FetchResult{
			Status:    model.FetchStatusSuccess,
			FetchedAt: time.Now(),
		})
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(resp.body))
	if err != nil {
		err = fmt.Errorf("parse feed: %w", err)
		s.recordFailure(ctx, feed, err)
		return err
	}

	created, updated := 0, 0
	for _, entry := range parsed.Items {
		item, ok := itemFromFeed(feed.ID, entry)
		if !ok {
			continue
		}
		exists, err := s.items.ExistsByLink(ctx, feed.ID, item.Link)
		if err != nil {
			logger.Warn("check item exists failed", "module", "service", "action", "refresh", "resource", "item", "result", "failed", "feed_id", feed.ID, "error", err)
			continue
		}
		if err := s.items.CreateOrUpdate(ctx, item); err != nil {
			logger.Warn("save item failed", "module", "service", "action", "refresh", "resource", "item", "result", "failed", "feed_id", feed.ID, "error", err)
			continue
		}
		if exists {
			updated++
		} else {
			created++
		}
	}

	if err := s.feeds.UpdateFetchResult(ctx, feed.ID, repository.FetchResult{
		Status:       model.FetchStatusSuccess,
		ETag:         optionalString(resp.etag),
		LastModified: optionalString(resp.lastModified),
		FetchedAt:    time.Now(),
	}); err != nil {
		return err
	}

	s.backfillMetadata(ctx, feed, parsed)

	if created > 0 || updated > 0 {
		logger.Info("feed refreshed", "module", "service", "action", "refresh", "resource", "feed", "result", "ok", "feed_id", feed.ID, "new", created, "updated", updated)
	}
	return nil
}

// fetch performs the conditional GET, retrying network errors, 429 and 5xx.
func (s *refreshService) fetch(ctx context.Context, feed model.Feed) (*fetchResponse, error) {
	client := s.clientFactory.NewHTTPClient(ctx, feedFetchTimeout)

	operation := func() (*fetchResponse, error) {
		if err := s.limiter.Wait(ctx, feed.URL); err != nil {
			return nil, backoff.Permanent(err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.5")
		if feed.ETag != nil && *feed.ETag != "" {
			req.Header.Set("If-None-Match", *feed.ETag)
		}
		if feed.LastModified != nil && *feed.LastModified != "" {
			req.Header.Set("If-Modified-Since", *feed.LastModified)
		}

		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotModified:
			return &fetchResponse{notModified: true}, nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil, &httpStatusError{code: resp.StatusCode}
		case resp.StatusCode >= http.StatusBadRequest:
			return nil, backoff.Permanent(&httpStatusError{code: resp.StatusCode})
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBodyBytes))
		if err != nil {
			return nil, err
		}
		return &fetchResponse{
			body:         body,
			etag:         resp.Header.Get("ETag"),
			lastModified: resp.Header.Get("Last-Modified"),
		}, nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.opts.RetryInterval
	retry := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(s.opts.MaxRetries)), ctx)
	notify := func(err error, wait time.Duration) {
		logger.Debug("feed fetch retry", "module", "service", "action", "fetch", "resource", "feed", "result", "retry", "feed_id", feed.ID, "wait", wait.String(), "error", err)
	}
	return backoff.RetryNotifyWithData(operation, retry, notify)
}

func (s *refreshService) recordFailure(ctx context.Context, feed model.Feed, cause error) {
	msg := cause.Error()
	if err := s.feeds.UpdateFetchResult(ctx, feed.ID, repository.FetchResult{
		Status:       model.FetchStatusFailed,
		ErrorMessage: &msg,
		FetchedAt:    time.Now(),
	}); err != nil {
		logger.Error("record fetch failure failed", "module", "service", "action", "refresh", "resource", "feed", "result", "failed", "feed_id", feed.ID, "error", err)
	}
}

// backfillMetadata fills feed fields the parsed document provides and the
// row lacks, and discovers a favicon once.
func (s *refreshService) backfillMetadata(ctx context.Context, feed model.Feed, parsed *gofeed.Feed) {
	changed := false
	if title := strings.TrimSpace(parsed.Title); title != "" && (feed.Title == "" || feed.Title == feed.URL) {
		feed.Title = title
		changed = true
	}
	if feed.SiteURL == nil {
		if link := optionalString(parsed.Link); link != nil {
			feed.SiteURL = link
			changed = true
		}
	}
	if feed.Description == nil {
		if desc := optionalString(parsed.Description); desc != nil {
			feed.Description = desc
			changed = true
		}
	}
	if feed.Favicon == nil && s.icons != nil {
		siteURL := feed.URL
		if feed.SiteURL != nil {
			siteURL = *feed.SiteURL
		}
		if icon, err := s.icons.DiscoverFavicon(ctx, siteURL); err == nil && icon != "" {
			feed.Favicon = &icon
			changed = true
		}
	}
	if !changed {
		return
	}
	if _, err := s.feeds.UpdateMetadata(ctx, feed); err != nil {
		logger.Warn("update feed metadata failed", "module", "service", "action", "update", "resource", "feed", "result", "failed", "feed_id", feed.ID, "error", err)
	}
}

// itemFromFeed converts a parsed entry. Entries without a link are skipped.
func itemFromFeed(feedID int64, entry *gofeed.Item) (model.FeedItem, bool) {
	link := strings.TrimSpace(entry.Link)
	if link == "" {
		return model.FeedItem{}, false
	}

	item := model.FeedItem{
		FeedID:   feedID,
		Title:    strings.TrimSpace(entry.Title),
		Link:     link,
		GUID:     optionalString(entry.GUID),
		Summary:  optionalString(entry.Description),
		Content:  optionalString(entry.Content),
		ImageURL: optionalString(itemImage(entry)),
	}
	if item.Title == "" {
		item.Title = link
	}

	if entry.Author != nil && strings.TrimSpace(entry.Author.Name) != "" {
		item.Author = optionalString(entry.Author.Name)
	} else if len(entry.Authors) > 0 && entry.Authors[0] != nil {
		item.Author = optionalString(entry.Authors[0].Name)
	}

	if entry.PublishedParsed != nil {
		t := entry.PublishedParsed.UTC()
		item.PublishedAt = &t
	} else if entry.UpdatedParsed != nil {
		t := entry.UpdatedParsed.UTC()
		item.PublishedAt = &t
	}
	return item, true
}

// itemImage picks the entry image, then an image enclosure, then a media
// thumbnail or image media:content.
func itemImage(entry *gofeed.Item) string {
	if entry.Image != nil && strings.TrimSpace(entry.Image.URL) != "" {
		return entry.Image.URL
	}
	for _, enclosure := range entry.Enclosures {
		if enclosure != nil && strings.HasPrefix(enclosure.Type, "image/") && enclosure.URL != "" {
			return enclosure.URL
		}
	}
	media, ok := entry.Extensions["media"]
	if !ok {
		return ""
	}
	for _, thumb := range media["thumbnail"] {
		if u := thumb.Attrs["url"]; u != "" {
			return u
		}
	}
	for _, content := range media["content"] {
		if content.Attrs["medium"] == "image" || strings.HasPrefix(content.Attrs["type"], "image/") {
			if u := content.Attrs["url"]; u != "" {
				return u
			}
		}
	}
	// media:group wraps thumbnails in some feeds.
	for _, group := range media["group"] {
		for _, thumb := range group.Children["thumbnail"] {
			if u := thumb.Attrs["url"]; u != "" {
				return u
			}
		}
	}
	return ""
}
