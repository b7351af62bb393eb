package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"readr/internal/config"
	"readr/internal/logger"
	"readr/internal/model"
	"readr/internal/opml"
	"readr/internal/repository"
)

type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Failed   []string `json:"failed,omitempty"`
}

type ImportProgress struct {
	Total   int    `json:"total"`
	Current int    `json:"current"`
	Feed    string `json:"feed,omitempty"`
	Status  string `json:"status"` // started, importing, done
}

type OPMLService interface {
	// Import subscribes the user to every feed outline. Feeds outside a
	// folder get defaultCategory. Per-feed failures are collected in the
	// result; only a malformed document or cancellation returns an error.
	Import(ctx context.Context, userID int64, reader io.Reader, defaultCategory string, onProgress func(ImportProgress)) (ImportResult, error)
	Export(ctx context.Context, userID int64) ([]byte, error)
}

type opmlService struct {
	feedService FeedService
	refresh     RefreshService
	feeds       repository.FeedRepository
}

func NewOPMLService(feedService FeedService, refresh RefreshService, feeds repository.FeedRepository) OPMLService {
	return &opmlService{feedService: feedService, refresh: refresh, feeds: feeds}
}

func (s *opmlService) Import(ctx context.Context, userID int64, reader io.Reader, defaultCategory string, onProgress func(ImportProgress)) (ImportResult, error) {
	doc, err := opml.Parse(reader)
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	entries := opml.Flatten(doc.Body.Outlines)
	total := len(entries)

	logger.Info("opml import parsed", "module", "service", "action", "import", "resource", "opml", "result", "ok", "user_id", userID, "count", total)
	report := func(p ImportProgress) {
		if onProgress != nil {
			onProgress(p)
		}
	}
	report(ImportProgress{Total: total, Status: "started"})

	var result ImportResult
	var refreshIDs []int64
	for i, entry := range entries {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		report(ImportProgress{Total: total, Current: i + 1, Feed: entry.Title, Status: "importing"})

		category := entry.Category
		if category == "" {
			category = defaultCategory
		}
		feed, subscribed, err := s.feedService.ImportFeed(ctx, userID, AddFeedInput{
			URL:      entry.URL,
			Category: category,
			Title:    entry.Title,
		})
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return result, err
			}
			logger.Warn("opml feed import failed", "module", "service", "action", "import", "resource", "opml", "result", "failed", "user_id", userID, "url", entry.URL, "error", err)
			result.Failed = append(result.Failed, fmt.Sprintf("%s (%s): %v", entry.Title, entry.URL, err))
			continue
		}
		if !subscribed {
			result.Skipped++
			continue
		}
		result.Imported++
		if feed.LastFetched == nil {
			refreshIDs = append(refreshIDs, feed.ID)
		}
	}

	if len(refreshIDs) > 0 && s.refresh != nil {
		go func() {
			if err := s.refresh.RefreshFeeds(context.Background(), refreshIDs); err != nil {
				logger.Warn("imported feeds refresh failed", "module", "service", "action", "refresh", "resource", "feed", "result", "failed", "error", err)
			}
		}()
	}

	report(ImportProgress{Total: total, Current: total, Status: "done"})
	logger.Info("opml import completed", "module", "service", "action", "import", "resource", "opml", "result", "ok", "user_id", userID, "imported", result.Imported, "skipped", result.Skipped, "failed", len(result.Failed))
	return result, nil
}

func (s *opmlService) Export(ctx context.Context, userID int64) ([]byte, error) {
	feeds, err := s.feeds.ListForUser(ctx, userID, nil)
	if err != nil {
		logger.Error("opml export list feeds failed", "module", "service", "action", "export", "resource", "opml", "result", "failed", "error", err)
		return nil, fmt.Errorf("list feeds: %w", err)
	}

	date := time.Now().UTC().Format(time.RFC1123Z)
	doc := opml.Document{
		Version: "2.0",
		Head: opml.Head{
			Title:        config.AppName + " subscriptions",
			DateCreated:  date,
			DateModified: date,
		},
		Body: opml.Body{Outlines: buildExportOutlines(feeds)},
	}

	payload, err := opml.Encode(doc)
	if err != nil {
		logger.Error("opml export encode failed", "module", "service", "action", "export", "resource", "opml", "result", "failed", "error", err)
		return nil, err
	}
	logger.Info("opml export completed", "module", "service", "action", "export", "resource", "opml", "result", "ok", "user_id", userID, "feeds", len(feeds))
	return payload, nil
}

// buildExportOutlines puts categorized feeds in one folder per category,
// folders first, each level sorted case-insensitively.
func buildExportOutlines(feeds []model.UserFeed) []opml.Outline {
	byCategory := make(map[string][]model.UserFeed)
	var names []string
	var loose []model.UserFeed
	for _, feed := range feeds {
		if feed.Category == "" {
			loose = append(loose, feed)
			continue
		}
		key := strings.ToLower(feed.Category)
		if _, ok := byCategory[key]; !ok {
			names = append(names, feed.Category)
		}
		byCategory[key] = append(byCategory[key], feed)
	}

	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})

	var outlines []opml.Outline
	for _, name := range names {
		folder := opml.Outline{Text: name, Title: name}
		for _, feed := range sortFeedsByTitle(byCategory[strings.ToLower(name)]) {
			folder.Outlines = append(folder.Outlines, buildFeedOutline(feed))
		}
		outlines = append(outlines, folder)
	}
	for _, feed := range sortFeedsByTitle(loose) {
		outlines = append(outlines, buildFeedOutline(feed))
	}
	return outlines
}

func sortFeedsByTitle(feeds []model.UserFeed) []model.UserFeed {
	sort.SliceStable(feeds, func(i, j int) bool {
		return strings.ToLower(feeds[i].DisplayTitle()) < strings.ToLower(feeds[j].DisplayTitle())
	})
	return feeds
}

func buildFeedOutline(feed model.UserFeed) opml.Outline {
	outline := opml.Outline{
		Text:   feed.DisplayTitle(),
		Title:  feed.DisplayTitle(),
		Type:   "rss",
		XMLURL: feed.URL,
	}
	if feed.SiteURL != nil {
		outline.HTMLURL = *feed.SiteURL
	}
	return outline
}
