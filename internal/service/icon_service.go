package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"readr/internal/logger"
	"readr/internal/model"
	"readr/internal/network"
	"readr/internal/repository"
)

const (
	iconTimeout        = 15 * time.Second
	maxConcurrentIcons = 4
	maxIconPageBytes   = 2 << 20
)

type IconService interface {
	// DiscoverFavicon returns an absolute icon URL for the site: the first
	// <link rel="icon"> of the home page, or /favicon.ico.
	DiscoverFavicon(ctx context.Context, siteURL string) (string, error)
	// BackfillIcons discovers icons for all feeds without one.
	BackfillIcons(ctx context.Context) error
}

type iconService struct {
	feeds         repository.FeedRepository
	clientFactory *network.ClientFactory
}

func NewIconService(feeds repository.FeedRepository, clientFactory *network.ClientFactory) IconService {
	return &iconService{feeds: feeds, clientFactory: clientFactory}
}

func (s *iconService) DiscoverFavicon(ctx context.Context, siteURL string) (string, error) {
	base, err := url.Parse(strings.TrimSpace(siteURL))
	if err != nil || base.Host == "" {
		return "", ErrInvalid
	}
	if base.Path == "" {
		base.Path = "/"
	}

	if icon, err := s.linkedIcon(ctx, base); err == nil && icon != "" {
		return icon, nil
	} else if err != nil {
		logger.Debug("icon page lookup failed", "module", "service", "action", "fetch", "resource", "icon", "result", "failed", "site", siteURL, "error", err)
	}

	fallback := &url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/favicon.ico"}
	return fallback.String(), nil
}

// linkedIcon scans the page head for icon links.
func (s *iconService) linkedIcon(ctx context.Context, page *url.URL) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, page.String(), nil)
	if err != nil {
		return "", err
	}
	resp, err := s.clientFactory.NewHTTPClient(ctx, iconTimeout).Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxIconPageBytes))
	if err != nil {
		return "", err
	}

	// Final URL after redirects resolves relative hrefs.
	base := page
	if resp.Request != nil && resp.Request.URL != nil {
		base = resp.Request.URL
	}

	var found string
	doc.Find("link[rel]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		rel := strings.ToLower(sel.AttrOr("rel", ""))
		if !isIconRel(rel) {
			return true
		}
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if href == "" {
			return true
		}
		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		found = base.ResolveReference(ref).String()
		return false
	})
	return found, nil
}

func isIconRel(rel string) bool {
	for _, token := range strings.Fields(rel) {
		switch token {
		case "icon", "apple-touch-icon":
			return true
		}
	}
	return false
}

func (s *iconService) BackfillIcons(ctx context.Context) error {
	feeds, err := s.feeds.List(ctx)
	if err != nil {
		return fmt.Errorf("list feeds: %w", err)
	}

	var missing []model.Feed
	for _, feed := range feeds {
		if feed.Favicon == nil || *feed.Favicon == "" {
			missing = append(missing, feed)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	logger.Info("backfilling icons", "module", "service", "action", "update", "resource", "icon", "result", "ok", "count", len(missing))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentIcons)
	for _, feed := range missing {
		g.Go(func() error {
			siteURL := feed.URL
			if feed.SiteURL != nil && *feed.SiteURL != "" {
				siteURL = *feed.SiteURL
			}
			icon, err := s.DiscoverFavicon(gctx, siteURL)
			if err != nil || icon == "" {
				return nil
			}
			feed.Favicon = &icon
			if _, err := s.feeds.UpdateMetadata(gctx, feed); err != nil {
				logger.Warn("save icon failed", "module", "service", "action", "update", "resource", "icon", "result", "failed", "feed_id", feed.ID, "error", err)
			}
			return nil
		})
	}
	return g.Wait()
}
