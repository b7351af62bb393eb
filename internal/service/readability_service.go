package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "codeberg.org/readeck/go-readability/v2"
	"github.com/microcosm-cc/bluemonday"

	"readr/internal/config"
	"readr/internal/logger"
	"readr/internal/network"
	"readr/internal/repository"
)

const (
	readabilityTimeout  = 30 * time.Second
	maxArticleBodyBytes = 5 << 20
)

type ReadabilityService interface {
	// FetchReadableContent extracts the article body of an item's link and
	// caches it on the item.
	FetchReadableContent(ctx context.Context, userID, itemID int64) (string, error)
}

type readabilityService struct {
	items         repository.ItemRepository
	clientFactory *network.ClientFactory
	output        *bluemonday.Policy
}

func NewReadabilityService(items repository.ItemRepository, clientFactory *network.ClientFactory) ReadabilityService {
	output := bluemonday.UGCPolicy()
	output.AllowElements("figure", "figcaption", "picture", "source")
	output.AddTargetBlankToFullyQualifiedLinks(true)

	return &readabilityService{
		items:         items,
		clientFactory: clientFactory,
		output:        output,
	}
}

func (s *readabilityService) FetchReadableContent(ctx context.Context, userID, itemID int64) (string, error) {
	item, err := s.items.GetForUser(ctx, userID, itemID)
	if err != nil {
		return "", mapNoRows(err, "get item")
	}
	if item.ReadableContent != nil && *item.ReadableContent != "" {
		return *item.ReadableContent, nil
	}

	pageURL, err := url.Parse(item.Link)
	if err != nil || pageURL.Host == "" || (pageURL.Scheme != "http" && pageURL.Scheme != "https") {
		return "", fmt.Errorf("%w: item has no fetchable link", ErrInvalid)
	}

	body, err := s.fetchPage(ctx, pageURL)
	if err != nil {
		return "", err
	}
	content, err := s.extract(body, pageURL)
	if err != nil {
		return "", err
	}

	if err := s.items.UpdateReadableContent(ctx, itemID, content); err != nil {
		return "", err
	}
	logger.Info("readable content cached", "module", "service", "action", "fetch", "resource", "item", "result", "ok", "item_id", itemID, "bytes", len(content))
	return content, nil
}

func (s *readabilityService) fetchPage(ctx context.Context, pageURL *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	req.Header.Set("User-Agent", config.BrowserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	resp, err := s.clientFactory.NewHTTPClient(ctx, readabilityTimeout).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeedFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", ErrFeedFetch, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		mediaType, _, _ := mime.ParseMediaType(ct)
		if mediaType != "text/html" && mediaType != "application/xhtml+xml" {
			return nil, fmt.Errorf("%w: link is not an HTML page", ErrInvalid)
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxArticleBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read article: %w", err)
	}
	return body, nil
}

// extract runs the readability parser and sanitizes what it renders.
func (s *readabilityService) extract(body []byte, pageURL *url.URL) (string, error) {
	parser := readability.NewParser()
	article, err := parser.Parse(bytes.NewReader(body), pageURL)
	if err != nil {
		return "", fmt.Errorf("parse article: %w", err)
	}

	var buf bytes.Buffer
	if err := article.RenderHTML(&buf); err != nil {
		return "", fmt.Errorf("render article: %w", err)
	}

	content := strings.TrimSpace(s.output.Sanitize(buf.String()))
	if content == "" {
		return "", fmt.Errorf("%w: no readable content found", ErrInvalid)
	}
	return content, nil
}
