package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"readr/internal/model"
	"readr/internal/snowflake"
)

// FetchResult records the outcome of one refresh attempt.
type FetchResult struct {
	Status       string
	ErrorMessage *string
	ETag         *string
	LastModified *string
	FetchedAt    time.Time
}

type FeedRepository interface {
	Create(ctx context.Context, feed model.Feed) (model.Feed, error)
	GetByID(ctx context.Context, id int64) (model.Feed, error)
	FindByURL(ctx context.Context, url string) (*model.Feed, error)
	FindDefault(ctx context.Context) (*model.Feed, error)
	List(ctx context.Context) ([]model.Feed, error)
	ListByIDs(ctx context.Context, ids []int64) ([]model.Feed, error)
	UpdateMetadata(ctx context.Context, feed model.Feed) (model.Feed, error)
	UpdateFetchResult(ctx context.Context, id int64, result FetchResult) error
	Delete(ctx context.Context, id int64) error
	// ListForUser returns subscribed feeds with per-user unread counts,
	// optionally restricted to one category label.
	ListForUser(ctx context.Context, userID int64, category *string) ([]model.UserFeed, error)
	GetForUser(ctx context.Context, userID, feedID int64) (model.UserFeed, error)
	// QueryForUser filters over the columns listed in FeedRecordColumns.
	QueryForUser(ctx context.Context, userID int64, q RecordQuery) ([]model.UserFeed, int, error)
}

// FeedRecordColumns are the column expressions QueryForUser accepts.
var FeedRecordColumns = map[string]string{
	"id":            "f.id",
	"url":           "f.url",
	"title":         "COALESCE(s.title, f.title)",
	"description":   "f.description",
	"favicon":       "f.favicon",
	"category":      "s.category",
	"fetch_status":  "f.fetch_status",
	"error_message": "f.error_message",
	"last_fetched":  "f.last_fetched",
	"is_default":    "f.is_default",
	"user_id":       "s.user_id",
	"created":       "f.created_at",
	"updated":       "f.updated_at",
}

type feedRepository struct {
	db dbtx
}

func NewFeedRepository(db dbtx) FeedRepository {
	return &feedRepository{db: db}
}

const feedColumns = `f.id, f.url, f.title, f.site_url, f.description, f.favicon, f.is_default, f.fetch_status, f.error_message, f.last_fetched, f.etag, f.last_modified, f.created_at, f.updated_at`

const userFeedSelect = `SELECT ` + feedColumns + `, s.id, s.category, s.title, s.subscribed_at,
  (SELECT COUNT(*) FROM feed_items i
    WHERE i.feed_id = f.id
      AND NOT EXISTS (SELECT 1 FROM item_reads r WHERE r.item_id = i.id AND r.user_id = s.user_id)) AS unread_count
FROM subscriptions s
JOIN feeds f ON f.id = s.feed_id
WHERE s.user_id = ?`

func (r *feedRepository) Create(ctx context.Context, feed model.Feed) (model.Feed, error) {
	feed.ID = snowflake.NextID()
	now := time.Now().UTC()
	if feed.FetchStatus == "" {
		feed.FetchStatus = model.FetchStatusPending
	}
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO feeds (id, url, title, site_url, description, favicon, is_default, fetch_status, error_message, last_fetched, etag, last_modified, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		feed.ID,
		feed.URL,
		feed.Title,
		nullableString(feed.SiteURL),
		nullableString(feed.Description),
		nullableString(feed.Favicon),
		boolToInt(feed.IsDefault),
		feed.FetchStatus,
		nullableString(feed.ErrorMessage),
		nullableTime(feed.LastFetched),
		nullableString(feed.ETag),
		nullableString(feed.LastModified),
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return model.Feed{}, fmt.Errorf("create feed: %w", err)
	}
	feed.CreatedAt = now
	feed.UpdatedAt = now
	return feed, nil
}

func (r *feedRepository) GetByID(ctx context.Context, id int64) (model.Feed, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+feedColumns+` FROM feeds f WHERE f.id = ?`, id)
	return scanFeed(row)
}

func (r *feedRepository) FindByURL(ctx context.Context, url string) (*model.Feed, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+feedColumns+` FROM feeds f WHERE f.url = ?`, url)
	feed, err := scanFeed(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find feed: %w", err)
	}
	return &feed, nil
}

func (r *feedRepository) FindDefault(ctx context.Context) (*model.Feed, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+feedColumns+` FROM feeds f WHERE f.is_default = 1 LIMIT 1`)
	feed, err := scanFeed(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find default feed: %w", err)
	}
	return &feed, nil
}

func (r *feedRepository) List(ctx context.Context) ([]model.Feed, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+feedColumns+` FROM feeds f ORDER BY f.title`)
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	return collectFeeds(rows)
}

func (r *feedRepository) ListByIDs(ctx context.Context, ids []int64) ([]model.Feed, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+feedColumns+` FROM feeds f WHERE f.id IN (`+placeholders(len(ids))+`) ORDER BY f.title`, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("list feeds by id: %w", err)
	}
	return collectFeeds(rows)
}

func (r *feedRepository) UpdateMetadata(ctx context.Context, feed model.Feed) (model.Feed, error) {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(
		ctx,
		`UPDATE feeds SET title = ?, site_url = ?, description = ?, favicon = ?, is_default = ?, updated_at = ? WHERE id = ?`,
		feed.Title,
		nullableString(feed.SiteURL),
		nullableString(feed.Description),
		nullableString(feed.Favicon),
		boolToInt(feed.IsDefault),
		formatTime(now),
		feed.ID,
	)
	if err != nil {
		return model.Feed{}, fmt.Errorf("update feed: %w", err)
	}
	feed.UpdatedAt = now
	return feed, nil
}

// UpdateFetchResult keeps the stored validators when the result carries none.
func (r *feedRepository) UpdateFetchResult(ctx context.Context, id int64, result FetchResult) error {
	_, err := r.db.ExecContext(
		ctx,
		`UPDATE feeds SET fetch_status = ?, error_message = ?, last_fetched = ?,
		   etag = COALESCE(?, etag), last_modified = COALESCE(?, last_modified), updated_at = ?
		 WHERE id = ?`,
		result.Status,
		nullableString(result.ErrorMessage),
		formatTime(result.FetchedAt),
		nullableString(result.ETag),
		nullableString(result.LastModified),
		formatTime(time.Now()),
		id,
	)
	if err != nil {
		return fmt.Errorf("update fetch result: %w", err)
	}
	return nil
}

func (r *feedRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM feeds WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete feed: %w", err)
	}
	return nil
}

func (r *feedRepository) ListForUser(ctx context.Context, userID int64, category *string) ([]model.UserFeed, error) {
	query := userFeedSelect
	args := []any{userID}
	if category != nil {
		query += ` AND s.category = ? COLLATE NOCASE`
		args = append(args, *category)
	}
	query += ` ORDER BY COALESCE(s.title, f.title) COLLATE NOCASE`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list user feeds: %w", err)
	}
	return collectUserFeeds(rows)
}

func (r *feedRepository) GetForUser(ctx context.Context, userID, feedID int64) (model.UserFeed, error) {
	row := r.db.QueryRowContext(ctx, userFeedSelect+` AND f.id = ?`, userID, feedID)
	return scanUserFeed(row)
}

func (r *feedRepository) QueryForUser(ctx context.Context, userID int64, q RecordQuery) ([]model.UserFeed, int, error) {
	total, err := countRecordQuery(ctx, r.db, userFeedSelect, []any{userID}, q)
	if err != nil {
		return nil, 0, fmt.Errorf("count user feeds: %w", err)
	}
	query, args := applyRecordQuery(userFeedSelect, []any{userID}, q, "f.id")
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query user feeds: %w", err)
	}
	feeds, err := collectUserFeeds(rows)
	if err != nil {
		return nil, 0, err
	}
	return feeds, total, nil
}

func collectFeeds(rows *sql.Rows) ([]model.Feed, error) {
	defer rows.Close()
	var feeds []model.Feed
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, err
		}
		feeds = append(feeds, feed)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feeds: %w", err)
	}
	return feeds, nil
}

func collectUserFeeds(rows *sql.Rows) ([]model.UserFeed, error) {
	defer rows.Close()
	var feeds []model.UserFeed
	for rows.Next() {
		feed, err := scanUserFeed(rows)
		if err != nil {
			return nil, err
		}
		feeds = append(feeds, feed)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user feeds: %w", err)
	}
	return feeds, nil
}

type feedScan struct {
	feed         model.Feed
	siteURL      sql.NullString
	description  sql.NullString
	favicon      sql.NullString
	isDefault    int
	errorMessage sql.NullString
	lastFetched  sql.NullString
	etag         sql.NullString
	lastModified sql.NullString
	createdAt    string
	updatedAt    string
}

func (s *feedScan) dest() []any {
	return []any{
		&s.feed.ID,
		&s.feed.URL,
		&s.feed.Title,
		&s.siteURL,
		&s.description,
		&s.favicon,
		&s.isDefault,
		&s.feed.FetchStatus,
		&s.errorMessage,
		&s.lastFetched,
		&s.etag,
		&s.lastModified,
		&s.createdAt,
		&s.updatedAt,
	}
}

func (s *feedScan) result() (model.Feed, error) {
	feed := s.feed
	feed.SiteURL = stringPtr(s.siteURL)
	feed.Description = stringPtr(s.description)
	feed.Favicon = stringPtr(s.favicon)
	feed.IsDefault = s.isDefault == 1
	feed.ErrorMessage = stringPtr(s.errorMessage)
	feed.LastFetched = parseTimePtr(s.lastFetched)
	feed.ETag = stringPtr(s.etag)
	feed.LastModified = stringPtr(s.lastModified)
	var err error
	feed.CreatedAt, err = parseTime(s.createdAt)
	if err != nil {
		return model.Feed{}, fmt.Errorf("parse feed created_at: %w", err)
	}
	feed.UpdatedAt, err = parseTime(s.updatedAt)
	if err != nil {
		return model.Feed{}, fmt.Errorf("parse feed updated_at: %w", err)
	}
	return feed, nil
}

func scanFeed(row scanner) (model.Feed, error) {
	var s feedScan
	if err := row.Scan(s.dest()...); err != nil {
		return model.Feed{}, err
	}
	return s.result()
}

func scanUserFeed(row scanner) (model.UserFeed, error) {
	var s feedScan
	var uf model.UserFeed
	var category sql.NullString
	var customTitle sql.NullString
	var subscribedAt string
	dest := append(s.dest(), &uf.SubscriptionID, &category, &customTitle, &subscribedAt, &uf.UnreadCount)
	if err := row.Scan(dest...); err != nil {
		return model.UserFeed{}, err
	}
	feed, err := s.result()
	if err != nil {
		return model.UserFeed{}, err
	}
	uf.Feed = feed
	uf.Category = category.String
	uf.CustomTitle = stringPtr(customTitle)
	uf.SubscribedAt, _ = parseTime(subscribedAt)
	return uf, nil
}
