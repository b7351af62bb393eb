package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"readr/internal/model"
	"readr/internal/snowflake"
)

type ItemListFilter struct {
	UserID      int64
	FeedID      *int64
	Category    *string
	UnreadOnly  bool
	StarredOnly bool
	Search      string
	Oldest      bool
	Limit       int
	Offset      int
}

type UnreadCount struct {
	FeedID int64
	Count  int
}

type ItemStats struct {
	Total   int
	Unread  int
	Starred int
}

type ItemRepository interface {
	GetByID(ctx context.Context, id int64) (model.FeedItem, error)
	// GetForUser returns sql.ErrNoRows unless the user subscribes to the item's feed.
	GetForUser(ctx context.Context, userID, id int64) (model.FeedItem, error)
	List(ctx context.Context, filter ItemListFilter) ([]model.FeedItem, error)
	CreateOrUpdate(ctx context.Context, item model.FeedItem) error
	ExistsByLink(ctx context.Context, feedID int64, link string) (bool, error)
	UpdateReadableContent(ctx context.Context, id int64, content string) error
	SetRead(ctx context.Context, userID, itemID int64, read bool) error
	SetStarred(ctx context.Context, userID, itemID int64, starred bool) error
	MarkAllRead(ctx context.Context, userID int64, feedID *int64, category *string) (int64, error)
	UnreadCounts(ctx context.Context, userID int64) ([]UnreadCount, error)
	Stats(ctx context.Context, userID int64) (ItemStats, error)
	QueryForUser(ctx context.Context, userID int64, q RecordQuery) ([]model.FeedItem, int, error)
}

var ItemRecordColumns = map[string]string{
	"id":             "i.id",
	"feed_id":        "i.feed_id",
	"guid":           "i.guid",
	"title":          "i.title",
	"link":           "i.link",
	"summary":        "i.summary",
	"description":    "i.summary",
	"content":        "i.content",
	"author":         "i.author",
	"image_url":      "i.image_url",
	"published":      "i.published_at",
	"published_date": "i.published_at",
	"created":        "i.created_at",
	"updated":        "i.updated_at",
	"user_id":        "s.user_id",
	"is_read":        isReadExpr,
	"is_starred":     isStarredExpr,
	"read_by":        "(SELECT group_concat(r2.user_id) FROM item_reads r2 WHERE r2.item_id = i.id AND r2.user_id = s.user_id)",
}

const (
	isReadExpr    = `EXISTS(SELECT 1 FROM item_reads r WHERE r.item_id = i.id AND r.user_id = s.user_id)`
	isStarredExpr = `EXISTS(SELECT 1 FROM favorites fv WHERE fv.item_id = i.id AND fv.user_id = s.user_id)`
	itemOrderNew  = `COALESCE(i.published_at, i.created_at) DESC, i.id DESC`
	itemOrderOld  = `COALESCE(i.published_at, i.created_at) ASC, i.id ASC`
)

const itemColumns = `i.id, i.feed_id, i.guid, i.title, i.link, i.summary, i.content, i.readable_content, i.image_url, i.author, i.published_at, i.created_at, i.updated_at`

const userItemSelect = `SELECT ` + itemColumns + `, ` + isReadExpr + `, ` + isStarredExpr + `, COALESCE(s.title, f.title), f.url, s.user_id
FROM feed_items i
JOIN subscriptions s ON s.feed_id = i.feed_id
JOIN feeds f ON f.id = i.feed_id
WHERE s.user_id = ?`

type itemRepository struct {
	db dbtx
}

func NewItemRepository(db dbtx) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) GetByID(ctx context.Context, id int64) (model.FeedItem, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM feed_items i WHERE i.id = ?`, id)
	return scanItem(row)
}

func (r *itemRepository) GetForUser(ctx context.Context, userID, id int64) (model.FeedItem, error) {
	row := r.db.QueryRowContext(ctx, userItemSelect+` AND i.id = ?`, userID, id)
	return scanUserItem(row)
}

func (r *itemRepository) List(ctx context.Context, filter ItemListFilter) ([]model.FeedItem, error) {
	query := userItemSelect
	args := []any{filter.UserID}

	var conditions []string
	if filter.FeedID != nil {
		conditions = append(conditions, "i.feed_id = ?")
		args = append(args, *filter.FeedID)
	}
	if filter.Category != nil {
		conditions = append(conditions, "s.category = ? COLLATE NOCASE")
		args = append(args, *filter.Category)
	}
	if filter.UnreadOnly {
		conditions = append(conditions, "NOT "+isReadExpr)
	}
	if filter.StarredOnly {
		conditions = append(conditions, isStarredExpr)
	}
	if filter.Search != "" {
		// fold is registered on the driver by internal/db.
		query := strings.ToLower(filter.Search)
		conditions = append(conditions, `(instr(fold(i.title), ?) > 0 OR instr(fold(i.summary), ?) > 0 OR instr(fold(i.author), ?) > 0)`)
		args = append(args, query, query, query)
	}
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	if filter.Oldest {
		query += " ORDER BY " + itemOrderOld
	} else {
		query += " ORDER BY " + itemOrderNew
	}
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return collectUserItems(rows)
}

func (r *itemRepository) CreateOrUpdate(ctx context.Context, item model.FeedItem) error {
	id := snowflake.NextID()
	now := formatTime(time.Now())

	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO feed_items (id, feed_id, guid, title, link, summary, content, image_url, author, published_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(feed_id, link) DO UPDATE SET
		   guid = excluded.guid,
		   title = excluded.title,
		   summary = excluded.summary,
		   content = excluded.content,
		   image_url = excluded.image_url,
		   author = excluded.author,
		   published_at = COALESCE(excluded.published_at, feed_items.published_at),
		   updated_at = excluded.updated_at`,
		id,
		item.FeedID,
		nullableString(item.GUID),
		item.Title,
		item.Link,
		nullableString(item.Summary),
		nullableString(item.Content),
		nullableString(item.ImageURL),
		nullableString(item.Author),
		nullableTime(item.PublishedAt),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("save item: %w", err)
	}
	return nil
}

func (r *itemRepository) ExistsByLink(ctx context.Context, feedID int64, link string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM feed_items WHERE feed_id = ? AND link = ?`,
		feedID,
		link,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *itemRepository) UpdateReadableContent(ctx context.Context, id int64, content string) error {
	_, err := r.db.ExecContext(
		ctx,
		`UPDATE feed_items SET readable_content = ?, updated_at = ? WHERE id = ?`,
		content,
		formatTime(time.Now()),
		id,
	)
	return err
}

func (r *itemRepository) SetRead(ctx context.Context, userID, itemID int64, read bool) error {
	var err error
	if read {
		_, err = r.db.ExecContext(
			ctx,
			`INSERT INTO item_reads (user_id, item_id, read_at) VALUES (?, ?, ?) ON CONFLICT(user_id, item_id) DO NOTHING`,
			userID,
			itemID,
			formatTime(time.Now()),
		)
	} else {
		_, err = r.db.ExecContext(ctx, `DELETE FROM item_reads WHERE user_id = ? AND item_id = ?`, userID, itemID)
	}
	if err != nil {
		return fmt.Errorf("set read: %w", err)
	}
	return nil
}

func (r *itemRepository) SetStarred(ctx context.Context, userID, itemID int64, starred bool) error {
	var err error
	if starred {
		_, err = r.db.ExecContext(
			ctx,
			`INSERT INTO favorites (id, user_id, item_id, created_at) VALUES (?, ?, ?, ?) ON CONFLICT(user_id, item_id) DO NOTHING`,
			snowflake.NextID(),
			userID,
			itemID,
			formatTime(time.Now()),
		)
	} else {
		_, err = r.db.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = ? AND item_id = ?`, userID, itemID)
	}
	if err != nil {
		return fmt.Errorf("set starred: %w", err)
	}
	return nil
}

func (r *itemRepository) MarkAllRead(ctx context.Context, userID int64, feedID *int64, category *string) (int64, error) {
	query := `INSERT INTO item_reads (user_id, item_id, read_at)
		SELECT s.user_id, i.id, ?
		FROM feed_items i
		JOIN subscriptions s ON s.feed_id = i.feed_id
		WHERE s.user_id = ?`
	args := []any{formatTime(time.Now()), userID}
	if feedID != nil {
		query += ` AND i.feed_id = ?`
		args = append(args, *feedID)
	}
	if category != nil {
		query += ` AND s.category = ? COLLATE NOCASE`
		args = append(args, *category)
	}
	query += ` ON CONFLICT(user_id, item_id) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	return result.RowsAffected()
}

func (r *itemRepository) UnreadCounts(ctx context.Context, userID int64) ([]UnreadCount, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT s.feed_id, COUNT(i.id) FROM subscriptions s
		 LEFT JOIN feed_items i ON i.feed_id = s.feed_id AND NOT `+isReadExpr+`
		 WHERE s.user_id = ?
		 GROUP BY s.feed_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("unread counts: %w", err)
	}
	defer rows.Close()

	var counts []UnreadCount
	for rows.Next() {
		var uc UnreadCount
		if err := rows.Scan(&uc.FeedID, &uc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, uc)
	}
	return counts, rows.Err()
}

func (r *itemRepository) Stats(ctx context.Context, userID int64) (ItemStats, error) {
	var stats ItemStats
	err := r.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN `+isReadExpr+` THEN 0 ELSE 1 END), 0),
		        COALESCE(SUM(CASE WHEN `+isStarredExpr+` THEN 1 ELSE 0 END), 0)
		 FROM feed_items i
		 JOIN subscriptions s ON s.feed_id = i.feed_id
		 WHERE s.user_id = ?`,
		userID,
	).Scan(&stats.Total, &stats.Unread, &stats.Starred)
	if err != nil {
		return ItemStats{}, fmt.Errorf("item stats: %w", err)
	}
	return stats, nil
}

func (r *itemRepository) QueryForUser(ctx context.Context, userID int64, q RecordQuery) ([]model.FeedItem, int, error) {
	total, err := countRecordQuery(ctx, r.db, userItemSelect, []any{userID}, q)
	if err != nil {
		return nil, 0, fmt.Errorf("count items: %w", err)
	}
	query, args := applyRecordQuery(userItemSelect, []any{userID}, q, "i.id DESC")
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query items: %w", err)
	}
	items, err := collectUserItems(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func collectUserItems(rows *sql.Rows) ([]model.FeedItem, error) {
	defer rows.Close()
	var items []model.FeedItem
	for rows.Next() {
		item, err := scanUserItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

type itemScan struct {
	item            model.FeedItem
	guid            sql.NullString
	summary         sql.NullString
	content         sql.NullString
	readableContent sql.NullString
	imageURL        sql.NullString
	author          sql.NullString
	publishedAt     sql.NullString
	createdAt       string
	updatedAt       string
}

func (s *itemScan) dest() []any {
	return []any{
		&s.item.ID,
		&s.item.FeedID,
		&s.guid,
		&s.item.Title,
		&s.item.Link,
		&s.summary,
		&s.content,
		&s.readableContent,
		&s.imageURL,
		&s.author,
		&s.publishedAt,
		&s.createdAt,
		&s.updatedAt,
	}
}

func (s *itemScan) result() model.FeedItem {
	item := s.item
	item.GUID = stringPtr(s.guid)
	item.Summary = stringPtr(s.summary)
	item.Content = stringPtr(s.content)
	item.ReadableContent = stringPtr(s.readableContent)
	item.ImageURL = stringPtr(s.imageURL)
	item.Author = stringPtr(s.author)
	item.PublishedAt = parseTimePtr(s.publishedAt)
	item.CreatedAt, _ = parseTime(s.createdAt)
	item.UpdatedAt, _ = parseTime(s.updatedAt)
	return item
}

func scanItem(row scanner) (model.FeedItem, error) {
	var s itemScan
	if err := row.Scan(s.dest()...); err != nil {
		return model.FeedItem{}, err
	}
	return s.result(), nil
}

func scanUserItem(row scanner) (model.FeedItem, error) {
	var s itemScan
	var read, starred int
	var feedTitle, feedURL string
	var userID int64
	dest := append(s.dest(), &read, &starred, &feedTitle, &feedURL, &userID)
	if err := row.Scan(dest...); err != nil {
		return model.FeedItem{}, err
	}
	item := s.result()
	item.Read = read == 1
	item.Starred = starred == 1
	item.FeedTitle = feedTitle
	item.FeedURL = feedURL
	if item.Read {
		item.ReadBy = []int64{userID}
	}
	return item, nil
}

