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

type SubscriptionRepository interface {
	Create(ctx context.Context, sub model.Subscription) (model.Subscription, error)
	GetByID(ctx context.Context, id int64) (model.Subscription, error)
	Find(ctx context.Context, userID, feedID int64) (*model.Subscription, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Subscription, error)
	Update(ctx context.Context, sub model.Subscription) (model.Subscription, error)
	Delete(ctx context.Context, id int64) error
	CountByFeed(ctx context.Context, feedID int64) (int, error)
	// RenameCategory relabels every subscription of userID tagged oldName.
	// An empty newName clears the label.
	RenameCategory(ctx context.Context, userID int64, oldName, newName string) error
	// QueryForUser filters over the columns listed in SubscriptionRecordColumns.
	QueryForUser(ctx context.Context, userID int64, q RecordQuery) ([]model.Subscription, int, error)
}

var SubscriptionRecordColumns = map[string]string{
	"id":            "s.id",
	"user_id":       "s.user_id",
	"feed_id":       "s.feed_id",
	"category":      "s.category",
	"enabled":       "s.enabled",
	"subscribed_at": "s.subscribed_at",
	"created":       "s.subscribed_at",
	"updated":       "s.updated_at",
}

type subscriptionRepository struct {
	db dbtx
}

func NewSubscriptionRepository(db dbtx) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

const subscriptionSelect = `SELECT s.id, s.user_id, s.feed_id, s.category, s.title, s.enabled, s.subscribed_at, s.updated_at FROM subscriptions s`

func (r *subscriptionRepository) Create(ctx context.Context, sub model.Subscription) (model.Subscription, error) {
	sub.ID = snowflake.NextID()
	now := time.Now().UTC()
	sub.Enabled = true
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO subscriptions (id, user_id, feed_id, category, title, enabled, subscribed_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, 1, ?, ?)`,
		sub.ID,
		sub.UserID,
		sub.FeedID,
		nullableLabel(sub.Category),
		nullableString(sub.Title),
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return model.Subscription{}, fmt.Errorf("create subscription: %w", err)
	}
	sub.SubscribedAt = now
	sub.UpdatedAt = now
	return sub, nil
}

func (r *subscriptionRepository) GetByID(ctx context.Context, id int64) (model.Subscription, error) {
	row := r.db.QueryRowContext(ctx, subscriptionSelect+` WHERE s.id = ?`, id)
	return scanSubscription(row)
}

func (r *subscriptionRepository) Find(ctx context.Context, userID, feedID int64) (*model.Subscription, error) {
	row := r.db.QueryRowContext(ctx, subscriptionSelect+` WHERE s.user_id = ? AND s.feed_id = ?`, userID, feedID)
	sub, err := scanSubscription(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find subscription: %w", err)
	}
	return &sub, nil
}

func (r *subscriptionRepository) ListByUser(ctx context.Context, userID int64) ([]model.Subscription, error) {
	rows, err := r.db.QueryContext(ctx, subscriptionSelect+` WHERE s.user_id = ? ORDER BY s.subscribed_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return collectSubscriptions(rows)
}

func (r *subscriptionRepository) Update(ctx context.Context, sub model.Subscription) (model.Subscription, error) {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(
		ctx,
		`UPDATE subscriptions SET category = ?, title = ?, enabled = ?, updated_at = ? WHERE id = ?`,
		nullableLabel(sub.Category),
		nullableString(sub.Title),
		boolToInt(sub.Enabled),
		formatTime(now),
		sub.ID,
	)
	if err != nil {
		return model.Subscription{}, fmt.Errorf("update subscription: %w", err)
	}
	sub.UpdatedAt = now
	return sub, nil
}

func (r *subscriptionRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	return nil
}

func (r *subscriptionRepository) CountByFeed(ctx context.Context, feedID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM subscriptions WHERE feed_id = ?`, feedID).Scan(&count)
	return count, err
}

func (r *subscriptionRepository) RenameCategory(ctx context.Context, userID int64, oldName, newName string) error {
	_, err := r.db.ExecContext(
		ctx,
		`UPDATE subscriptions SET category = ?, updated_at = ? WHERE user_id = ? AND category = ? COLLATE NOCASE`,
		nullableLabel(newName),
		formatTime(time.Now()),
		userID,
		oldName,
	)
	if err != nil {
		return fmt.Errorf("rename subscription category: %w", err)
	}
	return nil
}

func (r *subscriptionRepository) QueryForUser(ctx context.Context, userID int64, q RecordQuery) ([]model.Subscription, int, error) {
	base := subscriptionSelect + ` WHERE s.user_id = ?`
	total, err := countRecordQuery(ctx, r.db, base, []any{userID}, q)
	if err != nil {
		return nil, 0, fmt.Errorf("count subscriptions: %w", err)
	}
	query, args := applyRecordQuery(base, []any{userID}, q, "s.id")
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query subscriptions: %w", err)
	}
	subs, err := collectSubscriptions(rows)
	if err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

func collectSubscriptions(rows *sql.Rows) ([]model.Subscription, error) {
	defer rows.Close()
	var subs []model.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriptions: %w", err)
	}
	return subs, nil
}

func scanSubscription(row scanner) (model.Subscription, error) {
	var sub model.Subscription
	var category, title sql.NullString
	var enabled int
	var subscribedAt, updatedAt string
	if err := row.Scan(&sub.ID, &sub.UserID, &sub.FeedID, &category, &title, &enabled, &subscribedAt, &updatedAt); err != nil {
		return model.Subscription{}, err
	}
	sub.Category = category.String
	sub.Title = stringPtr(title)
	sub.Enabled = enabled == 1
	sub.SubscribedAt, _ = parseTime(subscribedAt)
	sub.UpdatedAt, _ = parseTime(updatedAt)
	return sub, nil
}

func nullableLabel(label string) any {
	if label == "" {
		return nil
	}
	return label
}
