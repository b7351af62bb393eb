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

type CategoryRepository interface {
	Create(ctx context.Context, userID int64, name string, color *string) (model.Category, error)
	GetByID(ctx context.Context, id int64) (model.Category, error)
	// FindByName matches case-insensitively.
	FindByName(ctx context.Context, userID int64, name string) (*model.Category, error)
	// List returns the user's categories with unread counts summed over
	// subscriptions carrying the category label.
	List(ctx context.Context, userID int64) ([]model.Category, error)
	Update(ctx context.Context, id int64, name string, color *string) (model.Category, error)
	Delete(ctx context.Context, id int64) error
	QueryForUser(ctx context.Context, userID int64, q RecordQuery) ([]model.Category, int, error)
}

var CategoryRecordColumns = map[string]string{
	"id":      "c.id",
	"name":    "c.name",
	"color":   "c.color",
	"user_id": "c.user_id",
	"created": "c.created_at",
	"updated": "c.updated_at",
}

type categoryRepository struct {
	db dbtx
}

func NewCategoryRepository(db dbtx) CategoryRepository {
	return &categoryRepository{db: db}
}

const categorySelect = `SELECT c.id, c.user_id, c.name, c.color, c.created_at, c.updated_at,
  (SELECT COUNT(*) FROM subscriptions s
    JOIN feed_items i ON i.feed_id = s.feed_id
    WHERE s.user_id = c.user_id AND s.category = c.name COLLATE NOCASE
      AND NOT EXISTS (SELECT 1 FROM item_reads r WHERE r.item_id = i.id AND r.user_id = c.user_id)) AS unread_count
FROM categories c`

func (r *categoryRepository) Create(ctx context.Context, userID int64, name string, color *string) (model.Category, error) {
	id := snowflake.NextID()
	now := time.Now().UTC()
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO categories (id, user_id, name, color, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id,
		userID,
		name,
		nullableString(color),
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return model.Category{}, fmt.Errorf("create category: %w", err)
	}
	return model.Category{
		ID:        id,
		UserID:    userID,
		Name:      name,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (model.Category, error) {
	row := r.db.QueryRowContext(ctx, categorySelect+` WHERE c.id = ?`, id)
	return scanCategory(row)
}

func (r *categoryRepository) FindByName(ctx context.Context, userID int64, name string) (*model.Category, error) {
	row := r.db.QueryRowContext(ctx, categorySelect+` WHERE c.user_id = ? AND c.name = ? COLLATE NOCASE`, userID, name)
	category, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context, userID int64) ([]model.Category, error) {
	rows, err := r.db.QueryContext(ctx, categorySelect+` WHERE c.user_id = ? ORDER BY c.name COLLATE NOCASE`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return collectCategories(rows)
}

func (r *categoryRepository) Update(ctx context.Context, id int64, name string, color *string) (model.Category, error) {
	_, err := r.db.ExecContext(
		ctx,
		`UPDATE categories SET name = ?, color = ?, updated_at = ? WHERE id = ?`,
		name,
		nullableString(color),
		formatTime(time.Now()),
		id,
	)
	if err != nil {
		return model.Category{}, fmt.Errorf("update category: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func (r *categoryRepository) QueryForUser(ctx context.Context, userID int64, q RecordQuery) ([]model.Category, int, error) {
	base := categorySelect + ` WHERE c.user_id = ?`
	total, err := countRecordQuery(ctx, r.db, base, []any{userID}, q)
	if err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}
	query, args := applyRecordQuery(base, []any{userID}, q, "c.id")
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query categories: %w", err)
	}
	categories, err := collectCategories(rows)
	if err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}

func collectCategories(rows *sql.Rows) ([]model.Category, error) {
	defer rows.Close()
	var categories []model.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

func scanCategory(row scanner) (model.Category, error) {
	var category model.Category
	var color sql.NullString
	var createdAt, updatedAt string
	if err := row.Scan(&category.ID, &category.UserID, &category.Name, &color, &createdAt, &updatedAt, &category.UnreadCount); err != nil {
		return model.Category{}, err
	}
	category.Color = stringPtr(color)
	var err error
	category.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return model.Category{}, fmt.Errorf("parse category created_at: %w", err)
	}
	category.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return model.Category{}, fmt.Errorf("parse category updated_at: %w", err)
	}
	return category, nil
}
