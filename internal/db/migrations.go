package db

import (
	"database/sql"
	"fmt"
)

// Base schema - uses Snowflake IDs (no AUTOINCREMENT)
const baseSchema = `
CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY,
  email TEXT NOT NULL COLLATE NOCASE UNIQUE,
  display_name TEXT NOT NULL DEFAULT '',
  password_hash TEXT NOT NULL,
  theme TEXT NOT NULL DEFAULT 'system',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS feeds (
  id INTEGER PRIMARY KEY,
  url TEXT NOT NULL UNIQUE,
  title TEXT NOT NULL,
  site_url TEXT,
  description TEXT,
  fetch_status TEXT NOT NULL DEFAULT 'pending',
  error_message TEXT,
  last_fetched TEXT,
  etag TEXT,
  last_modified TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS subscriptions (
  id INTEGER PRIMARY KEY,
  user_id INTEGER NOT NULL,
  feed_id INTEGER NOT NULL,
  category TEXT,
  title TEXT,
  subscribed_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
  FOREIGN KEY (feed_id) REFERENCES feeds(id) ON DELETE CASCADE,
  UNIQUE (user_id, feed_id)
);

CREATE INDEX IF NOT EXISTS idx_subscriptions_feed_id ON subscriptions(feed_id);

CREATE TABLE IF NOT EXISTS categories (
  id INTEGER PRIMARY KEY,
  user_id INTEGER NOT NULL,
  name TEXT NOT NULL,
  color TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_user_name ON categories(user_id, name COLLATE NOCASE);

CREATE TABLE IF NOT EXISTS feed_items (
  id INTEGER PRIMARY KEY,
  feed_id INTEGER NOT NULL,
  guid TEXT,
  title TEXT NOT NULL DEFAULT '',
  link TEXT NOT NULL,
  summary TEXT,
  content TEXT,
  author TEXT,
  published_at TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  FOREIGN KEY (feed_id) REFERENCES feeds(id) ON DELETE CASCADE,
  UNIQUE (feed_id, link)
);

CREATE INDEX IF NOT EXISTS idx_feed_items_feed_published ON feed_items(feed_id, published_at DESC);

CREATE TABLE IF NOT EXISTS item_reads (
  user_id INTEGER NOT NULL,
  item_id INTEGER NOT NULL,
  read_at TEXT NOT NULL,
  PRIMARY KEY (user_id, item_id),
  FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
  FOREIGN KEY (item_id) REFERENCES feed_items(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_item_reads_item_id ON item_reads(item_id);

CREATE TABLE IF NOT EXISTS favorites (
  id INTEGER PRIMARY KEY,
  user_id INTEGER NOT NULL,
  item_id INTEGER NOT NULL,
  created_at TEXT NOT NULL,
  FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
  FOREIGN KEY (item_id) REFERENCES feed_items(id) ON DELETE CASCADE,
  UNIQUE (user_id, item_id)
);

CREATE TABLE IF NOT EXISTS user_settings (
  user_id INTEGER PRIMARY KEY,
  default_sort_order TEXT NOT NULL DEFAULT 'newest',
  fetch_interval INTEGER NOT NULL DEFAULT 15,
  updated_at TEXT NOT NULL,
  FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS settings (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
`

type columnMigration struct {
	table  string
	column string
	ddl    string
}

// Columns added after the base schema shipped.
var columnMigrations = []columnMigration{
	{"feeds", "favicon", `ALTER TABLE feeds ADD COLUMN favicon TEXT`},
	{"feeds", "is_default", `ALTER TABLE feeds ADD COLUMN is_default INTEGER NOT NULL DEFAULT 0`},
	{"feed_items", "image_url", `ALTER TABLE feed_items ADD COLUMN image_url TEXT`},
	{"feed_items", "readable_content", `ALTER TABLE feed_items ADD COLUMN readable_content TEXT`},
	{"subscriptions", "enabled", `ALTER TABLE subscriptions ADD COLUMN enabled INTEGER NOT NULL DEFAULT 1`},
	{"user_settings", "sidebar_width", `ALTER TABLE user_settings ADD COLUMN sidebar_width INTEGER NOT NULL DEFAULT 300`},
	{"user_settings", "article_width", `ALTER TABLE user_settings ADD COLUMN article_width INTEGER NOT NULL DEFAULT 600`},
}

func Migrate(db *sql.DB) error {
	if _, err := db.Exec(baseSchema); err != nil {
		return fmt.Errorf("migrate base schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func runMigrations(db *sql.DB) error {
	for _, m := range columnMigrations {
		var count int
		err := db.QueryRow(
			`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
			m.table,
			m.column,
		).Scan(&count)
		if err != nil {
			return fmt.Errorf("check %s.%s column: %w", m.table, m.column, err)
		}
		if count > 0 {
			continue
		}
		if _, err := db.Exec(m.ddl); err != nil {
			return fmt.Errorf("add %s.%s column: %w", m.table, m.column, err)
		}
	}

	// At most one default feed.
	if _, err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_feeds_default ON feeds(is_default) WHERE is_default = 1`); err != nil {
		return fmt.Errorf("create idx_feeds_default: %w", err)
	}

	return nil
}
