package model

import "time"

type FeedItem struct {
	ID              int64
	FeedID          int64
	GUID            *string
	Title           string
	Link            string
	Summary         *string
	Content         *string
	ReadableContent *string
	ImageURL        *string
	Author          *string
	PublishedAt     *time.Time
	ReadBy          []int64
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Per-viewer projections, filled by user-scoped queries.
	Read      bool
	Starred   bool
	FeedTitle string
	FeedURL   string
}

// IsReadBy reports whether userID appears in ReadBy.
func (i FeedItem) IsReadBy(userID int64) bool {
	for _, id := range i.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}

type Favorite struct {
	ID        int64
	UserID    int64
	ItemID    int64
	CreatedAt time.Time
}
