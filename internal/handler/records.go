package handler

import (
	"strconv"
	"time"

	"readr/internal/model"
	"readr/internal/service"
)

// Records use the snake_case field names of the collection filters so a
// client can filter and sort on what it reads.

type feedRecord struct {
	ID             int64   `json:"id,string"`
	URL            string  `json:"url"`
	Title          string  `json:"title"`
	SiteURL        *string `json:"site_url,omitempty"`
	Description    *string `json:"description,omitempty"`
	Favicon        *string `json:"favicon,omitempty"`
	Category       string  `json:"category"`
	IsDefault      bool    `json:"is_default"`
	FetchStatus    string  `json:"fetch_status"`
	ErrorMessage   *string `json:"error_message,omitempty"`
	LastFetched    *string `json:"last_fetched,omitempty"`
	UnreadCount    int     `json:"unread_count"`
	SubscriptionID int64   `json:"subscription_id,string,omitempty"`
	Created        string  `json:"created"`
	Updated        string  `json:"updated"`
}

type categoryRecord struct {
	ID          int64   `json:"id,string"`
	UserID      int64   `json:"user_id,string"`
	Name        string  `json:"name"`
	Color       *string `json:"color,omitempty"`
	UnreadCount int     `json:"unread_count"`
	Created     string  `json:"created"`
	Updated     string  `json:"updated"`
}

type subscriptionRecord struct {
	ID       int64   `json:"id,string"`
	UserID   int64   `json:"user_id,string"`
	FeedID   int64   `json:"feed_id,string"`
	Category string  `json:"category"`
	Title    *string `json:"title,omitempty"`
	Enabled  bool    `json:"enabled"`
	Created  string  `json:"created"`
	Updated  string  `json:"updated"`
}

type itemRecord struct {
	ID              int64    `json:"id,string"`
	FeedID          int64    `json:"feed_id,string"`
	GUID            *string  `json:"guid,omitempty"`
	Title           string   `json:"title"`
	Link            string   `json:"link"`
	Summary         *string  `json:"summary,omitempty"`
	Content         *string  `json:"content,omitempty"`
	ReadableContent *string  `json:"readable_content,omitempty"`
	ImageURL        *string  `json:"image_url,omitempty"`
	Author          *string  `json:"author,omitempty"`
	PublishedDate   *string  `json:"published_date,omitempty"`
	ReadBy          []string `json:"read_by"`
	IsRead          bool     `json:"is_read"`
	IsStarred       bool     `json:"is_starred"`
	FeedTitle       string   `json:"feed_title,omitempty"`
	Created         string   `json:"created"`
	Updated         string   `json:"updated"`
}

type recordListResponse[T any] struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
	Items      []T `json:"items"`
}

func toRecordList[M, R any](page service.RecordPage[M], convert func(M) R) recordListResponse[R] {
	items := make([]R, len(page.Items))
	for i, item := range page.Items {
		items[i] = convert(item)
	}
	return recordListResponse[R]{
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
		Items:      items,
	}
}

func toUserFeedRecord(f model.UserFeed) feedRecord {
	record := toFeedRecord(f.Feed)
	record.Title = f.DisplayTitle()
	record.Category = f.Category
	record.UnreadCount = f.UnreadCount
	record.SubscriptionID = f.SubscriptionID
	return record
}

func toFeedRecord(f model.Feed) feedRecord {
	return feedRecord{
		ID:           f.ID,
		URL:          f.URL,
		Title:        f.Title,
		SiteURL:      f.SiteURL,
		Description:  f.Description,
		Favicon:      f.Favicon,
		IsDefault:    f.IsDefault,
		FetchStatus:  f.FetchStatus,
		ErrorMessage: f.ErrorMessage,
		LastFetched:  formatTimePtr(f.LastFetched),
		Created:      formatTime(f.CreatedAt),
		Updated:      formatTime(f.UpdatedAt),
	}
}

func toCategoryRecord(c model.Category) categoryRecord {
	return categoryRecord{
		ID:          c.ID,
		UserID:      c.UserID,
		Name:        c.Name,
		Color:       c.Color,
		UnreadCount: c.UnreadCount,
		Created:     formatTime(c.CreatedAt),
		Updated:     formatTime(c.UpdatedAt),
	}
}

func toSubscriptionRecord(s model.Subscription) subscriptionRecord {
	return subscriptionRecord{
		ID:       s.ID,
		UserID:   s.UserID,
		FeedID:   s.FeedID,
		Category: s.Category,
		Title:    s.Title,
		Enabled:  s.Enabled,
		Created:  formatTime(s.SubscribedAt),
		Updated:  formatTime(s.UpdatedAt),
	}
}

func toItemRecord(i model.FeedItem) itemRecord {
	readBy := make([]string, len(i.ReadBy))
	for n, id := range i.ReadBy {
		readBy[n] = strconv.FormatInt(id, 10)
	}
	return itemRecord{
		ID:              i.ID,
		FeedID:          i.FeedID,
		GUID:            i.GUID,
		Title:           i.Title,
		Link:            i.Link,
		Summary:         i.Summary,
		Content:         i.Content,
		ReadableContent: i.ReadableContent,
		ImageURL:        i.ImageURL,
		Author:          i.Author,
		PublishedDate:   formatTimePtr(i.PublishedAt),
		ReadBy:          readBy,
		IsRead:          i.Read,
		IsStarred:       i.Starred,
		FeedTitle:       i.FeedTitle,
		Created:         formatTime(i.CreatedAt),
		Updated:         formatTime(i.UpdatedAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}
