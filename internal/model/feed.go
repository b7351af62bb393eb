package model

import "time"

const (
	FetchStatusPending = "pending"
	FetchStatusSuccess = "success"
	FetchStatusFailed  = "failed"
)

// Feed is shared by every user subscribed to its URL.
type Feed struct {
	ID           int64
	URL          string
	Title        string
	SiteURL      *string
	Description  *string
	Favicon      *string
	IsDefault    bool
	FetchStatus  string // pending, success, failed
	ErrorMessage *string
	LastFetched  *time.Time
	ETag         *string
	LastModified *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserFeed is a feed as seen by one subscriber.
type UserFeed struct {
	Feed
	SubscriptionID int64
	Category       string
	CustomTitle    *string
	SubscribedAt   time.Time
	UnreadCount    int
}

// DisplayTitle prefers the subscriber's title override.
func (f UserFeed) DisplayTitle() string {
	if f.CustomTitle != nil && *f.CustomTitle != "" {
		return *f.CustomTitle
	}
	return f.Title
}
