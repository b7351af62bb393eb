package model

import "time"

type Subscription struct {
	ID           int64
	UserID       int64
	FeedID       int64
	Category     string // label, not a foreign key; empty when uncategorised
	Title        *string
	Enabled      bool
	SubscribedAt time.Time
	UpdatedAt    time.Time
}
