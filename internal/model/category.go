package model

import "time"

type Category struct {
	ID          int64
	UserID      int64
	Name        string
	Color       *string
	UnreadCount int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
