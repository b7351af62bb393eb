package model

import "time"

const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

const (
	SortNewest = "newest"
	SortOldest = "oldest"
)

type User struct {
	ID           int64
	Email        string
	DisplayName  string
	PasswordHash string
	Theme        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserSettings holds per-user reader preferences.
type UserSettings struct {
	UserID           int64
	DefaultSortOrder string
	FetchInterval    int // minutes
	SidebarWidth     int
	ArticleWidth     int
	UpdatedAt        time.Time
}

// DefaultUserSettings mirrors the column defaults.
func DefaultUserSettings(userID int64) UserSettings {
	return UserSettings{
		UserID:           userID,
		DefaultSortOrder: SortNewest,
		FetchInterval:    15,
		SidebarWidth:     300,
		ArticleWidth:     600,
	}
}
