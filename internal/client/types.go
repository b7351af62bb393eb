package client

// Records mirror the collections API. Ids are strings on the wire.

type Page[T any] struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
	Items      []T `json:"items"`
}

type Feed struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	Title        string `json:"title"`
	SiteURL      string `json:"site_url,omitempty"`
	Description  string `json:"description,omitempty"`
	Favicon      string `json:"favicon,omitempty"`
	Category     string `json:"category"`
	FetchStatus  string `json:"fetch_status"`
	ErrorMessage string `json:"error_message,omitempty"`
	LastFetched  string `json:"last_fetched,omitempty"`
	UnreadCount  int    `json:"unread_count"`
	Created      string `json:"created"`
	Updated      string `json:"updated"`
}

// DisplayTitle falls back to the URL for feeds not fetched yet.
func (f Feed) DisplayTitle() string {
	if f.Title != "" {
		return f.Title
	}
	return f.URL
}

type Category struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Color       string `json:"color,omitempty"`
	UnreadCount int    `json:"unread_count"`
	Created     string `json:"created"`
	Updated     string `json:"updated"`
}

type Subscription struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	FeedID   string `json:"feed_id"`
	Category string `json:"category"`
	Title    string `json:"title,omitempty"`
	Enabled  bool   `json:"enabled"`
	Created  string `json:"created"`
}

type Item struct {
	ID              string   `json:"id"`
	FeedID          string   `json:"feed_id"`
	GUID            string   `json:"guid,omitempty"`
	Title           string   `json:"title"`
	Link            string   `json:"link"`
	Summary         string   `json:"summary,omitempty"`
	Content         string   `json:"content,omitempty"`
	ReadableContent string   `json:"readable_content,omitempty"`
	ImageURL        string   `json:"image_url,omitempty"`
	Author          string   `json:"author,omitempty"`
	Published       string   `json:"published_date,omitempty"`
	ReadBy          []string `json:"read_by"`
	IsRead          bool     `json:"is_read"`
	IsStarred       bool     `json:"is_starred"`
	FeedTitle       string   `json:"feed_title,omitempty"`
	Created         string   `json:"created"`
}

// IsReadBy reports whether userID appears in the item's read_by list.
func (i Item) IsReadBy(userID string) bool {
	for _, id := range i.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}

type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Theme       string `json:"theme"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type Preferences struct {
	Theme            string `json:"theme"`
	DefaultSortOrder string `json:"defaultSortOrder"`
	FetchInterval    int    `json:"fetchInterval"`
	SidebarWidth     int    `json:"sidebarWidth"`
	ArticleWidth     int    `json:"articleWidth"`
}

// PreferencesUpdate changes only the fields that are set.
type PreferencesUpdate struct {
	Theme            *string `json:"theme,omitempty"`
	DefaultSortOrder *string `json:"defaultSortOrder,omitempty"`
	FetchInterval    *int    `json:"fetchInterval,omitempty"`
	SidebarWidth     *int    `json:"sidebarWidth,omitempty"`
	ArticleWidth     *int    `json:"articleWidth,omitempty"`
}

type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Failed   []string `json:"failed,omitempty"`
}
