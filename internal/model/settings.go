package model

import "time"

// SettingJWTSecret holds the hex-encoded HS256 key. It is generated on first
// use and shared by every server process on the same database.
const SettingJWTSecret = "auth.jwt_secret"

type Setting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}
