package service

import (
	"database/sql"
	"errors"
	"fmt"

	"readr/internal/model"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalid      = errors.New("invalid")
	ErrFeedFetch    = errors.New("feed fetch failed")
	ErrUnauthorized = errors.New("unauthorized")
)

// FeedConflictError is returned when the user already subscribes to a feed.
type FeedConflictError struct {
	ExistingFeed model.Feed
}

func (e *FeedConflictError) Error() string {
	return "feed already exists"
}

func (e *FeedConflictError) Is(target error) bool {
	return target == ErrConflict
}

// mapNoRows turns a missing row into ErrNotFound and wraps anything else.
func mapNoRows(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
