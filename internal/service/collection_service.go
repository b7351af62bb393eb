package service

import (
	"context"
	"fmt"

	"readr/internal/filter"
	"readr/internal/logger"
	"readr/internal/model"
	"readr/internal/repository"
)

const (
	defaultPerPage = 30
	maxPerPage     = 500
)

// RecordListParams are the collection list query parameters.
type RecordListParams struct {
	Filter  string
	Sort    string
	Page    int
	PerPage int
}

type RecordPage[T any] struct {
	Page       int
	PerPage    int
	TotalItems int
	TotalPages int
	Items      []T
}

// CollectionService answers collection list requests scoped to one user.
type CollectionService interface {
	Feeds(ctx context.Context, userID int64, params RecordListParams) (RecordPage[model.UserFeed], error)
	Categories(ctx context.Context, userID int64, params RecordListParams) (RecordPage[model.Category], error)
	Subscriptions(ctx context.Context, userID int64, params RecordListParams) (RecordPage[model.Subscription], error)
	Items(ctx context.Context, userID int64, params RecordListParams) (RecordPage[model.FeedItem], error)
}

type collectionService struct {
	feeds         repository.FeedRepository
	categories    repository.CategoryRepository
	subscriptions repository.SubscriptionRepository
	items         repository.ItemRepository
}

func NewCollectionService(
	feeds repository.FeedRepository,
	categories repository.CategoryRepository,
	subscriptions repository.SubscriptionRepository,
	items repository.ItemRepository,
) CollectionService {
	return &collectionService{
		feeds:         feeds,
		categories:    categories,
		subscriptions: subscriptions,
		items:         items,
	}
}

func (s *collectionService) Feeds(ctx context.Context, userID int64, params RecordListParams) (RecordPage[model.UserFeed], error) {
	return queryRecords(ctx, "feeds", userID, params, repository.FeedRecordColumns, s.feeds.QueryForUser)
}

func (s *collectionService) Categories(ctx context.Context, userID int64, params RecordListParams) (RecordPage[model.Category], error) {
	return queryRecords(ctx, "categories", userID, params, repository.CategoryRecordColumns, s.categories.QueryForUser)
}

func (s *collectionService) Subscriptions(ctx context.Context, userID int64, params RecordListParams) (RecordPage[model.Subscription], error) {
	return queryRecords(ctx, "subscriptions", userID, params, repository.SubscriptionRecordColumns, s.subscriptions.QueryForUser)
}

func (s *collectionService) Items(ctx context.Context, userID int64, params RecordListParams) (RecordPage[model.FeedItem], error) {
	return queryRecords(ctx, "feed_items", userID, params, repository.ItemRecordColumns, s.items.QueryForUser)
}

type queryFunc[T any] func(ctx context.Context, userID int64, q repository.RecordQuery) ([]T, int, error)

func queryRecords[T any](
	ctx context.Context,
	collection string,
	userID int64,
	params RecordListParams,
	fields filter.Fields,
	query queryFunc[T],
) (RecordPage[T], error) {
	q, page, perPage, err := compileRecordQuery(params, fields)
	if err != nil {
		logger.Debug("collection query rejected", "module", "service", "action", "list", "resource", collection, "result", "failed", "error", err)
		return RecordPage[T]{}, err
	}

	items, total, err := query(ctx, userID, q)
	if err != nil {
		logger.Error("collection query failed", "module", "service", "action", "list", "resource", collection, "result", "failed", "error", err)
		return RecordPage[T]{}, fmt.Errorf("list %s: %w", collection, err)
	}
	if items == nil {
		items = []T{}
	}

	return RecordPage[T]{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
		Items:      items,
	}, nil
}

func compileRecordQuery(params RecordListParams, fields filter.Fields) (repository.RecordQuery, int, int, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	perPage := params.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	expr, err := filter.Parse(params.Filter)
	if err != nil {
		return repository.RecordQuery{}, 0, 0, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	where, args, err := filter.SQL(expr, fields)
	if err != nil {
		return repository.RecordQuery{}, 0, 0, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	orderBy, err := filter.Sort(params.Sort, fields)
	if err != nil {
		return repository.RecordQuery{}, 0, 0, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	return repository.RecordQuery{
		Where:   where,
		Args:    args,
		OrderBy: orderBy,
		Limit:   perPage,
		Offset:  (page - 1) * perPage,
	}, page, perPage, nil
}
