package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/abdusco/linkbox/internal"
	"github.com/rs/zerolog/log"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type LinkService struct {
	store LinkStore
}

func NewLinkService(store LinkStore) *LinkService {
	return &LinkService{store: store}
}

// CreateLink stores a link owned by user. Input is expected to be validated.
func (s *LinkService) CreateLink(ctx context.Context, user internal.User, title, url string) (*internal.Link, error) {
	link, err := s.store.InsertLink(ctx, user.ID, title, url)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("failed to insert link")
		return nil, fmt.Errorf("%w: %w", ErrLinkNotCreated, err)
	}
	if link == nil {
		log.Error().Str("user_id", user.ID).Msg("store reported no inserted row")
		return nil, ErrLinkNotCreated
	}

	log.Info().Str("user_id", user.ID).Str("link_id", link.ID).Msg("link created")
	return link, nil
}

// ListLinks returns one page of the user's links, newest first.
func (s *LinkService) ListLinks(ctx context.Context, user internal.User, page, pageSize int) (internal.Paginated[internal.Link], error) {
	if page < 1 || pageSize < 1 || pageSize > MaxPageSize {
		return internal.Paginated[internal.Link]{}, errors.New("page or page size out of range")
	}

	from, to := PageRange(page, pageSize)

	links, total, err := s.store.ListLinks(ctx, user.ID, from, to)
	if err != nil {
		return internal.Paginated[internal.Link]{}, fmt.Errorf("failed to list links: %w", err)
	}

	log.Debug().
		Str("user_id", user.ID).
		Int("page", page).
		Int("page_size", pageSize).
		Int("total", total).
		Msg("links listed")

	return internal.NewPaginated(links, total, pageSize), nil
}

// PageRange returns the inclusive, zero-based row range for a 1-based page.
func PageRange(page, pageSize int) (from, to int) {
	from = (page - 1) * pageSize
	return from, from + pageSize - 1
}
