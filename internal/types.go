package internal

import (
	"time"

	"github.com/samber/lo"
)

type User struct {
	ID    string
	Email string
}

type Session struct {
	AccessToken string
}

type Link struct {
	ID        string
	UserID    string
	Title     string
	URL       string
	CreatedAt time.Time
}

// Paginated is one page of results plus the totals across all pages.
type Paginated[T any] struct {
	Items      []T `json:"items"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// NewPaginated builds a page envelope. TotalPages is zero when there are no items,
// otherwise ceil(totalItems / pageSize).
func NewPaginated[T any](items []T, totalItems, pageSize int) Paginated[T] {
	if items == nil {
		items = []T{}
	}

	totalPages := 0
	if totalItems > 0 && pageSize > 0 {
		totalPages = (totalItems + pageSize - 1) / pageSize
	}

	return Paginated[T]{
		Items:      items,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}

// MapPaginated reshapes the items of a page, keeping its totals.
func MapPaginated[T, R any](p Paginated[T], fn func(T) R) Paginated[R] {
	return Paginated[R]{
		Items: lo.Map(p.Items, func(item T, _ int) R {
			return fn(item)
		}),
		TotalItems: p.TotalItems,
		TotalPages: p.TotalPages,
	}
}
