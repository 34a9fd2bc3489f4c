package usecase

import "github.com/davidnhn/book-social-network/services/book-network/internal/repository"

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// PageParams selects a zero-based page.
type PageParams struct {
	Page int
	Size int
}

func (p PageParams) normalize() PageParams {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = defaultPageSize
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}

	return p
}

func (p PageParams) listParams() repository.ListParams {
	return repository.ListParams{
		Limit:  uint64(p.Size),
		Offset: uint64(p.Page) * uint64(p.Size),
	}
}

// Page is one slice of a sorted result set.
type Page[T any] struct {
	Content       []T
	Number        int
	Size          int
	TotalElements int64
	TotalPages    int
	First         bool
	Last          bool
}

func newPage[T any](content []T, params PageParams, total int64) *Page[T] {
	if content == nil {
		content = []T{}
	}

	totalPages := int((total + int64(params.Size) - 1) / int64(params.Size))

	return &Page[T]{
		Content:       content,
		Number:        params.Page,
		Size:          params.Size,
		TotalElements: total,
		TotalPages:    totalPages,
		First:         params.Page == 0,
		Last:          params.Page >= totalPages-1,
	}
}
