package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rabbitz-io/rabbit/internal/constants"
)

// Pagination response headers.
const (
	HeaderTotal      = "X-Total"
	HeaderTotalPages = "X-Total-Pages"
	HeaderPage       = "X-Page"
	HeaderPerPage    = "X-Per-Page"
	HeaderNextPage   = "X-Next-Page"
	HeaderPrevPage   = "X-Prev-Page"
)

// PageInfo describes the pagination state reported by a list response.
// Servers may omit the total headers on expensive listings; absent or
// unparsable values are reported as -1.
type PageInfo struct {
	Total      int
	TotalPages int
	Page       int
	PerPage    int
	NextPage   int
	PrevPage   int
}

// ParsePageInfo extracts pagination state from response headers.
func ParsePageInfo(header http.Header) PageInfo {
	return PageInfo{
		Total:      headerInt(header, HeaderTotal),
		TotalPages: headerInt(header, HeaderTotalPages),
		Page:       headerInt(header, HeaderPage),
		PerPage:    headerInt(header, HeaderPerPage),
		NextPage:   headerInt(header, HeaderNextPage),
		PrevPage:   headerInt(header, HeaderPrevPage),
	}
}

func headerInt(header http.Header, key string) int {
	raw := header.Get(key)
	if raw == "" {
		return -1
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}

	return value
}

// PageData is one fetched page: the raw body plus the pagination headers.
type PageData struct {
	Body []byte
	Info PageInfo
}

// PageFetcher fetches a single page of a list endpoint.
type PageFetcher interface {
	FetchPage(ctx context.Context, path string, params *QueryParams) (*PageData, error)
}

// Pager iterates over a paginated list endpoint, fetching pages lazily.
type Pager[T any] struct {
	ctx       context.Context
	fetcher   PageFetcher
	path      string
	params    *QueryParams
	items     []T
	index     int
	page      int
	perPage   int
	info      PageInfo
	fetched   bool
	exhausted bool
}

// NewPager creates a pager for the given path. When params is nil the pager
// starts at page 1 with the default page size. Explicit params must carry a
// positive Page and PerPage; invalid values fail before any request is sent.
func NewPager[T any](ctx context.Context, fetcher PageFetcher, path string, params *QueryParams) (*Pager[T], error) {
	if params == nil {
		params = NewQueryParams().
			WithPage(1).
			WithPerPage(constants.DefaultPerPage)
	}

	if params.Page < 1 {
		return nil, InvalidArgumentf("page must be positive, got %d", params.Page)
	}

	if params.PerPage < 1 {
		return nil, InvalidArgumentf("per_page must be positive, got %d", params.PerPage)
	}

	return &Pager[T]{
		ctx:     ctx,
		fetcher: fetcher,
		path:    path,
		params:  params,
		page:    params.Page,
		perPage: params.PerPage,
		info:    PageInfo{Total: -1, TotalPages: -1, Page: -1, PerPage: -1, NextPage: -1, PrevPage: -1},
	}, nil
}

// HasNext reports whether more items are available. When the server does not
// report totals this is optimistic: a full final page keeps HasNext true
// until the following empty fetch.
func (p *Pager[T]) HasNext() bool {
	if p.index < len(p.items) {
		return true
	}

	return !p.exhausted
}

// Next returns the next item, fetching the next page when the buffer is
// drained. It returns ErrPagerExhausted once no items remain.
func (p *Pager[T]) Next() (T, error) {
	var zero T

	for p.index >= len(p.items) {
		if p.exhausted {
			return zero, ErrPagerExhausted
		}

		if err := p.fetchNext(); err != nil {
			return zero, err
		}
	}

	item := p.items[p.index]
	p.index++

	return item, nil
}

// All drains the remaining pages and returns every item.
func (p *Pager[T]) All() ([]T, error) {
	var all []T

	for p.HasNext() {
		item, err := p.Next()
		if errors.Is(err, ErrPagerExhausted) {
			break
		}

		if err != nil {
			return nil, err
		}

		all = append(all, item)
	}

	return all, nil
}

// ForEach calls fn for every remaining item, stopping at the first error
// returned by fn.
func (p *Pager[T]) ForEach(fn func(item T) error) error {
	for p.HasNext() {
		item, err := p.Next()
		if errors.Is(err, ErrPagerExhausted) {
			return nil
		}

		if err != nil {
			return err
		}

		if err := fn(item); err != nil {
			return err
		}
	}

	return nil
}

// TotalItems returns the server-reported item count, or -1 if unknown.
func (p *Pager[T]) TotalItems() int {
	return p.info.Total
}

// TotalPages returns the server-reported page count, or -1 if unknown.
func (p *Pager[T]) TotalPages() int {
	return p.info.TotalPages
}

// CurrentPage returns the page number of the most recent fetch, or 0 before
// the first fetch.
func (p *Pager[T]) CurrentPage() int {
	if !p.fetched {
		return 0
	}

	return p.page - 1
}

func (p *Pager[T]) fetchNext() error {
	params := *p.params
	params.Page = p.page
	params.PerPage = p.perPage

	data, err := p.fetcher.FetchPage(p.ctx, p.path, &params)
	if err != nil {
		p.exhausted = true

		return WrapError(err)
	}

	var items []T
	if len(data.Body) > 0 {
		if err := json.Unmarshal(data.Body, &items); err != nil {
			p.exhausted = true

			return NewDecodeError(err)
		}
	}

	fetchedPage := p.page
	p.items = items
	p.index = 0
	p.info = data.Info
	p.fetched = true
	p.page++

	switch {
	case len(items) == 0:
		p.exhausted = true
	case data.Info.TotalPages >= 0:
		p.exhausted = fetchedPage >= data.Info.TotalPages
	case data.Info.NextPage > 0:
		p.exhausted = false
	default:
		p.exhausted = len(items) < p.perPage
	}

	return nil
}

// PageResult carries one page emitted by Stream.
type PageResult[T any] struct {
	Items []T
	Page  int
	Err   error
}

// PageOptions controls the bulk fetch helpers.
type PageOptions struct {
	PageSize int
	MaxPages int
}

// FetchAllPages fetches every page of a list endpoint and returns the
// combined items. Options may cap the number of pages fetched.
func FetchAllPages[T any](ctx context.Context, fetcher PageFetcher, path string, params *QueryParams, opts *PageOptions) ([]T, error) {
	if params == nil {
		params = NewQueryParams().WithPage(1)
	}

	if params.PerPage < 1 {
		params.PerPage = constants.DefaultPerPage
	}

	if opts != nil && opts.PageSize > 0 {
		params.PerPage = opts.PageSize
	}

	pager, err := NewPager[T](ctx, fetcher, path, params)
	if err != nil {
		return nil, err
	}

	var all []T

	pages := 0

	for !pager.exhausted {
		if opts != nil && opts.MaxPages > 0 && pages >= opts.MaxPages {
			break
		}

		if err := pager.fetchNext(); err != nil {
			return nil, err
		}

		all = append(all, pager.items...)
		pager.index = len(pager.items)
		pages++
	}

	return all, nil
}

// StreamPages fetches pages sequentially and emits each one on the returned
// channel. The channel is closed after the final page or the first error.
func StreamPages[T any](ctx context.Context, fetcher PageFetcher, path string, params *QueryParams, opts *PageOptions) <-chan PageResult[T] {
	results := make(chan PageResult[T])

	go func() {
		defer close(results)

		if params == nil {
			params = NewQueryParams().WithPage(1)
		}

		if params.PerPage < 1 {
			params.PerPage = constants.DefaultPerPage
		}

		if opts != nil && opts.PageSize > 0 {
			params.PerPage = opts.PageSize
		}

		pager, err := NewPager[T](ctx, fetcher, path, params)
		if err != nil {
			select {
			case results <- PageResult[T]{Err: err}:
			case <-ctx.Done():
			}

			return
		}

		pages := 0

		for !pager.exhausted {
			if opts != nil && opts.MaxPages > 0 && pages >= opts.MaxPages {
				return
			}

			if err := pager.fetchNext(); err != nil {
				select {
				case results <- PageResult[T]{Page: pager.CurrentPage(), Err: err}:
				case <-ctx.Done():
				}

				return
			}

			if len(pager.items) == 0 {
				return
			}

			items := pager.items
			pager.index = len(pager.items)
			pages++

			select {
			case results <- PageResult[T]{Items: items, Page: pager.CurrentPage()}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return results
}
