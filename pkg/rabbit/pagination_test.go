package rabbit_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/rabbitz-io/rabbit/pkg/rabbit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	ID int `json:"id"`
}

// mockFetcher serves totalItems items in pages of the requested size and
// counts every fetch. When reportTotals is false the total headers are
// absent, as on expensive listings.
type mockFetcher struct {
	totalItems   int
	reportTotals bool
	fetches      int
	failOnPage   int
}

func (m *mockFetcher) FetchPage(ctx context.Context, path string, params *rabbit.QueryParams) (*rabbit.PageData, error) {
	m.fetches++

	page := params.Page
	perPage := params.PerPage

	if m.failOnPage > 0 && page == m.failOnPage {
		return nil, rabbit.NewStatusError(http.StatusOK, http.StatusInternalServerError, nil)
	}

	start := (page - 1) * perPage

	items := make([]testItem, 0, perPage)
	for i := start; i < start+perPage && i < m.totalItems; i++ {
		items = append(items, testItem{ID: i + 1})
	}

	body, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshaling page: %w", err)
	}

	info := rabbit.PageInfo{Total: -1, TotalPages: -1, Page: page, PerPage: perPage, NextPage: -1, PrevPage: -1}
	if m.reportTotals {
		totalPages := (m.totalItems + perPage - 1) / perPage
		info.Total = m.totalItems
		info.TotalPages = totalPages

		if page < totalPages {
			info.NextPage = page + 1
		}
	}

	return &rabbit.PageData{Body: body, Info: info}, nil
}

func TestParsePageInfo(t *testing.T) {
	t.Parallel()

	t.Run("all headers present", func(t *testing.T) {
		t.Parallel()

		header := http.Header{}
		header.Set(rabbit.HeaderTotal, "95")
		header.Set(rabbit.HeaderTotalPages, "5")
		header.Set(rabbit.HeaderPage, "3")
		header.Set(rabbit.HeaderPerPage, "20")
		header.Set(rabbit.HeaderNextPage, "4")
		header.Set(rabbit.HeaderPrevPage, "2")

		info := rabbit.ParsePageInfo(header)
		assert.Equal(t, rabbit.PageInfo{Total: 95, TotalPages: 5, Page: 3, PerPage: 20, NextPage: 4, PrevPage: 2}, info)
	})

	t.Run("missing headers report -1", func(t *testing.T) {
		t.Parallel()

		info := rabbit.ParsePageInfo(http.Header{})
		assert.Equal(t, rabbit.PageInfo{Total: -1, TotalPages: -1, Page: -1, PerPage: -1, NextPage: -1, PrevPage: -1}, info)
	})

	t.Run("unparsable header reports -1", func(t *testing.T) {
		t.Parallel()

		header := http.Header{}
		header.Set(rabbit.HeaderTotal, "lots")

		info := rabbit.ParsePageInfo(header)
		assert.Equal(t, -1, info.Total)
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestPager_All(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		totalItems   int
		perPage      int
		reportTotals bool
		wantFetches  int
	}{
		{name: "exact multiple with totals", totalItems: 40, perPage: 20, reportTotals: true, wantFetches: 2},
		{name: "partial last page with totals", totalItems: 45, perPage: 20, reportTotals: true, wantFetches: 3},
		{name: "single page with totals", totalItems: 5, perPage: 20, reportTotals: true, wantFetches: 1},
		{name: "empty with totals", totalItems: 0, perPage: 20, reportTotals: true, wantFetches: 1},
		{name: "partial last page without totals", totalItems: 45, perPage: 20, reportTotals: false, wantFetches: 3},
		// A full final page without totals costs one extra empty fetch
		{name: "exact multiple without totals", totalItems: 40, perPage: 20, reportTotals: false, wantFetches: 3},
		{name: "empty without totals", totalItems: 0, perPage: 20, reportTotals: false, wantFetches: 1},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			fetcher := &mockFetcher{totalItems: testCase.totalItems, reportTotals: testCase.reportTotals}
			params := rabbit.NewQueryParams().WithPage(1).WithPerPage(testCase.perPage)

			pager, err := rabbit.NewPager[testItem](context.Background(), fetcher, "/users", params)
			require.NoError(t, err)

			items, err := pager.All()
			require.NoError(t, err)
			require.Len(t, items, testCase.totalItems)

			// Order is preserved across page boundaries
			for i, item := range items {
				assert.Equal(t, i+1, item.ID)
			}

			assert.Equal(t, testCase.wantFetches, fetcher.fetches)
			assert.False(t, pager.HasNext())

			// Exhausted is terminal
			_, err = pager.Next()
			require.ErrorIs(t, err, rabbit.ErrPagerExhausted)
		})
	}
}

func TestPager_Next(t *testing.T) {
	t.Parallel()

	fetcher := &mockFetcher{totalItems: 3, reportTotals: true}
	params := rabbit.NewQueryParams().WithPage(1).WithPerPage(2)

	pager, err := rabbit.NewPager[testItem](context.Background(), fetcher, "/users", params)
	require.NoError(t, err)

	assert.True(t, pager.HasNext())

	for want := 1; want <= 3; want++ {
		item, err := pager.Next()
		require.NoError(t, err)
		assert.Equal(t, want, item.ID)
	}

	assert.False(t, pager.HasNext())

	_, err = pager.Next()
	require.ErrorIs(t, err, rabbit.ErrPagerExhausted)
	assert.Equal(t, 2, fetcher.fetches)
}

func TestPager_TotalsExposed(t *testing.T) {
	t.Parallel()

	fetcher := &mockFetcher{totalItems: 45, reportTotals: true}
	params := rabbit.NewQueryParams().WithPage(1).WithPerPage(20)

	pager, err := rabbit.NewPager[testItem](context.Background(), fetcher, "/users", params)
	require.NoError(t, err)

	// Unknown before the first fetch
	assert.Equal(t, -1, pager.TotalItems())
	assert.Equal(t, 0, pager.CurrentPage())

	_, err = pager.Next()
	require.NoError(t, err)

	assert.Equal(t, 45, pager.TotalItems())
	assert.Equal(t, 3, pager.TotalPages())
	assert.Equal(t, 1, pager.CurrentPage())
}

func TestPager_InvalidParams(t *testing.T) {
	t.Parallel()

	fetcher := &mockFetcher{totalItems: 10}

	tests := []struct {
		name   string
		params *rabbit.QueryParams
	}{
		{name: "zero page", params: rabbit.NewQueryParams().WithPage(0).WithPerPage(20)},
		{name: "negative page", params: rabbit.NewQueryParams().WithPage(-1).WithPerPage(20)},
		{name: "zero per_page", params: rabbit.NewQueryParams().WithPage(1).WithPerPage(0)},
		{name: "negative per_page", params: rabbit.NewQueryParams().WithPage(1).WithPerPage(-5)},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, err := rabbit.NewPager[testItem](context.Background(), fetcher, "/users", testCase.params)
			require.Error(t, err)
			assert.True(t, rabbit.IsInvalidArgument(err))

			// Validation happens before any request
			assert.Equal(t, 0, fetcher.fetches)
		})
	}
}

func TestPager_NilParamsDefaults(t *testing.T) {
	t.Parallel()

	fetcher := &mockFetcher{totalItems: 5, reportTotals: true}

	pager, err := rabbit.NewPager[testItem](context.Background(), fetcher, "/users", nil)
	require.NoError(t, err)

	items, err := pager.All()
	require.NoError(t, err)
	assert.Len(t, items, 5)
	assert.Equal(t, 1, fetcher.fetches)
}

func TestPager_FetchErrorSurfaced(t *testing.T) {
	t.Parallel()

	fetcher := &mockFetcher{totalItems: 45, reportTotals: true, failOnPage: 2}
	params := rabbit.NewQueryParams().WithPage(1).WithPerPage(20)

	pager, err := rabbit.NewPager[testItem](context.Background(), fetcher, "/users", params)
	require.NoError(t, err)

	_, err = pager.All()
	require.Error(t, err)

	var apiErr *rabbit.Error

	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, rabbit.ErrorKindStatusMismatch, apiErr.Kind)
}

func TestPager_ForEach(t *testing.T) {
	t.Parallel()

	fetcher := &mockFetcher{totalItems: 7, reportTotals: true}
	params := rabbit.NewQueryParams().WithPage(1).WithPerPage(3)

	pager, err := rabbit.NewPager[testItem](context.Background(), fetcher, "/users", params)
	require.NoError(t, err)

	var seen []int

	err = pager.ForEach(func(item testItem) error {
		seen = append(seen, item.ID)

		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, seen)
}

func TestPager_ForEachStopsOnCallbackError(t *testing.T) {
	t.Parallel()

	fetcher := &mockFetcher{totalItems: 10, reportTotals: true}
	params := rabbit.NewQueryParams().WithPage(1).WithPerPage(5)

	pager, err := rabbit.NewPager[testItem](context.Background(), fetcher, "/users", params)
	require.NoError(t, err)

	count := 0

	err = pager.ForEach(func(item testItem) error {
		count++
		if count == 3 {
			return assert.AnError
		}

		return nil
	})
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 3, count)
	assert.Equal(t, 1, fetcher.fetches)
}

func TestFetchAllPages(t *testing.T) {
	t.Parallel()

	t.Run("drains every page", func(t *testing.T) {
		t.Parallel()

		fetcher := &mockFetcher{totalItems: 45, reportTotals: true}
		params := rabbit.NewQueryParams().WithPage(1).WithPerPage(20)

		items, err := rabbit.FetchAllPages[testItem](context.Background(), fetcher, "/users", params, nil)
		require.NoError(t, err)
		assert.Len(t, items, 45)
		assert.Equal(t, 3, fetcher.fetches)
	})

	t.Run("max pages cap", func(t *testing.T) {
		t.Parallel()

		fetcher := &mockFetcher{totalItems: 100, reportTotals: true}
		params := rabbit.NewQueryParams().WithPage(1).WithPerPage(10)

		items, err := rabbit.FetchAllPages[testItem](context.Background(), fetcher, "/users", params,
			&rabbit.PageOptions{MaxPages: 3})
		require.NoError(t, err)
		assert.Len(t, items, 30)
		assert.Equal(t, 3, fetcher.fetches)
	})

	t.Run("page size option", func(t *testing.T) {
		t.Parallel()

		fetcher := &mockFetcher{totalItems: 30, reportTotals: true}

		items, err := rabbit.FetchAllPages[testItem](context.Background(), fetcher, "/users", nil,
			&rabbit.PageOptions{PageSize: 15})
		require.NoError(t, err)
		assert.Len(t, items, 30)
		assert.Equal(t, 2, fetcher.fetches)
	})
}

func TestStreamPages(t *testing.T) {
	t.Parallel()

	fetcher := &mockFetcher{totalItems: 45, reportTotals: true}
	params := rabbit.NewQueryParams().WithPage(1).WithPerPage(20)

	var (
		pages int
		total int
	)

	for result := range rabbit.StreamPages[testItem](context.Background(), fetcher, "/users", params, nil) {
		require.NoError(t, result.Err)

		pages++
		total += len(result.Items)

		assert.Equal(t, pages, result.Page)
	}

	assert.Equal(t, 3, pages)
	assert.Equal(t, 45, total)
}

func TestStreamPages_ErrorEmitted(t *testing.T) {
	t.Parallel()

	fetcher := &mockFetcher{totalItems: 45, reportTotals: true, failOnPage: 2}
	params := rabbit.NewQueryParams().WithPage(1).WithPerPage(20)

	var lastErr error

	for result := range rabbit.StreamPages[testItem](context.Background(), fetcher, "/users", params, nil) {
		lastErr = result.Err
	}

	require.Error(t, lastErr)
}

func TestStreamPages_ContextCancel(t *testing.T) {
	t.Parallel()

	fetcher := &mockFetcher{totalItems: 1000, reportTotals: true}
	params := rabbit.NewQueryParams().WithPage(1).WithPerPage(10)

	ctx, cancel := context.WithCancel(context.Background())

	stream := rabbit.StreamPages[testItem](ctx, fetcher, "/users", params, nil)

	first, ok := <-stream
	require.True(t, ok)
	require.NoError(t, first.Err)

	cancel()

	// The stream closes shortly after cancellation
	for range stream { //nolint:revive // draining until closed
	}
}
