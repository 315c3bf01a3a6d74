package rabbit

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// QueryParams represents query parameters for list requests.
type QueryParams struct {
	Page    int
	PerPage int
	OrderBy string
	Sort    string
	Search  string
	Params  map[string]string
	Arrays  map[string][]string
}

// NewQueryParams creates a new QueryParams instance.
func NewQueryParams() *QueryParams {
	return &QueryParams{
		Params: make(map[string]string),
		Arrays: make(map[string][]string),
	}
}

// WithPage sets the page number.
func (q *QueryParams) WithPage(page int) *QueryParams {
	q.Page = page

	return q
}

// WithPerPage sets the page size.
func (q *QueryParams) WithPerPage(perPage int) *QueryParams {
	q.PerPage = perPage

	return q
}

// WithOrderBy sets the ordering field.
func (q *QueryParams) WithOrderBy(orderBy string) *QueryParams {
	q.OrderBy = orderBy

	return q
}

// WithSort sets the sort direction, "asc" or "desc".
func (q *QueryParams) WithSort(sort string) *QueryParams {
	q.Sort = sort

	return q
}

// WithSearch sets the search term.
func (q *QueryParams) WithSearch(search string) *QueryParams {
	q.Search = search

	return q
}

// WithParam sets a scalar parameter. Setting the same key twice replaces the
// earlier value. Nil and empty values are skipped during encoding.
func (q *QueryParams) WithParam(key string, value any) *QueryParams {
	if q.Params == nil {
		q.Params = make(map[string]string)
	}

	if s, ok := formatParamValue(value); ok {
		q.Params[key] = s
	}

	return q
}

// WithArrayParam appends values to a repeated parameter, encoded as key[]=v
// for each value.
func (q *QueryParams) WithArrayParam(key string, values ...string) *QueryParams {
	if q.Arrays == nil {
		q.Arrays = make(map[string][]string)
	}

	q.Arrays[key] = append(q.Arrays[key], values...)

	return q
}

// ToValues converts the parameters to url.Values. Zero pagination fields and
// empty strings are omitted.
func (q *QueryParams) ToValues() url.Values {
	values := url.Values{}

	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}

	if q.PerPage > 0 {
		values.Set("per_page", strconv.Itoa(q.PerPage))
	}

	if q.OrderBy != "" {
		values.Set("order_by", q.OrderBy)
	}

	if q.Sort != "" {
		values.Set("sort", q.Sort)
	}

	if q.Search != "" {
		values.Set("search", q.Search)
	}

	for key, value := range q.Params {
		if value != "" {
			values.Set(key, value)
		}
	}

	for key, arr := range q.Arrays {
		for _, value := range arr {
			values.Add(key+"[]", value)
		}
	}

	return values
}

func formatParamValue(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, v != ""
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case Date:
		return v.String(), true
	case *Date:
		if v == nil {
			return "", false
		}

		return v.String(), true
	case time.Time:
		return v.Format(time.RFC3339), true
	default:
		return fmt.Sprintf("%v", v), true
	}
}
