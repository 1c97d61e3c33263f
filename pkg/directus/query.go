package directus

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// QueryParams represents the global query parameters of Directus list endpoints.
type QueryParams struct {
	Fields []string
	Limit  int
	Offset int
	Sort   []string
	Filter string
	Search string
	Meta   string
}

// NewQueryParams creates new query parameters.
func NewQueryParams() *QueryParams {
	return &QueryParams{}
}

// WithFields appends field selectors, e.g. "*" or "WebCategories.WebCategory_id.*".
func (q *QueryParams) WithFields(fields ...string) *QueryParams {
	q.Fields = append(q.Fields, fields...)

	return q
}

// WithFieldSelector appends a comma-delimited field selector string.
func (q *QueryParams) WithFieldSelector(selector string) *QueryParams {
	for _, field := range strings.Split(selector, ",") {
		field = strings.TrimSpace(field)
		if field != "" {
			q.Fields = append(q.Fields, field)
		}
	}

	return q
}

// WithLimit sets the page size.
func (q *QueryParams) WithLimit(limit int) *QueryParams {
	q.Limit = limit

	return q
}

// WithOffset sets the number of items to skip.
func (q *QueryParams) WithOffset(offset int) *QueryParams {
	q.Offset = offset

	return q
}

// WithSort appends sort fields; prefix a field with "-" for descending order.
func (q *QueryParams) WithSort(fields ...string) *QueryParams {
	q.Sort = append(q.Sort, fields...)

	return q
}

// WithFilter sets a raw JSON filter object.
func (q *QueryParams) WithFilter(filter string) *QueryParams {
	q.Filter = filter

	return q
}

// WithSearch sets a full text search term.
func (q *QueryParams) WithSearch(search string) *QueryParams {
	q.Search = search

	return q
}

// WithMeta requests a metadata block, e.g. "total_count".
func (q *QueryParams) WithMeta(meta string) *QueryParams {
	q.Meta = meta

	return q
}

// Clone returns a deep copy of the parameters.
func (q *QueryParams) Clone() *QueryParams {
	if q == nil {
		return NewQueryParams()
	}

	clone := *q
	clone.Fields = slices.Clone(q.Fields)
	clone.Sort = slices.Clone(q.Sort)

	return &clone
}

// ToValues converts the parameters to URL values.
//
// A paged request (Limit > 0) always carries its offset, including offset 0.
func (q *QueryParams) ToValues() url.Values {
	values := url.Values{}

	if len(q.Fields) > 0 {
		values.Set("fields", strings.Join(q.Fields, ","))
	}

	if q.Limit != 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}

	if q.Limit > 0 || q.Offset > 0 {
		values.Set("offset", strconv.Itoa(q.Offset))
	}

	if len(q.Sort) > 0 {
		values.Set("sort", strings.Join(q.Sort, ","))
	}

	if q.Filter != "" {
		values.Set("filter", q.Filter)
	}

	if q.Search != "" {
		values.Set("search", q.Search)
	}

	if q.Meta != "" {
		values.Set("meta", q.Meta)
	}

	return values
}
