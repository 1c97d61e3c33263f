package directus

import (
	"context"
	"fmt"
	"time"

	"github.com/eallion/webstack-sync/internal/constants"
)

// PaginationClient is implemented by clients that can fetch one page of a list endpoint.
type PaginationClient[T any] interface {
	ListWithPath(ctx context.Context, path string, params *QueryParams) (*ListResponse[T], error)
}

// PaginationOptions controls how pages are walked.
type PaginationOptions struct {
	// PageSize is sent as limit and added to the offset after every non-empty page.
	PageSize int
	// PageDelay is the pause between two page requests.
	PageDelay time.Duration
	// MaxPages stops after this many non-empty pages. Zero means no limit.
	MaxPages int
	// Logger receives progress notices. Optional.
	Logger Logger
}

// DefaultPaginationOptions returns the default pagination options.
func DefaultPaginationOptions() *PaginationOptions {
	return &PaginationOptions{
		PageSize:  constants.DefaultPageSize,
		PageDelay: constants.DefaultPageDelay,
	}
}

// PaginationIterator walks a list endpoint with limit/offset paging.
//
// Pages are requested one at a time, in order. The walk ends at the first
// empty page, or at the first failed request, in which case Err reports the
// failure and no further items are produced.
type PaginationIterator[T any] struct {
	ctx     context.Context
	client  PaginationClient[T]
	path    string
	params  *QueryParams
	options PaginationOptions

	offset  int
	pages   int
	total   int
	current []T
	index   int
	done    bool
	err     error
}

// NewPaginationIterator creates a new pagination iterator. Nil options use the defaults.
func NewPaginationIterator[T any](ctx context.Context, client PaginationClient[T], path string, params *QueryParams, options *PaginationOptions) *PaginationIterator[T] {
	opts := DefaultPaginationOptions()
	if options != nil {
		opts = options
	}

	base := params.Clone()

	return &PaginationIterator[T]{
		ctx:     ctx,
		client:  client,
		path:    path,
		params:  base,
		options: *opts,
		offset:  base.Offset,
	}
}

// HasNext reports whether another item is available, fetching the next page if needed.
func (it *PaginationIterator[T]) HasNext() bool {
	for it.index >= len(it.current) {
		if it.done {
			return false
		}

		it.fetchPage()
	}

	return true
}

// Next returns the next item.
func (it *PaginationIterator[T]) Next() (T, error) {
	var zero T

	if !it.HasNext() {
		if it.err != nil {
			return zero, it.err
		}

		return zero, ErrNoMoreItems
	}

	item := it.current[it.index]
	it.index++

	return item, nil
}

// Err returns the error that ended the walk, if any.
func (it *PaginationIterator[T]) Err() error {
	return it.err
}

// Pages returns the number of non-empty pages fetched so far.
func (it *PaginationIterator[T]) Pages() int {
	return it.pages
}

// All collects every remaining item. On failure it returns nil and the
// error; items collected before the failure are discarded.
func (it *PaginationIterator[T]) All() ([]T, error) {
	var all []T

	for it.HasNext() {
		all = append(all, it.current[it.index:]...)
		it.index = len(it.current)
	}

	if it.err != nil {
		return nil, it.err
	}

	if all == nil {
		all = []T{}
	}

	return all, nil
}

// ForEach calls fn for every remaining item, stopping at the first error.
func (it *PaginationIterator[T]) ForEach(fn func(T) error) error {
	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			return err
		}

		err = fn(item)
		if err != nil {
			return err
		}
	}

	return it.err
}

func (it *PaginationIterator[T]) fetchPage() {
	if it.client == nil {
		it.fail(ErrPaginationClientNil)

		return
	}

	if it.options.PageSize <= 0 {
		it.fail(fmt.Errorf("%w: %d", ErrInvalidPageSize, it.options.PageSize))

		return
	}

	if it.pages > 0 {
		err := sleep(it.ctx, it.options.PageDelay)
		if err != nil {
			it.fail(fmt.Errorf("waiting before offset %d: %w", it.offset, err))

			return
		}
	}

	params := it.params.Clone().WithLimit(it.options.PageSize).WithOffset(it.offset)

	resp, err := it.client.ListWithPath(it.ctx, it.path, params)
	if err != nil {
		it.fail(fmt.Errorf("fetching page at offset %d: %w", it.offset, err))

		return
	}

	if resp == nil || len(resp.Data) == 0 {
		it.done = true
		it.current = nil
		it.index = 0

		it.log("All items fetched", map[string]interface{}{
			"path":  it.path,
			"pages": it.pages,
			"total": it.total,
		})

		return
	}

	it.current = resp.Data
	it.index = 0
	it.pages++
	it.total += len(resp.Data)
	it.offset += it.options.PageSize

	it.log("Fetched page", map[string]interface{}{
		"path":  it.path,
		"items": len(resp.Data),
		"total": it.total,
	})

	if it.options.MaxPages > 0 && it.pages >= it.options.MaxPages {
		it.done = true
	}
}

func (it *PaginationIterator[T]) fail(err error) {
	it.err = fmt.Errorf("%w: %w", ErrCollectionFailed, err)
	it.done = true
	it.current = nil
	it.index = 0
}

func (it *PaginationIterator[T]) log(msg string, fields map[string]interface{}) {
	if it.options.Logger != nil {
		it.options.Logger.Info(msg, fields)
	}
}

// FetchAllPages fetches every page of a list endpoint and returns the items
// in server order. It never returns a partial result: on failure the slice
// is nil and the error wraps ErrCollectionFailed.
func FetchAllPages[T any](ctx context.Context, client PaginationClient[T], path string, params *QueryParams, options *PaginationOptions) ([]T, error) {
	return NewPaginationIterator(ctx, client, path, params, options).All()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
