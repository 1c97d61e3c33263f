package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/eallion/webstack-sync/internal/http"
	"github.com/eallion/webstack-sync/pkg/directus"
)

// CollectionClient lists the items of a Directus endpoint as T.
type CollectionClient[T any] struct {
	httpClient *http.Client
	name       string
}

// NewCollectionClient creates a new generic collection client.
func NewCollectionClient[T any](httpClient *http.Client, name string) *CollectionClient[T] {
	return &CollectionClient[T]{
		httpClient: httpClient,
		name:       name,
	}
}

// List fetches one page from the endpoint itself.
func (c *CollectionClient[T]) List(ctx context.Context, params *directus.QueryParams) (*directus.ListResponse[T], error) {
	return c.ListWithPath(ctx, "", params)
}

// ListWithPath implements directus.PaginationClient.
func (c *CollectionClient[T]) ListWithPath(ctx context.Context, path string, params *directus.QueryParams) (*directus.ListResponse[T], error) {
	var query url.Values
	if params != nil {
		query = params.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", c.name, err)
	}

	list, err := directus.DecodeListResponse[T](resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s list response: %w", c.name, err)
	}

	return list, nil
}

var (
	_ directus.PaginationClient[directus.Record] = (*CollectionClient[directus.Record])(nil)
	_ directus.PaginationClient[directus.File]   = (*CollectionClient[directus.File])(nil)
)
