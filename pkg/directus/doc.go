// Package directus provides types and helpers for reading collections from
// a Directus headless CMS over its REST API.
//
// # Overview
//
// The package defines the record types returned by list endpoints, the
// query parameters those endpoints understand, the Directus error envelope,
// and an offset-based pagination iterator. A concrete HTTP implementation of
// the pagination client lives in internal/client.
//
// # Queries and pagination
//
// Directus list endpoints are paged with limit and offset. FetchAllPages
// walks an endpoint page by page until the server answers with an empty
// page:
//
//	params := directus.NewQueryParams().WithFields("*", "WebCategories.WebCategory_id.*")
//	records, err := directus.FetchAllPages(ctx, cli.Records(), "", params, nil)
//	if err != nil {
//	  // errors.Is(err, directus.ErrCollectionFailed) is always true here,
//	  // and records is nil: a failed collection never yields a partial list.
//	}
//
// The iterator pauses between two page requests (500ms by default) and issues
// exactly one request at a time.
//
// # Errors
//
// Non-2xx responses are returned as *ResponseError, which carries the HTTP
// status and the Directus error list. Use IsForbidden, IsUnauthorized and
// IsNotFound to classify them.
package directus
