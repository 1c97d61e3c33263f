package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	. "github.com/eallion/webstack-sync/internal/client"
	"github.com/eallion/webstack-sync/pkg/directus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires config", func(t *testing.T) {
		t.Parallel()

		_, err := New(nil)
		require.ErrorIs(t, err, directus.ErrConfigRequired)
	})

	t.Run("requires endpoint", func(t *testing.T) {
		t.Parallel()

		_, err := New(&directus.Config{})
		require.ErrorIs(t, err, directus.ErrEndpointRequired)
	})

	t.Run("rejects malformed endpoints", func(t *testing.T) {
		t.Parallel()

		for _, endpoint := range []string{
			"cms.example.com/items/webstack",
			"ftp://cms.example.com/items/webstack",
			"https://",
			"not a url",
			"/items/webstack",
		} {
			_, err := New(&directus.Config{Endpoint: endpoint})
			require.ErrorIs(t, err, directus.ErrInvalidEndpoint, endpoint)
		}
	})

	t.Run("creates client with access token", func(t *testing.T) {
		t.Parallel()

		client, err := New(&directus.Config{
			Endpoint:    "https://cms.example.com/items/webstack/",
			AccessToken: "test-token",
		})
		require.NoError(t, err)
		assert.Equal(t, "https://cms.example.com/items/webstack", client.Endpoint())
		assert.True(t, client.Authenticated())
		assert.NotNil(t, client.Records())
		assert.NotNil(t, client.Files())
	})

	t.Run("creates client without authentication", func(t *testing.T) {
		t.Parallel()

		client, err := New(&directus.Config{Endpoint: "http://localhost:8055/files"})
		require.NoError(t, err)
		assert.False(t, client.Authenticated())
	})
}

func TestValidateEndpoint_NoRequestForInvalidURL(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	_, err := New(&directus.Config{Endpoint: server.Listener.Addr().String()})
	require.Error(t, err)
	assert.Equal(t, int32(0), calls.Load())
}

func TestCollectionClient_Records(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/items/webstack", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "*,WebCategories.WebCategory_id.*", r.URL.Query().Get("fields"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Equal(t, "0", r.URL.Query().Get("offset"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":1,"title":"GitHub","weight":"10","rating":4.5}]}`))
	}))
	defer server.Close()

	client, err := New(&directus.Config{Endpoint: server.URL + "/items/webstack", AccessToken: "test-token"})
	require.NoError(t, err)

	params := directus.NewQueryParams().
		WithFieldSelector("*,WebCategories.WebCategory_id.*").
		WithLimit(100)

	list, err := client.Records().List(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, list.Data, 1)

	record := list.Data[0]
	assert.Equal(t, "GitHub", record["title"])
	assert.Equal(t, "10", record["weight"])
	assert.Equal(t, json.Number("1"), record["id"])
	assert.Equal(t, json.Number("4.5"), record["rating"])
}

func TestCollectionClient_Files(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files", r.URL.Path)
		assert.Equal(t, "id,filename_disk", r.URL.Query().Get("fields"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []directus.File{
				{ID: "f1", FilenameDisk: "logo1.png"},
				{ID: "f2", FilenameDisk: "logo2.svg"},
			},
		})
	}))
	defer server.Close()

	client, err := New(&directus.Config{Endpoint: server.URL + "/files"})
	require.NoError(t, err)

	list, err := client.Files().List(context.Background(), directus.NewQueryParams().WithFieldSelector("id,filename_disk"))
	require.NoError(t, err)
	assert.Equal(t, []directus.File{
		{ID: "f1", FilenameDisk: "logo1.png"},
		{ID: "f2", FilenameDisk: "logo2.svg"},
	}, list.Data)
}

func TestCollectionClient_Errors(t *testing.T) {
	t.Parallel()

	t.Run("non success status", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"errors":[{"message":"Invalid user credentials.","extensions":{"code":"INVALID_CREDENTIALS"}}]}`))
		}))
		defer server.Close()

		client, err := New(&directus.Config{Endpoint: server.URL})
		require.NoError(t, err)

		_, err = client.Records().List(context.Background(), nil)
		require.Error(t, err)
		assert.True(t, directus.IsUnauthorized(err))
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":[`))
		}))
		defer server.Close()

		client, err := New(&directus.Config{Endpoint: server.URL})
		require.NoError(t, err)

		_, err = client.Records().List(context.Background(), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing records list response")
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestFetchAllPages_OverHTTP(t *testing.T) {
	t.Parallel()

	const total = 7

	t.Run("collects every page in order", func(t *testing.T) {
		t.Parallel()

		var requests atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)

			offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
			limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

			data := []map[string]any{}
			for i := offset; i < offset+limit && i < total; i++ {
				data = append(data, map[string]any{"id": i})
			}

			_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
		}))
		defer server.Close()

		client, err := New(&directus.Config{Endpoint: server.URL})
		require.NoError(t, err)

		records, err := directus.FetchAllPages[directus.Record](
			context.Background(), client.Records(), "", nil, &directus.PaginationOptions{PageSize: 3},
		)
		require.NoError(t, err)
		require.Len(t, records, total)

		for i, record := range records {
			assert.Equal(t, json.Number(strconv.Itoa(i)), record["id"])
		}

		assert.Equal(t, int32(4), requests.Load())
	})

	t.Run("a failing page yields no data", func(t *testing.T) {
		t.Parallel()

		var requests atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requests.Add(1) == 2 {
				w.WriteHeader(http.StatusInternalServerError)

				return
			}

			_, _ = w.Write([]byte(`{"data":[{"id":1},{"id":2},{"id":3}]}`))
		}))
		defer server.Close()

		client, err := New(&directus.Config{Endpoint: server.URL})
		require.NoError(t, err)

		records, err := directus.FetchAllPages[directus.Record](
			context.Background(), client.Records(), "", nil, &directus.PaginationOptions{PageSize: 3},
		)
		require.ErrorIs(t, err, directus.ErrCollectionFailed)
		assert.Nil(t, records)
		assert.Equal(t, int32(2), requests.Load())
	})
}
