package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/eallion/webstack-sync/internal/http"
	"github.com/eallion/webstack-sync/pkg/directus"
)

// Client talks to one Directus list endpoint.
type Client struct {
	httpClient   *http.Client
	tokenManager http.TokenManager
	endpoint     string
	logger       directus.Logger

	records *CollectionClient[directus.Record]
	files   *CollectionClient[directus.File]
}

// ValidateEndpoint normalizes and checks an endpoint URL. Only absolute
// http(s) URLs with a host are accepted.
func ValidateEndpoint(endpoint string) (string, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return "", directus.ErrEndpointRequired
	}

	u, err := url.ParseRequestURI(endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", directus.ErrInvalidEndpoint, endpoint, err)
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q", directus.ErrInvalidEndpoint, endpoint)
	}

	return strings.TrimSuffix(u.String(), "/"), nil
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *directus.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithHTTPTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, config.RetryWaitMin, config.RetryWaitMax))
	}

	return httpOpts
}

// New creates a client for config.Endpoint. The endpoint is validated before
// anything else, so a malformed URL never reaches the network.
func New(config *directus.Config) (*Client, error) {
	if config == nil {
		return nil, directus.ErrConfigRequired
	}

	endpoint, err := ValidateEndpoint(config.Endpoint)
	if err != nil {
		return nil, err
	}

	var tokenManager http.TokenManager
	if config.AccessToken != "" {
		tokenManager = &staticTokenManager{token: config.AccessToken}
	}

	httpClient := http.NewClient(endpoint, tokenManager, createHTTPClientOptions(config)...)

	client := &Client{
		httpClient:   httpClient,
		tokenManager: tokenManager,
		endpoint:     endpoint,
		logger:       config.Logger,
	}

	client.records = NewCollectionClient[directus.Record](httpClient, "records")
	client.files = NewCollectionClient[directus.File](httpClient, "files")

	return client, nil
}

// Endpoint returns the validated endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Authenticated reports whether requests carry a bearer token.
func (c *Client) Authenticated() bool {
	return c.tokenManager != nil
}

// Records lists the endpoint as open records.
func (c *Client) Records() *CollectionClient[directus.Record] {
	return c.records
}

// Files lists the endpoint as directus_files entries.
func (c *Client) Files() *CollectionClient[directus.File] {
	return c.files
}

// staticTokenManager provides a static token.
type staticTokenManager struct {
	token string
}

func (m *staticTokenManager) GetToken(ctx context.Context) (string, error) {
	return m.token, nil
}
