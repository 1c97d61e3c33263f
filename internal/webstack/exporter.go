// Package webstack runs the Directus → JSON export of the Webstack links.
//
// A run is strictly sequential: the file lookup (unless logos are expanded
// inline), then the link records, then normalization, then one write per
// target. A collection failure aborts the run before anything is written.
package webstack

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eallion/webstack-sync/internal/client"
	"github.com/eallion/webstack-sync/internal/constants"
	"github.com/eallion/webstack-sync/internal/export"
	"github.com/eallion/webstack-sync/internal/normalize"
	"github.com/eallion/webstack-sync/internal/notify"
	"github.com/eallion/webstack-sync/internal/purge"
	"github.com/eallion/webstack-sync/pkg/directus"
)

// Variant names.
const (
	VariantLookup   = "lookup"
	VariantExpanded = "expanded"
)

// DefaultCollection is the collection name reported in events.
const DefaultCollection = "webstack"

// Purger submits a cache purge after a successful export.
type Purger interface {
	Purge(ctx context.Context) (*purge.Result, error)
}

// Options configures an Exporter.
type Options struct {
	ItemsURL    string
	FilesURL    string
	AccessToken string

	// Expand requests logos inline as file objects instead of resolving
	// them through the files endpoint. It requires AccessToken.
	Expand bool

	ItemFields     string
	ExpandedFields string
	FileFields     string

	Targets []string

	PageSize  int
	PageDelay time.Duration
	MaxPages  int

	HTTPTimeout  time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	UserAgent    string
	Debug        bool

	Collection string

	Logger    directus.Logger
	Purger    Purger
	Publisher notify.Publisher
}

// Summary reports what a run did.
type Summary struct {
	Variant         string
	Files           int
	Records         int
	Pages           int
	UnresolvedLogos []string
	Categories      map[string]int
	Results         []export.Result
	Purge           *purge.Result
	Event           *notify.Event
	Duration        time.Duration
}

// Exporter runs exports for one configuration.
type Exporter struct {
	opts   Options
	items  *client.Client
	files  *client.Client
	writer *export.Writer
}

// Validate checks the required settings and endpoint URLs without making
// any request.
func (o *Options) Validate() error {
	if o.ItemsURL == "" {
		return constants.ErrItemsURLRequired
	}

	if o.Expand && o.AccessToken == "" {
		return constants.ErrTokenRequired
	}

	if !o.Expand && o.FilesURL == "" {
		return constants.ErrFilesURLRequired
	}

	if _, err := client.ValidateEndpoint(o.ItemsURL); err != nil {
		return fmt.Errorf("items endpoint: %w", err)
	}

	if !o.Expand {
		if _, err := client.ValidateEndpoint(o.FilesURL); err != nil {
			return fmt.Errorf("files endpoint: %w", err)
		}
	}

	return nil
}

// New validates opts and prepares the clients. No request is made.
func New(opts Options) (*Exporter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	applyDefaults(&opts)

	items, err := client.New(opts.clientConfig(opts.ItemsURL))
	if err != nil {
		return nil, fmt.Errorf("items endpoint: %w", err)
	}

	e := &Exporter{opts: opts, items: items}

	if !opts.Expand {
		e.files, err = client.New(opts.clientConfig(opts.FilesURL))
		if err != nil {
			return nil, fmt.Errorf("files endpoint: %w", err)
		}
	}

	e.writer, err = export.NewWriter(opts.Targets,
		export.WithIndent(constants.DefaultJSONIndent),
		export.WithLogger(opts.Logger),
	)
	if err != nil {
		return nil, err
	}

	return e, nil
}

func applyDefaults(opts *Options) {
	if opts.ItemFields == "" {
		opts.ItemFields = constants.WebstackFields
	}

	if opts.ExpandedFields == "" {
		opts.ExpandedFields = constants.WebstackExpandedFields
	}

	if opts.FileFields == "" {
		opts.FileFields = constants.FilesFields
	}

	if opts.PageSize <= 0 {
		opts.PageSize = constants.DefaultPageSize
	}

	if opts.PageDelay < 0 {
		opts.PageDelay = 0
	}

	if opts.Collection == "" {
		opts.Collection = DefaultCollection
	}
}

func (o *Options) clientConfig(endpoint string) *directus.Config {
	return &directus.Config{
		Endpoint:     endpoint,
		AccessToken:  o.AccessToken,
		HTTPTimeout:  o.HTTPTimeout,
		RetryMax:     o.RetryMax,
		RetryWaitMin: o.RetryWaitMin,
		RetryWaitMax: o.RetryWaitMax,
		Debug:        o.Debug,
		Logger:       o.Logger,
		UserAgent:    o.UserAgent,
	}
}

func (o *Options) pagination() *directus.PaginationOptions {
	return &directus.PaginationOptions{
		PageSize:  o.PageSize,
		PageDelay: o.PageDelay,
		MaxPages:  o.MaxPages,
		Logger:    o.Logger,
	}
}

// Variant returns the export variant this exporter runs.
func (e *Exporter) Variant() string {
	if e.opts.Expand {
		return VariantExpanded
	}

	return VariantLookup
}

// Targets returns the export targets.
func (e *Exporter) Targets() []string {
	return e.writer.Targets()
}

// Run performs one export. On a collection failure nothing is written and
// the returned summary is nil. Write, purge and notify failures return the
// summary gathered so far together with the error.
func (e *Exporter) Run(ctx context.Context) (*Summary, error) {
	started := time.Now()
	summary := &Summary{Variant: e.Variant()}

	resolver, err := e.resolver(ctx, summary)
	if err != nil {
		return nil, err
	}

	fields := e.opts.ItemFields
	if e.opts.Expand {
		fields = e.opts.ExpandedFields
	}

	iterator := directus.NewPaginationIterator[directus.Record](
		ctx, e.items.Records(), "", directus.NewQueryParams().WithFieldSelector(fields), e.opts.pagination(),
	)

	records, err := iterator.All()
	if err != nil {
		e.log().Error("Failed to fetch webstack records", map[string]interface{}{"error": err.Error()})

		return nil, fmt.Errorf("%w: %w", constants.ErrWebstackUnavailable, err)
	}

	summary.Pages = iterator.Pages()

	if lookup, ok := resolver.(normalize.LookupResolver); ok {
		summary.UnresolvedLogos = normalize.UnresolvedLogos(records, lookup)
		if len(summary.UnresolvedLogos) > 0 {
			e.log().Debug("Logos without a matching file are kept as is", map[string]interface{}{
				"count": len(summary.UnresolvedLogos),
				"ids":   summary.UnresolvedLogos,
			})
		}
	}

	normalized := normalize.Normalize(records, resolver)
	summary.Records = len(normalized)
	summary.Categories = CountCategories(normalized)

	summary.Results, err = e.writer.Write(normalized)
	summary.Duration = time.Since(started)

	if err != nil {
		return summary, fmt.Errorf("writing export: %w", err)
	}

	e.log().Info("Export finished", map[string]interface{}{
		"variant": summary.Variant,
		"records": summary.Records,
		"targets": len(summary.Results),
	})

	if err := e.afterWrite(ctx, summary); err != nil {
		return summary, err
	}

	return summary, nil
}

func (e *Exporter) resolver(ctx context.Context, summary *Summary) (normalize.LogoResolver, error) {
	if e.opts.Expand {
		return normalize.InlineResolver{}, nil
	}

	files, err := directus.FetchAllPages[directus.File](
		ctx, e.files.Files(), "", directus.NewQueryParams().WithFieldSelector(e.opts.FileFields), e.opts.pagination(),
	)
	if err != nil {
		e.log().Error("Failed to fetch files", map[string]interface{}{"error": err.Error()})

		return nil, fmt.Errorf("%w: %w", constants.ErrFilesUnavailable, err)
	}

	summary.Files = len(files)

	return normalize.LookupResolver(normalize.BuildFileLookup(files)), nil
}

func (e *Exporter) afterWrite(ctx context.Context, summary *Summary) error {
	var errs []error

	if e.opts.Purger != nil {
		result, err := e.opts.Purger.Purge(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("purging cache: %w", err))
		} else {
			summary.Purge = result
		}
	}

	if e.opts.Publisher != nil {
		event := notify.NewEvent(e.opts.Collection, summary.Records, e.writer.Targets())
		event.Purged = summary.Purge != nil

		if err := e.opts.Publisher.Publish(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("publishing export event: %w", err))
		} else {
			summary.Event = &event
		}
	}

	return errors.Join(errs...)
}

func (e *Exporter) log() directus.Logger {
	if e.opts.Logger == nil {
		return nopLogger{}
	}

	return e.opts.Logger
}

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{}) {}
func (nopLogger) Info(string, map[string]interface{})  {}
func (nopLogger) Warn(string, map[string]interface{})  {}
func (nopLogger) Error(string, map[string]interface{}) {}
