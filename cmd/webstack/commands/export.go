package commands

import (
	"fmt"
	"time"

	"github.com/eallion/webstack-sync/internal/constants"
	"github.com/eallion/webstack-sync/internal/notify"
	"github.com/eallion/webstack-sync/internal/purge"
	"github.com/eallion/webstack-sync/internal/webstack"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ExportReport is the printable form of an export summary.
type ExportReport struct {
	Variant         string                   `json:"variant"                    yaml:"variant"`
	Files           int                      `json:"files"                      yaml:"files"`
	Records         int                      `json:"records"                    yaml:"records"`
	Pages           int                      `json:"pages"                      yaml:"pages"`
	Duration        string                   `json:"duration"                   yaml:"duration"`
	UnresolvedLogos []string                 `json:"unresolved_logos,omitempty" yaml:"unresolved_logos,omitempty"`
	Targets         []TargetReport           `json:"targets"                    yaml:"targets"`
	Categories      []webstack.CategoryCount `json:"categories"                 yaml:"categories"`
	PurgeJobID      string                   `json:"purge_job_id,omitempty"     yaml:"purge_job_id,omitempty"`
	RunID           string                   `json:"run_id,omitempty"           yaml:"run_id,omitempty"`
}

// TargetReport is one written target.
type TargetReport struct {
	Path   string `json:"path"            yaml:"path"`
	Format string `json:"format"          yaml:"format"`
	Bytes  int    `json:"bytes"           yaml:"bytes"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewExportReport converts a summary for output.
func NewExportReport(summary *webstack.Summary) ExportReport {
	report := ExportReport{
		Variant:         summary.Variant,
		Files:           summary.Files,
		Records:         summary.Records,
		Pages:           summary.Pages,
		Duration:        summary.Duration.Round(time.Millisecond).String(),
		UnresolvedLogos: summary.UnresolvedLogos,
		Categories:      webstack.SortedCategories(summary.Categories),
	}

	for _, result := range summary.Results {
		target := TargetReport{Path: result.Path, Format: string(result.Format), Bytes: result.Bytes}
		if result.Err != nil {
			target.Error = result.Err.Error()
		}

		report.Targets = append(report.Targets, target)
	}

	if summary.Purge != nil {
		report.PurgeJobID = summary.Purge.JobID
	}

	if summary.Event != nil {
		report.RunID = summary.Event.RunID
	}

	return report
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export Webstack links from Directus",
		Long: `Fetch every Webstack link from Directus, resolve logos to their file names,
coerce weights to integers and write the result to each export target.

By default logos are resolved through the files endpoint. With --expand the
links are requested with their logo file inlined, which needs an access token.`,
		Example: `  webstack export
  webstack export --expand --token $DIRECTUS_TOKEN
  webstack export --target static/webstack.json --purge`,
		RunE: runExport,
	}

	flags := cmd.Flags()
	flags.String("items-url", "", "Directus items endpoint (DIRECTUS_API_URL)")
	flags.String("files-url", "", "Directus files endpoint (DIRECTUS_FILES_URL)")
	flags.String("token", "", "Directus static access token (DIRECTUS_TOKEN)")
	flags.Bool("expand", false, "request logos inline instead of using the files endpoint")
	flags.StringSlice("target", nil, "export target file, repeatable (.yaml/.yml targets are written as YAML)")
	flags.Int("page-size", constants.DefaultPageSize, "records requested per page")
	flags.Duration("page-delay", constants.DefaultPageDelay, "pause between page requests")
	flags.Int("max-pages", 0, "stop after this many pages (0 for no limit)")
	flags.Int("retry-max", constants.LowRetryMax, "retries of a failed page request on 5xx, 429 or connection errors")
	flags.Bool("purge", false, "purge the EdgeOne cache after a successful export")
	flags.String("notify-nats", "", "NATS server URL to announce the export on")

	bindFlags(cmd, map[string]string{
		"directus.items_url":  "items-url",
		"directus.files_url":  "files-url",
		"directus.token":      "token",
		"directus.expand":     "expand",
		"export.targets":      "target",
		"directus.page_size":  "page-size",
		"directus.page_delay": "page-delay",
		"directus.max_pages":  "max-pages",
		"directus.retry_max":  "retry-max",
		"purge.enabled":       "purge",
		"notify.nats_url":     "notify-nats",
	})

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	config, err := LoadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	logger := NewLogger(cmd.ErrOrStderr(), config.Verbose, config.LogJSON)

	opts := exportOptions(config)
	opts.Logger = logger

	if err := opts.Validate(); err != nil {
		return err
	}

	if config.Purge.Enabled {
		purger, err := purge.New(purgeConfig(config), logger)
		if err != nil {
			return err
		}

		opts.Purger = purger
	}

	if config.Notify.NATSURL != "" {
		publisher, err := notify.Connect(config.Notify.NATSURL, config.Notify.Subject)
		if err != nil {
			return err
		}

		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Warn("Failed to close NATS connection", map[string]interface{}{"error": err.Error()})
			}
		}()

		opts.Publisher = publisher
	}

	exporter, err := webstack.New(opts)
	if err != nil {
		return err
	}

	summary, runErr := exporter.Run(cmd.Context())
	if summary != nil {
		if err := renderExportSummary(cmd.OutOrStdout(), config.Output, summary); err != nil {
			logger.Warn("Failed to render export summary", map[string]interface{}{"error": err.Error()})
		}
	}

	if runErr != nil {
		return fmt.Errorf("export failed: %w", runErr)
	}

	return nil
}

func exportOptions(config *Config) webstack.Options {
	return webstack.Options{
		ItemsURL:       config.Directus.ItemsURL,
		FilesURL:       config.Directus.FilesURL,
		AccessToken:    config.Directus.Token,
		Expand:         config.Directus.Expand,
		ItemFields:     config.Directus.ItemFields,
		ExpandedFields: config.Directus.ExpandedFields,
		FileFields:     config.Directus.FileFields,
		Targets:        config.Export.Targets,
		PageSize:       config.Directus.PageSize,
		PageDelay:      config.Directus.PageDelay,
		MaxPages:       config.Directus.MaxPages,
		HTTPTimeout:    config.Directus.Timeout,
		RetryMax:       config.Directus.RetryMax,
		RetryWaitMin:   config.Directus.RetryWaitMin,
		RetryWaitMax:   config.Directus.RetryWaitMax,
		UserAgent:      config.Directus.UserAgent,
		Debug:          config.Debug,
		Collection:     webstack.DefaultCollection,
	}
}

func purgeConfig(config *Config) *purge.Config {
	return &purge.Config{
		SecretID:     config.Purge.SecretID,
		SecretKey:    config.Purge.SecretKey,
		SessionToken: config.Purge.SessionToken,
		Region:       config.Purge.Region,
		Endpoint:     config.Purge.Endpoint,
		ZoneID:       config.Purge.ZoneID,
		Type:         config.Purge.Type,
		Targets:      config.Purge.Targets,
	}
}
