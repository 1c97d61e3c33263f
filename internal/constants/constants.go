package constants

import "time"

// File and directory permissions.
const (
	// OutputDirPerm is the permission for directories created for export targets.
	OutputDirPerm = 0750

	// OutputFilePerm is the permission for exported data files. They are served
	// as static assets, so they stay world readable.
	OutputFilePerm = 0644
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits.
const (
	// LowRetryMax is the default number of retries for transient list failures.
	LowRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Pagination.
const (
	// DefaultPageSize is the number of items requested per page.
	DefaultPageSize = 100

	// DefaultPageDelay is the pause between two page requests.
	DefaultPageDelay = 500 * time.Millisecond
)

// Directus field selectors.
const (
	// WebstackFields expands the category relation inline.
	WebstackFields = "*,WebCategories.WebCategory_id.*"

	// WebstackExpandedFields also expands the logo file relation, so no
	// separate files lookup is needed.
	WebstackExpandedFields = "*,logo.*,WebCategories.WebCategory_id.*"

	// FilesFields selects only what the logo lookup needs.
	FilesFields = "id,filename_disk"
)

// Export defaults.
const (
	// DefaultDataFile is the primary export target.
	DefaultDataFile = "assets/data/webstack.json"

	// DefaultStaticFile mirrors the export into the static assets tree.
	DefaultStaticFile = "static/webstack.json"

	// DefaultJSONIndent is the indentation used for exported documents.
	DefaultJSONIndent = "  "
)

// Cache purge defaults.
const (
	// DefaultPurgeEndpoint is the Tencent Cloud EdgeOne API host.
	DefaultPurgeEndpoint = "teo.tencentcloudapi.com"

	// DefaultPurgeType purges everything cached for a host.
	DefaultPurgeType = "purge_host"

	// DefaultPurgeTarget is the site host purged after an export.
	DefaultPurgeTarget = "s.eallion.com"
)

// Notification defaults.
const (
	// DefaultNotifySubject is the NATS subject export events are published on.
	DefaultNotifySubject = "webstack.exported"

	// NotifyFlushTimeout bounds how long publishing waits for the server.
	NotifyFlushTimeout = 5 * time.Second
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// None is used when no value is present.
	None = "none"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"
)
