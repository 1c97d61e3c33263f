package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/eallion/webstack-sync/internal/constants"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variables mapped to config keys.
const EnvPrefix = "WEBSTACK"

// Config represents the CLI configuration.
type Config struct {
	Directus DirectusConfig `json:"directus" mapstructure:"directus" yaml:"directus"`
	Export   ExportConfig   `json:"export"   mapstructure:"export"   yaml:"export"`
	Purge    PurgeConfig    `json:"purge"    mapstructure:"purge"    yaml:"purge"`
	Notify   NotifyConfig   `json:"notify"   mapstructure:"notify"   yaml:"notify"`

	Output  string `json:"output"   mapstructure:"output"   yaml:"output"`
	Verbose int    `json:"verbose"  mapstructure:"verbose"  yaml:"verbose"`
	LogJSON bool   `json:"log_json" mapstructure:"log-json" yaml:"log_json"`
	Debug   bool   `json:"debug"    mapstructure:"debug"    yaml:"debug"`
}

// DirectusConfig configures the Directus endpoints and paging.
type DirectusConfig struct {
	ItemsURL       string        `json:"items_url"       mapstructure:"items_url"       yaml:"items_url"`
	FilesURL       string        `json:"files_url"       mapstructure:"files_url"       yaml:"files_url"`
	Token          string        `json:"token"           mapstructure:"token"           yaml:"token"`
	Expand         bool          `json:"expand"          mapstructure:"expand"          yaml:"expand"`
	ItemFields     string        `json:"item_fields"     mapstructure:"item_fields"     yaml:"item_fields"`
	ExpandedFields string        `json:"expanded_fields" mapstructure:"expanded_fields" yaml:"expanded_fields"`
	FileFields     string        `json:"file_fields"     mapstructure:"file_fields"     yaml:"file_fields"`
	PageSize       int           `json:"page_size"       mapstructure:"page_size"       yaml:"page_size"`
	PageDelay      time.Duration `json:"page_delay"      mapstructure:"page_delay"      yaml:"page_delay"`
	MaxPages       int           `json:"max_pages"       mapstructure:"max_pages"       yaml:"max_pages"`
	Timeout        time.Duration `json:"timeout"         mapstructure:"timeout"         yaml:"timeout"`
	RetryMax       int           `json:"retry_max"       mapstructure:"retry_max"       yaml:"retry_max"`
	RetryWaitMin   time.Duration `json:"retry_wait_min"  mapstructure:"retry_wait_min"  yaml:"retry_wait_min"`
	RetryWaitMax   time.Duration `json:"retry_wait_max"  mapstructure:"retry_wait_max"  yaml:"retry_wait_max"`
	UserAgent      string        `json:"user_agent"      mapstructure:"user_agent"      yaml:"user_agent"`
}

// ExportConfig configures the export targets.
type ExportConfig struct {
	Targets []string `json:"targets" mapstructure:"targets" yaml:"targets"`
}

// PurgeConfig configures the EdgeOne cache purge.
type PurgeConfig struct {
	Enabled      bool     `json:"enabled"       mapstructure:"enabled"       yaml:"enabled"`
	SecretID     string   `json:"secret_id"     mapstructure:"secret_id"     yaml:"secret_id"`
	SecretKey    string   `json:"secret_key"    mapstructure:"secret_key"    yaml:"secret_key"`
	SessionToken string   `json:"session_token" mapstructure:"session_token" yaml:"session_token"`
	Region       string   `json:"region"        mapstructure:"region"        yaml:"region"`
	Endpoint     string   `json:"endpoint"      mapstructure:"endpoint"      yaml:"endpoint"`
	ZoneID       string   `json:"zone_id"       mapstructure:"zone_id"       yaml:"zone_id"`
	Type         string   `json:"type"          mapstructure:"type"          yaml:"type"`
	Targets      []string `json:"targets"       mapstructure:"targets"       yaml:"targets"`
}

// NotifyConfig configures the NATS export event.
type NotifyConfig struct {
	NATSURL string `json:"nats_url" mapstructure:"nats_url" yaml:"nats_url"`
	Subject string `json:"subject"  mapstructure:"subject"  yaml:"subject"`
}

// legacyEnv maps config keys to the environment variables the deployment
// scripts already export.
var legacyEnv = map[string][]string{
	"directus.items_url": {"DIRECTUS_API_URL"},
	"directus.files_url": {"DIRECTUS_FILES_URL"},
	"directus.token":     {"DIRECTUS_TOKEN"},
	"purge.secret_id":    {"COS_SECRET_ID", "TENCENTCLOUD_SECRET_ID"},
	"purge.secret_key":   {"COS_SECRET_KEY", "TENCENTCLOUD_SECRET_KEY"},
	"purge.zone_id":      {"TEO_SITE_ID"},
	"notify.nats_url":    {"NATS_URL"},
}

// SetDefaults registers every config key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("output", constants.FormatTable)
	v.SetDefault("verbose", 0)
	v.SetDefault("log-json", false)
	v.SetDefault("debug", false)

	v.SetDefault("directus.items_url", "")
	v.SetDefault("directus.files_url", "")
	v.SetDefault("directus.token", "")
	v.SetDefault("directus.expand", false)
	v.SetDefault("directus.item_fields", constants.WebstackFields)
	v.SetDefault("directus.expanded_fields", constants.WebstackExpandedFields)
	v.SetDefault("directus.file_fields", constants.FilesFields)
	v.SetDefault("directus.page_size", constants.DefaultPageSize)
	v.SetDefault("directus.page_delay", constants.DefaultPageDelay)
	v.SetDefault("directus.max_pages", 0)
	v.SetDefault("directus.timeout", constants.DefaultHTTPTimeout)
	v.SetDefault("directus.retry_max", constants.LowRetryMax)
	v.SetDefault("directus.retry_wait_min", constants.DefaultRetryWaitMin)
	v.SetDefault("directus.retry_wait_max", constants.DefaultRetryWaitMax)
	v.SetDefault("directus.user_agent", "")

	v.SetDefault("export.targets", []string{constants.DefaultDataFile, constants.DefaultStaticFile})

	v.SetDefault("purge.enabled", false)
	v.SetDefault("purge.secret_id", "")
	v.SetDefault("purge.secret_key", "")
	v.SetDefault("purge.session_token", "")
	v.SetDefault("purge.region", "")
	v.SetDefault("purge.endpoint", constants.DefaultPurgeEndpoint)
	v.SetDefault("purge.zone_id", "")
	v.SetDefault("purge.type", constants.DefaultPurgeType)
	v.SetDefault("purge.targets", []string{constants.DefaultPurgeTarget})

	v.SetDefault("notify.nats_url", "")
	v.SetDefault("notify.subject", constants.DefaultNotifySubject)
}

// BindEnvironment maps WEBSTACK_* variables and the legacy names onto keys.
// A WEBSTACK_* variable wins over its legacy name.
func BindEnvironment(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for key, names := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))

		if err := v.BindEnv(append([]string{key, prefixed}, names...)...); err != nil {
			return fmt.Errorf("binding environment for %s: %w", key, err)
		}
	}

	return nil
}

// LoadDotEnv loads a .env file into the process environment. A missing file
// is not an error; variables already set are kept.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("loading %s: %w", path, err)
	}

	return nil
}

// DefaultConfigDir returns $HOME/.webstack.
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}

	return filepath.Join(home, ".webstack"), nil
}

// LoadConfig decodes the effective configuration from v.
func LoadConfig(v *viper.Viper) (*Config, error) {
	var config Config

	err := v.Unmarshal(&config, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}

	config.Export.Targets = cleanList(config.Export.Targets)
	config.Purge.Targets = cleanList(config.Purge.Targets)

	switch config.Output {
	case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
	case "":
		config.Output = constants.FormatTable
	default:
		return nil, fmt.Errorf("%w: %q", constants.ErrInvalidOutputFlag, config.Output)
	}

	return &config, nil
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))

	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}

	return out
}

// Masked returns a copy of config with secrets replaced.
func (c Config) Masked() Config {
	c.Directus.Token = mask(c.Directus.Token)
	c.Purge.SecretID = mask(c.Purge.SecretID)
	c.Purge.SecretKey = mask(c.Purge.SecretKey)
	c.Purge.SessionToken = mask(c.Purge.SessionToken)

	return c
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}

	return constants.MaskedSecret
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect CLI configuration",
		Long:  "Inspect the effective webstack configuration after flags, environment and config file are merged",
	}

	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadConfig(viper.GetViper())
			if err != nil {
				return err
			}

			masked := config.Masked()

			return writeOutput(cmd.OutOrStdout(), config.Output, masked, func(w io.Writer) error {
				return displayConfigTable(w, &masked)
			})
		},
	}
}

func displayConfigTable(w io.Writer, config *Config) error {
	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")

	rows := [][]string{
		{"Items URL", orNone(config.Directus.ItemsURL)},
		{"Files URL", orNone(config.Directus.FilesURL)},
		{"Token", orNone(config.Directus.Token)},
		{"Expand Logos", strconv.FormatBool(config.Directus.Expand)},
		{"Page Size", strconv.Itoa(config.Directus.PageSize)},
		{"Page Delay", config.Directus.PageDelay.String()},
		{"Retry Max", strconv.Itoa(config.Directus.RetryMax)},
		{"Export Targets", orNone(strings.Join(config.Export.Targets, ", "))},
		{"Purge Enabled", strconv.FormatBool(config.Purge.Enabled)},
		{"Purge Zone", orNone(config.Purge.ZoneID)},
		{"Purge Targets", orNone(strings.Join(config.Purge.Targets, ", "))},
		{"Purge Secret ID", orNone(config.Purge.SecretID)},
		{"NATS URL", orNone(config.Notify.NATSURL)},
		{"NATS Subject", orNone(config.Notify.Subject)},
		{"Output", config.Output},
	}

	for _, row := range rows {
		_ = table.Append(row)
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// writeOutput renders value in the requested format, falling back to table.
func writeOutput(w io.Writer, format string, value any, table func(io.Writer) error) error {
	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return encoder.Encode(value)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)
		defer func() { _ = encoder.Close() }()

		return encoder.Encode(value)
	default:
		return table(w)
	}
}

func orNone(value string) string {
	if value == "" {
		return constants.None
	}

	return value
}
