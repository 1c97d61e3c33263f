package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/eallion/webstack-sync/internal/constants"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func newTestViper(t *testing.T) *viper.Viper {
	t.Helper()

	v := viper.New()
	SetDefaults(v)
	require.NoError(t, BindEnvironment(v))

	return v
}

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := LoadConfig(newTestViper(t))
	require.NoError(t, err)

	assert.Equal(t, constants.FormatTable, config.Output)
	assert.Equal(t, constants.DefaultPageSize, config.Directus.PageSize)
	assert.Equal(t, constants.DefaultPageDelay, config.Directus.PageDelay)
	assert.Equal(t, constants.LowRetryMax, config.Directus.RetryMax)
	assert.Equal(t, constants.WebstackFields, config.Directus.ItemFields)
	assert.Equal(t, []string{constants.DefaultDataFile, constants.DefaultStaticFile}, config.Export.Targets)
	assert.Equal(t, []string{constants.DefaultPurgeTarget}, config.Purge.Targets)
	assert.Equal(t, constants.DefaultPurgeType, config.Purge.Type)
	assert.Equal(t, constants.DefaultNotifySubject, config.Notify.Subject)
	assert.False(t, config.Purge.Enabled)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestLoadConfig_Environment(t *testing.T) {
	t.Run("legacy variable names", func(t *testing.T) {
		t.Setenv("DIRECTUS_API_URL", "https://cms.example.com/items/webstack")
		t.Setenv("DIRECTUS_FILES_URL", "https://cms.example.com/files")
		t.Setenv("DIRECTUS_TOKEN", "secret-token")
		t.Setenv("COS_SECRET_ID", "cos-id")
		t.Setenv("COS_SECRET_KEY", "cos-key")
		t.Setenv("TEO_SITE_ID", "zone-1")

		config, err := LoadConfig(newTestViper(t))
		require.NoError(t, err)

		assert.Equal(t, "https://cms.example.com/items/webstack", config.Directus.ItemsURL)
		assert.Equal(t, "https://cms.example.com/files", config.Directus.FilesURL)
		assert.Equal(t, "secret-token", config.Directus.Token)
		assert.Equal(t, "cos-id", config.Purge.SecretID)
		assert.Equal(t, "cos-key", config.Purge.SecretKey)
		assert.Equal(t, "zone-1", config.Purge.ZoneID)
	})

	t.Run("tencentcloud credential names", func(t *testing.T) {
		t.Setenv("TENCENTCLOUD_SECRET_ID", "tc-id")
		t.Setenv("TENCENTCLOUD_SECRET_KEY", "tc-key")

		config, err := LoadConfig(newTestViper(t))
		require.NoError(t, err)

		assert.Equal(t, "tc-id", config.Purge.SecretID)
		assert.Equal(t, "tc-key", config.Purge.SecretKey)
	})

	t.Run("prefixed variables win over legacy names", func(t *testing.T) {
		t.Setenv("DIRECTUS_API_URL", "https://legacy.example.com/items/webstack")
		t.Setenv("WEBSTACK_DIRECTUS_ITEMS_URL", "https://new.example.com/items/webstack")

		config, err := LoadConfig(newTestViper(t))
		require.NoError(t, err)

		assert.Equal(t, "https://new.example.com/items/webstack", config.Directus.ItemsURL)
	})

	t.Run("durations and lists from strings", func(t *testing.T) {
		t.Setenv("WEBSTACK_DIRECTUS_PAGE_DELAY", "250ms")
		t.Setenv("WEBSTACK_EXPORT_TARGETS", "a.json, b.yaml,,")
		t.Setenv("WEBSTACK_PURGE_TARGETS", "s.example.com,cdn.example.com")

		config, err := LoadConfig(newTestViper(t))
		require.NoError(t, err)

		assert.Equal(t, 250*time.Millisecond, config.Directus.PageDelay)
		assert.Equal(t, []string{"a.json", "b.yaml"}, config.Export.Targets)
		assert.Equal(t, []string{"s.example.com", "cdn.example.com"}, config.Purge.Targets)
	})

	t.Run("invalid output format", func(t *testing.T) {
		t.Setenv("WEBSTACK_OUTPUT", "xml")

		_, err := LoadConfig(newTestViper(t))
		require.ErrorIs(t, err, constants.ErrInvalidOutputFlag)
	})
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
directus:
  items_url: https://cms.example.com/items/webstack
  files_url: https://cms.example.com/files
  page_size: 50
  page_delay: 1s
export:
  targets:
    - data/webstack.json
purge:
  enabled: true
  zone_id: zone-9
`), 0o600))

	v := newTestViper(t)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	config, err := LoadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, 50, config.Directus.PageSize)
	assert.Equal(t, time.Second, config.Directus.PageDelay)
	assert.Equal(t, []string{"data/webstack.json"}, config.Export.Targets)
	assert.True(t, config.Purge.Enabled)
	assert.Equal(t, "zone-9", config.Purge.ZoneID)
	assert.Equal(t, constants.DefaultPurgeEndpoint, config.Purge.Endpoint)
}

func TestLoadDotEnv(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("WEBSTACK_TEST_DOTENV=loaded\n"), 0o600))

	t.Cleanup(func() { _ = os.Unsetenv("WEBSTACK_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("WEBSTACK_TEST_DOTENV"))
}

func TestConfig_Masked(t *testing.T) {
	t.Parallel()

	config := Config{}
	config.Directus.Token = "token"
	config.Purge.SecretID = "id"
	config.Purge.SecretKey = "key"
	config.Directus.ItemsURL = "https://cms.example.com/items/webstack"

	masked := config.Masked()
	assert.Equal(t, constants.MaskedSecret, masked.Directus.Token)
	assert.Equal(t, constants.MaskedSecret, masked.Purge.SecretID)
	assert.Equal(t, constants.MaskedSecret, masked.Purge.SecretKey)
	assert.Empty(t, masked.Purge.SessionToken)
	assert.Equal(t, config.Directus.ItemsURL, masked.Directus.ItemsURL)
	assert.Equal(t, "token", config.Directus.Token)
}

func TestWriteOutput(t *testing.T) {
	t.Parallel()

	value := VersionInfo{Version: "1.2.3", Commit: "abc", Built: "today"}

	var jsonOut bytes.Buffer
	require.NoError(t, writeOutput(&jsonOut, constants.FormatJSON, value, nil))

	var decoded VersionInfo
	require.NoError(t, json.Unmarshal(jsonOut.Bytes(), &decoded))
	assert.Equal(t, value, decoded)

	var yamlOut bytes.Buffer
	require.NoError(t, writeOutput(&yamlOut, constants.FormatYAML, value, nil))
	require.NoError(t, yaml.Unmarshal(yamlOut.Bytes(), &decoded))
	assert.Equal(t, value, decoded)

	var tableOut bytes.Buffer

	called := false
	require.NoError(t, writeOutput(&tableOut, constants.FormatTable, value, func(w io.Writer) error {
		called = true
		_, err := w.Write([]byte("table"))

		return err
	}))
	assert.True(t, called)
	assert.Equal(t, "table", tableOut.String())
}
