package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/eallion/webstack-sync/internal/constants"
	"github.com/eallion/webstack-sync/internal/export"
	"github.com/eallion/webstack-sync/internal/webstack"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViper(t *testing.T) {
	t.Helper()

	viper.Reset()
	SetDefaults(viper.GetViper())
	require.NoError(t, BindEnvironment(viper.GetViper()))
	t.Cleanup(viper.Reset)
}

func newDirectusServer(t *testing.T, requests *atomic.Int32) *httptest.Server {
	t.Helper()

	files := []map[string]any{{"id": "f1", "filename_disk": "github.png"}}
	items := []map[string]any{
		{"id": 1, "title": "GitHub", "logo": "f1", "weight": "10",
			"WebCategories": []any{map[string]any{"WebCategory_id": map[string]any{"name": "Dev", "weight": "2"}}}},
		{"id": 2, "title": "Blog", "logo": "f2", "weight": "3"},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)

		source := items
		if r.URL.Path == "/files" {
			source = files
		}

		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

		page := []map[string]any{}
		if offset < len(source) {
			page = source[offset:]
		}

		_ = json.NewEncoder(w).Encode(map[string]any{"data": page})
	}))
	t.Cleanup(server.Close)

	return server
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestExportCommand(t *testing.T) {
	t.Run("exports to every target", func(t *testing.T) {
		resetViper(t)

		var requests atomic.Int32

		server := newDirectusServer(t, &requests)
		dir := t.TempDir()
		primary := filepath.Join(dir, "assets", "data", "webstack.json")
		mirror := filepath.Join(dir, "static", "webstack.yaml")

		viper.Set("output", constants.FormatJSON)

		cmd := NewExportCommand()
		cmd.SetArgs([]string{
			"--items-url", server.URL + "/items/webstack",
			"--files-url", server.URL + "/files",
			"--target", primary,
			"--target", mirror,
			"--page-delay", "0s",
		})

		var out, errOut bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&errOut)

		require.NoError(t, cmd.Execute())

		var report ExportReport
		require.NoError(t, json.Unmarshal(out.Bytes(), &report))
		assert.Equal(t, webstack.VariantLookup, report.Variant)
		assert.Equal(t, 2, report.Records)
		assert.Equal(t, 1, report.Files)
		assert.Equal(t, []string{"f2"}, report.UnresolvedLogos)
		require.Len(t, report.Targets, 2)
		assert.Equal(t, string(export.FormatYAML), report.Targets[1].Format)

		data, err := os.ReadFile(primary)
		require.NoError(t, err)

		var records []map[string]any
		require.NoError(t, json.Unmarshal(data, &records))
		require.Len(t, records, 2)
		assert.Equal(t, "github.png", records[0]["logo"])
		assert.InDelta(t, 10, records[0]["weight"], 0)

		_, err = os.Stat(mirror)
		require.NoError(t, err)

		assert.Equal(t, int32(4), requests.Load())
	})

	t.Run("missing endpoint fails before any request", func(t *testing.T) {
		resetViper(t)

		var requests atomic.Int32

		server := newDirectusServer(t, &requests)

		cmd := NewExportCommand()
		cmd.SetArgs([]string{"--files-url", server.URL + "/files", "--target", filepath.Join(t.TempDir(), "out.json")})
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})

		err := cmd.Execute()
		require.ErrorIs(t, err, constants.ErrItemsURLRequired)
		assert.Zero(t, requests.Load())
	})

	t.Run("purge requires credentials before any request", func(t *testing.T) {
		resetViper(t)

		var requests atomic.Int32

		server := newDirectusServer(t, &requests)

		cmd := NewExportCommand()
		cmd.SetArgs([]string{
			"--items-url", server.URL + "/items/webstack",
			"--files-url", server.URL + "/files",
			"--target", filepath.Join(t.TempDir(), "out.json"),
			"--purge",
		})
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})

		err := cmd.Execute()
		require.ErrorIs(t, err, constants.ErrPurgeZoneRequired)
		assert.Zero(t, requests.Load())
	})
}

func TestRenderExportSummary_NonTerminal(t *testing.T) {
	t.Parallel()

	summary := &webstack.Summary{
		Variant: webstack.VariantExpanded,
		Records: 12,
		Results: []export.Result{{Path: "a.json", Format: export.FormatJSON, Bytes: 10}},
	}

	var buf bytes.Buffer
	require.NoError(t, renderExportSummary(&buf, constants.FormatTable, summary))
	assert.Equal(t, "Exported 12 records to 1 targets (expanded variant) in 0s\n", buf.String())
}
