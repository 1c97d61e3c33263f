package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/eallion/webstack-sync/internal/constants"
	"github.com/eallion/webstack-sync/internal/purge"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewPurgeCommand creates the purge command.
func NewPurgeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Purge the EdgeOne cache",
		Long: `Submit one EdgeOne (TEO) cache purge task for the configured zone and hosts.

The task is submitted once and its response is printed; completion is not
awaited. Credentials are read from COS_SECRET_ID and COS_SECRET_KEY (or the
TENCENTCLOUD_* equivalents), the zone from TEO_SITE_ID.`,
		Example: `  webstack purge
  webstack purge --zone zone-2abc --host s.example.com --host cdn.example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadConfig(viper.GetViper())
			if err != nil {
				return err
			}

			logger := NewLogger(cmd.ErrOrStderr(), config.Verbose, config.LogJSON)

			purger, err := purge.New(purgeConfig(config), logger)
			if err != nil {
				return err
			}

			result, err := purger.Purge(cmd.Context())
			if err != nil {
				return err
			}

			logger.Debug("Purge response", map[string]interface{}{"raw": result.Raw})

			return writeOutput(cmd.OutOrStdout(), config.Output, result, func(w io.Writer) error {
				return displayPurgeTable(w, result)
			})
		},
	}

	flags := cmd.Flags()
	flags.String("zone", "", "EdgeOne zone ID (TEO_SITE_ID)")
	flags.StringSlice("host", nil, "host to purge, repeatable (default "+constants.DefaultPurgeTarget+")")
	flags.String("type", constants.DefaultPurgeType, "purge type")
	flags.String("region", "", "Tencent Cloud region")

	bindFlags(cmd, map[string]string{
		"purge.zone_id": "zone",
		"purge.targets": "host",
		"purge.type":    "type",
		"purge.region":  "region",
	})

	return cmd
}

func displayPurgeTable(w io.Writer, result *purge.Result) error {
	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")

	_ = table.Append([]string{"Job ID", orNone(result.JobID)})
	_ = table.Append([]string{"Request ID", orNone(result.RequestID)})

	reasons := make([]string, 0, len(result.Failed))
	for reason := range result.Failed {
		reasons = append(reasons, reason)
	}

	sort.Strings(reasons)

	for _, reason := range reasons {
		_ = table.Append([]string{"Failed: " + reason, strings.Join(result.Failed[reason], ", ")})
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}
