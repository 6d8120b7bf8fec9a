package cli

import (
	"errors"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var errDegraded = errors.New("retrieval engine is degraded")

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the retrieval engine is reachable",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, _ []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	h := client.Health(cmd.Context())

	if outputJSON {
		if err := printJSON(cmd, map[string]any{"status": h.Status, "checks": h.Checks}); err != nil {
			return err
		}
	} else {
		cmd.Printf("status: %s\n", paint(h.Status))
		names := make([]string, 0, len(h.Checks))
		for name := range h.Checks {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			cmd.Printf("  %s: %s\n", name, paint(h.Checks[name]))
		}
	}

	if h.Status != "ok" {
		return errDegraded
	}
	return nil
}

// paint colors a health value green when ok and red otherwise.
// Colors are dropped when stdout is not a terminal.
func paint(v string) string {
	if v == "ok" {
		return color.GreenString(v)
	}
	return color.RedString(v)
}
