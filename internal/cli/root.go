// Package cli implements cbirctl, a command-line client of the retrieval engine.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	cytomine "github.com/Bangulli/cytomine/pkg/sdk"
)

const defaultBaseURL = "http://wsi-cbir:6001/api"

var (
	baseURL     string
	timeout     time.Duration
	legacyQuery string
	outputJSON  bool
)

var rootCmd = &cobra.Command{
	Use:   "cbirctl",
	Short: "Query and maintain a whole-slide image retrieval engine",
	Long: `cbirctl talks to a WSI content-based image retrieval engine.
It runs similarity searches and adds or removes slides from the engine's index.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", envOr("CBIR_URL", defaultBaseURL), "retrieval engine base URL")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 60*time.Second, "per-call timeout")
	rootCmd.PersistentFlags().StringVar(&legacyQuery, "legacy-query", "query.svs", "fixed query image of legacy-search")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output as JSON")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// newClient builds the SDK client from the persistent flags.
func newClient() (*cytomine.Client, error) {
	if baseURL == "" {
		return nil, errors.New("base URL not configured: set --base-url or CBIR_URL")
	}
	return cytomine.New(baseURL,
		cytomine.WithTimeout(timeout),
		cytomine.WithLegacyQuery(legacyQuery),
	)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
