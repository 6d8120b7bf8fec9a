package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	cytomine "github.com/Bangulli/cytomine/pkg/sdk"
)

var (
	searchK         int
	searchQuery     string
	searchDatasets  string
	searchStaining  string
	searchOrgan     string
	searchSpecies   string
	searchDiagnosis string
	legacyKBest     int
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Find slides similar to a query image",
	Long: `Runs a filtered similarity search. Blank filters are not sent to the engine.
Matches are printed in the engine's rank order.`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

var legacySearchCmd = &cobra.Command{
	Use:   "legacy-search",
	Short: "Run the fixed-query search",
	Long:  `Runs the legacy search against the fixed query image set by --legacy-query.`,
	Args:  cobra.NoArgs,
	RunE:  runLegacySearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchK, "k", 10, "number of matches to return")
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "query image path")
	searchCmd.Flags().StringVar(&searchDatasets, "datasets", "", "comma-separated dataset names")
	searchCmd.Flags().StringVar(&searchStaining, "staining", "", "staining filter")
	searchCmd.Flags().StringVar(&searchOrgan, "organ", "", "organ filter")
	searchCmd.Flags().StringVar(&searchSpecies, "species", "", "species filter")
	searchCmd.Flags().StringVar(&searchDiagnosis, "diagnosis", "", "diagnosis filter")
	rootCmd.AddCommand(searchCmd)

	legacySearchCmd.Flags().IntVar(&legacyKBest, "k-best", 10, "number of matches to return")
	rootCmd.AddCommand(legacySearchCmd)
}

func runSearch(cmd *cobra.Command, _ []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	res, err := client.Search(cmd.Context(), cytomine.SearchParams{
		K:         searchK,
		Query:     searchQuery,
		Datasets:  splitList(searchDatasets),
		Staining:  searchStaining,
		Organ:     searchOrgan,
		Species:   searchSpecies,
		Diagnosis: searchDiagnosis,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return outputResult(cmd, &res)
}

func runLegacySearch(cmd *cobra.Command, _ []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	res, err := client.LegacySearch(cmd.Context(), legacyKBest)
	if err != nil {
		return fmt.Errorf("legacy search failed: %w", err)
	}
	return outputResult(cmd, &res)
}

type matchJSON struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

type resultJSON struct {
	Query        string      `json:"query"`
	Index        string      `json:"index,omitempty"`
	Storage      string      `json:"storage,omitempty"`
	Similarities []matchJSON `json:"similarities"`
}

func outputResult(cmd *cobra.Command, res *cytomine.SearchResult) error {
	if outputJSON {
		out := resultJSON{
			Query:        res.Query,
			Index:        res.Index,
			Storage:      res.Storage,
			Similarities: make([]matchJSON, len(res.Similarities)),
		}
		for i, m := range res.Similarities {
			out.Similarities[i] = matchJSON{ID: m.ID, Score: m.Score}
		}
		return printJSON(cmd, out)
	}

	if len(res.Similarities) == 0 {
		cmd.Println("No similar images found.")
		return nil
	}

	bold := color.New(color.Bold)
	gray := color.New(color.FgHiBlack)

	cmd.Printf("Query: %s\n", bold.Sprint(res.Query))
	if res.Index != "" {
		cmd.Printf("Index: %s\n", res.Index)
	}
	cmd.Println()
	for i, m := range res.Similarities {
		cmd.Printf("  [%d] %s %s\n", i+1, m.ID, gray.Sprintf("(%.4f)", m.Score))
	}
	return nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
