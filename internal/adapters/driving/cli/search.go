package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

var topK int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Semantic search over the indexed corpus",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&topK, "top", "k", 5, "number of results")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := buildApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	query := strings.Join(args, " ")
	hits, err := a.searcher.Search(ctx, query, topK)
	if err != nil {
		return err
	}

	if len(hits) == 0 {
		cmd.Println("No results.")
		return nil
	}
	for i, hit := range hits {
		cmd.Printf("%2d. [%.3f] %s p.%d\n", i+1, hit.Score, hit.SourceFileName, hit.Page)
		cmd.Printf("    %s\n", snippet(hit.Text, 200))
	}
	return nil
}

// snippet shortens text to max characters on a single line.
func snippet(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > max {
		text = text[:max] + "..."
	}
	return text
}
