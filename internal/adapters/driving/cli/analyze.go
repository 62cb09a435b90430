package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <question>",
	Short: "Ask a question about the indexed documents and logs",
	Long: `Retrieves the chunks most relevant to the question and asks the
configured chat model to answer from them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := buildApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	answer, err := a.analyzer.Analyze(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	cmd.Println(answer)
	return nil
}
