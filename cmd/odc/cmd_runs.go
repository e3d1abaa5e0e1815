package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DiogoHD/LLM-and-ODC/internal/confusion"
	"github.com/DiogoHD/LLM-and-ODC/internal/format"
	"github.com/DiogoHD/LLM-and-ODC/internal/store"
)

var runsFlags struct {
	dbPath string
	limit  int
	matrix bool
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List and show stored evaluation runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the accuracy tables and metrics of a stored run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

func init() {
	runsCmd.PersistentFlags().StringVar(&runsFlags.dbPath, "db", "", "Store DB path (default from config: db_path)")
	runsListCmd.Flags().IntVarP(&runsFlags.limit, "limit", "n", 0, "Show at most this many runs")
	runsShowCmd.Flags().BoolVar(&runsFlags.matrix, "matrix", false, "Also print every confusion matrix")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
}

func runRunsList(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(dbPath(runsFlags.dbPath))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	runs, err := st.ListRuns()
	if err != nil {
		return err
	}
	if runsFlags.limit > 0 && len(runs) > runsFlags.limit {
		runs = runs[:runsFlags.limit]
	}

	tb := format.NewTable(tableMode())
	tb.Header("ID", "Created", "Responses", "Ground truth", "Files", "Skipped", "Records")
	for _, r := range runs {
		tb.Row(r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.ResponsesDir, r.GroundTruth, r.Files, r.Skipped, r.Records)
	}
	tb.AlignRight(5, 6, 7)
	fmt.Fprintln(cmd.OutOrStdout(), tb.String())
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	st, err := store.Open(dbPath(runsFlags.dbPath))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	run, err := st.GetRun(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run:          %s\n", run.ID)
	fmt.Fprintf(out, "Created:      %s\n", run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Responses:    %s (%d read, %d skipped)\n", run.ResponsesDir, run.Files, run.Skipped)
	fmt.Fprintf(out, "Ground truth: %s\n", run.GroundTruth)
	fmt.Fprintf(out, "Records:      %d\n\n", run.Records)

	printScores(cmd, run.Scores)

	var cats []string
	byCat := make(map[string][]confusion.Result)
	for _, r := range run.Confusion {
		if _, ok := byCat[r.Category]; !ok {
			cats = append(cats, r.Category)
		}
		byCat[r.Category] = append(byCat[r.Category], r)
	}
	for _, cat := range cats {
		if runsFlags.matrix {
			printMatrices(cmd, cat, byCat[cat])
			continue
		}
		fmt.Fprintln(out, format.MetricsTable(tableMode(), cat, byCat[cat]))
		fmt.Fprintln(out)
	}
	return nil
}
