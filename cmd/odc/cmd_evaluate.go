package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DiogoHD/LLM-and-ODC/internal/evaluate"
	"github.com/DiogoHD/LLM-and-ODC/internal/format"
	"github.com/DiogoHD/LLM-and-ODC/internal/logging"
	"github.com/DiogoHD/LLM-and-ODC/internal/store"
)

var evaluateFlags struct {
	in      inputFlags
	ev      evalFlags
	outDir  string
	dbPath  string
	noStore bool
	quiet   bool
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Extract, score, build matrices and cross-tabs, and store the run",
	Long: `Runs the whole evaluation in one go: reads the response tree (or --records),
prints the accuracy tables and per-category metrics, writes every CSV artifact
to the data directory and records the run in the SQLite store.

Use 'odc runs' to list and show stored runs.`,
	Args: cobra.NoArgs,
	RunE: runEvaluate,
}

func init() {
	addInputFlags(evaluateCmd, &evaluateFlags.in)
	addEvalFlags(evaluateCmd, &evaluateFlags.ev)
	f := evaluateCmd.Flags()
	f.StringVarP(&evaluateFlags.outDir, "out", "o", "", "Directory for CSV artifacts (default from config: data_dir)")
	f.StringVar(&evaluateFlags.dbPath, "db", "", "Store DB path (default from config: db_path)")
	f.BoolVar(&evaluateFlags.noStore, "no-store", false, "Do not record the run in the store")
	f.BoolVarP(&evaluateFlags.quiet, "quiet", "q", false, "Only print the run summary")
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	cats, onlyOne, canonicalize, err := evaluateFlags.ev.resolve(cmd)
	if err != nil {
		return err
	}
	gt, err := evaluateFlags.in.loadGroundTruth()
	if err != nil {
		return err
	}
	recs, walk, err := evaluateFlags.in.loadRecords(cmd)
	if err != nil {
		return err
	}

	res := evaluate.Evaluate(gt, recs, evaluate.Options{
		Categories:            cats,
		OnlyOneClassification: onlyOne,
		Canonicalize:          canonicalize,
	})

	if !evaluateFlags.quiet {
		printScores(cmd, res.Scores)
		out := cmd.OutOrStdout()
		for _, cat := range cats {
			fmt.Fprintln(out, format.MetricsTable(tableMode(), cat.Name(), res.ByCategory(cat.Name())))
			fmt.Fprintln(out)
		}
	}

	paths, err := res.WriteReports(reportWriter(evaluateFlags.outDir))
	if err != nil {
		return err
	}

	source := evaluateFlags.in.responsesDir()
	if evaluateFlags.in.records != "" {
		source = evaluateFlags.in.records
	}
	run := res.Run(source, evaluateFlags.in.groundTruthPath(), walk)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run:       %s\n", run.ID)
	fmt.Fprintf(out, "Responses: %d read, %d skipped\n", run.Files, run.Skipped)
	fmt.Fprintf(out, "Records:   %d\n", run.Records)
	fmt.Fprintf(out, "Artifacts: %d files in %s\n", len(paths), reportWriter(evaluateFlags.outDir).Dir)

	if evaluateFlags.noStore {
		return nil
	}
	path := dbPath(evaluateFlags.dbPath)
	st, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	if err := st.SaveRun(run); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	logging.New("cli").Info("run stored", "id", run.ID, "db", path)
	fmt.Fprintf(out, "Stored in: %s\n", path)
	return nil
}
