package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DiogoHD/LLM-and-ODC/internal/format"
	"github.com/DiogoHD/LLM-and-ODC/internal/score"
)

var scoreFlags struct {
	in           inputFlags
	canonicalize bool
	write        bool
	outDir       string
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Print per-model accuracy for defect type, qualifier and both",
	Long: `Matches each model's extracted pairs against the ground truth, commit by
commit, as multisets. A commit whose ground truth names a single file is
scored against the answers for that file only.

Three tables are printed: Defect Type, Defect Qualifier and the combined pair.`,
	Args: cobra.NoArgs,
	RunE: runScore,
}

func init() {
	addInputFlags(scoreCmd, &scoreFlags.in)
	f := scoreCmd.Flags()
	f.BoolVar(&scoreFlags.canonicalize, "canonicalize", true, "Match labels that differ only in case or accents (default from config)")
	f.BoolVar(&scoreFlags.write, "write", false, "Also write accuracy_<axis>.csv files")
	f.StringVarP(&scoreFlags.outDir, "out", "o", "", "Directory for --write (default from config: data_dir)")
}

var axisTitles = map[string]string{
	score.AxisType:      "Defect Type",
	score.AxisQualifier: "Defect Qualifier",
	score.AxisCombined:  "Defect Type + Defect Qualifier",
}

func runScore(cmd *cobra.Command, _ []string) error {
	gt, err := scoreFlags.in.loadGroundTruth()
	if err != nil {
		return err
	}
	recs, _, err := scoreFlags.in.loadRecords(cmd)
	if err != nil {
		return err
	}
	canonicalize := cfg.Eval.Canonicalize
	if cmd.Flags().Changed("canonicalize") {
		canonicalize = scoreFlags.canonicalize
	}

	tables := score.Evaluate(gt, recs, score.Options{Canonicalize: canonicalize})
	printScores(cmd, tables)

	if scoreFlags.write {
		paths, err := reportWriter(scoreFlags.outDir).Scores(tables)
		if err != nil {
			return err
		}
		printPaths(cmd, paths)
	}
	return nil
}

func printScores(cmd *cobra.Command, tables score.Tables) {
	out := cmd.OutOrStdout()
	for _, axis := range score.Axes {
		fmt.Fprintln(out, format.AccuracyTable(tableMode(), axisTitles[axis], tables.Axis(axis)))
		fmt.Fprintln(out)
	}
}
