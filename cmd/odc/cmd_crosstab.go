package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DiogoHD/LLM-and-ODC/internal/crosstab"
	"github.com/DiogoHD/LLM-and-ODC/internal/format"
)

var crosstabFlags struct {
	in      inputFlags
	ev      evalFlags
	percent bool
	write   bool
	outDir  string
}

var crosstabCmd = &cobra.Command{
	Use:   "crosstab",
	Short: "Print how often each label was given by each model and by humans",
	Long: `Counts the labels of a category per model, next to a Human column counting
the ground-truth labels of the commits the models answered. Labels outside the
ground-truth set are summed in an "Other" row.`,
	Args: cobra.NoArgs,
	RunE: runCrosstab,
}

func init() {
	addInputFlags(crosstabCmd, &crosstabFlags.in)
	addEvalFlags(crosstabCmd, &crosstabFlags.ev)
	f := crosstabCmd.Flags()
	f.BoolVar(&crosstabFlags.percent, "percent", false, "Print column percentages instead of counts")
	f.BoolVar(&crosstabFlags.write, "write", false, "Also write crosstab_*.csv files")
	f.StringVarP(&crosstabFlags.outDir, "out", "o", "", "Directory for --write (default from config: data_dir)")
}

func runCrosstab(cmd *cobra.Command, _ []string) error {
	cats, _, canonicalize, err := crosstabFlags.ev.resolve(cmd)
	if err != nil {
		return err
	}
	gt, err := crosstabFlags.in.loadGroundTruth()
	if err != nil {
		return err
	}
	recs, _, err := crosstabFlags.in.loadRecords(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	w := reportWriter(crosstabFlags.outDir)
	for _, cat := range cats {
		t := crosstab.Build(gt, recs, cat, canonicalize)
		fmt.Fprintln(out, format.CrosstabTable(tableMode(), t, crosstabFlags.percent))
		fmt.Fprintln(out)
		if crosstabFlags.write {
			paths, err := w.Crosstab(t)
			if err != nil {
				return err
			}
			printPaths(cmd, paths)
		}
	}
	return nil
}
