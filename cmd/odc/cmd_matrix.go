package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DiogoHD/LLM-and-ODC/internal/confusion"
	"github.com/DiogoHD/LLM-and-ODC/internal/format"
)

var matrixFlags struct {
	in     inputFlags
	ev     evalFlags
	write  bool
	outDir string
}

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Print confusion matrices and weighted metrics per model",
	Long: `Builds one confusion matrix per model and category. Within each commit the
model's labels are paired with the human labels, exact matches first; labels
left over on either side are paired with "Other".

Categories are type, qualifier or a composite such as type+qualifier.`,
	Args: cobra.NoArgs,
	RunE: runMatrix,
}

func init() {
	addInputFlags(matrixCmd, &matrixFlags.in)
	addEvalFlags(matrixCmd, &matrixFlags.ev)
	f := matrixCmd.Flags()
	f.BoolVar(&matrixFlags.write, "write", false, "Also write confusion_*.csv and metrics_*.csv files")
	f.StringVarP(&matrixFlags.outDir, "out", "o", "", "Directory for --write (default from config: data_dir)")
}

func runMatrix(cmd *cobra.Command, _ []string) error {
	cats, onlyOne, canonicalize, err := matrixFlags.ev.resolve(cmd)
	if err != nil {
		return err
	}
	gt, err := matrixFlags.in.loadGroundTruth()
	if err != nil {
		return err
	}
	recs, _, err := matrixFlags.in.loadRecords(cmd)
	if err != nil {
		return err
	}

	opts := confusion.Options{OnlyOneClassification: onlyOne, Canonicalize: canonicalize}
	var all []confusion.Result
	for _, cat := range cats {
		results := confusion.Build(gt, recs, cat, opts)
		printMatrices(cmd, cat.Name(), results)
		all = append(all, results...)
	}

	if matrixFlags.write {
		paths, err := reportWriter(matrixFlags.outDir).Confusion(all)
		if err != nil {
			return err
		}
		printPaths(cmd, paths)
	}
	return nil
}

func printMatrices(cmd *cobra.Command, category string, results []confusion.Result) {
	out := cmd.OutOrStdout()
	for _, r := range results {
		fmt.Fprintln(out, format.ConfusionTable(tableMode(), r))
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out, format.MetricsTable(tableMode(), category, results))
	fmt.Fprintln(out)
}
