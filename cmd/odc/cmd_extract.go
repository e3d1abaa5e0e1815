package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DiogoHD/LLM-and-ODC/internal/record"
)

var extractFlags struct {
	responses string
	outDir    string
	workers   int
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract defect classifications from the response tree into output.csv",
	Long: `Walks <responses>/<sha>/<file>/<model>.txt, strips <think> blocks, pulls
every "Defect Type" / "Defect Qualifier" pair out of each answer and writes the
record set to <out>/output.csv.

Files that cannot be read or are not UTF-8 are logged and skipped.`,
	Args: cobra.NoArgs,
	RunE: runExtract,
}

func init() {
	f := extractCmd.Flags()
	f.StringVar(&extractFlags.responses, "responses", "", "Response tree root (default from config: responses_dir)")
	f.StringVarP(&extractFlags.outDir, "out", "o", "", "Directory for output.csv (default from config: data_dir)")
	f.IntVar(&extractFlags.workers, "workers", 0, "Files read concurrently (default from config: eval.workers)")
}

func runExtract(cmd *cobra.Command, _ []string) error {
	root := extractFlags.responses
	if root == "" {
		root = cfg.ResponsesDir
	}
	workers := extractFlags.workers
	if workers <= 0 {
		workers = cfg.Eval.Workers
	}

	res, err := record.Walk(cmd.Context(), root, record.WalkOptions{Workers: workers})
	if err != nil {
		return err
	}
	path, err := reportWriter(extractFlags.outDir).Records(res.Records)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Responses: %d read, %d skipped\n", res.Files, len(res.Skipped))
	fmt.Fprintf(out, "Records:   %d\n", len(res.Records))
	fmt.Fprintf(out, "Models:    %d\n", len(record.Models(res.Records)))
	printPaths(cmd, []string{path})
	return nil
}
