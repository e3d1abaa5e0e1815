package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/DiogoHD/LLM-and-ODC/internal/confusion"
	"github.com/DiogoHD/LLM-and-ODC/internal/format"
	"github.com/DiogoHD/LLM-and-ODC/internal/groundtruth"
	"github.com/DiogoHD/LLM-and-ODC/internal/logging"
	"github.com/DiogoHD/LLM-and-ODC/internal/record"
	"github.com/DiogoHD/LLM-and-ODC/internal/report"
)

// inputFlags select the record set and the ground truth a command reads.
type inputFlags struct {
	responses   string
	records     string
	groundTruth string
	workers     int
}

func addInputFlags(cmd *cobra.Command, in *inputFlags) {
	f := cmd.Flags()
	f.StringVar(&in.responses, "responses", "", "Response tree root (default from config: responses_dir)")
	f.StringVar(&in.records, "records", "", "Read records from this CSV instead of walking the response tree")
	f.StringVar(&in.groundTruth, "ground-truth", "", "Ground-truth spreadsheet, .xlsx or .csv (default from config)")
	f.IntVar(&in.workers, "workers", 0, "Files read concurrently (default from config: eval.workers)")
}

func (in *inputFlags) responsesDir() string {
	if in.responses != "" {
		return in.responses
	}
	return cfg.ResponsesDir
}

func (in *inputFlags) groundTruthPath() string {
	if in.groundTruth != "" {
		return in.groundTruth
	}
	return cfg.GroundTruth
}

// loadRecords reads the record set. The walk result is nil when records come
// from a CSV file.
func (in *inputFlags) loadRecords(cmd *cobra.Command) ([]record.DefectRecord, *record.WalkResult, error) {
	if in.records != "" {
		f, err := os.Open(in.records)
		if err != nil {
			return nil, nil, fmt.Errorf("open records: %w", err)
		}
		defer f.Close()
		recs, err := record.ReadCSV(f)
		if err != nil {
			return nil, nil, fmt.Errorf("read records %s: %w", in.records, err)
		}
		logging.New("cli").Info("records loaded", "path", in.records, "records", len(recs))
		return recs, nil, nil
	}

	workers := in.workers
	if workers <= 0 {
		workers = cfg.Eval.Workers
	}
	res, err := record.Walk(cmd.Context(), in.responsesDir(), record.WalkOptions{Workers: workers})
	if err != nil {
		return nil, nil, err
	}
	return res.Records, res, nil
}

func (in *inputFlags) loadGroundTruth() ([]groundtruth.Record, error) {
	path := in.groundTruthPath()
	gt, err := groundtruth.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load ground truth: %w", err)
	}
	logging.New("cli").Info("ground truth loaded", "path", path, "rows", len(gt))
	return gt, nil
}

// evalFlags tune scoring.
type evalFlags struct {
	categories   []string
	onlyOne      bool
	canonicalize bool
}

func addEvalFlags(cmd *cobra.Command, ev *evalFlags) {
	f := cmd.Flags()
	f.StringSliceVar(&ev.categories, "category", nil,
		"Category to analyse: type, qualifier or a '+' joined composite such as type+qualifier (repeatable; default from config)")
	f.BoolVar(&ev.onlyOne, "only-one-classification", false,
		"Restrict confusion matrices to commits with exactly one ground-truth classification (default from config)")
	f.BoolVar(&ev.canonicalize, "canonicalize", true,
		"Match labels that differ only in case or accents to the ground-truth spelling (default from config)")
}

func (ev *evalFlags) resolve(cmd *cobra.Command) ([]confusion.Category, bool, bool, error) {
	onlyOne := cfg.Eval.OnlyOneClassification
	if cmd.Flags().Changed("only-one-classification") {
		onlyOne = ev.onlyOne
	}
	canonicalize := cfg.Eval.Canonicalize
	if cmd.Flags().Changed("canonicalize") {
		canonicalize = ev.canonicalize
	}
	if len(ev.categories) == 0 {
		cats, err := cfg.Categories()
		return cats, onlyOne, canonicalize, err
	}
	cats := make([]confusion.Category, 0, len(ev.categories))
	for _, s := range ev.categories {
		cat, err := confusion.ParseCategory(s)
		if err != nil {
			return nil, false, false, err
		}
		cats = append(cats, cat)
	}
	return cats, onlyOne, canonicalize, nil
}

func tableMode() format.Mode {
	m, _ := format.ParseMode(rootFlags.format)
	return m
}

func reportWriter(dir string) report.Writer {
	if dir == "" {
		dir = cfg.DataDir
	}
	return report.Writer{Dir: dir}
}

func dbPath(flag string) string {
	if flag != "" {
		return flag
	}
	return cfg.DBPath
}

func printPaths(cmd *cobra.Command, paths []string) {
	out := cmd.OutOrStdout()
	for _, p := range paths {
		fmt.Fprintf(out, "wrote %s\n", filepath.ToSlash(p))
	}
}
