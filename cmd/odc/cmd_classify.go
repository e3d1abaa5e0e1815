package main

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/DiogoHD/LLM-and-ODC/internal/classify"
	"github.com/DiogoHD/LLM-and-ODC/internal/commits"
	"github.com/DiogoHD/LLM-and-ODC/internal/groundtruth"
	"github.com/DiogoHD/LLM-and-ODC/internal/llm"
	"github.com/DiogoHD/LLM-and-ODC/internal/logging"
)

var classifyFlags struct {
	groundTruth  string
	responses    string
	provider     string
	baseURL      string
	models       []string
	commits      []string
	workers      int
	limit        int
	singleFile   bool
	skipExisting bool
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Ask models to classify every ground-truth commit and save their answers",
	Long: `For every distinct commit of the ground truth, fetches the commit from GitHub,
builds one prompt per changed file and asks every model for its Defect Type and
Defect Qualifier. Answers are written to <responses>/<sha>/<file>/<model>.txt.

Models default to classify.models in the config; with the openai provider and
no models configured, every model the server lists is used (for ollama, every
pulled model).

Set ODC_GITHUB_TOKEN to raise the GitHub API rate limit.`,
	Args: cobra.NoArgs,
	RunE: runClassify,
}

func init() {
	f := classifyCmd.Flags()
	f.StringVar(&classifyFlags.groundTruth, "ground-truth", "", "Ground-truth spreadsheet (default from config)")
	f.StringVar(&classifyFlags.responses, "responses", "", "Response tree root (default from config: responses_dir)")
	f.StringVar(&classifyFlags.provider, "provider", "", "Model provider: openai or anthropic (default from config)")
	f.StringVar(&classifyFlags.baseURL, "base-url", "", "Model API base URL (default from config)")
	f.StringSliceVar(&classifyFlags.models, "models", nil, "Models to ask (default from config, or every listed model)")
	f.StringSliceVar(&classifyFlags.commits, "commit", nil, "Only classify these commits (repeatable)")
	f.IntVar(&classifyFlags.workers, "workers", 0, "Commits processed concurrently (default from config: classify.workers)")
	f.IntVarP(&classifyFlags.limit, "limit", "n", 0, "Classify at most this many commits")
	f.BoolVar(&classifyFlags.singleFile, "single-file", false, "Only classify commits whose ground truth names exactly one file")
	f.BoolVar(&classifyFlags.skipExisting, "skip-existing", false, "Keep answers already present in the response tree")
}

func runClassify(cmd *cobra.Command, _ []string) error {
	logger := logging.New("cli")
	ctx := cmd.Context()

	gtPath := cmp.Or(classifyFlags.groundTruth, cfg.GroundTruth)
	gt, err := groundtruth.Load(gtPath)
	if err != nil {
		return fmt.Errorf("load ground truth: %w", err)
	}
	targets := selectTargets(gt)
	if len(targets) == 0 {
		return errors.New("no commits to classify")
	}

	provider := cmp.Or(classifyFlags.provider, cfg.Classify.Provider)
	client, err := llm.New(provider, llm.Options{
		BaseURL:   cmp.Or(classifyFlags.baseURL, cfg.Classify.BaseURL),
		APIKey:    cfg.Classify.APIKey,
		MaxTokens: cfg.Classify.MaxTokens,
	})
	if err != nil {
		return err
	}
	models, err := resolveModels(cmd, client)
	if err != nil {
		return err
	}

	gh := commits.NewClient(commits.Config{
		BaseURL:           cfg.GitHub.BaseURL,
		Token:             cfg.GitHub.Token,
		RequestsPerSecond: cfg.GitHub.RequestsPerSecond,
		Projects:          cfg.GitHub.Projects,
	}, commits.NewRepoCache())

	runner := &classify.Runner{
		Commits:       gh,
		LLM:           client,
		Models:        models,
		Root:          cmp.Or(classifyFlags.responses, cfg.ResponsesDir),
		Instruction:   cfg.Classify.Instruction,
		MaxPatchBytes: cfg.Classify.MaxPatchBytes,
		Workers:       cmp.Or(classifyFlags.workers, cfg.Classify.Workers),
		SkipExisting:  classifyFlags.skipExisting,
	}
	logger.Info("classifying", "commits", len(targets), "models", models, "provider", provider, "root", runner.Root)

	sum, err := runner.Run(ctx, targets)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Commits:   %d fetched, %d failed\n", sum.Commits, sum.FailedCommits)
	fmt.Fprintf(out, "Files:     %d\n", sum.Prompts)
	fmt.Fprintf(out, "Responses: %d written, %d kept, %d failed\n", sum.Written, sum.Kept, sum.Failed)
	return nil
}

func selectTargets(gt []groundtruth.Record) []classify.Target {
	rows := gt
	if classifyFlags.singleFile {
		rows = slices.DeleteFunc(slices.Clone(gt), groundtruth.Record.CommitLevel)
	}
	targets := classify.Targets(rows)
	if len(classifyFlags.commits) > 0 {
		targets = slices.DeleteFunc(targets, func(t classify.Target) bool {
			return !slices.Contains(classifyFlags.commits, t.Sha)
		})
	}
	if classifyFlags.limit > 0 && len(targets) > classifyFlags.limit {
		targets = targets[:classifyFlags.limit]
	}
	return targets
}

func resolveModels(cmd *cobra.Command, client llm.Client) ([]string, error) {
	if len(classifyFlags.models) > 0 {
		return classifyFlags.models, nil
	}
	if len(cfg.Classify.Models) > 0 {
		return cfg.Classify.Models, nil
	}
	lister, ok := client.(llm.ModelLister)
	if !ok {
		return nil, errors.New("no models configured: set classify.models or pass --models")
	}
	models, err := lister.ListModels(cmd.Context())
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, errors.New("the model server lists no models")
	}
	return models, nil
}
