package classify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/DiogoHD/LLM-and-ODC/internal/commits"
	"github.com/DiogoHD/LLM-and-ODC/internal/groundtruth"
	"github.com/DiogoHD/LLM-and-ODC/internal/llm"
	"github.com/DiogoHD/LLM-and-ODC/internal/logging"
	"github.com/DiogoHD/LLM-and-ODC/internal/record"
)

// CommitSource fetches a commit of a project.
type CommitSource interface {
	Commit(ctx context.Context, project, sha string) (*commits.Commit, error)
}

// Target is one commit to classify.
type Target struct {
	Project string
	Sha     string
}

// Targets returns the distinct commits of recs in sheet order.
func Targets(recs []groundtruth.Record) []Target {
	seen := make(map[string]bool)
	var out []Target
	for _, r := range recs {
		if seen[r.Commit] {
			continue
		}
		seen[r.Commit] = true
		out = append(out, Target{Project: r.Project, Sha: r.Commit})
	}
	return out
}

// Runner classifies commits with every model and writes one response file
// per (commit, file, model).
type Runner struct {
	Commits CommitSource
	LLM     llm.Client
	Models  []string
	Root    string // response tree root

	Instruction   string
	MaxPatchBytes int
	Workers       int  // commits processed concurrently; <= 0 uses GOMAXPROCS
	SkipExisting  bool // keep response files that are already on disk
}

// Summary counts what a Run did.
type Summary struct {
	Commits       int // commits fetched
	FailedCommits int
	Prompts       int // files asked about
	Written       int // response files written
	Kept          int // response files left alone by SkipExisting
	Failed        int // model calls or writes that failed
}

type counters struct {
	commits, failedCommits, prompts, written, kept, failed atomic.Int64
}

func (c *counters) summary() Summary {
	return Summary{
		Commits:       int(c.commits.Load()),
		FailedCommits: int(c.failedCommits.Load()),
		Prompts:       int(c.prompts.Load()),
		Written:       int(c.written.Load()),
		Kept:          int(c.kept.Load()),
		Failed:        int(c.failed.Load()),
	}
}

// Run classifies every target. A commit that cannot be fetched, or a model
// call that fails, is logged and skipped; only cancellation of ctx stops
// the batch early.
func (r *Runner) Run(ctx context.Context, targets []Target) (Summary, error) {
	logger := logging.New("classify")
	if len(r.Models) == 0 {
		return Summary{}, errors.New("no models to run")
	}

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var c counters
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, t := range targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r.runCommit(gctx, t, &c)
			return nil
		})
	}
	err := g.Wait()
	sum := c.summary()
	if err != nil {
		return sum, fmt.Errorf("classify: %w", err)
	}
	logger.Info("classification done",
		"commits", sum.Commits, "failed_commits", sum.FailedCommits,
		"prompts", sum.Prompts, "written", sum.Written, "kept", sum.Kept, "failed", sum.Failed)
	return sum, nil
}

func (r *Runner) runCommit(ctx context.Context, t Target, c *counters) {
	logger := logging.New("classify")

	commit, err := r.Commits.Commit(ctx, t.Project, t.Sha)
	if err != nil {
		c.failedCommits.Add(1)
		logger.Warn("skipping commit", "project", t.Project, "sha", t.Sha, "error", err)
		return
	}
	c.commits.Add(1)

	for _, p := range BuildPrompts(commit, r.Instruction, r.MaxPatchBytes) {
		c.prompts.Add(1)
		for _, model := range r.Models {
			if ctx.Err() != nil {
				return
			}
			path := record.ResponsePath(r.Root, t.Sha, p.File, llm.ModelName(model))
			if r.SkipExisting && exists(path) {
				c.kept.Add(1)
				continue
			}
			if err := r.ask(ctx, model, p.Text, path); err != nil {
				c.failed.Add(1)
				logger.Error("model call failed", "sha", t.Sha, "file", p.File, "model", model, "error", err)
				continue
			}
			c.written.Add(1)
		}
	}
}

func (r *Runner) ask(ctx context.Context, model, prompt, path string) error {
	reply, err := r.LLM.Chat(ctx, model, prompt)
	if err != nil {
		return err
	}
	if reply == "" {
		reply = llm.NoResponse
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create response dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(reply), 0o644); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
