package classify_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/DiogoHD/LLM-and-ODC/internal/classify"
	"github.com/DiogoHD/LLM-and-ODC/internal/commits"
	"github.com/DiogoHD/LLM-and-ODC/internal/extract"
	"github.com/DiogoHD/LLM-and-ODC/internal/groundtruth"
	"github.com/DiogoHD/LLM-and-ODC/internal/llm"
	"github.com/DiogoHD/LLM-and-ODC/internal/record"
)

const patch = "@@ -1,2 +1,2 @@\n-if (a)\n+if (a && b)\n ok();"

type fakeSource map[string]*commits.Commit

func (f fakeSource) Commit(ctx context.Context, project, sha string) (*commits.Commit, error) {
	c, ok := f[sha]
	if !ok {
		return nil, errors.New("404 Not Found")
	}
	return c, nil
}

type fakeLLM struct {
	mu      sync.Mutex
	prompts []string
}

func (f *fakeLLM) Chat(ctx context.Context, model, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	switch model {
	case "qwen3:8b":
		return "<think>a condition changed</think>\nDefect Type: Checking\nDefect Qualifier: Incorrect", nil
	case "llama3":
		return "", nil
	default:
		return "", errors.New("model not found")
	}
}

func TestBuildPrompts(t *testing.T) {
	c := &commits.Commit{Sha: "abc", Files: []commits.File{
		{Filename: "mm/slab.c", Changes: 2, Patch: patch},
		{Filename: "docs/logo.png"},
	}}
	got := classify.BuildPrompts(c, "Classify.", 0)
	if len(got) != 1 {
		t.Fatalf("got %d prompts, want 1", len(got))
	}
	want := "Classify.\n\nFile name: mm/slab.c\nChanges: 2\nPatch (diff):\n" + patch + "\n\n" + classify.ResponseFormat
	if diff := cmp.Diff(want, got[0].Text); diff != "" {
		t.Errorf("prompt mismatch (-want +got):\n%s", diff)
	}
	if got[0].File != "mm/slab.c" || got[0].Patch.Added != 1 || got[0].Patch.Deleted != 1 {
		t.Errorf("prompt = %+v", got[0])
	}
}

func TestBuildPrompts_Truncated(t *testing.T) {
	long := patch + "\n@@ -40,1 +40,2 @@\n x\n+y"
	c := &commits.Commit{Files: []commits.File{{Filename: "f.c", Changes: 3, Patch: long}}}
	got := classify.BuildPrompts(c, "Classify.", len(patch)+5)
	if len(got) != 1 {
		t.Fatalf("got %d prompts, want 1", len(got))
	}
	if !got[0].Patch.Truncated || got[0].Patch.Kept != 1 {
		t.Fatalf("summary = %+v", got[0].Patch)
	}
	if !strings.Contains(got[0].Text, "[patch truncated: 1 of 2 hunks shown, +2 -1 lines in total]") {
		t.Errorf("missing truncation note:\n%s", got[0].Text)
	}
	if strings.Contains(got[0].Text, "@@ -40,1") {
		t.Error("dropped hunk still quoted")
	}
}

func TestTargets(t *testing.T) {
	recs := []groundtruth.Record{
		{Project: "Linux", Commit: "abc"},
		{Project: "Linux", Commit: "abc"},
		{Project: "Xen", Commit: "def"},
	}
	want := []classify.Target{{Project: "Linux", Sha: "abc"}, {Project: "Xen", Sha: "def"}}
	if diff := cmp.Diff(want, classify.Targets(recs)); diff != "" {
		t.Errorf("Targets mismatch (-want +got):\n%s", diff)
	}
}

func TestRunner_Run(t *testing.T) {
	root := t.TempDir()
	source := fakeSource{
		"abc": {Sha: "abc", Files: []commits.File{
			{Filename: "mm/slab.c", Changes: 2, Patch: patch},
			{Filename: "docs/logo.png"},
		}},
	}
	model := &fakeLLM{}
	runner := &classify.Runner{
		Commits:     source,
		LLM:         model,
		Models:      []string{"qwen3:8b", "llama3", "broken"},
		Root:        root,
		Instruction: "Classify.",
		Workers:     2,
	}
	targets := []classify.Target{{Project: "Linux", Sha: "abc"}, {Project: "Xen", Sha: "def"}}

	sum, err := runner.Run(context.Background(), targets)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := classify.Summary{Commits: 1, FailedCommits: 1, Prompts: 1, Written: 2, Failed: 1}
	if diff := cmp.Diff(want, sum); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}

	empty, err := os.ReadFile(record.ResponsePath(root, "abc", "mm/slab.c", "llama3"))
	if err != nil {
		t.Fatal(err)
	}
	if string(empty) != llm.NoResponse {
		t.Errorf("empty reply written as %q", empty)
	}
	if _, err := os.Stat(record.ResponsePath(root, "abc", "mm/slab.c", "broken")); !os.IsNotExist(err) {
		t.Errorf("failed call left a response file: %v", err)
	}

	res, err := record.Walk(context.Background(), root, record.WalkOptions{})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if res.Files != 2 {
		t.Errorf("walk read %d files, want 2", res.Files)
	}
	wantRecs := []record.DefectRecord{
		{Sha: "abc", File: "mm-slab_c", Model: "qwen3", Type: "Checking", Qualifier: "Incorrect"},
	}
	if diff := cmp.Diff(wantRecs, res.Records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	if got := extract.Defects(string(empty)); len(got) != 0 {
		t.Errorf("placeholder produced pairs: %v", got)
	}
}

func TestRunner_SkipExisting(t *testing.T) {
	root := t.TempDir()
	source := fakeSource{"abc": {Sha: "abc", Files: []commits.File{{Filename: "a.c", Changes: 2, Patch: patch}}}}
	runner := &classify.Runner{
		Commits: source,
		LLM:     &fakeLLM{},
		Models:  []string{"qwen3:8b", "llama3"},
		Root:    root,
	}
	targets := []classify.Target{{Project: "Linux", Sha: "abc"}}
	if _, err := runner.Run(context.Background(), targets); err != nil {
		t.Fatal(err)
	}

	again := &fakeLLM{}
	runner.LLM = again
	runner.SkipExisting = true
	sum, err := runner.Run(context.Background(), targets)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Kept != 2 || sum.Written != 0 {
		t.Errorf("summary = %+v, want 2 kept and none written", sum)
	}
	if len(again.prompts) != 0 {
		t.Errorf("models called %d times on resume", len(again.prompts))
	}
}

func TestRunner_NoModels(t *testing.T) {
	runner := &classify.Runner{Commits: fakeSource{}, LLM: &fakeLLM{}}
	if _, err := runner.Run(context.Background(), nil); err == nil {
		t.Error("expected error without models")
	}
}
