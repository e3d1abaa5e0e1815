package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/DiogoHD/LLM-and-ODC/internal/confusion"
	"github.com/DiogoHD/LLM-and-ODC/internal/record"
	"github.com/DiogoHD/LLM-and-ODC/internal/score"
)

func sampleRun(created time.Time) *Run {
	run := NewRun("output", "data/vulnerabilities.xlsx")
	run.CreatedAt = created
	run.Files, run.Skipped, run.Records = 3, 1, 2
	run.Defects = []record.DefectRecord{
		{Sha: "abc", File: "mm-slab_c", Model: "llama", Type: "Checking", Qualifier: "Missing"},
		{Sha: "abc", File: "mm-slab_c", Model: "qwen", Type: "Timing"},
	}
	run.Scores.Type["llama"] = score.Counts{Correct: 1}
	run.Scores.Type["qwen"] = score.Counts{Incorrect: 1}
	run.Scores.Combined["llama"] = score.Counts{Correct: 1}
	run.Confusion = []confusion.Result{{
		Model:    "llama",
		Category: "Defect Type",
		Matrix: confusion.Matrix{
			Labels: []string{"Checking", "Other"},
			Counts: [][]int{{1, 0}, {0, 0}},
		},
		Metrics: confusion.Metrics{Accuracy: 1, Precision: 1, Recall: 1, F1: 1},
	}}
	return run
}

func testStores(t *testing.T) map[string]Store {
	t.Helper()
	sql, err := Open(filepath.Join(t.TempDir(), "sub", "odc.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = sql.Close() })
	return map[string]Store{"sqlite": sql, "memory": NewMemStore()}
}

func TestStore_RoundTrip(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			run := sampleRun(time.Date(2026, 3, 1, 12, 0, 0, 500, time.UTC))
			if err := s.SaveRun(run); err != nil {
				t.Fatalf("SaveRun: %v", err)
			}
			got, err := s.GetRun(run.ID)
			if err != nil {
				t.Fatalf("GetRun: %v", err)
			}
			if diff := cmp.Diff(run, got); diff != "" {
				t.Errorf("run mismatch (-want +got):\n%s", diff)
			}
			if err := s.SaveRun(run); err == nil {
				t.Error("saving the same id twice should fail")
			}
		})
	}
}

func TestStore_ListRuns(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			older := sampleRun(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
			newer := sampleRun(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
			for _, r := range []*Run{older, newer} {
				if err := s.SaveRun(r); err != nil {
					t.Fatal(err)
				}
			}
			list, err := s.ListRuns()
			if err != nil {
				t.Fatalf("ListRuns: %v", err)
			}
			if len(list) != 2 || list[0].ID != newer.ID || list[1].ID != older.ID {
				t.Errorf("ListRuns order wrong: %+v", list)
			}
		})
	}
}

func TestStore_NotFound(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.GetRun("missing")
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "odc.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	run := sampleRun(time.Now().UTC())
	if err := s.SaveRun(run); err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if _, err := s.GetRun(run.ID); err != nil {
		t.Errorf("GetRun after reopen: %v", err)
	}
}

func TestMemStore_Isolation(t *testing.T) {
	s := NewMemStore()
	run := sampleRun(time.Now().UTC())
	if err := s.SaveRun(run); err != nil {
		t.Fatal(err)
	}
	run.Confusion[0].Matrix.Counts[0][0] = 99
	got, _ := s.GetRun(run.ID)
	if got.Confusion[0].Matrix.Counts[0][0] != 1 {
		t.Error("MemStore should keep its own copy")
	}
}
