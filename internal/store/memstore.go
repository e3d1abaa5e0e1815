package store

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/DiogoHD/LLM-and-ODC/internal/confusion"
	"github.com/DiogoHD/LLM-and-ODC/internal/score"
)

// MemStore implements Store in memory. Runs are deep-copied in and out.
type MemStore struct {
	mu   sync.Mutex
	runs map[string]*Run
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{runs: make(map[string]*Run)}
}

func (s *MemStore) SaveRun(run *Run) error {
	if run == nil || run.ID == "" {
		return errors.New("run has no id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.runs[run.ID]; dup {
		return fmt.Errorf("insert run: duplicate id %s", run.ID)
	}
	s.runs[run.ID] = cloneRun(run)
	return nil
}

func (s *MemStore) GetRun(id string) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("get run %s: %w", id, ErrNotFound)
	}
	return cloneRun(r), nil
}

func (s *MemStore) ListRuns() ([]RunSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RunSummary, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, r.RunSummary)
	}
	slices.SortFunc(out, func(a, b RunSummary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *MemStore) Close() error { return nil }

func cloneRun(r *Run) *Run {
	cp := &Run{RunSummary: r.RunSummary, Scores: score.NewTables()}
	cp.Defects = slices.Clone(r.Defects)
	for _, axis := range score.Axes {
		for m, c := range r.Scores.Axis(axis) {
			cp.Scores.Axis(axis)[m] = c
		}
	}
	for _, res := range r.Confusion {
		counts := make([][]int, len(res.Matrix.Counts))
		for i, row := range res.Matrix.Counts {
			counts[i] = slices.Clone(row)
		}
		res.Matrix = confusion.Matrix{Labels: slices.Clone(res.Matrix.Labels), Counts: counts}
		cp.Confusion = append(cp.Confusion, res)
	}
	return cp
}
