// Package store persists evaluation runs: the extracted records, the accuracy
// tables and the confusion matrices of one evaluate invocation.
package store

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/DiogoHD/LLM-and-ODC/internal/confusion"
	"github.com/DiogoHD/LLM-and-ODC/internal/record"
	"github.com/DiogoHD/LLM-and-ODC/internal/score"
)

// DefaultDBPath is the default location of the SQLite DB.
const DefaultDBPath = "data/odc.db"

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("run not found")

// RunSummary is the header of a run, without its tables.
type RunSummary struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	ResponsesDir string    `json:"responses_dir"`
	GroundTruth  string    `json:"ground_truth"`
	Files        int       `json:"files"`
	Skipped      int       `json:"skipped"`
	Records      int       `json:"records"`
}

// Run is one complete evaluation.
type Run struct {
	RunSummary
	Defects   []record.DefectRecord `json:"defects"`
	Scores    score.Tables          `json:"scores"`
	Confusion []confusion.Result    `json:"confusion"`
}

// NewRun returns a run with a fresh ID and creation time.
func NewRun(responsesDir, groundTruth string) *Run {
	return &Run{
		RunSummary: RunSummary{
			ID:           uuid.NewString(),
			CreatedAt:    time.Now().UTC(),
			ResponsesDir: responsesDir,
			GroundTruth:  groundTruth,
		},
		Scores: score.NewTables(),
	}
}

// Store is the persistence facade. Implementations are SQLite or in-memory.
type Store interface {
	// SaveRun writes the whole run atomically. Saving an existing ID fails.
	SaveRun(run *Run) error
	// GetRun returns ErrNotFound for unknown IDs.
	GetRun(id string) (*Run, error)
	// ListRuns returns summaries, newest first.
	ListRuns() ([]RunSummary, error)
	Close() error
}
