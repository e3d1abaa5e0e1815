// Package mcpserver exposes extraction and scoring as MCP tools so that an
// agent can check a model answer without going through the response tree.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DiogoHD/LLM-and-ODC/internal/extract"
	"github.com/DiogoHD/LLM-and-ODC/internal/logging"
	"github.com/DiogoHD/LLM-and-ODC/internal/score"
	"github.com/DiogoHD/LLM-and-ODC/internal/store"
)

// Server wraps the MCP SDK server.
type Server struct {
	MCPServer *sdkmcp.Server

	runs store.Store // optional
	log  *slog.Logger
}

// NewServer creates the server with its tools registered. runs may be nil, in
// which case the run tools are not offered.
func NewServer(version string, runs store.Store) *Server {
	s := &Server{
		MCPServer: sdkmcp.NewServer(&sdkmcp.Implementation{Name: "odc", Version: version}, nil),
		runs:      runs,
		log:       logging.New("mcp"),
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "strip_think",
		Description: "Remove the <think> reasoning preamble from a model response.",
	}, s.handleStripThink)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "extract_defects",
		Description: "Extract the distinct (Defect Type, Defect Qualifier) pairs from a raw model response.",
	}, s.handleExtractDefects)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "score_defects",
		Description: "Score predicted defect pairs against ground-truth pairs on the type, qualifier and combined axes.",
	}, s.handleScoreDefects)

	if s.runs == nil {
		return
	}
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_runs",
		Description: "List stored evaluation runs, newest first.",
	}, s.handleListRuns)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_run_scores",
		Description: "Get the accuracy tables of a stored evaluation run.",
	}, s.handleGetRunScores)
}

// --- Tool input/output types ---

type textInput struct {
	Text string `json:"text" jsonschema:"raw model response"`
}

type stripThinkOutput struct {
	Text string `json:"text"`
}

type extractDefectsOutput struct {
	Defects []extract.Pair `json:"defects"`
	Hits    int            `json:"hits"`
}

type scoreDefectsInput struct {
	Truth     []extract.Pair `json:"truth" jsonschema:"ground-truth pairs of one group"`
	Predicted []extract.Pair `json:"predicted" jsonschema:"pairs predicted for the same group"`
}

type axisScore struct {
	Correct   int     `json:"correct"`
	Incorrect int     `json:"incorrect"`
	Accuracy  float64 `json:"accuracy"`
}

type scoreDefectsOutput struct {
	Type      axisScore `json:"type"`
	Qualifier axisScore `json:"qualifier"`
	Combined  axisScore `json:"combined"`
}

type listRunsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"return at most this many runs (default all)"`
}

type runSummary struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
	Files     int    `json:"files"`
	Skipped   int    `json:"skipped"`
	Records   int    `json:"records"`
}

type listRunsOutput struct {
	Runs  []runSummary `json:"runs"`
	Total int          `json:"total"`
}

type getRunScoresInput struct {
	RunID string `json:"run_id" jsonschema:"run ID from list_runs"`
}

type getRunScoresOutput struct {
	Run       runSummary  `json:"run"`
	Type      []score.Row `json:"type"`
	Qualifier []score.Row `json:"qualifier"`
	Combined  []score.Row `json:"combined"`
}

// --- Tool handlers ---

func (s *Server) handleStripThink(_ context.Context, _ *sdkmcp.CallToolRequest, in textInput) (*sdkmcp.CallToolResult, stripThinkOutput, error) {
	return nil, stripThinkOutput{Text: extract.StripThink(in.Text)}, nil
}

func (s *Server) handleExtractDefects(_ context.Context, _ *sdkmcp.CallToolRequest, in textInput) (*sdkmcp.CallToolResult, extractDefectsOutput, error) {
	hits := extract.FindHits(extract.StripThink(in.Text))
	defects := extract.Dedup(extract.Assemble(hits))
	if defects == nil {
		defects = []extract.Pair{}
	}
	s.log.Debug("extract_defects", "hits", len(hits), "defects", len(defects))
	return nil, extractDefectsOutput{Defects: defects, Hits: len(hits)}, nil
}

func (s *Server) handleScoreDefects(_ context.Context, _ *sdkmcp.CallToolRequest, in scoreDefectsInput) (*sdkmcp.CallToolResult, scoreDefectsOutput, error) {
	g := score.ScoreGroup(in.Truth, in.Predicted)
	return nil, scoreDefectsOutput{
		Type:      toAxis(g.Type),
		Qualifier: toAxis(g.Qualifier),
		Combined:  toAxis(g.Combined),
	}, nil
}

func (s *Server) handleListRuns(_ context.Context, _ *sdkmcp.CallToolRequest, in listRunsInput) (*sdkmcp.CallToolResult, listRunsOutput, error) {
	runs, err := s.runs.ListRuns()
	if err != nil {
		return nil, listRunsOutput{}, fmt.Errorf("list_runs: %w", err)
	}
	out := listRunsOutput{Runs: []runSummary{}, Total: len(runs)}
	for i, r := range runs {
		if in.Limit > 0 && i >= in.Limit {
			break
		}
		out.Runs = append(out.Runs, toSummary(r))
	}
	return nil, out, nil
}

func (s *Server) handleGetRunScores(_ context.Context, _ *sdkmcp.CallToolRequest, in getRunScoresInput) (*sdkmcp.CallToolResult, getRunScoresOutput, error) {
	if in.RunID == "" {
		return nil, getRunScoresOutput{}, errors.New("run_id is required")
	}
	run, err := s.runs.GetRun(in.RunID)
	if err != nil {
		return nil, getRunScoresOutput{}, fmt.Errorf("get_run_scores: %w", err)
	}
	return nil, getRunScoresOutput{
		Run:       toSummary(run.RunSummary),
		Type:      run.Scores.Type.Rows(),
		Qualifier: run.Scores.Qualifier.Rows(),
		Combined:  run.Scores.Combined.Rows(),
	}, nil
}

func toAxis(c score.Counts) axisScore {
	return axisScore{Correct: c.Correct, Incorrect: c.Incorrect, Accuracy: c.Accuracy()}
}

func toSummary(r store.RunSummary) runSummary {
	return runSummary{
		ID:        r.ID,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
		Files:     r.Files,
		Skipped:   r.Skipped,
		Records:   r.Records,
	}
}
