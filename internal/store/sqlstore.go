package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/DiogoHD/LLM-and-ODC/internal/confusion"
	"github.com/DiogoHD/LLM-and-ODC/internal/record"
	"github.com/DiogoHD/LLM-and-ODC/internal/score"
)

// currentSchemaVersion is the target schema version for this build.
const currentSchemaVersion = schemaVersionV1

// timeLayout is fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SqlStore implements Store with SQLite.
type SqlStore struct {
	db *sql.DB
}

// Open opens or creates a SQLite DB at path and runs migrations.
// Creates the parent directory if it does not exist.
func Open(path string) (*SqlStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	// One connection keeps PRAGMA foreign_keys in effect for every statement.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	s := &SqlStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SqlStore) migrate() error {
	var tableCount int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableCount == 0 {
		return s.freshInstall()
	}

	var v int
	err = s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return s.freshInstall()
	}
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if v != currentSchemaVersion {
		return fmt.Errorf("unknown schema version %d", v)
	}
	return nil
}

func (s *SqlStore) freshInstall() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(schemaV1); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.Exec("INSERT INTO schema_version(version) VALUES(?)", currentSchemaVersion); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SqlStore) Close() error {
	return s.db.Close()
}

// SaveRun writes the run and all its tables in one transaction.
func (s *SqlStore) SaveRun(run *Run) error {
	if run == nil || run.ID == "" {
		return errors.New("run has no id")
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin run tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(
		`INSERT INTO runs(id, created_at, responses_dir, ground_truth, files, skipped, records)
		 VALUES(?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UTC().Format(timeLayout), run.ResponsesDir, run.GroundTruth,
		run.Files, run.Skipped, run.Records,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, d := range run.Defects {
		_, err := tx.Exec(
			`INSERT INTO defects(run_id, seq, sha, file, model, defect_type, defect_qualifier)
			 VALUES(?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, d.Sha, d.File, d.Model, d.Type, d.Qualifier,
		)
		if err != nil {
			return fmt.Errorf("insert defect %d: %w", i, err)
		}
	}

	for _, axis := range score.Axes {
		for model, c := range run.Scores.Axis(axis) {
			_, err := tx.Exec(
				`INSERT INTO scores(run_id, axis, model, correct, incorrect) VALUES(?, ?, ?, ?, ?)`,
				run.ID, axis, model, c.Correct, c.Incorrect,
			)
			if err != nil {
				return fmt.Errorf("insert %s score for %s: %w", axis, model, err)
			}
		}
	}

	for pos, res := range run.Confusion {
		labels, err := json.Marshal(res.Matrix.Labels)
		if err != nil {
			return fmt.Errorf("marshal labels: %w", err)
		}
		_, err = tx.Exec(
			`INSERT INTO matrices(run_id, position, category, model, labels, accuracy, precision, recall, f1)
			 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, pos, res.Category, res.Model, string(labels),
			res.Metrics.Accuracy, res.Metrics.Precision, res.Metrics.Recall, res.Metrics.F1,
		)
		if err != nil {
			return fmt.Errorf("insert matrix %s/%s: %w", res.Category, res.Model, err)
		}
		for i, row := range res.Matrix.Counts {
			for j, n := range row {
				if n == 0 {
					continue
				}
				_, err := tx.Exec(
					`INSERT INTO matrix_cells(run_id, position, actual, predicted, count) VALUES(?, ?, ?, ?, ?)`,
					run.ID, pos, res.Matrix.Labels[i], res.Matrix.Labels[j], n,
				)
				if err != nil {
					return fmt.Errorf("insert matrix cell: %w", err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run tx: %w", err)
	}
	return nil
}

const summaryColumns = `id, created_at, responses_dir, ground_truth, files, skipped, records`

func scanSummary(sc interface{ Scan(...any) error }) (RunSummary, error) {
	var rs RunSummary
	var created string
	if err := sc.Scan(&rs.ID, &created, &rs.ResponsesDir, &rs.GroundTruth, &rs.Files, &rs.Skipped, &rs.Records); err != nil {
		return rs, err
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return rs, fmt.Errorf("parse created_at: %w", err)
	}
	rs.CreatedAt = t
	return rs, nil
}

// ListRuns returns run summaries, newest first.
func (s *SqlStore) ListRuns() ([]RunSummary, error) {
	rows, err := s.db.Query(`SELECT ` + summaryColumns + ` FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()
	var out []RunSummary
	for rows.Next() {
		rs, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, rs)
	}
	return out, rows.Err()
}

// GetRun loads a run and all its tables.
func (s *SqlStore) GetRun(id string) (*Run, error) {
	rs, err := scanSummary(s.db.QueryRow(`SELECT `+summaryColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	run := &Run{RunSummary: rs, Scores: score.NewTables()}

	if run.Defects, err = s.loadDefects(id); err != nil {
		return nil, err
	}
	if err := s.loadScores(id, run.Scores); err != nil {
		return nil, err
	}
	if run.Confusion, err = s.loadMatrices(id); err != nil {
		return nil, err
	}
	return run, nil
}

func (s *SqlStore) loadDefects(id string) ([]record.DefectRecord, error) {
	rows, err := s.db.Query(
		`SELECT sha, file, model, defect_type, defect_qualifier FROM defects WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("load defects: %w", err)
	}
	defer rows.Close()
	var out []record.DefectRecord
	for rows.Next() {
		var d record.DefectRecord
		var typ, qual sql.NullString
		if err := rows.Scan(&d.Sha, &d.File, &d.Model, &typ, &qual); err != nil {
			return nil, fmt.Errorf("scan defect: %w", err)
		}
		d.Type, d.Qualifier = typ.String, qual.String
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SqlStore) loadScores(id string, tables score.Tables) error {
	rows, err := s.db.Query(`SELECT axis, model, correct, incorrect FROM scores WHERE run_id = ?`, id)
	if err != nil {
		return fmt.Errorf("load scores: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var axis, model string
		var c score.Counts
		if err := rows.Scan(&axis, &model, &c.Correct, &c.Incorrect); err != nil {
			return fmt.Errorf("scan score: %w", err)
		}
		if t := tables.Axis(axis); t != nil {
			t[model] = c
		}
	}
	return rows.Err()
}

func (s *SqlStore) loadMatrices(id string) ([]confusion.Result, error) {
	rows, err := s.db.Query(
		`SELECT category, model, labels, accuracy, precision, recall, f1
		 FROM matrices WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("load matrices: %w", err)
	}
	var out []confusion.Result
	for rows.Next() {
		var res confusion.Result
		var labels string
		m := &res.Metrics
		if err := rows.Scan(&res.Category, &res.Model, &labels, &m.Accuracy, &m.Precision, &m.Recall, &m.F1); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan matrix: %w", err)
		}
		if err := json.Unmarshal([]byte(labels), &res.Matrix.Labels); err != nil {
			rows.Close()
			return nil, fmt.Errorf("decode labels: %w", err)
		}
		res.Matrix.Counts = make([][]int, len(res.Matrix.Labels))
		for i := range res.Matrix.Counts {
			res.Matrix.Counts[i] = make([]int, len(res.Matrix.Labels))
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("load matrices: %w", err)
	}
	rows.Close()

	for pos := range out {
		if err := s.loadCells(id, pos, &out[pos].Matrix); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *SqlStore) loadCells(id string, pos int, m *confusion.Matrix) error {
	index := make(map[string]int, len(m.Labels))
	for i, l := range m.Labels {
		index[l] = i
	}
	rows, err := s.db.Query(
		`SELECT actual, predicted, count FROM matrix_cells WHERE run_id = ? AND position = ?`, id, pos)
	if err != nil {
		return fmt.Errorf("load cells: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var actual, predicted string
		var n int
		if err := rows.Scan(&actual, &predicted, &n); err != nil {
			return fmt.Errorf("scan cell: %w", err)
		}
		i, okA := index[actual]
		j, okP := index[predicted]
		if !okA || !okP {
			return fmt.Errorf("cell %s/%s outside matrix labels", actual, predicted)
		}
		m.Counts[i][j] = n
	}
	return rows.Err()
}
