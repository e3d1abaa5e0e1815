// Package groundtruth loads the human-labeled vulnerability sheet and
// flattens it into the record shape used for scoring.
package groundtruth

import (
	"cmp"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/DiogoHD/LLM-and-ODC/internal/record"
)

// Column headers of the ground-truth sheet.
const (
	ColVID            = "V_ID"
	ColProject        = "Project"
	ColCVE            = "CVE"
	ColClassification = "V_CLASSIFICATION"
	ColCommit         = "P_COMMIT"
	ColType           = "Defect Type"
	ColQualifier      = "Defect Qualifier"
	ColFiles          = "# Files"
	ColFilenames      = "Filenames"
)

// filenameAliases are accepted in place of ColFilenames.
var filenameAliases = []string{ColFilenames, "Filename(s)", "Filename"}

var required = []string{ColVID, ColProject, ColCVE, ColClassification, ColCommit, ColType, ColQualifier, ColFiles}

// ErrMissingColumn is returned when the header row lacks a required column.
var ErrMissingColumn = errors.New("missing ground-truth column")

// Record is one human-assigned defect. Empty Type or Qualifier means the
// sheet left the cell blank.
type Record struct {
	VID            string `json:"v_id"`
	Project        string `json:"project"`
	CVE            string `json:"cve"`
	Classification string `json:"v_classification"`
	Commit         string `json:"p_commit"`
	Type           string `json:"defect_type,omitempty"`
	Qualifier      string `json:"defect_qualifier,omitempty"`
	Files          int    `json:"files"`
	Filename       string `json:"filename,omitempty"`
}

// CommitLevel reports whether the record applies to the whole commit rather
// than to a single file.
func (r Record) CommitLevel() bool {
	return r.Files != 1 || r.Filename == ""
}

// Load reads ground truth from an .xlsx workbook (first sheet) or a .csv file.
func Load(path string) ([]Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return loadXLSX(path)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open ground truth: %w", err)
		}
		defer f.Close()
		return ReadCSV(f)
	default:
		return nil, fmt.Errorf("load ground truth %s: unsupported extension", path)
	}
}

func loadXLSX(path string) ([]Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return FromRows(rows)
}

// ReadCSV reads ground truth in CSV form.
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read ground truth csv: %w", err)
	}
	return FromRows(rows)
}

// FromRows parses a sheet given as rows of cells. The header is the first row
// that contains a P_COMMIT cell; rows above it (titles) are ignored, as are
// rows without a commit. Blank V_ID and Project cells repeat the value above
// them, since the sheet merges those cells across a vulnerability's commits.
func FromRows(rows [][]string) ([]Record, error) {
	hdr := slices.IndexFunc(rows, func(row []string) bool {
		return slices.ContainsFunc(row, func(c string) bool { return strings.TrimSpace(c) == ColCommit })
	})
	if hdr < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, ColCommit)
	}

	idx := make(map[string]int)
	for i, c := range rows[hdr] {
		c = strings.TrimSpace(c)
		if _, dup := idx[c]; !dup {
			idx[c] = i
		}
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}
	fileCol := -1
	for _, alias := range filenameAliases {
		if i, ok := idx[alias]; ok {
			fileCol = i
			break
		}
	}
	if fileCol < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, ColFilenames)
	}

	var out []Record
	var vid, project string
	for n, row := range rows[hdr+1:] {
		cell := func(i int) string {
			if i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
		vid = cmp.Or(cell(idx[ColVID]), vid)
		project = cmp.Or(cell(idx[ColProject]), project)
		commit := cell(idx[ColCommit])
		if commit == "" {
			continue
		}
		files, err := parseCount(cell(idx[ColFiles]))
		if err != nil {
			return nil, fmt.Errorf("row %d: parse %s: %w", hdr+n+2, ColFiles, err)
		}
		out = append(out, Record{
			VID:            vid,
			Project:        project,
			CVE:            cell(idx[ColCVE]),
			Classification: cell(idx[ColClassification]),
			Commit:         commit,
			Type:           cell(idx[ColType]),
			Qualifier:      cell(idx[ColQualifier]),
			Files:          files,
			Filename:       cell(fileCol),
		})
	}
	return out, nil
}

// parseCount accepts integer counts written as "2" or "2.0". Blank is 0.
func parseCount(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return int(f), nil
}

// Commits returns the distinct commits in sheet order.
func Commits(recs []Record) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range recs {
		if !seen[r.Commit] {
			seen[r.Commit] = true
			out = append(out, r.Commit)
		}
	}
	return out
}

// ByCommit groups records by commit, keeping sheet order within a group.
func ByCommit(recs []Record) map[string][]Record {
	out := make(map[string][]Record)
	for _, r := range recs {
		out[r.Commit] = append(out[r.Commit], r)
	}
	return out
}

// SingleDefectCommits returns the commits labeled with exactly one defect.
func SingleDefectCommits(recs []Record) map[string]bool {
	n := make(map[string]int)
	for _, r := range recs {
		n[r.Commit]++
	}
	out := make(map[string]bool)
	for c, k := range n {
		if k == 1 {
			out[c] = true
		}
	}
	return out
}

// AsDefects flattens ground truth into defect records with Model set to
// record.HumanModel. File-level rows carry the response-tree name of their
// file; commit-level rows leave File empty.
func AsDefects(recs []Record) []record.DefectRecord {
	out := make([]record.DefectRecord, 0, len(recs))
	for _, r := range recs {
		d := record.DefectRecord{Sha: r.Commit, Model: record.HumanModel, Type: r.Type, Qualifier: r.Qualifier}
		if !r.CommitLevel() {
			d.File = record.SafeName(r.Filename)
		}
		out = append(out, d)
	}
	return out
}
