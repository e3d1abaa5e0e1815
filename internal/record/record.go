// Package record holds the flat defect record set shared by extraction,
// scoring and persistence, plus its CSV form.
package record

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/DiogoHD/LLM-and-ODC/internal/extract"
)

// HumanModel is the Model value carried by ground-truth records.
const HumanModel = "Human"

// CSV column names, in output order.
const (
	ColSha       = "Sha"
	ColFile      = "File Name"
	ColModel     = "Model"
	ColType      = "Defect Type"
	ColQualifier = "Defect Qualifier"
)

var header = []string{ColSha, ColFile, ColModel, ColType, ColQualifier}

// DefectRecord is one classification of one file of one commit by one model.
// Empty Type or Qualifier means the value was absent. File is the response
// tree directory name (see SafeName), empty for commit-level records.
type DefectRecord struct {
	Sha       string `json:"sha"`
	File      string `json:"file,omitempty"`
	Model     string `json:"model"`
	Type      string `json:"defect_type,omitempty"`
	Qualifier string `json:"defect_qualifier,omitempty"`
}

// Pair drops the key fields.
func (r DefectRecord) Pair() extract.Pair {
	return extract.Pair{Type: r.Type, Qualifier: r.Qualifier}
}

// FromPairs expands the pairs extracted from one response file.
func FromPairs(sha, file, model string, pairs []extract.Pair) []DefectRecord {
	out := make([]DefectRecord, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, DefectRecord{Sha: sha, File: file, Model: model, Type: p.Type, Qualifier: p.Qualifier})
	}
	return out
}

// SafeName turns a repository path into the single directory name used in the
// response tree: "/" becomes "-" and "." becomes "_".
func SafeName(path string) string {
	return strings.NewReplacer("/", "-", ".", "_").Replace(path)
}

// Models returns the distinct model names in first-seen order.
func Models(recs []DefectRecord) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range recs {
		if !seen[r.Model] {
			seen[r.Model] = true
			out = append(out, r.Model)
		}
	}
	return out
}

// WriteCSV writes recs with a header row.
func WriteCSV(w io.Writer, recs []DefectRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range recs {
		if err := cw.Write([]string{r.Sha, r.File, r.Model, r.Type, r.Qualifier}); err != nil {
			return fmt.Errorf("write record %s/%s: %w", r.Sha, r.Model, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads a record set written by WriteCSV. Columns are located by
// header name, so extra columns and other orders are accepted.
func ReadCSV(r io.Reader) ([]DefectRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(head))
	for i, h := range head {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, col := range header {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("read header: missing column %q", col)
		}
	}

	var out []DefectRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		get := func(col string) string {
			if i := idx[col]; i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
		out = append(out, DefectRecord{
			Sha:       get(ColSha),
			File:      get(ColFile),
			Model:     get(ColModel),
			Type:      get(ColType),
			Qualifier: get(ColQualifier),
		})
	}
	return out, nil
}
