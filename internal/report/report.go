// Package report writes evaluation artifacts as CSV files under one
// directory.
package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/DiogoHD/LLM-and-ODC/internal/confusion"
	"github.com/DiogoHD/LLM-and-ODC/internal/crosstab"
	"github.com/DiogoHD/LLM-and-ODC/internal/format"
	"github.com/DiogoHD/LLM-and-ODC/internal/record"
	"github.com/DiogoHD/LLM-and-ODC/internal/score"
)

// RecordsFile is the name of the extracted record set.
const RecordsFile = "output.csv"

// Writer writes artifacts into Dir, creating it on first use.
type Writer struct {
	Dir string
}

func (w Writer) write(name string, data []byte) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(w.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path, nil
}

// Records writes the record set to RecordsFile.
func (w Writer) Records(recs []record.DefectRecord) (string, error) {
	var buf bytes.Buffer
	if err := record.WriteCSV(&buf, recs); err != nil {
		return "", fmt.Errorf("encode records: %w", err)
	}
	return w.write(RecordsFile, buf.Bytes())
}

// Scores writes accuracy_<axis>.csv for the three axes.
func (w Writer) Scores(t score.Tables) ([]string, error) {
	var paths []string
	for _, axis := range score.Axes {
		p, err := w.write("accuracy_"+axis+".csv", csvBytes(format.AccuracyTable(format.CSV, axis, t.Axis(axis))))
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// Confusion writes confusion_<category>_<model>.csv for every result and one
// metrics_<category>.csv per category, in first-seen category order.
func (w Writer) Confusion(results []confusion.Result) ([]string, error) {
	var paths []string
	byCat := make(map[string][]confusion.Result)
	var cats []string
	for _, res := range results {
		name := fmt.Sprintf("confusion_%s_%s.csv", Slug(res.Category), Slug(res.Model))
		p, err := w.write(name, csvBytes(format.ConfusionTable(format.CSV, res)))
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
		if _, ok := byCat[res.Category]; !ok {
			cats = append(cats, res.Category)
		}
		byCat[res.Category] = append(byCat[res.Category], res)
	}
	for _, cat := range cats {
		p, err := w.write("metrics_"+Slug(cat)+".csv", csvBytes(format.MetricsTable(format.CSV, cat, byCat[cat])))
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// Crosstab writes crosstab_<category>.csv and its percentage twin
// crosstab_<category>_percent.csv.
func (w Writer) Crosstab(t crosstab.Table) ([]string, error) {
	base := "crosstab_" + Slug(t.Category)
	counts, err := w.write(base+".csv", csvBytes(format.CrosstabTable(format.CSV, t, false)))
	if err != nil {
		return nil, err
	}
	pct, err := w.write(base+"_percent.csv", csvBytes(format.CrosstabTable(format.CSV, t, true)))
	if err != nil {
		return []string{counts}, err
	}
	return []string{counts, pct}, nil
}

func csvBytes(s string) []byte {
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return []byte(s)
}

// Slug turns a category or model name into a file name fragment: lower case,
// spaces to '_', anything else outside [a-z0-9_.-] to '-'.
func Slug(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			return unicode.ToLower(r)
		case r == '_' || r == '-' || r == '.':
			return r
		}
		return '-'
	}, s)
}
