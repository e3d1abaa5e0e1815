package record

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/DiogoHD/LLM-and-ODC/internal/extract"
	"github.com/DiogoHD/LLM-and-ODC/internal/logging"
)

// ResponseExt is the extension of model response files.
const ResponseExt = ".txt"

// ErrNotUTF8 marks a response file that is not valid UTF-8.
var ErrNotUTF8 = errors.New("response is not valid UTF-8")

// Skipped is a response file that could not be read.
type Skipped struct {
	Path string
	Err  error
}

// WalkResult is what Walk produced from a response tree.
type WalkResult struct {
	Records []DefectRecord
	Files   int // response files read successfully
	Skipped []Skipped
}

// WalkOptions tunes Walk. The zero value uses GOMAXPROCS workers.
type WalkOptions struct {
	Workers int
}

type responseFile struct {
	path, sha, file, model string
}

// Walk reads every <root>/<sha>/<file>/<model>.txt response, extracts its
// defect pairs and returns the records in path order. Unreadable files and
// directories are logged and listed in Skipped; only a failure to walk root
// itself is an error.
func Walk(ctx context.Context, root string, opts WalkOptions) (*WalkResult, error) {
	logger := logging.New("walk")

	files, unlisted, err := listResponses(root)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	perFile := make([][]DefectRecord, len(files))
	errs := make([]error, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, rf := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text, err := readResponse(rf.path)
			if err != nil {
				errs[i] = err
				return nil
			}
			perFile[i] = FromPairs(rf.sha, rf.file, rf.model, extract.Defects(text))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	res := &WalkResult{}
	for _, sk := range unlisted {
		logger.Warn("skipping directory", "path", sk.Path, "error", sk.Err)
		res.Skipped = append(res.Skipped, sk)
	}
	for i, rf := range files {
		if errs[i] != nil {
			logger.Warn("skipping response", "path", rf.path, "error", errs[i])
			res.Skipped = append(res.Skipped, Skipped{Path: rf.path, Err: errs[i]})
			continue
		}
		res.Files++
		res.Records = append(res.Records, perFile[i]...)
	}
	logger.Info("walk done", "root", root, "files", res.Files, "records", len(res.Records), "skipped", len(res.Skipped))
	return res, nil
}

// listResponses finds response files exactly three levels below root.
// WalkDir visits entries in lexical order, which fixes the output order.
// Directories below root that cannot be read are returned as skipped.
func listResponses(root string) ([]responseFile, []Skipped, error) {
	l := &lister{root: root}
	if err := filepath.WalkDir(root, l.visit); err != nil {
		return nil, nil, fmt.Errorf("list responses in %s: %w", root, err)
	}
	return l.files, l.skipped, nil
}

type lister struct {
	root    string
	files   []responseFile
	skipped []Skipped
}

func (l *lister) visit(path string, d fs.DirEntry, err error) error {
	if err != nil {
		if path == l.root {
			return err
		}
		l.skipped = append(l.skipped, Skipped{Path: path, Err: err})
		if d != nil && !d.IsDir() {
			return nil
		}
		return fs.SkipDir
	}
	if d.IsDir() || !strings.HasSuffix(d.Name(), ResponseExt) {
		return nil
	}
	rel, err := filepath.Rel(l.root, path)
	if err != nil {
		return err
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 3 {
		return nil
	}
	l.files = append(l.files, responseFile{
		path:  path,
		sha:   parts[0],
		file:  parts[1],
		model: strings.TrimSuffix(parts[2], ResponseExt),
	})
	return nil
}

func readResponse(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if !utf8.Valid(b) {
		return "", ErrNotUTF8
	}
	return string(b), nil
}

// ResponsePath is where the response of model for file of commit sha lives
// under root. file is a repository path; it is passed through SafeName.
func ResponsePath(root, sha, file, model string) string {
	return filepath.Join(root, sha, SafeName(file), model+ResponseExt)
}
