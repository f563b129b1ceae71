// Package locator finds scanner reports on disk by file name.
package locator

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ethanolivertroy/secreport/internal/models"
	"github.com/ethanolivertroy/secreport/internal/parsers"
)

// ResultsDir is searched in addition to the base directory
const ResultsDir = "results"

// vcsDir holds repository metadata and is never descended into
const vcsDir = ".git"

// Reports holds candidate report paths grouped by format
type Reports map[models.SourceKind][]string

// Total returns the number of candidate entries across all formats. A file
// accepted by two parsers counts twice.
func (r Reports) Total() int {
	n := 0
	for _, paths := range r {
		n += len(paths)
	}
	return n
}

// Locate walks base and base/results and returns, for every parser, each
// file it accepts by name. Contents are not inspected. Missing roots are
// skipped and a file reachable from both roots is listed once per parser.
// Only a base that exists but cannot be walked is an error; unreadable
// entries below it are skipped.
func Locate(base string, ps []parsers.Parser) (Reports, error) {
	info, err := os.Stat(base)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return Reports{}, nil
	case err != nil:
		return nil, fmt.Errorf("failed to access %s: %w", base, err)
	case !info.IsDir():
		return nil, fmt.Errorf("%s is not a directory", base)
	}

	reports := make(Reports)
	seen := make(map[models.SourceKind]map[string]bool)

	for _, root := range []string{base, filepath.Join(base, ResultsDir)} {
		if info, err := os.Stat(root); err != nil || !info.IsDir() {
			continue
		}

		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				// Unreadable entries are not fatal
				if d != nil && d.IsDir() && p != root {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				if p != root && d.Name() == vcsDir {
					return filepath.SkipDir
				}
				return nil
			}

			clean := filepath.Clean(p)
			for _, parser := range ps {
				if !parser.CanParse(d.Name()) {
					continue
				}
				kind := parser.Kind()
				if seen[kind] == nil {
					seen[kind] = make(map[string]bool)
				}
				if seen[kind][clean] {
					continue
				}
				seen[kind][clean] = true
				reports[kind] = append(reports[kind], clean)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}

	return reports, nil
}
