// Package vault scans markdown files on disk concurrently.
package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/annotate"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/document"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/metrics"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/outline"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/render"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/section"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/stats"
)

// ErrNoFiles is returned by Scan when the paths hold no markdown files.
var ErrNoFiles = errors.New("no markdown files found")

type Options struct {
	Ranks   section.Ranks
	Outline bool
	Workers int
	Stats   *stats.ScanStats
}

// FileReport is the scan result for one file.
type FileReport struct {
	Path        string               `json:"path"`
	Words       int                  `json:"words"`
	Chars       int                  `json:"chars"`
	Annotations []section.Annotation `json:"annotations"`
	Outline     *outline.Tree        `json:"outline,omitempty"`

	snap *document.Snapshot
}

// Hints renders the report's annotations.
func (r FileReport) Hints(rr *render.Renderer, m render.Metrics) []annotate.Hint {
	return annotate.Decorate(r.snap, r.Annotations, rr, m)
}

// IsMarkdown reports whether path has a markdown extension.
func IsMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// Collect expands directories into the markdown files beneath them. Files
// named directly are kept whatever their extension. The result is sorted
// and free of duplicates.
func Collect(paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if !info.IsDir() {
			seen[filepath.Clean(p)] = struct{}{}
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if IsMarkdown(path) {
				seen[path] = struct{}{}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", p, err)
		}
	}

	files := make([]string, 0, len(seen))
	for f := range seen {
		files = append(files, f)
	}
	sort.Strings(files)
	return files, nil
}

// Scan reads and scans every markdown file under paths with at most
// opts.Workers files in flight. The first error cancels the remaining work.
func Scan(ctx context.Context, paths []string, opts Options) ([]FileReport, error) {
	files, err := Collect(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}

	reports := make([]FileReport, len(files))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for i, path := range files {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			report, err := scanFile(path, opts)
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func scanFile(path string, opts Options) (FileReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileReport{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	snap := document.New(string(data))

	start := time.Now()
	annotations := section.Scan(snap, opts.Ranks)
	elapsed := time.Since(start)

	report := FileReport{
		Path:        path,
		Annotations: annotations,
		snap:        snap,
	}
	report.Words, report.Chars = section.Count(snap.Content())
	if opts.Outline {
		report.Outline = outline.Build(snap)
	}

	metrics.RecordScan("cli", elapsed, len(annotations))
	if opts.Stats != nil {
		sectionWords := 0
		for _, a := range annotations {
			sectionWords += a.Words
		}
		opts.Stats.Record(elapsed, len(annotations), sectionWords)
	}
	return report, nil
}

// Write prints reports as plain text: the file totals, then either the
// outline or one line per visible section.
func Write(w io.Writer, reports []FileReport, rr *render.Renderer, m render.Metrics) error {
	for i, r := range reports {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		total := rr.Label(section.Annotation{Words: r.Words, Chars: r.Chars}, m)
		if _, err := fmt.Fprintln(w, strings.TrimSpace(r.Path+" "+total)); err != nil {
			return err
		}

		if r.Outline != nil {
			if err := outline.Write(w, r.Outline, rr, m); err != nil {
				return err
			}
			continue
		}
		for _, h := range r.Hints(rr, m) {
			if h.Hidden {
				continue
			}
			line := fmt.Sprintf("  %d: %s %s %s", h.Position.Line+1, strings.Repeat("#", int(h.Rank)), h.Title, h.Label)
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}
