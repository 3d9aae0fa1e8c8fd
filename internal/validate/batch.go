package validate

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ValidateFiles validates paths concurrently and returns one report per
// path, sorted by path. Once ctx is cancelled, files not yet started are
// reported with a Timeout finding.
func (v *Validator) ValidateFiles(ctx context.Context, paths []string) []Report {
	runID := uuid.NewString()
	log := v.log.With(zap.String("run_id", runID))
	start := time.Now()

	workers := v.opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	log.Info("starting batch", zap.Int("files", len(paths)), zap.Int("workers", workers))

	reports := make([]Report, len(paths))
	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			reports[i] = v.ValidateFile(ctx, path)
			return nil
		})
	}
	g.Wait()

	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].File < reports[j].File
	})

	s := Summarize(reports)
	log.Info("batch complete",
		zap.Int("files", s.Files),
		zap.Int("passed", s.Passed),
		zap.Int("failed", s.Failed),
		zap.Int("errors", s.Errors),
		zap.Int("warnings", s.Warnings),
		zap.Duration("elapsed", time.Since(start)))
	return reports
}

// Discover expands roots into a sorted, de-duplicated list of files. A root
// that is a file is kept whatever its extension; directories are walked and
// only files with a known extension are collected.
func Discover(roots []string, extensions map[string]Format) ([]string, error) {
	if extensions == nil {
		extensions = DefaultExtensions()
	}

	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if FormatFromPath(path, extensions) != FormatUnknown {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

// Summary aggregates a batch of reports.
type Summary struct {
	Files    int `json:"files" yaml:"files"`
	Passed   int `json:"passed" yaml:"passed"`
	Failed   int `json:"failed" yaml:"failed"`
	Errors   int `json:"errors" yaml:"errors"`
	Warnings int `json:"warnings" yaml:"warnings"`
}

// AllPassed reports whether no file failed.
func (s Summary) AllPassed() bool {
	return s.Failed == 0
}

// Summarize computes batch totals.
func Summarize(reports []Report) Summary {
	s := Summary{Files: len(reports)}
	for i := range reports {
		r := &reports[i]
		if r.Passed {
			s.Passed++
		} else {
			s.Failed++
		}
		s.Errors += r.ErrorCount()
		s.Warnings += r.WarningCount()
	}
	return s
}
