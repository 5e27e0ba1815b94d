// Package detect runs two script verification harnesses over a directory of
// fixtures and reports the fixtures they disagree on.
package detect

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/kaspanet/scriptfuzz/infrastructure/logger"
	"github.com/kaspanet/scriptfuzz/util/panics"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Mismatch is a fixture the two checkers disagree on. A checker that failed
// has its error text recorded as its result.
type Mismatch struct {
	Fixture string
	Left    string
	Right   string
}

// Report summarizes a differential run.
type Report struct {
	Total      int
	Matched    int
	Mismatches []Mismatch
}

// Runner compares Left and Right over every fixture of a directory.
type Runner struct {
	Left  Checker
	Right Checker

	// Workers bounds the number of fixtures checked concurrently. Zero means
	// runtime.NumCPU().
	Workers int

	// MismatchDir, if set, receives a copy of every fixture the checkers
	// disagree on.
	MismatchDir string

	// OnProgress, if set, is called after every checked fixture.
	OnProgress func(done, total int)
}

// Run checks every regular file in dataDir. It stops early only if ctx is
// cancelled or a mismatching fixture can not be saved.
func (r *Runner) Run(ctx context.Context, dataDir string) (*Report, error) {
	onEnd := logger.LogAndMeasureExecutionTime(log, "Runner.Run")
	defer onEnd()

	fixtures, err := listFixtures(dataDir)
	if err != nil {
		return nil, err
	}
	if r.MismatchDir != "" {
		err := os.MkdirAll(r.MismatchDir, 0700)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create mismatch directory %s", r.MismatchDir)
		}
	}

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	log.Infof("Comparing `%s` against `%s` over %d fixtures with %d workers",
		r.Left, r.Right, len(fixtures), workers)

	report := &Report{Total: len(fixtures)}
	var reportLock sync.Mutex
	done := 0

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	spawn := panics.GoroutineWrapperFunc(log)
	for _, path := range fixtures {
		path := path
		group.Go(spawn("detect.Runner.compare", func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			mismatch, err := r.compare(groupCtx, path)
			if err != nil {
				return err
			}

			reportLock.Lock()
			defer reportLock.Unlock()
			done++
			if mismatch != nil {
				report.Mismatches = append(report.Mismatches, *mismatch)
			} else {
				report.Matched++
			}
			if r.OnProgress != nil {
				r.OnProgress(done, report.Total)
			}
			return nil
		}))
	}

	err = group.Wait()
	if err != nil {
		return nil, err
	}

	sort.Slice(report.Mismatches, func(i, j int) bool {
		return report.Mismatches[i].Fixture < report.Mismatches[j].Fixture
	})
	log.Infof("Checked %d fixtures: %d matched, %d mismatched",
		report.Total, report.Matched, len(report.Mismatches))
	return report, nil
}

func (r *Runner) compare(ctx context.Context, path string) (*Mismatch, error) {
	left, leftErr := r.Left.Check(ctx, path)
	right, rightErr := r.Right.Check(ctx, path)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if leftErr != nil {
		left = leftErr.Error()
	}
	if rightErr != nil {
		right = rightErr.Error()
	}
	if leftErr == nil && rightErr == nil && left == right {
		log.Tracef("%s: both returned %s", path, left)
		return nil, nil
	}

	name := filepath.Base(path)
	log.Warnf("%s: `%s` returned %q, `%s` returned %q", name, r.Left, left, r.Right, right)
	if r.MismatchDir != "" {
		err := copyFile(path, filepath.Join(r.MismatchDir, name))
		if err != nil {
			return nil, err
		}
	}
	return &Mismatch{Fixture: name, Left: left, Right: right}, nil
}

func listFixtures(dataDir string) ([]string, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list fixtures in %s", dataDir)
	}
	fixtures := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		fixtures = append(fixtures, filepath.Join(dataDir, entry.Name()))
	}
	return fixtures, nil
}

func copyFile(source, destination string) error {
	in, err := os.Open(source)
	if err != nil {
		return errors.WithStack(err)
	}
	defer in.Close()

	out, err := os.OpenFile(destination, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return errors.WithStack(err)
	}
	_, err = io.Copy(out, in)
	if err != nil {
		out.Close()
		return errors.Wrapf(err, "failed to copy %s to %s", source, destination)
	}
	return errors.WithStack(out.Close())
}
