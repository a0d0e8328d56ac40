package hashdoc

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jlrickert/hashdoc/pkg/binding"
	"github.com/jlrickert/hashdoc/pkg/log"
)

// ErrNoBindings is reported by Check when none of the files declare a
// binding, which usually means the attribute names are out of date.
var ErrNoBindings = errors.New("hashdoc: no bindings found")

// ErrCheckFailed is returned when any binding would not resolve.
var ErrCheckFailed = errors.New("hashdoc: unresolved bindings")

// Problem is one binding that would not resolve cleanly.
type Problem struct {
	Path        string
	ManifestURL string
	Key         string

	// Err is set for fetch and parse failures; a nil Err means the key is
	// missing from the manifest.
	Err error
}

func (p Problem) String() string {
	if p.Err != nil {
		return fmt.Sprintf("%s: %s: %v", p.Path, p.Key, p.Err)
	}
	return fmt.Sprintf("%s: %s: key not found in %s", p.Path, p.Key, p.ManifestURL)
}

// CheckReport summarizes a dry run over a set of documents.
type CheckReport struct {
	Files    int
	Bindings int
	Resolved int
	Problems []Problem
}

// Write prints problems and a summary line to w.
func (r *CheckReport) Write(w io.Writer) error {
	for _, p := range r.Problems {
		if _, err := fmt.Fprintln(w, p.String()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d files, %d bindings, %d resolved, %d problems\n",
		r.Files, r.Bindings, r.Resolved, len(r.Problems))
	return err
}

// Check resolves every binding under paths without writing anything. It
// returns ErrCheckFailed when a binding failed or its key was missing, and
// ErrNoBindings when there was nothing to check.
func (h *Hashdoc) Check(ctx context.Context, paths []string) (*CheckReport, error) {
	lg := log.FromContext(ctx)
	files, err := h.CollectFiles(paths)
	if err != nil {
		return nil, err
	}

	report := &CheckReport{Files: len(files)}
	for _, path := range files {
		res, err := h.RewriteFile(ctx, path, false)
		if err != nil {
			return report, err
		}
		report.add(path, res.Report)
	}

	lg.Debug("check finished", "files", report.Files, "bindings", report.Bindings,
		"problems", len(report.Problems))
	if report.Bindings == 0 {
		return report, ErrNoBindings
	}
	if len(report.Problems) > 0 {
		return report, ErrCheckFailed
	}
	return report, nil
}

func (r *CheckReport) add(path string, br binding.Report) {
	r.Bindings += br.Len()
	r.Resolved += len(br.Resolved())
	for _, o := range br.Outcomes {
		if o.Err == nil && o.Result.Found {
			continue
		}
		r.Problems = append(r.Problems, Problem{
			Path:        path,
			ManifestURL: o.ManifestURL,
			Key:         o.Key,
			Err:         o.Err,
		})
	}
}
