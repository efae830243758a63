// Package pipeline runs every filter job over one shared raster, one
// goroutine per job, and writes each result to its own file.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"github.com/PhantomInTheWire/ppm-filter-pipeline/pkg/filter"
	"github.com/PhantomInTheWire/ppm-filter-pipeline/pkg/ppm"
)

// Options control where workers write and what they log to.
type Options struct {
	// OutputDir defaults to the working directory.
	OutputDir string
	// Previews also writes a PNG rendering next to each output.
	Previews bool
	Logger   logrus.FieldLogger
}

// Result is what one worker reports back.
type Result struct {
	Job     filter.Job
	Path    string
	Preview string
	Pixels  int
	Skipped int
	Dropped int
	Err     error
}

// Report collects the results of a run in job order.
type Report struct {
	Results []Result
	Elapsed time.Duration
}

// Err joins every worker error, or returns nil if all outputs were written.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return errors.Join(errs...)
}

// Written returns the paths of every output that was written successfully.
func (r *Report) Written() []string {
	var paths []string
	for _, res := range r.Results {
		if res.Err == nil {
			paths = append(paths, res.Path)
			if res.Preview != "" {
				paths = append(paths, res.Preview)
			}
		}
	}
	return paths
}

// RunFile parses the raster at path and runs jobs over it. Elapsed covers
// the parse and every worker. An unreadable input fails before any worker
// starts; worker failures are reported through the Report.
func RunFile(path string, jobs []filter.Job, opts Options) (*Report, error) {
	start := time.Now()
	im, err := ppm.ReadFile(path)
	if err != nil {
		return nil, err
	}
	results := Run(im, jobs, opts)
	return &Report{Results: results, Elapsed: time.Since(start)}, nil
}

// Run starts one worker per job over im and waits for all of them.
// Results come back in the order of jobs regardless of completion order.
func Run(im *ppm.Image, jobs []filter.Job, opts Options) []Result {
	log := opts.Logger
	if log == nil {
		log = discardLogger()
	}

	var wg sync.WaitGroup
	results := make([]Result, len(jobs))
	for i, job := range jobs {
		wg.Add(1)
		go func(idx int, job filter.Job) {
			defer wg.Done()

			res := process(im, job, opts)
			entry := log.WithFields(logrus.Fields{
				"filter": job.Kind.String(),
				"output": res.Path,
				"pixels": res.Pixels,
			})
			switch {
			case res.Err != nil:
				entry.WithError(res.Err).Error("filter failed")
			case res.Skipped > 0 || res.Dropped > 0:
				entry.WithFields(logrus.Fields{
					"skipped": res.Skipped,
					"dropped": res.Dropped,
				}).Warn("malformed pixel data ignored")
			default:
				entry.Debug("filter done")
			}
			results[idx] = res
		}(i, job)
	}
	wg.Wait()

	return results
}

func process(im *ppm.Image, job filter.Job, opts Options) Result {
	res := Result{Job: job, Path: filepath.Join(opts.OutputDir, job.Output)}
	if job.Apply == nil {
		res.Err = fmt.Errorf("%s: no filter function", job.Kind)
		return res
	}

	pixels, skipped, dropped := im.Pixels()
	res.Pixels, res.Skipped, res.Dropped = len(pixels), skipped, dropped

	out := filter.Apply(job.Apply, pixels)
	if err := os.WriteFile(res.Path, ppm.Encode(im, out), 0o644); err != nil {
		res.Err = fmt.Errorf("write %s: %w", res.Path, err)
		return res
	}

	if opts.Previews {
		preview := strings.TrimSuffix(res.Path, filepath.Ext(res.Path)) + ".png"
		img, err := ppm.ToNRGBA(im, out)
		if err == nil {
			err = imaging.Save(img, preview)
		}
		if err != nil {
			res.Err = fmt.Errorf("preview %s: %w", preview, err)
			return res
		}
		res.Preview = preview
	}
	return res
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
