package transcode

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/Digital-Shane/season-remux/internal/core"
	"github.com/Digital-Shane/season-remux/internal/media"
	"github.com/mhmtszr/concurrent-swiss-map"
	"github.com/remeh/sizedwaitgroup"
)

// Status is the outcome of one remux task.
type Status int

const (
	Transcoded Status = iota
	Reused
	AlreadyDone
	// Skipped marks a source whose output is claimed by another source.
	Skipped
	Failed
)

func (s Status) String() string {
	switch s {
	case Transcoded:
		return "transcoded"
	case Reused:
		return "reused"
	case AlreadyDone:
		return "already done"
	case Skipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Result records one source file's trip through the pass.
type Result struct {
	Source      string
	Staged      string
	Destination string
	Status      Status
	Err         error
}

// Report holds every task result, sorted by source path.
type Report struct {
	Results []Result
}

// Count returns the number of results with status s.
func (r *Report) Count(s Status) int {
	if r == nil {
		return 0
	}
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// Failures returns the failed results.
func (r *Report) Failures() []Result {
	if r == nil {
		return nil
	}
	var out []Result
	for _, res := range r.Results {
		if res.Status == Failed {
			out = append(out, res)
		}
	}
	return out
}

// Options configures a Coordinator.
type Options struct {
	Root    string
	Staging string
	// Workers bounds concurrent engine runs; zero means runtime.NumCPU.
	Workers int
	Engine  Engine
	// Verifier, when set, checks each fresh output before it is relocated.
	Verifier *Verifier
	Ops      core.FileOps
}

// Coordinator runs the remux pass: every source under Root is converted into
// Staging, then moved into the Completed tree.
type Coordinator struct {
	opts    Options
	results *csmap.CsMap[string, Result]
	// owners maps each staging path to the single source that writes it.
	owners map[string]string
}

// New creates a coordinator.
func New(opts Options) *Coordinator {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &Coordinator{
		opts:    opts,
		results: csmap.Create[string, Result](),
	}
}

// Run dispatches one task per source and waits for all of them. Canceling
// ctx stops further dispatch; tasks already running finish. Task faults are
// recorded in the report and never abort siblings.
func (c *Coordinator) Run(ctx context.Context) (*Report, error) {
	sources, truncated, err := Discover(ctx, c.opts.Root)
	if err != nil {
		return nil, err
	}
	for _, dir := range truncated {
		c.opts.Ops.Sink.Normalf("Skipping directory: %s (more than %d levels deep)", dir, discoverMaxDepth)
	}
	c.opts.Ops.Sink.Verbosef("Found %d files to convert", len(sources))
	c.owners = c.assignOwners(sources)

	taskCtx := context.WithoutCancel(ctx)
	swg := sizedwaitgroup.New(c.opts.Workers)
	for _, src := range sources {
		if ctx.Err() != nil {
			break
		}
		swg.Add()
		go func(src string) {
			defer swg.Done()
			c.results.Store(src, c.process(taskCtx, src))
		}(src)
	}
	swg.Wait()

	report := &Report{Results: make([]Result, 0, c.results.Count())}
	c.results.Range(func(_ string, res Result) bool {
		report.Results = append(report.Results, res)
		return false
	})
	sort.Slice(report.Results, func(i, j int) bool {
		return report.Results[i].Source < report.Results[j].Source
	})
	return report, ctx.Err()
}

func (c *Coordinator) process(ctx context.Context, src string) Result {
	sink, journal := c.opts.Ops.Sink, c.opts.Ops.Journal
	res := Result{Source: src, Status: Failed}

	rel, err := core.RelDir(c.opts.Root, src)
	if err != nil {
		res.Err = err
		sink.Normalf("Error converting %s: %v", src, err)
		return res
	}
	res.Staged, res.Destination = c.outputPaths(src, rel)

	if owner := c.owners[res.Staged]; owner != "" && owner != src {
		res.Status = Skipped
		sink.Normalf("Skipping: %s (%s converts to the same file)", src, owner)
		return res
	}

	if _, err := os.Lstat(res.Destination); err == nil {
		res.Status = AlreadyDone
		sink.Normalf("Skipping: %s (%s already exists)", src, res.Destination)
		return res
	}

	if _, err := os.Stat(res.Staged); err == nil {
		res.Status = Reused
		sink.Normalf("Skipping: %s (converted file already staged)", src)
	} else {
		if err := c.convert(ctx, src, res.Staged); err != nil {
			res.Err = err
			journal.LogTranscode(src, res.Staged, err)
			sink.Normalf("Error converting %s: %v", src, err)
			return res
		}
		res.Status = Transcoded
		sink.Verbosef("Converted: %s to %s", src, res.Staged)
	}

	if err := c.opts.Ops.MoveStaged(res.Staged, res.Destination); err != nil {
		res.Status = Failed
		res.Err = err
		journal.LogTranscode(src, res.Destination, err)
		sink.Normalf("Error moving %s: %v", res.Staged, err)
		return res
	}
	journal.LogTranscode(src, res.Destination, nil)
	sink.Destinationf("Moved: %s to %s", res.Staged, res.Destination)
	return res
}

// outputPaths returns the staging and Completed paths for src, whose
// directory relative to Root is rel.
func (c *Coordinator) outputPaths(src, rel string) (staged, dst string) {
	rel = core.TrimCompleted(rel)
	name := media.Stem(filepath.Base(src)) + media.TargetExt
	return filepath.Join(c.opts.Staging, rel, name),
		filepath.Join(core.CompletedDir(c.opts.Root, rel), name)
}

// assignOwners picks one source per staging path so no two tasks write the
// same file. Sources already in the Completed tree win over leftovers
// elsewhere; ties go to the first in sorted order.
func (c *Coordinator) assignOwners(sources []string) map[string]string {
	owners := make(map[string]string, len(sources))
	for _, completedFirst := range []bool{true, false} {
		for _, src := range sources {
			rel, err := core.RelDir(c.opts.Root, src)
			if err != nil {
				continue
			}
			if inCompleted := core.TrimCompleted(rel) != rel; inCompleted != completedFirst {
				continue
			}
			staged, _ := c.outputPaths(src, rel)
			if _, taken := owners[staged]; !taken {
				owners[staged] = src
			}
		}
	}
	return owners
}

func (c *Coordinator) convert(ctx context.Context, src, staged string) error {
	if c.opts.Engine == nil {
		return errors.New("no transcode engine configured")
	}
	if err := os.MkdirAll(filepath.Dir(staged), 0755); err != nil {
		return err
	}
	if err := c.opts.Engine.Remux(ctx, src, staged); err != nil {
		return err
	}
	if c.opts.Verifier != nil {
		if err := c.opts.Verifier.Verify(ctx, src, staged); err != nil {
			_ = os.Remove(staged)
			return err
		}
	}
	return nil
}
