package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Digital-Shane/season-remux/internal/config"
	"github.com/Digital-Shane/season-remux/internal/core"
	"github.com/Digital-Shane/season-remux/internal/log"
	"github.com/Digital-Shane/season-remux/internal/media"
	"github.com/Digital-Shane/season-remux/internal/transcode"
	"github.com/gofrs/flock"
	"github.com/karrick/godirwalk"
)

// ErrLocked means another run holds the run lock.
var ErrLocked = errors.New("another run is in progress")

// Options configures one run.
type Options struct {
	// Source is the tree to rename and remux.
	Source string
	// Storage receives the transient staging directory.
	Storage string

	Workers    int
	PruneEmpty bool
	Engine     transcode.Engine
	Verifier   *transcode.Verifier

	Sink    *log.Sink
	Journal *log.Journal
	// Args are recorded in the journal session.
	Args []string
	// LockPath defaults to run.lock in the settings directory.
	LockPath string
}

// Report summarizes a finished run.
type Report struct {
	Source    string
	Staging   string
	Walk      core.Summary
	Transcode *transcode.Report
	Pruned    int
}

// Run executes the rename pass, then the remux pass, then removes staging.
// Per-item faults are reported, never returned. The error is non-nil only
// for run-fatal faults; the partial report is returned alongside it.
func Run(ctx context.Context, opts Options) (*Report, error) {
	root, err := filepath.Abs(opts.Source)
	if err != nil {
		return nil, fmt.Errorf("resolve source: %w", err)
	}
	storage, err := filepath.Abs(opts.Storage)
	if err != nil {
		return nil, fmt.Errorf("resolve storage: %w", err)
	}
	report := &Report{Source: root, Staging: filepath.Join(storage, media.StagingDirName)}

	lockPath := opts.LockPath
	if lockPath == "" {
		dir, err := config.Dir()
		if err != nil {
			return nil, err
		}
		lockPath = filepath.Join(dir, "run.lock")
	}
	if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	defer func() { _ = lock.Unlock() }()

	sink := opts.Sink
	opts.Journal.Start(opts.Args, root)
	defer func() {
		if err := opts.Journal.End(); err != nil {
			sink.Normalf("Warning: failed to save operation log: %v", err)
		}
	}()

	if err := os.MkdirAll(report.Staging, 0755); err != nil {
		return report, fmt.Errorf("create staging directory: %w", err)
	}

	ops := core.FileOps{Sink: sink, Journal: opts.Journal}
	report.Walk, err = core.NewWalker(root, ops).Walk(ctx)
	if err != nil {
		return report, fmt.Errorf("rename pass: %w", err)
	}

	report.Transcode, err = transcode.New(transcode.Options{
		Root:     root,
		Staging:  report.Staging,
		Workers:  opts.Workers,
		Engine:   opts.Engine,
		Verifier: opts.Verifier,
		Ops:      ops,
	}).Run(ctx)
	if err != nil {
		return report, fmt.Errorf("transcode pass: %w", err)
	}

	if err := os.RemoveAll(report.Staging); err != nil {
		return report, fmt.Errorf("remove staging directory: %w", err)
	}
	sink.Verbosef("Removed staging directory %s", report.Staging)

	if opts.PruneEmpty {
		report.Pruned = PruneEmptyDirs(root, ops)
	}
	return report, nil
}

// PruneEmptyDirs removes directories under root left empty by the run,
// deepest first. The root and Completed trees are kept.
func PruneEmptyDirs(root string, ops core.FileOps) int {
	pruned := 0
	err := godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(osPathname string, de *godirwalk.Dirent) error {
			if de.IsDir() && osPathname != root && media.IsReserved(de.Name()) {
				return godirwalk.SkipThis
			}
			return nil
		},
		PostChildrenCallback: func(osPathname string, de *godirwalk.Dirent) error {
			if osPathname == root || media.IsReserved(de.Name()) {
				return nil
			}
			entries, err := os.ReadDir(osPathname)
			if err != nil || len(entries) > 0 {
				return nil
			}
			if err := os.Remove(osPathname); err != nil {
				ops.Journal.LogDelete(osPathname, err)
				ops.Sink.Normalf("Error removing empty directory %s: %v", osPathname, err)
				return nil
			}
			ops.Journal.LogDelete(osPathname, nil)
			ops.Sink.Verbosef("Removed empty directory: %s", osPathname)
			pruned++
			return nil
		},
		ErrorCallback: func(osPathname string, err error) godirwalk.ErrorAction {
			ops.Sink.Normalf("Error scanning %s: %v", osPathname, err)
			return godirwalk.SkipNode
		},
		Unsorted: true,
	})
	if err != nil {
		ops.Sink.Normalf("Error pruning %s: %v", root, err)
	}
	return pruned
}
