package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Digital-Shane/season-remux/internal/media"
)

// Summary counts the outcomes of one rename pass.
type Summary struct {
	Renamed          int
	Canonical        int
	Relocated        int
	NoEpisode        int
	Conflicts        int
	Failed           int
	ArtifactsRemoved int
	OrphansKept      int
	PlaylistsRemoved int
	ReservedSkipped  int
}

// Walker runs the sequential rename and relocate pass over a source tree.
type Walker struct {
	FileOps
	Root string
}

// NewWalker creates a walker for root.
func NewWalker(root string, ops FileOps) *Walker {
	return &Walker{FileOps: ops, Root: filepath.Clean(root)}
}

// Walk processes the tree one directory at a time. Files at the root carry
// no season. Each subdirectory derives its own season from its name and
// applies it to its direct files only. Per-item faults are counted, not
// returned; the error is non-nil only when the root cannot be read or ctx is
// canceled between entries.
func (w *Walker) Walk(ctx context.Context) (Summary, error) {
	var sum Summary
	if err := w.processDirectory(ctx, w.Root, "", &sum); err != nil {
		return sum, err
	}
	return sum, nil
}

func (w *Walker) processDirectory(ctx context.Context, dir, season string, sum *Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Snapshot before any change so renames and moves do not feed back into the loop
	snapshot, err := os.ReadDir(dir)
	if err != nil {
		if dir == w.Root {
			return fmt.Errorf("read %s: %w", dir, err)
		}
		w.Sink.Normalf("Error reading directory %s: %v", dir, err)
		sum.Failed++
		return nil
	}
	entries, stems := ClassifyAll(dir, snapshot)
	w.Sink.Verbosef("Directory %s: season %q, %d video stems", dir, season, len(stems))

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch e.Kind {
		case KindReservedDir:
			w.Sink.Normalf("Skipping directory: %s (reserved output folder)", e.Path)
			sum.ReservedSkipped++

		case KindArtifactDir:
			if _, ok := stems[artifactStem(e.Name)]; !ok {
				w.Sink.Normalf("Skipped removing playlist folder: %s (no matching video file)", e.Path)
				sum.OrphansKept++
				continue
			}
			if err := w.DeleteArtifactDir(e.Path); err != nil {
				sum.Failed++
				continue
			}
			sum.ArtifactsRemoved++

		case KindVideo:
			w.processVideoFile(e.Path, season, sum)

		case KindPlainDir:
			childSeason, ok := media.ExtractSeason(e.Name)
			if !ok {
				w.Sink.Verbosef("No season number found in %q", e.Name)
			}
			if err := w.processDirectory(ctx, e.Path, childSeason, sum); err != nil {
				return err
			}

		default:
			w.Sink.Verbosef("Ignoring %s (%s)", e.Path, e.Kind)
		}
	}
	return nil
}

func (w *Walker) processVideoFile(path, season string, sum *Summary) {
	name := filepath.Base(path)
	effective := path

	if media.IsCanonical(name) {
		sum.Canonical++
	} else {
		// Names already relocated count as taken so the move cannot conflict
		var reserved []string
		if rel, err := RelDir(w.Root, path); err == nil {
			reserved = append(reserved, CompletedDir(w.Root, rel))
		}
		newPath, err := w.RenameIfNeeded(path, season, reserved...)
		switch {
		case errors.Is(err, ErrNoEpisode):
			sum.NoEpisode++
			return
		case err != nil:
			sum.Failed++
			return
		}
		effective = newPath
		sum.Renamed++
	}

	if _, err := w.Relocate(effective, w.Root); err != nil {
		if errors.Is(err, ErrDestinationExists) {
			sum.Conflicts++
		} else {
			sum.Failed++
		}
		return
	}
	sum.Relocated++

	// The playlist keeps the stem the video had before the rename
	removed, err := w.DeleteCompanion(filepath.Dir(path), media.Stem(name))
	if err != nil {
		sum.Failed++
	} else if removed {
		sum.PlaylistsRemoved++
	}
}
