package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Digital-Shane/season-remux/internal/log"
	"github.com/Digital-Shane/season-remux/internal/media"
)

var (
	// ErrAlreadyCanonical means no rename was needed. It is not a failure.
	ErrAlreadyCanonical = errors.New("already canonical")
	// ErrNoEpisode means no episode token could be derived from the name.
	ErrNoEpisode = errors.New("no episode token")
)

// FileOps performs the journaled filesystem mutations shared by the rename
// pass and the transcode pass. The zero value logs nothing and journals
// nothing.
type FileOps struct {
	Sink    *log.Sink
	Journal *log.Journal
}

// RenameIfNeeded renames a video file to its canonical name inside the same
// directory and returns the new path. An empty season uses the default season.
// A name is taken when it exists in the file's directory or in any of the
// reserved directories; taken names get _1, _2, ... appended to the episode.
func (o *FileOps) RenameIfNeeded(path, season string, reserved ...string) (string, error) {
	name := filepath.Base(path)
	if media.IsCanonical(name) {
		o.Sink.Verbosef("Already canonical: %s", path)
		return "", ErrAlreadyCanonical
	}

	ext := filepath.Ext(name)
	episode, ok := media.ExtractEpisode(media.Stem(name))
	if !ok {
		o.Sink.Normalf("Warning: could not extract episode number from %q, skipping rename", path)
		return "", fmt.Errorf("%s: %w", path, ErrNoEpisode)
	}
	if season == "" {
		season = media.DefaultSeason
	}

	dir := filepath.Dir(path)
	taken := func(name string) bool {
		if pathExists(filepath.Join(dir, name)) {
			return true
		}
		for _, r := range reserved {
			if pathExists(filepath.Join(r, name)) {
				return true
			}
		}
		return false
	}
	newName := media.CanonicalName(season, episode, ext)
	for n := 1; taken(newName); n++ {
		newName = media.CanonicalName(season, episode+"_"+strconv.Itoa(n), ext)
	}
	newPath := filepath.Join(dir, newName)

	if err := renameFunc(path, newPath); err != nil {
		o.Journal.LogRename(path, newPath, err)
		o.Sink.Normalf("Error renaming %q: %v", path, err)
		return "", fmt.Errorf("rename %s: %w", path, err)
	}
	o.Journal.LogRename(path, newPath, nil)
	o.Sink.Verbosef("Renamed: %s to %s", path, newPath)
	return newPath, nil
}

// DeleteCompanion removes the playlist file that shares a video's stem in
// dir. A missing playlist is not an error.
func (o *FileOps) DeleteCompanion(dir, stem string) (bool, error) {
	playlist := filepath.Join(dir, stem+media.PlaylistExt)
	if !pathExists(playlist) {
		return false, nil
	}
	if err := os.Remove(playlist); err != nil {
		o.Journal.LogDelete(playlist, err)
		o.Sink.Normalf("Error removing playlist %s: %v", playlist, err)
		return false, err
	}
	o.Journal.LogDelete(playlist, nil)
	o.Sink.Verbosef("Removed playlist: %s", playlist)
	return true, nil
}

// DeleteArtifactDir recursively removes a playlist artifact directory.
func (o *FileOps) DeleteArtifactDir(path string) error {
	if err := os.RemoveAll(path); err != nil {
		o.Journal.LogDelete(path, err)
		o.Sink.Normalf("Error removing playlist folder %s: %v", path, err)
		return err
	}
	o.Journal.LogDelete(path, nil)
	o.Sink.Verbosef("Removed playlist folder: %s", path)
	return nil
}

func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
