package core

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/Digital-Shane/season-remux/internal/media"
)

// Kind is the role of a directory entry, decided once when the entry is read.
type Kind int

const (
	KindOther Kind = iota
	KindReservedDir
	KindArtifactDir
	KindPlainDir
	KindVideo
	KindPlaylist
)

func (k Kind) String() string {
	switch k {
	case KindReservedDir:
		return "reserved-dir"
	case KindArtifactDir:
		return "artifact-dir"
	case KindPlainDir:
		return "dir"
	case KindVideo:
		return "video"
	case KindPlaylist:
		return "playlist"
	default:
		return "other"
	}
}

// Entry is one classified directory entry.
type Entry struct {
	Path string
	Name string
	Kind Kind
}

// Classify tags a directory entry. Symlinks are never followed and classify
// as KindOther.
func Classify(dir string, de fs.DirEntry) Entry {
	name := de.Name()
	e := Entry{Path: filepath.Join(dir, name), Name: name, Kind: KindOther}

	switch {
	case de.Type()&fs.ModeSymlink != 0:
	case de.IsDir():
		switch {
		case media.IsReserved(name):
			e.Kind = KindReservedDir
		case media.IsPlaylist(name):
			e.Kind = KindArtifactDir
		default:
			e.Kind = KindPlainDir
		}
	case media.IsVideo(name):
		e.Kind = KindVideo
	case media.IsPlaylist(name):
		e.Kind = KindPlaylist
	}
	return e
}

// ClassifyAll classifies a directory snapshot and collects the normalized
// stems of the video files it holds.
func ClassifyAll(dir string, entries []fs.DirEntry) ([]Entry, map[string]struct{}) {
	out := make([]Entry, 0, len(entries))
	stems := make(map[string]struct{})
	for _, de := range entries {
		e := Classify(dir, de)
		if e.Kind == KindVideo {
			stems[media.StemKey(media.Stem(e.Name))] = struct{}{}
		}
		out = append(out, e)
	}
	return out, stems
}

// artifactStem returns the key an artifact is matched on.
func artifactStem(name string) string {
	return media.StemKey(strings.TrimSuffix(name, filepath.Ext(name)))
}
