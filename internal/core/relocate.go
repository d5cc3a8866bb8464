package core

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Digital-Shane/season-remux/internal/media"
)

// Replaceable so tests can simulate rename faults such as EXDEV.
var renameFunc = os.Rename

// ErrDestinationExists reports a move blocked by an existing file.
var ErrDestinationExists = errors.New("destination already exists")

// CrossDeviceError reports a move across filesystems. Only MoveStaged falls
// back to copy and delete.
type CrossDeviceError struct {
	Src string
	Dst string
	Err error
}

func (e *CrossDeviceError) Error() string {
	return fmt.Sprintf("cannot move %q to %q across filesystems: %v", e.Src, e.Dst, e.Err)
}

func (e *CrossDeviceError) Unwrap() error { return e.Err }

// IsCrossDevice reports whether err is a *CrossDeviceError.
func IsCrossDevice(err error) bool {
	var e *CrossDeviceError
	return errors.As(err, &e)
}

// RelDir returns the directory of path relative to root. Paths outside root
// are rejected.
func RelDir(root, path string) (string, error) {
	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil {
		return "", fmt.Errorf("relative path of %s: %w", path, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside %s", path, root)
	}
	return rel, nil
}

// TrimCompleted drops a leading Completed segment, matched case-insensitively.
func TrimCompleted(rel string) string {
	first, rest, _ := strings.Cut(rel, string(filepath.Separator))
	if !media.IsReserved(first) {
		return rel
	}
	if rest == "" {
		return "."
	}
	return rest
}

// CompletedDir returns root/Completed/rel.
func CompletedDir(root, rel string) string {
	return filepath.Join(root, media.CompletedDirName, rel)
}

// Relocate moves path into the Completed tree under root, mirroring its
// directory relative to root, and returns the destination.
func (o *FileOps) Relocate(path, root string) (string, error) {
	rel, err := RelDir(root, path)
	if err != nil {
		o.Journal.LogMove(path, "", err)
		o.Sink.Normalf("Error moving %q: %v", path, err)
		return "", err
	}
	dst := filepath.Join(CompletedDir(root, rel), filepath.Base(path))

	if err := o.MoveNoOverwrite(path, dst); err != nil {
		o.Journal.LogMove(path, dst, err)
		o.Sink.Normalf("Error moving %q: %v", path, err)
		return "", err
	}
	o.Journal.LogMove(path, dst, nil)
	o.Sink.Destinationf("Moved and renamed: %s to %s", path, dst)
	return dst, nil
}

// MoveNoOverwrite renames src to dst, creating dst's directory. An existing
// dst yields ErrDestinationExists and src is left in place.
func (o *FileOps) MoveNoOverwrite(src, dst string) error {
	if err := o.EnsureDir(filepath.Dir(dst)); err != nil {
		return err
	}
	if pathExists(dst) {
		return fmt.Errorf("%w: %s", ErrDestinationExists, dst)
	}
	if err := renameFunc(src, dst); err != nil {
		if isEXDEV(err) {
			return &CrossDeviceError{Src: src, Dst: dst, Err: err}
		}
		return err
	}
	return nil
}

// MoveStaged moves a staged output to dst like MoveNoOverwrite, copying when
// the staging area is on another filesystem. The copy never replaces an
// existing dst and src is removed only once dst is synced.
func (o *FileOps) MoveStaged(src, dst string) error {
	err := o.MoveNoOverwrite(src, dst)
	if !IsCrossDevice(err) {
		return err
	}
	o.Sink.Verbosef("Copying %s across filesystems", src)
	if err := copyNoOverwrite(src, dst); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		o.Sink.Normalf("Warning: could not remove staged file %s: %v", src, err)
	}
	return nil
}

func copyNoOverwrite(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", ErrDestinationExists, dst)
	}
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = out.Close()
			_ = os.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	if err = out.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", dst, err)
	}
	return out.Close()
}

// EnsureDir creates dir and any missing parents. Each directory it creates is
// journaled outermost first. Concurrent callers creating the same directory
// both succeed.
func (o *FileOps) EnsureDir(dir string) error {
	var missing []string
	for d := filepath.Clean(dir); !pathExists(d); d = filepath.Dir(d) {
		missing = append(missing, d)
		if parent := filepath.Dir(d); parent == d {
			break
		}
	}
	if len(missing) == 0 {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		o.Journal.LogCreateDir(dir, err)
		return fmt.Errorf("create %s: %w", dir, err)
	}
	for i := len(missing) - 1; i >= 0; i-- {
		o.Journal.LogCreateDir(missing[i], nil)
	}
	return nil
}
