package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Engine converts src into dst without re-encoding. It is all-or-nothing:
// on error dst does not exist.
type Engine interface {
	Remux(ctx context.Context, src, dst string) error
}

// execFunc runs a command and returns its captured stderr.
type execFunc func(ctx context.Context, name string, args ...string) (string, error)

// FFmpeg remuxes through an external ffmpeg binary with stream copy.
type FFmpeg struct {
	Path string
	exec execFunc
}

// NewFFmpeg creates an engine for the binary at path ("ffmpeg" when empty).
func NewFFmpeg(path string) *FFmpeg {
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpeg{Path: path, exec: runCommand}
}

// Args returns the ffmpeg arguments for a stream-copy remux.
func (f *FFmpeg) Args(src, dst string) []string {
	return []string{"-hide_banner", "-nostdin", "-loglevel", "error", "-i", src, "-codec", "copy", dst}
}

// PartialPath is where an in-flight output is written before it is renamed
// into place.
func PartialPath(dst string) string {
	ext := filepath.Ext(dst)
	return strings.TrimSuffix(dst, ext) + ".partial" + ext
}

// Remux writes to the partial path and renames it onto dst only after ffmpeg
// exits cleanly with output present, so an interrupted run never leaves a
// file at dst.
func (f *FFmpeg) Remux(ctx context.Context, src, dst string) error {
	partial := PartialPath(dst)
	_ = os.Remove(partial)

	stderr, err := f.exec(ctx, f.Path, f.Args(src, partial)...)
	if err != nil {
		_ = os.Remove(partial)
		if msg := strings.TrimSpace(stderr); msg != "" {
			return fmt.Errorf("ffmpeg %s: %w: %s", filepath.Base(src), err, msg)
		}
		return fmt.Errorf("ffmpeg %s: %w", filepath.Base(src), err)
	}

	if info, err := os.Stat(partial); err != nil || info.IsDir() {
		_ = os.Remove(partial)
		return fmt.Errorf("ffmpeg %s: %w", filepath.Base(src), ErrNoOutput)
	}
	if err := os.Rename(partial, dst); err != nil {
		_ = os.Remove(partial)
		return fmt.Errorf("finalize %s: %w", dst, err)
	}
	return nil
}

// ErrNoOutput reports an engine run that exited cleanly without output.
var ErrNoOutput = errors.New("no output produced")

func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderrBuf bytes.Buffer
	cmd.Stderr = &stderrBuf
	err := cmd.Run()
	return stderrBuf.String(), err
}
