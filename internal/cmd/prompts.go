package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Digital-Shane/season-remux/internal/config"
	"github.com/Digital-Shane/season-remux/internal/log"
	"github.com/Digital-Shane/season-remux/internal/tui"
	"github.com/mattn/go-isatty"
)

// Prompt hooks. Tests replace them.
var (
	pickDirectory = tui.PickDirectory
	confirm       = tui.Confirm
	pickVerbosity = tui.PickVerbosity
	isInteractive = stdoutIsTerminal
)

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

var errPathsRequired = errors.New("source and storage directories are required: pass --source and --storage, or --use-saved")

// pathRequest is what the run command knows about the two directories
// before asking the operator.
type pathRequest struct {
	source, storage string
	useSaved        bool
	saved           *config.Settings
	hasSaved        bool
	interactive     bool
}

// resolvePaths settles the source and storage directories from flags, saved
// settings and, when interactive, the operator. Flags win over saved values.
func resolvePaths(out io.Writer, req pathRequest) (source, storage string, err error) {
	source, storage = req.source, req.storage
	for _, dir := range []string{source, storage} {
		if dir == "" {
			continue
		}
		if err := config.ValidateDir(dir); err != nil {
			return "", "", err
		}
	}
	if source != "" && storage != "" {
		return source, storage, nil
	}

	if req.hasSaved && req.saved.HasPaths() && savedPathsValid(out, req.saved) {
		use := req.useSaved
		if !use && req.interactive {
			question := fmt.Sprintf("Use previous settings?\n\n  source:  %s\n  storage: %s",
				req.saved.StartingDir, req.saved.StorageLocation)
			if use, err = confirm(question); err != nil {
				return "", "", err
			}
		}
		if use {
			if source == "" {
				source = req.saved.StartingDir
			}
			if storage == "" {
				storage = req.saved.StorageLocation
			}
		}
	}
	if source != "" && storage != "" {
		return source, storage, nil
	}
	if !req.interactive {
		return "", "", errPathsRequired
	}

	start := ""
	if req.saved != nil {
		start = req.saved.StartingDir
	}
	if source == "" {
		if source, err = promptDir(out, "Select the source directory", start); err != nil {
			return "", "", err
		}
	}
	if storage == "" {
		if storage, err = promptDir(out, "Select the storage directory for staged conversions", source); err != nil {
			return "", "", err
		}
	}
	return source, storage, nil
}

func savedPathsValid(out io.Writer, s *config.Settings) bool {
	for _, dir := range []string{s.StartingDir, s.StorageLocation} {
		if err := config.ValidateDir(dir); err != nil {
			fmt.Fprintf(out, "Saved directory is no longer usable: %v\n", err)
			return false
		}
	}
	return true
}

// promptDir asks until the operator picks a usable directory or cancels.
func promptDir(out io.Writer, title, start string) (string, error) {
	for {
		dir, err := pickDirectory(title, start)
		if err != nil {
			return "", err
		}
		if err := config.ValidateDir(dir); err != nil {
			fmt.Fprintf(out, "%v, please choose again\n", err)
			continue
		}
		return dir, nil
	}
}

// resolveVerbosity prefers the flag, then the prompt, then Normal.
func resolveVerbosity(flag string, interactive bool) (log.Verbosity, error) {
	if flag != "" {
		return log.ParseVerbosity(flag)
	}
	if interactive {
		return pickVerbosity(), nil
	}
	return log.Normal, nil
}
