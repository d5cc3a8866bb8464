package log

import (
	"fmt"
	"os"
	"time"
)

type UndoResult struct {
	Operation OperationLog
	Success   bool
	// Skipped is set for created directories that still hold files, such as
	// remuxed output that undo leaves in place.
	Skipped bool
	Error   error
}

// UndoOperation reverses a single journaled operation. Renames and moves are
// both reversed by moving the file back; deletes and transcodes cannot be
// reversed.
func UndoOperation(op OperationLog) UndoResult {
	result := UndoResult{Operation: op}

	switch op.Type {
	case OpRename, OpMove:
		if op.DestPath == "" {
			result.Error = fmt.Errorf("cannot undo %s: destination path missing", op.Type)
			return result
		}

		if _, err := os.Stat(op.DestPath); os.IsNotExist(err) {
			result.Error = fmt.Errorf("cannot undo %s: file %s not found", op.Type, op.DestPath)
			return result
		}

		// Never overwrite whatever now sits at the original path
		if _, err := os.Stat(op.SourcePath); err == nil {
			result.Error = fmt.Errorf("cannot undo %s: original path %s already exists", op.Type, op.SourcePath)
			return result
		}

		if err := os.Rename(op.DestPath, op.SourcePath); err != nil {
			result.Error = fmt.Errorf("failed to move %s back to %s: %w", op.DestPath, op.SourcePath, err)
			return result
		}

		result.Success = true

	case OpCreateDir:
		if op.DestPath == "" {
			result.Error = fmt.Errorf("cannot undo directory creation: path missing")
			return result
		}

		info, err := os.Stat(op.DestPath)
		if os.IsNotExist(err) {
			result.Success = true
			return result
		}
		if err != nil {
			result.Error = fmt.Errorf("failed to stat %s: %w", op.DestPath, err)
			return result
		}
		if !info.IsDir() {
			result.Error = fmt.Errorf("path %s is not a directory", op.DestPath)
			return result
		}

		entries, err := os.ReadDir(op.DestPath)
		if err != nil {
			result.Error = fmt.Errorf("failed to read directory %s: %w", op.DestPath, err)
			return result
		}
		if len(entries) > 0 {
			result.Skipped = true
			return result
		}

		if err := os.Remove(op.DestPath); err != nil {
			result.Error = fmt.Errorf("failed to remove directory %s: %w", op.DestPath, err)
			return result
		}

		result.Success = true

	case OpDelete:
		result.Error = fmt.Errorf("cannot undo delete of %s", op.SourcePath)

	case OpTranscode:
		result.Error = fmt.Errorf("cannot undo transcode of %s", op.SourcePath)

	default:
		result.Error = fmt.Errorf("unknown operation type: %s", op.Type)
	}

	return result
}

// UndoSession reverses every successful reversible operation in the session,
// newest first. Deletes, transcodes and directories that are not empty are
// skipped rather than counted as failures.
func UndoSession(session *LogSession) (successful int, failed int, errors []error) {
	for i := len(session.Operations) - 1; i >= 0; i-- {
		op := session.Operations[i]

		if !op.Success || op.Type == OpDelete || op.Type == OpTranscode {
			continue
		}

		result := UndoOperation(op)
		if result.Skipped {
			continue
		}
		if result.Success {
			successful++
		} else {
			failed++
			if result.Error != nil {
				errors = append(errors, result.Error)
			}
		}
	}

	return successful, failed, errors
}

type SessionSummary struct {
	Session      *LogSession
	FilePath     string
	RelativeTime string
}

// GetSessionSummaries lists the sessions in dir newest first.
func GetSessionSummaries(dir string) ([]SessionSummary, error) {
	files, err := ReadSessions(dir, 0)
	if err != nil {
		return nil, err
	}

	summaries := make([]SessionSummary, 0, len(files))
	for _, f := range files {
		summaries = append(summaries, SessionSummary{
			Session:      f.Session,
			FilePath:     f.Path,
			RelativeTime: formatRelativeTime(f.Session.Metadata.Timestamp),
		})
	}
	return summaries, nil
}

func formatRelativeTime(t time.Time) string {
	duration := time.Since(t)
	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		mins := int(duration.Minutes())
		return fmt.Sprintf("%d minute%s ago", mins, plural(mins))
	case duration < 24*time.Hour:
		hours := int(duration.Hours())
		return fmt.Sprintf("%d hour%s ago", hours, plural(hours))
	case duration < 7*24*time.Hour:
		days := int(duration.Hours() / 24)
		return fmt.Sprintf("%d day%s ago", days, plural(days))
	default:
		return t.Format("Jan 2, 2006")
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
