package log

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type OperationType string

const (
	OpRename    OperationType = "rename"
	OpMove      OperationType = "move"
	OpDelete    OperationType = "delete"
	OpCreateDir OperationType = "create_dir"
	OpTranscode OperationType = "transcode"
)

type OperationLog struct {
	ID         string        `json:"id"`
	Timestamp  time.Time     `json:"timestamp"`
	Type       OperationType `json:"type"`
	SourcePath string        `json:"source_path"`
	DestPath   string        `json:"dest_path,omitempty"`
	Success    bool          `json:"success"`
	Error      string        `json:"error,omitempty"`
}

type SessionMetadata struct {
	CommandArgs   []string  `json:"command_args"`
	SourceRoot    string    `json:"source_root"`
	Timestamp     time.Time `json:"timestamp"`
	SessionID     string    `json:"session_id"`
	TotalOps      int       `json:"total_operations"`
	SuccessfulOps int       `json:"successful_operations"`
	FailedOps     int       `json:"failed_operations"`
}

type LogSession struct {
	Metadata   SessionMetadata `json:"metadata"`
	Operations []OperationLog  `json:"operations"`
}

// Journal records the filesystem operations of one run. It is safe for
// concurrent use by transcode workers. A nil *Journal records nothing.
type Journal struct {
	mu      sync.Mutex
	dir     string
	session *LogSession
}

// NewJournal creates a journal that writes sessions into dir. An empty dir
// disables persistence while still accepting records.
func NewJournal(dir string) *Journal {
	return &Journal{dir: dir}
}

// Start opens a new session.
func (j *Journal) Start(args []string, sourceRoot string) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	j.session = &LogSession{
		Metadata: SessionMetadata{
			CommandArgs: append([]string(nil), args...),
			SourceRoot:  sourceRoot,
			Timestamp:   time.Now(),
			SessionID:   uuid.NewString(),
		},
		Operations: []OperationLog{},
	}
}

// End writes the current session to disk and closes it. Sessions without
// operations are not written.
func (j *Journal) End() error {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.session == nil {
		return nil
	}
	session := j.session
	j.session = nil
	updateStats(session)
	if j.dir == "" || len(session.Operations) == 0 {
		return nil
	}
	return WriteSession(j.dir, session)
}

// Session returns a copy of the open session, or nil.
func (j *Journal) Session() *LogSession {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.session == nil {
		return nil
	}
	cp := *j.session
	cp.Operations = append([]OperationLog(nil), j.session.Operations...)
	updateStats(&cp)
	return &cp
}

// LogRename logs a rename operation
func (j *Journal) LogRename(sourcePath, destPath string, err error) {
	j.LogOperation(OpRename, sourcePath, destPath, err)
}

// LogMove logs a relocation into the completed tree
func (j *Journal) LogMove(sourcePath, destPath string, err error) {
	j.LogOperation(OpMove, sourcePath, destPath, err)
}

// LogDelete logs a delete operation
func (j *Journal) LogDelete(path string, err error) {
	j.LogOperation(OpDelete, path, "", err)
}

// LogCreateDir logs a directory creation
func (j *Journal) LogCreateDir(dirPath string, err error) {
	j.LogOperation(OpCreateDir, "", dirPath, err)
}

// LogTranscode logs an engine invocation
func (j *Journal) LogTranscode(sourcePath, destPath string, err error) {
	j.LogOperation(OpTranscode, sourcePath, destPath, err)
}

// LogOperation appends an operation to the open session. Success is derived
// from err.
func (j *Journal) LogOperation(opType OperationType, sourcePath, destPath string, err error) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.session == nil {
		return
	}

	op := OperationLog{
		ID:         fmt.Sprintf("%s_%d", j.session.Metadata.SessionID, len(j.session.Operations)),
		Timestamp:  time.Now(),
		Type:       opType,
		SourcePath: sourcePath,
		DestPath:   destPath,
		Success:    err == nil,
	}
	if err != nil {
		op.Error = err.Error()
	}

	j.session.Operations = append(j.session.Operations, op)
}

func updateStats(session *LogSession) {
	successful := 0
	for _, op := range session.Operations {
		if op.Success {
			successful++
		}
	}
	session.Metadata.TotalOps = len(session.Operations)
	session.Metadata.SuccessfulOps = successful
	session.Metadata.FailedOps = len(session.Operations) - successful
}

func sessionFileName(t time.Time) string {
	return fmt.Sprintf("%s.%03d.json", t.Format("2006-01-02_150405"), t.Nanosecond()/1000000)
}

// WriteSession stores a session as indented JSON in dir.
func WriteSession(dir string, session *LogSession) error {
	if session == nil {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	path := filepath.Join(dir, sessionFileName(session.Metadata.Timestamp))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write log file: %w", err)
	}
	return nil
}

func ReadSession(logPath string) (*LogSession, error) {
	data, err := os.ReadFile(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}

	var session LogSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

// SessionFile pairs a session with the file it was read from.
type SessionFile struct {
	Session *LogSession
	Path    string
}

// ReadSessions returns up to limit sessions from dir, newest first. Corrupted
// files are skipped.
func ReadSessions(dir string, limit int) ([]SessionFile, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list log files: %w", err)
	}

	// File names embed the timestamp, so a reverse lexical sort is newest first.
	sort.Sort(sort.Reverse(sort.StringSlice(files)))

	sessions := make([]SessionFile, 0, len(files))
	for _, file := range files {
		if limit > 0 && len(sessions) == limit {
			break
		}
		session, err := ReadSession(file)
		if err != nil {
			continue
		}
		sessions = append(sessions, SessionFile{Session: session, Path: file})
	}

	return sessions, nil
}

// CleanupOldLogs removes session files older than retentionDays.
func CleanupOldLogs(dir string, retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return fmt.Errorf("failed to list log files: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(file); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to remove old log file %s: %v\n", file, err)
			}
		}
	}

	return nil
}
