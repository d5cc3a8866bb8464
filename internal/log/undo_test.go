package log

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestUndoMoveOperation(t *testing.T) {
	tempDir := t.TempDir()
	src := filepath.Join(tempDir, "Show", "S1E1.mp4")
	dst := filepath.Join(tempDir, "Completed", "Show", "S1E1.mp4")

	if err := os.MkdirAll(filepath.Dir(src), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dst, []byte("video"), 0644); err != nil {
		t.Fatal(err)
	}

	op := OperationLog{
		ID:         "test_op",
		Timestamp:  time.Now(),
		Type:       OpMove,
		SourcePath: src,
		DestPath:   dst,
		Success:    true,
	}

	result := UndoOperation(op)
	if !result.Success {
		t.Fatalf("UndoOperation failed: %v", result.Error)
	}
	if _, err := os.Stat(src); err != nil {
		t.Error("file should be back at its source after undo")
	}
	if _, err := os.Stat(dst); err == nil {
		t.Error("relocated file should not exist after undo")
	}
}

func TestUndoRefusesToOverwrite(t *testing.T) {
	tempDir := t.TempDir()
	src := filepath.Join(tempDir, "a.mkv")
	dst := filepath.Join(tempDir, "S1E1.mkv")
	for _, f := range []string{src, dst} {
		if err := os.WriteFile(f, []byte(f), 0644); err != nil {
			t.Fatal(err)
		}
	}

	result := UndoOperation(OperationLog{Type: OpRename, SourcePath: src, DestPath: dst, Success: true})
	if result.Success || result.Error == nil {
		t.Fatal("undo should fail when the original path is occupied")
	}

	data, _ := os.ReadFile(src)
	if string(data) != src {
		t.Error("original file content should be untouched")
	}
}

func TestUndoIrreversibleOperations(t *testing.T) {
	for _, typ := range []OperationType{OpDelete, OpTranscode, OperationType("unknown")} {
		result := UndoOperation(OperationLog{Type: typ, SourcePath: "x"})
		if result.Success || result.Error == nil {
			t.Errorf("UndoOperation(%s) should fail", typ)
		}
	}
}

func TestUndoCreateDir(t *testing.T) {
	tempDir := t.TempDir()
	empty := filepath.Join(tempDir, "empty")
	full := filepath.Join(tempDir, "full")
	if err := os.Mkdir(empty, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(full, "child"), 0755); err != nil {
		t.Fatal(err)
	}

	if r := UndoOperation(OperationLog{Type: OpCreateDir, DestPath: empty}); !r.Success {
		t.Errorf("undo of empty dir failed: %v", r.Error)
	}
	if _, err := os.Stat(empty); !os.IsNotExist(err) {
		t.Error("empty directory should be removed")
	}
	if r := UndoOperation(OperationLog{Type: OpCreateDir, DestPath: full}); r.Success || !r.Skipped || r.Error != nil {
		t.Errorf("undo of non-empty dir = %+v, want skipped", r)
	}
	if _, err := os.Stat(full); err != nil {
		t.Error("non-empty directory should be kept")
	}
}

func TestUndoSessionReverseOrder(t *testing.T) {
	tempDir := t.TempDir()
	orig := filepath.Join(tempDir, "Show", "episode 1.mkv")
	renamed := filepath.Join(tempDir, "Show", "S1E1.mkv")
	completedDir := filepath.Join(tempDir, "Completed", "Show")
	moved := filepath.Join(completedDir, "S1E1.mkv")

	for _, d := range []string{completedDir, filepath.Dir(orig)} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(moved, []byte("video"), 0644); err != nil {
		t.Fatal(err)
	}

	session := &LogSession{Operations: []OperationLog{
		{Type: OpRename, SourcePath: orig, DestPath: renamed, Success: true},
		{Type: OpCreateDir, DestPath: completedDir, Success: true},
		{Type: OpMove, SourcePath: renamed, DestPath: moved, Success: true},
		{Type: OpDelete, SourcePath: filepath.Join(tempDir, "Show", "episode 1.m3u8"), Success: true},
		{Type: OpRename, SourcePath: "ignored", DestPath: "ignored", Success: false},
	}}

	successful, failed, errs := UndoSession(session)
	if successful != 3 || failed != 0 {
		t.Fatalf("UndoSession() = %d ok, %d failed (%v), want 3 ok", successful, failed, errs)
	}
	if _, err := os.Stat(orig); err != nil {
		t.Error("file should be restored to its original name")
	}
	if _, err := os.Stat(completedDir); !os.IsNotExist(err) {
		t.Error("created directory should be removed")
	}
}

func TestFormatRelativeTime(t *testing.T) {
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{time.Minute + time.Second, "1 minute ago"},
		{5*time.Minute + time.Second, "5 minutes ago"},
		{2*time.Hour + time.Second, "2 hours ago"},
		{3*24*time.Hour + time.Second, "3 days ago"},
	}
	for _, tc := range tests {
		if got := formatRelativeTime(time.Now().Add(-tc.ago)); got != tc.want {
			t.Errorf("formatRelativeTime(-%v) = %q, want %q", tc.ago, got, tc.want)
		}
	}
}
