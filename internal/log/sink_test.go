package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSinkGating(t *testing.T) {
	tests := []struct {
		level Verbosity
		want  []string
	}{
		{Silent, nil},
		{Destination, []string{"dest"}},
		{Normal, []string{"dest", "normal"}},
		{Verbose, []string{"dest", "normal", "verbose"}},
	}
	for _, tc := range tests {
		t.Run(tc.level.String(), func(t *testing.T) {
			var buf bytes.Buffer
			s := NewSink(SinkOptions{Level: tc.level, Output: &buf})
			s.Destinationf("dest")
			s.Normalf("normal")
			s.Verbosef("verbose")

			var got []string
			for _, msg := range []string{"dest", "normal", "verbose"} {
				if strings.Contains(buf.String(), "msg="+msg) {
					got = append(got, msg)
				}
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("printed messages mismatch (-want +got)\n%s", diff)
			}
		})
	}
}

func TestSinkLogFileReceivesMessages(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "logs", "run.log")

	var buf bytes.Buffer
	s := NewSink(SinkOptions{Level: Normal, Output: &buf, LogFile: logFile})
	s.Normalf("moved %s", "a.mkv")
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "moved a.mkv") {
		t.Errorf("log file = %q, want it to contain the message", data)
	}
}

func TestSinkLogFileIgnoresLevel(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "run.log")

	var buf bytes.Buffer
	s := NewSink(SinkOptions{Level: Destination, Output: &buf, LogFile: logFile})
	s.Verbosef("scanning %s", "Season 1")
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if strings.Contains(buf.String(), "scanning") {
		t.Errorf("console = %q, verbose message should be gated", buf.String())
	}
	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "scanning Season 1") {
		t.Errorf("log file = %q, want the verbose message", data)
	}
}

func TestParseVerbosity(t *testing.T) {
	tests := []struct {
		in      string
		want    Verbosity
		wantErr bool
	}{
		{"silent", Silent, false},
		{"Destination", Destination, false},
		{" normal ", Normal, false},
		{"3", Verbose, false},
		{"0", Silent, false},
		{"4", Normal, true},
		{"loud", Normal, true},
	}
	for _, tc := range tests {
		got, err := ParseVerbosity(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseVerbosity(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseVerbosity(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNilSinkIsSilent(t *testing.T) {
	var s *Sink
	s.Normalf("ignored")
	if s.Enabled(Destination) {
		t.Error("nil sink should not be enabled")
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil sink error = %v", err)
	}
}
