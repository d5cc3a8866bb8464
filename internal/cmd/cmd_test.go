package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Digital-Shane/season-remux/internal/config"
	"github.com/Digital-Shane/season-remux/internal/log"
	"github.com/Digital-Shane/season-remux/internal/transcode"
	"github.com/Digital-Shane/season-remux/internal/tui"
	"github.com/google/go-cmp/cmp"
)

type copyEngine struct{}

func (copyEngine) Remux(_ context.Context, src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}

// testEnv isolates the settings directory and stubs every prompt.
func testEnv(t *testing.T, interactive bool) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.HomeEnv, home)

	origInteractive, origEngine := isInteractive, newEngine
	origPick, origConfirm, origVerbosity := pickDirectory, confirm, pickVerbosity
	t.Cleanup(func() {
		isInteractive, newEngine = origInteractive, origEngine
		pickDirectory, confirm, pickVerbosity = origPick, origConfirm, origVerbosity
	})

	isInteractive = func() bool { return interactive }
	newEngine = func(string) transcode.Engine { return copyEngine{} }
	pickDirectory = func(string, string) (string, error) {
		t.Fatal("unexpected directory prompt")
		return "", nil
	}
	confirm = func(string) (bool, error) {
		t.Fatal("unexpected confirm prompt")
		return false, nil
	}
	pickVerbosity = func() log.Verbosity { return log.Normal }
	return home
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(filepath.Base(path)), 0644); err != nil {
		t.Fatal(err)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func runArgs(home, source, storage string, extra ...string) []string {
	args := []string{"run", "--source", source, "--storage", storage, "--lock", filepath.Join(home, "test.lock")}
	return append(args, extra...)
}

func TestRunCommandEndToEnd(t *testing.T) {
	home := testEnv(t, false)
	source, storage := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(source, "ShowX", "Season 2", "foo E1.mkv"))

	out, err := execute(t, runArgs(home, source, storage, "-v", "normal")...)
	if err != nil {
		t.Fatalf("run error = %v\n%s", err, out)
	}

	for _, p := range []string{
		filepath.Join(source, "Completed", "ShowX", "Season 2", "S2E1.mkv"),
		filepath.Join(source, "Completed", "ShowX", "Season 2", "S2E1.mp4"),
	} {
		if !exists(p) {
			t.Errorf("expected %s", p)
		}
	}
	for _, want := range []string{"Remuxed", "Run complete."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	saved, ok := config.Load()
	if !ok {
		t.Fatal("settings were not saved")
	}
	if diff := cmp.Diff([]string{source, storage}, []string{saved.StartingDir, saved.StorageLocation}); diff != "" {
		t.Errorf("saved paths mismatch (-want +got)\n%s", diff)
	}
}

func TestRunCommandRequiresPathsWhenNotInteractive(t *testing.T) {
	testEnv(t, false)
	if _, err := execute(t, "run"); !errors.Is(err, errPathsRequired) {
		t.Errorf("run error = %v, want errPathsRequired", err)
	}
}

func TestRunCommandUsesSavedSettingsSilently(t *testing.T) {
	home := testEnv(t, false)
	source, storage := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(source, "Season 1", "ep E4.mkv"))

	s := config.DefaultSettings()
	s.StartingDir, s.StorageLocation = source, storage
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "run", "--use-saved", "-v", "silent", "--lock", filepath.Join(home, "test.lock"))
	if err != nil {
		t.Fatalf("run error = %v", err)
	}
	if out != "" {
		t.Errorf("silent run printed:\n%s", out)
	}
	if !exists(filepath.Join(source, "Completed", "Season 1", "S1E4.mp4")) {
		t.Error("saved source was not processed")
	}
}

func TestRunCommandRejectsBadVerbosity(t *testing.T) {
	home := testEnv(t, false)
	if _, err := execute(t, runArgs(home, t.TempDir(), t.TempDir(), "-v", "loud")...); err == nil {
		t.Error("run should reject an unknown verbosity")
	}
}

func TestRunCommandCanceledPicker(t *testing.T) {
	home := testEnv(t, true)
	pickDirectory = func(string, string) (string, error) { return "", tui.ErrCanceled }

	out, err := execute(t, "run", "--lock", filepath.Join(home, "test.lock"))
	if err != nil {
		t.Fatalf("run error = %v", err)
	}
	if !strings.Contains(out, "Canceled") {
		t.Errorf("output = %q, want cancel notice", out)
	}
	if _, saved := config.Load(); saved {
		t.Error("a canceled run must not save settings")
	}
}

func TestResolvePathsInteractive(t *testing.T) {
	testEnv(t, true)
	source, storage := t.TempDir(), t.TempDir()
	missing := filepath.Join(t.TempDir(), "gone")

	picks := []string{missing, source, storage}
	var titles []string
	pickDirectory = func(title, _ string) (string, error) {
		titles = append(titles, title)
		next := picks[0]
		picks = picks[1:]
		return next, nil
	}
	var asked bool
	confirm = func(string) (bool, error) {
		asked = true
		return false, nil
	}

	saved := config.DefaultSettings()
	saved.StartingDir, saved.StorageLocation = t.TempDir(), t.TempDir()

	var out bytes.Buffer
	gotSource, gotStorage, err := resolvePaths(&out, pathRequest{saved: saved, hasSaved: true, interactive: true})
	if err != nil {
		t.Fatalf("resolvePaths() error = %v", err)
	}
	if !asked {
		t.Error("saved settings should be offered first")
	}
	if gotSource != source || gotStorage != storage {
		t.Errorf("resolvePaths() = (%q, %q), want (%q, %q)", gotSource, gotStorage, source, storage)
	}
	if len(titles) != 3 {
		t.Errorf("picker shown %d times, want 3 (one retry)", len(titles))
	}
	if !strings.Contains(out.String(), "choose again") {
		t.Errorf("output = %q, want retry notice", out.String())
	}
}

func TestResolvePathsAcceptsSaved(t *testing.T) {
	testEnv(t, true)
	confirm = func(string) (bool, error) { return true, nil }

	saved := config.DefaultSettings()
	saved.StartingDir, saved.StorageLocation = t.TempDir(), t.TempDir()

	source, storage, err := resolvePaths(&bytes.Buffer{}, pathRequest{saved: saved, hasSaved: true, interactive: true})
	if err != nil || source != saved.StartingDir || storage != saved.StorageLocation {
		t.Errorf("resolvePaths() = (%q, %q, %v)", source, storage, err)
	}
}

func TestResolvePathsFlagMustExist(t *testing.T) {
	testEnv(t, false)
	_, _, err := resolvePaths(&bytes.Buffer{}, pathRequest{source: filepath.Join(t.TempDir(), "nope"), storage: t.TempDir()})
	if err == nil {
		t.Error("a missing --source directory should be rejected")
	}
}

func TestResolveVerbosity(t *testing.T) {
	testEnv(t, true)
	pickVerbosity = func() log.Verbosity { return log.Verbose }

	tests := []struct {
		name        string
		flag        string
		interactive bool
		want        log.Verbosity
	}{
		{name: "flag wins", flag: "destination", interactive: true, want: log.Destination},
		{name: "prompt", interactive: true, want: log.Verbose},
		{name: "default", want: log.Normal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := resolveVerbosity(tc.flag, tc.interactive)
			if err != nil || got != tc.want {
				t.Errorf("resolveVerbosity() = (%v, %v), want %v", got, err, tc.want)
			}
		})
	}
}

func TestSettingsCommand(t *testing.T) {
	testEnv(t, false)

	out, err := execute(t, "settings")
	if err != nil || !strings.Contains(out, "No saved settings") || !strings.Contains(out, "(not set)") {
		t.Fatalf("settings = (%q, %v)", out, err)
	}

	s := config.DefaultSettings()
	s.StartingDir = "/media/tv"
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}
	if out, _ := execute(t, "settings"); !strings.Contains(out, "/media/tv") {
		t.Errorf("settings output missing saved dir:\n%s", out)
	}

	if _, err := execute(t, "settings", "--reset"); err != nil {
		t.Fatal(err)
	}
	if _, saved := config.Load(); saved {
		t.Error("settings --reset should remove the file")
	}
}

func TestUndoLatestRestoresTree(t *testing.T) {
	home := testEnv(t, false)
	source, storage := t.TempDir(), t.TempDir()
	original := filepath.Join(source, "Show", "Season 1", "pilot E1.mkv")
	writeFile(t, original)

	if out, err := execute(t, runArgs(home, source, storage, "-v", "silent")...); err != nil {
		t.Fatalf("run error = %v\n%s", err, out)
	}
	if exists(original) {
		t.Fatal("run should have moved the episode")
	}

	out, err := execute(t, "undo", "--list")
	if err != nil || !strings.Contains(out, filepath.Base(source)) {
		t.Fatalf("undo --list = (%q, %v)", out, err)
	}

	out, err = execute(t, "undo", "--latest")
	if err != nil {
		t.Fatalf("undo --latest error = %v\n%s", err, out)
	}
	if !exists(original) {
		t.Error("undo should restore the original name and location")
	}
	if !exists(filepath.Join(source, "Completed", "Show", "Season 1", "S1E1.mp4")) {
		t.Error("undo should leave remuxed output in place")
	}
}

func TestUndoWithoutSessions(t *testing.T) {
	testEnv(t, false)
	out, err := execute(t, "undo")
	if err != nil || !strings.Contains(out, "No operation sessions") {
		t.Errorf("undo = (%q, %v)", out, err)
	}
}

func TestUndoNeedsTerminalForBrowser(t *testing.T) {
	home := testEnv(t, false)
	source := t.TempDir()
	writeFile(t, filepath.Join(source, "a E1.mkv"))
	if _, err := execute(t, runArgs(home, source, t.TempDir(), "-v", "silent")...); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "undo"); err == nil {
		t.Error("undo without a terminal should ask for --list or --latest")
	}

	isInteractive = func() bool { return true }
	var shown int
	orig := runUndoBrowser
	runUndoBrowser = func(s []log.SessionSummary) error {
		shown = len(s)
		return nil
	}
	t.Cleanup(func() { runUndoBrowser = orig })
	if _, err := execute(t, "undo"); err != nil || shown != 1 {
		t.Errorf("undo browser shown with %d sessions, err = %v", shown, err)
	}
}
