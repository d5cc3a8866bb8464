package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/Digital-Shane/season-remux/internal/config"
	"github.com/Digital-Shane/season-remux/internal/log"
	"github.com/Digital-Shane/season-remux/internal/runner"
	"github.com/Digital-Shane/season-remux/internal/transcode"
	"github.com/Digital-Shane/season-remux/internal/tui"
	"github.com/spf13/cobra"
)

// newEngine builds the remux engine. Tests replace it.
var newEngine = func(path string) transcode.Engine {
	return transcode.NewFFmpeg(path)
}

type runFlags struct {
	source    string
	storage   string
	verbosity string
	useSaved  bool
	workers   int
	ffmpeg    string
	ffprobe   string
	prune     bool
	verify    bool
	lockPath  string
}

func newRunCommand() *cobra.Command {
	var f runFlags
	c := &cobra.Command{
		Use:   "run",
		Short: "Rename, relocate and remux a media tree",
		Long: `Rename every episode under the source directory to S<season>E<episode>,
move it into the Completed mirror, then remux every mkv to mp4.

Without --source and --storage the saved settings are offered, and when
stdout is a terminal the directories are chosen in a picker.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, f)
		},
	}

	flags := c.Flags()
	flags.StringVarP(&f.source, "source", "s", "", "Directory to rename and remux")
	flags.StringVarP(&f.storage, "storage", "o", "", "Directory that receives the staging directory")
	flags.StringVarP(&f.verbosity, "verbosity", "v", "", "Console output: silent, destination, normal or verbose")
	flags.BoolVar(&f.useSaved, "use-saved", false, "Use the saved directories without asking")
	flags.IntVarP(&f.workers, "workers", "w", 0, "Concurrent remux jobs (default from settings, else CPU count)")
	flags.StringVar(&f.ffmpeg, "ffmpeg", "", "Path to the ffmpeg binary")
	flags.StringVar(&f.ffprobe, "ffprobe", "", "Path to the ffprobe binary")
	flags.BoolVar(&f.prune, "prune-empty", false, "Remove directories left empty by the run")
	flags.BoolVar(&f.verify, "verify", false, "Check remuxed output keeps every stream")
	flags.StringVar(&f.lockPath, "lock", "", "Run lock file (default in the settings directory)")
	_ = flags.MarkHidden("lock")
	return c
}

func runRun(cmd *cobra.Command, f runFlags) error {
	out := cmd.OutOrStdout()
	interactive := isInteractive()
	settings, hasSaved := config.Load()

	source, storage, err := resolvePaths(out, pathRequest{
		source:      f.source,
		storage:     f.storage,
		useSaved:    f.useSaved,
		saved:       settings,
		hasSaved:    hasSaved,
		interactive: interactive,
	})
	if errors.Is(err, tui.ErrCanceled) {
		fmt.Fprintln(out, "Canceled, nothing was changed.")
		return nil
	}
	if err != nil {
		return err
	}

	level, err := resolveVerbosity(f.verbosity, interactive)
	if err != nil {
		return err
	}

	settings.StartingDir = source
	settings.StorageLocation = storage

	sinkOpts := log.SinkOptions{Level: level, Output: out}
	if settings.LogToFile {
		if path, err := config.RunLogPath(); err == nil {
			sinkOpts.LogFile = path
		}
	}
	sink := log.NewSink(sinkOpts)
	defer sink.Close()

	if err := settings.Save(); err != nil {
		sink.Normalf("Warning: could not save settings: %v", err)
	}
	applyFlagOverrides(settings, f)

	var journal *log.Journal
	if settings.EnableLogging {
		if dir, err := config.LogsDir(); err == nil {
			if err := log.CleanupOldLogs(dir, settings.LogRetentionDays); err != nil {
				sink.Verbosef("Log cleanup failed: %v", err)
			}
			journal = log.NewJournal(dir)
		}
	}

	var verifier *transcode.Verifier
	if settings.VerifyStreams {
		verifier = transcode.NewVerifier(settings.FFprobePath)
	}

	report, err := runner.Run(cmd.Context(), runner.Options{
		Source:     source,
		Storage:    storage,
		Workers:    settings.WorkerCount(),
		PruneEmpty: settings.PruneEmpty,
		Engine:     newEngine(settings.FFmpegPath),
		Verifier:   verifier,
		Sink:       sink,
		Journal:    journal,
		Args:       os.Args,
		LockPath:   f.lockPath,
	})
	if report != nil && level > log.Silent {
		fmt.Fprintln(out, renderReport(report))
	}
	if err != nil {
		fmt.Fprintln(out, "Run failed.")
		return err
	}
	if level > log.Silent {
		fmt.Fprintln(out, "Run complete.")
	}
	return nil
}

// applyFlagOverrides folds explicitly set flags into this run's settings.
// They are applied after saving so they do not stick.
func applyFlagOverrides(s *config.Settings, f runFlags) {
	if f.workers > 0 {
		s.Workers = f.workers
	}
	if f.ffmpeg != "" {
		s.FFmpegPath = f.ffmpeg
	}
	if f.ffprobe != "" {
		s.FFprobePath = f.ffprobe
	}
	if f.prune {
		s.PruneEmpty = true
	}
	if f.verify {
		s.VerifyStreams = true
	}
}
