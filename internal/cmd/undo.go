package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Digital-Shane/season-remux/internal/config"
	"github.com/Digital-Shane/season-remux/internal/log"
	"github.com/Digital-Shane/season-remux/internal/tui/undo"
	"github.com/Digital-Shane/season-remux/internal/util"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// runUndoBrowser shows the interactive session browser. Tests replace it.
var runUndoBrowser = func(summaries []log.SessionSummary) error {
	p := tea.NewProgram(undo.New(undo.BuildTree(summaries)), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func newUndoCommand() *cobra.Command {
	var list, latest bool
	c := &cobra.Command{
		Use:   "undo",
		Short: "Reverse the renames and moves of a previous run",
		Long: `Display recent runs and reverse the renames and moves of one of them.

Remuxed mp4 files and deleted playlist folders are not restored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			dir, err := config.LogsDir()
			if err != nil {
				return err
			}
			summaries, err := log.GetSessionSummaries(dir)
			if err != nil {
				return fmt.Errorf("failed to read log sessions: %w", err)
			}
			if len(summaries) == 0 {
				fmt.Fprintln(out, "No operation sessions found to undo.")
				return nil
			}

			switch {
			case list:
				fmt.Fprintln(out, renderSessions(summaries))
				return nil
			case latest:
				return undoLatest(out, summaries[0])
			case isInteractive():
				return runUndoBrowser(summaries)
			default:
				return errors.New("not a terminal: use --list to inspect sessions or --latest to undo the newest")
			}
		},
	}
	c.Flags().BoolVar(&list, "list", false, "List recorded sessions and exit")
	c.Flags().BoolVar(&latest, "latest", false, "Undo the newest session without the browser")
	return c
}

func undoLatest(out io.Writer, s log.SessionSummary) error {
	ok, failed, errs := log.UndoSession(s.Session)
	fmt.Fprintf(out, "Undid session from %s: %d reversed, %d failed\n", s.RelativeTime, ok, failed)
	for _, err := range errs {
		fmt.Fprintf(out, "  %v\n", err)
	}
	if failed > 0 {
		return fmt.Errorf("%d operations could not be reversed", failed)
	}
	return nil
}

func renderSessions(summaries []log.SessionSummary) string {
	rows := make([][]string, 0, len(summaries))
	for i, s := range summaries {
		meta := s.Session.Metadata
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			s.RelativeTime,
			util.ShortenPath(meta.SourceRoot, 48),
			strconv.Itoa(meta.SuccessfulOps),
			strconv.Itoa(meta.FailedOps),
			strings.Join(meta.CommandArgs[min(1, len(meta.CommandArgs)):], " "),
		})
	}
	return renderTable([]string{"#", "When", "Source", "OK", "Failed", "Args"}, rows, 1, 4, 5)
}
