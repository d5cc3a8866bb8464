package cmd

import (
	"fmt"
	"strconv"

	"github.com/Digital-Shane/season-remux/internal/config"
	"github.com/spf13/cobra"
)

func newSettingsCommand() *cobra.Command {
	var reset bool
	c := &cobra.Command{
		Use:   "settings",
		Short: "Show or reset the saved settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if reset {
				if err := config.Reset(); err != nil {
					return err
				}
				fmt.Fprintln(out, "Saved settings removed.")
				return nil
			}

			path, err := config.SettingsPath()
			if err != nil {
				return err
			}
			s, saved := config.Load()
			if !saved {
				fmt.Fprintf(out, "No saved settings at %s, showing defaults.\n", path)
			} else {
				fmt.Fprintf(out, "Settings from %s\n", path)
			}
			fmt.Fprintln(out, renderSettings(s))
			return nil
		},
	}
	c.Flags().BoolVar(&reset, "reset", false, "Forget the saved directories and options")
	return c
}

func renderSettings(s *config.Settings) string {
	workers := "auto"
	if s.Workers > 0 {
		workers = strconv.Itoa(s.Workers)
	}
	rows := [][]string{
		{"starting_dir", orUnset(s.StartingDir)},
		{"storage_location", orUnset(s.StorageLocation)},
		{"ffmpeg_path", s.FFmpegPath},
		{"ffprobe_path", s.FFprobePath},
		{"workers", workers},
		{"verify_streams", strconv.FormatBool(s.VerifyStreams)},
		{"prune_empty", strconv.FormatBool(s.PruneEmpty)},
		{"enable_logging", strconv.FormatBool(s.EnableLogging)},
		{"log_retention_days", strconv.Itoa(s.LogRetentionDays)},
		{"log_to_file", strconv.FormatBool(s.LogToFile)},
	}
	return renderTable([]string{"Setting", "Value"}, rows)
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
