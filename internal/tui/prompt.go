// Package tui holds the interactive prompts shown before a run.
package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrCanceled is returned when the operator closes a prompt without answering.
var ErrCanceled = errors.New("canceled by operator")

// runProgram runs a prompt model to completion. Tests replace it.
var runProgram = func(m tea.Model, opts ...tea.ProgramOption) (tea.Model, error) {
	return tea.NewProgram(m, opts...).Run()
}
