package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"spelld/internal/ui"
)

type checkOutcome struct {
	results []fileResult
	err     error
}

// runCheckWithUI runs the checker while a progress view renders its events.
func runCheckWithUI(ctx context.Context, title string, files []string, c *checker) ([]fileResult, error) {
	events := make(chan ui.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		results, err := c.run(ctx, files, events)
		outcomeCh <- checkOutcome{results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	// The view may quit early on ctrl-c; workers must not block on it.
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
