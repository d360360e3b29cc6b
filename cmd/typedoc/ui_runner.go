package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"typedoc/internal/driver"
	"typedoc/internal/pipeline"
	"typedoc/internal/ui"
)

type annotateOutcome struct {
	result *driver.RunResult
	err    error
}

func runAnnotateWithUI(ctx context.Context, title, root string, files []string, opts driver.Options) (*driver.RunResult, error) {
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan annotateOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = pipeline.ChannelSink{Ch: events}
		res, err := driver.Annotate(ctx, root, files, optsCopy)
		outcomeCh <- annotateOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
