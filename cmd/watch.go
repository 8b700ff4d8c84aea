package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
	"github.com/wamigrate/wamigrate/internal/shared"
	"github.com/wamigrate/wamigrate/internal/ui"
)

// Watch launches the interactive terminal UI following one migration session.
func (r *Runner) Watch(ctx context.Context, cmd *cli.Command) error {
	id := cmd.String("id")

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/wamigrate-watch.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	db, sessions, _, _, err := r.openRepositories()
	if err != nil {
		return err
	}
	defer db.Close()

	model := ui.NewModel(sessions, id)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

func watchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Follow a migration session in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "id",
				Usage:    "Migration session ID",
				Required: true,
			},
		},
		Action: r.Watch,
	}
}
