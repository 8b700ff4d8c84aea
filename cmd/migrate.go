package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wamigrate/wamigrate/internal/models"
	"github.com/wamigrate/wamigrate/internal/session"
	"github.com/wamigrate/wamigrate/internal/shared"
	"github.com/wamigrate/wamigrate/internal/tasks"
)

// sessionView is the CLI-facing projection of a migration session.
type sessionView struct {
	ID            string `json:"id"`
	FromPhone     string `json:"fromPhone"`
	ToPhone       string `json:"toPhone"`
	Status        string `json:"status"`
	MigrationType string `json:"migrationType"`
	Progress      int    `json:"progress"`
	ErrorMessage  string `json:"errorMessage,omitempty"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

func sessionViewOf(m *models.MigrationSession) sessionView {
	return sessionView{
		ID:            m.ID(),
		FromPhone:     m.FromPhone(),
		ToPhone:       m.ToPhone(),
		Status:        m.Status(),
		MigrationType: m.MigrationType(),
		Progress:      m.Progress(),
		ErrorMessage:  m.ErrorMessage(),
		CreatedAt:     m.CreatedAt().Format(time.RFC3339),
		UpdatedAt:     m.UpdatedAt().Format(time.RFC3339),
	}
}

// MigrateStart creates a migration session and runs the pipeline to completion.
func (r *Runner) MigrateStart(ctx context.Context, cmd *cli.Command) error {
	from := cmd.String("from")
	to := cmd.String("to")

	policy := session.NewPolicy(r.config.Auth.AdminPhone, r.config.Migration.AllowedPairs)
	if !policy.CanMigrate(from, to) {
		return fmt.Errorf("%w: %s -> %s", shared.ErrMigrationDenied, from, to)
	}

	db, sessions, _, _, err := r.openRepositories()
	if err != nil {
		return err
	}
	defer db.Close()

	migration := models.NewMigrationSession(0, from, to, cmd.String("type"), models.MigrationOptions{
		Conversations: cmd.Bool("conversations"),
		Contacts:      cmd.Bool("contacts"),
		Media:         cmd.Bool("media"),
	})
	if err := sessions.Create(migration); err != nil {
		return err
	}

	r.logger.Info("starting migration", "id", migration.ID(), "from", from, "to", to)
	r.writePlain("Starting migration %s\n", migration.ID())
	r.writePlain("Source: %s\n", from)
	r.writePlain("Destination: %s\n\n", to)

	engine := tasks.NewPipelineEngine(sessions, r.config.Migration.StageDelay(), r.logger)

	// Create progress channel and goroutine to handle updates
	progressCh := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.PhaseFail:
				r.writePlain("✗ %s\n", update.Message)
			default:
				r.writePlain("[%d/%d] %s (%d%%)\n", update.Step, update.Total, update.Message, update.Percentage)
			}
		}
	}()

	if err := engine.Launch(ctx, migration.ID(), progressCh); err != nil {
		close(progressCh)
		<-done
		return err
	}

	engine.Wait()
	close(progressCh)
	<-done

	final, err := sessions.Get(migration.ID())
	if err != nil {
		return err
	}

	if final.Status() == models.StatusCompleted {
		r.writePlainln("")
		r.writePlainHeader("Migration Complete!")
	} else {
		r.writePlainln("")
		r.writePlainHeader(fmt.Sprintf("Migration Failed: %s", final.ErrorMessage()))
	}
	r.writePlain("Session: %s\n", final.ID())
	r.writePlain("Status: %s (%d%%)\n", final.Status(), final.Progress())

	return nil
}

// MigrateStatus prints the current state of a migration session.
func (r *Runner) MigrateStatus(ctx context.Context, cmd *cli.Command) error {
	db, sessions, _, _, err := r.openRepositories()
	if err != nil {
		return err
	}
	defer db.Close()

	migration, err := sessions.Get(cmd.String("id"))
	if err != nil {
		return err
	}

	return r.writeJSON(sessionViewOf(migration), cmd.Bool("pretty"))
}

// MigrateCancel marks a pending migration session as failed.
func (r *Runner) MigrateCancel(ctx context.Context, cmd *cli.Command) error {
	id := cmd.String("id")

	db, sessions, _, _, err := r.openRepositories()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := sessions.Fail(id, tasks.CancelReason); err != nil {
		return err
	}

	r.logger.Info("migration cancelled", "id", id)
	r.writePlain("✓ Migration %s cancelled\n", id)
	return nil
}

// MigrateList prints migration sessions, optionally filtered by source number or status.
func (r *Runner) MigrateList(ctx context.Context, cmd *cli.Command) error {
	db, sessions, _, _, err := r.openRepositories()
	if err != nil {
		return err
	}
	defer db.Close()

	criteria := map[string]any{}
	if from := cmd.String("from"); from != "" {
		criteria["from_phone"] = from
	}
	if status := cmd.String("status"); status != "" {
		criteria["status"] = status
	}

	list, err := sessions.List(criteria)
	if err != nil {
		return err
	}

	views := make([]sessionView, 0, len(list))
	for _, m := range list {
		views = append(views, sessionViewOf(m))
	}
	return r.writeJSON(views, cmd.Bool("pretty"))
}

func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Run and inspect number-to-number migrations",
		Commands: []*cli.Command{
			{
				Name:  "start",
				Usage: "Create a migration session and run the pipeline",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "from",
						Usage:    "Source phone number",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "to",
						Usage:    "Destination phone number",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Migration type (full or partial)",
						Value: models.MigrationFull,
					},
					&cli.BoolFlag{
						Name:  "conversations",
						Usage: "Carry conversations",
						Value: true,
					},
					&cli.BoolFlag{
						Name:  "contacts",
						Usage: "Carry contacts",
						Value: true,
					},
					&cli.BoolFlag{
						Name:  "media",
						Usage: "Carry media",
						Value: true,
					},
				},
				Action: r.MigrateStart,
			},
			{
				Name:  "status",
				Usage: "Show a migration session",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Migration session ID",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
					},
				},
				Action: r.MigrateStatus,
			},
			{
				Name:  "cancel",
				Usage: "Cancel a pending migration session",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Migration session ID",
						Required: true,
					},
				},
				Action: r.MigrateCancel,
			},
			{
				Name:  "list",
				Usage: "List migration sessions",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "from",
						Usage: "Filter by source phone number",
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "Filter by status",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
					},
				},
				Action: r.MigrateList,
			},
		},
	}
}
