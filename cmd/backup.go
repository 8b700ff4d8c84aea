package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wamigrate/wamigrate/internal/cryptox"
	"github.com/wamigrate/wamigrate/internal/models"
	"github.com/wamigrate/wamigrate/internal/shared"
)

// backupSummary is the CLI-facing projection of a stored backup. The encrypted
// payload itself is never printed.
type backupSummary struct {
	ID                string `json:"id"`
	OwnerPhone        string `json:"ownerPhone"`
	BackupType        string `json:"backupType"`
	BackupName        string `json:"backupName"`
	ConversationCount int    `json:"conversationCount"`
	ContactCount      int    `json:"contactCount"`
	MediaCount        int    `json:"mediaCount"`
	CreatedAt         string `json:"createdAt"`
}

func backupSummaryOf(b *models.Backup) backupSummary {
	return backupSummary{
		ID:                b.ID(),
		OwnerPhone:        b.OwnerPhone(),
		BackupType:        b.BackupType(),
		BackupName:        b.BackupName(),
		ConversationCount: b.ConversationCount(),
		ContactCount:      b.ContactCount(),
		MediaCount:        b.MediaCount(),
		CreatedAt:         b.CreatedAt().Format(time.RFC3339),
	}
}

// BackupSave reads plaintext export data from a JSON file, encrypts it, and stores it.
func (r *Runner) BackupSave(ctx context.Context, cmd *cli.Command) error {
	owner := cmd.String("owner")
	inputPath := cmd.String("input")

	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	var data models.ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("%w: input is not valid export data: %v", shared.ErrInvalidInput, err)
	}

	key := cryptox.DeriveKey(r.config.Auth.EncryptionSecret)
	sealed, err := cryptox.SealJSON(data, key)
	if err != nil {
		return fmt.Errorf("failed to encrypt backup: %w", err)
	}

	db, _, backups, _, err := r.openRepositories()
	if err != nil {
		return err
	}
	defer db.Close()

	backup := models.NewBackup(0, owner, sealed, cmd.String("type"))
	backup.SetConversationCount(len(data.Conversations))
	backup.SetContactCount(len(data.Contacts))
	backup.SetMediaCount(len(data.Media))

	if err := backups.Create(backup); err != nil {
		return err
	}

	r.logger.Info("backup saved", "id", backup.ID(), "owner", owner)
	r.writePlain("✓ Backup saved\n")
	r.writePlain("ID: %s\n", backup.ID())
	r.writePlain("Conversations: %d, Contacts: %d, Media: %d\n",
		backup.ConversationCount(), backup.ContactCount(), backup.MediaCount())
	return nil
}

// BackupShow prints metadata for one backup.
func (r *Runner) BackupShow(ctx context.Context, cmd *cli.Command) error {
	db, _, backups, _, err := r.openRepositories()
	if err != nil {
		return err
	}
	defer db.Close()

	backup, err := backups.Get(cmd.String("id"))
	if err != nil {
		return err
	}

	return r.writeJSON(backupSummaryOf(backup), cmd.Bool("pretty"))
}

// BackupList prints backups, optionally filtered by owner.
func (r *Runner) BackupList(ctx context.Context, cmd *cli.Command) error {
	db, _, backups, _, err := r.openRepositories()
	if err != nil {
		return err
	}
	defer db.Close()

	criteria := map[string]any{}
	if owner := cmd.String("owner"); owner != "" {
		criteria["owner_phone"] = owner
	}
	if backupType := cmd.String("type"); backupType != "" {
		criteria["backup_type"] = backupType
	}

	list, err := backups.List(criteria)
	if err != nil {
		return err
	}

	views := make([]backupSummary, 0, len(list))
	for _, b := range list {
		views = append(views, backupSummaryOf(b))
	}
	return r.writeJSON(views, cmd.Bool("pretty"))
}

func backupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "backup",
		Usage: "Store and inspect encrypted backups",
		Commands: []*cli.Command{
			{
				Name:  "save",
				Usage: "Encrypt a JSON export file and store it as a backup",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "owner",
						Usage:    "Phone number the backup belongs to",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Path to a JSON file of export data",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Backup type label",
						Value: "full",
					},
				},
				Action: r.BackupSave,
			},
			{
				Name:  "show",
				Usage: "Show backup metadata",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Backup ID",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
					},
				},
				Action: r.BackupShow,
			},
			{
				Name:  "list",
				Usage: "List stored backups",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "owner",
						Usage: "Filter by owner phone number",
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Filter by backup type",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
					},
				},
				Action: r.BackupList,
			},
		},
	}
}
