package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"github.com/wamigrate/wamigrate/internal/cryptox"
	"github.com/wamigrate/wamigrate/internal/formatter"
	"github.com/wamigrate/wamigrate/internal/models"
	"github.com/wamigrate/wamigrate/internal/shared"
)

// loadLatestExport decrypts the most recent backup for a phone number.
func (r *Runner) loadLatestExport(phone string) (*models.ExportData, error) {
	db, _, backups, _, err := r.openRepositories()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	backup, err := backups.Latest(phone)
	if err != nil {
		return nil, err
	}
	if backup == nil {
		return nil, fmt.Errorf("%w: no backup found for %s", shared.ErrNotFound, phone)
	}

	key := cryptox.DeriveKey(r.config.Auth.EncryptionSecret)
	return formatter.DecodeBackup(backup.EncryptedData(), key)
}

// outputPath resolves a destination file under the configured export directory.
func (r *Runner) outputPath(override, filename string) (string, error) {
	if override != "" {
		return override, nil
	}

	dir := r.config.Export.OutputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	return filepath.Join(dir, filename), nil
}

// ExportConversations writes the latest backup's conversations as a text file.
func (r *Runner) ExportConversations(ctx context.Context, cmd *cli.Command) error {
	phone := cmd.String("phone")

	data, err := r.loadLatestExport(phone)
	if err != nil {
		return err
	}

	path, err := r.outputPath(cmd.String("output"), fmt.Sprintf("whatsapp-conversations-%s.txt", phone))
	if err != nil {
		return err
	}

	var content []byte
	if cmd.Bool("summary") {
		content = formatter.ExportToSummaryText(data.Conversations)
	} else {
		content = formatter.ExportToText(data.Conversations)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	r.logger.Info("conversations exported", "phone", phone, "path", path)
	r.writePlain("✓ Exported %d conversations\n", len(data.Conversations))
	r.writePlain("File: %s\n", path)
	return nil
}

// ExportContacts writes the latest backup's contacts as a vCard file.
func (r *Runner) ExportContacts(ctx context.Context, cmd *cli.Command) error {
	phone := cmd.String("phone")

	data, err := r.loadLatestExport(phone)
	if err != nil {
		return err
	}

	path, err := r.outputPath(cmd.String("output"), fmt.Sprintf("whatsapp-contacts-%s.vcf", phone))
	if err != nil {
		return err
	}

	if _, err := formatter.WriteVCardExport(data.Contacts, path); err != nil {
		return err
	}

	r.logger.Info("contacts exported", "phone", phone, "path", path)
	r.writePlain("✓ Exported %d contacts\n", len(data.Contacts))
	r.writePlain("File: %s\n", path)
	return nil
}

// ExportMedia lists the media items recorded in the latest backup.
func (r *Runner) ExportMedia(ctx context.Context, cmd *cli.Command) error {
	phone := cmd.String("phone")

	data, err := r.loadLatestExport(phone)
	if err != nil {
		return err
	}

	if len(data.Media) == 0 {
		r.writePlain("No media recorded in the latest backup for %s\n", phone)
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Media (%d items)", len(data.Media)))
	for i, item := range data.Media {
		r.writePlain("%d. %s (%s, %d bytes)\n", i+1, item.Name, item.Kind, item.Size)
	}
	r.writePlainln("Media files must be transferred manually from the source device.")
	return nil
}

func exportCommand(r *Runner) *cli.Command {
	phoneFlag := func() *cli.StringFlag {
		return &cli.StringFlag{
			Name:     "phone",
			Usage:    "Phone number whose latest backup to export",
			Required: true,
		}
	}
	outputFlag := func() *cli.StringFlag {
		return &cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Destination file path (defaults under the export directory)",
		}
	}

	return &cli.Command{
		Name:  "export",
		Usage: "Render the latest backup to portable formats",
		Commands: []*cli.Command{
			{
				Name:  "conversations",
				Usage: "Write conversations as a plain text transcript",
				Flags: []cli.Flag{
					phoneFlag(),
					outputFlag(),
					&cli.BoolFlag{
						Name:  "summary",
						Usage: "Write per-conversation summaries instead of full transcripts",
					},
				},
				Action: r.ExportConversations,
			},
			{
				Name:  "contacts",
				Usage: "Write contacts as a vCard file",
				Flags: []cli.Flag{
					phoneFlag(),
					outputFlag(),
				},
				Action: r.ExportContacts,
			},
			{
				Name:   "media",
				Usage:  "List media items recorded in the latest backup",
				Flags:  []cli.Flag{phoneFlag()},
				Action: r.ExportMedia,
			},
		},
	}
}
