package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"
	"github.com/wamigrate/wamigrate/internal/models"
	"github.com/wamigrate/wamigrate/internal/shared"
	"github.com/wamigrate/wamigrate/internal/tasks"
)

const (
	testAdminPhone = "+15550001111"
	testFromPhone  = "+15552220000"
	testToPhone    = "+15553330000"
)

// newTestRunner builds a Runner against a temp database with migrations applied.
func newTestRunner(t *testing.T) (*Runner, *bytes.Buffer) {
	t.Helper()

	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(t.TempDir(), "wamigrate.db")
	config.Auth.AdminPhone = testAdminPhone
	config.Auth.EncryptionSecret = "test-secret"
	config.Migration.StageDelaySeconds = 0
	config.Migration.AllowedPairs = []shared.MigrationPair{{From: testFromPhone, To: testToPhone}}
	config.Export.OutputDir = t.TempDir()

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: shared.NewLogger(io.Discard),
		Output: output,
	})

	db, err := runner.openDatabase()
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return runner, output
}

// runApp executes a CLI invocation against the runner's registered commands.
func runApp(r *Runner, args ...string) error {
	app := &cli.Command{
		Name:     "wamigrate",
		Commands: r.register(),
	}
	return app.Run(context.Background(), append([]string{"wamigrate"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}

			runner := NewRunner(RunnerOpts{
				Config: config,
				Logger: logger,
				Output: output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})
	})
}

func TestTokenCommands(t *testing.T) {
	t.Run("issue and verify round trip", func(t *testing.T) {
		runner, output := newTestRunner(t)

		if err := runApp(runner, "token", "issue", "--phone", testAdminPhone, "--role", "admin"); err != nil {
			t.Fatalf("issue failed: %v", err)
		}

		var issued map[string]string
		if err := json.Unmarshal(output.Bytes(), &issued); err != nil {
			t.Fatalf("failed to parse issue output: %v", err)
		}
		if issued["sessionToken"] == "" {
			t.Fatal("expected a session token")
		}

		output.Reset()
		if err := runApp(runner, "token", "verify", "--token", issued["sessionToken"]); err != nil {
			t.Fatalf("verify failed: %v", err)
		}
		if !strings.Contains(output.String(), "✓ Valid session") {
			t.Errorf("expected valid session, got %s", output.String())
		}
		if !strings.Contains(output.String(), testAdminPhone) {
			t.Errorf("expected phone in output, got %s", output.String())
		}
	})

	t.Run("issue rejects admin role for other numbers", func(t *testing.T) {
		runner, _ := newTestRunner(t)

		err := runApp(runner, "token", "issue", "--phone", "+19998887777", "--role", "admin")
		if err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("verify reports tampered token as invalid", func(t *testing.T) {
		runner, output := newTestRunner(t)

		if err := runApp(runner, "token", "verify", "--token", "bm90LWEtdG9rZW4"); err != nil {
			t.Fatalf("verify failed: %v", err)
		}
		if !strings.Contains(output.String(), "✗ Invalid session") {
			t.Errorf("expected invalid session, got %s", output.String())
		}
	})
}

func TestMigrateCommands(t *testing.T) {
	t.Run("start runs the pipeline to completion", func(t *testing.T) {
		runner, output := newTestRunner(t)

		err := runApp(runner, "migrate", "start", "--from", testFromPhone, "--to", testToPhone)
		if err != nil {
			t.Fatalf("start failed: %v", err)
		}
		if !strings.Contains(output.String(), "Migration Complete!") {
			t.Errorf("expected completion banner, got %s", output.String())
		}

		db, sessions, _, _, err := runner.openRepositories()
		if err != nil {
			t.Fatalf("failed to open repositories: %v", err)
		}
		defer db.Close()

		list, err := sessions.List(map[string]any{"from_phone": testFromPhone})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("expected 1 session, got %d", len(list))
		}
		if list[0].Status() != models.StatusCompleted || list[0].Progress() != 100 {
			t.Errorf("expected completed at 100, got %s at %d", list[0].Status(), list[0].Progress())
		}
	})

	t.Run("start refuses numbers outside the allow list", func(t *testing.T) {
		runner, _ := newTestRunner(t)

		err := runApp(runner, "migrate", "start", "--from", "+10000000000", "--to", testToPhone)
		if err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("status prints a session view", func(t *testing.T) {
		runner, output := newTestRunner(t)

		db, sessions, _, _, err := runner.openRepositories()
		if err != nil {
			t.Fatalf("failed to open repositories: %v", err)
		}
		migration := models.NewMigrationSession(0, testFromPhone, testToPhone, models.MigrationFull, models.MigrationOptions{Conversations: true})
		if err := sessions.Create(migration); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		db.Close()

		if err := runApp(runner, "migrate", "status", "--id", migration.ID()); err != nil {
			t.Fatalf("status failed: %v", err)
		}

		var view sessionView
		if err := json.Unmarshal(output.Bytes(), &view); err != nil {
			t.Fatalf("failed to parse status output: %v", err)
		}
		if view.ID != migration.ID() || view.Status != models.StatusPreparing {
			t.Errorf("unexpected view: %+v", view)
		}
	})

	t.Run("cancel marks a pending session failed", func(t *testing.T) {
		runner, output := newTestRunner(t)

		db, sessions, _, _, err := runner.openRepositories()
		if err != nil {
			t.Fatalf("failed to open repositories: %v", err)
		}
		migration := models.NewMigrationSession(0, testFromPhone, testToPhone, models.MigrationFull, models.MigrationOptions{})
		if err := sessions.Create(migration); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		db.Close()

		if err := runApp(runner, "migrate", "cancel", "--id", migration.ID()); err != nil {
			t.Fatalf("cancel failed: %v", err)
		}
		if !strings.Contains(output.String(), "cancelled") {
			t.Errorf("expected cancel confirmation, got %s", output.String())
		}

		db, sessions, _, _, err = runner.openRepositories()
		if err != nil {
			t.Fatalf("failed to open repositories: %v", err)
		}
		defer db.Close()

		got, err := sessions.Get(migration.ID())
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.Status() != models.StatusFailed || got.ErrorMessage() != tasks.CancelReason {
			t.Errorf("expected failed with cancel reason, got %s / %s", got.Status(), got.ErrorMessage())
		}
	})

	t.Run("cancel of unknown session errors", func(t *testing.T) {
		runner, _ := newTestRunner(t)

		if err := runApp(runner, "migrate", "cancel", "--id", "missing"); err == nil {
			t.Fatal("expected an error")
		}
	})
}

func TestBackupAndExportCommands(t *testing.T) {
	writeInput := func(t *testing.T, data models.ExportData) string {
		t.Helper()
		raw, err := json.Marshal(data)
		if err != nil {
			t.Fatalf("failed to marshal input: %v", err)
		}
		path := filepath.Join(t.TempDir(), "export.json")
		if err := os.WriteFile(path, raw, 0644); err != nil {
			t.Fatalf("failed to write input: %v", err)
		}
		return path
	}

	sample := models.ExportData{
		Conversations: []models.Conversation{
			{
				Name:         "Alice",
				MessageCount: 1,
				Messages:     []models.Message{{Time: "10:00", Sender: "Alice", Text: "hi"}},
			},
		},
		Contacts: []models.Contact{{Name: "Bob", Phone: "+15551234567"}},
		Media:    []models.MediaItem{{Name: "photo.jpg", Kind: "image", Size: 2048}},
	}

	t.Run("save stores an encrypted backup", func(t *testing.T) {
		runner, output := newTestRunner(t)
		input := writeInput(t, sample)

		if err := runApp(runner, "backup", "save", "--owner", testFromPhone, "--input", input); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		if !strings.Contains(output.String(), "✓ Backup saved") {
			t.Errorf("expected confirmation, got %s", output.String())
		}
		if !strings.Contains(output.String(), "Conversations: 1, Contacts: 1, Media: 1") {
			t.Errorf("expected counters, got %s", output.String())
		}

		output.Reset()
		if err := runApp(runner, "backup", "list", "--owner", testFromPhone); err != nil {
			t.Fatalf("list failed: %v", err)
		}

		var views []backupSummary
		if err := json.Unmarshal(output.Bytes(), &views); err != nil {
			t.Fatalf("failed to parse list output: %v", err)
		}
		if len(views) != 1 || views[0].OwnerPhone != testFromPhone {
			t.Errorf("unexpected list: %+v", views)
		}
	})

	t.Run("save rejects malformed input", func(t *testing.T) {
		runner, _ := newTestRunner(t)
		path := filepath.Join(t.TempDir(), "bad.json")
		if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
			t.Fatalf("failed to write input: %v", err)
		}

		if err := runApp(runner, "backup", "save", "--owner", testFromPhone, "--input", path); err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("export conversations writes a transcript", func(t *testing.T) {
		runner, output := newTestRunner(t)
		input := writeInput(t, sample)

		if err := runApp(runner, "backup", "save", "--owner", testFromPhone, "--input", input); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		output.Reset()
		if err := runApp(runner, "export", "conversations", "--phone", testFromPhone); err != nil {
			t.Fatalf("export failed: %v", err)
		}

		path := filepath.Join(runner.config.Export.OutputDir, "whatsapp-conversations-"+testFromPhone+".txt")
		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read export: %v", err)
		}
		if !strings.Contains(string(content), "WHATSAPP EXPORT") {
			t.Error("expected export header")
		}
		if !strings.Contains(string(content), "CONVERSATION 1: Alice") {
			t.Error("expected conversation block")
		}
		if !strings.Contains(string(content), "[10:00] Alice: hi") {
			t.Error("expected message line")
		}
	})

	t.Run("export contacts writes a vCard", func(t *testing.T) {
		runner, output := newTestRunner(t)
		input := writeInput(t, sample)

		if err := runApp(runner, "backup", "save", "--owner", testFromPhone, "--input", input); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		output.Reset()
		if err := runApp(runner, "export", "contacts", "--phone", testFromPhone); err != nil {
			t.Fatalf("export failed: %v", err)
		}

		path := filepath.Join(runner.config.Export.OutputDir, "whatsapp-contacts-"+testFromPhone+".vcf")
		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read export: %v", err)
		}
		if !strings.Contains(string(content), "BEGIN:VCARD") || !strings.Contains(string(content), "FN:Bob") {
			t.Errorf("expected vCard content, got %s", content)
		}
	})

	t.Run("export media lists recorded items", func(t *testing.T) {
		runner, output := newTestRunner(t)
		input := writeInput(t, sample)

		if err := runApp(runner, "backup", "save", "--owner", testFromPhone, "--input", input); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		output.Reset()
		if err := runApp(runner, "export", "media", "--phone", testFromPhone); err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if !strings.Contains(output.String(), "photo.jpg") {
			t.Errorf("expected media listing, got %s", output.String())
		}
	})

	t.Run("export without a backup errors", func(t *testing.T) {
		runner, _ := newTestRunner(t)

		if err := runApp(runner, "export", "conversations", "--phone", testFromPhone); err == nil {
			t.Fatal("expected an error")
		}
	})
}
