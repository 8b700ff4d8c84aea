package formatter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wamigrate/wamigrate/internal/cryptox"
	"github.com/wamigrate/wamigrate/internal/models"
)

func sampleConversations() []models.Conversation {
	return []models.Conversation{
		{
			Name: "Alice",
			Messages: []models.Message{
				{Time: "10:00", Sender: "Alice", Text: "hi"},
				{Time: "10:01", Sender: "Me", Text: "hello"},
			},
		},
		{
			Name: "Family Group",
			Messages: []models.Message{
				{Time: "09:30", Sender: "Mom", Text: "dinner at 7"},
			},
		},
	}
}

func TestExportToText(t *testing.T) {
	t.Run("renders conversations with message logs", func(t *testing.T) {
		text := string(ExportToText(sampleConversations()))

		for _, want := range []string{
			"WHATSAPP EXPORT - ",
			strings.Repeat("=", 50),
			"CONVERSATION 1: Alice",
			"[10:00] Alice: hi",
			"[10:01] Me: hello",
			"CONVERSATION 2: Family Group",
			"[09:30] Mom: dinner at 7",
			strings.Repeat("-", 30),
		} {
			if !strings.Contains(text, want) {
				t.Errorf("export missing %q:\n%s", want, text)
			}
		}
	})

	t.Run("empty input renders header only", func(t *testing.T) {
		text := string(ExportToText(nil))

		if !strings.HasPrefix(text, "WHATSAPP EXPORT - ") {
			t.Errorf("expected header, got %q", text)
		}
		if strings.Contains(text, "CONVERSATION") {
			t.Error("no conversation blocks expected for empty input")
		}
	})
}

func TestExportToSummaryText(t *testing.T) {
	conversations := []models.Conversation{
		{Name: "Contact 1", LastMessage: "Hello!", MessageCount: 15, LastActive: "2025-06-01"},
		{Name: "Contact 2", LastMessage: "Bonjour!", MessageCount: 8, LastActive: "2025-06-02"},
	}

	text := string(ExportToSummaryText(conversations))

	for _, want := range []string{
		"CONVERSATION 1: Contact 1",
		"Last message: Hello!",
		"Messages: 15",
		"CONVERSATION 2: Contact 2",
		"Last message: Bonjour!",
		"Last active: 2025-06-02",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}
}

func TestExportToVCard(t *testing.T) {
	t.Run("renders one block per contact", func(t *testing.T) {
		contacts := []models.Contact{
			{Name: "Bob", Phone: "+15551234567"},
			{Name: "Carol", Phone: "+15559876543"},
		}

		vcard := string(ExportToVCard(contacts))

		for _, want := range []string{
			"BEGIN:VCARD",
			"VERSION:3.0",
			"FN:Bob",
			"TEL:+15551234567",
			"FN:Carol",
			"NOTE:" + vCardNote,
			"END:VCARD",
		} {
			if !strings.Contains(vcard, want) {
				t.Errorf("vCard missing %q:\n%s", want, vcard)
			}
		}

		if got := strings.Count(vcard, "BEGIN:VCARD"); got != 2 {
			t.Errorf("expected 2 blocks, got %d", got)
		}
	})

	t.Run("skips contacts with no name and no phone", func(t *testing.T) {
		contacts := []models.Contact{
			{},
			{Phone: "+15550001111"},
		}

		vcard := string(ExportToVCard(contacts))

		if got := strings.Count(vcard, "BEGIN:VCARD"); got != 1 {
			t.Errorf("expected 1 block, got %d", got)
		}
		if !strings.Contains(vcard, "TEL:+15550001111") {
			t.Error("phone-only contact should be kept")
		}
	})

	t.Run("empty input renders nothing", func(t *testing.T) {
		if out := ExportToVCard(nil); len(out) != 0 {
			t.Errorf("expected empty output, got %q", out)
		}
	})
}

func TestDecodeBackup(t *testing.T) {
	key := cryptox.DeriveKey("test-secret")

	t.Run("round trips sealed export data", func(t *testing.T) {
		original := models.ExportData{
			Conversations: sampleConversations(),
			Contacts:      []models.Contact{{Name: "Bob", Phone: "+15551234567"}},
		}

		payload, err := cryptox.SealJSON(original, key)
		if err != nil {
			t.Fatalf("failed to seal payload: %v", err)
		}

		decoded, err := DecodeBackup(payload, key)
		if err != nil {
			t.Fatalf("failed to decode backup: %v", err)
		}
		if len(decoded.Conversations) != 2 || decoded.Conversations[0].Name != "Alice" {
			t.Errorf("unexpected conversations: %+v", decoded.Conversations)
		}
		if len(decoded.Contacts) != 1 || decoded.Contacts[0].Phone != "+15551234567" {
			t.Errorf("unexpected contacts: %+v", decoded.Contacts)
		}
	})

	t.Run("rejects garbage payloads", func(t *testing.T) {
		if _, err := DecodeBackup("not-a-backup", key); err == nil {
			t.Error("expected error for garbage payload")
		}
	})
}

func TestWriteExports(t *testing.T) {
	t.Run("writes text export to the given path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "export.txt")

		written, err := WriteTextExport(sampleConversations(), path)
		if err != nil {
			t.Fatalf("failed to write export: %v", err)
		}
		if written != path {
			t.Errorf("expected path %s, got %s", path, written)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read export: %v", err)
		}
		if !strings.Contains(string(data), "CONVERSATION 1: Alice") {
			t.Error("written file missing conversation block")
		}
	})

	t.Run("writes vCard export to the given path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "contacts.vcf")

		written, err := WriteVCardExport([]models.Contact{{Name: "Bob", Phone: "+1555"}}, path)
		if err != nil {
			t.Fatalf("failed to write export: %v", err)
		}

		data, err := os.ReadFile(written)
		if err != nil {
			t.Fatalf("failed to read export: %v", err)
		}
		if !strings.Contains(string(data), "FN:Bob") {
			t.Error("written file missing contact")
		}
	})
}
