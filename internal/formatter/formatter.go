// package formatter renders decrypted backup data to external formats (plain text, vCard)
package formatter

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/wamigrate/wamigrate/internal/cryptox"
	"github.com/wamigrate/wamigrate/internal/models"
)

// vCardNote is the fixed annotation stamped on every exported contact.
const vCardNote = "Migrated WhatsApp contact"

// ExportToText renders conversations with full message logs as plain text.
//
// Layout: a dated header under a "=" rule, then one block per conversation
// with its name, a "-" rule and "[time] sender: text" lines.
func ExportToText(conversations []models.Conversation) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("WHATSAPP EXPORT - %s\n", time.Now().Format("2006-01-02")))
	buf.WriteString(strings.Repeat("=", 50) + "\n\n")

	for i, conv := range conversations {
		buf.WriteString(fmt.Sprintf("CONVERSATION %d: %s\n", i+1, conv.Name))
		buf.WriteString(strings.Repeat("-", 30) + "\n")

		for _, msg := range conv.Messages {
			buf.WriteString(fmt.Sprintf("[%s] %s: %s\n", msg.Time, msg.Sender, msg.Text))
		}

		buf.WriteString("\n")
	}

	return buf.Bytes()
}

// ExportToSummaryText renders conversations as plain text without message
// logs, listing last message, count and last activity per conversation.
func ExportToSummaryText(conversations []models.Conversation) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("WHATSAPP EXPORT - %s\n", time.Now().Format("2006-01-02")))
	buf.WriteString(strings.Repeat("=", 50) + "\n\n")

	for i, conv := range conversations {
		buf.WriteString(fmt.Sprintf("CONVERSATION %d: %s\n", i+1, conv.Name))
		buf.WriteString(fmt.Sprintf("Last message: %s\n", conv.LastMessage))
		buf.WriteString(fmt.Sprintf("Messages: %d\n", conv.MessageCount))
		buf.WriteString(fmt.Sprintf("Last active: %s\n", conv.LastActive))
		buf.WriteString(strings.Repeat("-", 30) + "\n\n")
	}

	return buf.Bytes()
}

// ExportToVCard renders contacts as concatenated version 3.0 vCard blocks.
// Contacts with neither a name nor a phone number are skipped.
func ExportToVCard(contacts []models.Contact) []byte {
	var buf bytes.Buffer

	for _, contact := range contacts {
		if contact.Name == "" && contact.Phone == "" {
			continue
		}
		buf.WriteString("BEGIN:VCARD\n")
		buf.WriteString("VERSION:3.0\n")
		buf.WriteString(fmt.Sprintf("FN:%s\n", contact.Name))
		buf.WriteString(fmt.Sprintf("TEL:%s\n", contact.Phone))
		buf.WriteString(fmt.Sprintf("NOTE:%s\n", vCardNote))
		buf.WriteString("END:VCARD\n")
	}

	return buf.Bytes()
}

// DecodeBackup opens an encrypted backup payload and parses its contents.
func DecodeBackup(payload string, key []byte) (*models.ExportData, error) {
	var data models.ExportData
	if err := cryptox.OpenJSON(payload, key, &data); err != nil {
		return nil, fmt.Errorf("failed to decode backup payload: %w", err)
	}
	return &data, nil
}

// WriteTextExport writes a full conversation export to filepath.
//
// Defaults to whatsapp_export.txt in the working directory and returns the
// path written.
func WriteTextExport(conversations []models.Conversation, filepath string) (string, error) {
	if filepath == "" {
		filepath = "whatsapp_export.txt"
	}

	if err := os.WriteFile(filepath, ExportToText(conversations), 0644); err != nil {
		return "", fmt.Errorf("failed to write text export: %w", err)
	}

	return filepath, nil
}

// WriteVCardExport writes a contact export to filepath.
//
// Defaults to whatsapp_contacts.vcf in the working directory and returns the
// path written.
func WriteVCardExport(contacts []models.Contact, filepath string) (string, error) {
	if filepath == "" {
		filepath = "whatsapp_contacts.vcf"
	}

	if err := os.WriteFile(filepath, ExportToVCard(contacts), 0644); err != nil {
		return "", fmt.Errorf("failed to write vCard export: %w", err)
	}

	return filepath, nil
}
