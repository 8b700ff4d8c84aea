package models

// Message is a single message line inside an exported conversation.
type Message struct {
	Time   string `json:"time"`
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// Conversation is the export view of one chat: name, counters and either a
// full message log or a last-message summary.
type Conversation struct {
	Name         string    `json:"name"`
	LastMessage  string    `json:"last_message,omitempty"`
	MessageCount int       `json:"message_count"`
	LastActive   string    `json:"last_active,omitempty"`
	Messages     []Message `json:"messages,omitempty"`
}

// Contact is the export view of one address book entry.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// MediaItem describes one media file referenced by a backup. Files themselves
// are never stored here, only their metadata.
type MediaItem struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	Size int64  `json:"size"`
}

// ExportData is the structured content of a decrypted backup payload.
// Ephemeral: derived on demand by the formatter, never persisted.
type ExportData struct {
	Conversations []Conversation `json:"conversations"`
	Contacts      []Contact      `json:"contacts"`
	Media         []MediaItem    `json:"media,omitempty"`
}
