// Package models defines domain entities and persistence interfaces for the WhatsApp migration service.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Ephemeral export views derived from decrypted backups
//   - [Conversation] / [Message] : Chat logs rendered by the formatter
//   - [Contact] : Address book entries rendered as vCards
//   - [ExportData] : The full decoded payload of one backup
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [Admin] : Verified administrator phone numbers
//   - [MigrationSession] : One source -> destination transfer tracked through pipeline stages
//   - [Backup] : Owner-tagged opaque encrypted snapshots
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
//
// [MigrationSession] additionally owns the state machine rules: stage order,
// terminal-state immutability and progress monotonicity are enforced by
// [MigrationSession.Advance] so no caller can persist an illegal transition.
package models
