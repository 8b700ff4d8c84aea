package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")
	ErrMissingSecret = fmt.Errorf("encryption secret not configured")

	// Authentication and authorization errors
	ErrAuthFailed      = fmt.Errorf("authentication failed")
	ErrSessionInvalid  = fmt.Errorf("session invalid or expired")
	ErrNotAdmin        = fmt.Errorf("phone number not authorized as administrator")
	ErrMigrationDenied = fmt.Errorf("migration not authorized between these numbers")

	// Persistence errors
	ErrNotFound = fmt.Errorf("record not found")
	ErrStore    = fmt.Errorf("store operation failed")

	// Migration lifecycle errors
	ErrTerminalState   = fmt.Errorf("migration already in a terminal state")
	ErrMigrationActive = fmt.Errorf("migration already running")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
