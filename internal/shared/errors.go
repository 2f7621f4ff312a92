package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrForbidden        = fmt.Errorf("forbidden")

	// API and transport errors
	ErrAPIRequest     = fmt.Errorf("API request failed")
	ErrRequestTimeout = fmt.Errorf("request timed out")
	ErrDecodeResponse = fmt.Errorf("failed to decode response")

	// Local state errors
	ErrSnapshotCorrupt = fmt.Errorf("corrupted snapshot")
	ErrSnapshotWrite   = fmt.Errorf("failed to persist snapshot")
	ErrStoreClosed     = fmt.Errorf("store closed")
	ErrJobNotFound     = fmt.Errorf("job not found")
	ErrUserNotFound    = fmt.Errorf("user not found")
	ErrNoMigrations    = fmt.Errorf("no migrations to roll back")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
