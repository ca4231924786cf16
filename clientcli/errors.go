package clientcli

import "errors"

// Errors for profile operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoProfiles      = errors.New("no profiles configured")
	ErrProfileExists   = errors.New("profile already exists")
)

// Errors for configuration validation.
var (
	ErrConfigRequired = errors.New("config is required")
	ErrInvalidURL     = errors.New("endpoint must be an absolute http(s) URL")
)

// Errors for input validation.
var (
	ErrEmptyName         = errors.New("name is required")
	ErrInvalidCollection = errors.New("collection must be keys or files")
	ErrNoTokens          = errors.New("no tokens provided")
)
