package entities

import "fmt"

// ConfigError indicates invalid configuration (missing credential source,
// malformed required input). It is fatal before any remote call is made.
type ConfigError struct {
	Reason string
}

// NewConfigError creates a ConfigError with the given reason.
func NewConfigError(reason string) *ConfigError {
	return &ConfigError{Reason: reason}
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + e.Reason
}

// ListingError indicates that a release- or app-listing call failed. It is
// fatal for the affected app's run only; other apps continue.
type ListingError struct {
	AppName    string
	StatusCode int
	Body       string
}

func (e *ListingError) Error() string {
	if e.AppName == "" {
		return fmt.Sprintf("listing failed: status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("listing releases for %s failed: status %d: %s", e.AppName, e.StatusCode, e.Body)
}
