// Package entities defines core domain models and data structures.
package entities

import "time"

// Release represents one immutable build upload of an app.
type Release struct {
	// Name is the full resource name, e.g.
	// "projects/p/apps/a/releases/r". It is the deletion key and must be
	// passed back to the service unmodified.
	Name           string
	DisplayVersion string
	BuildVersion   string
	CreateTime     time.Time
}

// App is a logical grouping of releases (one product target).
type App struct {
	// Name is the full resource name, e.g. "projects/p/apps/a".
	Name        string `json:"name"`
	AppID       string `json:"app_id"`
	DisplayName string `json:"display_name,omitempty"`
	Platform    string `json:"platform,omitempty"`
}
