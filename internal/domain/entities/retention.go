package entities

import "time"

// Default retention policy values
const (
	DefaultMinKeep    = 5
	DefaultMaxAgeDays = 30
)

// RetentionPolicy governs which releases of an app are eligible for
// deletion. Both fields apply jointly: a release within the MinKeep newest
// is never deleted regardless of age, and a release beyond the floor is
// deleted only once it is older than MaxAgeDays.
type RetentionPolicy struct {
	MinKeep    int
	MaxAgeDays int
}

// DefaultRetentionPolicy returns the policy used when neither flags nor a
// config file override it.
func DefaultRetentionPolicy() RetentionPolicy {
	return RetentionPolicy{MinKeep: DefaultMinKeep, MaxAgeDays: DefaultMaxAgeDays}
}

// CutoffAt returns the age cutoff relative to now. Releases created before
// the cutoff are considered stale.
func (p RetentionPolicy) CutoffAt(now time.Time) time.Time {
	return now.AddDate(0, 0, -p.MaxAgeDays)
}

// Validate rejects nonsensical policy values. The selector itself never
// validates; this runs at the configuration boundary.
func (p RetentionPolicy) Validate() error {
	if p.MinKeep < 0 {
		return NewConfigError("min-count must be non-negative")
	}
	if p.MaxAgeDays < 0 {
		return NewConfigError("max-days must be non-negative")
	}
	return nil
}
