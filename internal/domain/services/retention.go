// Package services contains pure domain logic with no I/O dependencies.
package services

import (
	"sort"
	"time"

	"github.com/buildpantry/distprune/internal/domain/entities"
)

// RetentionPlan partitions an app's releases into the set to keep and the
// set to delete. The two sets are disjoint and their union is the input;
// both preserve newest-first order.
type RetentionPlan struct {
	Keep   []entities.Release
	Delete []entities.Release
}

// DeleteNames returns the resource names of the releases to delete, in
// plan order.
func (p *RetentionPlan) DeleteNames() []string {
	names := make([]string, len(p.Delete))
	for i, r := range p.Delete {
		names[i] = r.Name
	}
	return names
}

// RetentionService computes retention plans. It is stateless and
// deterministic: the same releases, policy, and reference time always
// produce the same plan.
type RetentionService struct{}

// NewRetentionService creates a new retention service.
func NewRetentionService() *RetentionService {
	return &RetentionService{}
}

// Plan sorts releases newest-first (stable, so equal timestamps keep
// their input order) and selects for deletion every release that is both
// beyond the MinKeep newest and older than the MaxAgeDays cutoff.
//
// MinKeep of 0 means count alone never protects anything; MaxAgeDays of 0
// makes every release beyond the floor stale.
func (s *RetentionService) Plan(releases []entities.Release, policy entities.RetentionPolicy, now time.Time) *RetentionPlan {
	sorted := make([]entities.Release, len(releases))
	copy(sorted, releases)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreateTime.After(sorted[j].CreateTime)
	})

	cutoff := policy.CutoffAt(now)

	plan := &RetentionPlan{}
	for rank, release := range sorted {
		if rank >= policy.MinKeep && release.CreateTime.Before(cutoff) {
			plan.Delete = append(plan.Delete, release)
		} else {
			plan.Keep = append(plan.Keep, release)
		}
	}

	return plan
}
