// Package orchestrators coordinates complex workflows across multiple domain services.
package orchestrators

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/buildpantry/distprune/internal/domain/entities"
	"github.com/buildpantry/distprune/internal/domain/interfaces"
	"github.com/buildpantry/distprune/internal/domain/interfaces/gateways"
	"github.com/buildpantry/distprune/internal/domain/services"
)

// deleteChunkSize is the number of release names submitted per
// batch-delete request.
const deleteChunkSize = gateways.MaxBatchDeleteNames

// PruneOrchestrator coordinates the collect → select → delete pipeline
// for one or all apps of a project. Execution is strictly sequential:
// each remote call is awaited before the next is issued.
type PruneOrchestrator struct {
	gateway   gateways.DistributionGateway
	retention *services.RetentionService
	logger    interfaces.Logger
	now       func() time.Time
}

// NewPruneOrchestrator creates a new prune orchestrator
func NewPruneOrchestrator(gateway gateways.DistributionGateway, logger interfaces.Logger) *PruneOrchestrator {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &PruneOrchestrator{
		gateway:   gateway,
		retention: services.NewRetentionService(),
		logger:    logger,
		now:       time.Now,
	}
}

// CollectReleases retrieves an app's full release inventory, following
// pagination until the service returns no continuation token. The result
// is fully materialized in page order. Any page failure aborts the
// collection with no partial data.
func (o *PruneOrchestrator) CollectReleases(ctx context.Context, appName string) ([]entities.Release, error) {
	var all []entities.Release
	pageToken := ""

	for {
		page, nextToken, err := o.gateway.ListReleases(ctx, appName, pageToken)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if nextToken == "" {
			return all, nil
		}
		pageToken = nextToken
	}
}

// DeleteReleases deletes the given release names in chunks of 100,
// preserving input order. A failing chunk is recorded and the remaining
// chunks still execute; names in a failed chunk are never counted as
// deleted. Failed chunks are not retried within the run.
func (o *PruneOrchestrator) DeleteReleases(ctx context.Context, appName string, names []string) entities.PruneOutcome {
	outcome := entities.PruneOutcome{}

	for start := 0; start < len(names); start += deleteChunkSize {
		end := start + deleteChunkSize
		if end > len(names) {
			end = len(names)
		}
		chunk := names[start:end]

		if err := o.gateway.BatchDeleteReleases(ctx, appName, chunk); err != nil {
			o.logger.Warn("batch delete failed",
				interfaces.F("app", appName),
				interfaces.F("names", len(chunk)),
				interfaces.F("error", err))
			outcome.FailedChunks = append(outcome.FailedChunks, entities.FailedChunk{
				Names: append([]string(nil), chunk...),
				Error: err.Error(),
			})
			continue
		}

		outcome.Deleted += len(chunk)
	}

	return outcome
}

// PruneApp runs the full pipeline for one app. A listing failure is
// captured in the result rather than returned, so callers iterating over
// many apps never abort the iteration.
func (o *PruneOrchestrator) PruneApp(ctx context.Context, app entities.App, policy entities.RetentionPolicy) entities.AppResult {
	result := entities.AppResult{App: app}

	releases, err := o.CollectReleases(ctx, app.Name)
	if err != nil {
		o.logger.Error("release listing failed",
			interfaces.F("app", app.Name),
			interfaces.F("error", err))
		result.Error = err.Error()
		return result
	}

	plan := o.retention.Plan(releases, policy, o.now())
	result.Examined = len(releases)
	result.Kept = len(plan.Keep)

	o.logger.Info("retention plan computed",
		interfaces.F("app", app.Name),
		interfaces.F("examined", len(releases)),
		interfaces.F("keep", len(plan.Keep)),
		interfaces.F("delete", len(plan.Delete)))

	if len(plan.Delete) == 0 {
		return result
	}

	result.Outcome = o.DeleteReleases(ctx, app.Name, plan.DeleteNames())
	return result
}

// PruneProject prunes every app of a project, one at a time, in the
// order the apps endpoint returns them. An app-listing failure is fatal
// for the whole run; a single app's failure is not.
func (o *PruneOrchestrator) PruneProject(ctx context.Context, projectID string, policy entities.RetentionPolicy) (*entities.PruneReport, error) {
	report := o.newReport(projectID, policy)

	apps, err := o.gateway.ListApps(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list apps for project %s: %w", projectID, err)
	}

	for _, app := range apps {
		report.Results = append(report.Results, o.PruneApp(ctx, app, policy))
	}

	report.FinishedAt = o.now()
	return report, nil
}

// PruneSingleApp prunes one app identified by its app ID within a project.
func (o *PruneOrchestrator) PruneSingleApp(ctx context.Context, projectID, appID string, policy entities.RetentionPolicy) (*entities.PruneReport, error) {
	report := o.newReport(projectID, policy)

	app := entities.App{
		Name:  fmt.Sprintf("projects/%s/apps/%s", projectID, appID),
		AppID: appID,
	}
	report.Results = append(report.Results, o.PruneApp(ctx, app, policy))

	report.FinishedAt = o.now()
	return report, nil
}

func (o *PruneOrchestrator) newReport(projectID string, policy entities.RetentionPolicy) *entities.PruneReport {
	return &entities.PruneReport{
		RunID:     uuid.NewString(),
		Project:   projectID,
		Policy:    entities.Policy{MinKeep: policy.MinKeep, MaxAgeDays: policy.MaxAgeDays},
		StartedAt: o.now(),
	}
}
