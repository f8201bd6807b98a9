// Package gateways defines interfaces for external service adapters.
package gateways

import (
	"context"

	"github.com/buildpantry/distprune/internal/domain/entities"
)

// MaxBatchDeleteNames is the upper bound the batch-delete endpoint accepts
// per request.
const MaxBatchDeleteNames = 100

// DistributionGateway defines operations against the app distribution API
type DistributionGateway interface {
	// ListApps lists all apps of a project, in service order
	ListApps(ctx context.Context, projectID string) ([]entities.App, error)

	// ListReleases fetches one page of an app's releases. An empty
	// pageToken requests the first page; the returned token is empty on
	// the last page. appName is the full resource name.
	ListReleases(ctx context.Context, appName, pageToken string) ([]entities.Release, string, error)

	// BatchDeleteReleases deletes up to MaxBatchDeleteNames releases in
	// one request. The request is atomic pass/fail from the caller's
	// perspective.
	BatchDeleteReleases(ctx context.Context, appName string, names []string) error
}
