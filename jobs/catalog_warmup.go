package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/kitforge-id/kitforge/internal/catalog"
	jobmetrics "github.com/kitforge-id/kitforge/internal/jobs"
)

// CatalogWarmupJob pre-fills the catalog snapshot cache so the first quote of
// the day does not pay the cold-cache cost.
type CatalogWarmupJob struct {
	catalog *catalog.CatalogService
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewCatalogWarmupJob constructs the warmup job.
func NewCatalogWarmupJob(catalogService *catalog.CatalogService, logger *slog.Logger, metrics *jobmetrics.Metrics) *CatalogWarmupJob {
	return &CatalogWarmupJob{catalog: catalogService, logger: logger, metrics: metrics}
}

// Handle warms both the public and admin snapshot variants.
func (j *CatalogWarmupJob) Handle(ctx context.Context, _ *asynq.Task) error {
	tracker := j.metrics.Track("catalog_warmup")
	if err := j.catalog.Warm(ctx); err != nil {
		return tracker.End(fmt.Errorf("catalog warmup: %w", err))
	}
	j.logger.Info("catalog cache warmed")
	return tracker.End(nil)
}
