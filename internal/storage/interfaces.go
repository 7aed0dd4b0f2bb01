package storage

import (
	"context"
	"io"

	"github.com/kiralabs/launchpad/internal/models"
)

// RunCache defines the interface for caching workflow run history
type RunCache interface {
	// AddRecentRun adds a run to the recent runs list and stores it by id
	AddRecentRun(ctx context.Context, run *models.RunEvent) error

	// GetRecentRuns retrieves the most recent runs
	GetRecentRuns(ctx context.Context, limit int64) ([]*models.RunEvent, error)

	// GetRun retrieves a run by id
	GetRun(ctx context.Context, runID string) (*models.RunEvent, error)

	// PublishRun publishes a run event to the live Pub/Sub channel
	PublishRun(ctx context.Context, run *models.RunEvent) error

	// Ping checks if the cache is reachable
	Ping(ctx context.Context) error

	io.Closer
}

// RunStore defines the interface for persistent run/swap storage
type RunStore interface {
	// InsertRun inserts a workflow run summary
	InsertRun(ctx context.Context, run *models.RunEvent) error

	// InsertSwap inserts an executed swap event
	InsertSwap(ctx context.Context, swap *models.SwapEvent) error

	// Ping checks if the store is reachable
	Ping(ctx context.Context) error

	io.Closer
}
