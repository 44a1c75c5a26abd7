// Package usecases contains the application's load/refresh logic
package usecases

import (
	"context"
	"countrystats/internal/engine"
	"countrystats/internal/repository"
	"fmt"
	"sync"

	"github.com/labstack/gommon/log"
)

// DatasetSink receives every successfully loaded dataset
type DatasetSink interface {
	SetData(ds *engine.Dataset)
	HasData() bool
}

// DatasetUseCase loads the source files and keeps the snapshot store in sync
type DatasetUseCase struct {
	mu         sync.Mutex
	paths      engine.Paths
	schema     engine.Schema
	skipHeader bool
	repo       repository.SnapshotRepository
	sink       DatasetSink
}

// NewDatasetUseCase creates a new dataset use case. repo may be nil.
func NewDatasetUseCase(paths engine.Paths, schema engine.Schema, skipHeader bool, repo repository.SnapshotRepository, sink DatasetSink) *DatasetUseCase {
	return &DatasetUseCase{
		paths:      paths,
		schema:     schema,
		skipHeader: skipHeader,
		repo:       repo,
		sink:       sink,
	}
}

// Refresh reloads the source files. On failure, and only if nothing has
// been served yet, it falls back to the stored snapshot. Concurrent calls
// run one at a time.
func (uc *DatasetUseCase) Refresh(ctx context.Context) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	log.Info("Starting dataset refresh...")

	ds, err := engine.LoadDataset(ctx, uc.paths, uc.schema, uc.skipHeader)
	if err != nil {
		if uc.sink.HasData() || uc.repo == nil {
			return fmt.Errorf("failed to load dataset: %w", err)
		}
		log.Warnf("Load failed (%v), trying snapshot", err)
		snap, serr := uc.repo.LoadDataset(ctx)
		if serr != nil {
			return fmt.Errorf("failed to load dataset: %w (snapshot: %v)", err, serr)
		}
		uc.sink.SetData(snap)
		log.Infof("Serving snapshot with %d countries", snap.Len())
		return fmt.Errorf("serving snapshot after failed load: %w", err)
	}

	uc.sink.SetData(ds)

	if uc.repo != nil {
		if err := uc.repo.SaveDataset(ctx, ds); err != nil {
			log.Warnf("Failed to save snapshot: %v", err)
		}
	}
	return nil
}
