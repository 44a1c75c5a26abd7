package usecases

import (
	"context"
	"countrystats/internal/engine"
	"countrystats/internal/repository"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sink struct {
	ds *engine.Dataset
}

func (s *sink) SetData(ds *engine.Dataset) { s.ds = ds }
func (s *sink) HasData() bool             { return s.ds != nil }

func writeSources(t *testing.T, dir string) engine.Paths {
	t.Helper()
	files := map[string]string{
		"c.csv": "Country,Region,Sub-Region,Sq Km\nFiji,Oceania,Melanesia,18274\n",
		"p.csv": "Country,2000,2020\nFiji,811011,896444\n",
		"s.csv": "Country,a,b\nFiji,66,71\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return engine.Paths{
		Countries:  filepath.Join(dir, "c.csv"),
		Population: filepath.Join(dir, "p.csv"),
		Species:    filepath.Join(dir, "s.csv"),
	}
}

func TestRefreshSavesSnapshot(t *testing.T) {
	dir := t.TempDir()
	paths := writeSources(t, dir)
	repo, err := repository.NewSQLiteSnapshotRepository(filepath.Join(dir, "snap.db"))
	require.NoError(t, err)
	defer repo.Close()

	s := &sink{}
	uc := NewDatasetUseCase(paths, engine.DefaultSchema(), true, repo, s)
	require.NoError(t, uc.Refresh(context.Background()))
	require.True(t, s.HasData())

	snap, err := repo.LoadDataset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, s.ds.Fingerprint(), snap.Fingerprint())
}

func TestRefreshFallsBackToSnapshot(t *testing.T) {
	dir := t.TempDir()
	paths := writeSources(t, dir)
	repo, err := repository.NewSQLiteSnapshotRepository(filepath.Join(dir, "snap.db"))
	require.NoError(t, err)
	defer repo.Close()

	// Seed the snapshot from a good load.
	require.NoError(t, NewDatasetUseCase(paths, engine.DefaultSchema(), true, repo, &sink{}).Refresh(context.Background()))

	require.NoError(t, os.Remove(paths.Species))
	s := &sink{}
	err = NewDatasetUseCase(paths, engine.DefaultSchema(), true, repo, s).Refresh(context.Background())
	assert.Error(t, err)
	require.True(t, s.HasData())
	assert.Equal(t, []string{"Fiji"}, s.ds.Countries())
}

func TestRefreshKeepsServedDataOnFailure(t *testing.T) {
	dir := t.TempDir()
	paths := writeSources(t, dir)

	s := &sink{}
	uc := NewDatasetUseCase(paths, engine.DefaultSchema(), true, nil, s)
	require.NoError(t, uc.Refresh(context.Background()))
	served := s.ds

	require.NoError(t, os.WriteFile(paths.Population, []byte("Country,2000\nFiji,abc\n"), 0o644))
	assert.Error(t, uc.Refresh(context.Background()))
	assert.Same(t, served, s.ds)
}

func TestRefreshConcurrentCalls(t *testing.T) {
	dir := t.TempDir()
	paths := writeSources(t, dir)
	repo, err := repository.NewSQLiteSnapshotRepository(filepath.Join(dir, "snap.db"))
	require.NoError(t, err)
	defer repo.Close()

	uc := NewDatasetUseCase(paths, engine.DefaultSchema(), true, repo, &lockedSink{})

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = uc.Refresh(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	snap, err := repo.LoadDataset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Fiji"}, snap.Countries())
}

type lockedSink struct {
	mu sync.Mutex
	ds *engine.Dataset
}

func (s *lockedSink) SetData(ds *engine.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ds = ds
}

func (s *lockedSink) HasData() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ds != nil
}
