package testutil

import (
	"context"
	"sync"

	"github.com/turnstone-io/turnstone/pkg/types"
)

// MockStore is an in-memory stand-in for the postgres store used by
// importer tests. It records every write so tests can assert on them.
type MockStore struct {
	mu sync.Mutex

	Existing map[string]bool

	ExistsErr error
	LoadErr   error
	RunErr    error

	Loaded []*types.MatchRecords
	Forced []bool
	Runs   []types.ImportRun
}

func NewMockStore() *MockStore {
	return &MockStore{Existing: make(map[string]bool)}
}

func (m *MockStore) MatchExists(ctx context.Context, matchID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ExistsErr != nil {
		return false, m.ExistsErr
	}
	return m.Existing[matchID], nil
}

func (m *MockStore) LoadMatch(ctx context.Context, rec *types.MatchRecords, force bool) (types.RowCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return types.RowCounts{}, m.LoadErr
	}
	m.Loaded = append(m.Loaded, rec)
	m.Forced = append(m.Forced, force)
	m.Existing[rec.Match.MatchID] = true
	return rec.Counts(), nil
}

func (m *MockStore) InsertImportRun(ctx context.Context, run types.ImportRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RunErr != nil {
		return m.RunErr
	}
	m.Runs = append(m.Runs, run)
	return nil
}

// LoadCount returns how many matches were written.
func (m *MockStore) LoadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Loaded)
}
