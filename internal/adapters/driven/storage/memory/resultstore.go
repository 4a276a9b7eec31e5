// Package memory provides in-memory implementations of driven port
// interfaces, used by one-shot CLI runs and in tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/raildocs-labs/raildocs-cli/internal/core/domain"
	"github.com/raildocs-labs/raildocs-cli/internal/core/ports/driven"
)

// Ensure AnalysisStore implements the interface.
var _ driven.AnalysisStore = (*AnalysisStore)(nil)

// AnalysisStore is an in-memory implementation of driven.AnalysisStore.
// Results live for the process lifetime only.
type AnalysisStore struct {
	mu      sync.RWMutex
	results map[string]domain.AnalysisResult
}

// NewAnalysisStore creates a new in-memory analysis store.
func NewAnalysisStore() *AnalysisStore {
	return &AnalysisStore{
		results: make(map[string]domain.AnalysisResult),
	}
}

// Save stores or updates an analysis result.
func (s *AnalysisStore) Save(_ context.Context, result *domain.AnalysisResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.ID] = *result
	return nil
}

// Get retrieves an analysis result by ID.
func (s *AnalysisStore) Get(_ context.Context, id string) (*domain.AnalysisResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &result, nil
}

// List returns all stored results, newest first.
func (s *AnalysisStore) List(_ context.Context) ([]domain.AnalysisResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]domain.AnalysisResult, 0, len(s.results))
	for id := range s.results {
		results = append(results, s.results[id])
	}
	sort.Slice(results, func(i, j int) bool {
		if !results[i].CreatedAt.Equal(results[j].CreatedAt) {
			return results[i].CreatedAt.After(results[j].CreatedAt)
		}
		return results[i].ID < results[j].ID
	})
	return results, nil
}

// Delete removes a stored result. Deleting a missing ID is not an error.
func (s *AnalysisStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.results, id)
	return nil
}
