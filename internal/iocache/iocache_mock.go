package iocache

import (
	"time"

	"github.com/huangsam/eegstudy/internal/contract"
	"github.com/huangsam/eegstudy/schema"
	"github.com/stretchr/testify/mock"
)

// MockHistoryManager is a mock implementation of HistoryManager for testing.
type MockHistoryManager struct {
	mock.Mock
}

var _ contract.HistoryManager = &MockHistoryManager{} // Compile-time check

// GetHistoryStore implements the HistoryManager interface.
func (m *MockHistoryManager) GetHistoryStore() contract.HistoryStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.HistoryStore)
	return store
}

// MockHistoryStore is a mock implementation of HistoryStore for testing.
type MockHistoryStore struct {
	mock.Mock
}

var _ contract.HistoryStore = &MockHistoryStore{} // Compile-time check

// BeginRun implements the HistoryStore interface.
func (m *MockHistoryStore) BeginRun(startTime time.Time, resultsRoot, metricFile string, configParams map[string]any) (int64, error) {
	args := m.Called(startTime, resultsRoot, metricFile, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// RecordScopeStats implements the HistoryStore interface.
func (m *MockHistoryStore) RecordScopeStats(runID int64, scope string, stats schema.OverallStats) error {
	args := m.Called(runID, scope, stats)
	return args.Error(0)
}

// EndRun implements the HistoryStore interface.
func (m *MockHistoryStore) EndRun(runID int64, endTime time.Time, paradigms, artifactsLoaded int) error {
	args := m.Called(runID, endTime, paradigms, artifactsLoaded)
	return args.Error(0)
}

// GetStatus implements the HistoryStore interface.
func (m *MockHistoryStore) GetStatus() (schema.HistoryStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}

// GetAllRuns implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllRuns() ([]schema.RunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.RunRecord)
	return runs, args.Error(1)
}

// GetAllScopeStats implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllScopeStats() ([]schema.ScopeStatRecord, error) {
	args := m.Called()
	stats, _ := args.Get(0).([]schema.ScopeStatRecord)
	return stats, args.Error(1)
}

// Close implements the HistoryStore interface.
func (m *MockHistoryStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
