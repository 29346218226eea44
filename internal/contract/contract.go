// Package contract provides interfaces and shared utilities for score2dx's internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/score2dx/schema"
)

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetImportStore() CacheStore
	GetAnalysisStore() AnalysisStore
}

// CacheStore defines the interface for the import cache.
// Values are opaque payloads keyed by content hash.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// AnalysisStore defines the interface for tracking analysis runs and their chart results.
type AnalysisStore interface {
	// BeginAnalysis creates a new analysis run and returns its unique ID
	BeginAnalysis(startTime time.Time, iidxID string, activeVersion int, configParams map[string]any) (int64, error)

	// EndAnalysis updates the analysis run with completion data
	EndAnalysis(analysisID int64, endTime time.Time, totalCharts int) error

	// RecordChartResult stores the analysis of one active chart
	RecordChartResult(analysisID int64, record schema.ChartResultRecord) error

	// GetStatus returns status information about the analysis store
	GetStatus() (schema.AnalysisStatus, error)

	// GetAllAnalysisRuns returns every recorded run, oldest first
	GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error)

	// GetAllChartResults returns every recorded chart result
	GetAllChartResults() ([]schema.ChartResultRecord, error)

	// Close closes the underlying connection
	Close() error
}
