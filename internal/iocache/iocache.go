// Package iocache persists the import cache and analysis runs.
package iocache

import (
	"sync"

	"github.com/huangsam/score2dx/internal/contract"
)

// CacheStoreManager manages multiple CacheStore instances.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	imports      contract.CacheStore
	analysis     contract.AnalysisStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetImportStore returns the import CacheStore.
func (mgr *CacheStoreManager) GetImportStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.imports
}

// GetAnalysisStore returns the analysis AnalysisStore.
func (mgr *CacheStoreManager) GetAnalysisStore() contract.AnalysisStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.analysis
}
