package manager

import (
	"sync"

	"github.com/DoyleJ11/marathon-draft/internal/storage"
)

var (
	defaultMu      sync.Mutex
	defaultManager *Manager
)

// Default returns the process-wide manager, creating one backed by memory
// storage and no remote source if none was set. Prefer passing a *Manager
// explicitly; Default exists for callers that cannot.
func Default() *Manager {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultManager == nil {
		m, _ := New(Config{Storage: storage.NewMemory()})
		defaultManager = m
	}
	return defaultManager
}

func SetDefault(m *Manager) {
	defaultMu.Lock()
	defaultManager = m
	defaultMu.Unlock()
}

// ResetDefault replaces the process-wide manager with a fresh instance built
// from the previous one's config, re-running hydration from storage.
// Subscriptions on the old instance are not carried over.
func ResetDefault() *Manager {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	cfg := Config{Storage: storage.NewMemory()}
	if defaultManager != nil {
		cfg = defaultManager.cfg
	}
	m, _ := New(cfg)
	defaultManager = m
	return m
}
