// Package control owns the model lifecycle: the single shared "active
// model" record, the switch state machine that replaces it, and the
// keep-alive daemon that keeps the desired model resident.
package control

import (
	"sync"

	"switchd/pkg/types"
)

// ActiveState is the single-owner holder of the process-wide active-model
// record. The switcher's success path and the keep-alive reload are the
// only writers; both go through the switcher's mutex, so writes are
// serialized. Readers get a copy.
type ActiveState struct {
	mu  sync.RWMutex
	cur types.ActiveModel
}

// NewActiveState builds an empty holder (no model confirmed active).
func NewActiveState() *ActiveState { return &ActiveState{} }

// Current returns the active-model record. A zero Name means no model is
// confirmed active.
func (s *ActiveState) Current() types.ActiveModel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// replace swaps the record atomically. Package-private: only the switch
// and keep-alive paths may write.
func (s *ActiveState) replace(m types.ActiveModel) {
	s.mu.Lock()
	s.cur = m
	s.mu.Unlock()
}
