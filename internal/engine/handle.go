package engine

import (
	"sync"
	"time"

	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/config"
	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/risk"
	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/state"
)

// SessionHandle wraps a SessionState with a mutex so a host can share
// one session across goroutines without reimplementing the
// single-writer discipline itself.
type SessionHandle struct {
	mu      sync.Mutex
	session *state.SessionState
}

// NewHandle wraps an existing session.
func NewHandle(session *state.SessionState) *SessionHandle {
	return &SessionHandle{session: session}
}

// ProcessResponse serialises access and delegates to the package-level
// ProcessResponse.
func (h *SessionHandle) ProcessResponse(
	cfg config.Config,
	moduleID config.ModuleID,
	item state.ItemDescriptor,
	correct bool,
	rtSeconds float64,
	timestamp time.Time,
	itemPool map[int]state.ItemDescriptor,
) (ProcessResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return ProcessResponse(cfg, h.session, moduleID, item, correct, rtSeconds, timestamp, itemPool)
}

// ComputeGlobalRisk computes the current risk result without mutating
// the session.
func (h *SessionHandle) ComputeGlobalRisk(cfg config.Config) risk.GlobalRiskResult {
	h.mu.Lock()
	defer h.mu.Unlock()
	return risk.ComputeGlobalRisk(h.session, cfg)
}

// Snapshot returns a JSON-ready snapshot of the current session state.
func (h *SessionHandle) Snapshot() state.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.session.ToSnapshot()
}
