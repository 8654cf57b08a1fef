package orchestrator

import (
	"context"
	"sync"

	"github.com/brandforge/creative-console/internal/store"
	"github.com/brandforge/creative-console/pkg/logger"
)

// Registry hands out one orchestrator per user, initializing campaign
// state on first access.
type Registry struct {
	mu     sync.Mutex
	byUser map[string]*Orchestrator

	gen           Generator
	store         store.Store
	history       History
	batchQuantity int
	logger        *logger.Logger
}

// NewRegistry creates a registry sharing one gateway, store, and history
// log across users.
func NewRegistry(g Generator, st store.Store, history History, batchQuantity int, log *logger.Logger) *Registry {
	return &Registry{
		byUser:        make(map[string]*Orchestrator),
		gen:           g,
		store:         st,
		history:       history,
		batchQuantity: batchQuantity,
		logger:        log,
	}
}

// Get returns the user's orchestrator, creating and initializing it on
// first use.
func (r *Registry) Get(ctx context.Context, userID string) (*Orchestrator, error) {
	r.mu.Lock()
	if o, ok := r.byUser[userID]; ok {
		r.mu.Unlock()
		return o, nil
	}
	o := New(userID, r.gen, r.store, r.history, r.batchQuantity, r.logger)
	r.byUser[userID] = o
	r.mu.Unlock()

	if err := o.Init(ctx); err != nil {
		r.mu.Lock()
		delete(r.byUser, userID)
		r.mu.Unlock()
		return nil, err
	}
	return o, nil
}
