package ws

import (
	"context"
	"sort"
	"sync"

	"neurobridge/backend/pkg/logger"
	"neurobridge/backend/pkg/observability"
)

// Channel is an open duplex connection to one client
type Channel interface {
	Send(payload []byte) error
	Close() error
	Done() <-chan struct{}
}

// Registry maps client ids to their open channels. Membership is the only
// authority on whether a client is reachable.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]Channel
	log      *logger.Logger
	metrics  *observability.Metrics
}

// NewRegistry creates an empty registry
func NewRegistry(log *logger.Logger, metrics *observability.Metrics) *Registry {
	if log == nil {
		log = logger.GetGlobal()
	}
	if metrics == nil {
		metrics = observability.NopMetrics()
	}
	return &Registry{
		channels: make(map[string]Channel),
		log:      log,
		metrics:  metrics,
	}
}

// Connect records id -> ch, replacing any existing entry. The displaced
// channel, if any, is returned for the caller to close.
func (r *Registry) Connect(id string, ch Channel) Channel {
	r.mu.Lock()
	old := r.channels[id]
	r.channels[id] = ch
	r.mu.Unlock()

	if old == ch {
		return nil
	}
	return old
}

// Disconnect removes id; unknown ids are ignored
func (r *Registry) Disconnect(id string) {
	r.mu.Lock()
	delete(r.channels, id)
	r.mu.Unlock()
}

// Release removes id only while ch is still its registered channel and
// reports whether it did
func (r *Registry) Release(id string, ch Channel) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.channels[id]; ok && current == ch {
		delete(r.channels, id)
		return true
	}
	return false
}

// Send delivers payload to id. An unregistered id is a silent no-op.
func (r *Registry) Send(id string, payload []byte) error {
	r.mu.RLock()
	ch, ok := r.channels[id]
	r.mu.RUnlock()

	if !ok {
		return nil
	}
	return ch.Send(payload)
}

// Broadcast delivers payload to every registered channel except the excluded
// ids and returns the number of successful deliveries. Recipients are
// snapshotted under the lock and written to outside it; one failing
// recipient does not stop the rest.
func (r *Registry) Broadcast(payload []byte, exclude ...string) int {
	skip := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}

	type target struct {
		id string
		ch Channel
	}

	r.mu.RLock()
	targets := make([]target, 0, len(r.channels))
	for id, ch := range r.channels {
		if _, excluded := skip[id]; !excluded {
			targets = append(targets, target{id, ch})
		}
	}
	r.mu.RUnlock()

	delivered := 0
	for _, t := range targets {
		if err := t.ch.Send(payload); err != nil {
			r.metrics.BroadcastFailed(context.Background())
			r.log.Warn("Broadcast delivery failed", "client_id", t.id, "error", err.Error())
			continue
		}
		delivered++
	}
	return delivered
}

// Count returns the number of registered channels
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels)
}

// IDs returns the registered client ids in sorted order
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.channels))
	for id := range r.channels {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// CloseAll closes every registered channel. Entries are left for their
// sessions to release.
func (r *Registry) CloseAll() {
	r.mu.RLock()
	chans := make([]Channel, 0, len(r.channels))
	for _, ch := range r.channels {
		chans = append(chans, ch)
	}
	r.mu.RUnlock()

	for _, ch := range chans {
		_ = ch.Close()
	}
}
