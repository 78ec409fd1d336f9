package delivery

import (
	"strings"
	"sync"

	"github.com/psanford/wappush/dispatch"
)

// Registry resolves the default consumer of a MIME type. It implements
// dispatch.ConsumerResolver.
type Registry struct {
	mu       sync.RWMutex
	byMime   map[string]dispatch.Consumer
	fallback *dispatch.Consumer
}

func NewRegistry() *Registry {
	return &Registry{byMime: make(map[string]dispatch.Consumer)}
}

func (r *Registry) SetDefault(mimeType string, c dispatch.Consumer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byMime[strings.ToLower(mimeType)] = c
}

func (r *Registry) ClearDefault(mimeType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byMime, strings.ToLower(mimeType))
}

// SetFallback sets the consumer used for MIME types without their own
// default, typically the default messaging app. An empty name clears it.
func (r *Registry) SetFallback(c dispatch.Consumer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.Name == "" {
		r.fallback = nil
		return
	}
	r.fallback = &c
}

func (r *Registry) DefaultConsumer(mimeType string) (dispatch.Consumer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.byMime[strings.ToLower(mimeType)]; ok {
		return c, true
	}
	if r.fallback != nil {
		return *r.fallback, true
	}
	return dispatch.Consumer{}, false
}
