package calendar

import (
	"fmt"
	"sync"

	"github.com/astropret/rentcal/internal"
)

type Mux struct {
	mu        sync.Mutex
	providers map[string]internal.RemoteCalendar
}

func NewMux() *Mux {
	return &Mux{
		providers: make(map[string]internal.RemoteCalendar),
	}
}

func (m *Mux) Get(platform string) (internal.RemoteCalendar, error) {
	provider, ok := m.providers[platform]
	if !ok {
		return nil, fmt.Errorf("calendar %q is not implemented", platform)
	}
	return provider, nil
}

func (m *Mux) Register(platform string, provider internal.RemoteCalendar) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.providers[platform] = provider
}
