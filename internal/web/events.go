package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/starfederation/datastar-go/datastar"
)

const keepAliveInterval = 25 * time.Second

// refreshHub fans a "something changed on the backend" tick out to every open page.
type refreshHub struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func newRefreshHub() *refreshHub {
	return &refreshHub{subs: map[chan struct{}]struct{}{}}
}

func (h *refreshHub) subscribe() (ch chan struct{}, cancel func()) {
	ch = make(chan struct{}, 1)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
		close(ch)
	}
}

// broadcast never blocks; a subscriber that has not consumed its last tick
// just keeps that one.
func (h *refreshHub) broadcast() {
	h.mu.Lock()
	for ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	h.mu.Unlock()
}

func (h *refreshHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// handleEvents is the page's long-lived stream: on every hub tick it re-renders
// the regions the backend can change on its own.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sig := readSignals(r)
	sse := datastar.NewSSE(w, r)

	ch, cancel := s.hub.subscribe()
	defer cancel()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-sse.Context().Done():
			return
		case <-keepAlive.C:
			_ = sse.PatchSignals([]byte(`{}`))
		case <-ch:
			s.patchRegions(sse.Context(), sse, sig, liveRegions...)
		}
	}
}
