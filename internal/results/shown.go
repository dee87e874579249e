package results

import (
	"sync"

	"github.com/neexbeast/citycast/internal/history"
)

const maxShownViews = 10000

// shownViews remembers the last Ready view per client, the server-side
// equivalent of the results page's component state.
type shownViews struct {
	mu    sync.Mutex
	limit int
	views map[string]View
}

func newShownViews(limit int) *shownViews {
	return &shownViews{limit: limit, views: make(map[string]View)}
}

func (s *shownViews) put(client string, v View) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.views[client]; !ok && len(s.views) >= s.limit {
		// Map order is unspecified, so this drops an arbitrary client.
		for k := range s.views {
			delete(s.views, k)
			break
		}
	}
	s.views[client] = v
}

func (s *shownViews) clearHistory(client string) (View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.views[client]
	if !ok {
		return View{}, false
	}
	v.History = history.List{}
	s.views[client] = v
	return v, true
}
