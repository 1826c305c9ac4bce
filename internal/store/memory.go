package store

import (
	"context"
	"sync"

	"github.com/dense-analysis/nexus/internal/model"
)

// MemoryWatchlist keeps the watchlist in process memory.
type MemoryWatchlist struct {
	mu    sync.RWMutex
	items map[string]model.WatchlistItem
	// order keeps ids in the order they were added.
	order []string
}

func NewMemoryWatchlist() *MemoryWatchlist {
	return &MemoryWatchlist{
		items: make(map[string]model.WatchlistItem),
	}
}

func (m *MemoryWatchlist) List(ctx context.Context) ([]model.WatchlistItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.WatchlistItem, 0, len(m.order))

	for _, id := range m.order {
		out = append(out, m.items[id])
	}

	return out, nil
}

func (m *MemoryWatchlist) Add(ctx context.Context, item model.WatchlistItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[item.ID]; !ok {
		m.order = append(m.order, item.ID)
	}

	m.items[item.ID] = item

	return nil
}

func (m *MemoryWatchlist) Remove(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return nil
	}

	delete(m.items, id)

	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)

			break
		}
	}

	return nil
}
