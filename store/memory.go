package store

import (
	"sync"

	"github.com/rustyeddy/desk/market"
)

// Memory is an in-memory store with the same contracts as SQLite.
// Used in tests and by the memory server.
type Memory struct {
	mu        sync.RWMutex
	accounts  map[string][]byte
	snapshots map[string]market.Snapshot
}

func NewMemory() *Memory {
	return &Memory{
		accounts:  make(map[string][]byte),
		snapshots: make(map[string]market.Snapshot),
	}
}

func (m *Memory) ReadAccount(name string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.accounts[name]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(record))
	copy(out, record)
	return out, true, nil
}

func (m *Memory) WriteAccount(name string, record []byte) error {
	cp := make([]byte, len(record))
	copy(cp, record)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[name] = cp
	return nil
}

func (m *Memory) ReadSnapshot(date string) (market.Snapshot, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.snapshots[date]
	if !ok {
		return nil, false, nil
	}
	out := make(market.Snapshot, len(snap))
	for sym, price := range snap {
		out[sym] = price
	}
	return out, true, nil
}

func (m *Memory) WriteSnapshot(date string, snap market.Snapshot) error {
	cp := make(market.Snapshot, len(snap))
	for sym, price := range snap {
		cp[sym] = price
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[date] = cp
	return nil
}
