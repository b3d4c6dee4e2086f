package storage

import (
	"context"
	"sync"

	"github.com/ruteri/royalty-registry/interfaces"
)

const memoryShards = 32

// MemoryStore keeps royalty configs in process memory.
// Updates are serialized per key shard; reads take a shared lock and never
// observe a half-written config.
type MemoryStore struct {
	mutex   sync.RWMutex
	configs map[interfaces.Address]interfaces.RoyaltyConfig
	shards  [memoryShards]sync.Mutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		configs: make(map[interfaces.Address]interfaces.RoyaltyConfig),
	}
}

func (m *MemoryStore) Load(ctx context.Context, asset interfaces.Address) (interfaces.RoyaltyConfig, bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	config, exists := m.configs[asset]
	return config, exists, nil
}

func (m *MemoryStore) Update(ctx context.Context, asset interfaces.Address, fn interfaces.UpdateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	shard := &m.shards[shardFor(asset)]
	shard.Lock()
	defer shard.Unlock()

	m.mutex.RLock()
	current, exists := m.configs[asset]
	m.mutex.RUnlock()

	next, err := fn(current, exists)
	if err != nil {
		return err
	}

	m.mutex.Lock()
	m.configs[asset] = next
	m.mutex.Unlock()
	return nil
}

// Available always reports true.
func (m *MemoryStore) Available(ctx context.Context) bool {
	return true
}

func (m *MemoryStore) Name() string {
	return "memory"
}

func (m *MemoryStore) Close() error {
	return nil
}

func shardFor(asset interfaces.Address) int {
	var h uint32
	for _, b := range asset {
		h = h*31 + uint32(b)
	}
	return int(h % memoryShards)
}
