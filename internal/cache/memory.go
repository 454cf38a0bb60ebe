package cache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/allegro/bigcache/v3"
)

// Memory is an ephemeral backend on top of BigCache. Entry freshness is still
// decided by Cache; the BigCache life window only bounds memory use.
type Memory struct {
	cache *bigcache.BigCache
}

var _ Backend = (*Memory)(nil)

// NewMemory creates a memory backend holding entries for at most lifeWindow
// and sizeMB megabytes (0 = unbounded).
func NewMemory(lifeWindow time.Duration, sizeMB int) (*Memory, error) {
	if lifeWindow <= 0 {
		lifeWindow = 24 * time.Hour
	}
	cfg := bigcache.DefaultConfig(lifeWindow)
	cfg.HardMaxCacheSize = sizeMB
	cfg.Verbose = false
	cfg.MaxEntrySize = 64 * 1024

	bc, err := bigcache.New(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("creating memory cache: %w", err)
	}
	return &Memory{cache: bc}, nil
}

func (m *Memory) Load(key string) ([]byte, bool, error) {
	value, err := m.cache.Get(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (m *Memory) Store(key string, value []byte) error {
	return m.cache.Set(key, value)
}

func (m *Memory) Remove(key string) error {
	err := m.cache.Delete(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil
	}
	return err
}

func (m *Memory) Keys(prefix string) ([]string, error) {
	var keys []string
	it := m.cache.Iterator()
	for it.SetNext() {
		info, err := it.Value()
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(info.Key(), prefix) {
			keys = append(keys, info.Key())
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *Memory) Close() error {
	return m.cache.Close()
}
