package cache

import "time"

// Entry is the stored form of a cached value.
type Entry[T any] struct {
	Data     T             `json:"data"`
	StoredAt time.Time     `json:"stored_at"`
	TTL      time.Duration `json:"ttl"`
}

// Fresh reports whether the entry is still within its TTL at now.
func (e Entry[T]) Fresh(now time.Time) bool {
	return now.Sub(e.StoredAt) <= e.TTL
}

// Status is the outcome of a Lookup.
type Status int

const (
	Miss Status = iota
	Fresh
	Stale
)

func (s Status) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	default:
		return "miss"
	}
}

// Stats summarises the entries of one namespace.
type Stats struct {
	Entries   int
	Fresh     int
	Stale     int
	Malformed int
}

// Backend is raw key/value storage. Implementations must be safe for
// concurrent use.
type Backend interface {
	Load(key string) ([]byte, bool, error)
	Store(key string, value []byte) error
	Remove(key string) error
	Keys(prefix string) ([]string, error)
	Close() error
}
