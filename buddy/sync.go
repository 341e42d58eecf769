package buddy

import "sync"

// SyncArena serialises every operation on an Arena behind one mutex. A
// single lock is used because split and merge touch two levels at once.
type SyncArena struct {
	mu sync.Mutex
	a  *Arena
}

// NewSync creates a lock-protected arena for config.
func NewSync(config *Config) (*SyncArena, error) {
	a, err := New(config)
	if err != nil {
		return nil, err
	}
	return &SyncArena{a: a}, nil
}

// Alloc is Arena.Alloc under the lock.
func (s *SyncArena) Alloc(n int) (Ref, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Alloc(n)
}

// Free is Arena.Free under the lock.
func (s *SyncArena) Free(ref Ref) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Free(ref)
}

// Stats is Arena.Stats under the lock.
func (s *SyncArena) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Stats()
}

// Close is Arena.Close under the lock.
func (s *SyncArena) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Close()
}

// Do runs fn with exclusive access to the underlying arena, for inspection
// or verification between operations. fn must not retain the arena.
func (s *SyncArena) Do(fn func(a *Arena) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.a)
}

var (
	_ Allocator = (*Arena)(nil)
	_ Allocator = (*SyncArena)(nil)
)
