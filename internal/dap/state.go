package dap

import "sync"

// VersionState is a set-once cell holding the adapter version this process
// committed to. Once resolved it never changes, so a running editor never
// switches adapter builds mid-session.
type VersionState struct {
	mu       sync.Mutex
	version  string
	resolved bool
}

// Get returns the committed version.
func (s *VersionState) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version, s.resolved
}

// Commit records version unless one is already set. It reports whether the
// call changed the state.
func (s *VersionState) Commit(version string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitLocked(version)
}

// Resolve runs produce only while the state is unresolved and commits what
// it returns. Concurrent callers wait for the first one.
func (s *VersionState) Resolve(produce func() (string, bool)) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.resolved {
		if version, ok := produce(); ok {
			s.commitLocked(version)
		}
	}
	return s.version, s.resolved
}

func (s *VersionState) commitLocked(version string) bool {
	if s.resolved {
		return false
	}
	s.version = version
	s.resolved = true
	return true
}
