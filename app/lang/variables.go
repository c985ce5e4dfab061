package lang

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// VariableService stores variable values and one snapshot of them per
// interpreted line, so that interpretation can resume at any line with the
// state left by the line before it.
type VariableService struct {
	mu        sync.Mutex
	current   map[string]Data
	snapshots map[int]map[string]Data
}

// NewVariableService returns an empty store.
func NewVariableService() *VariableService {
	return &VariableService{
		current:   map[string]Data{},
		snapshots: map[int]map[string]Data{},
	}
}

// Get returns the value of name. Names are case-sensitive.
func (s *VariableService) Get(name string) (Data, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.current[name]
	return d, ok
}

// Set binds name to value.
func (s *VariableService) Set(name string, value Data) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current[name] = value
}

// Names returns the current variable names, sorted.
func (s *VariableService) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Sorted(maps.Keys(s.current))
}

// Reset drops the current values and every snapshot.
func (s *VariableService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = map[string]Data{}
	s.snapshots = map[int]map[string]Data{}
}

// SnapshotScope is returned by BeginRecordVariableSnapshot.
type SnapshotScope struct {
	s          *VariableService
	ctx        context.Context
	lineNumber int
	closed     bool
}

// BeginRecordVariableSnapshot restores the values recorded at the end of
// lineNumber-1, or clears them when there is no such snapshot. Closing the
// returned scope records the values under lineNumber unless ctx was
// cancelled in the meantime.
func (s *VariableService) BeginRecordVariableSnapshot(ctx context.Context, lineNumber int) *SnapshotScope {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.snapshots[lineNumber-1]; ok {
		s.current = maps.Clone(prev)
	} else {
		s.current = map[string]Data{}
	}
	return &SnapshotScope{s: s, ctx: ctx, lineNumber: lineNumber}
}

// Close commits the snapshot. It is safe to call more than once.
func (sc *SnapshotScope) Close() {
	if sc.closed {
		return
	}
	sc.closed = true
	if sc.ctx.Err() != nil {
		return
	}
	s := sc.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[sc.lineNumber] = maps.Clone(s.current)
}
