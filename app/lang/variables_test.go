package lang

import (
	"context"
	"reflect"
	"testing"
)

func TestVariableSnapshots(t *testing.T) {
	s := NewVariableService()
	ctx := context.Background()

	scope := s.BeginRecordVariableSnapshot(ctx, 0)
	s.Set("a", dec(1))
	scope.Close()

	scope = s.BeginRecordVariableSnapshot(ctx, 1)
	if _, ok := s.Get("a"); !ok {
		t.Fatal("line 1 does not see a from line 0")
	}
	s.Set("b", dec(2))
	scope.Close()

	// re-running line 1 starts again from line 0's values
	scope = s.BeginRecordVariableSnapshot(ctx, 1)
	if _, ok := s.Get("b"); ok {
		t.Error("line 1 sees its own earlier value of b")
	}
	scope.Close()

	if got := s.Names(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("Names() = %q, want [a]", got)
	}
}

func TestCancelledSnapshotIsNotRecorded(t *testing.T) {
	s := NewVariableService()
	bg := context.Background()

	scope := s.BeginRecordVariableSnapshot(bg, 0)
	s.Set("a", dec(1))
	scope.Close()

	ctx, cancel := context.WithCancel(bg)
	scope = s.BeginRecordVariableSnapshot(ctx, 1)
	s.Set("b", dec(2))
	cancel()
	scope.Close()

	scope = s.BeginRecordVariableSnapshot(bg, 2)
	defer scope.Close()
	if _, ok := s.Get("b"); ok {
		t.Error("value set by a cancelled line leaked into the next line")
	}
	if _, ok := s.Get("a"); ok {
		t.Error("line 2 restored values although line 1 has no snapshot")
	}
}

func TestVariableNamesAreCaseSensitive(t *testing.T) {
	s := NewVariableService()
	s.Set("Total", dec(1))
	if _, ok := s.Get("total"); ok {
		t.Error("Get(total) found Total")
	}
	s.Reset()
	if len(s.Names()) != 0 {
		t.Errorf("Names() after Reset = %q", s.Names())
	}
}
