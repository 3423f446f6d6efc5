package reconcile

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/pokerleague/internal/model"
)

func TestDiffScenario(t *testing.T) {
	toAdd, toRemove := Diff(NewSet("B", "C"), NewSet("A", "B"))

	assert.Equal(t, []model.PlayerID{"C"}, toAdd.Sorted())
	assert.Equal(t, []model.PlayerID{"A"}, toRemove.Sorted())
}

func TestDiffEdgeCases(t *testing.T) {
	tests := []struct {
		name       string
		desired    Set
		current    Set
		wantAdd    []model.PlayerID
		wantRemove []model.PlayerID
	}{
		{"same set", NewSet("A", "B"), NewSet("B", "A"), []model.PlayerID{}, []model.PlayerID{}},
		{"both empty", NewSet(), NewSet(), []model.PlayerID{}, []model.PlayerID{}},
		{"empty desired removes everyone", NewSet(), NewSet("A", "B"), []model.PlayerID{}, []model.PlayerID{"A", "B"}},
		{"empty current adds everyone", NewSet("A", "B"), NewSet(), []model.PlayerID{"A", "B"}, []model.PlayerID{}},
		{"nil inputs", nil, nil, []model.PlayerID{}, []model.PlayerID{}},
		{"disjoint", NewSet("A"), NewSet("B"), []model.PlayerID{"A"}, []model.PlayerID{"B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toAdd, toRemove := Diff(tt.desired, tt.current)
			assert.Equal(t, tt.wantAdd, toAdd.Sorted())
			assert.Equal(t, tt.wantRemove, toRemove.Sorted())
		})
	}
}

func TestDiffDoesNotModifyInputs(t *testing.T) {
	desired := NewSet("A", "B")
	current := NewSet("B", "C")

	Diff(desired, current)

	assert.True(t, desired.Equal(NewSet("A", "B")))
	assert.True(t, current.Equal(NewSet("B", "C")))
}

func TestResultEmpty(t *testing.T) {
	assert.True(t, Compute(NewSet("A"), NewSet("A")).Empty())
	assert.False(t, Compute(NewSet("A"), NewSet()).Empty())
	assert.False(t, Compute(NewSet(), NewSet("A")).Empty())
}

func randomSet(r *rand.Rand) Set {
	s := NewSet()
	for i := 0; i < r.IntN(12); i++ {
		s.Add(model.PlayerID(fmt.Sprintf("p%d", r.IntN(16))))
	}
	return s
}

// Properties checked over random pairs drawn from a small universe so that
// overlaps are common
func TestDiffProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 500; i++ {
		desired, current := randomSet(r), randomSet(r)
		toAdd, toRemove := Diff(desired, current)

		for id := range toAdd {
			require.False(t, current.Has(id), "toAdd intersects current")
			require.True(t, desired.Has(id))
		}
		for id := range toRemove {
			require.True(t, current.Has(id), "toRemove not a subset of current")
			require.False(t, desired.Has(id), "toRemove intersects desired")
		}

		applied := Apply(current, toAdd, toRemove)
		require.True(t, applied.Equal(desired), "apply does not converge")

		again := Compute(desired, applied)
		require.True(t, again.Empty(), "diff is not idempotent")

		require.True(t, Compute(desired, desired).Empty())
	}
}

func TestSetOperations(t *testing.T) {
	s := NewSet("A", "A", "B")
	assert.Equal(t, 2, s.Len())

	c := s.Clone()
	c.Add("C")
	c.Remove("A")
	assert.False(t, s.Has("C"))
	assert.True(t, s.Has("A"))
	assert.Equal(t, []model.PlayerID{"B", "C"}, c.Sorted())

	var nilSet Set
	assert.Equal(t, 0, nilSet.Clone().Len())
	assert.True(t, nilSet.Equal(NewSet()))
	assert.False(t, NewSet("A").Equal(NewSet("B")))
}
