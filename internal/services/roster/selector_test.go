package roster

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/pokerleague/internal/model"
	"github.com/mcoot/pokerleague/internal/services/reconcile"
)

func TestToggle(t *testing.T) {
	s := NewSelector("A")

	assert.True(t, s.Toggle("B"))
	assert.True(t, s.IsSelected("B"))

	assert.False(t, s.Toggle("A"))
	assert.False(t, s.IsSelected("A"))
	assert.Equal(t, 1, s.Len())
}

func TestSetReplacesSelection(t *testing.T) {
	s := NewSelector("A", "B")
	s.Set([]model.PlayerID{"C", "C", "D"})

	assert.Equal(t, []model.PlayerID{"C", "D"}, s.Selection().Sorted())
}

func TestMark(t *testing.T) {
	s := NewSelector()
	s.Mark("A", true)
	s.Mark("A", true)
	assert.Equal(t, 1, s.Len())

	s.Mark("A", false)
	s.Mark("B", false)
	assert.Equal(t, 0, s.Len())
}

func TestResetCopiesInput(t *testing.T) {
	confirmed := reconcile.NewSet("A", "B")
	s := NewSelector("Z")
	s.Reset(confirmed)

	confirmed.Add("C")
	assert.False(t, s.IsSelected("C"))
	assert.False(t, s.IsSelected("Z"))
	assert.True(t, s.IsSelected("A"))
}

func TestSelectionIsACopy(t *testing.T) {
	s := NewSelector("A")
	sel := s.Selection()
	sel.Add("B")

	assert.False(t, s.IsSelected("B"))
}

func TestConcurrentToggles(t *testing.T) {
	s := NewSelector()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Toggle("A")
		}()
	}
	wg.Wait()

	// An even number of flips leaves A unselected
	assert.False(t, s.IsSelected("A"))
}
