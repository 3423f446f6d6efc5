package rostersync

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mcoot/pokerleague/internal/model"
	"github.com/mcoot/pokerleague/internal/services/roster"
	"github.com/mcoot/pokerleague/internal/storage"
)

// State is the sync state of a single player
type State int

const (
	StateIdle State = iota
	StatePending
)

func (s State) String() string {
	if s == StatePending {
		return "pending"
	}
	return "idle"
}

// Outcome reports how a toggle settled
type Outcome struct {
	PlayerID model.PlayerID `json:"player_id"`
	// Selected is the selection state the toggle asked for
	Selected bool `json:"selected"`
	// Reverted is set when the write failed and the selection was rolled back
	Reverted bool `json:"reverted"`
	// Stale is set when a newer toggle of the same player superseded this one,
	// or the toggler was closed first; nothing was applied
	Stale bool  `json:"stale"`
	Err   error `json:"-"`
}

// Pending is a toggle whose write has not settled yet
type Pending struct {
	PlayerID model.PlayerID
	Selected bool
	seq      uint64
	done     chan struct{}
	outcome  Outcome
}

// Done is closed once the toggle has settled
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the toggle settles and returns its outcome
func (p *Pending) Wait() Outcome {
	<-p.done
	return p.outcome
}

// Toggler commits every toggle immediately. The selector is updated
// optimistically and rolled back if the write fails.
//
// Each player carries a sequence number. Only the completion of the most
// recent toggle of a player may confirm or roll back its selection, so a
// slow response to an earlier click can never undo a later one.
type Toggler struct {
	gateway  storage.Gateway
	eventID  model.EventID
	selector *roster.Selector
	logger   *slog.Logger
	onSettle func(Outcome)

	mu       sync.Mutex
	seq      map[model.PlayerID]uint64
	inFlight map[model.PlayerID]int
	closed   bool
	wg       sync.WaitGroup
}

// NewToggler creates a toggler for one event. onSettle may be nil.
func NewToggler(gateway storage.Gateway, eventID model.EventID, selector *roster.Selector, logger *slog.Logger, onSettle func(Outcome)) *Toggler {
	return &Toggler{
		gateway:  gateway,
		eventID:  eventID,
		selector: selector,
		logger:   logger.With(slog.String("component", "roster-toggler"), slog.String("event_id", string(eventID))),
		onSettle: onSettle,
		seq:      make(map[model.PlayerID]uint64),
		inFlight: make(map[model.PlayerID]int),
	}
}

// Toggle flips the player's selection and starts the matching write.
// Only validation and a closed toggler are reported as errors; write
// failures show up in the outcome.
func (t *Toggler) Toggle(ctx context.Context, playerID model.PlayerID) (*Pending, error) {
	if t.eventID == "" {
		return nil, model.ErrEventIDRequired
	}
	if playerID == "" {
		return nil, model.ErrPlayerIDRequired
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, ErrClosed
	}
	selected := t.selector.Toggle(playerID)
	t.seq[playerID]++
	p := &Pending{
		PlayerID: playerID,
		Selected: selected,
		seq:      t.seq[playerID],
		done:     make(chan struct{}),
	}
	t.inFlight[playerID]++
	t.wg.Add(1)
	t.mu.Unlock()

	go t.commit(ctx, p)
	return p, nil
}

func (t *Toggler) commit(ctx context.Context, p *Pending) {
	defer t.wg.Done()

	var err error
	if p.Selected {
		err = t.gateway.AddEntry(ctx, t.eventID, p.PlayerID)
	} else {
		err = t.gateway.RemoveEntry(ctx, t.eventID, p.PlayerID)
	}
	if Classify(err) == KindConflict {
		err = nil
	}

	outcome := Outcome{PlayerID: p.PlayerID, Selected: p.Selected, Err: err}

	t.mu.Lock()
	t.inFlight[p.PlayerID]--
	if t.inFlight[p.PlayerID] == 0 {
		delete(t.inFlight, p.PlayerID)
	}
	switch {
	case t.closed || t.seq[p.PlayerID] != p.seq:
		outcome.Stale = true
	case err != nil:
		t.selector.Mark(p.PlayerID, !p.Selected)
		outcome.Reverted = true
	}
	t.mu.Unlock()

	if outcome.Reverted {
		t.logger.Warn("roster toggle reverted",
			slog.String("player_id", string(p.PlayerID)),
			slog.Bool("selected", p.Selected),
			slog.String("kind", Classify(err).String()),
			slog.Any("error", err))
	} else if outcome.Stale {
		t.logger.Debug("roster toggle superseded", slog.String("player_id", string(p.PlayerID)))
	}

	p.outcome = outcome
	close(p.done)
	if t.onSettle != nil {
		t.onSettle(outcome)
	}
}

// State reports whether a write for the player is still in flight
func (t *Toggler) State(playerID model.PlayerID) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.inFlight[playerID] > 0 {
		return StatePending
	}
	return StateIdle
}

// Wait blocks until every started toggle has settled
func (t *Toggler) Wait() {
	t.wg.Wait()
}

// Close stops the toggler. Writes already in flight still run, but their
// results are no longer applied to the selector.
func (t *Toggler) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
}
