package rostersync

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mcoot/pokerleague/internal/model"
	"github.com/mcoot/pokerleague/internal/services/reconcile"
	"github.com/mcoot/pokerleague/internal/storage"
)

// SyncRequest asks for an event's roster to match the given players
type SyncRequest struct {
	EventID          model.EventID    `json:"event_id"`
	DesiredPlayerIDs []model.PlayerID `json:"desired_player_ids"`
}

// Validate checks the request before any gateway call is made
func (r SyncRequest) Validate() error {
	if r.EventID == "" {
		return model.ErrEventIDRequired
	}
	for _, id := range r.DesiredPlayerIDs {
		if id == "" {
			return model.ErrPlayerIDRequired
		}
	}
	return nil
}

// Report describes what a submission changed
type Report struct {
	EventID model.EventID    `json:"event_id"`
	Added   []model.PlayerID `json:"added"`
	Removed []model.PlayerID `json:"removed"`
	// Calls is the number of mutating gateway calls issued
	Calls  int  `json:"calls"`
	Atomic bool `json:"atomic"`
}

// NoOp reports whether the submission needed no changes
func (r Report) NoOp() bool {
	return len(r.Added) == 0 && len(r.Removed) == 0
}

// Submitter applies a whole desired selection at once, as one diff against
// the server-confirmed selection.
//
// The confirmed selection is loaded from the gateway and then tracked
// locally: each half of a diff that succeeds is folded in straight away, so a
// retry after a partial failure only reissues the half that failed.
type Submitter struct {
	gateway storage.Gateway
	eventID model.EventID
	logger  *slog.Logger

	mu         sync.Mutex
	submitting bool
	loaded     bool
	confirmed  reconcile.Set
	entryIDs   map[model.PlayerID]model.EntryID
}

// NewSubmitter creates a submitter for one event
func NewSubmitter(gateway storage.Gateway, eventID model.EventID, logger *slog.Logger) *Submitter {
	return &Submitter{
		gateway:   gateway,
		eventID:   eventID,
		logger:    logger.With(slog.String("component", "roster-submitter"), slog.String("event_id", string(eventID))),
		confirmed: reconcile.NewSet(),
		entryIDs:  make(map[model.PlayerID]model.EntryID),
	}
}

// Load re-derives the confirmed selection from the event's entries
func (s *Submitter) Load(ctx context.Context) (reconcile.Set, error) {
	if s.eventID == "" {
		return nil, model.ErrEventIDRequired
	}
	entries, err := s.gateway.ListEntries(ctx, s.eventID)
	if err != nil {
		return nil, NewActionError("load entries", err)
	}

	confirmed := reconcile.NewSet()
	entryIDs := make(map[model.PlayerID]model.EntryID, len(entries))
	for _, e := range entries {
		confirmed.Add(e.PlayerID)
		entryIDs[e.PlayerID] = e.ID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmed = confirmed
	s.entryIDs = entryIDs
	s.loaded = true
	return confirmed.Clone(), nil
}

// Confirmed returns a copy of the server-confirmed selection as last known
func (s *Submitter) Confirmed() reconcile.Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.confirmed.Clone()
}

// Submit converges the event's roster on req.DesiredPlayerIDs. When nothing
// differs no gateway call is made. Otherwise one bulk add and one bulk remove
// are issued, skipping an empty side, or a single ApplyDiff when the gateway
// is atomic.
func (s *Submitter) Submit(ctx context.Context, req SyncRequest) (Report, error) {
	return s.submit(ctx, req, false)
}

// SubmitFresh is Submit with the confirmed selection reloaded once the
// submission is claimed. Callers that share the event with other writers use
// it so every diff starts from the stored roster.
func (s *Submitter) SubmitFresh(ctx context.Context, req SyncRequest) (Report, error) {
	return s.submit(ctx, req, true)
}

func (s *Submitter) submit(ctx context.Context, req SyncRequest, reload bool) (Report, error) {
	report := Report{EventID: req.EventID}
	if err := req.Validate(); err != nil {
		return report, NewActionError("update roster", err)
	}
	if req.EventID != s.eventID {
		return report, NewActionError("update roster", ErrEventMismatch)
	}

	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return report, ErrSubmitInProgress
	}
	s.submitting = true
	loaded := s.loaded
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
	}()

	if reload || !loaded {
		if _, err := s.Load(ctx); err != nil {
			return report, err
		}
	}

	desired := reconcile.NewSet(req.DesiredPlayerIDs...)
	toAdd, toRemove, removeIDs, resolved := s.plan(desired)
	if !resolved {
		// Players added by an earlier submission have no known entry ID yet
		if _, err := s.Load(ctx); err != nil {
			return report, err
		}
		toAdd, toRemove, removeIDs, _ = s.plan(desired)
	}

	if toAdd.Len() == 0 && toRemove.Len() == 0 {
		s.logger.Debug("roster unchanged")
		return report, nil
	}

	if atomic, ok := s.gateway.(storage.AtomicGateway); ok {
		report.Atomic = true
		report.Calls++
		if err := atomic.ApplyDiff(ctx, s.eventID, toAdd.Sorted(), removeIDs); err != nil {
			return report, s.failed("update roster", err)
		}
		s.foldAdded(toAdd)
		s.foldRemoved(toRemove)
		report.Added = toAdd.Sorted()
		report.Removed = toRemove.Sorted()
		s.logSubmitted(report)
		return report, nil
	}

	if toAdd.Len() > 0 {
		report.Calls++
		if err := s.gateway.BulkAdd(ctx, s.eventID, toAdd.Sorted()); err != nil && Classify(err) != KindConflict {
			return report, s.failed("add entries", err)
		}
		s.foldAdded(toAdd)
		report.Added = toAdd.Sorted()
	}

	if toRemove.Len() > 0 {
		report.Calls++
		if err := s.gateway.BulkRemove(ctx, removeIDs); err != nil {
			return report, s.failed("remove entries", err)
		}
		s.foldRemoved(toRemove)
		report.Removed = toRemove.Sorted()
	}

	s.logSubmitted(report)
	return report, nil
}

// plan diffs desired against the confirmed selection and resolves removals
// to entry IDs from the same snapshot. resolved is false when some removal
// has no known entry ID.
func (s *Submitter) plan(desired reconcile.Set) (toAdd, toRemove reconcile.Set, removeIDs []model.EntryID, resolved bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	toAdd, toRemove = reconcile.Diff(desired, s.confirmed)
	resolved = true
	removeIDs = make([]model.EntryID, 0, toRemove.Len())
	for _, playerID := range toRemove.Sorted() {
		entryID, ok := s.entryIDs[playerID]
		if !ok {
			resolved = false
			continue
		}
		removeIDs = append(removeIDs, entryID)
	}
	return toAdd, toRemove, removeIDs, resolved
}

func (s *Submitter) foldAdded(added reconcile.Set) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmed = reconcile.Apply(s.confirmed, added, nil)
}

func (s *Submitter) foldRemoved(removed reconcile.Set) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmed = reconcile.Apply(s.confirmed, nil, removed)
	for id := range removed {
		delete(s.entryIDs, id)
	}
}

func (s *Submitter) failed(action string, err error) error {
	actionErr := NewActionError(action, err)
	s.logger.Warn("roster submission failed",
		slog.String("action", action),
		slog.String("kind", actionErr.Kind.String()),
		slog.Any("error", err))
	return actionErr
}

func (s *Submitter) logSubmitted(report Report) {
	s.logger.Info("roster submitted",
		slog.Int("added", len(report.Added)),
		slog.Int("removed", len(report.Removed)),
		slog.Int("calls", report.Calls),
		slog.Bool("atomic", report.Atomic))
}
