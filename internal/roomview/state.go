// Package roomview owns the viewer side of the room: the in-memory list of
// visible messages, the reconciliation policy that keeps it converged with
// the store, and the session loop driving timers and user commands.
package roomview

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/blinkroom/chat-service/internal/model"
)

// State is the single owned view state. Three sources report on the same
// expiry condition (realtime push, the local filter timer, the bounded
// fetch); every one of them funnels through reconcile, so the list converges
// to the live set no matter in which order their reports arrive. All update
// operations key on message id and take the clock explicitly.
//
// State is not safe for concurrent use; the session goroutine owns it.
type State struct {
	messages model.MessageList
	pending  map[uuid.UUID]struct{}
	lifetime time.Duration
}

func NewState(lifetime time.Duration) *State {
	if lifetime <= 0 {
		lifetime = model.Lifetime
	}
	return &State{
		pending:  make(map[uuid.UUID]struct{}),
		lifetime: lifetime,
	}
}

// Visible returns the rendered list, newest first.
func (s *State) Visible() model.MessageList {
	return append(model.MessageList(nil), s.messages...)
}

// Lookup finds a message by id.
func (s *State) Lookup(id uuid.UUID) (model.Message, bool) {
	return lo.Find(s.messages, func(m model.Message) bool { return m.ID == id })
}

// ReplyPreview resolves the reply target of a message. A missing target is
// tolerated: the message renders with no preview.
func (s *State) ReplyPreview(m model.Message) (model.Message, bool) {
	if m.ReplyTo == nil {
		return model.Message{}, false
	}
	return s.Lookup(*m.ReplyTo)
}

// MergeFetched reconciles a fetch result into the list. Rows already known
// are kept as-is; optimistic entries survive until their send settles.
func (s *State) MergeFetched(rows model.MessageList, now time.Time) {
	for _, row := range rows {
		if _, ok := s.Lookup(row.ID); !ok {
			s.messages = append(s.messages, row)
		}
	}
	s.reconcile(now)
}

// ApplyInsert folds a pushed insert into the list. The sender's own echo
// arrives with the server id its confirmation already placed, so keying on
// id deduplicates it for free.
func (s *State) ApplyInsert(msg model.Message, now time.Time) {
	if _, ok := s.Lookup(msg.ID); !ok {
		s.messages = append(s.messages, msg)
	}
	s.reconcile(now)
}

// ApplyDelete removes the purged ids and nulls any reply reference to them,
// mirroring the store's SET NULL cascade.
func (s *State) ApplyDelete(ids []uuid.UUID, now time.Time) {
	gone := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		gone[id] = struct{}{}
	}

	s.messages = lo.Filter(s.messages, func(m model.Message, _ int) bool {
		_, dead := gone[m.ID]
		return !dead
	})
	for i := range s.messages {
		if s.messages[i].ReplyTo != nil {
			if _, dead := gone[*s.messages[i].ReplyTo]; dead {
				s.messages[i].ReplyTo = nil
			}
		}
	}
	s.reconcile(now)
}

// AddOptimistic prepends a locally-confirmed-later entry under a temporary
// id and returns that id.
func (s *State) AddOptimistic(content string, replyTo *uuid.UUID, now time.Time) uuid.UUID {
	tempID := uuid.New()
	s.messages = append(s.messages, model.Message{
		ID:        tempID,
		Content:   content,
		CreatedAt: now,
		ReplyTo:   replyTo,
	})
	s.pending[tempID] = struct{}{}
	s.reconcile(now)
	return tempID
}

// ConfirmSend replaces the optimistic entry with the server-assigned row.
// If the realtime echo landed first, the row is already present and only the
// temporary entry goes away.
func (s *State) ConfirmSend(tempID uuid.UUID, confirmed model.Message, now time.Time) {
	s.dropPending(tempID)
	if _, ok := s.Lookup(confirmed.ID); !ok {
		s.messages = append(s.messages, confirmed)
	}
	s.reconcile(now)
}

// RollbackSend removes the optimistic entry after a failed send.
func (s *State) RollbackSend(tempID uuid.UUID, now time.Time) {
	s.dropPending(tempID)
	s.reconcile(now)
}

// DropExpired removes messages past the visibility window. It reports
// whether anything changed so callers can skip redundant redraws.
func (s *State) DropExpired(now time.Time) bool {
	before := len(s.messages)
	s.reconcile(now)
	return len(s.messages) != before
}

// reconcile is the single convergence point: drop everything expired and
// keep the list sorted newest first.
func (s *State) reconcile(now time.Time) {
	s.messages = lo.Filter(s.messages, func(m model.Message, _ int) bool {
		return !m.Expired(now, s.lifetime)
	})
	sort.SliceStable(s.messages, func(i, j int) bool {
		return s.messages[i].CreatedAt.After(s.messages[j].CreatedAt)
	})
}

func (s *State) dropPending(tempID uuid.UUID) {
	delete(s.pending, tempID)
	s.messages = lo.Filter(s.messages, func(m model.Message, _ int) bool {
		return m.ID != tempID
	})
}
