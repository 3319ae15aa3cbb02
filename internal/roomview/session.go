package roomview

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/blinkroom/chat-service/internal/model"
)

// RoomAPI is the slice of the room client the session depends on.
type RoomAPI interface {
	FetchRecent(ctx context.Context, limit int) (model.MessageList, error)
	Send(ctx context.Context, content string, replyTo *uuid.UUID) (*model.Message, error)
	TriggerPurge(ctx context.Context) (int, error)
	Subscribe(ctx context.Context, events chan<- model.RoomEvent) error
}

// Command is an input from the terminal side of the viewer.
type Command interface{ isCommand() }

// SendCommand submits the current draft.
type SendCommand struct {
	Content string
}

// ReplyCommand sets or clears the reply target for the next send.
type ReplyCommand struct {
	Target *uuid.UUID
}

// ThemeCommand cycles to the next theme.
type ThemeCommand struct{}

func (SendCommand) isCommand()  {}
func (ReplyCommand) isCommand() {}
func (ThemeCommand) isCommand() {}

// Snapshot is what the session hands to the renderer after every change.
type Snapshot struct {
	Messages model.MessageList
	Theme    Theme
	Draft    Draft
	Sending  bool
}

// Draft is the unsent input line, kept by the session so a failed send can
// put it back.
type Draft struct {
	Content string
	ReplyTo *uuid.UUID
}

// SessionConfig carries the knobs of the viewer loop. Zero values get the
// room defaults.
type SessionConfig struct {
	FilterEvery time.Duration
	PurgeEvery  time.Duration
	Lifetime    time.Duration
	FetchLimit  int
	Now         func() time.Time
	Redraw      func(Snapshot)
}

const (
	defaultFilterEvery = 10 * time.Second
	defaultPurgeEvery  = 30 * time.Second
	defaultFetchLimit  = 100
)

func (c *SessionConfig) fillDefaults() {
	if c.FilterEvery <= 0 {
		c.FilterEvery = defaultFilterEvery
	}
	if c.PurgeEvery <= 0 {
		c.PurgeEvery = defaultPurgeEvery
	}
	if c.Lifetime <= 0 {
		c.Lifetime = model.Lifetime
	}
	if c.FetchLimit <= 0 {
		c.FetchLimit = defaultFetchLimit
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Redraw == nil {
		c.Redraw = func(Snapshot) {}
	}
}

type sendResult struct {
	tempID    uuid.UUID
	confirmed *model.Message
	draft     Draft
	err       error
}

// Session owns the viewer state and serializes every change to it. The Run
// goroutine is the only one touching the State, so the State itself needs no
// locking.
type Session struct {
	api    RoomAPI
	state  *State
	store  *ThemeStore
	theme  Theme
	cfg    SessionConfig
	logger *slog.Logger

	commands chan Command
	draft    Draft
	sending  bool
}

func NewSession(api RoomAPI, store *ThemeStore, cfg SessionConfig, logger *slog.Logger) *Session {
	cfg.fillDefaults()

	return &Session{
		api:      api,
		state:    NewState(cfg.Lifetime),
		store:    store,
		theme:    store.Load(),
		cfg:      cfg,
		logger:   logger,
		commands: make(chan Command, 8),
	}
}

// Submit queues a command from the input side.
func (s *Session) Submit(cmd Command) {
	s.commands <- cmd
}

// Run drives the session until the context is cancelled. Every external
// event funnels through the State, which reconciles after each one.
func (s *Session) Run(ctx context.Context) error {
	events := make(chan model.RoomEvent, 16)
	go func() {
		if err := s.api.Subscribe(ctx, events); err != nil {
			s.logger.Error("subscription lost", "error", err)
		}
	}()

	// A failed initial fetch is not fatal, the stream and the next purge
	// cycle still converge the view.
	if rows, err := s.api.FetchRecent(ctx, s.cfg.FetchLimit); err != nil {
		s.logger.Warn("initial fetch failed", "error", err)
	} else {
		s.state.MergeFetched(rows, s.cfg.Now())
	}
	s.redraw()

	filterTick := time.NewTicker(s.cfg.FilterEvery)
	defer filterTick.Stop()
	purgeTick := time.NewTicker(s.cfg.PurgeEvery)
	defer purgeTick.Stop()

	sendResults := make(chan sendResult, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev := <-events:
			s.applyEvent(ev)
			s.redraw()

		case <-filterTick.C:
			if s.state.DropExpired(s.cfg.Now()) {
				s.redraw()
			}

		case <-purgeTick.C:
			go s.triggerPurge(ctx)

		case res := <-sendResults:
			s.finishSend(res)
			s.redraw()

		case cmd := <-s.commands:
			if s.handleCommand(ctx, cmd, sendResults) {
				s.redraw()
			}
		}
	}
}

func (s *Session) applyEvent(ev model.RoomEvent) {
	now := s.cfg.Now()
	switch ev.Type {
	case model.EventInsert:
		if ev.Message != nil {
			s.state.ApplyInsert(*ev.Message, now)
		}
	case model.EventDelete:
		s.state.ApplyDelete(ev.IDs, now)
	default:
		s.logger.Warn("unknown room event", "type", ev.Type)
	}
}

func (s *Session) handleCommand(ctx context.Context, cmd Command, results chan<- sendResult) bool {
	switch c := cmd.(type) {
	case SendCommand:
		return s.startSend(ctx, c.Content, results)

	case ReplyCommand:
		s.draft.ReplyTo = c.Target
		return true

	case ThemeCommand:
		s.theme = s.theme.Next()
		if err := s.store.Save(s.theme); err != nil {
			s.logger.Warn("theme not persisted", "error", err)
		}
		return true
	}

	return false
}

func (s *Session) startSend(ctx context.Context, content string, results chan<- sendResult) bool {
	if s.sending || content == "" {
		return false
	}

	draft := Draft{Content: content, ReplyTo: s.draft.ReplyTo}
	tempID := s.state.AddOptimistic(draft.Content, draft.ReplyTo, s.cfg.Now())
	s.draft = Draft{}
	s.sending = true

	go func() {
		msg, err := s.api.Send(ctx, draft.Content, draft.ReplyTo)
		results <- sendResult{tempID: tempID, confirmed: msg, draft: draft, err: err}
	}()

	return true
}

func (s *Session) finishSend(res sendResult) {
	s.sending = false
	now := s.cfg.Now()

	if res.err != nil {
		s.state.RollbackSend(res.tempID, now)
		s.draft = res.draft
		s.logger.Error("send failed", "error", res.err)
		return
	}

	s.state.ConfirmSend(res.tempID, *res.confirmed, now)
}

func (s *Session) triggerPurge(ctx context.Context) {
	purged, err := s.api.TriggerPurge(ctx)
	if err != nil {
		s.logger.Warn("purge trigger failed", "error", err)
		return
	}
	if purged > 0 {
		s.logger.Debug("purge removed rows", "count", purged)
	}
}

func (s *Session) redraw() {
	s.cfg.Redraw(Snapshot{
		Messages: s.state.Visible(),
		Theme:    s.theme,
		Draft:    s.draft,
		Sending:  s.sending,
	})
}
