package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"

	"github.com/blinkroom/chat-service/internal/client/room"
	"github.com/blinkroom/chat-service/internal/roomview"
)

func main() {
	addr := flag.String("addr", defaultAddr(), "room service base URL")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	client := room.New(*addr)
	defer client.Close()

	store := roomview.NewThemeStore(themePath())

	renderer := &renderer{out: os.Stdout}
	session := roomview.NewSession(client, store, roomview.SessionConfig{
		Redraw: renderer.redraw,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := session.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("session stopped", "error", err)
		}
		stop()
	}()

	readInput(ctx, session, renderer, stop)
}

func defaultAddr() string {
	if addr := os.Getenv("ROOM_ADDR"); addr != "" {
		return addr
	}
	return "http://localhost:8080"
}

func themePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "roomctl", "theme")
}

// renderer repaints the room after every session snapshot and remembers the
// last one so the input side can resolve /reply indexes against what is
// actually on screen.
type renderer struct {
	mu   sync.Mutex
	out  *os.File
	last roomview.Snapshot
}

func (r *renderer) redraw(snap roomview.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = snap

	pal := snap.Theme.Palette()

	fmt.Fprint(r.out, "\033[2J\033[H")
	fmt.Fprintln(r.out, roomview.RenderList(snap.Messages, pal))

	switch {
	case snap.Sending:
		fmt.Fprintln(r.out, pal.Meta.Sprint("… sending"))
	case snap.Draft.Content != "":
		fmt.Fprintln(r.out, pal.Meta.Sprintf("draft restored: %s", snap.Draft.Content))
	case snap.Draft.ReplyTo != nil:
		fmt.Fprintln(r.out, pal.Meta.Sprint("replying, type your message"))
	}
	fmt.Fprint(r.out, "> ")
}

// replyTarget maps a 1-based on-screen index (1 = newest) to a message id.
func (r *renderer) replyTarget(n int) (*uuid.UUID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n < 1 || n > len(r.last.Messages) {
		return nil, false
	}
	id := r.last.Messages[n-1].ID
	return &id, true
}

func readInput(ctx context.Context, session *roomview.Session, renderer *renderer, stop func()) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue

		case line == "/quit":
			stop()
			return

		case line == "/theme":
			session.Submit(roomview.ThemeCommand{})

		case line == "/reply":
			session.Submit(roomview.ReplyCommand{Target: nil})

		case strings.HasPrefix(line, "/reply "):
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "/reply ")))
			if err != nil {
				fmt.Fprintln(os.Stderr, "usage: /reply N (1 = newest message)")
				continue
			}
			target, ok := renderer.replyTarget(n)
			if !ok {
				fmt.Fprintln(os.Stderr, "no such message on screen")
				continue
			}
			session.Submit(roomview.ReplyCommand{Target: target})

		case strings.HasPrefix(line, "/"):
			fmt.Fprintln(os.Stderr, "commands: /reply N, /theme, /quit")

		default:
			session.Submit(roomview.SendCommand{Content: line})
		}
	}
}
