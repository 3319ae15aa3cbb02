package roomview

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/blinkroom/chat-service/internal/model"
)

func TestRenderMessage_ReplyPreview(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	pal := ThemeDark.Palette()

	target := newMessage("the original line\nwith a second line", now)
	reply := newMessage("an answer", now.Add(time.Second))
	reply.ReplyTo = &target.ID

	visible := model.MessageList{reply, target}

	out := RenderMessage(reply, visible, pal)
	assert.Contains(t, out, "> the original line")
	assert.NotContains(t, out, "second line")
	assert.Contains(t, out, "an answer")
}

func TestRenderMessage_MissingTargetSkipsPreview(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	unknown := uuid.New()
	reply := newMessage("orphaned", now)
	reply.ReplyTo = &unknown

	out := RenderMessage(reply, model.MessageList{reply}, ThemeDark.Palette())
	assert.NotContains(t, out, ">")
	assert.Contains(t, out, "orphaned")
}

func TestRenderList_OldestFirst(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	first := newMessage("first", now.Add(-20*time.Second))
	second := newMessage("second", now.Add(-10*time.Second))
	visible := model.MessageList{second, first}

	out := RenderList(visible, ThemeDark.Palette())
	assert.Less(t, strings.Index(out, "first"), strings.Index(out, "second"))
}
