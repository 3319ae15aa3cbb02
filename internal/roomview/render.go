package roomview

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/blinkroom/chat-service/internal/model"
)

// RenderMessage formats one message for the terminal. When the message
// replies to something still in the visible list, a one-line preview of the
// target sits directly above the content; a missing target just drops the
// preview.
func RenderMessage(m model.Message, visible model.MessageList, pal Palette) string {
	var b strings.Builder

	if target, ok := replyTarget(m, visible); ok {
		b.WriteString(pal.Preview.Sprintf("  > %s", firstLine(target.Content)))
		b.WriteString("\n")
	}

	b.WriteString(pal.Meta.Sprint(m.CreatedAt.Local().Format("15:04:05")))
	b.WriteString(" ")
	b.WriteString(pal.Content.Sprint(m.Content))

	return b.String()
}

// RenderList renders the visible list oldest first, the way a chat terminal
// scrolls.
func RenderList(visible model.MessageList, pal Palette) string {
	lines := make([]string, 0, len(visible))
	for i := len(visible) - 1; i >= 0; i-- {
		lines = append(lines, RenderMessage(visible[i], visible, pal))
	}

	return strings.Join(lines, "\n")
}

func replyTarget(m model.Message, visible model.MessageList) (model.Message, bool) {
	if m.ReplyTo == nil {
		return model.Message{}, false
	}
	return lo.Find(visible, func(c model.Message) bool { return c.ID == *m.ReplyTo })
}

func firstLine(content string) string {
	if i := strings.IndexByte(content, '\n'); i >= 0 {
		content = content[:i]
	}
	runes := []rune(content)
	if len(runes) > 80 {
		return fmt.Sprintf("%s…", string(runes[:80]))
	}
	return content
}
