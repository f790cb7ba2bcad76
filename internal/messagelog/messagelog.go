// Package messagelog implements the global append-only chat log.
package messagelog

import (
	"errors"
	"strings"
	"time"

	"github.com/go-ports/pocketledger/internal/models"
)

// ErrEmptyMessage is returned when the message text is blank.
var ErrEmptyMessage = errors.New("message text is empty")

// New builds a message from sender. Text is trimmed; blank text is rejected.
func New(sender models.User, text string, now time.Time) (models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.ChatMessage{}, ErrEmptyMessage
	}
	return models.ChatMessage{
		ID:         models.NewID(),
		SenderID:   sender.ID,
		SenderName: sender.Username,
		Text:       text,
		Timestamp:  now.UnixMilli(),
	}, nil
}

// Append returns a new log with msg added at the end.
func Append(log []models.ChatMessage, msg models.ChatMessage) []models.ChatMessage {
	out := make([]models.ChatMessage, len(log), len(log)+1)
	copy(out, log)
	return append(out, msg)
}

// Recent returns up to n of the latest messages, oldest first.
// n <= 0 returns the whole log.
func Recent(log []models.ChatMessage, n int) []models.ChatMessage {
	if n <= 0 || n >= len(log) {
		return log
	}
	return log[len(log)-n:]
}
