// Package notify raises a desktop notification when a pending item expires while the app runs.
package notify

import (
	"time"

	"github.com/gen2brain/beeep"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/idilsaglam/duelist/internal/logger"
	"github.com/idilsaglam/duelist/internal/todo"
)

// StaleAfter bounds how late a notification may fire. Items that expired longer ago
// (typically before the app started) are marked silently.
const StaleAfter = 5 * time.Minute

const appTitle = "duelist"

// Sender delivers one notification.
type Sender func(title, message, icon string) error

type Notifier struct {
	send     Sender
	enabled  bool
	notified map[uuid.UUID]bool
}

// New returns a Notifier sending through beeep.
func New(enabled bool) *Notifier {
	return NewWithSender(enabled, func(title, message, icon string) error {
		return beeep.Notify(title, message, icon)
	})
}

func NewWithSender(enabled bool, send Sender) *Notifier {
	return &Notifier{
		send:     send,
		enabled:  enabled,
		notified: make(map[uuid.UUID]bool),
	}
}

// Expired returns overdue rows that have not been reported yet, and records them.
// Rows expired for longer than StaleAfter are recorded without being returned.
func (n *Notifier) Expired(v todo.View) []todo.Row {
	if !n.enabled {
		return nil
	}
	var fresh []todo.Row
	for _, r := range v.Rows {
		if !r.Overdue || n.notified[r.ID] {
			continue
		}
		n.notified[r.ID] = true
		if late := v.Now.Sub(r.DueAt); late > StaleAfter {
			logger.Debug("skipping stale expiry", zap.String("text", r.Text), zap.Duration("late", late))
			continue
		}
		fresh = append(fresh, r)
	}
	return fresh
}

// Send delivers the notification for r.
func (n *Notifier) Send(r todo.Row) error {
	err := n.send(appTitle, "Expired: "+r.Text, "")
	if err != nil {
		logger.Warn("notification failed", zap.String("text", r.Text), zap.Error(err))
		return err
	}
	logger.Info("notified expiry", zap.String("text", r.Text))
	return nil
}
