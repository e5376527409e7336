// Package notify reports run outcomes to the operator
package notify

import (
	"fmt"
	"log"

	"github.com/evanmh/activitybot/internal/domain"
)

// NotificationType represents the type of notification
type NotificationType int

const (
	NotifyInfo NotificationType = iota
	NotifySuccess
	NotifyWarning
	NotifyError
)

// Notification represents a notification to be sent
type Notification struct {
	Title   string
	Message string
	Type    NotificationType
	RunID   string
	PRURL   string
}

// Notifier is the interface for sending notifications
type Notifier interface {
	Send(n Notification) error
}

// FromOutcome builds the per-run notification
func FromOutcome(out domain.RunOutcome) Notification {
	if out.Failed() {
		return Notification{
			Title:   fmt.Sprintf("Bot run failed at %s", out.Stage),
			Message: out.Summary(),
			Type:    NotifyError,
			RunID:   out.ID,
		}
	}
	return Notification{
		Title:   fmt.Sprintf("Bot run merged PR #%d", out.PRNumber),
		Message: out.Summary(),
		Type:    NotifySuccess,
		RunID:   out.ID,
		PRURL:   out.PRURL,
	}
}

// MultiNotifier sends to multiple notifiers
type MultiNotifier struct {
	notifiers []Notifier
}

// NewMultiNotifier creates a notifier that sends to all provided notifiers
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	return &MultiNotifier{notifiers: notifiers}
}

// Send sends the notification to all notifiers
func (m *MultiNotifier) Send(n Notification) error {
	var lastErr error
	for _, notifier := range m.notifiers {
		if err := notifier.Send(n); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// LogNotifier writes notifications to the process log
type LogNotifier struct{}

// Send logs the notification
func (LogNotifier) Send(n Notification) error {
	log.Printf("notify: %s: %s", n.Title, n.Message)
	return nil
}

// NoopNotifier does nothing (for testing or disabled notifications)
type NoopNotifier struct{}

func (NoopNotifier) Send(n Notification) error { return nil }
