package ui

import (
	"fmt"

	"github.com/gen2brain/beeep"
	"uranus/pkg/config"
)

// AppName is the title used for desktop notifications
const AppName = "uranus"

// NotificationSender delivers a desktop notification
type NotificationSender interface {
	Send(title, message string) error
}

// beeepSender uses the platform notification service through beeep
type beeepSender struct {
	alert bool
}

func (b beeepSender) Send(title, message string) error {
	if b.alert {
		return beeep.Alert(title, message, "")
	}
	return beeep.Notify(title, message, "")
}

// Notifier reports the end of a run on the terminal and, when enabled, on the desktop
type Notifier struct {
	cfg       config.NotificationConfig
	sender    NotificationSender
	errSender NotificationSender
}

// NewNotifier creates a Notifier following the notification settings
func NewNotifier(cfg config.NotificationConfig) *Notifier {
	return &Notifier{
		cfg:       cfg,
		sender:    beeepSender{},
		errSender: beeepSender{alert: true},
	}
}

// NewNotifierWithSender creates a Notifier that delivers through sender
func NewNotifierWithSender(cfg config.NotificationConfig, sender NotificationSender) *Notifier {
	return &Notifier{cfg: cfg, sender: sender, errSender: sender}
}

// SendSuccess reports a completed run
func (n *Notifier) SendSuccess(title, message string) error {
	emit(false, "\n%s: %s\n", Green(title), Green(message))
	if !n.cfg.Enabled || !n.cfg.OnComplete {
		return nil
	}
	if err := n.sender.Send(fmt.Sprintf("%s: %s", AppName, title), message); err != nil {
		return fmt.Errorf("unable to show notification: %w", err)
	}
	return nil
}

// SendError reports an aborted run
func (n *Notifier) SendError(title, message string) error {
	emit(true, "\n%s: %s\n", Red(title), Red(message))
	if !n.cfg.Enabled || !n.cfg.OnError {
		return nil
	}
	if err := n.errSender.Send(fmt.Sprintf("%s: %s", AppName, title), message); err != nil {
		return fmt.Errorf("unable to show notification: %w", err)
	}
	return nil
}
