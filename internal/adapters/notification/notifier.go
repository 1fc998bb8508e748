// Package notification provides desktop notification utilities.
package notification

import (
	"github.com/gen2brain/beeep"

	"github.com/shajanthanx/life-v2-sub002/internal/config"
	"github.com/shajanthanx/life-v2-sub002/internal/ports"
)

// Notifier handles desktop notifications.
type Notifier struct {
	cfg  *config.NotificationConfig
	send func(title, message string) error
}

// New creates a new notifier with the given configuration.
func New(cfg *config.NotificationConfig) *Notifier {
	return &Notifier{cfg: cfg, send: desktop(cfg)}
}

func desktop(cfg *config.NotificationConfig) func(title, message string) error {
	return func(title, message string) error {
		if cfg != nil && cfg.Sound {
			return beeep.Alert(title, message, "")
		}
		return beeep.Notify(title, message, "")
	}
}

// Notify displays a desktop notification if enabled.
func (n *Notifier) Notify(title, message string) error {
	if !n.IsEnabled() {
		return nil
	}
	return n.send(title, message)
}

// IsEnabled returns true if notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	return n.cfg != nil && n.cfg.Enabled
}

var _ ports.Notifier = (*Notifier)(nil)
