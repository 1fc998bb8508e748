package ports

// Notifier delivers desktop notifications.
// This is a driven port (implemented by adapters).
type Notifier interface {
	Notify(title, message string) error
	IsEnabled() bool
}
