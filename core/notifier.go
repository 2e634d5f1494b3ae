package core

// Notification kinds surfaced to the dashboard badge.
const (
	NotifySuccess = "success"
	NotifyError   = "error"
	NotifyInfo    = "info"
)

// Notifier is the domain-event side-channel. Feature services append
// human-readable records through it; emission is decoupled from any
// navigation or view invalidation.
type Notifier interface {
	Notify(kind, message string)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(string, string) {}
