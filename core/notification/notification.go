package notification

import (
	"github.com/mkuu/darasa/core"
	"github.com/mkuu/darasa/core/store"
)

// Collection is the store collection backing notifications.
const Collection = "notifications"

// Notification is a transient dashboard message. Timestamp is unix
// milliseconds so entries sort and render without timezone handling.
type Notification struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	Timestamp int64  `json:"timestamp"`
}

func (n Notification) RecordID() string { return n.ID }

// Service records and reads notifications. It satisfies core.Notifier so
// feature services can raise messages without importing this package.
type Service struct {
	st     *store.Store
	logger core.Logger
}

func NewService(st *store.Store, logger core.Logger) *Service {
	return &Service{st: st, logger: logger}
}

var _ core.Notifier = (*Service)(nil)

// Notify appends an unread notification. Persistence failures are logged,
// not returned: a lost toast never blocks the operation that raised it.
func (svc *Service) Notify(kind, message string) {
	n := Notification{
		ID:        core.NewID(),
		Type:      kind,
		Message:   message,
		Timestamp: core.NowFunc().UnixMilli(),
	}
	if err := store.Add(svc.st, Collection, n); err != nil {
		svc.logger.Error("notification dropped", "type", kind, "error", err)
	}
}

func (svc *Service) Success(message string) { svc.Notify(core.NotifySuccess, message) }
func (svc *Service) Info(message string)    { svc.Notify(core.NotifyInfo, message) }
func (svc *Service) Error(message string)   { svc.Notify(core.NotifyError, message) }

func (svc *Service) All() []Notification {
	return store.All[Notification](svc.st, Collection)
}

func (svc *Service) Unread() []Notification {
	return store.Filter(svc.st, Collection, func(n Notification) bool { return !n.Read })
}

func (svc *Service) UnreadCount() int {
	return len(svc.Unread())
}

// MarkAllRead flips every unread notification; already-read entries are left
// untouched so their timestamps survive.
func (svc *Service) MarkAllRead() error {
	for _, n := range svc.Unread() {
		err := store.Update(svc.st, Collection, n.ID, func(n Notification) Notification {
			n.Read = true
			return n
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// MarkRead flips a single notification; a missing id is a no-op.
func (svc *Service) MarkRead(id string) error {
	return store.Update(svc.st, Collection, id, func(n Notification) Notification {
		n.Read = true
		return n
	})
}

// Clear drops all notifications.
func (svc *Service) Clear() error {
	return store.Replace(svc.st, Collection, []Notification{})
}
