package counters

import "context"

// Counter names.
const (
	NameNotification = "notification"
	NameChat         = "chat"
	NameNoti         = "noti"
)

// Store groups the independent unread counters of one app session.
type Store struct {
	Notification *Counter
	Chat         *Counter
	Noti         *Counter
}

// Snapshot is a point-in-time copy of every counter in a Store.
type Snapshot struct {
	Notification int `json:"notification"`
	Chat         int `json:"chat"`
	Noti         int `json:"noti"`
}

// NewStore returns a store with every counter at zero.
func NewStore() *Store {
	return &Store{
		Notification: NewCounter(NameNotification),
		Chat:         NewCounter(NameChat),
		Noti:         NewCounter(NameNoti),
	}
}

// Counter looks a counter up by name.
func (s *Store) Counter(name string) (*Counter, bool) {
	switch name {
	case NameNotification:
		return s.Notification, true
	case NameChat:
		return s.Chat, true
	case NameNoti:
		return s.Noti, true
	}
	return nil, false
}

// Snapshot reads every counter.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Notification: s.Notification.Value(),
		Chat:         s.Chat.Value(),
		Noti:         s.Noti.Value(),
	}
}

// Reset clears every counter, as on relaunch.
func (s *Store) Reset() {
	s.Notification.Clear()
	s.Chat.Clear()
	s.Noti.Clear()
}

type storeKey struct{}

// WithStore returns a context carrying s.
func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, storeKey{}, s)
}

// FromContext returns the store carried by ctx, if any.
func FromContext(ctx context.Context) (*Store, bool) {
	s, ok := ctx.Value(storeKey{}).(*Store)
	return s, ok
}
