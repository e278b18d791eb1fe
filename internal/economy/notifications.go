package economy

import (
	"time"

	"github.com/google/uuid"

	"github.com/talgya/probably-a-wizard/internal/catalog"
)

// NotificationKind classifies a consume-once notification.
type NotificationKind string

const (
	NotifyResourceUnlocked NotificationKind = "resource_unlocked"
	NotifyOfflineProgress  NotificationKind = "offline_progress"
)

// OfflineSummary reports what was produced while the game was closed.
type OfflineSummary struct {
	ElapsedSeconds float64                      `json:"elapsedSeconds"`
	Gains          map[catalog.Resource]float64 `json:"gains"`
}

// Notification is surfaced once to the presentation layer and then dropped.
// Notifications live for the current session only.
type Notification struct {
	ID        string            `json:"id"`
	Kind      NotificationKind  `json:"kind"`
	Label     string            `json:"label,omitempty"`
	Resource  *catalog.Resource `json:"resource,omitempty"`
	Offline   *OfflineSummary   `json:"offline,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

func (s *State) notify(n Notification) Notification {
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now()
	s.notices = append(s.notices, n)
	return n
}

// NotifyOffline queues an offline progress summary.
func (s *State) NotifyOffline(summary OfflineSummary) Notification {
	return s.notify(Notification{Kind: NotifyOfflineProgress, Offline: &summary})
}

// PendingNotifications returns queued notifications without consuming them.
func (s *State) PendingNotifications() []Notification {
	out := make([]Notification, len(s.notices))
	copy(out, s.notices)
	return out
}

// TakeNotifications returns and clears every queued notification.
func (s *State) TakeNotifications() []Notification {
	out := s.notices
	s.notices = nil
	return out
}

// DismissNotification drops one queued notification. It reports whether
// the id was pending.
func (s *State) DismissNotification(id string) bool {
	for i, n := range s.notices {
		if n.ID == id {
			s.notices = append(s.notices[:i:i], s.notices[i+1:]...)
			return true
		}
	}
	return false
}
