package builder

import "sync"

// Notification variants.
const (
	VariantSuccess = "success"
	VariantError   = "error"
	VariantInfo    = "info"
)

// Notification is a transient user-visible message.
type Notification struct {
	Variant     string `json:"variant"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Notifier delivers notifications to the user.
type Notifier interface {
	Notify(n Notification)
}

// Inbox queues notifications until they are drained, typically by the next
// HTTP response of the session.
type Inbox struct {
	mu    sync.Mutex
	items []Notification
}

const inboxLimit = 20

func (in *Inbox) Notify(n Notification) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.items = append(in.items, n)
	if len(in.items) > inboxLimit {
		in.items = in.items[len(in.items)-inboxLimit:]
	}
}

// Drain returns and clears the queued notifications.
func (in *Inbox) Drain() []Notification {
	in.mu.Lock()
	defer in.mu.Unlock()
	items := in.items
	in.items = nil
	return items
}
