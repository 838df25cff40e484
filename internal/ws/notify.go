package ws

import (
	"encoding/json"
	"time"

	"concoro/internal/domain/notification"
)

type NotificationEvent struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	ConcorsoID string `json:"concorso_id"`
	Kind       string `json:"kind"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	DaysLeft   *int   `json:"days_left,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// PushNotification sends n to the live connections of its owner.
func (h *Hub) PushNotification(n notification.Notification) {
	if h == nil {
		return
	}
	evt := NotificationEvent{
		Type:       "notification",
		ID:         n.ID.String(),
		ConcorsoID: n.ConcorsoID,
		Kind:       n.Type,
		Title:      n.Title,
		Message:    n.Message,
		CreatedAt:  n.CreatedAt.UTC().Format(time.RFC3339),
	}
	if n.DaysLeft != notification.NoDaysLeft {
		d := n.DaysLeft
		evt.DaysLeft = &d
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	h.SendToUser(n.UserID, b)
}
