package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"concoro/internal/domain/notification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_SendToUserOnlyReachesOwner(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub(nil)
	go h.Run(ctx)

	alice, bob := uuid.New(), uuid.New()
	ca := &Client{hub: h, userID: alice, send: make(chan []byte, 4)}
	cb := &Client{hub: h, userID: bob, send: make(chan []byte, 4)}
	h.Register(ca)
	h.Register(cb)
	require.Eventually(t, func() bool { return h.ClientCount(alice) == 1 && h.ClientCount(bob) == 1 }, time.Second, 5*time.Millisecond)

	h.SendToUser(alice, []byte("hi"))

	select {
	case msg := <-ca.send:
		assert.Equal(t, "hi", string(msg))
	case <-time.After(time.Second):
		t.Fatal("alice did not receive the message")
	}
	select {
	case msg := <-cb.send:
		t.Fatalf("bob received %q", msg)
	case <-time.After(50 * time.Millisecond):
	}

	h.Unregister(ca)
	require.Eventually(t, func() bool { return h.ClientCount(alice) == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_PushNotification(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub(nil)
	go h.Run(ctx)

	userID := uuid.New()
	c := &Client{hub: h, userID: userID, send: make(chan []byte, 4)}
	h.Register(c)
	require.Eventually(t, func() bool { return h.ClientCount(userID) == 1 }, time.Second, 5*time.Millisecond)

	h.PushNotification(notification.Notification{
		ID:         uuid.New(),
		UserID:     userID,
		ConcorsoID: "c1",
		Type:       notification.TypeDeadline,
		Title:      "Scade tra 3 giorni",
		DaysLeft:   3,
		CreatedAt:  time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	})

	select {
	case msg := <-c.send:
		var evt NotificationEvent
		require.NoError(t, json.Unmarshal(msg, &evt))
		assert.Equal(t, "notification", evt.Type)
		assert.Equal(t, notification.TypeDeadline, evt.Kind)
		require.NotNil(t, evt.DaysLeft)
		assert.Equal(t, 3, *evt.DaysLeft)
		assert.Equal(t, "2026-03-01T08:00:00Z", evt.CreatedAt)
	case <-time.After(time.Second):
		t.Fatal("notification not delivered")
	}
}
