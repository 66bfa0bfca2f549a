package realtime

import (
	"testing"

	"github.com/arnold/daily-challenges-api/internal/logging"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesOnlyOwner(t *testing.T) {
	hub := NewHub(logging.Discard())
	alice, bob := uuid.New(), uuid.New()

	aliceCh, cancelAlice := hub.Subscribe(alice)
	defer cancelAlice()
	bobCh, cancelBob := hub.Subscribe(bob)
	defer cancelBob()

	hub.Publish(alice, Event{Type: EventChallengeUpdated, Data: "c1"})

	select {
	case ev := <-aliceCh:
		assert.Equal(t, EventChallengeUpdated, ev.Type)
		assert.Equal(t, alice.String(), ev.UserID)
	default:
		t.Fatal("expected an event for alice")
	}

	select {
	case ev := <-bobCh:
		t.Fatalf("bob should not receive %v", ev)
	default:
	}
}

func TestHub_CancelClosesAndForgets(t *testing.T) {
	hub := NewHub(logging.Discard())
	user := uuid.New()

	ch, cancel := hub.Subscribe(user)
	require.Equal(t, 1, hub.Subscribers(user))

	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.Subscribers(user))

	hub.Publish(user, Event{Type: EventProfileUpdated})
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub(logging.Discard())
	user := uuid.New()

	ch, cancel := hub.Subscribe(user)
	defer cancel()

	for i := 0; i < hub.buffer+5; i++ {
		hub.Publish(user, Event{Type: EventAchievementUpdated})
	}
	assert.Len(t, ch, hub.buffer)
}
