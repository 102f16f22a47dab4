package realtime

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestDecodeChange(t *testing.T) {
	c, err := DecodeChange(`{"table":"bookings","event":"update","id":"b1"}`)
	require.NoError(t, err)
	assert.Equal(t, Change{Table: "bookings", Event: "UPDATE", ID: "b1"}, c)

	_, err = DecodeChange(`{"id":"b1"}`)
	assert.Error(t, err)
	_, err = DecodeChange(`nope`)
	assert.Error(t, err)
}

func TestHubFiltersByTable(t *testing.T) {
	hub := NewHub(quietLogger())
	bookings := hub.Subscribe("bookings")
	all := hub.Subscribe()
	defer hub.Unsubscribe(bookings)
	defer hub.Unsubscribe(all)

	hub.Publish(Change{Table: "rooms", Event: "INSERT", ID: "r1"})
	hub.Publish(Change{Table: "bookings", Event: "UPDATE", ID: "b1"})

	assert.Equal(t, "b1", (<-bookings.C).ID)
	assert.Equal(t, "r1", (<-all.C).ID)
	assert.Equal(t, "b1", (<-all.C).ID)
	assert.Len(t, bookings.C, 0)
}

func TestHubDropsForSlowSubscriber(t *testing.T) {
	hub := NewHub(quietLogger())
	hub.buffer = 1
	s := hub.Subscribe()

	hub.Publish(Change{Table: "rooms", Event: "UPDATE", ID: "1"})
	hub.Publish(Change{Table: "rooms", Event: "UPDATE", ID: "2"})

	assert.Equal(t, "1", (<-s.C).ID)
	hub.Unsubscribe(s)
	_, open := <-s.C
	assert.False(t, open)
	assert.Equal(t, 0, hub.Len())

	// second unsubscribe is a no-op
	hub.Unsubscribe(s)
}

func TestRelay(t *testing.T) {
	hub := NewHub(quietLogger())
	s := hub.Subscribe("profiles")
	notify := make(chan *pq.Notification, 3)
	notify <- &pq.Notification{Channel: Channel, Extra: `garbage`}
	notify <- nil
	notify <- &pq.Notification{Channel: Channel, Extra: `{"table":"profiles","event":"DELETE","id":"u1"}`}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		relay(ctx, notify, func() error { return nil }, hub, quietLogger())
		close(done)
	}()

	select {
	case c := <-s.C:
		assert.Equal(t, ResyncTable, c.Table)
	case <-time.After(time.Second):
		t.Fatal("no resync event")
	}
	select {
	case c := <-s.C:
		assert.Equal(t, Change{Table: "profiles", Event: "DELETE", ID: "u1"}, c)
	case <-time.After(time.Second):
		t.Fatal("no change event")
	}
	cancel()
	<-done
}
