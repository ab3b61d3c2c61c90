package messaging

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastPageEvent(t *testing.T) {
	b := NewPreviewBroadcaster(nil)
	go b.Run()

	client := &PreviewClient{ProjectID: "proj", Send: make(chan []byte, 1)}
	b.Register(client)

	other := &PreviewClient{ProjectID: "other", Send: make(chan []byte, 1)}
	b.Register(other)

	// Registration is asynchronous; give the run loop a moment.
	time.Sleep(50 * time.Millisecond)

	b.BroadcastPageEvent("proj", PageEvent{Type: "page_updated", PageID: "p1", Slug: "home"})

	select {
	case message := <-client.Send:
		var event PageEvent
		require.NoError(t, json.Unmarshal(message, &event))
		assert.Equal(t, "page_updated", event.Type)
		assert.Equal(t, "p1", event.PageID)
		assert.False(t, event.Timestamp.IsZero())
	case <-time.After(time.Second):
		t.Fatal("expected a page event for the subscribed project")
	}

	select {
	case <-other.Send:
		t.Fatal("client of another project must not receive the event")
	default:
	}

	b.Unregister(client)
	time.Sleep(50 * time.Millisecond)

	_, open := <-client.Send
	assert.False(t, open, "unregister closes the send channel")
}
