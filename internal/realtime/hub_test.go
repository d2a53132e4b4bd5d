package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(buffer int) *Client {
	return &Client{send: make(chan []byte, buffer)}
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case payload := <-c.send:
		var msg Message
		require.NoError(t, json.Unmarshal(payload, &msg))
		return msg
	default:
		t.Fatal("no message queued")
		return Message{}
	}
}

func TestPublishReachesSubscribers(t *testing.T) {
	hub := NewHub()
	a := testClient(4)
	b := testClient(4)

	hub.Subscribe(a, PostTopic("post_1"))
	hub.Subscribe(b, PostTopic("post_1"))

	hub.Publish(PostTopic("post_1"), "vote_update", map[string]int{"upvotes": 3})

	for _, c := range []*Client{a, b} {
		msg := receive(t, c)
		assert.Equal(t, "vote_update", msg.Event)
	}
}

func TestPublishSkipsOtherTopics(t *testing.T) {
	hub := NewHub()
	a := testClient(4)
	hub.Subscribe(a, UserTopic("user_1"))

	hub.Publish(UserTopic("user_2"), "new_notification", nil)

	assert.Empty(t, a.send)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub()
	a := testClient(4)
	hub.Subscribe(a, PostTopic("post_1"))
	hub.Unsubscribe(a, PostTopic("post_1"))

	hub.Publish(PostTopic("post_1"), "new_comment", nil)

	assert.Empty(t, a.send)
	assert.Zero(t, hub.Subscribers(PostTopic("post_1")))
}

func TestRemoveDetachesFromAllTopics(t *testing.T) {
	hub := NewHub()
	a := testClient(4)
	hub.Subscribe(a, PostTopic("post_1"))
	hub.Subscribe(a, UserTopic("user_1"))

	hub.Remove(a)

	assert.Zero(t, hub.Subscribers(PostTopic("post_1")))
	assert.Zero(t, hub.Subscribers(UserTopic("user_1")))
}

func TestSubscribeEmptyTopicIgnored(t *testing.T) {
	hub := NewHub()
	hub.Subscribe(testClient(1), "")
	assert.Zero(t, hub.Subscribers(""))
}

func TestSubscribeIsIdempotent(t *testing.T) {
	hub := NewHub()
	a := testClient(4)
	hub.Subscribe(a, PostTopic("post_1"))
	hub.Subscribe(a, PostTopic("post_1"))

	assert.Equal(t, 1, hub.Subscribers(PostTopic("post_1")))

	hub.Publish(PostTopic("post_1"), "vote_update", nil)
	receive(t, a)
	assert.Empty(t, a.send)
}

func TestSlowClientDoesNotBlockPublish(t *testing.T) {
	hub := NewHub()
	slow := testClient(1)
	fast := testClient(4)
	hub.Subscribe(slow, PostTopic("post_1"))
	hub.Subscribe(fast, PostTopic("post_1"))

	// Fill the slow client's buffer; further publishes must drop for it
	// but still reach the fast one.
	hub.Publish(PostTopic("post_1"), "vote_update", 1)
	hub.Publish(PostTopic("post_1"), "vote_update", 2)

	assert.Len(t, slow.send, 1)
	assert.Len(t, fast.send, 2)
}

func TestPublishAfterCloseIsDropped(t *testing.T) {
	hub := NewHub()
	a := testClient(4)
	hub.Subscribe(a, UserTopic("user_1"))
	a.closeSend()

	hub.Publish(UserTopic("user_1"), "new_notification", nil)
}
