// Package realtime routes payloads to connected clients by topic.
// Topics are plain names: "post:<id>" for vote/comment updates and
// "user:<id>" for private notifications.
package realtime

import (
	"encoding/json"
	"log"
	"sync"
)

// PostTopic names the channel carrying vote and comment updates for a post.
func PostTopic(postID string) string { return "post:" + postID }

// UserTopic names a user's private notification channel.
func UserTopic(userID string) string { return "user:" + userID }

// Message is the envelope every subscriber receives.
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub keeps the topic -> subscriber-set registry. Any connected client
// may join any topic; Subscribe is the single place an ACL check would
// go if subscriptions ever become authorized.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{topics: make(map[string]map[*Client]struct{})}
}

func (h *Hub) Subscribe(c *Client, topic string) {
	if topic == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[*Client]struct{})
		h.topics[topic] = subs
	}
	subs[c] = struct{}{}
}

func (h *Hub) Unsubscribe(c *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(c, topic)
}

// Remove detaches a client from every topic. Called on disconnect.
func (h *Hub) Remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for topic := range h.topics {
		h.drop(c, topic)
	}
}

func (h *Hub) drop(c *Client, topic string) {
	subs, ok := h.topics[topic]
	if !ok {
		return
	}
	delete(subs, c)
	if len(subs) == 0 {
		delete(h.topics, topic)
	}
}

// Publish delivers to every current subscriber of the topic. Topics with
// no subscribers drop the message; a subscriber whose send buffer is full
// is skipped rather than blocking the publisher.
func (h *Hub) Publish(topic, event string, data interface{}) {
	payload, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		log.Printf("realtime: marshal %s failed: %v", event, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.topics[topic] {
		c.trySend(payload)
	}
}

// Subscribers reports the current subscriber count for a topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
