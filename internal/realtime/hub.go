// Package realtime fans order updates out to live observers. A Hub delivers
// updates inside one process; a RedisBroker carries them between instances.
package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/Project-mardianto/algoplus-app/internal/models"
)

const subscriptionBuffer = 64

func OrderTopic(orderID int64) string {
	return fmt.Sprintf("order:%d", orderID)
}

func StatusTopic(status models.OrderStatus) string {
	return "status:" + string(status)
}

// Topics lists every topic an update belongs to. A status change is visible
// both to observers of the new status and of the status the order left.
func Topics(u models.OrderUpdate) []string {
	topics := []string{OrderTopic(u.OrderID)}
	if u.Status != nil {
		topics = append(topics, StatusTopic(*u.Status))
	}
	if u.PrevStatus != nil && (u.Status == nil || *u.PrevStatus != *u.Status) {
		topics = append(topics, StatusTopic(*u.PrevStatus))
	}
	return topics
}

type Subscription struct {
	hub    *Hub
	topics []string
	ch     chan models.OrderUpdate
	closed bool
}

// Updates is closed when the subscription ends, either through Close or
// because the subscriber fell behind.
func (s *Subscription) Updates() <-chan models.OrderUpdate {
	return s.ch
}

func (s *Subscription) Close() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	s.hub.remove(s)
}

type Hub struct {
	mu     sync.Mutex
	topics map[string]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{topics: make(map[string]map[*Subscription]struct{})}
}

func (h *Hub) Subscribe(topics ...string) *Subscription {
	sub := &Subscription{
		hub:    h,
		topics: topics,
		ch:     make(chan models.OrderUpdate, subscriptionBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, topic := range topics {
		if h.topics[topic] == nil {
			h.topics[topic] = make(map[*Subscription]struct{})
		}
		h.topics[topic][sub] = struct{}{}
	}
	return sub
}

// Publish never blocks: a subscriber whose buffer is full is dropped.
func (h *Hub) Publish(_ context.Context, u models.OrderUpdate) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := make(map[*Subscription]struct{})
	for _, topic := range Topics(u) {
		for sub := range h.topics[topic] {
			if _, ok := delivered[sub]; ok {
				continue
			}
			delivered[sub] = struct{}{}

			select {
			case sub.ch <- u:
			default:
				h.remove(sub)
			}
		}
	}
	return nil
}

// Subscribers reports the number of live subscriptions on topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics[topic])
}

// remove must be called with h.mu held.
func (h *Hub) remove(sub *Subscription) {
	if sub.closed {
		return
	}
	sub.closed = true

	for _, topic := range sub.topics {
		if subs := h.topics[topic]; subs != nil {
			delete(subs, sub)
			if len(subs) == 0 {
				delete(h.topics, topic)
			}
		}
	}
	close(sub.ch)
}
