package redis

import (
	"sync"

	"github.com/redis/go-redis/v9"
)

// Subscription delivers message payloads from one pub/sub channel.
type Subscription struct {
	ps       *redis.PubSub
	messages chan string
	once     sync.Once
	closeErr error
}

func newSubscription(ps *redis.PubSub) *Subscription {
	s := &Subscription{ps: ps, messages: make(chan string)}
	go s.pump(ps.Channel())
	return s
}

func (s *Subscription) pump(in <-chan *redis.Message) {
	defer close(s.messages)
	for msg := range in {
		s.messages <- msg.Payload
	}
}

// Messages yields payloads until the subscription is closed.
func (s *Subscription) Messages() <-chan string {
	return s.messages
}

// Close unsubscribes and releases the connection. It is safe to call twice.
func (s *Subscription) Close() error {
	s.once.Do(func() {
		s.closeErr = s.ps.Close()
		// drain so pump can observe the closed source channel
		go func() {
			for range s.messages {
			}
		}()
	})
	return s.closeErr
}
