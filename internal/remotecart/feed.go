package remotecart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hijabina/hijabina-backend/pkg/logger"
	pkgredis "github.com/hijabina/hijabina-backend/pkg/redis"
)

// Feed topics.
const (
	TopicCart     = "cart"
	TopicIdentity = "identity"
)

// Notifications is an open subscription to one user's change channel.
type Notifications interface {
	Messages() <-chan string
	Close() error
}

// Feed delivers change notifications per user and topic.
type Feed interface {
	Notify(ctx context.Context, topic string, userID uuid.UUID, payload string) error
	Listen(ctx context.Context, topic string, userID uuid.UUID) (Notifications, error)
}

type pubsubClient interface {
	Publish(ctx context.Context, channel, payload string) error
	Subscribe(ctx context.Context, channel string) (*pkgredis.Subscription, error)
	ChannelName(topic, subject string) string
}

// RedisFeed is a Feed over redis pub/sub channels.
type RedisFeed struct {
	client pubsubClient
}

func NewRedisFeed(client pubsubClient) (*RedisFeed, error) {
	if client == nil {
		return nil, errors.New("redis client required for feed")
	}
	return &RedisFeed{client: client}, nil
}

func (f *RedisFeed) Notify(ctx context.Context, topic string, userID uuid.UUID, payload string) error {
	return f.client.Publish(ctx, f.client.ChannelName(topic, userID.String()), payload)
}

func (f *RedisFeed) Listen(ctx context.Context, topic string, userID uuid.UUID) (Notifications, error) {
	sub, err := f.client.Subscribe(ctx, f.client.ChannelName(topic, userID.String()))
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Identity is the authenticated user behind a stream. The zero value is anonymous.
type Identity struct {
	UserID uuid.UUID
}

func (i Identity) Anonymous() bool {
	return i.UserID == uuid.Nil
}

// IdentityEvent is published on the identity topic at login and logout.
type IdentityEvent struct {
	UserID   uuid.UUID `json:"user_id"`
	LoggedIn bool      `json:"logged_in"`
}

// EncodeIdentityEvent renders the identity topic payload.
func EncodeIdentityEvent(userID uuid.UUID, loggedIn bool) (string, error) {
	raw, err := json.Marshal(IdentityEvent{UserID: userID, LoggedIn: loggedIn})
	if err != nil {
		return "", fmt.Errorf("encode identity event: %w", err)
	}
	return string(raw), nil
}

// Identities starts at userID and follows its login/logout events until ctx
// is done. A logout yields the anonymous identity. Payloads that do not
// decode are logged and skipped.
func Identities(ctx context.Context, feed Feed, userID uuid.UUID, logg *logger.Logger) (<-chan Identity, error) {
	sub, err := feed.Listen(ctx, TopicIdentity, userID)
	if err != nil {
		return nil, err
	}
	out := make(chan Identity, 1)
	out <- Identity{UserID: userID}
	go func() {
		defer close(out)
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case payload, ok := <-sub.Messages():
				if !ok {
					return
				}
				var evt IdentityEvent
				if err := json.Unmarshal([]byte(payload), &evt); err != nil {
					logCtx := logg.WithFields(logg.WithUserID(ctx, userID.String()), map[string]any{
						"error":   err.Error(),
						"payload": truncate(payload, 128),
					})
					logg.Warn(logCtx, "remotecart.identity_payload_skipped")
					continue
				}
				next := Identity{}
				if evt.LoggedIn {
					next.UserID = userID
				}
				select {
				case out <- next:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// IdentityNotifier publishes login and logout events on the identity topic.
type IdentityNotifier struct {
	Feed Feed
}

func (n IdentityNotifier) IdentityChanged(ctx context.Context, userID uuid.UUID, loggedIn bool) error {
	payload, err := EncodeIdentityEvent(userID, loggedIn)
	if err != nil {
		return err
	}
	return n.Feed.Notify(ctx, TopicIdentity, userID, payload)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
