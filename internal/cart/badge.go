package cart

import (
	"context"
	"encoding/json"
	"errors"
)

type publisher interface {
	Publish(ctx context.Context, channel, payload string) error
	ChannelName(topic, subject string) string
}

// BadgeEvent is published whenever a cart's item count changes.
type BadgeEvent struct {
	ShopperID string `json:"shopper_id"`
	Count     int    `json:"count"`
}

// PublishNotifier fans badge updates out over Redis pub/sub on "badge:<shopper>".
type PublishNotifier struct {
	pub publisher
}

func NewPublishNotifier(pub publisher) (*PublishNotifier, error) {
	if pub == nil {
		return nil, errors.New("publisher required")
	}
	return &PublishNotifier{pub: pub}, nil
}

func (n *PublishNotifier) CartChanged(ctx context.Context, shopperID string, count int) error {
	payload, err := json.Marshal(BadgeEvent{ShopperID: shopperID, Count: count})
	if err != nil {
		return err
	}
	return n.pub.Publish(ctx, n.pub.ChannelName("badge", shopperID), string(payload))
}
