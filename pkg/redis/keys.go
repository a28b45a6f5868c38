package redis

import "strings"

// Every key the backend writes lives under "hj:<area>:...". Empty parts
// are dropped so callers can pass optional subjects.
const (
	keyNamespace      = "hj"
	idempotencyPrefix = "idempotency"
	rateLimitPrefix   = "rate_limit"
	sessionPrefix     = "session"
	lockPrefix        = "lock"
	localPrefix       = "local"
	channelPrefix     = "events"
)

func (c *Client) IdempotencyKey(scope, id string) string {
	return buildKey(idempotencyPrefix, scope, id)
}

func (c *Client) RateLimitKey(scope string) string {
	return buildKey(rateLimitPrefix, scope)
}

func (c *Client) AccessSessionKey(accessID string) string {
	return buildKey(sessionPrefix, "access", accessID)
}

// LockKey names a short lived mutex, e.g. ("checkout", userID).
func (c *Client) LockKey(scope, id string) string {
	return buildKey(lockPrefix, scope, id)
}

// LocalKey namespaces device scoped storage such as "cart:<shopper>".
func (c *Client) LocalKey(key string) string {
	return buildKey(localPrefix, key)
}

// ChannelName is the pub/sub channel for topic events about subject.
func (c *Client) ChannelName(topic, subject string) string {
	return buildKey(channelPrefix, topic, subject)
}

func buildKey(parts ...string) string {
	var b strings.Builder
	b.WriteString(keyNamespace)
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			b.WriteByte(':')
			b.WriteString(part)
		}
	}
	return b.String()
}
