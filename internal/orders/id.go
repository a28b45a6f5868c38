package orders

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const idPrefix = "ORD-"

// IDGenerator issues "ORD-<unix millis>" ids that strictly increase within
// the process, even when two orders land in the same millisecond. A node tag
// ("ORD-<millis>-<node>") keeps replicas sharing one orders table apart.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	node string
	now  func() time.Time
}

// NewIDGenerator builds a generator; an empty node leaves the tag off.
func NewIDGenerator(clock func() time.Time, node string) *IDGenerator {
	if clock == nil {
		clock = time.Now
	}
	return &IDGenerator{now: clock, node: strings.TrimSpace(node)}
}

// NewNode returns a short random tag for one process.
func NewNode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

// Next returns the next id and the timestamp it was derived from.
func (g *IDGenerator) Next() (string, time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	ms := now.UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	id := idPrefix + strconv.FormatInt(ms, 10)
	if g.node != "" {
		id += "-" + g.node
	}
	return id, now
}
