// Package kv is the device-scoped key-value persistence used by the local
// cart, wishlist and order history. Values are stored as JSON.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// ErrEmptyKey is returned for operations without a key.
var ErrEmptyKey = errors.New("kv: key is required")

// Store persists JSON-serializable values by key.
type Store interface {
	// Get decodes the value at key into dest. found is false when the key is absent.
	Get(ctx context.Context, key string, dest any) (found bool, err error)
	Set(ctx context.Context, key string, value any) error
	Remove(ctx context.Context, key string) error
	// Apply writes every op atomically: readers see all of them or none.
	Apply(ctx context.Context, ops ...Op) error
}

// Op is one write inside an Apply batch.
type Op struct {
	Key    string
	Value  any
	Delete bool
}

// Put builds a set operation.
func Put(key string, value any) Op {
	return Op{Key: key, Value: value}
}

// Delete builds a remove operation.
func Delete(key string) Op {
	return Op{Key: key, Delete: true}
}

func encode(key string, value any) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("kv: encode %s: %w", key, err)
	}
	return raw, nil
}

func decode(key string, raw []byte, dest any) error {
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("kv: decode %s: %w", key, err)
	}
	return nil
}

// encodeOps validates and serializes a batch before anything is written.
func encodeOps(ops []Op) (map[string][]byte, []string, error) {
	sets := make(map[string][]byte, len(ops))
	var dels []string
	for _, op := range ops {
		if op.Key == "" {
			return nil, nil, ErrEmptyKey
		}
		if op.Delete {
			delete(sets, op.Key)
			dels = append(dels, op.Key)
			continue
		}
		raw, err := encode(op.Key, op.Value)
		if err != nil {
			return nil, nil, err
		}
		dels = slices.DeleteFunc(dels, func(k string) bool { return k == op.Key })
		sets[op.Key] = raw
	}
	return sets, dels, nil
}
