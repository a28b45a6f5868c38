package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/hijabina/hijabina-backend/pkg/config"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newMockStore() *mockStore {
	return &mockStore{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockStore) AccessSessionKey(accessID string) string {
	return "sess:" + accessID
}

var testJWT = config.JWTConfig{ExpirationMinutes: 60, RefreshTokenTTLMinutes: 120}

func TestNewManagerValidatesTTL(t *testing.T) {
	if _, err := NewManager(newMockStore(), config.JWTConfig{ExpirationMinutes: 60, RefreshTokenTTLMinutes: 30}); err == nil {
		t.Fatal("expected refresh ttl shorter than access ttl to fail")
	}
	if _, err := NewManager(nil, testJWT); err == nil {
		t.Fatal("expected nil store to fail")
	}
}

func TestStartRotateRevoke(t *testing.T) {
	store := newMockStore()
	manager, err := NewManager(store, testJWT)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	ctx := context.Background()
	user := uuid.New()

	first, err := manager.Start(ctx, user)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if store.ttls["sess:"+first.AccessID] != 2*time.Hour {
		t.Fatalf("unexpected ttl %s", store.ttls["sess:"+first.AccessID])
	}
	if ok, _ := manager.HasSession(ctx, first.AccessID); !ok {
		t.Fatal("expected live session")
	}

	if _, err := manager.Rotate(ctx, user, first.AccessID, "wrong"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
	if _, err := manager.Rotate(ctx, uuid.New(), first.AccessID, first.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected token bound to user, got %v", err)
	}

	second, err := manager.Rotate(ctx, user, first.AccessID, first.RefreshToken)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if second.AccessID == first.AccessID || second.RefreshToken == first.RefreshToken {
		t.Fatal("rotation must issue a new session")
	}
	if ok, _ := manager.HasSession(ctx, first.AccessID); ok {
		t.Fatal("old session left behind")
	}
	if _, err := manager.Rotate(ctx, user, first.AccessID, first.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("refresh token must be single use, got %v", err)
	}

	if err := manager.Revoke(ctx, second.AccessID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if ok, _ := manager.HasSession(ctx, second.AccessID); ok {
		t.Fatal("revoked session still live")
	}
}
