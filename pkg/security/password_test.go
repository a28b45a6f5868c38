package security_test

import (
	"errors"
	"testing"

	"github.com/hijabina/hijabina-backend/pkg/config"
	"github.com/hijabina/hijabina-backend/pkg/security"
)

var testParams = config.PasswordConfig{
	ArgonMemoryKB:    8192,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

func TestHashAndVerify(t *testing.T) {
	h := security.NewHasher(testParams)
	hash, err := h.Hash("rahasia123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if ok, err := h.Verify("rahasia123", hash); err != nil || !ok {
		t.Fatalf("expected match, got %v %v", ok, err)
	}
	if ok, err := h.Verify("salah", hash); err != nil || ok {
		t.Fatalf("expected mismatch, got %v %v", ok, err)
	}
	if h.NeedsRehash(hash) {
		t.Fatal("hash made with current params should not need rehash")
	}

	stronger := testParams
	stronger.ArgonTime = 2
	if !security.NewHasher(stronger).NeedsRehash(hash) {
		t.Fatal("changed params should require rehash")
	}
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	h := security.NewHasher(testParams)
	for _, encoded := range []string{"not-a-hash", "$argon2id$v=18$m=1,t=1,p=1$AA$AA", "$bcrypt$v=19$m=1,t=1,p=1$AA$AA"} {
		if _, err := h.Verify("x", encoded); !errors.Is(err, security.ErrInvalidHash) {
			t.Fatalf("expected ErrInvalidHash for %q, got %v", encoded, err)
		}
	}
}

func TestCheckStrength(t *testing.T) {
	if err := security.CheckStrength("12345"); !errors.Is(err, security.ErrWeakPassword) {
		t.Fatalf("expected weak password, got %v", err)
	}
	if err := security.CheckStrength("123456"); err != nil {
		t.Fatalf("expected six characters to pass, got %v", err)
	}
}
