package security

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	h := NewPasswordHasher()
	hash, err := h.Hash("admin123")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if strings.Contains(hash, "admin123") {
		t.Fatal("plaintext leaked into encoded hash")
	}
	ok, err := h.Verify(hash, "admin123")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !ok {
		t.Fatal("expected password verification success")
	}
	ok, err = h.Verify(hash, "admin124")
	if err != nil {
		t.Fatalf("verify wrong password errored: %v", err)
	}
	if ok {
		t.Fatal("expected password verification failure")
	}
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	h := NewPasswordHasher()
	if _, err := h.Verify("$bcrypt$whatever", "x"); err == nil {
		t.Fatal("expected error for unknown hash format")
	}
}

func TestHashesAreSalted(t *testing.T) {
	h := NewPasswordHasher()
	a, err := h.Hash("magasinier123")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	b, err := h.Hash("magasinier123")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if a == b {
		t.Fatal("expected distinct salts for identical passwords")
	}
}
