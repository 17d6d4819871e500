package security

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("s3cret!")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if hash == "s3cret!" {
		t.Fatalf("expected hashed output")
	}
	if !h.Verify("s3cret!", hash) {
		t.Fatalf("expected password to verify")
	}
	if h.Verify("wrong", hash) {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestBcryptHasher_Salted(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	a, _ := h.Hash("same-password")
	b, _ := h.Hash("same-password")
	if a == b {
		t.Fatalf("expected different hashes for the same input")
	}
}

func TestBcryptHasher_MalformedHash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	if h.Verify("anything", "not-a-bcrypt-hash") {
		t.Fatalf("malformed hash must not match")
	}
	if h.Verify("", "") {
		t.Fatalf("empty hash must not match")
	}
}

func TestBcryptHasher_LongPassword(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	long := strings.Repeat("a", 100)

	hash, err := h.Hash(long)
	if err != nil {
		t.Fatalf("Hash returned error for long password: %v", err)
	}
	if !h.Verify(long, hash) {
		t.Fatalf("expected long password to verify")
	}
	// Differs only after byte 72; plain bcrypt would accept it.
	if h.Verify(strings.Repeat("a", 99)+"b", hash) {
		t.Fatalf("expected bytes past 72 to matter")
	}
}

func TestNewBcryptHasher_InvalidCostFallsBack(t *testing.T) {
	if got := NewBcryptHasher(0).cost; got != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %d", got)
	}
	if got := NewBcryptHasher(99).cost; got != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %d", got)
	}
}
