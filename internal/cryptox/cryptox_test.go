package cryptox

import (
	"bytes"
	"strings"
	"testing"
)

type payload struct {
	Phone string `json:"phone"`
	Count int    `json:"count"`
}

func TestDeriveKey(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		key1 := DeriveKey("some-secret")
		key2 := DeriveKey("some-secret")
		if !bytes.Equal(key1, key2) {
			t.Error("expected same key for same secret")
		}
		if len(key1) != 32 {
			t.Errorf("expected 32-byte key, got %d", len(key1))
		}
	})

	t.Run("distinct secrets", func(t *testing.T) {
		if bytes.Equal(DeriveKey("secret-a"), DeriveKey("secret-b")) {
			t.Error("expected different keys for different secrets")
		}
	})
}

func TestSealOpenJSON(t *testing.T) {
	key := DeriveKey("test-secret")

	t.Run("round trip", func(t *testing.T) {
		in := payload{Phone: "+15550001111", Count: 42}
		envelope, err := SealJSON(in, key)
		if err != nil {
			t.Fatalf("seal failed: %v", err)
		}

		var out payload
		if err := OpenJSON(envelope, key, &out); err != nil {
			t.Fatalf("open failed: %v", err)
		}
		if out != in {
			t.Errorf("expected %+v, got %+v", in, out)
		}
	})

	t.Run("distinct envelopes per seal", func(t *testing.T) {
		in := payload{Phone: "+15550001111"}
		e1, _ := SealJSON(in, key)
		e2, _ := SealJSON(in, key)
		if e1 == e2 {
			t.Error("expected random nonce to produce distinct envelopes")
		}
	})

	t.Run("wrong key fails", func(t *testing.T) {
		envelope, _ := SealJSON(payload{Phone: "x"}, key)
		var out payload
		if err := OpenJSON(envelope, DeriveKey("other-secret"), &out); err == nil {
			t.Error("expected error opening with wrong key")
		}
	})

	t.Run("tampered envelope fails", func(t *testing.T) {
		envelope, _ := SealJSON(payload{Phone: "x"}, key)
		b := []byte(envelope)
		if b[10] == 'A' {
			b[10] = 'B'
		} else {
			b[10] = 'A'
		}
		var out payload
		if err := OpenJSON(string(b), key, &out); err == nil {
			t.Error("expected error opening tampered envelope")
		}
	})

	t.Run("garbage input fails closed", func(t *testing.T) {
		var out payload
		for _, bad := range []string{"", "not base64 ???", "QQ==", strings.Repeat("A", 7)} {
			if err := OpenJSON(bad, key, &out); err == nil {
				t.Errorf("expected error for input %q", bad)
			}
		}
	})
}
