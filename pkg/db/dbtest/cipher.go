package dbtest

import (
	"bytes"
	"testing"

	"github.com/Uptivity/justsell-pos-sub002/pkg/fieldcrypt"
)

// Cipher returns a field cipher over a fixed test key.
func Cipher(t testing.TB) *fieldcrypt.Cipher {
	t.Helper()
	provider, err := fieldcrypt.NewStaticKeyProvider(fieldcrypt.Key{
		ID:    "test-k1",
		Bytes: bytes.Repeat([]byte{0x42}, fieldcrypt.KeySize),
	})
	if err != nil {
		t.Fatalf("key provider: %v", err)
	}
	c, err := fieldcrypt.New(provider)
	if err != nil {
		t.Fatalf("field cipher: %v", err)
	}
	return c
}
