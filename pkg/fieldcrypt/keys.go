package fieldcrypt

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Uptivity/justsell-pos-sub002/pkg/config"
	"golang.org/x/crypto/hkdf"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

var (
	hkdfSalt = []byte("justsell-pos/fieldcrypt")
	hkdfInfo = []byte("aes-256-gcm field key")
)

// ErrUnknownKey is returned when a stored value references a key id the provider does not hold.
var ErrUnknownKey = errors.New("fieldcrypt: unknown key id")

// Key is one AES-256 key and the id recorded alongside every value it encrypts.
type Key struct {
	ID    string
	Bytes []byte
}

// KeyProvider supplies the active encryption key and resolves historical keys by id.
type KeyProvider interface {
	CurrentKey() (Key, error)
	KeyByID(id string) (Key, error)
}

// StaticKeyProvider holds an immutable key ring built at startup.
type StaticKeyProvider struct {
	current Key
	byID    map[string]Key
}

// NewStaticKeyProvider builds a key ring with current as the active key and retired keys kept
// for decryption only.
func NewStaticKeyProvider(current Key, retired ...Key) (*StaticKeyProvider, error) {
	if err := validateKey(current); err != nil {
		return nil, err
	}
	byID := map[string]Key{current.ID: current}
	for _, k := range retired {
		if err := validateKey(k); err != nil {
			return nil, err
		}
		if _, exists := byID[k.ID]; exists {
			return nil, fmt.Errorf("fieldcrypt: duplicate key id %q", k.ID)
		}
		byID[k.ID] = k
	}
	return &StaticKeyProvider{current: current, byID: byID}, nil
}

func validateKey(k Key) error {
	if strings.TrimSpace(k.ID) == "" {
		return errors.New("fieldcrypt: key id is required")
	}
	if len(k.Bytes) != KeySize {
		return fmt.Errorf("fieldcrypt: key %q must be %d bytes, got %d", k.ID, KeySize, len(k.Bytes))
	}
	return nil
}

// CurrentKey implements KeyProvider.
func (p *StaticKeyProvider) CurrentKey() (Key, error) {
	return p.current, nil
}

// KeyByID implements KeyProvider.
func (p *StaticKeyProvider) KeyByID(id string) (Key, error) {
	k, ok := p.byID[id]
	if !ok {
		return Key{}, fmt.Errorf("%w %q", ErrUnknownKey, id)
	}
	return k, nil
}

// DeriveKey turns configured key material into AES-256 key bytes. A base64 value that decodes
// to exactly 32 bytes is used as-is; anything else is treated as a passphrase and stretched
// with HKDF-SHA256.
func DeriveKey(material string) ([]byte, error) {
	material = strings.TrimSpace(material)
	if material == "" {
		return nil, errors.New("fieldcrypt: key material is empty")
	}
	if raw, err := base64.StdEncoding.DecodeString(material); err == nil && len(raw) == KeySize {
		return raw, nil
	}
	out := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(material), hkdfSalt, hkdfInfo), out); err != nil {
		return nil, fmt.Errorf("fieldcrypt: derive key: %w", err)
	}
	return out, nil
}

// ProviderFromConfig builds the key ring from the encryption configuration section.
func ProviderFromConfig(cfg config.EncryptionConfig) (*StaticKeyProvider, error) {
	currentBytes, err := DeriveKey(cfg.Key)
	if err != nil {
		return nil, err
	}
	retiredMap, err := cfg.RetiredKeyMap()
	if err != nil {
		return nil, err
	}
	retired := make([]Key, 0, len(retiredMap))
	for kid, material := range retiredMap {
		b, err := DeriveKey(material)
		if err != nil {
			return nil, fmt.Errorf("retired key %q: %w", kid, err)
		}
		retired = append(retired, Key{ID: kid, Bytes: b})
	}
	return NewStaticKeyProvider(Key{ID: cfg.KeyID, Bytes: currentBytes}, retired...)
}
