package fieldcrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const (
	envelopeVersion = 1
	nonceSize       = 12
	tagSize         = 16
)

// ErrDecrypt is returned when an encrypted value fails authentication. Callers never receive
// partially decrypted plaintext.
var ErrDecrypt = errors.New("fieldcrypt: decryption failed")

type envelope struct {
	Version int    `json:"v"`
	KeyID   string `json:"kid"`
	IV      string `json:"iv"`
	CT      string `json:"ct"`
	Tag     string `json:"tag"`
}

// Cipher encrypts individual column values with AES-256-GCM, binding the field tag as
// associated data so a value cannot be moved between columns.
type Cipher struct {
	keys    KeyProvider
	entropy io.Reader
}

// New constructs a Cipher backed by the provided key ring.
func New(keys KeyProvider) (*Cipher, error) {
	if keys == nil {
		return nil, errors.New("fieldcrypt: key provider is required")
	}
	return &Cipher{keys: keys, entropy: rand.Reader}, nil
}

func aead(key Key) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key.Bytes)
	if err != nil {
		return nil, fmt.Errorf("fieldcrypt: init cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plaintext for field and returns the stored representation.
func (c *Cipher) Encrypt(field Field, plaintext string) (string, error) {
	key, err := c.keys.CurrentKey()
	if err != nil {
		return "", fmt.Errorf("fieldcrypt: current key: %w", err)
	}
	gcm, err := aead(key)
	if err != nil {
		return "", err
	}
	iv := make([]byte, nonceSize)
	if _, err := io.ReadFull(c.entropy, iv); err != nil {
		return "", fmt.Errorf("fieldcrypt: nonce: %w", err)
	}
	sealed := gcm.Seal(nil, iv, []byte(plaintext), []byte(field))
	ct, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	raw, err := json.Marshal(envelope{
		Version: envelopeVersion,
		KeyID:   key.ID,
		IV:      base64.StdEncoding.EncodeToString(iv),
		CT:      base64.StdEncoding.EncodeToString(ct),
		Tag:     base64.StdEncoding.EncodeToString(tag),
	})
	if err != nil {
		return "", fmt.Errorf("fieldcrypt: encode envelope: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Decrypt opens a stored value for field. Values that do not parse as an envelope are legacy
// plaintext and are returned unchanged.
func (c *Cipher) Decrypt(field Field, stored string) (string, error) {
	env, ok := parseEnvelope(stored)
	if !ok {
		return stored, nil
	}
	key, err := c.keys.KeyByID(env.KeyID)
	if err != nil {
		return "", err
	}
	gcm, err := aead(key)
	if err != nil {
		return "", err
	}
	iv, errIV := base64.StdEncoding.DecodeString(env.IV)
	ct, errCT := base64.StdEncoding.DecodeString(env.CT)
	tag, errTag := base64.StdEncoding.DecodeString(env.Tag)
	if errIV != nil || errCT != nil || errTag != nil || len(iv) != nonceSize || len(tag) != tagSize {
		return "", ErrDecrypt
	}
	plain, err := gcm.Open(nil, iv, append(ct, tag...), []byte(field))
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plain), nil
}

func parseEnvelope(stored string) (envelope, bool) {
	raw, err := base64.StdEncoding.DecodeString(stored)
	if err != nil || len(raw) == 0 || raw[0] != '{' {
		return envelope{}, false
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return envelope{}, false
	}
	if env.Version != envelopeVersion || env.KeyID == "" || env.IV == "" || env.Tag == "" {
		return envelope{}, false
	}
	return env, true
}
