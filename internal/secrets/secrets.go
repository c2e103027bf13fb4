// Package secrets encrypts provider credentials at rest with a versioned
// symmetric keyring, so rotating the secret does not silently corrupt
// previously written ciphertexts.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/hkdf"

	"github.com/agencydesk/relay/internal/config"
)

const keyInfo = "relay.credentials.v1"

var (
	ErrEmptyPlaintext    = errors.New("plaintext is empty")
	ErrMalformedCipher   = errors.New("malformed ciphertext")
	ErrUnknownKeyVersion = errors.New("unknown key version")
)

// Cipher is an AES-256-CBC keyring. The active version encrypts; every
// configured version decrypts. Ciphertext format is
// "v<version>:hex(iv):hex(ct)"; the untagged legacy format
// "hex(iv):hex(ct)" is decrypted with a truncation-derived key from the
// active secret, matching ciphertexts written before versioning existed.
type Cipher struct {
	active    int
	keys      map[int][]byte
	legacyKey []byte
}

// NewCipher derives per-version keys from the configured keyring.
func NewCipher(cfg config.CryptoConfig) (*Cipher, error) {
	activeKey, err := cfg.ActiveKey()
	if err != nil {
		return nil, err
	}

	keys := make(map[int][]byte, len(cfg.Keys))
	for _, k := range cfg.Keys {
		if _, dup := keys[k.Version]; dup {
			return nil, fmt.Errorf("duplicate crypto key version %d", k.Version)
		}
		derived, err := deriveKey(k.Secret)
		if err != nil {
			return nil, fmt.Errorf("derive key v%d: %w", k.Version, err)
		}
		keys[k.Version] = derived
	}

	return &Cipher{
		active:    activeKey.Version,
		keys:      keys,
		legacyKey: truncateKey(activeKey.Secret),
	}, nil
}

// Encrypt returns a version-tagged ciphertext for the given plaintext.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPlaintext
	}

	block, err := aes.NewCipher(c.keys[c.active])
	if err != nil {
		return "", err
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)

	return fmt.Sprintf("v%d:%s:%s", c.active, hex.EncodeToString(iv), hex.EncodeToString(ct)), nil
}

// Decrypt reverses Encrypt. Untagged two-part ciphertexts use the legacy
// truncation key; an unrecognized version tag is an explicit error.
func (c *Cipher) Decrypt(encoded string) (string, error) {
	parts := strings.Split(encoded, ":")

	var key []byte
	switch len(parts) {
	case 2:
		key = c.legacyKey
	case 3:
		if !strings.HasPrefix(parts[0], "v") {
			return "", ErrMalformedCipher
		}
		version, err := strconv.Atoi(parts[0][1:])
		if err != nil {
			return "", ErrMalformedCipher
		}
		versioned, ok := c.keys[version]
		if !ok {
			return "", fmt.Errorf("%w: v%d", ErrUnknownKeyVersion, version)
		}
		key = versioned
		parts = parts[1:]
	default:
		return "", ErrMalformedCipher
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != aes.BlockSize {
		return "", ErrMalformedCipher
	}
	ct, err := hex.DecodeString(parts[1])
	if err != nil || len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return "", ErrMalformedCipher
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	plain := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ct)

	unpadded, err := pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(unpadded), nil
}

func deriveKey(secret string) ([]byte, error) {
	key := make([]byte, 32)
	reader := hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo))
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, err
	}
	return key, nil
}

// truncateKey reproduces the original 32-byte truncate-or-pad derivation so
// pre-versioning ciphertexts stay readable.
func truncateKey(secret string) []byte {
	key := make([]byte, 32)
	copy(key, secret)
	return key
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+padding)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(padding)
	}
	return out
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrMalformedCipher
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize || padding > len(data) {
		return nil, ErrMalformedCipher
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, ErrMalformedCipher
		}
	}
	return data[:len(data)-padding], nil
}
