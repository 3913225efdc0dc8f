package utils

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// DefaultEncryptionKey is used when ENCRYPTION_KEY is not configured.
// Deployments must override it; startup logs a warning when it is in effect.
const DefaultEncryptionKey = "default-encryption-key-change-me"

// CipherVersion selects the on-disk format written by Encrypt.
type CipherVersion string

const (
	// CipherV1 is hex(iv):hex(ct) under a pad-and-truncate key.
	CipherV1 CipherVersion = "v1"
	// CipherV2 is v2:hex(iv):hex(ct) under an HKDF-SHA256 key.
	CipherV2 CipherVersion = "v2"
)

const (
	cipherKeySize = 32
	v2Prefix      = "v2:"
	hkdfInfo      = "gym-backend settings secret v2"
)

var (
	ErrMalformedCiphertext = errors.New("malformed ciphertext")
	ErrUnknownCipher       = errors.New("unknown cipher version")
)

// SecretCipher encrypts individual configuration values with AES-256-CBC.
// A fresh random IV is generated for every Encrypt call.
type SecretCipher struct {
	version    CipherVersion
	legacyKey  []byte
	derivedKey []byte
}

// NewSecretCipher builds a cipher for secret. An empty secret falls back to DefaultEncryptionKey.
func NewSecretCipher(secret string, version CipherVersion) (*SecretCipher, error) {
	if secret == "" {
		secret = DefaultEncryptionKey
	}
	if version == "" {
		version = CipherV1
	}
	if version != CipherV1 && version != CipherV2 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCipher, version)
	}

	derived := make([]byte, cipherKeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo)), derived); err != nil {
		return nil, fmt.Errorf("deriving settings key: %w", err)
	}

	return &SecretCipher{
		version:    version,
		legacyKey:  LegacyKey(secret),
		derivedKey: derived,
	}, nil
}

// LegacyKey right-pads secret with '0' to 32 bytes and truncates it to exactly 32.
func LegacyKey(secret string) []byte {
	key := []byte(secret)
	if len(key) < cipherKeySize {
		key = append(key, bytes.Repeat([]byte{'0'}, cipherKeySize-len(key))...)
	}
	return key[:cipherKeySize]
}

// Version reports the format Encrypt writes.
func (c *SecretCipher) Version() CipherVersion {
	return c.version
}

// Encrypt returns hex(iv):hex(ciphertext), prefixed with "v2:" for the v2 format.
func (c *SecretCipher) Encrypt(plaintext string) (string, error) {
	key := c.legacyKey
	if c.version == CipherV2 {
		key = c.derivedKey
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("creating cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("generating iv: %w", err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)

	encoded := hex.EncodeToString(iv) + ":" + hex.EncodeToString(out)
	if c.version == CipherV2 {
		return v2Prefix + encoded, nil
	}
	return encoded, nil
}

// Decrypt reverses Encrypt. Both formats are accepted whatever version the cipher writes.
func (c *SecretCipher) Decrypt(value string) (string, error) {
	key := c.legacyKey
	body := value
	if strings.HasPrefix(value, v2Prefix) {
		key = c.derivedKey
		body = strings.TrimPrefix(value, v2Prefix)
	}

	ivHex, ctHex, ok := strings.Cut(body, ":")
	if !ok {
		return "", fmt.Errorf("%w: missing separator", ErrMalformedCiphertext)
	}
	iv, err := hex.DecodeString(ivHex)
	if err != nil || len(iv) != aes.BlockSize {
		return "", fmt.Errorf("%w: bad iv", ErrMalformedCiphertext)
	}
	ct, err := hex.DecodeString(ctHex)
	if err != nil || len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: bad body", ErrMalformedCiphertext)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("creating cipher: %w", err)
	}
	plain := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ct)

	unpadded, err := pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(unpadded), nil
}

// LooksEncrypted is the "contains a colon" check used to decide whether a stored
// value should be decrypted. Plaintext containing ':' is misclassified.
func LooksEncrypted(value string) bool {
	return strings.Contains(value, ":")
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("%w: bad length", ErrMalformedCiphertext)
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, fmt.Errorf("%w: bad padding", ErrMalformedCiphertext)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: bad padding", ErrMalformedCiphertext)
		}
	}
	return data[:len(data)-n], nil
}
