// Package secrets loads exchange API credentials from an encrypted file.
package secrets

import (
	"crypto/rand"
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24
)

// APIKeys exchange credentials.
type APIKeys struct {
	APIKey    string `json:"api_key"`
	SecretKey string `json:"secret_key"`
}

// Load reads the 32-byte key file and decrypts the credentials file sealed
// with Seal. The encrypted file is nonce || ciphertext.
func Load(keyPath, credsPath string) (APIKeys, error) {
	key, err := readKey(keyPath)
	if err != nil {
		return APIKeys{}, err
	}

	blob, err := os.ReadFile(credsPath)
	if err != nil {
		return APIKeys{}, errors.Wrapf(err, "read credentials %s", credsPath)
	}
	if len(blob) < nonceSize {
		return APIKeys{}, errors.Errorf("credentials file %s too short", credsPath)
	}

	var nonce [nonceSize]byte
	copy(nonce[:], blob[:nonceSize])

	plain, ok := secretbox.Open(nil, blob[nonceSize:], &nonce, &key)
	if !ok {
		return APIKeys{}, errors.New("credentials decryption failed: wrong key or corrupt file")
	}

	var keys APIKeys
	if err := json.Unmarshal(plain, &keys); err != nil {
		return APIKeys{}, errors.Wrap(err, "decode decrypted credentials")
	}
	if keys.APIKey == "" || keys.SecretKey == "" {
		return APIKeys{}, errors.New("decrypted credentials are incomplete")
	}
	return keys, nil
}

// Seal encrypts credentials with the key file and writes them to credsPath.
func Seal(keys APIKeys, keyPath, credsPath string) error {
	key, err := readKey(keyPath)
	if err != nil {
		return err
	}

	plain, err := json.Marshal(keys)
	if err != nil {
		return errors.Wrap(err, "encode credentials")
	}

	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return errors.Wrap(err, "generate nonce")
	}

	blob := secretbox.Seal(nonce[:], plain, &nonce, &key)
	if err := os.WriteFile(credsPath, blob, 0o600); err != nil {
		return errors.Wrapf(err, "write credentials %s", credsPath)
	}
	return nil
}

func readKey(path string) ([keySize]byte, error) {
	var key [keySize]byte
	raw, err := os.ReadFile(path)
	if err != nil {
		return key, errors.Wrapf(err, "read key file %s", path)
	}
	if len(raw) != keySize {
		return key, errors.Errorf("key file %s must hold exactly %d bytes, got %d", path, keySize, len(raw))
	}
	copy(key[:], raw)
	return key, nil
}
