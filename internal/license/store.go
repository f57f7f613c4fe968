package license

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/scrypt"

	"madaris/pkg/contracts/domain"
)

// The store secret is a build-time constant so every install reads the same
// file format. This is tamper detection, not confidentiality against a
// determined local attacker.
const (
	storeSecret = "madaris-license-store-v1:9f4c7a1e8d2b5036"
	storeSalt   = "madaris-license-salt-v1"
)

// storeMagic prefixes the file so a foreign file fails fast.
var storeMagic = []byte("MDL1")

var (
	storeKeyOnce sync.Once
	storeKey     []byte
	storeKeyErr  error
)

// deriveStoreKey derives the AES-256 key from the constant secret. The salt
// is fixed on purpose: the key must be identical across installs.
func deriveStoreKey() ([]byte, error) {
	storeKeyOnce.Do(func() {
		storeKey, storeKeyErr = scrypt.Key([]byte(storeSecret), []byte(storeSalt), 32768, 8, 1, 32)
	})
	return storeKey, storeKeyErr
}

// Store encrypts and decrypts the local activation record at a fixed path.
type Store struct {
	path string
}

// NewStore creates a store bound to the given license file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the license file path.
func (s *Store) Path() string {
	return s.path
}

// Read loads the activation record. It returns (false, nil, nil) when the
// file is missing, (true, nil, nil) when present but undecryptable, and
// (true, record, nil) on success. An undecryptable file is treated exactly
// like a missing one by the validator; only genuine I/O trouble surfaces
// as an error.
func (s *Store) Read() (bool, *domain.LicenseRecord, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, fmt.Errorf("failed to read license file: %w", err)
	}

	plaintext, err := decryptRecord(data)
	if err != nil {
		slog.Warn("license file present but undecryptable",
			slog.String("path", s.path),
			slog.String("error", err.Error()),
		)
		return true, nil, nil
	}

	var record domain.LicenseRecord
	if err := json.Unmarshal(plaintext, &record); err != nil {
		slog.Warn("license file decrypted but malformed",
			slog.String("path", s.path),
			slog.String("error", err.Error()),
		)
		return true, nil, nil
	}
	return true, &record, nil
}

// Write encrypts and persists the record atomically (temp file + rename).
// The JSON field order is stable: it follows the struct declaration.
func (s *Store) Write(record *domain.LicenseRecord) error {
	plaintext, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode license record: %w", err)
	}

	ciphertext, err := encryptRecord(plaintext)
	if err != nil {
		return fmt.Errorf("failed to encrypt license record: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create license directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".license-*")
	if err != nil {
		return fmt.Errorf("failed to create temp license file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(ciphertext); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp license file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp license file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace license file: %w", err)
	}

	slog.Info("license record written",
		slog.String("path", s.path),
		slog.String("activation_code_prefix", prefixOf(record.ActivationCode)),
	)
	return nil
}

// Delete removes the license file; a missing file is not an error.
func (s *Store) Delete() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete license file: %w", err)
	}
	return nil
}

func encryptRecord(plaintext []byte) ([]byte, error) {
	key, err := deriveStoreKey()
	if err != nil {
		return nil, fmt.Errorf("key derivation failed: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := gcm.Seal(nil, nonce, plaintext, storeMagic)

	out := make([]byte, 0, len(storeMagic)+len(nonce)+len(sealed))
	out = append(out, storeMagic...)
	out = append(out, nonce...)
	out = append(out, sealed...)
	return out, nil
}

func decryptRecord(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, storeMagic) {
		return nil, fmt.Errorf("not a license file")
	}
	key, err := deriveStoreKey()
	if err != nil {
		return nil, fmt.Errorf("key derivation failed: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	body := data[len(storeMagic):]
	if len(body) < gcm.NonceSize() {
		return nil, fmt.Errorf("license file truncated")
	}
	nonce, sealed := body[:gcm.NonceSize()], body[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, sealed, storeMagic)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}
	return plaintext, nil
}

// prefixOf masks an activation code for logging.
func prefixOf(code string) string {
	if len(code) <= 4 {
		return code
	}
	return code[:4] + "…"
}
