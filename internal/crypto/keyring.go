package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
)

// Keyring stores the database encryption key outside the database.
type Keyring interface {
	GetKey() (string, error)
	SetKey(password string) error
	DeleteKey() error
	IsAvailable() bool
}

const (
	ServiceName = "timesheet"
	KeyName     = "db-encryption-key"

	// EnvKey overrides every platform keyring when set
	EnvKey = "TIMESHEET_DB_KEY"
)

// NewKeyring returns the env override when TIMESHEET_DB_KEY is set and the
// platform keyring otherwise.
func NewKeyring() Keyring {
	if os.Getenv(EnvKey) != "" {
		return &envKeyring{}
	}
	return newPlatformKeyring()
}

// GenerateKey returns a random 256 bit key, hex encoded.
func GenerateKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate encryption key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
