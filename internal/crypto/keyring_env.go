package crypto

import (
	"errors"
	"fmt"
	"os"
)

// envKeyring reads the key from TIMESHEET_DB_KEY and cannot persist it.
type envKeyring struct{}

func (k *envKeyring) GetKey() (string, error) {
	key := os.Getenv(EnvKey)
	if key == "" {
		return "", fmt.Errorf("%s environment variable not set", EnvKey)
	}
	return key, nil
}

func (k *envKeyring) SetKey(password string) error {
	if password == "" {
		return errors.New("password cannot be empty")
	}
	if os.Getenv(EnvKey) == password {
		return nil
	}
	return fmt.Errorf("keyring not available: export %s='%s'", EnvKey, password)
}

func (k *envKeyring) DeleteKey() error {
	return fmt.Errorf("keyring not available: unset %s manually", EnvKey)
}

func (k *envKeyring) IsAvailable() bool {
	return os.Getenv(EnvKey) != ""
}
