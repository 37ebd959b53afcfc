package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultSecretsDir - стандартный путь Docker Secrets.
const DefaultSecretsDir = "/run/secrets"

// SecretsDir возвращает каталог секретов: SECRETS_DIR или путь по умолчанию.
func SecretsDir() string {
	if dir := os.Getenv("SECRETS_DIR"); dir != "" {
		return dir
	}
	return DefaultSecretsDir
}

// ReadSecret читает секрет из файла в каталоге секретов.
func ReadSecret(secretName string) (string, error) {
	filePath := filepath.Join(SecretsDir(), secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file %s: %w", filePath, err)
	}
	secret := strings.TrimSpace(string(secretBytes))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", filePath)
	}
	return secret, nil
}
