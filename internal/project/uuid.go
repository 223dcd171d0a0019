package project

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// uuidFileName holds the project's stable UUID inside the state directory.
const uuidFileName = "id"

// ReadUUID returns the project UUID persisted in stateDir, or "" if the file
// does not exist or is unreadable.
func ReadUUID(stateDir string) string {
	data, err := os.ReadFile(filepath.Join(stateDir, uuidFileName)) // #nosec G304 - controlled path
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// WriteUUID persists the project UUID as a single line in stateDir.
func WriteUUID(stateDir, uuid string) error {
	if err := os.MkdirAll(stateDir, 0o750); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(stateDir, uuidFileName), []byte(uuid+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing project uuid: %w", err)
	}
	return nil
}

// GenerateUUID produces a random version-4 UUID string.
func GenerateUUID() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	b[6] = (b[6] & 0x0f) | 0x40 // version 4
	b[8] = (b[8] & 0x3f) | 0x80 // RFC 4122 variant
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16]), nil
}
