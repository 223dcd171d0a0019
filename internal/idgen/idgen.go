// Package idgen generates collision-resistant hash-based issue IDs.
package idgen

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"
)

// base36Alphabet is the character set for base36 encoding (0-9, a-z).
const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// HashLength is the number of base36 characters in an ID suffix.
const HashLength = 6

// MaxRetries bounds how many times Generate retries on collision.
const MaxRetries = 10

// ErrIDCollision is returned when Generate exhausts its retry budget without
// producing an ID that avoids the caller's existing set. Callers can use it
// to tell a transient collision storm apart from other faults.
var ErrIDCollision = errors.New("unable to generate unique ID")

// Generator produces issue IDs. The zero value is not usable; call New.
// Clock and Rand are injectable for deterministic tests.
type Generator struct {
	Clock   func() time.Time
	Rand    io.Reader
	Retries int
}

// New returns a Generator backed by the wall clock and crypto/rand.
func New() *Generator {
	return &Generator{
		Clock:   time.Now,
		Rand:    rand.Reader,
		Retries: MaxRetries,
	}
}

// EncodeBase36 converts a byte slice to a base36 string of the given length,
// zero-padded on the left and truncated to the least significant digits.
func EncodeBase36(data []byte, length int) string {
	num := new(big.Int).SetBytes(data)

	base := big.NewInt(36)
	zero := big.NewInt(0)
	mod := new(big.Int)

	chars := make([]byte, 0, length)
	for num.Cmp(zero) > 0 {
		num.DivMod(num, base, mod)
		chars = append(chars, base36Alphabet[mod.Int64()])
	}

	var result strings.Builder
	for i := len(chars) - 1; i >= 0; i-- {
		result.WriteByte(chars[i])
	}

	str := result.String()
	if len(str) < length {
		str = strings.Repeat("0", length-len(str)) + str
	}
	if len(str) > length {
		str = str[len(str)-length:]
	}
	return str
}

// Generate creates an ID of the form "{project}-{6 base36 chars}".
//
// Entropy for each attempt combines the issue title, a nanosecond clock
// reading, and 16 random bytes, hashed with SHA-256; the first 32 bits of
// the digest become the base36 suffix. Attempts that collide with existing
// are retried with fresh entropy up to the retry budget.
func (g *Generator) Generate(title, project string, existing map[string]struct{}) (string, error) {
	for attempt := 0; attempt < g.Retries; attempt++ {
		entropy := make([]byte, 16)
		if _, err := io.ReadFull(g.Rand, entropy); err != nil {
			return "", fmt.Errorf("reading random bytes: %w", err)
		}

		content := fmt.Sprintf("%s|%d|%x", title, g.Clock().UnixNano(), entropy)
		hash := sha256.Sum256([]byte(content))

		id := fmt.Sprintf("%s-%s", project, EncodeBase36(hash[:4], HashLength))
		if _, taken := existing[id]; !taken {
			return id, nil
		}
	}

	return "", fmt.Errorf("project %q after %d attempts: %w", project, g.Retries, ErrIDCollision)
}

// Generate creates an ID using the default wall-clock generator.
func Generate(title, project string, existing map[string]struct{}) (string, error) {
	return New().Generate(title, project, existing)
}
