// Package crypto implements server-side password hashing and verification.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/and161185/passvault/internal/errs"
)

// Argon2id parameters (tuned for server-side hashing).
const (
	argonTime    uint32 = 3         // iterations
	argonMemory  uint32 = 64 * 1024 // 64 MB
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32
	argonSaltLen        = 16
)

const phcPrefix = "$argon2id$"

// Accepted cost range, shared by new hashes, stored hashes and configuration.
const (
	MaxTime      uint32 = 64
	MinMemoryKiB uint32 = 8
	MaxMemoryKiB uint32 = 1 << 20 // 1 GiB
	maxKeyLen           = 1 << 10
	maxSaltLen          = 1 << 10
)

// Params controls the argon2id cost. Stored hashes embed their own params,
// so changing them only affects newly created hashes.
type Params struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
	KeyLen    uint32
	SaltLen   int
}

// DefaultParams returns the production cost settings.
func DefaultParams() Params {
	return Params{
		Time:      argonTime,
		MemoryKiB: argonMemory,
		Threads:   argonThreads,
		KeyLen:    argonKeyLen,
		SaltLen:   argonSaltLen,
	}
}

// Validate reports whether p lies within the accepted cost range.
func (p Params) Validate() error {
	switch {
	case p.Time == 0 || p.Time > MaxTime:
		return fmt.Errorf("argon2 time %d out of range [1, %d]", p.Time, MaxTime)
	case p.MemoryKiB < MinMemoryKiB || p.MemoryKiB > MaxMemoryKiB:
		return fmt.Errorf("argon2 memory %d KiB out of range [%d, %d]", p.MemoryKiB, MinMemoryKiB, MaxMemoryKiB)
	case p.Threads == 0:
		return errors.New("argon2 threads must be at least 1")
	case p.KeyLen == 0 || p.KeyLen > maxKeyLen:
		return fmt.Errorf("argon2 key length %d out of range", p.KeyLen)
	case p.SaltLen <= 0 || p.SaltLen > maxSaltLen:
		return fmt.Errorf("argon2 salt length %d out of range", p.SaltLen)
	}
	return nil
}

// Hasher produces and verifies self-describing argon2id hashes.
type Hasher struct {
	params Params
}

// NewHasher constructs a hasher with the given cost.
func NewHasher(p Params) *Hasher { return &Hasher{params: p} }

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// Hash returns the PHC string $argon2id$v=19$m=..,t=..,p=..$salt$digest for password.
// A fresh salt is drawn on every call.
func (h *Hasher) Hash(password string) (string, error) {
	if err := h.params.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrInternal, err)
	}
	salt, err := RandBytes(h.params.SaltLen)
	if err != nil {
		return "", fmt.Errorf("%w: salt: %v", errs.ErrInternal, err)
	}
	digest := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.MemoryKiB, h.params.Threads, h.params.KeyLen)

	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		phcPrefix,
		argon2.Version,
		h.params.MemoryKiB,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	), nil
}

// Verify reports whether password matches the encoded hash.
// A corrupt or foreign hash does not verify.
func (h *Hasher) Verify(password, encoded string) bool {
	p, salt, expected, err := decode(encoded)
	if err != nil {
		return false
	}
	got := argon2.IDKey([]byte(password), salt, p.Time, p.MemoryKiB, p.Threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(got, expected) == 1
}

// CheckEncoded reports whether encoded is a well-formed argon2id hash
// within the accepted cost range.
func CheckEncoded(encoded string) error {
	_, _, _, err := decode(encoded)
	return err
}

// decode parses a PHC argon2id string into its params, salt and digest.
func decode(encoded string) (Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return Params{}, nil, nil, errors.New("invalid hash format")
	}
	if parts[1] != "argon2id" {
		return Params{}, nil, nil, fmt.Errorf("unsupported hash algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return Params{}, nil, nil, err
	}
	if version != argon2.Version {
		return Params{}, nil, nil, fmt.Errorf("unsupported argon2 version: %d", version)
	}

	var memory, iterations, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return Params{}, nil, nil, err
	}
	if threads > 255 {
		return Params{}, nil, nil, errors.New("invalid argon2 params")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, err
	}
	digest, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return Params{}, nil, nil, err
	}

	p := Params{Time: iterations, MemoryKiB: memory, Threads: uint8(threads), KeyLen: uint32(len(digest)), SaltLen: len(salt)}
	if err := p.Validate(); err != nil {
		return Params{}, nil, nil, err
	}
	return p, salt, digest, nil
}
