package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"campus/config"
	"campus/internal/domain/service"

	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
)

// Default argon2id cost parameters, applied when the config leaves them unset.
const (
	defaultMemoryKiB   = 64 * 1024
	defaultTime        = 3
	defaultParallelism = 4

	saltLength = 16
	keyLength  = 32
)

// argon2Hasher implements service.PasswordHasher using argon2id. Hashes are
// stored in PHC string format so that cost parameters travel with the hash
// and can be raised without invalidating existing credentials.
type argon2Hasher struct {
	memoryKiB   uint32
	time        uint32
	parallelism uint8

	// dummyHash is a valid hash of a throwaway password, computed once at
	// construction. SimulateVerify runs a full verification against it so
	// lookups for nonexistent accounts cost the same as real mismatches.
	dummyHash string
}

// NewArgon2Hasher creates a password hasher with the configured cost
// parameters. A nil config selects the defaults.
func NewArgon2Hasher(cfg *config.Argon2Config) (service.PasswordHasher, error) {
	h := &argon2Hasher{
		memoryKiB:   defaultMemoryKiB,
		time:        defaultTime,
		parallelism: defaultParallelism,
	}
	if cfg != nil {
		if cfg.MemoryKiB > 0 {
			h.memoryKiB = cfg.MemoryKiB
		}
		if cfg.Time > 0 {
			h.time = cfg.Time
		}
		if cfg.Parallelism > 0 {
			h.parallelism = cfg.Parallelism
		}
	}

	dummy, err := h.Hash("timing-equalization-placeholder")
	if err != nil {
		return nil, errors.Wrap(err, "compute dummy hash")
	}
	h.dummyHash = dummy

	return h, nil
}

// Hash generates a salted argon2id hash in PHC string format.
func (h *argon2Hasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(err, "generate salt")
	}

	key := argon2.IDKey([]byte(password), salt, h.time, h.memoryKiB, h.parallelism, keyLength)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.memoryKiB,
		h.time,
		h.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return encoded, nil
}

// Verify compares a plaintext password against a stored PHC-format hash.
// Malformed hashes verify as false, never as an error; the cost parameters
// encoded in the hash are used, not the hasher's own.
func (h *argon2Hasher) Verify(password, hash string) bool {
	params, salt, key, err := decodeHash(hash)
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, params.time, params.memoryKiB, params.parallelism, uint32(len(key)))

	return subtle.ConstantTimeCompare(key, computed) == 1
}

// SimulateVerify burns a full verification against the dummy hash and
// discards the result.
func (h *argon2Hasher) SimulateVerify() {
	h.Verify("timing-equalization-probe", h.dummyHash)
}

type hashParams struct {
	memoryKiB   uint32
	time        uint32
	parallelism uint8
}

func decodeHash(encoded string) (*hashParams, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, nil, nil, errors.New("malformed argon2id hash")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, nil, errors.Wrap(err, "parse version")
	}
	if version != argon2.Version {
		return nil, nil, nil, errors.Errorf("unsupported argon2 version %d", version)
	}

	params := &hashParams{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.memoryKiB, &params.time, &params.parallelism); err != nil {
		return nil, nil, nil, errors.Wrap(err, "parse cost parameters")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "decode salt")
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "decode key")
	}
	if len(key) == 0 {
		return nil, nil, nil, errors.New("empty key")
	}

	return params, salt, key, nil
}
