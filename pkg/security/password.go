package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/angelmondragon/spesa/pkg/config"
)

// ErrInvalidHash signals a malformed Argon2id hash string.
var ErrInvalidHash = errors.New("invalid argon2id hash")

// ArgonParams are the Argon2id cost parameters embedded in every hash.
type ArgonParams struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

// Hasher hashes and verifies the devapi user passwords.
type Hasher struct {
	params ArgonParams
}

func NewHasher(cfg config.PasswordConfig) *Hasher {
	return &Hasher{params: ArgonParams{
		Memory:      uint32(clamp(cfg.ArgonMemoryKB, 8, 512*1024)),
		Time:        uint32(clamp(cfg.ArgonTime, 1, 10)),
		Parallelism: uint8(clamp(cfg.ArgonParallelism, 1, 255)),
		SaltLen:     uint32(clamp(cfg.ArgonSaltLen, 8, 64)),
		KeyLen:      uint32(clamp(cfg.ArgonKeyLen, 16, 64)),
	}}
}

// Hash returns the PHC string $argon2id$v=19$m=..,t=..,p=..$salt$key.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	p := h.params
	key := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)
	return encodeHash(p, salt, key), nil
}

// Verify reports whether password matches encoded. The cost parameters
// embedded in encoded are used, not the hasher's own.
func (h *Hasher) Verify(password, encoded string) (bool, error) {
	d, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}
	p := d.params
	computed := argon2.IDKey([]byte(password), d.salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)
	return subtle.ConstantTimeCompare(d.key, computed) == 1, nil
}

// NeedsRehash reports whether encoded was produced with other cost
// parameters than the hasher's current ones.
func (h *Hasher) NeedsRehash(encoded string) bool {
	d, err := decodeHash(encoded)
	return err != nil || d.params != h.params
}

type decodedHash struct {
	params ArgonParams
	salt   []byte
	key    []byte
}

func encodeHash(p ArgonParams, salt, key []byte) string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
}

func decodeHash(encoded string) (decodedHash, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return decodedHash{}, ErrInvalidHash
	}
	if parts[2] != "v="+strconv.Itoa(argon2.Version) {
		return decodedHash{}, ErrInvalidHash
	}

	var d decodedHash
	for _, kv := range strings.Split(parts[3], ",") {
		name, raw, ok := strings.Cut(kv, "=")
		if !ok {
			return decodedHash{}, ErrInvalidHash
		}
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return decodedHash{}, ErrInvalidHash
		}
		switch name {
		case "m":
			d.params.Memory = uint32(v)
		case "t":
			d.params.Time = uint32(v)
		case "p":
			if v > 255 {
				return decodedHash{}, ErrInvalidHash
			}
			d.params.Parallelism = uint8(v)
		default:
			return decodedHash{}, ErrInvalidHash
		}
	}
	if d.params.Memory == 0 || d.params.Time == 0 || d.params.Parallelism == 0 {
		return decodedHash{}, ErrInvalidHash
	}

	var err error
	if d.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return decodedHash{}, ErrInvalidHash
	}
	if d.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(d.key) == 0 {
		return decodedHash{}, ErrInvalidHash
	}
	d.params.SaltLen = uint32(len(d.salt))
	d.params.KeyLen = uint32(len(d.key))
	return d, nil
}

func clamp(value, lo, hi int) int {
	return min(max(value, lo), hi)
}
