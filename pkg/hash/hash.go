package hash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidHash         = errors.New("hash: invalid hash format")
	ErrIncompatibleVersion = errors.New("hash: incompatible argon2 version")
	ErrMismatch            = errors.New("hash: password does not match")
)

// Argon2Params tunes argon2id. Memory is in KiB.
type Argon2Params struct {
	Memory  uint32
	Time    uint32
	Threads uint8
	SaltLen uint32
	KeyLen  uint32
}

// DefaultArgon2 follows the OWASP baseline for argon2id.
var DefaultArgon2 = Argon2Params{
	Memory:  64 * 1024,
	Time:    1,
	Threads: 4,
	SaltLen: 16,
	KeyLen:  32,
}

func (p Argon2Params) valid() bool {
	return p.Memory >= 8*uint32(p.Threads) && p.Time > 0 && p.Threads > 0 && p.SaltLen >= 8 && p.KeyLen >= 16
}

// Default hashes password with bcrypt at bcrypt.DefaultCost.
func Default(password string) (string, error) {
	return Bcrypt(password, bcrypt.DefaultCost)
}

// Bcrypt hashes password with the given cost. A cost below bcrypt.MinCost
// uses bcrypt.DefaultCost.
func Bcrypt(password string, cost int) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash: bcrypt: %w", err)
	}
	return string(h), nil
}

// Argon2 hashes password with argon2id and returns a PHC string:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
//
// Unusable params fall back to bcrypt at the default cost.
func Argon2(password string, p Argon2Params) (string, error) {
	if !p.valid() {
		return Default(password)
	}

	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("hash: generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches hash. The algorithm is detected
// from the hash prefix.
func Verify(password, hash string) bool {
	return Check(password, hash) == nil
}

// Check is Verify returning ErrMismatch, or ErrInvalidHash for hashes it
// cannot read.
func Check(password, hash string) error {
	switch {
	case isBcrypt(hash):
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatch
		}
		if err != nil {
			return errors.Join(ErrInvalidHash, err)
		}
		return nil
	case strings.HasPrefix(hash, "$argon2id$"):
		p, salt, key, err := decodeArgon2(hash)
		if err != nil {
			return err
		}
		computed := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, uint32(len(key)))
		if subtle.ConstantTimeCompare(computed, key) != 1 {
			return ErrMismatch
		}
		return nil
	}
	return ErrInvalidHash
}

// NeedsRehash reports whether hash was produced with settings other than
// the package defaults: bcrypt.DefaultCost or DefaultArgon2.
func NeedsRehash(hash string) bool {
	switch {
	case isBcrypt(hash):
		cost, err := bcrypt.Cost([]byte(hash))
		return err != nil || cost != bcrypt.DefaultCost
	case strings.HasPrefix(hash, "$argon2id$"):
		p, _, key, err := decodeArgon2(hash)
		if err != nil {
			return true
		}
		return p.Memory != DefaultArgon2.Memory || p.Time != DefaultArgon2.Time ||
			p.Threads != DefaultArgon2.Threads || uint32(len(key)) != DefaultArgon2.KeyLen
	}
	return true
}

func isBcrypt(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$") || strings.HasPrefix(hash, "$2y$")
}

func decodeArgon2(encoded string) (Argon2Params, []byte, []byte, error) {
	var p Argon2Params

	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return p, nil, nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, ErrInvalidHash
	}
	if version != argon2.Version {
		return p, nil, nil, ErrIncompatibleVersion
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return p, nil, nil, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, ErrInvalidHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, ErrInvalidHash
	}
	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(key))
	return p, salt, key, nil
}
