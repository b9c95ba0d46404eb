// Package cryptox implements password hashing for stored user credentials.
//
// Hashes are argon2id, encoded in the PHC string format:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
//
// where salt and key are unpadded standard base64. The parameters travel with
// the hash, so they can be raised later without invalidating old hashes.
package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/dzakcloud/internal/common"
	"golang.org/x/crypto/argon2"
)

// Params holds the argon2id cost parameters.
type Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

// DefaultParams are the parameters used for new hashes.
var DefaultParams = Params{Time: 1, Memory: 64 * 1024, Threads: 4, KeyLen: 32, SaltLen: 16}

var ErrMalformedHash = errors.New("malformed password hash")

var b64 = base64.RawStdEncoding

// HashPassword derives an argon2id hash of password with a fresh random salt.
func HashPassword(password []byte) (string, error) {
	return HashPasswordWithParams(password, DefaultParams)
}

// HashPasswordWithParams is HashPassword with explicit cost parameters.
func HashPasswordWithParams(password []byte, p Params) (string, error) {
	if p.KeyLen == 0 || p.SaltLen == 0 || p.Threads == 0 {
		return "", fmt.Errorf("invalid argon2 params: %+v", p)
	}
	salt := common.GenerateRandByteArray(int(p.SaltLen))
	key := argon2.IDKey(password, salt, p.Time, p.Memory, p.Threads, p.KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Threads,
		b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

// VerifyPassword reports whether password matches the encoded hash.
// A malformed hash returns ErrMalformedHash.
func VerifyPassword(password []byte, encoded string) (bool, error) {
	p, salt, key, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey(password, salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}

func decodeHash(encoded string) (Params, []byte, []byte, error) {
	var p Params

	parts := strings.Split(encoded, "$")
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, ErrMalformedHash
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return p, nil, nil, ErrMalformedHash
	}
	// argon2.IDKey panics on zero rounds or threads.
	if p.Memory == 0 || p.Time == 0 || p.Threads == 0 {
		return p, nil, nil, ErrMalformedHash
	}

	salt, err := b64.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return p, nil, nil, ErrMalformedHash
	}
	key, err := b64.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, ErrMalformedHash
	}

	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(key))
	return p, salt, key, nil
}

// DecodeLegacyPassword recovers the plaintext from the reversible base64
// encoding the previous system stored in users.json. If the value is not
// valid base64 it is returned unchanged.
func DecodeLegacyPassword(stored string) []byte {
	plain, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return []byte(stored)
	}
	return plain
}
