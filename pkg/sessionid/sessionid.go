// Package sessionid issues opaque session identifiers with enough entropy
// that live tokens cannot be guessed or enumerated.
package sessionid

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
)

// tokenBytes is the raw entropy per identifier. 32 bytes (256 bits) encodes
// to a fixed 43-character base64 raw-URL string.
const tokenBytes = 32

// Length is the length of every identifier returned by New.
const Length = 43

// ErrGeneration indicates the OS entropy source failed.
var ErrGeneration = errors.New("sessionid: generation failed")

// New returns a cryptographically secure session identifier.
func New() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
