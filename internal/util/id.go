package util

import (
	"crypto/rand"
	"encoding/hex"
)

const idBytes = 12

// NewID returns a short random hex id, used for request correlation.
func NewID() string {
	buf := make([]byte, idBytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(buf)
}
