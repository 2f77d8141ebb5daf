package util

import (
	"crypto/rand"
	"encoding/hex"
)

// NewReqID generates a short (16 hex character) identifier for
// correlating a request across log lines.
func NewReqID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
