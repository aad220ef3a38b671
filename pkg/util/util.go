// Package util collects small cross-cutting helpers: ID generation and the
// JSON-marshal-or-panic helper used when building outbound messages that
// cannot fail to encode.
package util

import (
	"encoding/json"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// NewID generates a server-assigned entity id (player, connection, race).
func NewID() string {
	return uuid.New().String()
}

// Must simplifies call sites that marshal a struct they know is always
// marshalable.
func Must(data []byte, err error) json.RawMessage {
	if err != nil {
		panic(err)
	}
	return data
}

// NewWorldRand returns a PRNG seeded from the monotonic clock at startup.
// One instance is owned per world; nothing about its output needs to be
// unpredictable to a client.
func NewWorldRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
