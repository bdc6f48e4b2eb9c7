package utils

import (
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateNanoIDWithPrefix returns an id like "evt_k3x9..." for event and
// record identifiers.
func GenerateNanoIDWithPrefix(prefix string, length int) string {
	id, err := gonanoid.Generate(idAlphabet, length)
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("%s_%s", prefix, id)
}

// GenerateEventID returns a unique, time-prefixed identifier for published
// events.
func GenerateEventID() string {
	id, err := gonanoid.Generate(idAlphabet, 12)
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("%d.%s", time.Now().UnixMicro(), id)
}
