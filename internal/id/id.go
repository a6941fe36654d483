// Package id generates the short identifiers that tag one sync invocation in the logs.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	runAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	runLength   = 10
)

// Generate creates a prefixed identifier: prefix-xxxxxxxxxx.
// The random part is lowercase alphanumeric so it survives the e-reader's
// log viewer and grep alike.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.Generate(runAlphabet, runLength)
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// RunID returns the identifier of a single CLI invocation.
// Falls back to a fixed marker when the system has no entropy available;
// a missing correlation id must never stop a sync.
func RunID() string {
	id, err := Generate("run")
	if err != nil {
		return "run-unknown"
	}
	return id
}
