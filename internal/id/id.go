// Package id generates prefixed entity ids.
package id

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Entity prefixes.
const (
	Library  = "lib"
	Item     = "li"
	Book     = "book"
	Podcast  = "pod"
	Episode  = "ep"
	Author   = "aut"
	Series   = "ser"
	User     = "usr"
	Feed     = "feed"
	Progress = "prog"
)

// Generate creates a prefixed unique ID using NanoID
// Format: prefix-nanoid (e.g., "lib-V1StGXR8_Z5jdHi6B-myT")
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
// Use it for fixtures and seeding, where failure should stop the program.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// Prefix returns the entity prefix of a generated id, or "" when the id
// carries none.
func Prefix(id string) string {
	prefix, _, found := strings.Cut(id, "-")
	if !found {
		return ""
	}
	return prefix
}
