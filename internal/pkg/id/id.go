package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// Len is the length of an encoded identifier.
const Len = ulid.EncodedSize

// New generates a new ULID string. ULIDs are lexicographically sortable
// by creation time and safe for use as DynamoDB partition keys.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// Valid reports whether s has the shape of an identifier produced by New.
func Valid(s string) bool {
	if len(s) != Len {
		return false
	}
	_, err := ulid.ParseStrict(s)
	return err == nil
}
