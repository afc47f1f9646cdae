package oci

import (
	"fmt"
	"strings"

	"github.com/opencontainers/go-digest"
)

// NormalizeDigest reformats a user-supplied digest so it can be compared
// against registry-reported digests: a bare hex digest gains the canonical
// algorithm prefix, an already-prefixed digest is returned unchanged.
// Normalization is idempotent.
func NormalizeDigest(d string) string {
	if d == "" || strings.HasPrefix(d, digest.Canonical.String()+":") {
		return d
	}
	return digest.NewDigestFromEncoded(digest.Canonical, d).String()
}

// VerifyDigest checks a pulled image's integrity. With no expected digest
// the check trivially passes. Otherwise expected is normalized and compared
// against reported by exact string equality.
func VerifyDigest(expected, reported string) error {
	if expected == "" {
		return nil
	}
	want := NormalizeDigest(expected)
	if reported != "" && want != reported {
		return fmt.Errorf("%w: want %s, registry reported %s", ErrDigestMismatch, want, reported)
	}
	return nil
}
