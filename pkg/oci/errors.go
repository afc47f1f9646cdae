package oci

import "errors"

// Sentinel errors for registry operations. Transport and filesystem
// failures are wrapped with context instead of mapped onto sentinels.
var (
	// ErrInvalidReference is returned when a reference string does not
	// parse into a host/repository/tag triple, or when a push reference
	// lacks the concrete tag it requires.
	ErrInvalidReference = errors.New("oci: invalid reference")

	// ErrLatestTag is returned when an operation targets the floating
	// "latest" tag without the explicit override.
	ErrLatestTag = errors.New("oci: artifacts tagged 'latest' are prohibited (override with --allow-latest)")

	// ErrDigestMismatch is returned when the registry-reported digest does
	// not match the digest the caller expects.
	ErrDigestMismatch = errors.New("oci: image digest did not match provided digest")

	// ErrUnsupportedArtifact is returned when content qualifies as neither
	// a signed actor module nor a provider archive.
	ErrUnsupportedArtifact = errors.New("oci: unsupported artifact type")
)
