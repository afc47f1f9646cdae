package oci

import (
	"fmt"
	"path"

	"github.com/google/go-containerregistry/pkg/name"
)

// Reference identifies one artifact in a registry: host, repository path,
// and a tag or digest. Immutable once parsed.
type Reference struct {
	ref name.Reference
}

// ParseReference parses s into a registry reference. A reference without a
// tag resolves to the default tag. With insecure set, the registry is
// contacted over plain HTTP.
func ParseReference(s string, insecure bool) (Reference, error) {
	var opts []name.Option
	if insecure {
		opts = append(opts, name.Insecure)
	}
	ref, err := name.ParseReference(s, opts...)
	if err != nil {
		return Reference{}, fmt.Errorf("%w: %q: %v", ErrInvalidReference, s, err)
	}
	return Reference{ref: ref}, nil
}

// Tag returns the reference's tag. ok is false for digest-pinned
// references, which carry no tag at all.
func (r Reference) Tag() (tag string, ok bool) {
	if t, isTag := r.ref.(name.Tag); isTag {
		return t.TagStr(), true
	}
	return "", false
}

// Repository returns the repository path within the registry, without the
// registry host.
func (r Reference) Repository() string {
	return r.ref.Context().RepositoryStr()
}

// ArtifactName returns the last segment of the repository path, the default
// base name for a pulled artifact.
func (r Reference) ArtifactName() string {
	return path.Base(r.Repository())
}

// String returns the fully qualified reference.
func (r Reference) String() string {
	return r.ref.Name()
}

func (r Reference) remoteRef() name.Reference {
	return r.ref
}
