package oci

import (
	"context"
	"fmt"
	"io"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/v1/remote"
)

// Layer is one typed chunk of artifact content within an image package.
type Layer struct {
	Data      []byte
	MediaType string
}

// Package is the unit of transfer between the workflows and a registry:
// one or more layers plus the manifest digest the registry reports.
type Package struct {
	Layers []Layer

	// Digest is the manifest digest reported by the registry. May be empty
	// when the transport cannot determine it.
	Digest string
}

// Content returns the package's layer payloads concatenated in order. The
// workflows treat all layers of an image as a single logical payload.
func (p *Package) Content() []byte {
	if len(p.Layers) == 1 {
		return p.Layers[0].Data
	}
	var size int
	for _, l := range p.Layers {
		size += len(l.Data)
	}
	buf := make([]byte, 0, size)
	for _, l := range p.Layers {
		buf = append(buf, l.Data...)
	}
	return buf
}

// Registry abstracts the OCI distribution protocol behind the two
// operations the workflows need. Implementations other than the remote one
// back the workflow tests.
type Registry interface {
	// Pull downloads the image at ref, restricted to the accepted layer
	// media types.
	Pull(ctx context.Context, ref Reference, auth authn.Authenticator, acceptedMediaTypes []string) (*Package, error)

	// Push uploads pkg to ref with the given config blob and returns the
	// manifest digest of the pushed image.
	Push(ctx context.Context, ref Reference, pkg *Package, config []byte, configMediaType string, auth authn.Authenticator) (string, error)
}

// ResolveCredentials derives registry credentials from optional inputs:
// basic auth when both a user and password are supplied, anonymous access
// otherwise. Credentials are never persisted.
func ResolveCredentials(user, password string) authn.Authenticator {
	if user != "" && password != "" {
		return authn.FromConfig(authn.AuthConfig{
			Username: user,
			Password: password,
		})
	}
	return authn.Anonymous
}

// RemoteRegistry talks to OCI distribution registries.
type RemoteRegistry struct{}

// NewRemoteRegistry returns the production registry transport.
func NewRemoteRegistry() *RemoteRegistry {
	return &RemoteRegistry{}
}

// Pull downloads the image at ref. Every layer's media type must be in the
// accepted set; the layer payloads are fully read into memory.
func (r *RemoteRegistry) Pull(ctx context.Context, ref Reference, auth authn.Authenticator, acceptedMediaTypes []string) (*Package, error) {
	img, err := remote.Image(ref.remoteRef(), remote.WithContext(ctx), remote.WithAuth(auth))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ref, err)
	}

	manifest, err := img.Manifest()
	if err != nil {
		return nil, fmt.Errorf("read manifest for %s: %w", ref, err)
	}
	if len(manifest.Layers) == 0 {
		return nil, fmt.Errorf("image %s has no layers", ref)
	}

	layers, err := img.Layers()
	if err != nil {
		return nil, fmt.Errorf("read layers for %s: %w", ref, err)
	}

	pkg := &Package{Layers: make([]Layer, 0, len(layers))}
	for i, l := range layers {
		mediaType := string(manifest.Layers[i].MediaType)
		if !acceptedMediaType(mediaType, acceptedMediaTypes) {
			return nil, fmt.Errorf("image %s layer %d has unexpected media type %q", ref, i, mediaType)
		}
		rc, err := l.Uncompressed()
		if err != nil {
			return nil, fmt.Errorf("open layer %d of %s: %w", i, ref, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read layer %d of %s: %w", i, ref, err)
		}
		pkg.Layers = append(pkg.Layers, Layer{Data: data, MediaType: mediaType})
	}

	if h, err := img.Digest(); err == nil {
		pkg.Digest = h.String()
	}
	return pkg, nil
}

// Push uploads pkg to ref as an OCI image whose config blob is the caller's
// config bytes under configMediaType.
func (r *RemoteRegistry) Push(ctx context.Context, ref Reference, pkg *Package, config []byte, configMediaType string, auth authn.Authenticator) (string, error) {
	img := newArtifactImage(pkg, config, configMediaType)

	if err := remote.Write(ref.remoteRef(), img, remote.WithContext(ctx), remote.WithAuth(auth)); err != nil {
		return "", fmt.Errorf("push to %s: %w", ref, err)
	}

	h, err := img.Digest()
	if err != nil {
		return "", fmt.Errorf("compute digest for %s: %w", ref, err)
	}
	return h.String(), nil
}

func acceptedMediaType(mediaType string, acceptedMediaTypes []string) bool {
	if len(acceptedMediaTypes) == 0 {
		return true
	}
	for _, mt := range acceptedMediaTypes {
		if mediaType == mt {
			return true
		}
	}
	return false
}
