package oci

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/google/go-containerregistry/pkg/v1/static"
	"github.com/google/go-containerregistry/pkg/v1/types"
)

// artifactImage implements v1.Image for an artifact upload. The standard
// image builders only accept structured config files; artifact pushes need
// the raw config bytes preserved verbatim under a custom media type, so the
// interface is implemented directly.
type artifactImage struct {
	layers          []v1.Layer
	config          []byte
	configMediaType types.MediaType
}

func newArtifactImage(pkg *Package, config []byte, configMediaType string) *artifactImage {
	layers := make([]v1.Layer, 0, len(pkg.Layers))
	for _, l := range pkg.Layers {
		layers = append(layers, static.NewLayer(l.Data, types.MediaType(l.MediaType)))
	}
	return &artifactImage{
		layers:          layers,
		config:          config,
		configMediaType: types.MediaType(configMediaType),
	}
}

// Layers returns the layers of the image.
func (i *artifactImage) Layers() ([]v1.Layer, error) {
	return i.layers, nil
}

// MediaType returns the manifest media type.
func (i *artifactImage) MediaType() (types.MediaType, error) {
	return types.OCIManifestSchema1, nil
}

// Size returns the size of the serialized manifest.
func (i *artifactImage) Size() (int64, error) {
	raw, err := i.RawManifest()
	if err != nil {
		return 0, err
	}
	return int64(len(raw)), nil
}

// ConfigName returns the digest of the config blob.
func (i *artifactImage) ConfigName() (v1.Hash, error) {
	h := sha256.Sum256(i.config)
	return v1.Hash{Algorithm: "sha256", Hex: hex.EncodeToString(h[:])}, nil
}

// ConfigFile returns a structural placeholder; RawConfigFile carries the
// actual config bytes.
func (i *artifactImage) ConfigFile() (*v1.ConfigFile, error) {
	return &v1.ConfigFile{}, nil
}

// RawConfigFile returns the config blob exactly as supplied by the caller.
func (i *artifactImage) RawConfigFile() ([]byte, error) {
	return i.config, nil
}

// Digest returns the digest of the serialized manifest.
func (i *artifactImage) Digest() (v1.Hash, error) {
	raw, err := i.RawManifest()
	if err != nil {
		return v1.Hash{}, err
	}
	h := sha256.Sum256(raw)
	return v1.Hash{Algorithm: "sha256", Hex: hex.EncodeToString(h[:])}, nil
}

// Manifest returns the image manifest.
func (i *artifactImage) Manifest() (*v1.Manifest, error) {
	configDigest, err := i.ConfigName()
	if err != nil {
		return nil, err
	}

	m := &v1.Manifest{
		SchemaVersion: 2,
		MediaType:     types.OCIManifestSchema1,
		Config: v1.Descriptor{
			MediaType: i.configMediaType,
			Size:      int64(len(i.config)),
			Digest:    configDigest,
		},
	}

	for _, l := range i.layers {
		digest, err := l.Digest()
		if err != nil {
			return nil, err
		}
		size, err := l.Size()
		if err != nil {
			return nil, err
		}
		mediaType, err := l.MediaType()
		if err != nil {
			return nil, err
		}
		m.Layers = append(m.Layers, v1.Descriptor{
			MediaType: mediaType,
			Size:      size,
			Digest:    digest,
		})
	}
	return m, nil
}

// RawManifest returns the serialized manifest.
func (i *artifactImage) RawManifest() ([]byte, error) {
	m, err := i.Manifest()
	if err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

// LayerByDigest returns the layer with the given digest.
func (i *artifactImage) LayerByDigest(h v1.Hash) (v1.Layer, error) {
	for _, l := range i.layers {
		digest, err := l.Digest()
		if err != nil {
			return nil, err
		}
		if digest == h {
			return l, nil
		}
	}
	return nil, fmt.Errorf("layer not found: %s", h)
}

// LayerByDiffID returns the layer with the given uncompressed digest.
func (i *artifactImage) LayerByDiffID(h v1.Hash) (v1.Layer, error) {
	for _, l := range i.layers {
		diffID, err := l.DiffID()
		if err != nil {
			return nil, err
		}
		if diffID == h {
			return l, nil
		}
	}
	return nil, fmt.Errorf("layer not found: %s", h)
}
