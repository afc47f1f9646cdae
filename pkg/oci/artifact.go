package oci

import (
	"errors"
	"fmt"

	"github.com/wascc/wash/pkg/claims"
	"github.com/wascc/wash/pkg/par"
)

// Kind is the closed set of artifact kinds the registry workflows handle.
// New kinds require a code change, not configuration.
type Kind int

const (
	KindUnknown Kind = iota
	KindWasmModule
	KindProviderArchive
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindWasmModule:
		return "actor module"
	case KindProviderArchive:
		return "provider archive"
	default:
		return "unknown"
	}
}

// MediaType returns the layer media type artifacts of this kind are
// published under.
func (k Kind) MediaType() string {
	switch k {
	case KindWasmModule:
		return WasmMediaType
	case KindProviderArchive:
		return ProviderArchiveMediaType
	default:
		return ""
	}
}

// ConfigMediaType returns the config media type paired with this kind.
func (k Kind) ConfigMediaType() string {
	switch k {
	case KindWasmModule:
		return WasmConfigMediaType
	case KindProviderArchive:
		return ProviderArchiveConfigMediaType
	default:
		return ""
	}
}

// FileExtension returns the output file extension for this kind.
func (k Kind) FileExtension() string {
	switch k {
	case KindWasmModule:
		return WasmFileExtension
	case KindProviderArchive:
		return ProviderArchiveFileExtension
	default:
		return ""
	}
}

// A probe reports whether raw qualifies as a particular artifact kind.
type probe func(raw []byte) error

// candidate pairs a kind with its probe.
type candidate struct {
	kind  Kind
	check probe
}

// Classifier determines the kind of an opaque artifact by running a fixed
// sequence of probes and returning the first kind whose probe accepts.
//
// The order is a design commitment: the actor module probe runs before the
// provider archive probe, so content that could structurally satisfy both
// formats is always classified as an actor module.
type Classifier struct {
	order []candidate
}

// NewClassifier returns a classifier wired to the claims extractor and the
// provider archive codec.
func NewClassifier() *Classifier {
	return &Classifier{order: []candidate{
		{KindWasmModule, probeActorModule},
		{KindProviderArchive, probeProviderArchive},
	}}
}

// Classify returns the artifact kind of raw. label is used only for
// diagnostics when no probe accepts.
func (c *Classifier) Classify(raw []byte, label string) (Kind, error) {
	for _, cand := range c.order {
		if err := cand.check(raw); err == nil {
			return cand.kind, nil
		}
	}
	return KindUnknown, fmt.Errorf("%w: %s", ErrUnsupportedArtifact, label)
}

// probeActorModule accepts WASM modules that carry embedded capability
// claims. A structurally valid module without claims is not a qualifying
// actor module and is rejected.
func probeActorModule(raw []byte) error {
	token, err := claims.ExtractFromModule(raw)
	if err != nil {
		return err
	}
	if token == nil {
		return errors.New("no capability claims embedded in module")
	}
	return nil
}

func probeProviderArchive(raw []byte) error {
	_, err := par.Load(raw)
	return err
}
