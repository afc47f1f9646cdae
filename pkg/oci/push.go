package oci

import (
	"context"
	"fmt"
	"os"
)

// defaultConfig is uploaded when the caller supplies no config file.
var defaultConfig = []byte("{}")

// PushRequest carries everything one push needs.
type PushRequest struct {
	// Ref is the destination reference. It must carry a concrete tag.
	Ref string

	// Artifact is the path of the artifact file to upload.
	Artifact string

	// Config is an optional config file path. Empty means an empty JSON
	// object is uploaded instead.
	Config string

	// User and Password enable basic auth when both are set.
	User     string
	Password string

	// Insecure allows plain HTTP registry connections.
	Insecure bool

	// AllowLatest overrides the mutability policy for the "latest" tag.
	AllowLatest bool
}

// PushResult describes a completed push.
type PushResult struct {
	// Kind is the classified artifact kind.
	Kind Kind

	// Digest is the manifest digest of the pushed image.
	Digest string
}

// Pusher loads, classifies, packages, and uploads one artifact per
// invocation.
type Pusher struct {
	registry   Registry
	classifier *Classifier
	progress   ProgressFunc
}

// NewPusher returns a pusher using the given transport.
func NewPusher(registry Registry) *Pusher {
	return &Pusher{
		registry:   registry,
		classifier: NewClassifier(),
		progress:   nopProgress,
	}
}

// OnProgress installs a stage-message callback.
func (p *Pusher) OnProgress(fn ProgressFunc) {
	p.progress = fn
	if fn == nil {
		p.progress = nopProgress
	}
}

// Push runs the push workflow. Classification failures abort before any
// network call; upload failures are surfaced unmodified.
func (p *Pusher) Push(ctx context.Context, req PushRequest) (*PushResult, error) {
	ref, err := ParseReference(req.Ref, req.Insecure)
	if err != nil {
		return nil, err
	}
	// A push always needs a concrete destination tag; a digest-pinned
	// reference is an input error, not a policy violation.
	if _, ok := ref.Tag(); !ok {
		return nil, fmt.Errorf("%w: push requires a tagged reference", ErrInvalidReference)
	}
	if err := CheckMutabilityPolicy(ref, req.AllowLatest); err != nil {
		return nil, err
	}

	p.progress(fmt.Sprintf("Loading %s ...", req.Artifact))
	config := defaultConfig
	if req.Config != "" {
		config, err = os.ReadFile(req.Config)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", req.Config, err)
		}
	}
	artifact, err := os.ReadFile(req.Artifact)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", req.Artifact, err)
	}

	p.progress(fmt.Sprintf("Verifying %s ...", req.Artifact))
	kind, err := p.classifier.Classify(artifact, req.Artifact)
	if err != nil {
		return nil, err
	}

	pkg := &Package{
		Layers: []Layer{{Data: artifact, MediaType: kind.MediaType()}},
	}

	auth := ResolveCredentials(req.User, req.Password)

	p.progress(fmt.Sprintf("Pushing %s to %s ...", req.Artifact, ref))
	digest, err := p.registry.Push(ctx, ref, pkg, config, kind.ConfigMediaType(), auth)
	if err != nil {
		return nil, err
	}

	return &PushResult{Kind: kind, Digest: digest}, nil
}
