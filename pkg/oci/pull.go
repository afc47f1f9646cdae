package oci

import (
	"context"
	"fmt"
	"os"
)

// ProgressFunc receives human-readable stage messages while a workflow
// runs. Implementations must not block.
type ProgressFunc func(message string)

func nopProgress(string) {}

// PullRequest carries everything one pull needs. Credentials come from the
// flags or their environment fallbacks; nothing is retained afterwards.
type PullRequest struct {
	// Ref is the artifact reference to pull.
	Ref string

	// User and Password enable basic auth when both are set.
	User     string
	Password string

	// Output is the destination path. Empty means the artifact name from
	// the reference plus the classified extension.
	Output string

	// Digest, when set, is verified against the registry-reported digest
	// before anything is written.
	Digest string

	// Insecure allows plain HTTP registry connections.
	Insecure bool

	// AllowLatest overrides the mutability policy for the "latest" tag.
	AllowLatest bool
}

// PullResult describes a completed pull.
type PullResult struct {
	// Path is the file the artifact was written to.
	Path string

	// Kind is the classified artifact kind.
	Kind Kind

	// Digest is the manifest digest reported by the registry, if any.
	Digest string
}

// Puller downloads, verifies, classifies, and persists one artifact per
// invocation.
type Puller struct {
	registry   Registry
	classifier *Classifier
	progress   ProgressFunc
}

// NewPuller returns a puller using the given transport.
func NewPuller(registry Registry) *Puller {
	return &Puller{
		registry:   registry,
		classifier: NewClassifier(),
		progress:   nopProgress,
	}
}

// OnProgress installs a stage-message callback.
func (p *Puller) OnProgress(fn ProgressFunc) {
	if fn != nil {
		p.progress = fn
	}
}

// Pull runs the pull workflow. Any failure aborts the whole operation; no
// output file exists unless every step before the final write succeeded.
func (p *Puller) Pull(ctx context.Context, req PullRequest) (*PullResult, error) {
	ref, err := ParseReference(req.Ref, req.Insecure)
	if err != nil {
		return nil, err
	}
	if err := CheckMutabilityPolicy(ref, req.AllowLatest); err != nil {
		return nil, err
	}

	auth := ResolveCredentials(req.User, req.Password)

	p.progress(fmt.Sprintf("Downloading %s ...", ref))
	pkg, err := p.registry.Pull(ctx, ref, auth, []string{
		ProviderArchiveMediaType,
		WasmMediaType,
	})
	if err != nil {
		return nil, err
	}

	p.progress(fmt.Sprintf("Validating %s ...", ref))
	if err := VerifyDigest(req.Digest, pkg.Digest); err != nil {
		return nil, err
	}

	artifact := pkg.Content()
	kind, err := p.classifier.Classify(artifact, ref.Repository())
	if err != nil {
		return nil, err
	}

	outfile := req.Output
	if outfile == "" {
		outfile = ref.ArtifactName() + kind.FileExtension()
	}

	// Single truncating write, deliberately without a temp-file-and-rename
	// step: an interrupted write can leave a truncated file.
	if err := os.WriteFile(outfile, artifact, 0644); err != nil {
		return nil, fmt.Errorf("write %s: %w", outfile, err)
	}

	return &PullResult{Path: outfile, Kind: kind, Digest: pkg.Digest}, nil
}
