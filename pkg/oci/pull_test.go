package oci

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPullWritesActorModule(t *testing.T) {
	module := actorModule(t)
	reg := &stubRegistry{pullPkg: &Package{
		Layers: []Layer{{Data: module, MediaType: WasmMediaType}},
		Digest: testDigest,
	}}

	var stages []string
	puller := NewPuller(reg)
	puller.OnProgress(func(msg string) { stages = append(stages, msg) })

	dir := t.TempDir()
	res, err := puller.Pull(context.Background(), PullRequest{
		Ref:    "registry.example.com/ns/echo:v1",
		Output: filepath.Join(dir, "echo.wasm"),
	})
	require.NoError(t, err)

	assert.Equal(t, KindWasmModule, res.Kind)
	assert.Equal(t, testDigest, res.Digest)

	written, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, module, written)

	// Both artifact media types are offered to the transport.
	assert.ElementsMatch(t, []string{WasmMediaType, ProviderArchiveMediaType}, reg.gotAccepted)

	require.Len(t, stages, 2)
	assert.Contains(t, stages[0], "Downloading")
	assert.Contains(t, stages[1], "Validating")
}

func TestPullDefaultOutputName(t *testing.T) {
	reg := &stubRegistry{pullPkg: &Package{
		Layers: []Layer{{Data: providerArchive(t), MediaType: ProviderArchiveMediaType}},
	}}

	// Default output lands in the working directory; run from a temp one.
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	res, err := NewPuller(reg).Pull(context.Background(), PullRequest{
		Ref: "registry.example.com/ns/httpserver:v2",
	})
	require.NoError(t, err)
	assert.Equal(t, "httpserver.par.gz", res.Path)
	assert.Equal(t, KindProviderArchive, res.Kind)
	assert.FileExists(t, filepath.Join(dir, "httpserver.par.gz"))
}

func TestPullConcatenatesLayers(t *testing.T) {
	module := actorModule(t)
	reg := &stubRegistry{pullPkg: &Package{
		Layers: []Layer{
			{Data: module[:10], MediaType: WasmMediaType},
			{Data: module[10:], MediaType: WasmMediaType},
		},
	}}

	out := filepath.Join(t.TempDir(), "echo.wasm")
	_, err := NewPuller(reg).Pull(context.Background(), PullRequest{
		Ref:    "registry.example.com/ns/echo:v1",
		Output: out,
	})
	require.NoError(t, err)

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, module, written)
}

func TestPullRejectsLatestBeforeNetwork(t *testing.T) {
	reg := &stubRegistry{}

	_, err := NewPuller(reg).Pull(context.Background(), PullRequest{
		Ref: "registry.example.com/ns/echo:latest",
	})
	assert.ErrorIs(t, err, ErrLatestTag)
	assert.Zero(t, reg.pulls, "policy violations must not reach the registry")
}

func TestPullAllowLatestOverride(t *testing.T) {
	reg := &stubRegistry{pullPkg: &Package{
		Layers: []Layer{{Data: actorModule(t), MediaType: WasmMediaType}},
	}}

	out := filepath.Join(t.TempDir(), "echo.wasm")
	_, err := NewPuller(reg).Pull(context.Background(), PullRequest{
		Ref:         "registry.example.com/ns/echo:latest",
		Output:      out,
		AllowLatest: true,
	})
	assert.NoError(t, err)
}

func TestPullMalformedReference(t *testing.T) {
	reg := &stubRegistry{}

	_, err := NewPuller(reg).Pull(context.Background(), PullRequest{
		Ref: "registry.example.com/ns/echo:!!bad!!",
	})
	assert.ErrorIs(t, err, ErrInvalidReference)
	assert.Zero(t, reg.pulls)
}

func TestPullNormalizesExpectedDigest(t *testing.T) {
	reg := &stubRegistry{pullPkg: &Package{
		Layers: []Layer{{Data: actorModule(t), MediaType: WasmMediaType}},
		Digest: testDigest,
	}}

	out := filepath.Join(t.TempDir(), "echo.wasm")
	_, err := NewPuller(reg).Pull(context.Background(), PullRequest{
		Ref: "registry.example.com/ns/echo:v1",
		// Bare hex: the sha256: prefix is inserted before comparison.
		Digest: "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08",
		Output: out,
	})
	require.NoError(t, err)
	assert.FileExists(t, out)
}

func TestPullDigestMismatchWritesNothing(t *testing.T) {
	reg := &stubRegistry{pullPkg: &Package{
		Layers: []Layer{{Data: actorModule(t), MediaType: WasmMediaType}},
		Digest: testDigest,
	}}

	out := filepath.Join(t.TempDir(), "echo.wasm")
	_, err := NewPuller(reg).Pull(context.Background(), PullRequest{
		Ref:    "registry.example.com/ns/echo:v1",
		Digest: "sha256:ffffd081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08",
		Output: out,
	})
	assert.ErrorIs(t, err, ErrDigestMismatch)
	assert.NoFileExists(t, out)
}

func TestPullUnsupportedContentWritesNothing(t *testing.T) {
	reg := &stubRegistry{pullPkg: &Package{
		Layers: []Layer{{Data: []byte("not an artifact"), MediaType: WasmMediaType}},
	}}

	out := filepath.Join(t.TempDir(), "echo.wasm")
	_, err := NewPuller(reg).Pull(context.Background(), PullRequest{
		Ref:    "registry.example.com/ns/echo:v1",
		Output: out,
	})
	assert.ErrorIs(t, err, ErrUnsupportedArtifact)
	assert.NoFileExists(t, out)
}

func TestPullTransportFailure(t *testing.T) {
	reg := &stubRegistry{pullErr: errors.New("connection refused")}

	_, err := NewPuller(reg).Pull(context.Background(), PullRequest{
		Ref: "registry.example.com/ns/echo:v1",
	})
	assert.ErrorContains(t, err, "connection refused")
}

func TestPullCredentialResolution(t *testing.T) {
	reg := &stubRegistry{pullPkg: &Package{
		Layers: []Layer{{Data: actorModule(t), MediaType: WasmMediaType}},
	}}

	out := filepath.Join(t.TempDir(), "echo.wasm")
	_, err := NewPuller(reg).Pull(context.Background(), PullRequest{
		Ref:      "registry.example.com/ns/echo:v1",
		User:     "user",
		Password: "hunter2",
		Output:   out,
	})
	require.NoError(t, err)

	cfg, err := reg.gotAuth.Authorization()
	require.NoError(t, err)
	assert.Equal(t, "user", cfg.Username)
	assert.Equal(t, "hunter2", cfg.Password)
}

func TestResolveCredentialsAnonymousWithoutBothParts(t *testing.T) {
	assert.Equal(t, authn.Anonymous, ResolveCredentials("", ""))
	assert.Equal(t, authn.Anonymous, ResolveCredentials("user", ""))
	assert.Equal(t, authn.Anonymous, ResolveCredentials("", "hunter2"))
	assert.NotEqual(t, authn.Anonymous, ResolveCredentials("user", "hunter2"))
}
