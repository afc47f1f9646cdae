package oci

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/stretchr/testify/require"

	"github.com/wascc/wash/pkg/par"
)

// actorModule builds a minimal WASM module carrying a claims token, the
// shape a signed actor module has on disk.
func actorModule(t *testing.T) []byte {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": "ACOFJN6WEMQNZY2G2JP4DBZTGWJ6S7GTSDTV5GPKFAYIMDJ6ZAKRWLTE",
		"sub": "MBCFOPM6JW2APJLXJD3Z5O4CN7CPYJ2B4FTKLJUR5YR5MITIU7HD3WD5",
		"wascap": map[string]any{
			"name": "echo",
			"caps": []string{"wascc:http_server"},
		},
	})
	raw, err := tok.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	payload := binary.AppendUvarint(nil, uint64(len("jwt")))
	payload = append(payload, "jwt"...)
	payload = append(payload, raw...)

	mod := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00, 0x00}
	mod = binary.AppendUvarint(mod, uint64(len(payload)))
	return append(mod, payload...)
}

// bareModule builds a structurally valid WASM module with no claims.
func bareModule() []byte {
	return []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
}

// providerArchive builds a valid provider archive.
func providerArchive(t *testing.T) []byte {
	t.Helper()
	raw, err := (&par.Archive{
		ClaimsJWT: "eyJhbGciOiJFZDI1NTE5In0.e30.c2ln",
		Targets:   map[string][]byte{"x86_64-linux": []byte("native library")},
	}).Encode()
	require.NoError(t, err)
	return raw
}

// stubRegistry is a canned transport for workflow tests. It records its
// inputs and serves a fixed package on pull.
type stubRegistry struct {
	pullPkg *Package
	pullErr error
	pushErr error

	pulls int
	pushes int

	gotRef             Reference
	gotAuth            authn.Authenticator
	gotAccepted        []string
	gotPkg             *Package
	gotConfig          []byte
	gotConfigMediaType string
}

func (s *stubRegistry) Pull(ctx context.Context, ref Reference, auth authn.Authenticator, accepted []string) (*Package, error) {
	s.pulls++
	s.gotRef = ref
	s.gotAuth = auth
	s.gotAccepted = accepted
	if s.pullErr != nil {
		return nil, s.pullErr
	}
	if s.pullPkg == nil {
		return nil, errors.New("stub: no package configured")
	}
	return s.pullPkg, nil
}

func (s *stubRegistry) Push(ctx context.Context, ref Reference, pkg *Package, config []byte, configMediaType string, auth authn.Authenticator) (string, error) {
	s.pushes++
	s.gotRef = ref
	s.gotAuth = auth
	s.gotPkg = pkg
	s.gotConfig = config
	s.gotConfigMediaType = configMediaType
	if s.pushErr != nil {
		return "", s.pushErr
	}
	img := newArtifactImage(pkg, config, configMediaType)
	h, err := img.Digest()
	if err != nil {
		return "", err
	}
	return h.String(), nil
}
