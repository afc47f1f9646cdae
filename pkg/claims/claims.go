// Package claims extracts embedded capability claims from WASM modules.
//
// A signed actor module carries its claims as a JWT stored in a custom
// section named "jwt". Extraction only decodes the token; signature
// verification is handled by the key management tooling, not here.
package claims

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// claimsSectionName is the custom section a signed module stores its JWT in.
const claimsSectionName = "jwt"

const sectionCustom = 0

var wasmMagic = []byte{0x00, 0x61, 0x73, 0x6d}

var (
	// ErrNotWasm is returned when the bytes are not a WASM module at all.
	ErrNotWasm = errors.New("claims: not a WebAssembly module")

	// ErrMalformedModule is returned when the module's section structure
	// cannot be walked.
	ErrMalformedModule = errors.New("claims: malformed WebAssembly module")
)

// Actor is the capability metadata block embedded in an actor's claims.
type Actor struct {
	Name         string   `json:"name,omitempty"`
	Capabilities []string `json:"caps,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Version      string   `json:"ver,omitempty"`
	Revision     int      `json:"rev,omitempty"`
	Provider     bool     `json:"prov,omitempty"`
}

// ActorClaims is the full claims set of a signed actor module.
type ActorClaims struct {
	jwt.RegisteredClaims
	Actor Actor `json:"wascap"`
}

// Token is a decoded claims token together with its raw JWT form.
type Token struct {
	Raw    string
	Claims ActorClaims
}

// ExtractFromModule scans the custom sections of a WASM module for an
// embedded claims token. It returns (nil, nil) when the module is
// structurally valid but carries no claims section.
func ExtractFromModule(raw []byte) (*Token, error) {
	if len(raw) < 8 || !bytes.Equal(raw[:4], wasmMagic) {
		return nil, ErrNotWasm
	}
	if binary.LittleEndian.Uint32(raw[4:8]) != 1 {
		return nil, fmt.Errorf("%w: unsupported version", ErrNotWasm)
	}

	rest := raw[8:]
	for len(rest) > 0 {
		id := rest[0]
		rest = rest[1:]

		// Section sizes are unsigned LEB128, which Uvarint decodes.
		size, n := binary.Uvarint(rest)
		if n <= 0 {
			return nil, fmt.Errorf("%w: bad section size", ErrMalformedModule)
		}
		rest = rest[n:]
		if uint64(len(rest)) < size {
			return nil, fmt.Errorf("%w: truncated section", ErrMalformedModule)
		}
		payload := rest[:size]
		rest = rest[size:]

		if id != sectionCustom {
			continue
		}
		name, body, err := splitCustomSection(payload)
		if err != nil {
			return nil, err
		}
		if name == claimsSectionName {
			return decodeToken(string(body))
		}
	}
	return nil, nil
}

// splitCustomSection separates a custom section payload into its name and
// remaining content.
func splitCustomSection(payload []byte) (string, []byte, error) {
	nameLen, n := binary.Uvarint(payload)
	if n <= 0 || uint64(len(payload)-n) < nameLen {
		return "", nil, fmt.Errorf("%w: bad custom section name", ErrMalformedModule)
	}
	name := string(payload[n : uint64(n)+nameLen])
	return name, payload[uint64(n)+nameLen:], nil
}

// decodeToken decodes the raw JWT into actor claims. The token is not
// verified against the issuer's key here.
func decodeToken(raw string) (*Token, error) {
	var c ActorClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &c); err != nil {
		return nil, fmt.Errorf("claims: decode token: %w", err)
	}
	return &Token{Raw: raw, Claims: c}, nil
}
