// Package par reads and writes capability provider archives.
//
// A provider archive is a gzipped tarball bundling one native library per
// target platform alongside the provider's signed claims token.
package par

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
)

const (
	claimsEntry  = "claims.jwt"
	targetSuffix = ".bin"
)

var (
	// ErrInvalidArchive is returned when the bytes are not a gzipped tar
	// in the provider archive layout.
	ErrInvalidArchive = errors.New("par: invalid provider archive")

	// ErrMissingClaims is returned when the archive has no claims token.
	ErrMissingClaims = errors.New("par: archive carries no claims")

	// ErrNoTargets is returned when the archive bundles no target libraries.
	ErrNoTargets = errors.New("par: archive contains no target libraries")
)

// Archive is an unpacked provider archive.
type Archive struct {
	// ClaimsJWT is the raw signed claims token stored in the archive.
	ClaimsJWT string

	// Targets maps a target platform name (e.g. "x86_64-linux") to its
	// native library bytes.
	Targets map[string][]byte
}

// Load parses a provider archive from raw. An archive must carry a claims
// token and at least one target library to be considered valid.
func Load(raw []byte) (*Archive, error) {
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	defer zr.Close()

	a := &Archive{Targets: make(map[string][]byte)}
	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		name := path.Clean(hdr.Name)
		switch {
		case name == claimsEntry:
			data, err := io.ReadAll(tr)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
			}
			a.ClaimsJWT = strings.TrimSpace(string(data))
		case strings.HasSuffix(name, targetSuffix):
			data, err := io.ReadAll(tr)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
			}
			a.Targets[strings.TrimSuffix(name, targetSuffix)] = data
		}
	}

	if a.ClaimsJWT == "" {
		return nil, ErrMissingClaims
	}
	if len(a.Targets) == 0 {
		return nil, ErrNoTargets
	}
	return a, nil
}

// Encode writes the archive out as a gzipped tarball in the layout Load
// expects.
func (a *Archive) Encode() ([]byte, error) {
	if a.ClaimsJWT == "" {
		return nil, ErrMissingClaims
	}
	if len(a.Targets) == 0 {
		return nil, ErrNoTargets
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(zw)

	if err := writeEntry(tw, claimsEntry, []byte(a.ClaimsJWT)); err != nil {
		return nil, err
	}
	for target, lib := range a.Targets {
		if err := writeEntry(tw, target+targetSuffix, lib); err != nil {
			return nil, err
		}
	}

	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("par: close tar: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("par: close gzip: %w", err)
	}
	return buf.Bytes(), nil
}

func writeEntry(tw *tar.Writer, name string, data []byte) error {
	hdr := &tar.Header{
		Name:     name,
		Mode:     0644,
		Size:     int64(len(data)),
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("par: write %s header: %w", name, err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("par: write %s: %w", name, err)
	}
	return nil
}
