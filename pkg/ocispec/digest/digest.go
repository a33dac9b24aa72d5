// Package digest provides an open, registration-based catalog of content
// digest algorithms layered on top of [github.com/opencontainers/go-digest],
// plus streaming helpers that never buffer a whole input in memory.
package digest

import (
	"bufio"
	"io"
	"os"

	godigest "github.com/opencontainers/go-digest"

	"github.com/wuxler/ocidist/pkg/errdefs"
)

// MinBufferSize is the minimum chunk size streaming digest reads use.
const MinBufferSize = 8 * 1024

// Algorithm identifies a registered digest algorithm by name, e.g. "sha256".
type Algorithm string

// Well-known algorithms backed by [github.com/opencontainers/go-digest].
//
// "blake3" is deliberately not registered: no blake3 implementation is
// available in this module's dependency set. [IsSupported] therefore
// returns false for it until a library is added and a registration call
// is made from this package's init.
const (
	SHA256 Algorithm = Algorithm(godigest.SHA256)
	SHA512 Algorithm = Algorithm(godigest.SHA512)
)

var registry = map[Algorithm]godigest.Algorithm{
	SHA256: godigest.SHA256,
	SHA512: godigest.SHA512,
}

// RegisterAlgorithm adds alg, backed by the given go-digest algorithm, to
// the set accepted by [IsSupported], [FromBytes], [FromReader] and
// [FromFile]. It is not safe to call concurrently with digest operations;
// call it from an init function.
func RegisterAlgorithm(alg Algorithm, backing godigest.Algorithm) {
	registry[alg] = backing
}

// IsSupported reports whether alg is a registered, available algorithm.
// It is total: unknown algorithms return false rather than an error.
func IsSupported(alg Algorithm) bool {
	backing, ok := registry[alg]
	return ok && backing.Available()
}

// FromAlgorithmAndHex parses alg and hex together into a digest string,
// validating both parts match the registered algorithm's shape.
func FromAlgorithmAndHex(alg Algorithm, hex string) (godigest.Digest, error) {
	backing, ok := registry[alg]
	if !ok {
		return "", errdefs.Newf(errdefs.ErrUnsupported, "unsupported digest algorithm %q", alg)
	}
	dgst := godigest.NewDigestFromEncoded(backing, hex)
	if err := dgst.Validate(); err != nil {
		return "", errdefs.NewE(errdefs.ErrInvalidDigest, err)
	}
	return dgst, nil
}

// Parse parses s as "alg:hex", failing with [errdefs.ErrInvalidDigest] if
// the algorithm is unrecognized, the hex length doesn't match the
// algorithm, or s doesn't contain exactly one ":" separator (so a nested
// prefix like "sha256:sha256:..." is rejected: the inner value fails the
// hex-length check for its outer algorithm).
func Parse(s string) (godigest.Digest, error) {
	dgst := godigest.Digest(s)
	if err := dgst.Validate(); err != nil {
		return "", errdefs.NewE(errdefs.ErrInvalidDigest, err)
	}
	if !IsSupported(Algorithm(dgst.Algorithm())) {
		return "", errdefs.Newf(errdefs.ErrInvalidDigest, "unsupported digest algorithm %q", dgst.Algorithm())
	}
	return dgst, nil
}

// MatchPattern validates only the syntactic shape "alg:hex" without
// requiring the algorithm to be registered.
func MatchPattern(s string) bool {
	return godigest.Digest(s).Validate() == nil
}

// FromBytes computes the digest of b using alg.
func FromBytes(alg Algorithm, b []byte) (godigest.Digest, error) {
	backing, ok := registry[alg]
	if !ok || !backing.Available() {
		return "", errdefs.Newf(errdefs.ErrUnsupported, "unsupported digest algorithm %q", alg)
	}
	return backing.FromBytes(b), nil
}

// FromReader computes the digest of r's remaining content using alg,
// reading in fixed-size buffered chunks without buffering the whole
// stream.
func FromReader(alg Algorithm, r io.Reader) (godigest.Digest, error) {
	backing, ok := registry[alg]
	if !ok || !backing.Available() {
		return "", errdefs.Newf(errdefs.ErrUnsupported, "unsupported digest algorithm %q", alg)
	}
	buffered := bufio.NewReaderSize(r, MinBufferSize)
	return backing.FromReader(buffered)
}

// FromFile computes the digest of the file at path using alg, streaming
// its content without loading the whole file into memory.
func FromFile(alg Algorithm, path string) (godigest.Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return FromReader(alg, f)
}
