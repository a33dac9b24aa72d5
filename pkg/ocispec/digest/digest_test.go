package digest_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wuxler/ocidist/pkg/errdefs"
	"github.com/wuxler/ocidist/pkg/ocispec/digest"
)

func TestFromBytes(t *testing.T) {
	dgst, err := digest.FromBytes(digest.SHA256, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "sha256:2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", dgst.String())
}

func TestFromReaderMatchesFromBytes(t *testing.T) {
	data := bytes.Repeat([]byte("x"), digest.MinBufferSize*3+17)
	want, err := digest.FromBytes(digest.SHA256, data)
	require.NoError(t, err)

	got, err := digest.FromReader(digest.SHA256, bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blob.bin")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	dgst, err := digest.FromFile(digest.SHA256, path)
	require.NoError(t, err)
	assert.Equal(t, "sha256:2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", dgst.String())
}

func TestParseRoundTrip(t *testing.T) {
	dgst, err := digest.FromBytes(digest.SHA256, []byte("hello"))
	require.NoError(t, err)

	parsed, err := digest.Parse(dgst.String())
	require.NoError(t, err)
	assert.Equal(t, dgst, parsed)
	assert.Equal(t, digest.SHA256, digest.Algorithm(parsed.Algorithm()))
}

func TestParseRejectsNestedPrefix(t *testing.T) {
	_, err := digest.Parse("sha256:sha256:2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824")
	require.Error(t, err)
	assert.ErrorIs(t, err, errdefs.ErrInvalidDigest)
}

func TestParseRejectsUnsupportedAlgorithm(t *testing.T) {
	_, err := digest.Parse("blake3:2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824")
	require.Error(t, err)
	assert.ErrorIs(t, err, errdefs.ErrInvalidDigest)
}

func TestIsSupported(t *testing.T) {
	assert.True(t, digest.IsSupported(digest.SHA256))
	assert.True(t, digest.IsSupported(digest.SHA512))
	assert.False(t, digest.IsSupported("blake3"))
	assert.False(t, digest.IsSupported("md5"))
}

func TestMatchPatternIsSyntacticOnly(t *testing.T) {
	assert.True(t, digest.MatchPattern("sha256:2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"))
	assert.False(t, digest.MatchPattern("not-a-digest"))
	assert.False(t, digest.MatchPattern("sha256:tooshort"))
}
