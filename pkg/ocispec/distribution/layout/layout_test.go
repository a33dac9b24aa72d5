package layout_test

import (
	"context"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wuxler/ocidist/pkg/ocispec/artifact"
	"github.com/wuxler/ocidist/pkg/ocispec/cas"
	"github.com/wuxler/ocidist/pkg/ocispec/distribution/layout"
)

func openMemLayout(t *testing.T) *layout.Store {
	t.Helper()
	store, err := layout.OpenFS(afero.NewMemMapFs(), "/layout")
	require.NoError(t, err)
	return store
}

func pushManifest(t *testing.T, store *layout.Store, m artifact.Manifest, tag string) digest.Digest {
	t.Helper()
	data, err := m.Marshal()
	require.NoError(t, err)
	desc, err := m.Descriptor()
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, store.PushManifest(ctx, cas.NewReaderFromBytes(desc.MediaType, data), tag))
	return desc.Digest
}

// Spec scenario 5: pushing Manifest.empty().withConfig(Config.empty()) to a
// fresh layout produces an oci-layout marker, an index with one entry, and
// two blobs: the manifest and the empty config.
func TestPushEmptyManifestProducesLayoutMarkerAndTwoBlobs(t *testing.T) {
	store := openMemLayout(t)
	ctx := context.Background()

	configDesc, configData := artifact.EmptyConfig()
	require.NoError(t, store.Blobs().Push(ctx, cas.NewReaderFromBytes(configDesc.MediaType, configData)))

	m := artifact.EmptyManifest().WithConfig(configDesc)
	dgst := pushManifest(t, store, m, "latest")

	idx, err := store.Index(ctx)
	require.NoError(t, err)
	require.Len(t, idx.Manifests, 1)
	assert.Equal(t, dgst, idx.Manifests[0].Digest)
	assert.Equal(t, "latest", idx.Manifests[0].Annotations[layout.AnnotationRefName])

	configStat, err := store.Blobs().Stat(ctx, configDesc.Digest.String())
	require.NoError(t, err)
	assert.Equal(t, int64(2), configStat.Size)

	manifestStat, err := store.Blobs().Stat(ctx, dgst.String())
	require.NoError(t, err)
	assert.Equal(t, dgst, manifestStat.Digest)
}

// Spec scenario 6: push manifest M1 tagged "latest", then push a different
// M2 also tagged "latest". Both entries remain in the index but only M2
// carries the ref.name annotation.
func TestPushManifestMovesTagAnnotation(t *testing.T) {
	store := openMemLayout(t)
	ctx := context.Background()

	configDesc, configData := artifact.EmptyConfig()
	require.NoError(t, store.Blobs().Push(ctx, cas.NewReaderFromBytes(configDesc.MediaType, configData)))

	m1 := artifact.EmptyManifest().WithConfig(configDesc).WithAnnotations(map[string]string{"variant": "m1"})
	d1 := pushManifest(t, store, m1, "latest")

	m2 := artifact.EmptyManifest().WithConfig(configDesc).WithAnnotations(map[string]string{"variant": "m2"})
	d2 := pushManifest(t, store, m2, "latest")
	require.NotEqual(t, d1, d2)

	idx, err := store.Index(ctx)
	require.NoError(t, err)
	require.Len(t, idx.Manifests, 2)

	var taggedCount int
	for _, entry := range idx.Manifests {
		if tag, ok := entry.Annotations[layout.AnnotationRefName]; ok {
			taggedCount++
			assert.Equal(t, "latest", tag)
			assert.Equal(t, d2, entry.Digest)
		}
	}
	assert.Equal(t, 1, taggedCount)
}

func TestOpenFSRejectsNonDirectoryRoot(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/layout", []byte("not a directory"), 0o644))
	_, err := layout.OpenFS(fsys, "/layout")
	require.Error(t, err)
}

func TestResolvePathNeutralizesTraversal(t *testing.T) {
	resolved, err := layout.ResolvePath("/dest", "../../escape")
	require.NoError(t, err)
	assert.Equal(t, "/dest/escape", resolved)
}

func TestResolvePathRejectsEmptyResult(t *testing.T) {
	_, err := layout.ResolvePath("/dest", "..")
	require.Error(t, err)
}

func TestBlobsStatNotFound(t *testing.T) {
	store := openMemLayout(t)
	_, err := store.Blobs().Stat(context.Background(), "sha256:2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824")
	require.Error(t, err)
}
