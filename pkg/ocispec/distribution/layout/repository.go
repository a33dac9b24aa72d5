package layout

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	godigest "github.com/opencontainers/go-digest"
	imgspecv1 "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/wuxler/ocidist/pkg/errdefs"
	"github.com/wuxler/ocidist/pkg/ocispec/artifact"
	"github.com/wuxler/ocidist/pkg/ocispec/cas"
	"github.com/wuxler/ocidist/pkg/ocispec/digest"
	"github.com/wuxler/ocidist/pkg/ocispec/distribution"
	itr "github.com/wuxler/ocidist/pkg/ocispec/iter"
	ocispecname "github.com/wuxler/ocidist/pkg/ocispec/name"
)

// Manifests returns the manifest storage view of this layout, letting a
// Store stand in anywhere a [distribution.ManifestStore] is expected
// (notably, as one side of a copy between a registry and a layout).
func (s *Store) Manifests() distribution.ManifestStore {
	return &layoutManifestStore{store: s}
}

// Tags returns the tag storage view of this layout.
func (s *Store) Tags() distribution.TagStore {
	return &layoutTagStore{store: s}
}

type layoutManifestStore struct {
	store *Store
}

func (m *layoutManifestStore) Stat(ctx context.Context, reference string) (imgspecv1.Descriptor, error) {
	return m.store.Blobs().Stat(ctx, reference)
}

func (m *layoutManifestStore) Exists(ctx context.Context, target imgspecv1.Descriptor) (bool, error) {
	return m.store.Blobs().Exists(ctx, target)
}

func (m *layoutManifestStore) Fetch(ctx context.Context, target imgspecv1.Descriptor) (cas.ReadCloser, error) {
	return m.store.Blobs().Fetch(ctx, target)
}

func (m *layoutManifestStore) Push(ctx context.Context, content cas.Reader) error {
	return m.store.PushManifest(ctx, content, "")
}

func (m *layoutManifestStore) Delete(ctx context.Context, target imgspecv1.Descriptor) error {
	return m.store.Blobs().Delete(ctx, target)
}

func (m *layoutManifestStore) FetchTagOrDigest(ctx context.Context, tagOrDigest string) (cas.ReadCloser, error) {
	desc, err := m.store.StatTagOrDigest(ctx, tagOrDigest)
	if err != nil {
		return nil, err
	}
	return m.store.Blobs().Fetch(ctx, desc)
}

type layoutTagStore struct {
	store *Store
}

func (t *layoutTagStore) Stat(ctx context.Context, tag string) (imgspecv1.Descriptor, error) {
	return t.store.StatTagOrDigest(ctx, tag)
}

func (t *layoutTagStore) Tag(ctx context.Context, target cas.Reader, tag string) error {
	return t.store.PushManifest(ctx, target, tag)
}

func (t *layoutTagStore) Untag(ctx context.Context, tag string) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	idx, err := t.store.loadIndexLocked()
	if err != nil {
		return err
	}
	found := false
	for i := range idx.Manifests {
		if idx.Manifests[i].Annotations[AnnotationRefName] == tag {
			delete(idx.Manifests[i].Annotations, AnnotationRefName)
			found = true
		}
	}
	if !found {
		return errdefs.Newf(errdefs.ErrNotFound, "tag %q not found in layout %s", tag, t.store.root)
	}
	return t.store.saveIndexLocked(idx)
}

// List returns a single-page iterator over every tag currently bound in
// the index; pagination options are accepted for interface parity but
// have no effect, since the whole index is always in memory.
func (t *layoutTagStore) List(_ ...distribution.ListOption) itr.Iterator[string] {
	done := false
	return itr.IteratorFunc[string](func(ctx context.Context) ([]string, error) {
		if done {
			return nil, itr.ErrIteratorDone
		}
		done = true
		return t.store.tagNames(ctx)
	})
}

// PushArtifact is the layout-side convenience described in spec.md §4.7:
// it creates the canonical empty config blob, pushes localPath as a
// single layer, assembles a minimal manifest referencing both, and
// indexes the result under tag (if non-empty).
func (s *Store) PushArtifact(ctx context.Context, localPath string, artifactType string, tag string) (imgspecv1.Descriptor, error) {
	configDesc, configData := artifact.EmptyConfig()
	if err := s.Blobs().Push(ctx, cas.NewReaderFromBytes(configDesc.MediaType, configData)); err != nil {
		return imgspecv1.Descriptor{}, err
	}

	layerDesc, err := s.pushLayerFile(ctx, localPath)
	if err != nil {
		return imgspecv1.Descriptor{}, err
	}

	man := artifact.NewManifest(configDesc, []imgspecv1.Descriptor{layerDesc})
	if artifactType != "" {
		man = man.WithArtifactType(artifactType)
	}
	data, err := man.Marshal()
	if err != nil {
		return imgspecv1.Descriptor{}, err
	}
	manDesc, err := man.Descriptor()
	if err != nil {
		return imgspecv1.Descriptor{}, err
	}
	content := cas.NewReaderFromBytes(manDesc.MediaType, data)
	if err := s.PushManifest(ctx, content, tag); err != nil {
		return imgspecv1.Descriptor{}, err
	}
	return content.Descriptor(), nil
}

// pushLayerFile digests localPath, pushes it as a blob tagged with the
// default layer media type, and returns its descriptor. The digest must
// be known before the blob store's write path can be invoked, since
// content-addressed storage names the blob by its own digest.
func (s *Store) pushLayerFile(ctx context.Context, localPath string) (imgspecv1.Descriptor, error) {
	dgst, err := digest.FromFile(digest.SHA256, localPath)
	if err != nil {
		return imgspecv1.Descriptor{}, err
	}
	info, err := os.Stat(localPath)
	if err != nil {
		return imgspecv1.Descriptor{}, err
	}
	desc := artifact.Descriptor(ocidistLayerMediaType, dgst, info.Size(),
		artifact.WithAnnotations(map[string]string{"org.opencontainers.image.title": filepath.Base(localPath)}))

	f, err := os.Open(localPath)
	if err != nil {
		return imgspecv1.Descriptor{}, err
	}
	defer f.Close()

	if err := s.Blobs().Push(ctx, cas.NewReader(f, desc)); err != nil {
		return imgspecv1.Descriptor{}, err
	}
	return desc, nil
}

const ocidistLayerMediaType = "application/vnd.oci.image.layer.v1.tar"

// ListReferrers scans every manifest in the index for one whose Subject
// names dgst, satisfying [distribution.ReferrerLister]. Layouts have no
// server-side referrers index, so this is a linear scan over the whole
// index rather than a single lookup.
func (s *Store) ListReferrers(ctx context.Context, dgst godigest.Digest, artifactType string) ([]imgspecv1.Descriptor, error) {
	idx, err := s.Index(ctx)
	if err != nil {
		return nil, err
	}
	var out []imgspecv1.Descriptor
	for _, entry := range idx.Manifests {
		rc, err := s.Blobs().Fetch(ctx, entry)
		if err != nil {
			continue
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			continue
		}
		man, err := artifact.UnmarshalManifest(data)
		if err != nil {
			continue
		}
		raw := man.Raw()
		if raw.Subject == nil || raw.Subject.Digest != dgst {
			continue
		}
		if artifactType != "" && raw.ArtifactType != artifactType {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

// PullArtifact materializes each layer of the artifact identified by ref
// under destDir. ref must carry a tag or digest, per spec.md's
// TagRequired edge case. Path traversal components in a layer's
// recorded path annotation are neutralized by [ResolvePath], so each
// layer lands under destDir.
func (s *Store) PullArtifact(ctx context.Context, ref ocispecname.LayoutRef, destDir string, overwrite bool) error {
	tag, hasTag := ref.Tag()
	dgst, hasDigest := ref.Digest()
	var identity string
	switch {
	case hasDigest:
		identity = dgst.String()
	case hasTag:
		identity = tag
	default:
		return errdefs.Newf(errdefs.ErrTagRequired, "pulling a layout artifact requires a tag or digest: %s", ref)
	}

	manDesc, err := s.StatTagOrDigest(ctx, identity)
	if err != nil {
		return err
	}
	rc, err := s.Blobs().Fetch(ctx, manDesc)
	if err != nil {
		return err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return err
	}
	man, err := artifact.UnmarshalManifest(data)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}
	for i, layer := range man.Raw().Layers {
		name := layer.Annotations["org.opencontainers.image.title"]
		if name == "" {
			name = fmt.Sprintf("layer-%d", i)
		}
		target, err := ResolvePath(destDir, name)
		if err != nil {
			return err
		}
		if !overwrite {
			if _, err := os.Stat(target); err == nil {
				return errdefs.Newf(errdefs.ErrAlreadyExists, "destination %q already exists", target)
			}
		}
		if err := s.extractLayer(ctx, layer, target); err != nil {
			return err
		}
	}
	return nil
}

// extractLayer fetches a layer blob and untars it under destPath. Each
// tar entry name is resolved with [ResolvePath], so ".." components in
// it cannot climb above destPath.
func (s *Store) extractLayer(ctx context.Context, desc imgspecv1.Descriptor, destPath string) error {
	rc, err := s.Blobs().Fetch(ctx, desc)
	if err != nil {
		return err
	}
	defer rc.Close()

	if err := os.MkdirAll(destPath, 0o755); err != nil {
		return err
	}
	tr := tar.NewReader(rc)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		target, err := ResolvePath(destPath, hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(hdr.Mode)); err != nil {
				return err
			}
		case tar.TypeSymlink:
			_ = os.Remove(target)
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return err
			}
		default:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(hdr.Mode))
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil { //nolint:gosec // size bounded by the layer's own descriptor, already verified on fetch
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
		}
	}
}
