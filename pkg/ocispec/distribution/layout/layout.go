// Package layout implements the OCI Image Layout on-disk format: a
// directory tree rooted at an "oci-layout" marker, an "index.json" of
// top-level manifests, and content-addressed blobs under
// "blobs/<algorithm>/<hex>".
//
// See https://github.com/opencontainers/image-spec/blob/main/image-layout.md
package layout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/opencontainers/go-digest"
	specs "github.com/opencontainers/image-spec/specs-go"
	imgspecv1 "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/spf13/afero"

	"github.com/wuxler/ocidist/pkg/errdefs"
	"github.com/wuxler/ocidist/pkg/ocispec"
	"github.com/wuxler/ocidist/pkg/ocispec/cas"
	"github.com/wuxler/ocidist/pkg/ocispec/distribution"
	ocispecname "github.com/wuxler/ocidist/pkg/ocispec/name"
)

// AnnotationRefName is the annotation key used to bind a human-readable
// tag to a manifest descriptor inside an index.
const AnnotationRefName = "org.opencontainers.image.ref.name"

// ImageLayoutVersion is the only version of the layout format this
// package understands, written into the "oci-layout" marker file.
const ImageLayoutVersion = "1.0.0"

const (
	layoutMarkerFile = "oci-layout"
	indexFile        = "index.json"
	blobsDir         = "blobs"
)

// Store is an OCI Image Layout rooted at a directory. A zero Store is
// not usable; construct one with [Open].
//
// A Store is safe for concurrent use: index reads/writes are guarded by
// an in-process mutex (spec.md's "advisory per-layout lock"), and blob
// writes land at a temporary path and are atomically renamed into place
// so that concurrent writers of the same digest can only ever race on
// the rename, never observe a partial file.
type Store struct {
	fs   afero.Fs
	root string
	mu   sync.Mutex
}

// Open opens (or lazily creates) an OCI image layout rooted at root. If
// root exists and is not a directory, it fails with
// [errdefs.ErrLayoutNotADirectory]. The directory itself, and the
// "oci-layout" marker, are created on first write, not on Open.
func Open(root string) (*Store, error) {
	return OpenFS(afero.NewOsFs(), root)
}

// OpenFS is like [Open] but operates against the given afero filesystem,
// so a layout can be manipulated entirely in memory for tests.
func OpenFS(fsys afero.Fs, root string) (*Store, error) {
	info, err := fsys.Stat(root)
	if err == nil && !info.IsDir() {
		return nil, errdefs.Newf(errdefs.ErrLayoutNotADirectory, "layout root %q is not a directory", root)
	}
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return &Store{fs: fsys, root: root}, nil
}

// Root returns the layout's root directory.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) blobPath(dgst digest.Digest) string {
	return filepath.Join(s.root, blobsDir, dgst.Algorithm().String(), dgst.Encoded())
}

func (s *Store) indexPath() string {
	return filepath.Join(s.root, indexFile)
}

func (s *Store) markerPath() string {
	return filepath.Join(s.root, layoutMarkerFile)
}

// ensureRoot creates the root directory, the blobs algorithm directory,
// and the "oci-layout" marker file if they don't already exist. It is
// invoked by every write path, never by Open, so that opening a layout
// for reading doesn't mutate the filesystem.
func (s *Store) ensureRoot(alg digest.Algorithm) error {
	if err := s.fs.MkdirAll(filepath.Join(s.root, blobsDir, alg.String()), 0o755); err != nil {
		return err
	}
	if _, err := s.fs.Stat(s.markerPath()); errors.Is(err, os.ErrNotExist) {
		marker := imgspecv1.ImageLayout{Version: ImageLayoutVersion}
		data, mErr := json.Marshal(marker)
		if mErr != nil {
			return mErr
		}
		if err := afero.WriteFile(s.fs, s.markerPath(), data, 0o644); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}
	return nil
}

// writeFileAtomic writes data to name by first writing to a sibling
// temporary file and renaming it into place, so readers never observe a
// partially-written file. A blob that already exists is left as it is
// and nothing is written, since its content-addressed path already holds
// the correct content; "index.json" is always rewritten.
func (s *Store) writeFileAtomic(name string, r io.Reader, size int64) error {
	dir := filepath.Dir(name)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if name != s.indexPath() {
		if _, err := s.fs.Stat(name); err == nil {
			// content-addressed: an existing file at this path is already
			// correct content, writing it again is a no-op success.
			return nil
		}
	}
	tmp, err := afero.TempFile(s.fs, dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = s.fs.Remove(tmpName)
		}
	}()
	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := s.fs.Rename(tmpName, name); err != nil {
		// another writer may have won the race onto the same digest path.
		if _, statErr := s.fs.Stat(name); statErr == nil {
			committed = true
			return nil
		}
		return err
	}
	committed = true
	return nil
}

// Blobs returns the content-addressable blob storage for this layout,
// typed as [distribution.BlobStore] so a *Store satisfies the same
// structural shape as [remote.Repository] for the copy engine.
func (s *Store) Blobs() distribution.BlobStore {
	return &blobStore{store: s}
}

type blobStore struct {
	store *Store
}

func (b *blobStore) Stat(ctx context.Context, reference string) (imgspecv1.Descriptor, error) {
	dgst, err := digest.Parse(reference)
	if err != nil {
		return imgspecv1.Descriptor{}, errdefs.Newf(errdefs.ErrInvalidParameter, "invalid blob reference %q: %v", reference, err)
	}
	info, err := b.store.fs.Stat(b.store.blobPath(dgst))
	if errors.Is(err, os.ErrNotExist) {
		return imgspecv1.Descriptor{}, errdefs.Newf(errdefs.ErrNotFound, "blob %s not found in layout %s", dgst, b.store.root)
	}
	if err != nil {
		return imgspecv1.Descriptor{}, err
	}
	return imgspecv1.Descriptor{
		MediaType: ocispec.DefaultMediaType,
		Digest:    dgst,
		Size:      info.Size(),
	}, nil
}

func (b *blobStore) Exists(ctx context.Context, target imgspecv1.Descriptor) (bool, error) {
	_, err := b.store.fs.Stat(b.store.blobPath(target.Digest))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (b *blobStore) Fetch(ctx context.Context, target imgspecv1.Descriptor) (cas.ReadCloser, error) {
	f, err := b.store.fs.Open(b.store.blobPath(target.Digest))
	if errors.Is(err, os.ErrNotExist) {
		return nil, errdefs.Newf(errdefs.ErrNotFound, "blob %s not found in layout %s", target.Digest, b.store.root)
	}
	if err != nil {
		return nil, err
	}
	return cas.NewReadCloser(f, target), nil
}

func (b *blobStore) Push(ctx context.Context, content cas.Reader) error {
	desc := content.Descriptor()
	if err := desc.Digest.Validate(); err != nil {
		return errdefs.Newf(errdefs.ErrInvalidDigest, "invalid digest %q: %v", desc.Digest, err)
	}
	if err := b.store.ensureRoot(desc.Digest.Algorithm()); err != nil {
		return err
	}
	return b.store.writeFileAtomic(b.store.blobPath(desc.Digest), content, desc.Size)
}

func (b *blobStore) Delete(ctx context.Context, target imgspecv1.Descriptor) error {
	err := b.store.fs.Remove(b.store.blobPath(target.Digest))
	if errors.Is(err, os.ErrNotExist) {
		return errdefs.Newf(errdefs.ErrNotFound, "blob %s not found in layout %s", target.Digest, b.store.root)
	}
	return err
}

// Index returns the current top-level index, or an empty index if
// "index.json" doesn't exist yet.
func (s *Store) Index(ctx context.Context) (imgspecv1.Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadIndexLocked()
}

func (s *Store) loadIndexLocked() (imgspecv1.Index, error) {
	idx := imgspecv1.Index{
		Versioned: specs.Versioned{SchemaVersion: 2},
		MediaType: ocispec.MediaTypeImageIndex,
	}
	data, err := afero.ReadFile(s.fs, s.indexPath())
	if errors.Is(err, os.ErrNotExist) {
		return idx, nil
	}
	if err != nil {
		return imgspecv1.Index{}, err
	}
	if err := json.Unmarshal(data, &idx); err != nil {
		return imgspecv1.Index{}, fmt.Errorf("%w: malformed index.json: %v", errdefs.ErrProtocol, err)
	}
	return idx, nil
}

func (s *Store) saveIndexLocked(idx imgspecv1.Index) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return err
	}
	return s.writeFileAtomic(s.indexPath(), bytes.NewReader(data), int64(len(data)))
}

// PushManifest writes the manifest's bytes as a blob and inserts (or
// replaces) its entry in the top-level index. If tag is non-empty, the
// tag annotation "moves" to this manifest: any other index entry
// previously carrying that tag loses the annotation, per spec.md's
// layout tag-move invariant; both entries remain in the index if their
// digests differ.
func (s *Store) PushManifest(ctx context.Context, content cas.Reader, tag string) error {
	if tag != "" {
		if err := ocispecname.ValidateTag(tag); err != nil {
			return err
		}
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	desc := content.Descriptor()
	if err := s.Blobs().Push(ctx, cas.NewReaderFromBytes(desc.MediaType, data)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.loadIndexLocked()
	if err != nil {
		return err
	}

	if tag != "" {
		for i := range idx.Manifests {
			if idx.Manifests[i].Annotations[AnnotationRefName] == tag {
				delete(idx.Manifests[i].Annotations, AnnotationRefName)
			}
		}
	}

	entry := desc
	if entry.MediaType == "" {
		if detected := ocispec.DetectMediaType(data); detected != "" {
			entry.MediaType = detected
		} else {
			entry.MediaType = ocispec.DefaultMediaType
		}
	}
	if tag != "" {
		if entry.Annotations == nil {
			entry.Annotations = make(map[string]string, 1)
		}
		entry.Annotations[AnnotationRefName] = tag
	}

	replaced := false
	for i := range idx.Manifests {
		if idx.Manifests[i].Digest == entry.Digest {
			idx.Manifests[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		idx.Manifests = append(idx.Manifests, entry)
	}
	return s.saveIndexLocked(idx)
}

// StatTagOrDigest resolves a tag or digest string against the index.
func (s *Store) StatTagOrDigest(ctx context.Context, tagOrDigest string) (imgspecv1.Descriptor, error) {
	if dgst, err := digest.Parse(tagOrDigest); err == nil {
		return s.Blobs().Stat(ctx, dgst.String())
	}
	idx, err := s.Index(ctx)
	if err != nil {
		return imgspecv1.Descriptor{}, err
	}
	for _, m := range idx.Manifests {
		if m.Annotations[AnnotationRefName] == tagOrDigest {
			return m, nil
		}
	}
	return imgspecv1.Descriptor{}, errdefs.Newf(errdefs.ErrNotFound, "tag %q not found in layout %s", tagOrDigest, s.root)
}

// tagNames lists every tag currently bound to a manifest in the index.
func (s *Store) tagNames(ctx context.Context) ([]string, error) {
	idx, err := s.Index(ctx)
	if err != nil {
		return nil, err
	}
	var tags []string
	for _, m := range idx.Manifests {
		if tag, ok := m.Annotations[AnnotationRefName]; ok {
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

// ResolvePath joins elem under base after cleaning it as if it were
// rooted, so ".." components cannot climb above base ("../../x" resolves
// to base/x). It fails only when elem cleans to an empty path. Used by
// PullArtifact and extractLayer to keep their writes under base.
func ResolvePath(base, elem string) (string, error) {
	cleaned := path.Clean("/" + filepath.ToSlash(elem))
	joined := filepath.Join(base, cleaned)
	if cleaned == "/" {
		return "", errdefs.Newf(errdefs.ErrInvalidParameter, "empty path")
	}
	return joined, nil
}
