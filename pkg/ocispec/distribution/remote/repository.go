package remote

import (
	"context"
	"errors"
	"io"

	"github.com/opencontainers/go-digest"
	imgspecv1 "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/wuxler/ocidist/pkg/errdefs"
	"github.com/wuxler/ocidist/pkg/ocispec/cas"
	"github.com/wuxler/ocidist/pkg/ocispec/distribution"
	"github.com/wuxler/ocidist/pkg/ocispec/iter"
	ocispecname "github.com/wuxler/ocidist/pkg/ocispec/name"
)

// NewRegistry creates a client for the remote registry.
func NewRegistry(name string, opts ...Option) (*Registry, error) {
	return NewRegistryWithContext(context.Background(), name, opts...)
}

// NewRegistryWithContext creates a client for the remote registry with the context.
func NewRegistryWithContext(ctx context.Context, name string, opts ...Option) (*Registry, error) {
	regName, err := ocispecname.NewRegistry(name)
	if err != nil {
		return nil, err
	}
	options := MakeOptions(opts...)
	return options.Client.NewRegistry(ctx, regName)
}

// NewRepository creates a client for the remote repository.
// The name should contains the registry address if the target repository is not deployed
// at DockerHub.
func NewRepository(name string, opts ...Option) (distribution.Repository, error) {
	return NewRepositoryWithContext(context.Background(), name, opts...)
}

// NewRepositoryWithContext creates a client for the remote repository with the context.
// The name should contains the registry address if the target repository is not deployed
// at DockerHub.
func NewRepositoryWithContext(ctx context.Context, name string, opts ...Option) (distribution.Repository, error) {
	repoName, err := ocispecname.NewRepository(name)
	if err != nil {
		return nil, err
	}
	options := MakeOptions(opts...)
	return options.Client.NewRepository(ctx, repoName)
}

// Repository is the per-repository facade over a [Registry], satisfying
// [distribution.Repository].
type Repository struct {
	*Registry
	name ocispecname.Repository
}

// Named returns the name of the repository.
func (repo *Repository) Named() ocispecname.Repository {
	return repo.name
}

// Manifests returns a reference to this repository's manifest storage.
func (repo *Repository) Manifests() distribution.ManifestStore {
	return &repoManifestStore{repo}
}

// Tags returns a reference to this repository's tag storage.
func (repo *Repository) Tags() distribution.TagStore {
	return &repoTagStore{repo}
}

// Blobs returns a reference to this repository's blob storage.
func (repo *Repository) Blobs() distribution.BlobStore {
	return &repoBlobStore{repo}
}

// ListReferrers returns the descriptors of every manifest in this
// repository with dgst as its Subject, satisfying
// [distribution.ReferrerLister].
func (repo *Repository) ListReferrers(ctx context.Context, dgst digest.Digest, artifactType string) ([]imgspecv1.Descriptor, error) {
	return repo.Registry.ListReferrers(ctx, repo.Named().Path(), dgst, artifactType)
}

type repoManifestStore struct {
	*Repository
}

// Stat returns the descriptor for the given reference.
func (s *repoManifestStore) Stat(ctx context.Context, reference string) (imgspecv1.Descriptor, error) {
	return s.Registry.StatManifest(ctx, s.Named().Path(), reference)
}

// Exists returns true if the described content exists.
func (s *repoManifestStore) Exists(ctx context.Context, target imgspecv1.Descriptor) (bool, error) {
	_, err := s.Stat(ctx, target.Digest.String())
	if err == nil {
		return true, nil
	}
	if errors.Is(err, errdefs.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// Fetch fetches the content identified by the descriptor.
func (s *repoManifestStore) Fetch(ctx context.Context, target imgspecv1.Descriptor) (cas.ReadCloser, error) {
	return s.Registry.GetManifest(ctx, s.Named().Path(), target.Digest.String())
}

// Push pushes the content [cas.Reader].
func (s *repoManifestStore) Push(ctx context.Context, content cas.Reader) error {
	return s.Registry.PushManifest(ctx, s.Named().Path(), content)
}

// Delete removes the content identified by the descriptor.
func (s *repoManifestStore) Delete(ctx context.Context, target imgspecv1.Descriptor) error {
	return s.Registry.DeleteManifest(ctx, s.Named().Path(), target.Digest.String())
}

// FetchTagOrDigest fetches the content identified by the tag or digest.
func (s *repoManifestStore) FetchTagOrDigest(ctx context.Context, tagOrDigest string) (cas.ReadCloser, error) {
	return s.Registry.GetManifest(ctx, s.Named().Path(), tagOrDigest)
}

// StatTagOrDigest returns the descriptor for the given tag or digest.
func (s *repoManifestStore) StatTagOrDigest(ctx context.Context, tagOrDigest string) (imgspecv1.Descriptor, error) {
	return s.Registry.StatManifest(ctx, s.Named().Path(), tagOrDigest)
}

type repoTagStore struct {
	*Repository
}

// Stat retrieves the descriptor identified by the given tag.
func (s *repoTagStore) Stat(ctx context.Context, tag string) (imgspecv1.Descriptor, error) {
	return s.Registry.StatManifest(ctx, s.Named().Path(), tag)
}

// Tag tags a descriptor by the given tag.
func (s *repoTagStore) Tag(ctx context.Context, target cas.Reader, tag string) error {
	return s.Registry.PushManifest(ctx, s.Named().Path(), target, tag)
}

// Untag removes the tag.
func (s *repoTagStore) Untag(ctx context.Context, tag string) error {
	desc, err := s.Stat(ctx, tag)
	if err != nil {
		return err
	}
	return s.Registry.DeleteManifest(ctx, s.Named().Path(), desc.Digest.String())
}

// List lists the tags.
func (s *repoTagStore) List(opts ...distribution.ListOption) iter.Iterator[string] {
	return s.Registry.ListTags(s.Named().Path(), opts...)
}

type repoBlobStore struct {
	*Repository
}

// Stat returns the descriptor for the given reference, which must be a
// valid digest string.
func (s *repoBlobStore) Stat(ctx context.Context, reference string) (imgspecv1.Descriptor, error) {
	var zero imgspecv1.Descriptor
	dgst, err := digest.Parse(reference)
	if err != nil {
		return zero, errdefs.Newf(errdefs.ErrInvalidParameter, "invalid blob reference %q: %v", reference, err)
	}
	return s.Registry.StatBlob(ctx, s.Named().Path(), dgst)
}

// Exists returns true if the described content exists.
func (s *repoBlobStore) Exists(ctx context.Context, target imgspecv1.Descriptor) (bool, error) {
	_, err := s.Registry.StatBlob(ctx, s.Named().Path(), target.Digest)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, errdefs.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// Fetch fetches the content identified by the descriptor.
func (s *repoBlobStore) Fetch(ctx context.Context, target imgspecv1.Descriptor) (cas.ReadCloser, error) {
	return s.Registry.GetBlob(ctx, s.Named().Path(), target.Digest)
}

// Push pushes the content [cas.Reader] with the monolithic POST-then-PUT
// upload; it does not fall back to a chunked upload. Chunked uploads are
// available through [Registry.PushBlobChunked].
func (s *repoBlobStore) Push(ctx context.Context, content cas.Reader) error {
	getter := func(context.Context) (cas.ReadCloser, error) {
		return cas.NewReadCloserSkipVerify(io.NopCloser(content), content.Descriptor()), nil
	}
	return s.Registry.PushBlob(ctx, s.Named().Path(), getter)
}

// Delete removes the content identified by the descriptor.
func (s *repoBlobStore) Delete(ctx context.Context, target imgspecv1.Descriptor) error {
	return s.Registry.DeleteBlob(ctx, s.Named().Path(), target.Digest)
}
