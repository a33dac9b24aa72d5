package distribution

import (
	"context"

	"github.com/opencontainers/go-digest"
	imgspecv1 "github.com/opencontainers/image-spec/specs-go/v1"

	ocispecname "github.com/wuxler/ocidist/pkg/ocispec/name"
)

// Repository is a single named repository within a registry, exposing
// its three storage views. [remote.Repository] implements it.
// [layout.Store] offers the same three storage views but has no Named
// method, so it does not implement Repository; the copy package works
// over either through its own interface, which has no Named method.
type Repository interface {
	// Named returns the repository's name.
	Named() ocispecname.Repository
	// Manifests returns the manifest storage view of this repository.
	Manifests() ManifestStore
	// Tags returns the tag storage view of this repository.
	Tags() TagStore
	// Blobs returns the blob storage view of this repository.
	Blobs() BlobStore
}

// ReferrerLister is implemented by repositories that can enumerate the
// manifests referring to a given subject digest, per the distribution
// spec's referrers API (falling back to the referrers tag schema where
// the transport requires it).
type ReferrerLister interface {
	ListReferrers(ctx context.Context, dgst digest.Digest, artifactType string) ([]imgspecv1.Descriptor, error)
}
