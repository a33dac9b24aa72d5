// Package copy implements the distribution client's copy operation:
// transferring a manifest (and, if it's an index, its selected or every
// child manifest) and all of the blobs it references from a source
// repository to a destination, skipping content the destination
// already has.
package copy

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	imgspecv1 "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/wuxler/ocidist/pkg/errdefs"
	"github.com/wuxler/ocidist/pkg/ocispec"
	"github.com/wuxler/ocidist/pkg/ocispec/artifact"
	"github.com/wuxler/ocidist/pkg/ocispec/cas"
	"github.com/wuxler/ocidist/pkg/ocispec/distribution"
	"github.com/wuxler/ocidist/pkg/ocispec/manifest"
	_ "github.com/wuxler/ocidist/pkg/ocispec/manifest/all" // register oci/docker manifest schemas
	"github.com/wuxler/ocidist/pkg/util/xio"
)

// Repository is the minimal shape a copy source or destination must
// have: manifest, tag, and blob storage views. Both [remote.Repository]
// and [layout.Store] satisfy it.
type Repository interface {
	Manifests() distribution.ManifestStore
	Tags() distribution.TagStore
	Blobs() distribution.BlobStore
}

// Options controls a [Copy].
type Options struct {
	// Recursive, when true, also copies every referrer of the copied
	// manifest (and their referrers, transitively).
	Recursive bool

	// Matchers select a single manifest out of a source index, applied
	// in order until one matches. If empty, and the source is an index
	// with no matching child, the whole index and all its children are
	// copied, which is the correct behavior for a multi-platform image
	// being mirrored rather than pulled for one platform.
	Matchers []manifest.DescriptorMatcher

	// Concurrency bounds how many blobs are copied at once. Zero means
	// the default of 3, mirroring typical registry-client concurrency.
	Concurrency int
}

const defaultConcurrency = 3

// Copy copies the manifest identified by srcRef in src to dst, tagging
// it dstTag in the destination if dstTag is non-empty. It returns the
// descriptor of the manifest as it exists in the destination.
func Copy(ctx context.Context, src, dst Repository, srcRef string, dstTag string, opts Options) (imgspecv1.Descriptor, error) {
	c := &copier{src: src, dst: dst, opts: opts, visited: make(map[string]bool)}
	desc, err := c.copyManifest(ctx, srcRef)
	if err != nil {
		return imgspecv1.Descriptor{}, err
	}
	if dstTag != "" {
		rc, err := dst.Manifests().Fetch(ctx, desc)
		if err != nil {
			return imgspecv1.Descriptor{}, err
		}
		defer xio.CloseAndSkipError(rc)
		if err := dst.Tags().Tag(ctx, rc, dstTag); err != nil {
			return imgspecv1.Descriptor{}, err
		}
	}
	if opts.Recursive {
		if err := c.copyReferrers(ctx, desc); err != nil {
			return imgspecv1.Descriptor{}, err
		}
	}
	return desc, nil
}

type copier struct {
	src, dst Repository
	opts     Options

	// visited guards the referrer walk against a subject cycle: a
	// malformed registry response that points a manifest's Subject
	// back at one of its own ancestors must not recurse forever.
	visited map[string]bool
}

// copyManifest fetches ref from the source, recursively copies
// everything it references (config/layers for an image manifest, child
// manifests for an index), pushes it to the destination, and returns
// its descriptor.
func (c *copier) copyManifest(ctx context.Context, ref string) (imgspecv1.Descriptor, error) {
	rc, err := c.src.Manifests().FetchTagOrDigest(ctx, ref)
	if err != nil {
		return imgspecv1.Descriptor{}, err
	}
	defer xio.CloseAndSkipError(rc)

	parsed, desc, err := manifest.ParseCASReader(rc)
	if err != nil {
		return imgspecv1.Descriptor{}, err
	}

	if idx, ok := parsed.(ocispec.IndexManifest); ok {
		return c.copyIndex(ctx, idx, desc)
	}
	return c.copyLeafManifest(ctx, parsed, desc)
}

// copyIndex copies the manifests referenced by idx. When a configured
// matcher selects a child, only that child is copied and its descriptor
// is returned; idx itself is not pushed. Otherwise every child is copied
// and idx itself is pushed once its children are in place.
func (c *copier) copyIndex(ctx context.Context, idx ocispec.IndexManifest, desc imgspecv1.Descriptor) (imgspecv1.Descriptor, error) {
	descs := idx.Manifests()

	if len(c.opts.Matchers) > 0 {
		for _, m := range c.opts.Matchers {
			if selected, ok := m(descs...); ok {
				return c.copyManifest(ctx, selected.Digest.String())
			}
		}
	}

	for _, child := range descs {
		if _, err := c.copyManifest(ctx, child.Digest.String()); err != nil {
			return imgspecv1.Descriptor{}, err
		}
	}
	return c.pushManifestDescriptor(ctx, desc)
}

// copyLeafManifest copies every blob a non-index manifest references
// (config and layers) and pushes the manifest itself.
func (c *copier) copyLeafManifest(ctx context.Context, m ocispec.Manifest, desc imgspecv1.Descriptor) (imgspecv1.Descriptor, error) {
	if err := c.copyBlobsConcurrently(ctx, m.References()); err != nil {
		return imgspecv1.Descriptor{}, err
	}
	return c.pushManifestDescriptor(ctx, desc)
}

// pushManifestDescriptor re-fetches desc from the source (the earlier
// read was already consumed parsing it) and pushes it to the
// destination, skipping the push entirely if the destination already
// has it.
func (c *copier) pushManifestDescriptor(ctx context.Context, desc imgspecv1.Descriptor) (imgspecv1.Descriptor, error) {
	exists, err := c.dst.Manifests().Exists(ctx, desc)
	if err != nil {
		return imgspecv1.Descriptor{}, err
	}
	if exists {
		return desc, nil
	}
	rc, err := c.src.Manifests().Fetch(ctx, desc)
	if err != nil {
		return imgspecv1.Descriptor{}, err
	}
	defer xio.CloseAndSkipError(rc)
	if err := c.dst.Manifests().Push(ctx, rc); err != nil {
		return imgspecv1.Descriptor{}, err
	}
	return desc, nil
}

// copyBlobsConcurrently copies each descriptor in descs from source to
// destination, bounded by opts.Concurrency, skipping any that already
// exist at the destination (spec's Exists fast-path). Concurrent pushes
// of the same digest are allowed to race: the underlying stores resolve
// that as first-writer-wins.
func (c *copier) copyBlobsConcurrently(ctx context.Context, descs []imgspecv1.Descriptor) error {
	limit := c.opts.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, desc := range descs {
		desc := desc
		g.Go(func() error {
			return c.copyBlob(gctx, desc)
		})
	}
	return g.Wait()
}

func (c *copier) copyBlob(ctx context.Context, desc imgspecv1.Descriptor) error {
	exists, err := c.dst.Blobs().Exists(ctx, desc)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	rc, err := c.src.Blobs().Fetch(ctx, desc)
	if err != nil {
		return err
	}
	defer xio.CloseAndSkipError(rc)
	return c.dst.Blobs().Push(ctx, asReader(rc, desc))
}

func asReader(rc cas.ReadCloser, desc imgspecv1.Descriptor) cas.Reader {
	if artifact.DescriptorsEqual(rc.Descriptor(), desc) {
		return rc
	}
	return cas.NewReader(rc, desc)
}

// copyReferrers walks the referrer DAG rooted at desc, copying every
// referrer (and, transitively, theirs) into the destination. Sources
// that don't implement [distribution.ReferrerLister] have no referrers
// to walk and this is a no-op.
func (c *copier) copyReferrers(ctx context.Context, desc imgspecv1.Descriptor) error {
	lister, ok := c.src.(distribution.ReferrerLister)
	if !ok {
		return nil
	}
	return c.walkReferrers(ctx, lister, desc)
}

func (c *copier) walkReferrers(ctx context.Context, lister distribution.ReferrerLister, desc imgspecv1.Descriptor) error {
	key := desc.Digest.String()
	if c.visited[key] {
		return nil
	}
	c.visited[key] = true

	referrers, err := lister.ListReferrers(ctx, desc.Digest, "")
	if err != nil {
		return fmt.Errorf("%w: list referrers of %s: %v", errdefs.ErrProtocol, desc.Digest, err)
	}
	for _, referrer := range referrers {
		copied, err := c.copyManifest(ctx, referrer.Digest.String())
		if err != nil {
			return err
		}
		if err := c.walkReferrers(ctx, lister, copied); err != nil {
			return err
		}
	}
	return nil
}
