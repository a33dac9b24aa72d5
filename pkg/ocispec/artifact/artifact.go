// Package artifact builds and mutates the content-addressable object
// model shared by registries and OCI image layouts: descriptors,
// manifests, indices, and configs, modeled per the design note that
// treats them as a tagged union with common fields in [imgspecv1.Descriptor]
// and variant-specific fields in the JSON document each descriptor names.
//
// Values returned from this package are immutable: every With* builder
// returns a new value rather than mutating its receiver, so a manifest
// handed to one caller can't be invalidated by another's edits.
package artifact

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/opencontainers/go-digest"
	specs "github.com/opencontainers/image-spec/specs-go"
	imgspecv1 "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/wuxler/ocidist/pkg/ocispec"
)

// EmptyJSON is the canonical two-byte payload used for the synthetic
// empty layer and the empty config.
var EmptyJSON = []byte("{}")

// EmptyDescriptor is the canonical descriptor of [EmptyJSON] with media
// type [ocispec.MediaTypeEmptyJSON], used both as the placeholder layer
// of a manifest with no real layers and as the empty config.
var EmptyDescriptor = imgspecv1.Descriptor{
	MediaType: ocispec.MediaTypeEmptyJSON,
	Digest:    digest.FromBytes(EmptyJSON),
	Size:      int64(len(EmptyJSON)),
}

// DescriptorOf builds a minimal descriptor for content identified by
// dgst and size, using the default media type. Use [Descriptor] for the
// fuller form.
func DescriptorOf(dgst digest.Digest, size int64) imgspecv1.Descriptor {
	return imgspecv1.Descriptor{
		MediaType: ocispec.DefaultMediaType,
		Digest:    dgst,
		Size:      size,
	}
}

// Descriptor builds a descriptor with an explicit media type, optional
// annotations and artifact type.
func Descriptor(mediaType string, dgst digest.Digest, size int64, opts ...DescriptorOption) imgspecv1.Descriptor {
	if mediaType == "" {
		mediaType = ocispec.DefaultMediaType
	}
	d := imgspecv1.Descriptor{MediaType: mediaType, Digest: dgst, Size: size}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// DescriptorOption customizes a [Descriptor] at construction time.
type DescriptorOption func(*imgspecv1.Descriptor)

// WithAnnotations sets the descriptor's annotations.
func WithAnnotations(annotations map[string]string) DescriptorOption {
	return func(d *imgspecv1.Descriptor) { d.Annotations = maps.Clone(annotations) }
}

// WithArtifactType sets the descriptor's artifact type.
func WithArtifactType(artifactType string) DescriptorOption {
	return func(d *imgspecv1.Descriptor) { d.ArtifactType = artifactType }
}

// WithData embeds raw bytes directly in the descriptor.
func WithData(data []byte) DescriptorOption {
	return func(d *imgspecv1.Descriptor) { d.Data = slices.Clone(data) }
}

// DescriptorsEqual reports whether two descriptors refer to the same
// content: spec.md defines equality as digest, size, and media type all
// matching; annotations and artifact type are not part of identity.
func DescriptorsEqual(a, b imgspecv1.Descriptor) bool {
	return a.Digest == b.Digest && a.Size == b.Size && a.MediaType == b.MediaType
}

// Manifest is an immutable OCI image manifest value.
type Manifest struct {
	raw imgspecv1.Manifest
}

// EmptyManifest returns the canonical minimal manifest: schema version
// 2, the OCI manifest media type, the empty config, and the synthetic
// empty layer required by spec.md's "manifest with no layers" invariant.
func EmptyManifest() Manifest {
	return Manifest{raw: imgspecv1.Manifest{
		Versioned: specs.Versioned{SchemaVersion: 2},
		MediaType: ocispec.MediaTypeImageManifest,
		Config:    EmptyDescriptor,
		Layers:    []imgspecv1.Descriptor{EmptyDescriptor},
	}}
}

// NewManifest builds a manifest from a config and layers. If layers is
// empty, the synthetic empty layer is substituted so that registries
// rejecting an empty layer array still accept the manifest.
func NewManifest(config imgspecv1.Descriptor, layers []imgspecv1.Descriptor) Manifest {
	if len(layers) == 0 {
		layers = []imgspecv1.Descriptor{EmptyDescriptor}
	}
	return Manifest{raw: imgspecv1.Manifest{
		Versioned: specs.Versioned{SchemaVersion: 2},
		MediaType: ocispec.MediaTypeImageManifest,
		Config:    config,
		Layers:    slices.Clone(layers),
	}}
}

// Raw returns the underlying wire-format value.
func (m Manifest) Raw() imgspecv1.Manifest { return m.raw }

// WithConfig returns a copy of m with its config descriptor replaced.
func (m Manifest) WithConfig(config imgspecv1.Descriptor) Manifest {
	m.raw.Config = config
	return m
}

// WithLayers returns a copy of m with its layer list replaced. An empty
// slice is normalized to the synthetic empty layer.
func (m Manifest) WithLayers(layers []imgspecv1.Descriptor) Manifest {
	if len(layers) == 0 {
		layers = []imgspecv1.Descriptor{EmptyDescriptor}
	}
	m.raw.Layers = slices.Clone(layers)
	return m
}

// WithSubject returns a copy of m that refers back to subject, turning m
// into a referrer of subject.
func (m Manifest) WithSubject(subject imgspecv1.Descriptor) Manifest {
	s := subject
	m.raw.Subject = &s
	return m
}

// WithAnnotations returns a copy of m with its annotations replaced.
func (m Manifest) WithAnnotations(annotations map[string]string) Manifest {
	m.raw.Annotations = maps.Clone(annotations)
	return m
}

// WithArtifactType returns a copy of m with its artifact type replaced.
func (m Manifest) WithArtifactType(artifactType string) Manifest {
	m.raw.ArtifactType = artifactType
	return m
}

// Marshal serializes m to its canonical JSON bytes.
func (m Manifest) Marshal() ([]byte, error) {
	return json.Marshal(m.raw)
}

// Descriptor computes the descriptor for m's exact serialized bytes.
func (m Manifest) Descriptor() (imgspecv1.Descriptor, error) {
	data, err := m.Marshal()
	if err != nil {
		return imgspecv1.Descriptor{}, err
	}
	return Descriptor(ocispec.MediaTypeImageManifest, digest.FromBytes(data), int64(len(data))), nil
}

// UnmarshalManifest parses raw bytes as a [Manifest].
func UnmarshalManifest(data []byte) (Manifest, error) {
	var raw imgspecv1.Manifest
	if err := json.Unmarshal(data, &raw); err != nil {
		return Manifest{}, err
	}
	return Manifest{raw: raw}, nil
}

// Index is an immutable OCI image index value.
type Index struct {
	raw imgspecv1.Index
}

// EmptyIndex returns a minimal index with no manifests.
func EmptyIndex() Index {
	return Index{raw: imgspecv1.Index{
		Versioned: specs.Versioned{SchemaVersion: 2},
		MediaType: ocispec.MediaTypeImageIndex,
	}}
}

// NewIndex builds an index over the given manifest descriptors.
func NewIndex(manifests []imgspecv1.Descriptor) Index {
	return Index{raw: imgspecv1.Index{
		Versioned: specs.Versioned{SchemaVersion: 2},
		MediaType: ocispec.MediaTypeImageIndex,
		Manifests: slices.Clone(manifests),
	}}
}

// Raw returns the underlying wire-format value.
func (idx Index) Raw() imgspecv1.Index { return idx.raw }

// WithManifests returns a copy of idx with its manifest list replaced.
func (idx Index) WithManifests(manifests []imgspecv1.Descriptor) Index {
	idx.raw.Manifests = slices.Clone(manifests)
	return idx
}

// WithAnnotations returns a copy of idx with its annotations replaced.
func (idx Index) WithAnnotations(annotations map[string]string) Index {
	idx.raw.Annotations = maps.Clone(annotations)
	return idx
}

// Marshal serializes idx to its canonical JSON bytes.
func (idx Index) Marshal() ([]byte, error) {
	return json.Marshal(idx.raw)
}

// Descriptor computes the descriptor for idx's exact serialized bytes.
func (idx Index) Descriptor() (imgspecv1.Descriptor, error) {
	data, err := idx.Marshal()
	if err != nil {
		return imgspecv1.Descriptor{}, err
	}
	return Descriptor(ocispec.MediaTypeImageIndex, digest.FromBytes(data), int64(len(data))), nil
}

// UnmarshalIndex parses raw bytes as an [Index].
func UnmarshalIndex(data []byte) (Index, error) {
	var raw imgspecv1.Index
	if err := json.Unmarshal(data, &raw); err != nil {
		return Index{}, err
	}
	return Index{raw: raw}, nil
}

// EmptyConfig returns the canonical empty config descriptor and its
// bytes, used when a caller pushes an artifact without a real config.
func EmptyConfig() (imgspecv1.Descriptor, []byte) {
	return EmptyDescriptor, slices.Clone(EmptyJSON)
}
