package name

import (
	"strings"

	godigest "github.com/opencontainers/go-digest"

	"github.com/wuxler/ocidist/pkg/errdefs"
	"github.com/wuxler/ocidist/pkg/ocispec/digest"
	"github.com/wuxler/ocidist/pkg/ocispec/name/internal"
)

// nameTotalLengthMax is the maximum total number of characters in a
// repository name.
const nameTotalLengthMax = 255

type reference struct {
	repo   Repository
	tag    string
	digest godigest.Digest
}

func (r reference) String() string {
	return r.repo.String() + ":" + r.tag + "@" + r.digest.String()
}

// Repository returns the name component as a Repository object.
func (r reference) Repository() Repository {
	return r.repo
}

// Tag returns the tag of the reference.
func (r reference) Tag() string {
	return r.tag
}

// Digest returns the digest of the reference.
func (r reference) Digest() godigest.Digest {
	return r.digest
}

type taggedReference struct {
	repo Repository
	tag  string
}

func (r taggedReference) String() string {
	return r.repo.String() + ":" + r.tag
}

// Repository returns the name component as a Repository object.
func (r taggedReference) Repository() Repository {
	return r.repo
}

// Tag returns the tag of the reference.
func (r taggedReference) Tag() string {
	return r.tag
}

type digestedReference struct {
	repo   Repository
	digest godigest.Digest
}

func (r digestedReference) String() string {
	return r.repo.String() + "@" + r.digest.String()
}

// Repository returns the name component as a Repository object.
func (r digestedReference) Repository() Repository {
	return r.repo
}

// Digest returns the digest of the reference.
func (r digestedReference) Digest() godigest.Digest {
	return r.digest
}

func newReference(name string, opts options) (Reference, error) {
	r, err := parseReference(name, opts)
	if err != nil {
		return nil, errdefs.Newf(ErrInvalidReference, "unable to parse reference %q: %v", name, err)
	}
	if err := ValidateReference(r); err != nil {
		return nil, errdefs.Newf(ErrInvalidReference, "invalid reference %q: %v", name, err)
	}
	return r, nil
}

func parseReference(name string, opts options) (Reference, error) {
	scheme, trimmed := splitAndTrimScheme(name)

	matches := internal.AnchoredReferenceRegexp.FindStringSubmatch(trimmed)
	if matches == nil {
		if trimmed == "" {
			return nil, errdefs.Newf(ErrBadName, "non-empty reference name is required")
		}
		if internal.AnchoredReferenceRegexp.FindStringSubmatch(strings.ToLower(trimmed)) != nil {
			return nil, errdefs.Newf(ErrBadName, "reference name must be lowercase")
		}
		return nil, errdefs.Newf(ErrBadName, "invalid reference name %q", trimmed)
	}
	if len(matches[1]) > nameTotalLengthMax {
		return nil, errdefs.Newf(ErrBadName, "reference name exceeds maximum length %d", nameTotalLengthMax)
	}

	remoteName := matches[1]
	if scheme != "" {
		remoteName = scheme + "://" + remoteName
	}
	repo, err := newRepository(remoteName, opts)
	if err != nil {
		return nil, err
	}

	tag := matches[2]

	var dgst godigest.Digest
	if matches[3] != "" {
		dgst, err = digest.Parse(matches[3])
		if err != nil {
			return nil, errdefs.Newf(ErrBadName, "invalid digest: %v", err)
		}
	}

	if tag == "" && dgst == "" {
		tag = opts.defaultTag
	}

	switch {
	case tag != "" && dgst != "":
		return reference{repo: repo, tag: tag, digest: dgst}, nil
	case tag != "":
		return taggedReference{repo: repo, tag: tag}, nil
	case dgst != "":
		return digestedReference{repo: repo, digest: dgst}, nil
	default:
		return nil, errdefs.Newf(ErrBadName, "neither tag nor digest specified: missing reference")
	}
}
