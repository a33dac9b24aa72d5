package name

import (
	"fmt"
	"strings"

	"github.com/opencontainers/go-digest"
)

// LayoutRef is a reference into an OCI image layout directory: a
// filesystem path, optionally followed by a tag ("path:tag" form) or a
// digest ("path@digest" form).
type LayoutRef interface {
	fmt.Stringer

	// Path returns the filesystem path to the layout root.
	Path() string

	// Tag returns the tag and true if the reference carries a tag.
	Tag() (string, bool)

	// Digest returns the digest and true if the reference carries a digest.
	Digest() (digest.Digest, bool)
}

type layoutRef struct {
	path   string
	tag    string
	digest digest.Digest
}

func (r layoutRef) Path() string { return r.path }

func (r layoutRef) Tag() (string, bool) {
	if r.tag == "" {
		return "", false
	}
	return r.tag, true
}

func (r layoutRef) Digest() (digest.Digest, bool) {
	if r.digest == "" {
		return "", false
	}
	return r.digest, true
}

func (r layoutRef) String() string {
	switch {
	case r.digest != "":
		return r.path + "@" + r.digest.String()
	case r.tag != "":
		return r.path + ":" + r.tag
	default:
		return r.path
	}
}

// ParseLayoutRef parses s as a layout reference. Everything before an "@"
// (digest form) or the last ":" (tag form) is treated as the filesystem
// folder; a reference with neither is valid and carries no tag or digest
// (spec.md's "pulling a layout ref without tag/digest" case is rejected
// later, at the point of use, not here).
func ParseLayoutRef(s string) (LayoutRef, error) {
	if i := strings.LastIndex(s, "@"); i != -1 {
		dgst, err := digest.Parse(s[i+1:])
		if err != nil {
			return nil, fmt.Errorf("%w: invalid digest in layout reference %q: %v", ErrInvalidReference, s, err)
		}
		return layoutRef{path: s[:i], digest: dgst}, nil
	}
	// A ":" may also appear in a Windows drive path ("C:\..."); only treat
	// it as a tag separator when it isn't the second character of the string.
	if i := strings.LastIndex(s, ":"); i > 1 {
		return layoutRef{path: s[:i], tag: s[i+1:]}, nil
	}
	return layoutRef{path: s}, nil
}

// NewLayoutRef builds a LayoutRef from its parts directly, bypassing
// string parsing.
func NewLayoutRef(path string, tag string, dgst digest.Digest) LayoutRef {
	return layoutRef{path: path, tag: tag, digest: dgst}
}
