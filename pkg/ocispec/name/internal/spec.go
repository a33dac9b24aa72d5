// Package internal holds the regular expressions backing the reference
// grammar documented in [github.com/wuxler/ocidist/pkg/ocispec/name]'s
// package doc.
package internal

import (
	"regexp"

	"github.com/wuxler/ocidist/pkg/util/xregexp"
)

var (
	re         = regexp.MustCompile
	literal    = xregexp.Literal
	expression = xregexp.Expression
	optional   = xregexp.Optional
	repeated   = xregexp.Repeated
	group      = xregexp.Group
	capture    = xregexp.Capture
	anchored   = xregexp.Anchored
)

var (
	// DigestRegexp matches well-formed digests, including algorithm (e.g. "sha256:<encoded>").
	DigestRegexp = re(digestPat)

	// AnchoredDigestRegexp matches valid digests, anchored at the start and
	// end of the matched string.
	AnchoredDigestRegexp = re(anchored(digestPat))

	// TagRegexp matches valid tag names.
	TagRegexp = re(tag)

	// AnchoredTagRegexp matches valid tags, anchored at the start and
	// end of the matched string.
	AnchoredTagRegexp = re(anchored(tag))

	// DomainRegexp matches hostname or IP-addresses, optionally including a port
	// number.
	DomainRegexp = re(domain)

	// AnchoredDomainRegexp matches valid domain, anchored at the start and
	// end of the matched string.
	AnchoredDomainRegexp = re(anchored(domain))

	// IdentifierRegexp is the format for string identifier used as a
	// content addressable identifier using sha256.
	IdentifierRegexp = re(identifier)

	// AnchoredIdentifierRegexp is used to check or match an identifier value,
	// anchored at start and end of string.
	AnchoredIdentifierRegexp = re(anchored(identifier))

	// ShortIdentifierRegexp is the format used to represent a prefix of an
	// identifier.
	ShortIdentifierRegexp = re(shortIdentifier)

	// AnchoredShortIdentifierRegexp is used to check or match a prefix of an
	// identifier, anchored at start and end of string.
	AnchoredShortIdentifierRegexp = re(anchored(shortIdentifier))

	// RemoteNameRegexp is the format of the repository path without registry
	// host prefix.
	RemoteNameRegexp = re(remoteName)

	// AnchoredRemoteNameRegexp is used to check or match a repository name
	// without registry host prefix, anchored at start and end of string.
	AnchoredRemoteNameRegexp = re(anchored(remoteName))

	// NameRegexp is the format for the name component of references, including
	// an optional domain and port, but without tag or digest suffix.
	NameRegexp = re(namePat)

	// AnchoredNameRegexp is used to parse a name value, capturing the domain
	// and trailing components.
	AnchoredNameRegexp = re(anchoredName)

	// ReferenceRegexp is the full supported format of a reference. The regexp
	// is not anchored (see AnchoredReferenceRegexp) and has capturing groups
	// for name, tag, and digest components.
	ReferenceRegexp = re(referencePat)

	// AnchoredReferenceRegexp is used to check or match a reference value,
	// anchored at start and end of string.
	AnchoredReferenceRegexp = re(anchored(referencePat))

	// AnchoredSchemePrefixRegexp is used to check whether a domain carries an
	// "http(s)://" prefix.
	AnchoredSchemePrefixRegexp = re(anchored(`(?P<prefix>.*://).*$`))
)

const (
	// alphaNumeric defines the alpha numeric atom, typically a component of
	// names. This only allows lower case characters and digits.
	alphaNumeric = `[a-z0-9]+`

	// separator defines the separators allowed to be embedded in name
	// components: one period, one or two underscores, or multiple dashes.
	separator = `(?:[._]|__|[-]*)`

	// domainNameComponent restricts the registry domain component of a
	// repository name to start with a component as defined by DomainRegexp
	// and followed by an optional port.
	domainNameComponent = `(?:[a-zA-Z0-9]|[a-zA-Z0-9][a-zA-Z0-9-]*[a-zA-Z0-9])`

	// ipv6address are enclosed between square brackets, excluding zone
	// identifiers (rfc6874) and special addresses such as IPv4-Mapped.
	ipv6address = `\[(?:[a-fA-F0-9:]+)\]`

	// port defines the port number atom without port separator (e.g. "80").
	port = `[0-9]+`

	// tag matches valid tag names. The string counterpart of TagRegexp.
	tag = `[\w][\w.-]{0,127}`

	// digestPat matches well-formed digests, including algorithm (e.g.
	// "sha256:<encoded>").
	digestPat = `[A-Za-z][A-Za-z0-9]*(?:[-_+.][A-Za-z][A-Za-z0-9]*)*[:][[:xdigit:]]{32,}`

	// identifier is the format for a content addressable identifier using
	// sha256. These identifiers are like digests without the algorithm,
	// since sha256 is used.
	identifier = `([a-f0-9]{64})`

	// shortIdentifier is the string counterpart of ShortIdentifierRegexp.
	shortIdentifier = `([a-f0-9]{6,64})`
)

var (
	// domainName defines the structure of potential domain components that
	// may be part of image names, purposely a subset of what DNS allows, to
	// stay backwards-compatible with Docker image names. Includes IPv4
	// addresses in decimal format.
	domainName = expression(
		domainNameComponent,
		optional(repeated(literal(`.`), domainNameComponent)),
	)

	// host defines the structure of potential domains based on the URI Host
	// subcomponent of rfc3986.
	host = expression(domainName, `|`, ipv6address)

	// domain allowed by the URI Host subcomponent of rfc3986.
	domain = expression(group(host), optional(literal(`:`), port))

	// pathComponent restricts path-components to start with an alphanumeric
	// character, with following parts separated by a separator.
	pathComponent = expression(
		alphaNumeric,
		optional(repeated(separator, alphaNumeric)),
	)

	// remoteName matches the remote-name of a repository without registry
	// host: one or more forward-slash delimited path-components.
	remoteName = expression(
		pathComponent,
		optional(repeated(literal(`/`), pathComponent)),
	)

	// namePat matches the repository with registry host.
	namePat = expression(
		optional(domain, literal(`/`)),
		remoteName,
	)

	anchoredName = anchored(
		optional(capture(domain), literal(`/`)),
		capture(remoteName),
	)

	// referencePat matches the reference string.
	referencePat = expression(capture(namePat),
		optional(literal(":"), capture(tag)),
		optional(literal("@"), capture(digestPat)),
	)
)
