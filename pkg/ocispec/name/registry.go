package name

import (
	"fmt"
	"net"
	stdurl "net/url"
	"regexp"
	"strings"

	"github.com/wuxler/ocidist/pkg/errdefs"
	"github.com/wuxler/ocidist/pkg/ocispec/name/internal"
	"github.com/wuxler/ocidist/pkg/util/xregexp"
)

var (
	defaultRegistryAliases = map[string][]string{
		DefaultRegistry: {
			DockerIOHostname,
			DockerIndexHostname,
		},
	}

	// reLoopback detects the loopback IPv4 address (127.0.0.1).
	reLoopback = regexp.MustCompile(regexp.QuoteMeta("127.0.0.1"))

	// reipv6Loopback detects the loopback IPv6 address (::1).
	reipv6Loopback = regexp.MustCompile(regexp.QuoteMeta("::1"))
)

type registry struct {
	scheme   string
	hostname string
}

func (r registry) String() string {
	return r.hostname
}

// Scheme returns the scheme ("http" or "https") of the registry.
func (r registry) Scheme() string {
	return r.scheme
}

// Hostname returns the hostname of the registry.
func (r registry) Hostname() string {
	return r.hostname
}

// WithScheme returns a copy of the Registry with the scheme overwritten.
func (r registry) WithScheme(scheme string) Registry {
	clone := r
	clone.scheme = scheme
	return clone
}

func newRegistry(name string, opts options) (registry, error) {
	var zero registry
	r, err := parseRegistry(name, opts)
	if err != nil {
		return zero, fmt.Errorf("unable to parse registry %q: %w", name, err)
	}
	normalized := normalizeRegistry(r, opts)
	if err := ValidateRegistry(normalized); err != nil {
		return zero, fmt.Errorf("invalid registry %q: %w", name, err)
	}
	return normalized, nil
}

func normalizeRegistry(r registry, opts options) registry {
	if r.hostname == "" {
		r.hostname = opts.defaultRegistry
	}
	if redirect, ok := isDockerLegacyDomain(r.hostname); ok {
		// rewrite "docker.io" and "index.docker.io" to "registry-1.docker.io"
		r.hostname = redirect
	}
	if r.scheme == "" {
		r.scheme = guessHTTP(r.hostname)
	}
	return r
}

func parseRegistry(name string, opts options) (registry, error) {
	var zero registry
	if name == "" {
		if opts.strict {
			return zero, errdefs.Newf(ErrBadName, "strict validation requires the registry to be explicitly defined")
		}
		return zero, nil
	}

	// split "http(s)://<host>" to "http(s)" and "<host>"
	scheme, _ := splitAndTrimScheme(name)
	if scheme != "" {
		url, err := stdurl.Parse(name)
		if err != nil {
			return zero, errdefs.Newf(ErrBadName, "unable to parse as url: %v", err)
		}
		return registry{scheme: url.Scheme, hostname: url.Host}, nil
	}

	// Per RFC 3986, registries (authorities) are required to be prefixed with "//".
	if url, err := stdurl.Parse("dummy://" + name); err == nil {
		return registry{hostname: url.Host}, nil
	}

	return zero, errdefs.Newf(ErrBadName, "registry must be a valid RFC 3986 URI authority")
}

func guessHTTP(hostname string) string {
	if hostname == "" {
		return ""
	}
	if isRFC1918(hostname) || isLocalhost(hostname) {
		return "http"
	}
	return ""
}

// isRFC1918 reports whether the hostname is a private IP address.
func isRFC1918(hostname string) bool {
	s := strings.Split(hostname, ":")[0]
	ip := net.ParseIP(s)
	if ip == nil {
		return false
	}
	for _, cidr := range []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"} {
		if _, block, err := net.ParseCIDR(cidr); err == nil {
			if block.Contains(ip) {
				return true
			}
		}
	}
	return false
}

// isLocalhost reports whether the hostname is a loopback address.
func isLocalhost(hostname string) bool {
	return strings.HasPrefix(hostname, "localhost") ||
		reLoopback.MatchString(hostname) ||
		reipv6Loopback.MatchString(hostname)
}

// isDockerLegacyDomain reports whether hostname is a legacy Docker Hub
// alias, returning the canonical redirect target.
func isDockerLegacyDomain(hostname string) (string, bool) {
	for redirect, aliases := range defaultRegistryAliases {
		for _, alias := range aliases {
			if hostname == alias {
				return redirect, true
			}
		}
	}
	return hostname, false
}

// splitAndTrimScheme splits an "http(s)://" scheme prefix off name,
// returning the scheme and the remainder.
func splitAndTrimScheme(name string) (scheme, remainder string) {
	matches, _ := xregexp.SubmatchCaptures(internal.AnchoredSchemePrefixRegexp, name)
	if prefix, ok := matches["prefix"]; ok {
		scheme = strings.TrimSuffix(prefix, "://")
		remainder = strings.TrimPrefix(name, prefix)
	} else {
		remainder = name
	}
	return
}

// SplitScheme splits an "http(s)://" scheme prefix off name, returning the
// scheme and the remainder. It is the exported counterpart used by
// [parseRepository].
func SplitScheme(name string) (scheme, remainder string) {
	return splitAndTrimScheme(name)
}
