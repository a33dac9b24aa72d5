// Package registriesconf loads and queries the layered "registries.conf"
// TOML configuration: registry aliases, unqualified-search order, and
// per-registry blocked/insecure flags, following the Podman/containers
// ecosystem file format and search-path conventions.
package registriesconf

import (
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/wuxler/ocidist/pkg/errdefs"
)

// RegistryEntry describes one per-registry override block.
type RegistryEntry struct {
	Location string `toml:"location"`
	Blocked  bool   `toml:"blocked"`
	Insecure bool   `toml:"insecure"`
}

// rawConfig mirrors the registries.conf TOML document shape directly.
type rawConfig struct {
	Aliases                     map[string]string `toml:"aliases"`
	UnqualifiedSearchRegistries []string          `toml:"unqualified-search-registries"`
	Registry                    []RegistryEntry   `toml:"registry"`
}

// Config is the parsed, queryable form of a registries.conf document.
type Config struct {
	raw rawConfig
}

// Parse parses data as a registries.conf TOML document.
func Parse(data []byte) (*Config, error) {
	var raw rawConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, errdefs.Newf(errdefs.ErrInvalidParameter, "parse registries.conf: %v", err)
	}
	return &Config{raw: raw}, nil
}

// DefaultSearchPaths returns the ordered list of paths to probe for a
// registries.conf, user config preferred over the global system path, per
// spec.md's "Default config search paths".
func DefaultSearchPaths() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		paths = append(paths, home+"/.config/containers/registries.conf")
	}
	paths = append(paths, "/etc/containers/registries.conf")
	return paths
}

// Load reads the first existing file among paths (or [DefaultSearchPaths]
// if paths is empty) and parses it. A Config with no entries is returned,
// not an error, if none of the paths exist.
func Load(paths ...string) (*Config, error) {
	if len(paths) == 0 {
		paths = DefaultSearchPaths()
	}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		return Parse(data)
	}
	return &Config{}, nil
}

// GetAliases returns the full alias mapping.
func (c *Config) GetAliases() map[string]string {
	return c.raw.Aliases
}

// HasAlias reports whether name has a registered alias.
func (c *Config) HasAlias(name string) bool {
	_, ok := c.raw.Aliases[name]
	return ok
}

// ResolveAlias returns the alias target for name, or name unchanged if
// there is no alias.
func (c *Config) ResolveAlias(name string) string {
	if target, ok := c.raw.Aliases[name]; ok {
		return target
	}
	return name
}

// GetUnqualifiedRegistries returns the ordered list of registries to
// search when a reference names no registry explicitly.
func (c *Config) GetUnqualifiedRegistries() []string {
	return c.raw.UnqualifiedSearchRegistries
}

// findEntry scans the registry entries list linearly and returns the
// first one whose location is a prefix match for location, per spec.md's
// "first match wins" rule.
func (c *Config) findEntry(location string) (RegistryEntry, bool) {
	for _, entry := range c.raw.Registry {
		if matchesLocation(entry.Location, location) {
			return entry, true
		}
	}
	return RegistryEntry{}, false
}

func matchesLocation(pattern, location string) bool {
	if pattern == location {
		return true
	}
	return strings.HasPrefix(location, strings.TrimSuffix(pattern, "/")+"/")
}

// IsBlocked reports whether location matches a registry entry marked
// blocked.
func (c *Config) IsBlocked(location string) bool {
	entry, ok := c.findEntry(location)
	return ok && entry.Blocked
}

// IsInsecure reports whether location matches a registry entry marked
// insecure.
func (c *Config) IsInsecure(location string) bool {
	entry, ok := c.findEntry(location)
	return ok && entry.Insecure
}
