package name_test

import (
	"strings"
	"testing"

	godigest "github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wuxler/ocidist/pkg/ocispec/name"
)

func subTestName(input string, good bool) string {
	if input == "" {
		input = "empty"
	}
	if good {
		return "(good) " + input
	}
	return "(bad) " + input
}

func TestNewRegistry(t *testing.T) {
	testcases := []struct {
		input   string
		host    string
		scheme  string
		wantErr bool
	}{
		{input: "example.registry.com", host: "example.registry.com"},
		{input: "example.registry.com:8080", host: "example.registry.com:8080"},
		{input: "example.registry.com:8080/library/hello", host: "example.registry.com:8080"},
		{input: "http://example.registry.com:8080", host: "example.registry.com:8080", scheme: "http"},
		{input: "https://example.registry.com:8080", host: "example.registry.com:8080", scheme: "https"},
		{input: "wss://example.registry.com:8080", wantErr: true},
		{input: "localhost", host: "localhost", scheme: "http"},
		{input: "localhost:3000", host: "localhost:3000", scheme: "http"},
		{input: "172.16.18.130", host: "172.16.18.130", scheme: "http"},
		{input: "172.16.18.130:3000", host: "172.16.18.130:3000", scheme: "http"},
		{input: "[fd00:1:2::3]:75050", host: "[fd00:1:2::3]:75050"},
	}

	for _, tc := range testcases {
		t.Run(subTestName(tc.input, !tc.wantErr), func(t *testing.T) {
			got, err := name.NewRegistry(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.host, got.Hostname())
			assert.Equal(t, tc.scheme, got.Scheme())
		})
	}
}

func TestNewRegistryNormalizesDockerAliases(t *testing.T) {
	testcases := []struct {
		input string
		host  string
	}{
		{input: "", host: name.DefaultRegistry},
		{input: "docker.io", host: name.DefaultRegistry},
		{input: "index.docker.io", host: name.DefaultRegistry},
	}
	for _, tc := range testcases {
		t.Run(subTestName(tc.input, true), func(t *testing.T) {
			got, err := name.NewRegistry(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.host, got.Hostname())
		})
	}
}

func TestNewRepository(t *testing.T) {
	testcases := []struct {
		input   string
		host    string
		scheme  string
		path    string
		wantErr bool
	}{
		{input: "registry.example.com/hello", host: "registry.example.com", path: "hello"},
		{input: "registry.example.com/hello/world", host: "registry.example.com", path: "hello/world"},
		{input: "127.0.0.1:5000/hello/world", host: "127.0.0.1:5000", scheme: "http", path: "hello/world"},
		{input: "http://registry.example.com/hello/world", host: "registry.example.com", scheme: "http", path: "hello/world"},
		{input: "https://registry.example.com/hello/world", host: "registry.example.com", scheme: "https", path: "hello/world"},
		{input: "http://registry.example.com/hello/world:latest", host: "registry.example.com", scheme: "http", path: "hello/world"},
		{
			input: "docker.io/1a3f5e7d9c1b3a5f7e9d1c3b5a7f9e1d3c5b7a9f1e3d5d7c9b1a3f5e7d9c1b3a",
			host:  name.DefaultRegistry,
			path:  "library/1a3f5e7d9c1b3a5f7e9d1c3b5a7f9e1d3c5b7a9f1e3d5d7c9b1a3f5e7d9c1b3a",
		},
		{input: "hello/World", wantErr: true},
		{input: "-hello", wantErr: true},
		{input: "hello///world", wantErr: true},
		{input: "registry.example.com/hello/World", wantErr: true},
		{input: "1a3f5e7d9c1b3a5f7e9d1c3b5a7f9e1d3c5b7a9f1e3d5d7c9b1a3f5e7d9c1b3a", wantErr: true},
		{input: "hello/world/", wantErr: true},
	}

	for _, tc := range testcases {
		t.Run(subTestName(tc.input, !tc.wantErr), func(t *testing.T) {
			got, err := name.NewRepository(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.host, got.Domain().Hostname())
			assert.Equal(t, tc.scheme, got.Domain().Scheme())
			assert.Equal(t, tc.path, got.Path())
		})
	}
}

func TestNewRepositoryAppliesImplicitNamespace(t *testing.T) {
	testcases := []struct {
		input string
		host  string
		path  string
	}{
		{input: "hello", host: name.DefaultRegistry, path: "library/hello"},
		{input: "docker.io/hello", host: name.DefaultRegistry, path: "library/hello"},
		{input: "docker.io/hello/world", host: name.DefaultRegistry, path: "hello/world"},
		{input: "registry-1.docker.io/hello/world", host: name.DefaultRegistry, path: "hello/world"},
	}
	for _, tc := range testcases {
		t.Run(subTestName(tc.input, true), func(t *testing.T) {
			got, err := name.NewRepository(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.host, got.Domain().Hostname())
			assert.Equal(t, tc.path, got.Path())
		})
	}
}

func TestNewReference(t *testing.T) {
	type testcase struct {
		input   string
		host    string
		path    string
		tag     string
		digest  godigest.Digest
		wantErr bool
	}
	longDigest := godigest.Digest("sha256:2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824")
	testcases := []testcase{
		{input: "registry.example.com/hello", host: "registry.example.com", path: "hello", tag: "latest"},
		{input: "registry.example.com/hello:tag", host: "registry.example.com", path: "hello", tag: "tag"},
		{input: "registry.example.com:5000/hello:tag", host: "registry.example.com:5000", path: "hello", tag: "tag"},
		{
			input:  "registry.example.com:5000/hello@" + longDigest.String(),
			host:   "registry.example.com:5000",
			path:   "hello",
			digest: longDigest,
		},
		{
			input:  "registry.example.com:5000/hello:tag@" + longDigest.String(),
			host:   "registry.example.com:5000",
			path:   "hello",
			tag:    "tag",
			digest: longDigest,
		},
		{input: "", wantErr: true},
		{input: ":justtag", wantErr: true},
		{input: "Uppercase:tag", wantErr: true},
		{input: "validname@invaliddigest:ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff", wantErr: true},
		{input: strings.Repeat("a/", 128) + "a:tag", wantErr: true},
		{
			input: "lowercase:Uppercase",
			host:  name.DefaultRegistry,
			path:  "library/lowercase",
			tag:   "Uppercase",
		},
	}

	for _, tc := range testcases {
		t.Run(subTestName(tc.input, !tc.wantErr), func(t *testing.T) {
			got, err := name.NewReference(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.host, got.Repository().Domain().Hostname())
			assert.Equal(t, tc.path, got.Repository().Path())
			if tc.tag != "" {
				tagged, ok := name.IsTagged(got)
				require.True(t, ok)
				assert.Equal(t, tc.tag, tagged.Tag())
			}
			if tc.digest != "" {
				digested, ok := name.IsDigested(got)
				require.True(t, ok)
				assert.Equal(t, tc.digest, digested.Digest())
			}
		})
	}
}

func TestIdentify(t *testing.T) {
	tagged, err := name.NewReference("registry.example.com/hello:tag")
	require.NoError(t, err)
	identity, err := name.Identify(tagged)
	require.NoError(t, err)
	assert.Equal(t, "tag", identity)
}

func TestHostname(t *testing.T) {
	assert.Equal(t, "", name.Hostname(""))
	assert.Equal(t, "registry.example.com", name.Hostname("registry.example.com"))
	assert.Equal(t, "registry.example.com", name.Hostname("https://registry.example.com"))
	assert.Equal(t, "registry.example.com:5000", name.Hostname("https://registry.example.com:5000/v2/"))
}

func TestNamespace(t *testing.T) {
	assert.Equal(t, name.DefaultNamespace, name.Namespace("hello"))
	assert.Equal(t, "library", name.Namespace("library/hello"))
}
