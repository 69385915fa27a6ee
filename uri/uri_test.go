package uri

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("valid patterns", func(t *testing.T) {
		tests := []struct {
			pattern  string
			params   []string
			wildcard string
			trailing bool
		}{
			{pattern: "/"},
			{pattern: "/users"},
			{pattern: "/users/"},
			{pattern: "/users/:id", params: []string{"id"}},
			{pattern: "/users/:id/posts/:post", params: []string{"id", "post"}},
			{pattern: "/files/*path", wildcard: "path"},
			{pattern: "/api/v1/users/:id/avatar", params: []string{"id"}},
			{pattern: "/:tenant/files/*rest", params: []string{"tenant"}, wildcard: "rest"},
			{pattern: "/users/:id/", params: []string{"id"}, trailing: true},
		}

		for _, tt := range tests {
			t.Run(tt.pattern, func(t *testing.T) {
				p, err := Parse(tt.pattern)
				require.NoError(t, err)

				assert.Equal(t, tt.pattern, p.String())
				assert.Equal(t, tt.params, p.Params())

				name, ok := p.Wildcard()
				assert.Equal(t, tt.wildcard != "", ok)
				assert.Equal(t, tt.wildcard, name)

				if tt.trailing {
					assert.True(t, p.HasTrailingSlash())
				}
			})
		}
	})

	t.Run("invalid patterns", func(t *testing.T) {
		tests := []struct {
			name    string
			pattern string
			wantErr error
		}{
			{"missing leading slash", "users/:id", ErrMissingLeadingSlash},
			{"empty pattern", "", ErrMissingLeadingSlash},
			{"empty middle segment", "/users//posts", ErrEmptySegment},
			{"bare param marker", "/users/:", ErrEmptyCaptureName},
			{"bare wildcard marker", "/files/*", ErrEmptyCaptureName},
			{"duplicate param names", "/users/:id/posts/:id", ErrDuplicateCaptureName},
			{"param repeated as wildcard", "/users/:id/*id", ErrDuplicateCaptureName},
			{"segment after wildcard", "/files/*path/meta", ErrWildcardPosition},
			{"trailing slash after wildcard", "/files/*path/", ErrWildcardPosition},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := Parse(tt.pattern)
				assert.ErrorIs(t, err, tt.wantErr)
			})
		}
	})

	t.Run("root pattern", func(t *testing.T) {
		p, err := Parse("/")
		require.NoError(t, err)

		assert.True(t, p.IsRoot())
		assert.Empty(t, p.Components())
		assert.Equal(t, "/", p.String())
	})

	t.Run("component order", func(t *testing.T) {
		p, err := Parse("/files/:dir/*rest")
		require.NoError(t, err)

		cs := p.Components()
		require.Len(t, cs, 3)
		assert.Equal(t, Component{Kind: KindStatic, Value: "files"}, cs[0])
		assert.Equal(t, Component{Kind: KindParam, Value: "dir"}, cs[1])
		assert.Equal(t, Component{Kind: KindWildcard, Value: "rest"}, cs[2])
	})
}

func TestJoin(t *testing.T) {
	mustParse := func(t *testing.T, s string) *Pattern {
		t.Helper()
		p, err := Parse(s)
		require.NoError(t, err)
		return p
	}

	t.Run("valid joins", func(t *testing.T) {
		tests := []struct {
			prefix string
			suffix string
			want   string
		}{
			{"/", "/users", "/users"},
			{"/api", "/", "/api"},
			{"/", "/", "/"},
			{"/api", "/users/:id", "/api/users/:id"},
			{"/api/", "/users", "/api/users"},
			{"/api/:version", "/users", "/api/:version/users"},
			{"/static", "/*path", "/static/*path"},
			{"/api", "/users/", "/api/users/"},
		}

		for _, tt := range tests {
			t.Run(tt.prefix+" + "+tt.suffix, func(t *testing.T) {
				got, err := Join(mustParse(t, tt.prefix), mustParse(t, tt.suffix))
				require.NoError(t, err)
				assert.Equal(t, tt.want, got.String())
			})
		}
	})

	t.Run("join errors", func(t *testing.T) {
		tests := []struct {
			name    string
			prefix  string
			suffix  string
			wantErr error
		}{
			{"wildcard prefix", "/files/*path", "/meta", ErrWildcardPosition},
			{"duplicate param across join", "/api/:id", "/users/:id", ErrDuplicateCaptureName},
			{"prefix param repeated as suffix wildcard", "/api/:rest", "/files/*rest", ErrDuplicateCaptureName},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := Join(mustParse(t, tt.prefix), mustParse(t, tt.suffix))
				assert.ErrorIs(t, err, tt.wantErr)
			})
		}
	})

	t.Run("join collects capture names in order", func(t *testing.T) {
		got, err := Join(mustParse(t, "/api/:version"), mustParse(t, "/users/:id"))
		require.NoError(t, err)
		assert.Equal(t, []string{"version", "id"}, got.Params())
	})

	t.Run("join does not mutate inputs", func(t *testing.T) {
		prefix := mustParse(t, "/api")
		suffix := mustParse(t, "/users/:id")

		_, err := Join(prefix, suffix)
		require.NoError(t, err)

		assert.Equal(t, "/api", prefix.String())
		assert.Len(t, prefix.Components(), 1)
		assert.Equal(t, "/users/:id", suffix.String())
	})
}

func TestSegments(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"/", nil},
		{"", nil},
		{"relative", nil},
		{"/users", []string{"users"}},
		{"/users/", []string{"users", ""}},
		{"/users/42/posts", []string{"users", "42", "posts"}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Segments(tt.path))
		})
	}
}

func TestIsPrefixOf(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"/", "/", true},
		{"/", "/anything/at/all", true},
		{"/api", "/api", true},
		{"/api", "/api/users", true},
		{"/api", "/apiv2", false},
		{"/api", "/", false},
		{"/api/", "/api/users", true},
		{"/api/", "/api/", true},
		{"/api/", "/api", false},
		{"/api/:version", "/api/v1/users", true},
		{"/api/:version", "/api", false},
		{"/files/*rest", "/files/a/b/c", true},
		{"/a/b", "/a/b/c/d", true},
		{"/a/b", "/a/c", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" vs "+tt.path, func(t *testing.T) {
			p, err := Parse(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.IsPrefixOf(tt.path))
		})
	}
}
