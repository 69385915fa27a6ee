package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieJar(t *testing.T) {
	t.Run("keeps the last value staged per name", func(t *testing.T) {
		j := newCookieJar()
		j.set(&http.Cookie{Name: "sid", Value: "first"})
		j.set(&http.Cookie{Name: "sid", Value: "second"})

		deltas := j.deltas()
		require.Len(t, deltas, 1)
		assert.Equal(t, "second", deltas[0].Value)
	})

	t.Run("emits deltas in first-staged order", func(t *testing.T) {
		j := newCookieJar()
		j.set(&http.Cookie{Name: "a", Value: "1"})
		j.set(&http.Cookie{Name: "b", Value: "2"})
		j.set(&http.Cookie{Name: "a", Value: "3"})

		deltas := j.deltas()
		require.Len(t, deltas, 2)
		assert.Equal(t, "a", deltas[0].Name)
		assert.Equal(t, "b", deltas[1].Name)
	})

	t.Run("renders a removal as an expired cookie", func(t *testing.T) {
		j := newCookieJar()
		j.remove("sid", "/", "example.com")

		deltas := j.deltas()
		require.Len(t, deltas, 1)
		serialized := deltas[0].String()
		assert.Contains(t, serialized, "sid=")
		assert.Contains(t, serialized, "Max-Age=0")
	})

	t.Run("lookup distinguishes staged values from removals", func(t *testing.T) {
		j := newCookieJar()
		j.set(&http.Cookie{Name: "keep", Value: "v"})
		j.remove("drop", "/", "")

		ck, staged := j.lookup("keep")
		require.True(t, staged)
		assert.Equal(t, "v", ck.Value)

		ck, staged = j.lookup("drop")
		require.True(t, staged)
		assert.Nil(t, ck)

		_, staged = j.lookup("never")
		assert.False(t, staged)
	})
}

func TestContextCookies(t *testing.T) {
	t.Run("reads cookies from the request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: "from-client"})
		c := &Context{req: req}

		ck, err := c.Cookie("sid")
		require.NoError(t, err)
		assert.Equal(t, "from-client", ck.Value)
	})

	t.Run("a staged cookie shadows the request's copy", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: "from-client"})
		c := &Context{req: req}

		c.SetCookie(&http.Cookie{Name: "sid", Value: "rotated"})
		ck, err := c.Cookie("sid")
		require.NoError(t, err)
		assert.Equal(t, "rotated", ck.Value)
	})

	t.Run("a staged removal hides the request's copy", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: "from-client"})
		c := &Context{req: req}

		c.RemoveCookie("sid", "/", "")
		_, err := c.Cookie("sid")
		assert.ErrorIs(t, err, http.ErrNoCookie)
	})

	t.Run("an absent cookie reports http.ErrNoCookie", func(t *testing.T) {
		c := &Context{req: httptest.NewRequest(http.MethodGet, "/x", nil)}

		_, err := c.Cookie("missing")
		assert.ErrorIs(t, err, http.ErrNoCookie)
	})
}
