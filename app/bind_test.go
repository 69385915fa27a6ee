package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kumohq/kumo/httperror"
)

type createUser struct {
	Name  string `json:"name" xml:"name"`
	Email string `json:"email" xml:"email"`
}

func bindContext(body string) *Context {
	return &Context{req: httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))}
}

func TestBindJSON(t *testing.T) {
	t.Run("decodes a valid document", func(t *testing.T) {
		c := bindContext(`{"name":"ada","email":"ada@example.com"}`)

		var v createUser
		require.NoError(t, c.BindJSON(&v))
		assert.Equal(t, "ada", v.Name)
		assert.Equal(t, "ada@example.com", v.Email)
	})

	t.Run("rejects unknown fields by default", func(t *testing.T) {
		c := bindContext(`{"name":"ada","role":"admin"}`)

		var v createUser
		err := c.BindJSON(&v)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, httperror.StatusOf(err))
	})

	t.Run("accepts unknown fields when asked to", func(t *testing.T) {
		c := bindContext(`{"name":"ada","role":"admin"}`)

		var v createUser
		require.NoError(t, c.BindJSON(&v, true))
		assert.Equal(t, "ada", v.Name)
	})

	t.Run("rejects trailing data", func(t *testing.T) {
		c := bindContext(`{"name":"ada"}{"name":"bob"}`)

		var v createUser
		err := c.BindJSON(&v)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, httperror.StatusOf(err))
	})

	t.Run("rejects malformed JSON with a 400", func(t *testing.T) {
		c := bindContext(`{"name":`)

		var v createUser
		err := c.BindJSON(&v)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, httperror.StatusOf(err))
	})

	t.Run("fails when the body was already claimed", func(t *testing.T) {
		c := bindContext(`{"name":"ada"}`)
		_, err := c.Body()
		require.NoError(t, err)

		var v createUser
		assert.ErrorIs(t, c.BindJSON(&v), ErrBodyConsumed)
	})
}

func TestBindXML(t *testing.T) {
	t.Run("decodes a valid document", func(t *testing.T) {
		c := bindContext(`<createUser><name>ada</name><email>ada@example.com</email></createUser>`)

		var v createUser
		require.NoError(t, c.BindXML(&v))
		assert.Equal(t, "ada", v.Name)
	})

	t.Run("rejects malformed XML with a 400", func(t *testing.T) {
		c := bindContext(`<createUser><name>ada`)

		var v createUser
		err := c.BindXML(&v)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, httperror.StatusOf(err))
	})

	t.Run("rejects trailing data", func(t *testing.T) {
		c := bindContext(`<createUser><name>ada</name></createUser><extra/>`)

		var v createUser
		err := c.BindXML(&v)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, httperror.StatusOf(err))
	})
}
