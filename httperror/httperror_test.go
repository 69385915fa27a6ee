package httperror

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	t.Run("message text", func(t *testing.T) {
		tests := []struct {
			name string
			err  error
			want string
		}{
			{"explicit message", New(http.StatusTeapot, "short and stout"), "short and stout"},
			{"empty message uses status text", New(http.StatusNotFound, ""), "Not Found"},
			{"formatted message", Newf(http.StatusBadRequest, "bad field %q", "name"), `bad field "name"`},
			{"wrapped cause text", Wrap(http.StatusConflict, errors.New("version mismatch")), "version mismatch"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.Equal(t, tt.want, tt.err.Error())
			})
		}
	})

	t.Run("status resolution", func(t *testing.T) {
		tests := []struct {
			name string
			err  error
			want int
		}{
			{"plain error defaults to 500", errors.New("boom"), http.StatusInternalServerError},
			{"nil-safe", nil, http.StatusInternalServerError},
			{"direct", New(http.StatusNotFound, ""), http.StatusNotFound},
			{"wrapped deeper", fmt.Errorf("outer: %w", New(http.StatusForbidden, "no")), http.StatusForbidden},
			{"first wins", Wrap(http.StatusBadGateway, New(http.StatusNotFound, "")), http.StatusBadGateway},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.Equal(t, tt.want, StatusOf(tt.err))
			})
		}
	})

	t.Run("is status", func(t *testing.T) {
		assert.True(t, IsStatus(NotFound(), http.StatusNotFound))
		assert.False(t, IsStatus(NotFound(), http.StatusForbidden))
		assert.False(t, IsStatus(nil, http.StatusInternalServerError))
	})

	t.Run("wrap preserves the cause", func(t *testing.T) {
		err := Wrap(http.StatusServiceUnavailable, io.ErrUnexpectedEOF)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("wrap nil is nil", func(t *testing.T) {
		assert.NoError(t, Wrap(http.StatusBadRequest, nil))
	})

	t.Run("client-visible message hides internals", func(t *testing.T) {
		tests := []struct {
			name string
			err  error
			want string
		}{
			{"plain error", errors.New("db: connection refused"), "Internal Server Error"},
			{"wrapped error", Wrap(http.StatusBadGateway, errors.New("upstream tls handshake")), "Bad Gateway"},
			{"explicit message", New(http.StatusBadRequest, "missing id"), "missing id"},
			{"status-only error", MethodNotAllowed(), "Method Not Allowed"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.Equal(t, tt.want, Message(tt.err))
			})
		}
	})

	t.Run("stock constructors", func(t *testing.T) {
		tests := []struct {
			err    error
			status int
		}{
			{BadRequest("x"), http.StatusBadRequest},
			{Unauthorized("x"), http.StatusUnauthorized},
			{Forbidden("x"), http.StatusForbidden},
			{NotFound(), http.StatusNotFound},
			{MethodNotAllowed(), http.StatusMethodNotAllowed},
			{Internal(errors.New("x")), http.StatusInternalServerError},
		}

		for _, tt := range tests {
			require.Error(t, tt.err)
			assert.Equal(t, tt.status, StatusOf(tt.err))
		}
	})
}
