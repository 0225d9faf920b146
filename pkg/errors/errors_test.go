package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error wins", New(ErrNoSuchKey, http.StatusTeapot, "x"), http.StatusTeapot},
		{"wrapped missing key", fmt.Errorf("lookup: %w", ErrNoSuchKey), http.StatusNotFound},
		{"invalid argument", fmt.Errorf("k=-1: %w", ErrInvalidArgument), http.StatusBadRequest},
		{"invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"corpus unavailable", ErrCorpusUnavailable, http.StatusServiceUnavailable},
		{"empty container", ErrEmptyContainer, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusCode(tt.err))
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := Newf(ErrInvalidInput, http.StatusBadRequest, "limit %d", -3)
	assert.True(t, Is(err, ErrInvalidInput))
	assert.Equal(t, "invalid input: limit -3", err.Error())
}
