package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{ClientInput("bad"), http.StatusBadRequest},
		{NotFound("gone"), http.StatusNotFound},
		{EngineConfiguration("no engine", nil), http.StatusInternalServerError},
		{StorageConsistency("no url", nil), http.StatusInternalServerError},
		{Internal("boom", nil), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.err.Kind), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.HTTPStatus())
		})
	}
}

func TestAsThroughWrapping(t *testing.T) {
	cause := errors.New("disk full")
	wrapped := fmt.Errorf("update record: %w", StorageConsistency("cannot confirm record", cause))

	appErr, ok := As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, KindStorageConsistency, appErr.Kind)
	assert.ErrorIs(t, wrapped, cause)
	assert.True(t, IsKind(wrapped, KindStorageConsistency))
	assert.False(t, IsKind(wrapped, KindNotFound))
	assert.False(t, IsKind(errors.New("plain"), KindInternal))
}
