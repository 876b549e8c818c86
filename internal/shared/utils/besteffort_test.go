package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBestEffort(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		called := false
		ok := BestEffort("noop", nil, func() error {
			called = true
			return nil
		})
		assert.True(t, ok)
		assert.True(t, called)
	})

	t.Run("error is swallowed", func(t *testing.T) {
		ok := BestEffort("delete object", map[string]interface{}{"path": "a.png"}, func() error {
			return errors.New("bucket unavailable")
		})
		assert.False(t, ok)
	})

	t.Run("panic is swallowed", func(t *testing.T) {
		assert.NotPanics(t, func() {
			ok := BestEffort("explode", nil, func() error {
				panic("nil provider")
			})
			assert.False(t, ok)
		})
	})
}
