package ocr

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry(0)

	tests := []struct {
		input    string
		wantName string
		wantMode PageSegMode
	}{
		{"default", CategoryDefault, PSMAuto},
		{"chat", CategoryChat, PSMSparseText},
		{"  CHAT ", CategoryChat, PSMSparseText},
		{"", CategoryDefault, PSMAuto},
		{"receipt", CategoryDefault, PSMAuto},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c := r.Lookup(tt.input)
			assert.Equal(t, tt.wantName, c.Name)
			assert.Equal(t, tt.wantMode, c.Mode)
			assert.NotNil(t, c.Transform)
		})
	}
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry(0)

	identity := func(img image.Image) *image.Gray { return ToGray(img) }
	require.NoError(t, r.Register(Category{Name: "Receipt", Transform: identity, Mode: 6}))

	c := r.Lookup("receipt")
	assert.Equal(t, "receipt", c.Name)
	assert.Equal(t, PageSegMode(6), c.Mode)
	assert.Equal(t, []string{"chat", "default", "receipt"}, r.Names())

	assert.Error(t, r.Register(Category{Name: " ", Transform: identity}))
	assert.Error(t, r.Register(Category{Name: "nil-transform"}))
}
