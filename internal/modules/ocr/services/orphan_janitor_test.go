package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrphanJanitorSweep(t *testing.T) {
	store := newFakeStore()
	orphans := newFakeOrphans()
	ctx := context.Background()

	store.seed("ocr-images/present.png")
	require.NoError(t, orphans.Record(ctx, "ocr-images/present.png", "deleted", "timeout"))
	require.NoError(t, orphans.Record(ctx, "ocr-images/missing.png", "replaced", "timeout"))

	janitor := NewOrphanJanitor(orphans, store, 2)

	cleaned, failed := janitor.Sweep(ctx)
	assert.Equal(t, 1, cleaned)
	assert.Equal(t, 1, failed)
	assert.Equal(t, []string{"ocr-images/missing.png"}, orphans.paths())

	cleaned, failed = janitor.Sweep(ctx)
	assert.Equal(t, 0, cleaned)
	assert.Equal(t, 1, failed)

	// attempts exhausted
	cleaned, failed = janitor.Sweep(ctx)
	assert.Equal(t, 0, cleaned)
	assert.Equal(t, 0, failed)
}

func TestOrphanJanitorSchedule(t *testing.T) {
	janitor := NewOrphanJanitor(newFakeOrphans(), newFakeStore(), 10)

	require.NoError(t, janitor.Start(""))
	assert.Error(t, NewOrphanJanitor(newFakeOrphans(), newFakeStore(), 10).Start("not a schedule"))

	require.NoError(t, janitor.Start("@every 1h"))
	janitor.Stop()
}
