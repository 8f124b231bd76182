package scheduler

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextRun(t *testing.T) {
	loc := time.FixedZone("KST", 9*60*60)

	// Before today's slot: runs today.
	now := time.Date(2025, 6, 2, 7, 30, 0, 0, loc)
	next := NextRun(now, 9, 0)
	assert.Equal(t, time.Date(2025, 6, 2, 9, 0, 0, 0, loc), next)

	// After today's slot: runs tomorrow.
	now = time.Date(2025, 6, 2, 10, 15, 0, 0, loc)
	next = NextRun(now, 9, 0)
	assert.Equal(t, time.Date(2025, 6, 3, 9, 0, 0, 0, loc), next)

	// Exactly at the slot: strictly after, so tomorrow.
	now = time.Date(2025, 6, 2, 9, 0, 0, 0, loc)
	next = NextRun(now, 9, 0)
	assert.Equal(t, time.Date(2025, 6, 3, 9, 0, 0, 0, loc), next)

	// Month rollover.
	now = time.Date(2025, 6, 30, 23, 59, 0, 0, loc)
	next = NextRun(now, 9, 30)
	assert.Equal(t, time.Date(2025, 7, 1, 9, 30, 0, 0, loc), next)
}

func TestReadMetadataMissingFile(t *testing.T) {
	metadata, err := ReadMetadata(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Empty(t, metadata.LastUpdated)
	assert.NotNil(t, metadata.EtfCount)
}

func TestReadMetadataRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	raw := `{
		"last_updated": "2025-06-02T09:00:05+09:00",
		"etf_count": {"domestic": 950, "foreign": 4},
		"dart_count": 12,
		"total_count": 966,
		"inserted": 120,
		"skipped": 846
	}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	metadata, err := ReadMetadata(path)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-02T09:00:05+09:00", metadata.LastUpdated)
	assert.Equal(t, 950, metadata.EtfCount["domestic"])
	assert.Equal(t, 12, metadata.DartCount)
	assert.Equal(t, 966, metadata.TotalCount)
	assert.Equal(t, 120, metadata.Inserted)
	assert.Equal(t, 846, metadata.Skipped)
}
