package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestGetMetricDefaultsToZero(t *testing.T) {
	db := openTestDB(t)

	v, err := db.GetMetric("commands_processed")
	require.NoError(t, err)
	assert.Zero(t, v)
}

func TestSaveAndGetMetric(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.SaveMetric("commands_processed", "", "", 12))
	require.NoError(t, db.SaveMetric("commands_processed", "", "", 15))

	v, err := db.GetMetric("commands_processed")
	require.NoError(t, err)
	assert.Equal(t, 15.0, v)
}

func TestMetricsWithLabels(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.SaveMetric("messages_per_channel", "100", "PrivateChat-100", 3))
	require.NoError(t, db.SaveMetric("messages_per_channel", "200", "Gas Group", 7))
	require.NoError(t, db.SaveMetric("messages_per_channel", "", "", 99))
	require.NoError(t, db.SaveMetric("channel_names", "100", "PrivateChat-100", 100))

	got, err := db.GetMetricsWithLabels("messages_per_channel")
	require.NoError(t, err)
	assert.Equal(t, map[string]map[string]float64{
		"100": {"PrivateChat-100": 3},
		"200": {"Gas Group": 7},
	}, got)
}

func TestOpenCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bot.db")

	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.SaveMetric("channels_count", "", "", 2))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	v, err := db.GetMetric("channels_count")
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)
}
