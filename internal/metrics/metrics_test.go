package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStorage struct {
	values map[string]map[[2]string]float64
}

func newMemStorage() *memStorage {
	return &memStorage{values: map[string]map[[2]string]float64{}}
}

func (s *memStorage) SaveMetric(name, key, value string, v float64) error {
	if s.values[name] == nil {
		s.values[name] = map[[2]string]float64{}
	}
	s.values[name][[2]string{key, value}] = v
	return nil
}

func (s *memStorage) GetMetric(name string) (float64, error) {
	return s.values[name][[2]string{"", ""}], nil
}

func (s *memStorage) GetMetricsWithLabels(name string) (map[string]map[string]float64, error) {
	out := map[string]map[string]float64{}
	for labels, v := range s.values[name] {
		if labels[0] == "" {
			continue
		}
		if out[labels[0]] == nil {
			out[labels[0]] = map[string]float64{}
		}
		out[labels[0]][labels[1]] = v
	}
	return out, nil
}

func TestTrackMessage(t *testing.T) {
	m := NewBotMetrics(prometheus.NewRegistry())

	m.TrackMessage(100, "PrivateChat-100")
	m.TrackMessage(100, "PrivateChat-100")
	m.TrackMessage(-200, "Gas Group")
	m.CommandProcessed()

	assert.Equal(t, 3.0, testutil.ToFloat64(m.MessagesHandled))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CommandsProcessed))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ChannelsCount))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.MessagesPerChannel.WithLabelValues("100", "PrivateChat-100")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChannelNames.WithLabelValues("-200", "Gas Group")))
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	storage := newMemStorage()

	m := NewBotMetrics(prometheus.NewRegistry())
	m.TrackMessage(100, "PrivateChat-100")
	m.TrackMessage(-200, "Gas Group")
	m.TrackMessage(-200, "Gas Group")
	m.CommandProcessed()
	m.CommandProcessed()
	m.Save(storage)

	restored := NewBotMetrics(prometheus.NewRegistry())
	restored.Load(storage)

	assert.Equal(t, 2.0, testutil.ToFloat64(restored.CommandsProcessed))
	assert.Equal(t, 3.0, testutil.ToFloat64(restored.MessagesHandled))
	assert.Equal(t, 2.0, testutil.ToFloat64(restored.ChannelsCount))
	assert.Equal(t, 2.0, testutil.ToFloat64(restored.MessagesPerChannel.WithLabelValues("-200", "Gas Group")))
	require.Contains(t, restored.ChannelsSet, int64(-200))

	// a chat seen before the restart is not counted as new
	restored.TrackMessage(-200, "Gas Group")
	assert.Equal(t, 2.0, testutil.ToFloat64(restored.ChannelsCount))
}

func TestScanMetrics(t *testing.T) {
	m := NewScanMetrics(prometheus.NewRegistry())

	m.ScanAborted()
	m.ScanCompleted(3, 2, 1)
	m.ScanCompleted(0, 0, 0)
	m.AlertsStored(2, 5, 3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Scans.WithLabelValues("aborted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Scans.WithLabelValues("completed")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.AlertsTriggered))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Notifications.WithLabelValues("sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues("failed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Alerts.WithLabelValues("armed")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Alerts.WithLabelValues("triggered")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Subscribers))
}
