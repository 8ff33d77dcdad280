package metrics

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	log "github.com/sirupsen/logrus"
)

const (
	namespace = "gastracker"
	subsystem = "telegram_bot"
)

// Storage persists counters between restarts.
type Storage interface {
	SaveMetric(metricName, labelKey, labelValue string, value float64) error
	GetMetric(metricName string) (float64, error)
	GetMetricsWithLabels(metricName string) (map[string]map[string]float64, error)
}

type BotMetrics struct {
	CommandsProcessed  prometheus.Counter
	MessagesHandled    prometheus.Counter
	ChannelsCount      prometheus.Gauge
	ChannelNames       *prometheus.CounterVec
	ChannelsSet        map[int64]string
	MessagesPerChannel *prometheus.CounterVec
	Mutex              sync.Mutex
}

func NewBotMetrics(reg prometheus.Registerer) *BotMetrics {
	metrics := &BotMetrics{
		CommandsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "commands_processed",
			Help:      "The total number of processed commands",
		}),
		MessagesHandled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "messages_handled",
			Help:      "The total number of handled messages",
		}),
		ChannelsCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "channels_count",
			Help:      "The current number of unique chats the bot is operating in",
		}),
		ChannelNames: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "channel_names",
				Help:      "Tracks chats the bot has interacted with",
			},
			[]string{"chat_id", "chat_name"},
		),
		MessagesPerChannel: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "messages_per_channel",
				Help:      "The total number of messages handled per chat",
			},
			[]string{"chat_id", "chat_name"},
		),
		ChannelsSet: make(map[int64]string),
	}

	reg.MustRegister(
		metrics.CommandsProcessed,
		metrics.MessagesHandled,
		metrics.ChannelsCount,
		metrics.ChannelNames,
		metrics.MessagesPerChannel,
	)
	return metrics
}

// TrackMessage counts a handled message and registers its chat on first sight.
func (m *BotMetrics) TrackMessage(chatID int64, chatName string) {
	m.MessagesHandled.Inc()

	m.Mutex.Lock()
	if _, exists := m.ChannelsSet[chatID]; !exists {
		m.ChannelsSet[chatID] = chatName
		m.ChannelsCount.Set(float64(len(m.ChannelsSet)))
		m.ChannelNames.WithLabelValues(fmt.Sprintf("%d", chatID), chatName).Inc()
	}
	m.Mutex.Unlock()

	m.MessagesPerChannel.WithLabelValues(fmt.Sprintf("%d", chatID), chatName).Inc()
}

func (m *BotMetrics) CommandProcessed() {
	m.CommandsProcessed.Inc()
}

// Load restores persisted counters. Missing values start from zero.
func (m *BotMetrics) Load(s Storage) {
	m.Mutex.Lock()
	defer m.Mutex.Unlock()

	commandsProcessed, _ := s.GetMetric("commands_processed")
	messagesHandled, _ := s.GetMetric("messages_handled")

	m.CommandsProcessed.Add(commandsProcessed)
	m.MessagesHandled.Add(messagesHandled)

	loadLabeledMetrics(s, "channel_names", func(chatIDStr, chatName string, _ float64) {
		chatID, err := strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			log.Errorf("Failed to parse chatID %s: %v", chatIDStr, err)
			return
		}
		m.ChannelNames.WithLabelValues(chatIDStr, chatName).Add(1)
		m.ChannelsSet[chatID] = chatName
	})
	m.ChannelsCount.Set(float64(len(m.ChannelsSet)))

	loadLabeledMetrics(s, "messages_per_channel", func(chatID, chatName string, value float64) {
		m.MessagesPerChannel.WithLabelValues(chatID, chatName).Add(value)
	})

	log.Info("Metrics loaded from database.")
}

func loadLabeledMetrics(s Storage, metricName string, callback func(labelKey, labelValue string, value float64)) {
	metricsWithLabels, err := s.GetMetricsWithLabels(metricName)
	if err != nil {
		log.Errorf("Failed to load %s: %v", metricName, err)
		return
	}
	for labelKey, labelValues := range metricsWithLabels {
		for labelValue, value := range labelValues {
			callback(labelKey, labelValue, value)
		}
	}
}

// Save writes the current counters to s.
func (m *BotMetrics) Save(s Storage) {
	m.Mutex.Lock()
	defer m.Mutex.Unlock()

	save := func(name, key, value string, v float64) {
		if err := s.SaveMetric(name, key, value, v); err != nil {
			log.Error(err)
		}
	}

	save("commands_processed", "", "", GetMetricValue(m.CommandsProcessed))
	save("messages_handled", "", "", GetMetricValue(m.MessagesHandled))
	save("channels_count", "", "", float64(len(m.ChannelsSet)))

	for chatID, chatName := range m.ChannelsSet {
		save("channel_names", fmt.Sprintf("%d", chatID), chatName, float64(chatID))
	}

	metricChan := make(chan prometheus.Metric, 1)
	go func() {
		m.MessagesPerChannel.Collect(metricChan)
		close(metricChan)
	}()

	for metric := range metricChan {
		metricProto := &dto.Metric{}
		if err := metric.Write(metricProto); err != nil {
			log.Errorf("Failed to read MessagesPerChannel metric: %v", err)
			continue
		}
		var chatID, chatName string
		for _, label := range metricProto.Label {
			if label.GetName() == "chat_id" {
				chatID = label.GetValue()
			}
			if label.GetName() == "chat_name" {
				chatName = label.GetValue()
			}
		}
		save("messages_per_channel", chatID, chatName, metricProto.Counter.GetValue())
	}

	log.Info("Metrics saved to database.")
}

// GetMetricValue reads the current value of a single counter or gauge.
func GetMetricValue(metric prometheus.Collector) float64 {
	metricChan := make(chan prometheus.Metric, 1)
	metric.Collect(metricChan)
	close(metricChan)

	metricProto := &dto.Metric{}
	if err := (<-metricChan).Write(metricProto); err != nil {
		log.Errorf("Failed to read metric value: %v", err)
		return 0
	}

	if metricProto.Counter != nil {
		return metricProto.Counter.GetValue()
	} else if metricProto.Gauge != nil {
		return metricProto.Gauge.GetValue()
	}
	return 0
}
