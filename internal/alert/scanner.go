package alert

import (
	"context"
	"math"
	"sync"
	"time"

	"gas-tracker-telegram-bot/internal/types"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// FeeSource supplies the current network fee levels.
type FeeSource interface {
	FetchFeeLevels(ctx context.Context) (types.FeeLevels, error)
}

// QuoteSource supplies the ETH/USD quote. Implementations return a fallback value instead of failing.
type QuoteSource interface {
	FetchQuote(ctx context.Context) float64
}

// Notifier delivers a triggered alert to its subscriber.
type Notifier interface {
	Notify(ctx context.Context, n types.Notification) error
}

// Recorder observes scan outcomes.
type Recorder interface {
	ScanAborted()
	ScanCompleted(triggered, delivered, failed int)
	AlertsStored(subscribers, alerts, triggered int)
}

type nopRecorder struct{}

func (nopRecorder) ScanAborted()               {}
func (nopRecorder) ScanCompleted(_, _, _ int) {}
func (nopRecorder) AlertsStored(_, _, _ int)  {}

// ScanResult describes one scan.
type ScanResult struct {
	Aborted   bool
	Fee       float64
	EthPrice  float64
	Triggered int
	Delivered int
	Failed    int
}

// Scanner periodically compares stored alerts with the current fee and notifies subscribers.
type Scanner struct {
	store    *Store
	fees     FeeSource
	quotes   QuoteSource
	sink     Notifier
	recorder Recorder

	timeout  time.Duration
	firstRun time.Duration
	interval time.Duration

	// scanMu serializes the fetch, evaluate and mutate phase of overlapping scans.
	scanMu sync.Mutex

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type ScannerOption func(*Scanner)

// WithTimeout bounds every data source call and every delivery.
func WithTimeout(d time.Duration) ScannerOption {
	return func(s *Scanner) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithSchedule sets the delay before the first scan and the period between scans.
func WithSchedule(firstRun, interval time.Duration) ScannerOption {
	return func(s *Scanner) {
		if firstRun >= 0 {
			s.firstRun = firstRun
		}
		if interval > 0 {
			s.interval = interval
		}
	}
}

func WithRecorder(r Recorder) ScannerOption {
	return func(s *Scanner) {
		if r != nil {
			s.recorder = r
		}
	}
}

func NewScanner(store *Store, fees FeeSource, quotes QuoteSource, sink Notifier, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		store:    store,
		fees:     fees,
		quotes:   quotes,
		sink:     sink,
		recorder: nopRecorder{},
		timeout:  10 * time.Second,
		firstRun: 10 * time.Second,
		interval: 300 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan runs one evaluation pass. Data source failures abort the pass without touching any alert;
// delivery failures are logged per subscriber and never stop the remaining deliveries.
func (s *Scanner) Scan(ctx context.Context) ScanResult {
	queued, res := s.evaluate(ctx)
	if res.Aborted {
		s.recorder.ScanAborted()
		return res
	}

	for _, n := range queued {
		if err := s.deliver(ctx, n); err != nil {
			res.Failed++
			log.WithFields(log.Fields{
				"subscriber": n.Subscriber,
				"alert_id":   n.Alert.ID,
			}).Errorf("❌ Failed to send gas alert notification: %v", err)
			continue
		}
		res.Delivered++
		log.WithField("subscriber", n.Subscriber).Debug("✅ Gas alert notification sent")
	}

	s.recorder.ScanCompleted(res.Triggered, res.Delivered, res.Failed)
	s.recorder.AlertsStored(s.store.Count())

	if res.Delivered > 0 {
		log.Infof("Sent %d alert notification(s)", res.Delivered)
	}
	return res
}

func (s *Scanner) evaluate(ctx context.Context) ([]types.Notification, ScanResult) {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	levels, err := s.fees.FetchFeeLevels(fetchCtx)
	cancel()
	if err != nil {
		log.Warnf("⚠️ Failed to fetch gas data for alert checking: %v", err)
		return nil, ScanResult{Aborted: true}
	}

	fee := levels.Standard
	if math.IsNaN(fee) || math.IsInf(fee, 0) || fee <= 0 {
		log.Warnf("⚠️ Invalid gas price received: %v", fee)
		return nil, ScanResult{Aborted: true}
	}

	quoteCtx, cancel := context.WithTimeout(ctx, s.timeout)
	ethPrice := s.quotes.FetchQuote(quoteCtx)
	cancel()

	log.Debugf("🔄 Checking alerts... Current gas: %.2f Gwei", fee)

	queued := s.store.TriggerAtOrBelow(fee, ethPrice)
	return queued, ScanResult{
		Fee:       fee,
		EthPrice:  ethPrice,
		Triggered: len(queued),
	}
}

func (s *Scanner) deliver(ctx context.Context, n types.Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic during delivery: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.sink.Notify(ctx, n)
}

// Start runs Scan after the first-run delay and then on every interval until ctx is done or Stop is called.
func (s *Scanner) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.run(ctx)
	log.Infof("🚀 Alert scanner started (every %s)", s.interval)
}

func (s *Scanner) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scanner) run(ctx context.Context) {
	defer s.wg.Done()

	timer := time.NewTimer(s.firstRun)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.safeScan(ctx)

		select {
		case <-ctx.Done():
			log.Info("Alert scanner stopped")
			return
		case <-ticker.C:
		}
	}
}

func (s *Scanner) safeScan(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("🔥 Panic recovered in alert scanner: %v", r)
		}
	}()
	s.Scan(ctx)
}
