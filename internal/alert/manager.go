package alert

import (
	"math"
	"strings"
	"time"

	"gas-tracker-telegram-bot/internal/types"
	"gas-tracker-telegram-bot/lib/helpers"
	"gas-tracker-telegram-bot/lib/translation"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	// ErrOutOfRange is returned by AddAlert when the target lies outside the configured bounds.
	ErrOutOfRange = errors.New("alert price out of range")
	// ErrCapacityExceeded is returned by AddAlert when the subscriber already holds the maximum number of alerts.
	ErrCapacityExceeded = errors.New("alert capacity exceeded")
)

// Limits bounds alert creation.
type Limits struct {
	MinPrice   float64
	MaxPrice   float64
	MaxPerUser int
}

// Status is the display state of an alert relative to the current fee.
type Status int

const (
	// StatusActive means the fee is still above the target.
	StatusActive Status = iota
	// StatusBelowTarget means the fee is at or under the target but no scan has marked it yet.
	StatusBelowTarget
	StatusTriggered
)

func (s Status) String() string {
	switch s {
	case StatusTriggered:
		return translation.Translate("✅ Triggered")
	case StatusBelowTarget:
		return translation.Translate("⚠️ Below target")
	default:
		return translation.Translate("🟢 Active")
	}
}

// AlertSummary pairs an alert with its computed status.
type AlertSummary struct {
	Position int
	Alert    types.Alert
	Status   Status
}

// Manager validates and applies alert mutations on a Store.
type Manager struct {
	store  *Store
	limits Limits
	now    func() time.Time
}

func NewManager(store *Store, limits Limits) *Manager {
	return &Manager{
		store:  store,
		limits: limits,
		now:    time.Now,
	}
}

func (m *Manager) Limits() Limits {
	return m.limits
}

// AddAlert validates target and appends a new untriggered alert for the subscriber.
// The range check runs before the capacity check.
func (m *Manager) AddAlert(sub types.Subscriber, target float64) (types.Alert, error) {
	if math.IsNaN(target) || math.IsInf(target, 0) || target < m.limits.MinPrice || target > m.limits.MaxPrice {
		return types.Alert{}, errors.Wrapf(ErrOutOfRange, "price must be between %v and %v Gwei", m.limits.MinPrice, m.limits.MaxPrice)
	}

	a := types.Alert{
		ID:          uuid.NewString(),
		TargetPrice: target,
		CreatedAt:   m.now(),
	}
	if !m.store.Append(sub, a, m.limits.MaxPerUser) {
		return types.Alert{}, errors.Wrapf(ErrCapacityExceeded, "limit is %d active alerts", m.limits.MaxPerUser)
	}
	return a, nil
}

func (m *Manager) ListAlerts(sub types.Subscriber) []types.Alert {
	return m.store.List(sub)
}

// DeleteAlert removes the alert at the zero-based position.
func (m *Manager) DeleteAlert(sub types.Subscriber, pos int) bool {
	return m.store.Remove(sub, pos)
}

func (m *Manager) ClearAlerts(sub types.Subscriber) int {
	return m.store.Clear(sub)
}

func (m *Manager) HasAlerts(sub types.Subscriber) bool {
	return m.store.Len(sub) > 0
}

// Summarize computes the status of each of the subscriber's alerts against currentFee.
func (m *Manager) Summarize(sub types.Subscriber, currentFee float64) []AlertSummary {
	alerts := m.store.List(sub)
	summaries := make([]AlertSummary, 0, len(alerts))
	for i, a := range alerts {
		summaries = append(summaries, AlertSummary{
			Position: i,
			Alert:    a,
			Status:   statusOf(a, currentFee),
		})
	}
	return summaries
}

func statusOf(a types.Alert, currentFee float64) Status {
	switch {
	case a.Triggered:
		return StatusTriggered
	case currentFee > a.TargetPrice:
		return StatusActive
	default:
		return StatusBelowTarget
	}
}

// RenderAlertSummary formats the subscriber's alerts as MarkdownV2.
// A non-positive currentFee is shown as N/A.
func (m *Manager) RenderAlertSummary(sub types.Subscriber, currentFee float64) string {
	summaries := m.Summarize(sub, currentFee)
	if len(summaries) == 0 {
		return helpers.EscapeMarkdownV2(translation.Translate("📋 Your Gas Alerts\n\nYou don't have any active alerts.\n\nUse /setalert to create one!"))
	}

	fee := "N/A"
	if currentFee > 0 {
		fee = helpers.FormatFee(currentFee)
	}

	var b strings.Builder
	b.WriteString(translation.Translate(
		"📋 *Your Gas Alerts*\n\n📊 Current Gas: *%s Gwei*\n\n",
		helpers.EscapeMarkdownV2(fee),
	))

	now := m.now()
	for _, s := range summaries {
		b.WriteString(translation.Translate(
			"*Alert \\#%d*\n🎯 Target: %s Gwei\n📍 Status: %s\n📅 Created: %s \\(%s\\)\n\n",
			s.Position+1,
			helpers.EscapeMarkdownV2(helpers.FormatGwei(s.Alert.TargetPrice)),
			helpers.EscapeMarkdownV2(s.Status.String()),
			helpers.EscapeMarkdownV2(s.Alert.CreatedAt.Format("2006-01-02 15:04")),
			helpers.EscapeMarkdownV2(humanize.RelTime(s.Alert.CreatedAt, now, "ago", "from now")),
		))
	}
	return b.String()
}
