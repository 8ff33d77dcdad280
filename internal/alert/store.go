package alert

import (
	"sync"

	"gas-tracker-telegram-bot/internal/types"
)

// Store holds every subscriber's alerts in memory. It is rebuilt empty on each start.
type Store struct {
	mu     sync.Mutex
	alerts map[types.Subscriber][]*types.Alert
}

func NewStore() *Store {
	return &Store{
		alerts: make(map[types.Subscriber][]*types.Alert),
	}
}

// Append adds a at the end of the subscriber's list unless it already holds capacity alerts.
func (s *Store) Append(sub types.Subscriber, a types.Alert, capacity int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.alerts[sub]) >= capacity {
		return false
	}
	s.alerts[sub] = append(s.alerts[sub], &a)
	return true
}

// List returns copies of the subscriber's alerts in creation order.
func (s *Store) List(sub types.Subscriber) []types.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.alerts[sub]
	out := make([]types.Alert, 0, len(list))
	for _, a := range list {
		out = append(out, *a)
	}
	return out
}

func (s *Store) Len(sub types.Subscriber) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.alerts[sub])
}

// Remove deletes the alert at pos and shifts the following ones down.
func (s *Store) Remove(sub types.Subscriber, pos int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, exists := s.alerts[sub]
	if !exists || pos < 0 || pos >= len(list) {
		return false
	}
	list = append(list[:pos], list[pos+1:]...)
	if len(list) == 0 {
		delete(s.alerts, sub)
		return true
	}
	s.alerts[sub] = list
	return true
}

// Clear drops all alerts of the subscriber and reports how many there were.
func (s *Store) Clear(sub types.Subscriber) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := len(s.alerts[sub])
	delete(s.alerts, sub)
	return count
}

// TriggerAtOrBelow marks every untriggered alert whose target is at or above fee
// and returns one notification per flipped alert. Alerts are never added or removed here.
func (s *Store) TriggerAtOrBelow(fee, ethPrice float64) []types.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	var queued []types.Notification
	for sub, list := range s.alerts {
		for _, a := range list {
			if a.Triggered || fee > a.TargetPrice {
				continue
			}
			a.Triggered = true
			queued = append(queued, types.Notification{
				Subscriber: sub,
				Alert:      *a,
				CurrentFee: fee,
				EthPrice:   ethPrice,
			})
		}
	}
	return queued
}

// Count reports the number of subscribers with alerts, all alerts and triggered alerts.
func (s *Store) Count() (subscribers, alerts, triggered int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, list := range s.alerts {
		if len(list) > 0 {
			subscribers++
		}
		for _, a := range list {
			alerts++
			if a.Triggered {
				triggered++
			}
		}
	}
	return subscribers, alerts, triggered
}
