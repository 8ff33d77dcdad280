package types

import "time"

// Subscriber is the Telegram user id that owns a set of alerts.
type Subscriber int64

// Alert is a subscriber's Gwei threshold plus its trigger state.
type Alert struct {
	ID          string    `json:"id"`
	TargetPrice float64   `json:"target_price"`
	CreatedAt   time.Time `json:"created_at"`
	Triggered   bool      `json:"triggered"`
}

// FeeLevels is one reading of the gas oracle, in Gwei.
type FeeLevels struct {
	Low       float64 `json:"low"`
	Standard  float64 `json:"standard"`
	Fast      float64 `json:"fast"`
	BaseFee   float64 `json:"base_fee"`
	LastBlock string  `json:"last_block"`
}

// Notification is queued by the scanner for every alert that newly crossed its target.
type Notification struct {
	Subscriber Subscriber `json:"subscriber"`
	Alert      Alert      `json:"alert"`
	CurrentFee float64    `json:"current_fee"`
	EthPrice   float64    `json:"eth_price"`
}
