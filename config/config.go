package config

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var once sync.Once

// GasLimit is a named gas-unit estimate used for transaction cost display.
type GasLimit struct {
	Key   string
	Label string
	Units int
}

// AlertSettings groups the knobs of the alert engine.
type AlertSettings struct {
	MinPrice      float64
	MaxPrice      float64
	MaxPerUser    int
	CheckInterval time.Duration
	FirstRun      time.Duration
}

// StatusThresholds are the Gwei upper bounds of the low, normal and elevated gas states.
type StatusThresholds struct {
	Low      float64
	Normal   float64
	Elevated float64
}

// gasLimitOrder fixes the display order; viper maps are unordered.
var gasLimitOrder = []GasLimit{
	{Key: "eth_transfer", Label: "ETH Transfer", Units: 21000},
	{Key: "erc20_transfer", Label: "ERC20 Transfer", Units: 65000},
	{Key: "token_swap", Label: "Token Swap", Units: 356190},
	{Key: "nft_sale", Label: "NFT Sale", Units: 601953},
	{Key: "bridging", Label: "Bridge to L2", Units: 114556},
	{Key: "borrowing", Label: "DeFi Borrow", Units: 302169},
}

func InitConfig() {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Debugf("no .env file loaded: %v", err)
		}

		viper.AutomaticEnv()

		viper.BindEnv("metrics_port", "METRICS_PORT")
		viper.BindEnv("telegram_bot_token", "TELEGRAM_BOT_TOKEN")
		viper.BindEnv("etherscan_api_key", "ETHERSCAN_API_KEY")
		viper.BindEnv("etherscan_url", "ETHERSCAN_URL")
		viper.BindEnv("api_pro_key", "API_PRO_KEY")
		viper.BindEnv("database_path", "DATABASE_PATH")
		viper.BindEnv("debug", "DEBUG")
		viper.BindEnv("lang", "LANG")
		viper.BindEnv("request_timeout", "REQUEST_TIMEOUT")
		viper.BindEnv("eth_price_fallback", "ETH_PRICE_FALLBACK")
		viper.BindEnv("price_cache_ttl", "PRICE_CACHE_TTL")

		viper.BindEnv("min_alert_price", "MIN_ALERT_PRICE")
		viper.BindEnv("max_alert_price", "MAX_ALERT_PRICE")
		viper.BindEnv("max_alerts_per_user", "MAX_ALERTS_PER_USER")
		viper.BindEnv("alert_check_interval", "ALERT_CHECK_INTERVAL")
		viper.BindEnv("alert_check_first_run", "ALERT_CHECK_FIRST_RUN")

		viper.BindEnv("gas_status.low", "GAS_STATUS_LOW")
		viper.BindEnv("gas_status.normal", "GAS_STATUS_NORMAL")
		viper.BindEnv("gas_status.elevated", "GAS_STATUS_ELEVATED")

		viper.SetDefault("metrics_port", 9090)
		viper.SetDefault("debug", false)
		viper.SetDefault("lang", "en")
		viper.SetDefault("database_path", "/app/data/bot.db")
		viper.SetDefault("etherscan_url", "https://api.etherscan.io")
		viper.SetDefault("request_timeout", 10*time.Second)
		viper.SetDefault("eth_price_fallback", 2500.0)
		viper.SetDefault("price_cache_ttl", time.Minute)

		viper.SetDefault("min_alert_price", 0.1)
		viper.SetDefault("max_alert_price", 1000.0)
		viper.SetDefault("max_alerts_per_user", 10)
		viper.SetDefault("alert_check_interval", 300*time.Second)
		viper.SetDefault("alert_check_first_run", 10*time.Second)

		viper.SetDefault("gas_status.low", 5.0)
		viper.SetDefault("gas_status.normal", 10.0)
		viper.SetDefault("gas_status.elevated", 30.0)

		for _, l := range gasLimitOrder {
			key := "gas_limits." + l.Key
			viper.BindEnv(key, "GAS_LIMIT_"+strings.ToUpper(l.Key))
			viper.SetDefault(key, l.Units)
		}
	})
}

func GetString(key string) string {
	InitConfig()
	return viper.GetString(key)
}

func GetInt(key string) int {
	InitConfig()
	return viper.GetInt(key)
}

func GetBool(key string) bool {
	InitConfig()
	return viper.GetBool(key)
}

func GetFloat64(key string) float64 {
	InitConfig()
	return viper.GetFloat64(key)
}

// GetDuration accepts Go duration strings ("5m") and unitless numbers, which are read as seconds ("300", "1.5").
func GetDuration(key string) time.Duration {
	InitConfig()
	if raw := viper.GetString(key); raw != "" {
		if _, err := strconv.ParseFloat(raw, 64); err == nil {
			return time.Duration(viper.GetFloat64(key) * float64(time.Second))
		}
	}
	return viper.GetDuration(key)
}

func Alerts() AlertSettings {
	return AlertSettings{
		MinPrice:      GetFloat64("min_alert_price"),
		MaxPrice:      GetFloat64("max_alert_price"),
		MaxPerUser:    GetInt("max_alerts_per_user"),
		CheckInterval: GetDuration("alert_check_interval"),
		FirstRun:      GetDuration("alert_check_first_run"),
	}
}

// GasLimits returns the configured gas limits in display order.
func GasLimits() []GasLimit {
	limits := make([]GasLimit, 0, len(gasLimitOrder))
	for _, l := range gasLimitOrder {
		l.Units = GetInt("gas_limits." + l.Key)
		limits = append(limits, l)
	}
	return limits
}

func Thresholds() StatusThresholds {
	return StatusThresholds{
		Low:      GetFloat64("gas_status.low"),
		Normal:   GetFloat64("gas_status.normal"),
		Elevated: GetFloat64("gas_status.elevated"),
	}
}
