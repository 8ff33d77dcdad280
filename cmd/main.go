package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"gas-tracker-telegram-bot/config"
	"gas-tracker-telegram-bot/internal/alert"
	"gas-tracker-telegram-bot/internal/commands"
	"gas-tracker-telegram-bot/internal/database"
	"gas-tracker-telegram-bot/internal/gas"
	"gas-tracker-telegram-bot/internal/metrics"
	"gas-tracker-telegram-bot/internal/price"
	"gas-tracker-telegram-bot/internal/telegram"
	"gas-tracker-telegram-bot/lib/translation"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const metricsSaveInterval = 5 * time.Minute

func init() {
	config.InitConfig()
	setupLogging()
}

func main() {
	translation.Configure("locales", config.GetString("lang"))

	token := config.GetString("telegram_bot_token")
	if token == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is required")
	}
	etherscanKey := config.GetString("etherscan_api_key")
	if etherscanKey == "" {
		log.Fatal("ETHERSCAN_API_KEY is required")
	}

	db, err := database.Open(config.GetString("database_path"))
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	botMetrics := metrics.NewBotMetrics(prometheus.DefaultRegisterer)
	scanMetrics := metrics.NewScanMetrics(prometheus.DefaultRegisterer)
	botMetrics.Load(db)

	requestTimeout := config.GetDuration("request_timeout")
	fees := gas.NewClient(config.GetString("etherscan_url"), etherscanKey, requestTimeout)
	quotes := price.NewClient(
		config.GetString("api_pro_key"),
		requestTimeout,
		config.GetDuration("price_cache_ttl"),
		config.GetFloat64("eth_price_fallback"),
	)

	settings := config.Alerts()
	store := alert.NewStore()
	manager := alert.NewManager(store, alert.Limits{
		MinPrice:   settings.MinPrice,
		MaxPrice:   settings.MaxPrice,
		MaxPerUser: settings.MaxPerUser,
	})

	bot, err := telegram.NewBot(telegram.BotConfig{
		Token:          token,
		Debug:          config.GetBool("debug"),
		UpdatesTimeout: 60,
		RequestTimeout: requestTimeout,
	}, telegram.Deps{
		Alerts:   manager,
		Fees:     fees,
		Quotes:   quotes,
		Renderer: commands.NewRenderer(config.GasLimits(), config.Thresholds()),
		Metrics:  botMetrics,
	})
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scanner := alert.NewScanner(store, fees, quotes, bot,
		alert.WithTimeout(requestTimeout),
		alert.WithSchedule(settings.FirstRun, settings.CheckInterval),
		alert.WithRecorder(scanMetrics),
	)
	scanner.Start(ctx)

	updates, err := bot.GetUpdatesChannel()
	if err != nil {
		log.Fatalf("Failed to get updates channel: %v", err)
	}
	go handleUpdates(ctx, bot, updates)

	go func() {
		ticker := time.NewTicker(metricsSaveInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				botMetrics.Save(db)
			}
		}
	}()

	server := launchMetricsAndHealthServer(config.GetInt("metrics_port"))

	<-ctx.Done()
	log.Info("Shutting down...")

	bot.StopReceivingUpdates()
	scanner.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Failed to stop metrics server: %v", err)
	}

	botMetrics.Save(db)
	log.Info("Metrics saved, bye")
}

func setupLogging() {
	log.SetLevel(log.ErrorLevel)
	if config.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}
	log.Debug("Starting gas tracker bot...")
}

func handleUpdates(ctx context.Context, bot *telegram.Bot, updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		handleUpdate(ctx, bot, update)
	}
}

func handleUpdate(ctx context.Context, bot *telegram.Bot, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			stackBuf := make([]byte, 1024)
			stackSize := runtime.Stack(stackBuf, false)
			stackTrace := bytes.TrimRight(stackBuf[:stackSize], "\x00")
			log.Errorf("Recovered from panic: %v\nStack trace: %s", r, stackTrace)
		}
	}()

	bot.HandleUpdate(ctx, update)
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func launchMetricsAndHealthServer(port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", healthCheckHandler)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		log.Infof("Launching metrics and health endpoint on :%d", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start metrics and health server: %v", err)
		}
	}()
	return server
}
