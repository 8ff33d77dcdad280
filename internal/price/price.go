package price

import (
	"context"
	"net/http"
	"time"

	"github.com/coinpaprika/coinpaprika-api-go-client/v2/coinpaprika"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	// EthereumID is the CoinPaprika coin id quoted for cost conversion.
	EthereumID = "eth-ethereum"

	cacheKey = "eth_usd"
)

type tickerFetcher func(coinID string) (*coinpaprika.Ticker, error)

// Client returns the ETH/USD quote, serving it from cache while fresh and a fixed fallback when the API fails.
type Client struct {
	fetch    tickerFetcher
	cache    *cache.Cache
	fallback float64
}

// NewClient builds a quote client on the CoinPaprika API. An empty apiProKey uses the free tier.
func NewClient(apiProKey string, timeout, ttl time.Duration, fallback float64) *Client {
	httpClient := &http.Client{Timeout: timeout}

	var paprika *coinpaprika.Client
	if apiProKey != "" {
		paprika = coinpaprika.NewClient(httpClient, coinpaprika.WithAPIKey(apiProKey))
	} else {
		paprika = coinpaprika.NewClient(httpClient)
	}

	opts := &coinpaprika.TickersOptions{Quotes: "USD"}
	return newClient(func(coinID string) (*coinpaprika.Ticker, error) {
		return paprika.Tickers.GetByID(coinID, opts)
	}, ttl, fallback)
}

func newClient(fetch tickerFetcher, ttl time.Duration, fallback float64) *Client {
	return &Client{
		fetch:    fetch,
		cache:    cache.New(ttl, 2*ttl),
		fallback: fallback,
	}
}

// FetchQuote never fails: on any error it logs and returns the fallback price.
func (c *Client) FetchQuote(ctx context.Context) float64 {
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.(float64)
	}

	price, err := c.fetchUSD(ctx)
	if err != nil {
		log.Errorf("❌ Failed to fetch ETH price, using fallback %.2f: %v", c.fallback, err)
		return c.fallback
	}

	c.cache.SetDefault(cacheKey, price)
	return price
}

func (c *Client) fetchUSD(ctx context.Context) (float64, error) {
	type result struct {
		ticker *coinpaprika.Ticker
		err    error
	}

	// the CoinPaprika client has no context support, so ctx is honoured by abandoning the call
	done := make(chan result, 1)
	go func() {
		t, err := c.fetch(EthereumID)
		done <- result{t, err}
	}()

	var r result
	select {
	case <-ctx.Done():
		return 0, errors.Wrap(ctx.Err(), "fetch ETH ticker")
	case r = <-done:
	}

	if r.err != nil {
		return 0, errors.Wrap(r.err, "fetch ETH ticker")
	}
	if r.ticker == nil {
		return 0, errors.New("empty ETH ticker")
	}
	quote, ok := r.ticker.Quotes["USD"]
	if !ok || quote.Price == nil || *quote.Price <= 0 {
		return 0, errors.New("ETH ticker has no USD price")
	}
	return *quote.Price, nil
}
