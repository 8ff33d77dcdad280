package gas

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gas-tracker-telegram-bot/internal/types"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// ErrUnavailable wraps every failure to obtain a usable gas reading.
var ErrUnavailable = errors.New("gas oracle unavailable")

const defaultBaseURL = "https://api.etherscan.io"

// Client reads the Etherscan gas oracle.
type Client struct {
	baseURL    string
	apiKey     string
	chainID    int
	httpClient *http.Client
}

type oracleResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type oracleResult struct {
	LastBlock       string `json:"LastBlock"`
	SafeGasPrice    string `json:"SafeGasPrice"`
	ProposeGasPrice string `json:"ProposeGasPrice"`
	FastGasPrice    string `json:"FastGasPrice"`
	SuggestBaseFee  string `json:"suggestBaseFee"`
}

// NewClient creates an oracle client for Ethereum mainnet. timeout bounds each request.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		chainID:    1,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchFeeLevels returns the current low, standard, fast and base fee in Gwei.
func (c *Client) FetchFeeLevels(ctx context.Context) (types.FeeLevels, error) {
	q := url.Values{}
	q.Set("chainid", strconv.Itoa(c.chainID))
	q.Set("module", "gastracker")
	q.Set("action", "gasoracle")
	q.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/api?"+q.Encode(), nil)
	if err != nil {
		return types.FeeLevels{}, errors.Wrap(ErrUnavailable, err.Error())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Errorf("❌ Failed to fetch gas data: %v", err)
		return types.FeeLevels{}, errors.Wrap(ErrUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.FeeLevels{}, errors.Wrapf(ErrUnavailable, "unexpected status %d", resp.StatusCode)
	}

	var body oracleResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return types.FeeLevels{}, errors.Wrapf(ErrUnavailable, "decode response: %v", err)
	}
	if body.Status != "1" {
		return types.FeeLevels{}, errors.Wrapf(ErrUnavailable, "oracle status %q: %s", body.Status, body.Message)
	}

	var result oracleResult
	if err := json.Unmarshal(body.Result, &result); err != nil {
		return types.FeeLevels{}, errors.Wrapf(ErrUnavailable, "decode result: %v", err)
	}

	return parseResult(result)
}

func parseResult(r oracleResult) (types.FeeLevels, error) {
	standard, err := parseGwei("ProposeGasPrice", r.ProposeGasPrice)
	if err != nil {
		return types.FeeLevels{}, err
	}
	low, err := parseGwei("SafeGasPrice", r.SafeGasPrice)
	if err != nil {
		return types.FeeLevels{}, err
	}
	fast, err := parseGwei("FastGasPrice", r.FastGasPrice)
	if err != nil {
		return types.FeeLevels{}, err
	}

	baseFee := standard
	if r.SuggestBaseFee != "" {
		if baseFee, err = parseGwei("suggestBaseFee", r.SuggestBaseFee); err != nil {
			return types.FeeLevels{}, err
		}
	}

	return types.FeeLevels{
		Low:       low,
		Standard:  standard,
		Fast:      fast,
		BaseFee:   baseFee,
		LastBlock: r.LastBlock,
	}, nil
}

func parseGwei(field, value string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return 0, errors.Wrapf(ErrUnavailable, "parse %s %q", field, value)
	}
	f, _ := d.Float64()
	return f, nil
}
