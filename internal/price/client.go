// Package price looks up USD token prices from the Jupiter price feed.
package price

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultBaseURL is the Jupiter price endpoint.
const DefaultBaseURL = "https://lite-api.jup.ag/price/v2"

// DefaultTimeout bounds one price request when ctx has no deadline.
const DefaultTimeout = 10 * time.Second

// ErrNoPrice is returned when the feed has no quote for a mint.
var ErrNoPrice = errors.New("no price available")

// Client fetches single-mint quotes.
type Client struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient creates a price feed client.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		client:  &fasthttp.Client{Name: "solana-cli-jupiter-price"},
		baseURL: baseURL,
		timeout: timeout,
		logger:  logger.Named("price_client"),
	}
}

// quote accepts both the numeric and the string price encodings.
type quote float64

func (q *quote) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse price %q: %w", s, err)
	}
	*q = quote(v)
	return nil
}

type priceEntry struct {
	ID    string `json:"id"`
	Price *quote `json:"price"`
}

type priceResponse struct {
	Data map[string]*priceEntry `json:"data"`
}

// FetchPrice requests the USD price of mint. It returns ErrNoPrice when the
// feed answers without a quote for it.
func (c *Client) FetchPrice(ctx context.Context, mint string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return 0, fmt.Errorf("parse price URL: %w", err)
	}
	q := u.Query()
	q.Set("ids", mint)
	u.RawQuery = q.Encode()
	requestURL := u.String()

	c.logger.Debug("Requesting price", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		return 0, fmt.Errorf("request %s: %w", requestURL, err)
	}

	body := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		return 0, fmt.Errorf("price feed returned status %d: %s", resp.StatusCode(), string(body))
	}

	var parsed priceResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, fmt.Errorf("decode price response: %w", err)
	}

	entry, ok := parsed.Data[mint]
	if !ok || entry == nil || entry.Price == nil {
		return 0, ErrNoPrice
	}
	return float64(*entry.Price), nil
}
