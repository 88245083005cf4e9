package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/psapy/dv-backend/pkg/logger"
)

// Client fetches conversion rates from the exchange-rate feed. It implements
// providers.RateLookup.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a new rate lookup client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// GetRate returns the conversion rate of base into quote on the named
// exchange
func (c *Client) GetRate(ctx context.Context, exchange, base, quote string) (decimal.Decimal, error) {
	log := logger.GetLogger().WithField("exchange", exchange).WithField("pair", base+"/"+quote)

	endpoint := fmt.Sprintf("%s/api/v1/rates?exchange=%s&base=%s&quote=%s",
		c.baseURL, url.QueryEscape(exchange), url.QueryEscape(base), url.QueryEscape(quote))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		log.WithError(err).Error("Rate feed request failed")
		return decimal.Zero, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		log.WithField("status", res.StatusCode).Error("Rate feed returned non-200")
		return decimal.Zero, errors.Errorf("rate feed returned status %d", res.StatusCode)
	}

	var body struct {
		Rate decimal.Decimal `json:"rate"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		log.WithError(err).Error("Failed to decode rate feed response")
		return decimal.Zero, err
	}

	if body.Rate.IsZero() {
		return decimal.Zero, errors.Errorf("rate feed returned zero rate for %s/%s", base, quote)
	}
	return body.Rate, nil
}
