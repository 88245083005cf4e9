package processing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"github.com/psapy/dv-backend/internal/domain/providers"
	"github.com/psapy/dv-backend/pkg/logger"
)

// Client talks to the blockchain-processing provider REST API. It implements
// providers.BalanceSource and providers.WalletResourceSource; address
// generation, signing and broadcasting stay on the provider side.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a new processing provider client
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// GetAddressBalances returns the hot-wallet address balances held by an
// owner on a blockchain
func (c *Client) GetAddressBalances(ctx context.Context, ownerID, blockchain string) ([]providers.AddressBalance, error) {
	endpoint := fmt.Sprintf("%s/api/v1/balances?owner=%s&blockchain=%s",
		c.baseURL, url.QueryEscape(ownerID), url.QueryEscape(blockchain))

	var resp struct {
		Balances []providers.AddressBalance `json:"balances"`
	}
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, errors.Wrap(err, "get address balances")
	}
	return resp.Balances, nil
}

// GetWalletResources returns per-blockchain wallet resource counters for an
// owner
func (c *Client) GetWalletResources(ctx context.Context, ownerID string) ([]providers.WalletResource, error) {
	endpoint := fmt.Sprintf("%s/api/v1/wallets?owner=%s", c.baseURL, url.QueryEscape(ownerID))

	var resp struct {
		Wallets []providers.WalletResource `json:"wallets"`
	}
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, errors.Wrap(err, "get wallet resources")
	}
	return resp.Wallets, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	log := logger.GetLogger().WithField("endpoint", endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	res, err := c.http.Do(req)
	if err != nil {
		log.WithError(err).Error("Processing provider request failed")
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		log.WithField("status", res.StatusCode).Error("Processing provider returned non-200")
		return errors.Errorf("processing provider returned status %d", res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		log.WithError(err).Error("Failed to decode processing provider response")
		return err
	}
	return nil
}
