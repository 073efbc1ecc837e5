// Package stripe wraps the handful of Stripe REST calls the catalog needs:
// product objects plus one price object per currency, including derived sale
// prices.
package stripe

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/guonaihong/gout"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/bitminded/backoffice/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Client struct {
	apiURL  string
	apiKey  string
	timeout time.Duration
}

func New(cfg config.StripeConfig) *Client {
	return &Client{apiURL: cfg.ApiUrl, apiKey: cfg.ApiKey, timeout: 30 * time.Second}
}

// Enabled reports whether an API key is configured; callers skip the sync
// silently when it is not (local development).
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type object struct {
	ID     string `json:"id"`
	Object string `json:"object"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) post(ctx context.Context, path string, form gout.H) (string, error) {
	var (
		body []byte
		code int
	)
	err := gout.POST(c.apiURL+path).
		WithContext(ctx).
		SetTimeout(c.timeout).
		SetHeader(gout.H{"Authorization": "Bearer " + c.apiKey}).
		SetWWWForm(form).
		BindBody(&body).
		Code(&code).
		Do()
	if err != nil {
		return "", errors.Wrapf(err, "stripe: POST %s", path)
	}
	var obj object
	if err := json.Unmarshal(body, &obj); err != nil {
		return "", errors.Wrapf(err, "stripe: decode %s", path)
	}
	if code < 200 || code >= 300 {
		msg := fmt.Sprintf("status %d", code)
		if obj.Error != nil {
			msg = obj.Error.Message
		}
		return "", errors.Errorf("stripe: POST %s: %s", path, msg)
	}
	return obj.ID, nil
}

// CreateProduct creates a Stripe product and returns its id.
func (c *Client) CreateProduct(ctx context.Context, name, description string) (string, error) {
	form := gout.H{"name": name}
	if description != "" {
		form["description"] = description
	}
	return c.post(ctx, "/v1/products", form)
}

// CreatePrice creates a price for productID in currency. amount is in main
// units and converted to the minor unit Stripe expects. interval is empty
// for one-time prices, else "month" or "year".
func (c *Client) CreatePrice(ctx context.Context, productID, currency string, amount float64, interval string) (string, error) {
	form := gout.H{
		"product":     productID,
		"currency":    currency,
		"unit_amount": strconv.FormatInt(int64(amount*100+0.5), 10),
	}
	if interval != "" {
		form["recurring[interval]"] = interval
	}
	return c.post(ctx, "/v1/prices", form)
}

// DeactivatePrice marks a price inactive; Stripe prices cannot be deleted.
func (c *Client) DeactivatePrice(ctx context.Context, priceID string) error {
	_, err := c.post(ctx, "/v1/prices/"+priceID, gout.H{"active": "false"})
	return err
}

// ArchiveProduct marks a product inactive.
func (c *Client) ArchiveProduct(ctx context.Context, productID string) error {
	_, err := c.post(ctx, "/v1/products/"+productID, gout.H{"active": "false"})
	return err
}
