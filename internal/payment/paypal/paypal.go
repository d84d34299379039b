package paypal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wiktoriatopajew/pipa/internal/utils"
)

var (
	ErrNotConfigured     = errors.New("paypal credentials not configured")
	ErrOrderNotFound     = errors.New("paypal order not found")
	ErrOrderNotCompleted = errors.New("paypal order is not completed")
)

const requestTimeout = 15 * time.Second

// Driver checks captured orders against the PayPal Orders API.
type Driver struct {
	clientID string
	secret   string
	baseURL  string
	client   *http.Client
}

func NewDriver(clientID, secret, baseURL string) *Driver {
	return &Driver{
		clientID: clientID,
		secret:   secret,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   utils.NewHTTPClient(requestTimeout),
	}
}

// Configured reports whether credentials are present. Without them payment
// verification is unavailable and subscription purchase must be refused.
func (d *Driver) Configured() bool {
	return d.clientID != "" && d.secret != ""
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

type orderResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PurchaseUnits []struct {
		Amount struct {
			Value string `json:"value"`
		} `json:"amount"`
	} `json:"purchase_units"`
}

func (d *Driver) accessToken(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		d.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(d.clientID, d.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("paypal token request failed: %s", resp.Status)
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

// VerifyOrder confirms the order exists and has been captured, returning the
// captured amount.
func (d *Driver) VerifyOrder(ctx context.Context, orderID string) (float64, error) {
	if !d.Configured() {
		return 0, ErrNotConfigured
	}

	token, err := d.accessToken(ctx)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		d.baseURL+"/v2/checkout/orders/"+url.PathEscape(orderID), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, ErrOrderNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("paypal order lookup failed: %s", resp.Status)
	}

	var order orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return 0, err
	}

	if order.Status != "COMPLETED" {
		return 0, ErrOrderNotCompleted
	}
	if len(order.PurchaseUnits) == 0 {
		return 0, ErrOrderNotCompleted
	}

	amount, err := strconv.ParseFloat(order.PurchaseUnits[0].Amount.Value, 64)
	if err != nil {
		return 0, fmt.Errorf("paypal order amount unparseable: %w", err)
	}

	return amount, nil
}
