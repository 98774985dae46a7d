package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// WireTimeLayout is the timestamp layout the scoring model was trained on.
const WireTimeLayout = "2006-01-02T15:04"

var ErrUnavailable = errors.New("scoring unavailable")

type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type Request struct {
	TransactionID    string  `json:"transactionId"`
	TransactionTime  string  `json:"transactionTime"`
	CCNum            string  `json:"ccNum"`
	TransactionType  string  `json:"transactionType"`
	Amount           float64 `json:"amount"`
	City             string  `json:"city"`
	UserLocation     Point   `json:"userLocation"`
	MerchantLocation Point   `json:"merchantLocation"`
}

type Verdict struct {
	IsFraud     bool     `json:"is_fraud"`
	Confidence  *float64 `json:"confidence"`
	FraudReason []string `json:"fraud_reason"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Predict asks the model for a verdict. It makes exactly one attempt; every
// failure is reported as ErrUnavailable.
func (c *Client) Predict(ctx context.Context, in Request) (*Verdict, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w: %w", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("predict failed with status %d: %w", resp.StatusCode, ErrUnavailable)
	}

	var v Verdict
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return nil, fmt.Errorf("decode response: %w: %w", ErrUnavailable, err)
	}
	if v.FraudReason == nil {
		v.FraudReason = []string{}
	}
	return &v, nil
}
