package resolution

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/quantex/oms/pkg/httputil"
	"github.com/quantex/oms/pkg/logger"
)

// RemoteClient talks to the collaborator-owned resolver service. It
// never retries: a failed call is the local resolver's problem.
type RemoteClient struct {
	baseURL    string
	httpClient *httputil.Client
	logger     *logger.Logger
}

// NewRemoteClient creates a resolver service client.
func NewRemoteClient(baseURL string, httpClient *httputil.Client, log *logger.Logger) *RemoteClient {
	return &RemoteClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     log,
	}
}

type textRequest struct {
	Text string `json:"text"`
}

// traderTextResponse is the wire shape of POST /parse-trader-text.
type traderTextResponse struct {
	Structured    string                 `json:"structured"`
	BackendFormat string                 `json:"backend_format"`
	Description   string                 `json:"description"`
	Algo          string                 `json:"algo"`
	Parameters    map[string]interface{} `json:"parameters"`
	Confidence    float64                `json:"confidence"`
}

// ParseTraderText resolves instruction text via the remote service.
func (c *RemoteClient) ParseTraderText(ctx context.Context, text string) (Result, error) {
	resp, err := c.httpClient.PostJSON(ctx, c.baseURL+"/parse-trader-text", textRequest{Text: text})
	if err != nil {
		return Result{}, fmt.Errorf("parse-trader-text request: %w", err)
	}
	defer resp.Body.Close()

	if !httputil.IsSuccess(resp.StatusCode) {
		return Result{}, fmt.Errorf("parse-trader-text status %d", resp.StatusCode)
	}

	var body traderTextResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{}, fmt.Errorf("parse-trader-text decode: %w", err)
	}
	if body.Structured == "" || body.Confidence < 0 || body.Confidence > 1 {
		return Result{}, fmt.Errorf("parse-trader-text malformed response")
	}

	params := body.Parameters
	if params == nil {
		params = map[string]interface{}{}
	}

	return Result{
		Text:        text,
		Structured:  body.Structured,
		Directive:   body.BackendFormat,
		Description: body.Description,
		Algo:        body.Algo,
		Parameters:  params,
		Confidence:  body.Confidence,
	}, nil
}

// Autocomplete returns candidate completions; only the first is used.
func (c *RemoteClient) Autocomplete(ctx context.Context, text string) ([]string, error) {
	resp, err := c.httpClient.PostJSON(ctx, c.baseURL+"/autocomplete", textRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("autocomplete request: %w", err)
	}
	defer resp.Body.Close()

	if !httputil.IsSuccess(resp.StatusCode) {
		return nil, fmt.Errorf("autocomplete status %d", resp.StatusCode)
	}

	var suggestions []string
	if err := json.NewDecoder(resp.Body).Decode(&suggestions); err != nil {
		return nil, fmt.Errorf("autocomplete decode: %w", err)
	}

	return suggestions, nil
}

// ParseOrder extracts structured order fields from a natural-language
// order sentence via the remote service.
func (c *RemoteClient) ParseOrder(ctx context.Context, text string) (Prefill, error) {
	resp, err := c.httpClient.PostJSON(ctx, c.baseURL+"/parse-order", textRequest{Text: text})
	if err != nil {
		return Prefill{}, fmt.Errorf("parse-order request: %w", err)
	}
	defer resp.Body.Close()

	if !httputil.IsSuccess(resp.StatusCode) {
		return Prefill{}, fmt.Errorf("parse-order status %d", resp.StatusCode)
	}

	var prefill Prefill
	if err := json.NewDecoder(resp.Body).Decode(&prefill); err != nil {
		return Prefill{}, fmt.Errorf("parse-order decode: %w", err)
	}

	return prefill, nil
}

// Ping probes the service root. A nil error means the remote resolver
// is reachable.
func (c *RemoteClient) Ping(ctx context.Context) error {
	resp, err := c.httpClient.Get(ctx, c.baseURL+"/")
	if err != nil {
		return fmt.Errorf("resolver ping: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("resolver ping status %d", resp.StatusCode)
	}

	return nil
}
