package resolversvc

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantex/oms/internal/refdata"
	"github.com/quantex/oms/pkg/logger"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := New(refdata.Default(), logger.NewNop())
	srv := httptest.NewServer(svc.Router())
	t.Cleanup(srv.Close)
	return srv
}

func postText(t *testing.T, url, text string) *http.Response {
	t.Helper()
	body, err := json.Marshal(map[string]string{"text": text})
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestRootProbe(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "resolver", body["service"])
	assert.Equal(t, "operational", body["status"])
}

func TestParseTraderText(t *testing.T) {
	srv := newTestServer(t)

	resp := postText(t, srv.URL+"/parse-trader-text", "vwap market close")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Structured    string  `json:"structured"`
		BackendFormat string  `json:"backend_format"`
		Algo          string  `json:"algo"`
		Confidence    float64 `json:"confidence"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "vwap", body.Algo)
	assert.Contains(t, body.Structured, "VWAP")
	assert.True(t, strings.HasPrefix(body.BackendFormat, "ALGO=VWAP"))
	assert.InDelta(t, 0.9, body.Confidence, 0.001)
}

func TestParseTraderTextUnmatched(t *testing.T) {
	srv := newTestServer(t)

	resp := postText(t, srv.URL+"/parse-trader-text", "handle with care")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Algo       string  `json:"algo"`
		Confidence float64 `json:"confidence"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Empty(t, body.Algo)
	assert.InDelta(t, 0.5, body.Confidence, 0.001)
}

func TestAutocomplete(t *testing.T) {
	srv := newTestServer(t)

	resp := postText(t, srv.URL+"/autocomplete", "vwap")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var suggestions []string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&suggestions))
	require.Len(t, suggestions, 1)
	assert.True(t, strings.HasPrefix(strings.ToLower(suggestions[0]), "vwap"))

	// No match returns an empty list, not null.
	resp = postText(t, srv.URL+"/autocomplete", "zzz")
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&suggestions))
	assert.NotNil(t, suggestions)
	assert.Empty(t, suggestions)
}

func TestParseOrderEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp := postText(t, srv.URL+"/parse-order", "Buy 100 shares of AAPL at $178 as a GTC order")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Security *struct {
			Symbol string `json:"symbol"`
		} `json:"security"`
		Quantity    *int     `json:"quantity"`
		Price       *float64 `json:"price"`
		TimeInForce string   `json:"time_in_force"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotNil(t, body.Security)
	assert.Equal(t, "AAPL", body.Security.Symbol)
	require.NotNil(t, body.Quantity)
	assert.Equal(t, 100, *body.Quantity)
	require.NotNil(t, body.Price)
	assert.InDelta(t, 178, *body.Price, 0.001)
	assert.Equal(t, "GTC", body.TimeInForce)
}

func TestMalformedBody(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/parse-trader-text", "application/json", strings.NewReader("{broken"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
