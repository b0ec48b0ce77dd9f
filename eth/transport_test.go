package eth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcRequest struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params []any           `json:"params"`
}

// newRPCServer answers eth_chainId, fails eth_fail with a node error and
// returns null for everything else.
func newRPCServer(t *testing.T, apiKey *atomic.Value) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if apiKey != nil {
			apiKey.Store(r.Header.Get("X-Api-Key"))
		}
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		switch req.Method {
		case "eth_chainId":
			resp["result"] = "0x128"
		case "eth_fail":
			resp["error"] = map[string]any{"code": -32000, "message": "nonce too low", "data": "0xdead"}
		default:
			resp["result"] = nil
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRPCTransport_Call(t *testing.T) {
	var apiKey atomic.Value
	srv := newRPCServer(t, &apiKey)

	tr, err := Dial(context.Background(), srv.URL, WithHeader("X-Api-Key", "secret"), WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	defer tr.Close()

	raw, err := tr.Call(context.Background(), "eth_chainId")
	require.NoError(t, err)
	assert.JSONEq(t, `"0x128"`, string(raw))
	assert.Equal(t, "secret", apiKey.Load())

	raw, err = tr.Call(context.Background(), "eth_getTransactionReceipt", "0x01")
	require.NoError(t, err)
	assert.True(t, isNull(raw))
}

func TestRPCTransport_NodeError(t *testing.T) {
	tr, err := Dial(context.Background(), newRPCServer(t, nil).URL)
	require.NoError(t, err)
	defer tr.Close()

	_, err = tr.Call(context.Background(), "eth_fail")
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "eth_fail", te.Method)
	assert.Equal(t, -32000, te.Code)
	assert.Equal(t, "nonce too low", te.Message)
	assert.Equal(t, "0xdead", te.Data)
	assert.True(t, rejectedByNode(err))
}

func TestRPCTransport_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	tr, err := Dial(context.Background(), srv.URL)
	require.NoError(t, err)
	defer tr.Close()

	_, err = tr.Call(context.Background(), "eth_chainId")
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusServiceUnavailable, te.Code)
	assert.Empty(t, te.Message)
	assert.False(t, rejectedByNode(err))
}

func TestRPCTransport_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	tr, err := Dial(context.Background(), url)
	require.NoError(t, err)
	defer tr.Close()

	_, err = tr.Call(context.Background(), "eth_chainId")
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Zero(t, te.Code)
	assert.False(t, rejectedByNode(err))
}

func TestRPCTransport_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	tr, err := Dial(context.Background(), newRPCServer(t, nil).URL, WithRegisterer(reg))
	require.NoError(t, err)
	defer tr.Close()

	for i := 0; i < 3; i++ {
		_, err := tr.Call(context.Background(), "eth_chainId")
		require.NoError(t, err)
	}
	_, err = tr.Call(context.Background(), "eth_fail")
	require.Error(t, err)

	assert.Equal(t, 3.0, testutil.ToFloat64(tr.metrics.requests.WithLabelValues("eth_chainId", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(tr.metrics.requests.WithLabelValues("eth_fail", "error")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{"ghost_rpc_requests_total", "ghost_rpc_request_duration_seconds"}, names)

	// a second transport cannot claim the same collectors
	_, err = Dial(context.Background(), newRPCServer(t, nil).URL, WithRegisterer(reg))
	assert.Error(t, err)
}
