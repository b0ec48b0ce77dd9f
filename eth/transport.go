package eth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/prometheus/client_golang/prometheus"
)

// Transport issues JSON-RPC requests against a single endpoint.
type Transport interface {
	// Call performs one request and returns the raw "result" member.
	// A JSON null result is returned as the bytes "null".
	Call(ctx context.Context, method string, params ...any) (json.RawMessage, error)
}

// Ensure *RPCTransport implements Transport
var _ Transport = (*RPCTransport)(nil)

// RPCTransport is a Transport backed by the go-ethereum RPC client.
type RPCTransport struct {
	client  *rpc.Client
	metrics *transportMetrics
}

// TransportOption configures Dial and NewRPCTransport.
type TransportOption func(*transportConfig)

type transportConfig struct {
	httpClient *http.Client
	headers    http.Header
	registerer prometheus.Registerer
}

// WithHTTPClient sets the HTTP client used for requests.
// HTTP_PROXY and HTTPS_PROXY are honoured by the default client.
func WithHTTPClient(c *http.Client) TransportOption {
	return func(cfg *transportConfig) {
		cfg.httpClient = c
	}
}

// WithHeader adds a header sent with every request, e.g. an API key.
func WithHeader(key, value string) TransportOption {
	return func(cfg *transportConfig) {
		cfg.headers.Add(key, value)
	}
}

// WithRegisterer registers the transport metrics on r.
func WithRegisterer(r prometheus.Registerer) TransportOption {
	return func(cfg *transportConfig) {
		cfg.registerer = r
	}
}

func newTransportConfig(opts []TransportOption) *transportConfig {
	cfg := &transportConfig{headers: make(http.Header)}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Dial connects to an HTTP(S) JSON-RPC endpoint.
func Dial(ctx context.Context, url string, opts ...TransportOption) (*RPCTransport, error) {
	cfg := newTransportConfig(opts)

	rpcOpts := []rpc.ClientOption{rpc.WithHeaders(cfg.headers)}
	if cfg.httpClient != nil {
		rpcOpts = append(rpcOpts, rpc.WithHTTPClient(cfg.httpClient))
	}
	client, err := rpc.DialOptions(ctx, url, rpcOpts...)
	if err != nil {
		return nil, &TransportError{Method: "dial", Err: fmt.Errorf("failed to connect to %s: %w", url, err)}
	}
	return newRPCTransport(client, cfg)
}

// NewRPCTransport wraps an existing RPC client, e.g. an in-process one.
func NewRPCTransport(client *rpc.Client, opts ...TransportOption) (*RPCTransport, error) {
	return newRPCTransport(client, newTransportConfig(opts))
}

func newRPCTransport(client *rpc.Client, cfg *transportConfig) (*RPCTransport, error) {
	m := newTransportMetrics()
	if cfg.registerer != nil {
		if err := m.register(cfg.registerer); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to register transport metrics: %w", err)
		}
	}
	return &RPCTransport{client: client, metrics: m}, nil
}

// Call implements Transport.
func (t *RPCTransport) Call(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	start := time.Now()
	var result json.RawMessage
	err := t.client.CallContext(ctx, &result, method, params...)
	t.metrics.observe(method, time.Since(start), err)
	if err != nil {
		return nil, newTransportError(method, err)
	}
	return result, nil
}

// Close closes the underlying connection.
func (t *RPCTransport) Close() {
	t.client.Close()
}

// newTransportError classifies err, keeping the node's code and message intact.
func newTransportError(method string, err error) *TransportError {
	te := &TransportError{Method: method, Err: err}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		te.Code = rpcErr.ErrorCode()
		te.Message = rpcErr.Error()
		var dataErr rpc.DataError
		if errors.As(err, &dataErr) {
			te.Data = dataErr.ErrorData()
		}
		return te
	}

	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		te.Code = httpErr.StatusCode
	}
	return te
}
