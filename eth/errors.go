package eth

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Sentinel errors for common failure conditions.
var (
	// ErrFunctionNotFound indicates the contract interface has no function with the requested name.
	ErrFunctionNotFound = errors.New("function not found in contract interface")

	// ErrLengthMismatch indicates return data is longer or shorter than its output types encode to.
	ErrLengthMismatch = errors.New("return data length mismatch")

	// ErrMissingField indicates a transaction field required for signing was not set.
	ErrMissingField = errors.New("missing required transaction field")

	// ErrNoContractAddress indicates a creation receipt did not carry a contract address.
	ErrNoContractAddress = errors.New("receipt has no contract address")

	// ErrTransactionReverted indicates the transaction was mined with a failure status.
	ErrTransactionReverted = errors.New("transaction reverted")

	// ErrReceiptTimeout indicates no receipt appeared before the deadline.
	ErrReceiptTimeout = errors.New("timed out waiting for receipt")

	// ErrChainIDMismatch indicates the node serves a different chain than configured.
	ErrChainIDMismatch = errors.New("chain ID mismatch")
)

// TransportError is returned when a JSON-RPC request fails: network failure,
// HTTP failure, or an error envelope returned by the node.
type TransportError struct {
	Method  string
	Code    int    // JSON-RPC error code, or HTTP status code for HTTP failures
	Message string // JSON-RPC error message, empty for network failures
	Data    any
	Err     error
}

func (e *TransportError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("rpc %s: %s (code %d)", e.Method, e.Message, e.Code)
	}
	return fmt.Sprintf("rpc %s: %v", e.Method, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// SigningError indicates a transaction could not be signed.
type SigningError struct {
	Field string // name of the missing field, if any
	Err   error
}

func (e *SigningError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("signing: %v: %s", e.Err, e.Field)
	}
	return fmt.Sprintf("signing: %v", e.Err)
}

func (e *SigningError) Unwrap() error {
	return e.Err
}

// ResolutionError wraps the failure that prevented filling a transaction.
type ResolutionError struct {
	Step string // nonce, gas or fees
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s: %v", e.Step, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// EncodingError indicates arguments could not be packed for a function.
type EncodingError struct {
	Function string
	Err      error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encode %q: %v", e.Function, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// DecodingError indicates return data could not be unpacked for a function.
type DecodingError struct {
	Function string
	Length   int
	Err      error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("decode %q (%d bytes): %v", e.Function, e.Length, e.Err)
}

func (e *DecodingError) Unwrap() error {
	return e.Err
}

// DeploymentError indicates a contract creation did not produce a usable contract.
type DeploymentError struct {
	TxHash common.Hash
	Err    error
}

func (e *DeploymentError) Error() string {
	return fmt.Sprintf("deploy %s: %v", e.TxHash.Hex(), e.Err)
}

func (e *DeploymentError) Unwrap() error {
	return e.Err
}

// TimeoutError is returned by receipt polling when the deadline passes.
type TimeoutError struct {
	TxHash  common.Hash
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("transaction %s: no receipt after %s", e.TxHash.Hex(), e.Timeout)
}

func (e *TimeoutError) Unwrap() error {
	return ErrReceiptTimeout
}
