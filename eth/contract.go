package eth

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Contract is a handle on a deployed contract. It does not own the Client.
type Contract struct {
	address common.Address
	iface   *ContractInterface
	client  *Client
}

// Address returns the contract address.
func (c *Contract) Address() common.Address {
	return c.address
}

// Interface returns the contract interface.
func (c *Contract) Interface() *ContractInterface {
	return c.iface
}

func (c *Contract) encode(method string, args []any) ([]byte, error) {
	if c.iface == nil {
		return nil, &EncodingError{Function: method, Err: errors.New("contract has no interface")}
	}
	return c.iface.EncodeCall(method, args...)
}

// Call executes method read-only against the latest state and decodes its
// return values. No transaction is sent and no nonce is used.
func (c *Contract) Call(ctx context.Context, method string, args ...any) ([]any, error) {
	data, err := c.encode(method, args)
	if err != nil {
		return nil, err
	}
	out, err := c.client.call(ctx, c.address, data)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", method, err)
	}
	return c.iface.DecodeResult(method, out)
}

// Send submits a transaction invoking method and returns its hash without
// waiting for it to be mined.
func (c *Contract) Send(ctx context.Context, method string, args ...any) (common.Hash, error) {
	return c.SendWithValue(ctx, nil, method, args...)
}

// SendWithValue is like Send and also transfers value wei to the contract.
func (c *Contract) SendWithValue(ctx context.Context, value *big.Int, method string, args ...any) (common.Hash, error) {
	data, err := c.encode(method, args)
	if err != nil {
		return common.Hash{}, err
	}
	to := c.address
	hash, err := c.client.SendTransaction(ctx, UnsignedTransaction{To: &to, Value: value, Data: data})
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to send %s: %w", method, err)
	}
	return hash, nil
}

// SendAndWait is like Send and also waits for the receipt. A mined but
// reverted transaction returns its receipt together with ErrTransactionReverted.
func (c *Contract) SendAndWait(ctx context.Context, method string, args ...any) (*Receipt, error) {
	hash, err := c.Send(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	cfg := c.client.config
	receipt, err := c.client.WaitForReceipt(ctx, hash, cfg.PollInterval(), cfg.TransactionTimeout())
	if err != nil {
		return nil, err
	}
	if !receipt.Succeeded() {
		return receipt, fmt.Errorf("%s %s: %w", method, hash.Hex(), ErrTransactionReverted)
	}
	return receipt, nil
}
