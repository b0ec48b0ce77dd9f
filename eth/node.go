package eth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// Block tags accepted by state queries.
const (
	BlockLatest  = "latest"
	BlockPending = "pending"
)

// node decodes typed results of the eth_* methods on top of a Transport.
type node struct {
	transport Transport
}

// callArgs is the transaction object of eth_call and eth_estimateGas.
type callArgs struct {
	From  *common.Address `json:"from,omitempty"`
	To    *common.Address `json:"to,omitempty"`
	Value *hexutil.Big    `json:"value,omitempty"`
	Data  hexutil.Bytes   `json:"data,omitempty"`
}

func newCallArgs(from common.Address, to *common.Address, value *big.Int, data []byte) callArgs {
	args := callArgs{To: to, Data: data}
	if from != (common.Address{}) {
		args.From = &from
	}
	if value != nil && value.Sign() > 0 {
		args.Value = (*hexutil.Big)(value)
	}
	return args
}

func (n node) call(ctx context.Context, out any, method string, params ...any) error {
	raw, err := n.transport.Call(ctx, method, params...)
	if err != nil {
		return err
	}
	if isNull(raw) {
		return &TransportError{Method: method, Err: fmt.Errorf("empty result")}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &TransportError{Method: method, Err: fmt.Errorf("failed to decode result: %w", err)}
	}
	return nil
}

func (n node) chainID(ctx context.Context) (*big.Int, error) {
	var id hexutil.Big
	if err := n.call(ctx, &id, "eth_chainId"); err != nil {
		return nil, err
	}
	return id.ToInt(), nil
}

func (n node) balance(ctx context.Context, account common.Address, block string) (*big.Int, error) {
	var bal hexutil.Big
	if err := n.call(ctx, &bal, "eth_getBalance", account, block); err != nil {
		return nil, err
	}
	return bal.ToInt(), nil
}

func (n node) transactionCount(ctx context.Context, account common.Address, block string) (uint64, error) {
	var count hexutil.Uint64
	if err := n.call(ctx, &count, "eth_getTransactionCount", account, block); err != nil {
		return 0, err
	}
	return uint64(count), nil
}

func (n node) estimateGas(ctx context.Context, args callArgs) (uint64, error) {
	var gas hexutil.Uint64
	if err := n.call(ctx, &gas, "eth_estimateGas", args); err != nil {
		return 0, err
	}
	return uint64(gas), nil
}

func (n node) gasPrice(ctx context.Context) (*big.Int, error) {
	var price hexutil.Big
	if err := n.call(ctx, &price, "eth_gasPrice"); err != nil {
		return nil, err
	}
	return price.ToInt(), nil
}

func (n node) maxPriorityFeePerGas(ctx context.Context) (*big.Int, error) {
	var tip hexutil.Big
	if err := n.call(ctx, &tip, "eth_maxPriorityFeePerGas"); err != nil {
		return nil, err
	}
	return tip.ToInt(), nil
}

// latestBaseFee returns the base fee of the latest block, or nil on pre-London chains.
func (n node) latestBaseFee(ctx context.Context) (*big.Int, error) {
	var head struct {
		BaseFee *hexutil.Big `json:"baseFeePerGas"`
	}
	if err := n.call(ctx, &head, "eth_getBlockByNumber", BlockLatest, false); err != nil {
		return nil, err
	}
	if head.BaseFee == nil {
		return nil, nil
	}
	return head.BaseFee.ToInt(), nil
}

func (n node) ethCall(ctx context.Context, args callArgs, block string) ([]byte, error) {
	var out hexutil.Bytes
	if err := n.call(ctx, &out, "eth_call", args, block); err != nil {
		return nil, err
	}
	return out, nil
}

func (n node) sendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	var hash common.Hash
	if err := n.call(ctx, &hash, "eth_sendRawTransaction", hexutil.Bytes(raw)); err != nil {
		return common.Hash{}, err
	}
	return hash, nil
}

type rpcReceipt struct {
	TxHash            common.Hash     `json:"transactionHash"`
	BlockNumber       *hexutil.Big    `json:"blockNumber"`
	ContractAddress   *common.Address `json:"contractAddress"`
	Status            hexutil.Uint64  `json:"status"`
	GasUsed           hexutil.Uint64  `json:"gasUsed"`
	EffectiveGasPrice *hexutil.Big    `json:"effectiveGasPrice"`
	From              common.Address  `json:"from"`
	To                *common.Address `json:"to"`
	Logs              []*types.Log    `json:"logs"`
}

// receipt returns nil without error while the node has no receipt for hash.
func (n node) receipt(ctx context.Context, hash common.Hash) (*Receipt, error) {
	raw, err := n.transport.Call(ctx, "eth_getTransactionReceipt", hash)
	if err != nil {
		return nil, err
	}
	if isNull(raw) {
		return nil, nil
	}
	var r rpcReceipt
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, &TransportError{Method: "eth_getTransactionReceipt", Err: fmt.Errorf("failed to decode receipt: %w", err)}
	}
	out := &Receipt{
		TxHash:          r.TxHash,
		ContractAddress: r.ContractAddress,
		Status:          uint64(r.Status),
		GasUsed:         uint64(r.GasUsed),
		From:            r.From,
		To:              r.To,
		Logs:            r.Logs,
	}
	if r.BlockNumber != nil {
		out.BlockNumber = r.BlockNumber.ToInt()
	}
	if r.EffectiveGasPrice != nil {
		out.EffectiveGasPrice = r.EffectiveGasPrice.ToInt()
	}
	if out.ContractAddress != nil && *out.ContractAddress == (common.Address{}) {
		out.ContractAddress = nil
	}
	return out, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
