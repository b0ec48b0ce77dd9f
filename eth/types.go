package eth

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// UnsignedTransaction holds transaction fields before signing.
// Nil pointers are unset; the Resolver fills them, the Signer requires them.
type UnsignedTransaction struct {
	From     common.Address  `json:"from"`
	To       *common.Address `json:"to"` // nil for contract creation
	Value    *big.Int        `json:"value"`
	Data     []byte          `json:"data"`
	Nonce    *uint64         `json:"nonce"`
	GasLimit *uint64         `json:"gas_limit"`

	// Legacy pricing
	GasPrice *big.Int `json:"gas_price"`

	// EIP-1559 pricing
	MaxFeePerGas         *big.Int `json:"max_fee_per_gas"`
	MaxPriorityFeePerGas *big.Int `json:"max_priority_fee_per_gas"`

	ChainID *big.Int `json:"chain_id"`
}

// IsCreation reports whether the transaction deploys a contract.
func (tx *UnsignedTransaction) IsCreation() bool {
	return tx.To == nil
}

func (tx *UnsignedTransaction) hasDynamicFees() bool {
	return tx.MaxFeePerGas != nil || tx.MaxPriorityFeePerGas != nil
}

// clone returns a copy that shares no pointers with tx.
func (tx *UnsignedTransaction) clone() UnsignedTransaction {
	out := UnsignedTransaction{
		From:                 tx.From,
		Value:                copyBig(tx.Value),
		Data:                 common.CopyBytes(tx.Data),
		GasPrice:             copyBig(tx.GasPrice),
		MaxFeePerGas:         copyBig(tx.MaxFeePerGas),
		MaxPriorityFeePerGas: copyBig(tx.MaxPriorityFeePerGas),
		ChainID:              copyBig(tx.ChainID),
	}
	if tx.To != nil {
		to := *tx.To
		out.To = &to
	}
	if tx.Nonce != nil {
		n := *tx.Nonce
		out.Nonce = &n
	}
	if tx.GasLimit != nil {
		g := *tx.GasLimit
		out.GasLimit = &g
	}
	return out
}

// SignedTransaction is a signed transaction ready for submission.
type SignedTransaction struct {
	Unsigned UnsignedTransaction
	Hash     common.Hash
	Raw      []byte // EIP-2718 encoding
	V, R, S  *big.Int

	tx *types.Transaction
}

// Transaction returns the go-ethereum representation of the signed transaction.
func (s *SignedTransaction) Transaction() *types.Transaction {
	return s.tx
}

// Receipt is the outcome of a mined transaction.
type Receipt struct {
	TxHash            common.Hash     `json:"tx_hash"`
	BlockNumber       *big.Int        `json:"block_number"`     // nil while pending
	ContractAddress   *common.Address `json:"contract_address"` // creation only
	Status            uint64          `json:"status"`
	GasUsed           uint64          `json:"gas_used"`
	EffectiveGasPrice *big.Int        `json:"effective_gas_price"`
	From              common.Address  `json:"from"`
	To                *common.Address `json:"to"`
	Logs              []*types.Log    `json:"logs"`
}

// Succeeded reports whether the transaction executed without reverting.
func (r *Receipt) Succeeded() bool {
	return r.Status == types.ReceiptStatusSuccessful
}

// TxState is the lifecycle position of a transaction handled by the Client.
type TxState uint8

const (
	TxSigned TxState = iota
	TxSubmitted
	TxMined
	TxReverted
	TxTimedOut
)

func (s TxState) String() string {
	switch s {
	case TxSigned:
		return "signed"
	case TxSubmitted:
		return "submitted"
	case TxMined:
		return "mined"
	case TxReverted:
		return "reverted"
	case TxTimedOut:
		return "timed-out"
	default:
		return "unknown"
	}
}

// Final reports whether no further transition is expected.
func (s TxState) Final() bool {
	return s == TxMined || s == TxReverted
}

func copyBig(b *big.Int) *big.Int {
	if b == nil {
		return nil
	}
	return new(big.Int).Set(b)
}

func valueOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
