package eth

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer holds a private key and signs transactions with it.
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewSigner creates a Signer for key.
func NewSigner(key *ecdsa.PrivateKey) (*Signer, error) {
	if key == nil {
		return nil, &SigningError{Err: errors.New("private key is nil")}
	}
	return &Signer{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// SignerFromHex parses a hex private key, with or without 0x prefix.
func SignerFromHex(hexKey string) (*Signer, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, &SigningError{Err: fmt.Errorf("invalid private key: %w", err)}
	}
	return NewSigner(key)
}

// Address returns the account address derived from the key.
func (s *Signer) Address() common.Address {
	return s.address
}

// Sign signs tx. Nonce, gas limit, chain ID and fee fields must all be set;
// nothing is defaulted here.
func (s *Signer) Sign(tx UnsignedTransaction) (*SignedTransaction, error) {
	if tx.Nonce == nil {
		return nil, &SigningError{Field: "nonce", Err: ErrMissingField}
	}
	if tx.GasLimit == nil {
		return nil, &SigningError{Field: "gas limit", Err: ErrMissingField}
	}
	if tx.ChainID == nil || tx.ChainID.Sign() <= 0 {
		return nil, &SigningError{Field: "chain id", Err: ErrMissingField}
	}

	var inner types.TxData
	switch {
	case tx.hasDynamicFees() && tx.GasPrice != nil:
		return nil, &SigningError{Err: errors.New("both legacy gas price and EIP-1559 fees are set")}
	case tx.hasDynamicFees():
		if tx.MaxFeePerGas == nil {
			return nil, &SigningError{Field: "max fee per gas", Err: ErrMissingField}
		}
		if tx.MaxPriorityFeePerGas == nil {
			return nil, &SigningError{Field: "max priority fee per gas", Err: ErrMissingField}
		}
		inner = &types.DynamicFeeTx{
			ChainID:   tx.ChainID,
			Nonce:     *tx.Nonce,
			GasTipCap: tx.MaxPriorityFeePerGas,
			GasFeeCap: tx.MaxFeePerGas,
			Gas:       *tx.GasLimit,
			To:        tx.To,
			Value:     valueOrZero(tx.Value),
			Data:      tx.Data,
		}
	case tx.GasPrice != nil:
		inner = &types.LegacyTx{
			Nonce:    *tx.Nonce,
			GasPrice: tx.GasPrice,
			Gas:      *tx.GasLimit,
			To:       tx.To,
			Value:    valueOrZero(tx.Value),
			Data:     tx.Data,
		}
	default:
		return nil, &SigningError{Field: "gas price or EIP-1559 fees", Err: ErrMissingField}
	}

	signed, err := types.SignTx(types.NewTx(inner), types.LatestSignerForChainID(tx.ChainID), s.key)
	if err != nil {
		return nil, &SigningError{Err: fmt.Errorf("failed to sign transaction: %w", err)}
	}
	raw, err := signed.MarshalBinary()
	if err != nil {
		return nil, &SigningError{Err: fmt.Errorf("failed to encode transaction: %w", err)}
	}

	v, r, sig := signed.RawSignatureValues()
	unsigned := tx.clone()
	unsigned.From = s.address
	return &SignedTransaction{
		Unsigned: unsigned,
		Hash:     signed.Hash(),
		Raw:      raw,
		V:        v,
		R:        r,
		S:        sig,
		tx:       signed,
	}, nil
}
