package eth

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// Resolver fills the nonce, gas limit and fee fields of a transaction.
// Nonce reservation is serialized per account, so concurrent Resolve calls
// for one account never receive the same nonce.
type Resolver struct {
	node          node
	chainID       *big.Int
	feeMode       FeeMode
	gasMultiplier float64
	maxFeePerGas  *big.Int
	log           logrus.FieldLogger

	mu       sync.Mutex
	accounts map[common.Address]*accountNonces
}

type accountNonces struct {
	mu    sync.Mutex
	next  uint64
	known bool
}

// NewResolver creates a Resolver querying transport, signing for chainID.
func NewResolver(transport Transport, chainID *big.Int, cfg Config, logger logrus.FieldLogger) *Resolver {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	mult := cfg.GasLimitMultiplier()
	if mult < 1 {
		mult = 1
	}
	return &Resolver{
		node:          node{transport: transport},
		chainID:       new(big.Int).Set(chainID),
		feeMode:       cfg.FeeMode(),
		gasMultiplier: mult,
		maxFeePerGas:  cfg.MaxFeePerGas(),
		log:           logger,
		accounts:      make(map[common.Address]*accountNonces),
	}
}

// Resolve returns a copy of partial with every optional field populated.
// Fields already set by the caller are kept. On failure nothing is filled
// and no nonce is reserved.
func (r *Resolver) Resolve(ctx context.Context, partial UnsignedTransaction, account common.Address) (UnsignedTransaction, error) {
	tx := partial.clone()
	tx.From = account
	if tx.ChainID == nil {
		tx.ChainID = new(big.Int).Set(r.chainID)
	}

	if tx.GasLimit == nil {
		gas, err := r.estimateGas(ctx, &tx)
		if err != nil {
			return UnsignedTransaction{}, &ResolutionError{Step: "gas", Err: err}
		}
		tx.GasLimit = &gas
	}

	if err := r.resolveFees(ctx, &tx); err != nil {
		return UnsignedTransaction{}, &ResolutionError{Step: "fees", Err: err}
	}

	// The nonce goes last: once reserved, nothing else in Resolve can fail.
	if tx.Nonce == nil {
		nonce, err := r.reserveNonce(ctx, account)
		if err != nil {
			return UnsignedTransaction{}, &ResolutionError{Step: "nonce", Err: err}
		}
		tx.Nonce = &nonce
	}

	return tx, nil
}

func (r *Resolver) estimateGas(ctx context.Context, tx *UnsignedTransaction) (uint64, error) {
	estimated, err := r.node.estimateGas(ctx, newCallArgs(tx.From, tx.To, tx.Value, tx.Data))
	if err != nil {
		return 0, fmt.Errorf("failed to estimate gas: %w", err)
	}
	gas := estimated
	if r.gasMultiplier > 1 {
		gas = uint64(float64(estimated) * r.gasMultiplier)
	}
	r.log.WithFields(logrus.Fields{
		"estimated": estimated,
		"gas_limit": gas,
	}).Debug("Gas limit resolved")
	return gas, nil
}

func (r *Resolver) resolveFees(ctx context.Context, tx *UnsignedTransaction) error {
	if tx.GasPrice != nil || (tx.MaxFeePerGas != nil && tx.MaxPriorityFeePerGas != nil) {
		return r.checkCeiling(tx)
	}

	mode := r.feeMode
	if tx.hasDynamicFees() {
		mode = FeeModeDynamic
	}

	var baseFee *big.Int
	if mode != FeeModeLegacy {
		var err error
		baseFee, err = r.node.latestBaseFee(ctx)
		if err != nil {
			return fmt.Errorf("failed to get latest block: %w", err)
		}
		if baseFee == nil {
			if mode == FeeModeDynamic {
				return errors.New("node does not report a base fee, EIP-1559 pricing unavailable")
			}
			mode = FeeModeLegacy
		}
	}

	if mode == FeeModeLegacy {
		price, err := r.node.gasPrice(ctx)
		if err != nil {
			return fmt.Errorf("failed to get gas price: %w", err)
		}
		tx.GasPrice = price
		r.log.WithField("gas_price", price.String()).Debug("Using legacy fees")
		return r.checkCeiling(tx)
	}

	if tx.MaxPriorityFeePerGas == nil {
		tip, err := r.node.maxPriorityFeePerGas(ctx)
		if err != nil {
			return fmt.Errorf("failed to get priority fee: %w", err)
		}
		tx.MaxPriorityFeePerGas = tip
	}
	if tx.MaxFeePerGas == nil {
		// Room for the base fee to double before the transaction is priced out.
		feeCap := new(big.Int).Mul(baseFee, big.NewInt(2))
		tx.MaxFeePerGas = feeCap.Add(feeCap, tx.MaxPriorityFeePerGas)
	}
	r.log.WithFields(logrus.Fields{
		"max_fee_per_gas":          tx.MaxFeePerGas.String(),
		"max_priority_fee_per_gas": tx.MaxPriorityFeePerGas.String(),
	}).Debug("Using EIP-1559 fees")
	return r.checkCeiling(tx)
}

func (r *Resolver) checkCeiling(tx *UnsignedTransaction) error {
	if r.maxFeePerGas == nil {
		return nil
	}
	price := tx.GasPrice
	if price == nil {
		price = tx.MaxFeePerGas
	}
	if price != nil && price.Cmp(r.maxFeePerGas) > 0 {
		return fmt.Errorf("fee %s wei exceeds maximum %s wei", price, r.maxFeePerGas)
	}
	return nil
}

func (r *Resolver) nonces(account common.Address) *accountNonces {
	r.mu.Lock()
	defer r.mu.Unlock()
	an, ok := r.accounts[account]
	if !ok {
		an = &accountNonces{}
		r.accounts[account] = an
	}
	return an
}

// reserveNonce hands out max(confirmed count, next local nonce) and advances
// the local counter.
func (r *Resolver) reserveNonce(ctx context.Context, account common.Address) (uint64, error) {
	an := r.nonces(account)
	an.mu.Lock()
	defer an.mu.Unlock()

	confirmed, err := r.node.transactionCount(ctx, account, BlockLatest)
	if err != nil {
		return 0, fmt.Errorf("failed to get nonce: %w", err)
	}
	nonce := confirmed
	if an.known && an.next > nonce {
		nonce = an.next
	}
	an.next = nonce + 1
	an.known = true

	r.log.WithFields(logrus.Fields{
		"address":   account.Hex(),
		"nonce":     nonce,
		"confirmed": confirmed,
	}).Info("Reserved nonce")
	return nonce, nil
}

// Release returns nonce to the pool if it is the most recent reservation for
// account. Use it only when the node never accepted the transaction.
func (r *Resolver) Release(account common.Address, nonce uint64) bool {
	an := r.nonces(account)
	an.mu.Lock()
	defer an.mu.Unlock()
	if !an.known || an.next != nonce+1 {
		return false
	}
	an.next = nonce
	return true
}

// Reset forgets locally reserved nonces for account; the next reservation
// starts again from the node's confirmed count.
func (r *Resolver) Reset(account common.Address) {
	an := r.nonces(account)
	an.mu.Lock()
	defer an.mu.Unlock()
	an.next = 0
	an.known = false
}
