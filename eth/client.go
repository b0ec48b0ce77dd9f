package eth

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// Client signs transactions for one account and submits them through a Transport.
type Client struct {
	node     node
	signer   *Signer
	resolver *Resolver
	chainID  *big.Int
	config   Config
	log      logrus.FieldLogger
	txs      *tracker
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	logger    logrus.FieldLogger
	trackSize int
}

// WithLogger sets the logger; the logrus standard logger is used otherwise.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *clientOptions) {
		o.logger = l
	}
}

// WithTrackSize sets how many submitted transactions State remembers.
func WithTrackSize(n int) Option {
	return func(o *clientOptions) {
		o.trackSize = n
	}
}

// NewClient verifies that transport serves the configured chain and returns
// a Client signing with signer.
func NewClient(ctx context.Context, transport Transport, signer *Signer, cfg Config, opts ...Option) (*Client, error) {
	o := &clientOptions{logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(o)
	}
	if signer == nil {
		return nil, &SigningError{Err: errors.New("signer is nil")}
	}
	if cfg == nil {
		cfg = StaticConfig{}
	}

	n := node{transport: transport}

	// -- Verify connection and get chain ID
	o.logger.Info("Verifying connection and getting chain ID")
	chainID, err := n.chainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	if want := cfg.ChainID(); want != 0 && chainID.Cmp(big.NewInt(want)) != 0 {
		return nil, fmt.Errorf("%w: expected %d, got %s", ErrChainIDMismatch, want, chainID)
	}

	txs, err := newTracker(o.trackSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction tracker: %w", err)
	}

	o.logger.WithFields(logrus.Fields{
		"chain_id": chainID.String(),
		"account":  signer.Address().Hex(),
	}).Info("Successfully connected to Ethereum network")

	return &Client{
		node:     n,
		signer:   signer,
		resolver: NewResolver(transport, chainID, cfg, o.logger),
		chainID:  chainID,
		config:   cfg,
		log:      o.logger,
		txs:      txs,
	}, nil
}

// ChainID returns the chain the client signs for.
func (c *Client) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// Address returns the signing account.
func (c *Client) Address() common.Address {
	return c.signer.Address()
}

// Resolver exposes the nonce/gas resolver, e.g. to Reset after replacing transactions externally.
func (c *Client) Resolver() *Resolver {
	return c.resolver
}

// Balance returns the balance of address at the latest block.
func (c *Client) Balance(ctx context.Context, address common.Address) (*big.Int, error) {
	balance, err := c.node.balance(ctx, address, BlockLatest)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

// Nonce returns the confirmed transaction count of address.
func (c *Client) Nonce(ctx context.Context, address common.Address) (uint64, error) {
	nonce, err := c.node.transactionCount(ctx, address, BlockLatest)
	if err != nil {
		return 0, fmt.Errorf("failed to get nonce: %w", err)
	}
	return nonce, nil
}

// SignTransaction resolves the missing fields of partial and signs it.
// A nonce reserved here stays reserved; pass the result to SendRaw.
func (c *Client) SignTransaction(ctx context.Context, partial UnsignedTransaction) (*SignedTransaction, error) {
	log := c.log.WithField("from", c.Address().Hex())
	if partial.To != nil {
		log = log.WithField("to", partial.To.Hex())
	}
	log.Info("Starting transaction signing process")

	tx, err := c.resolver.Resolve(ctx, partial, c.Address())
	if err != nil {
		log.WithError(err).Error("Failed to resolve transaction")
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"nonce":     *tx.Nonce,
		"gas_limit": *tx.GasLimit,
	}).Info("Transaction prepared")

	signed, err := c.signer.Sign(tx)
	if err != nil {
		if partial.Nonce == nil {
			c.releaseNonce(*tx.Nonce)
		}
		log.WithError(err).Error("Failed to sign transaction")
		return nil, err
	}
	c.txs.set(signed.Hash, TxSigned)
	log.WithField("hash", signed.Hash.Hex()).Info("Transaction signed successfully")
	return signed, nil
}

// SendTransaction resolves, signs and submits partial. It returns as soon as
// the node accepted the transaction.
func (c *Client) SendTransaction(ctx context.Context, partial UnsignedTransaction) (common.Hash, error) {
	signed, err := c.SignTransaction(ctx, partial)
	if err != nil {
		return common.Hash{}, err
	}
	hash, err := c.SendRaw(ctx, signed)
	if err != nil {
		if partial.Nonce == nil && rejectedByNode(err) {
			c.releaseNonce(*signed.Unsigned.Nonce)
		}
		return common.Hash{}, err
	}
	return hash, nil
}

// releaseNonce hands an unused nonce back to the resolver. A nonce reserved
// before a later one cannot be returned and leaves a gap until Reset.
func (c *Client) releaseNonce(nonce uint64) {
	if c.resolver.Release(c.Address(), nonce) {
		return
	}
	c.log.WithFields(logrus.Fields{
		"address": c.Address().Hex(),
		"nonce":   nonce,
	}).Warn("Nonce could not be released, later transactions may stall until Reset")
}

// SendRaw submits an already signed transaction. Resubmitting the same
// SignedTransaction is safe: the raw bytes and hash are identical.
func (c *Client) SendRaw(ctx context.Context, signed *SignedTransaction) (common.Hash, error) {
	log := c.log.WithField("hash", signed.Hash.Hex())
	log.Info("Sending transaction to network")

	hash, err := c.node.sendRawTransaction(ctx, signed.Raw)
	if err != nil {
		log.WithError(err).Error("Failed to send transaction")
		return common.Hash{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	if hash != signed.Hash {
		log.WithField("node_hash", hash.Hex()).Warn("Node reported a different transaction hash")
	}
	c.txs.advance(signed.Hash, TxSubmitted)
	log.Info("Transaction sent successfully")
	return signed.Hash, nil
}

// Transfer sends value wei to the given address.
func (c *Client) Transfer(ctx context.Context, to common.Address, value *big.Int) (common.Hash, error) {
	return c.SendTransaction(ctx, UnsignedTransaction{To: &to, Value: value})
}

// Deploy sends a creation transaction for bytecode with the ABI-encoded
// constructor args appended, waits for it to be mined and returns a handle
// bound to the new contract address.
func (c *Client) Deploy(ctx context.Context, bytecode []byte, iface *ContractInterface, args ...any) (*Contract, *Receipt, error) {
	if len(bytecode) == 0 {
		return nil, nil, &DeploymentError{Err: errors.New("empty bytecode")}
	}
	data := common.CopyBytes(bytecode)
	if iface != nil {
		ctor, err := iface.EncodeConstructor(args...)
		if err != nil {
			return nil, nil, err
		}
		data = append(data, ctor...)
	} else if len(args) > 0 {
		return nil, nil, &EncodingError{Function: "constructor", Err: errors.New("constructor arguments given without a contract interface")}
	}

	hash, err := c.SendTransaction(ctx, UnsignedTransaction{Data: data})
	if err != nil {
		return nil, nil, err
	}
	c.log.WithField("hash", hash.Hex()).Info("Contract deployed, waiting for deployment transaction to be mined")

	receipt, err := c.WaitForReceipt(ctx, hash, c.config.PollInterval(), c.config.TransactionTimeout())
	if err != nil {
		return nil, nil, err
	}
	if !receipt.Succeeded() {
		return nil, receipt, &DeploymentError{TxHash: hash, Err: ErrTransactionReverted}
	}
	if receipt.ContractAddress == nil {
		return nil, receipt, &DeploymentError{TxHash: hash, Err: ErrNoContractAddress}
	}

	c.log.WithField("address", receipt.ContractAddress.Hex()).Info("Contract deployed at address")
	return c.Attach(*receipt.ContractAddress, iface), receipt, nil
}

// Attach returns a handle for an already deployed contract.
func (c *Client) Attach(address common.Address, iface *ContractInterface) *Contract {
	return &Contract{address: address, iface: iface, client: c}
}

// Receipt returns the receipt of hash, or nil while it is not mined.
func (c *Client) Receipt(ctx context.Context, hash common.Hash) (*Receipt, error) {
	receipt, err := c.node.receipt(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	if receipt == nil || receipt.BlockNumber == nil {
		return nil, nil
	}
	c.recordOutcome(receipt)
	return receipt, nil
}

// WaitForReceipt polls every pollInterval until hash is mined or timeout
// elapses. Zero values use the configured interval and timeout. Cancelling
// ctx stops polling; the transaction itself stays pending on-chain.
func (c *Client) WaitForReceipt(ctx context.Context, hash common.Hash, pollInterval, timeout time.Duration) (*Receipt, error) {
	if pollInterval <= 0 {
		pollInterval = c.config.PollInterval()
	}
	if timeout <= 0 {
		timeout = c.config.TransactionTimeout()
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	log := c.log.WithField("hash", hash.Hex())
	for {
		receipt, err := c.node.receipt(waitCtx, hash)
		if err != nil && waitCtx.Err() == nil {
			log.WithError(err).Error("Failed to get receipt")
			return nil, fmt.Errorf("failed to get receipt: %w", err)
		}
		if err == nil && receipt != nil && receipt.BlockNumber != nil {
			c.recordOutcome(receipt)
			log.WithFields(logrus.Fields{
				"block":    receipt.BlockNumber.String(),
				"status":   receipt.Status,
				"gas_used": receipt.GasUsed,
			}).Info("Transaction confirmed")
			return receipt, nil
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, fmt.Errorf("stopped waiting for transaction %s: %w", hash.Hex(), ctx.Err())
			}
			c.txs.advance(hash, TxTimedOut)
			log.WithField("timeout", timeout).Warn("Transaction timeout")
			return nil, &TimeoutError{TxHash: hash, Timeout: timeout}
		case <-ticker.C:
		}
	}
}

// State returns the lifecycle state of a transaction handled by this client.
func (c *Client) State(hash common.Hash) (TxState, bool) {
	return c.txs.get(hash)
}

func (c *Client) recordOutcome(receipt *Receipt) {
	if receipt.Succeeded() {
		c.txs.set(receipt.TxHash, TxMined)
	} else {
		c.txs.set(receipt.TxHash, TxReverted)
	}
}

func (c *Client) call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	return c.node.ethCall(ctx, newCallArgs(c.Address(), &to, nil, data), BlockLatest)
}

// rejectedByNode reports whether the node answered with an error envelope,
// meaning the transaction was not accepted.
func rejectedByNode(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Message != ""
}
