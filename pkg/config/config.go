package config

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/nando-os/ghost-rpc/eth"
)

const (
	envRpcURL      = "ETH_RPC_URL"
	envChainID     = "ETH_CHAIN_ID"
	envNetwork     = "ETH_NETWORK"
	envNetworkFile = "ETH_NETWORKS_FILE"

	// -- accounts and private keys
	envAccountsList         = "ETH_ACCOUNTS"
	envAccountPrivateKeyFmt = "ETH_ACCOUNT_%s_PRIVATE_KEY"
	envOperatorPrivateKey   = "OPERATOR_PRIVATE_KEY"

	// -- gas configuration
	// Gas estimates are used as-is unless a multiplier is configured, e.g.
	//   ETH_GAS_LIMIT_MULTIPLIER=1.2
	envGasLimitMultiplier = "ETH_GAS_LIMIT_MULTIPLIER"
	envFeeMode            = "ETH_FEE_MODE"

	// -- fee configuration
	// Optional max fee per gas in wei; no ceiling when unset
	envMaxFeePerGas = "ETH_MAX_FEE_PER_GAS"

	// -- transaction monitoring
	envTransactionTimeout = "ETH_TRANSACTION_TIMEOUT_SECONDS"
	envTransactionTicker  = "ETH_TRANSACTION_TICKER_SECONDS"

	// --- Units and defaults ---
	GWEI = 1000000000 // 1 gwei in wei

	DEFAULT_GAS_LIMIT_MULTIPLIER  = 1.0
	DEFAULT_TRANSACTION_TIMEOUT_S = 300 // 5 minutes
	DEFAULT_TRANSACTION_TICKER_S  = 3   // 3 seconds
)

// Account is a labelled signing key loaded from the environment.
type Account struct {
	Label      string
	Address    common.Address
	ChainID    int64
	PrivateKey *ecdsa.PrivateKey
}

type config struct {
	network  Network
	accounts []*Account

	gasMultiplier float64
	feeMode       eth.FeeMode
	maxFeePerGas  *big.Int
	timeout       int
	ticker        int
}

// Ensure *config implements eth.Config
var _ eth.Config = (*config)(nil)

// NewConfiguration loads the configuration from environment variables.
//
// The network comes from ETH_NETWORK (default testnet), optionally redefined
// by the TOML file in ETH_NETWORKS_FILE; ETH_RPC_URL and ETH_CHAIN_ID override
// the preset. Keys come from ETH_ACCOUNTS / ETH_ACCOUNT_<LABEL>_PRIVATE_KEY or,
// when ETH_ACCOUNTS is unset, from OPERATOR_PRIVATE_KEY.
func NewConfiguration() (*config, error) {
	networks := DefaultNetworks()
	if path := os.Getenv(envNetworkFile); path != "" {
		loaded, err := LoadNetworks(path)
		if err != nil {
			return nil, err
		}
		networks = networks.Merge(loaded)
	}

	name := os.Getenv(envNetwork)
	if name == "" {
		name = DefaultNetwork
	}
	network, ok := networks[name]
	if !ok {
		network = Network{Name: name}
	}

	if url := os.Getenv(envRpcURL); url != "" {
		network.RPCURL = url
	}
	if chainIDStr := os.Getenv(envChainID); chainIDStr != "" {
		chainID, err := strconv.ParseInt(chainIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", envChainID, err)
		}
		network.ChainID = chainID
	}
	if network.RPCURL == "" {
		return nil, fmt.Errorf("no RPC URL for network %q: set %s", name, envRpcURL)
	}

	accounts, err := loadAccountsFromEnv(network.ChainID)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("no accounts found in %s or %s", envAccountsList, envOperatorPrivateKey)
	}

	feeMode, err := eth.ParseFeeMode(os.Getenv(envFeeMode))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", envFeeMode, err)
	}

	return &config{
		network:       network,
		accounts:      accounts,
		gasMultiplier: parseMultiplier(os.Getenv(envGasLimitMultiplier)),
		feeMode:       feeMode,
		maxFeePerGas:  parseWei(os.Getenv(envMaxFeePerGas)),
		timeout:       parsePositive(os.Getenv(envTransactionTimeout), DEFAULT_TRANSACTION_TIMEOUT_S),
		ticker:        parsePositive(os.Getenv(envTransactionTicker), DEFAULT_TRANSACTION_TICKER_S),
	}, nil
}

func (c *config) Network() Network {
	return c.network
}

func (c *config) ChainID() int64 {
	return c.network.ChainID
}

func (c *config) Accounts() []*Account {
	return c.accounts
}

func (c *config) RPCURL() string {
	return c.network.RPCURL
}

// GasLimitMultiplier returns the gas estimate multiplier (default 1.0, exact estimate)
func (c *config) GasLimitMultiplier() float64 {
	return c.gasMultiplier
}

func (c *config) FeeMode() eth.FeeMode {
	return c.feeMode
}

// MaxFeePerGas returns the fee ceiling in wei, or nil when none is configured.
func (c *config) MaxFeePerGas() *big.Int {
	if c.maxFeePerGas == nil {
		return nil
	}
	return new(big.Int).Set(c.maxFeePerGas)
}

// TransactionTimeoutSeconds returns the transaction timeout in seconds (default: 300)
func (c *config) TransactionTimeoutSeconds() int {
	return c.timeout
}

// TransactionTickerSeconds returns the receipt polling interval in seconds (default: 3)
func (c *config) TransactionTickerSeconds() int {
	return c.ticker
}

func (c *config) TransactionTimeout() time.Duration {
	return time.Duration(c.timeout) * time.Second
}

func (c *config) PollInterval() time.Duration {
	return time.Duration(c.ticker) * time.Second
}

func parseMultiplier(s string) float64 {
	if s == "" {
		return DEFAULT_GAS_LIMIT_MULTIPLIER
	}
	m, err := strconv.ParseFloat(s, 64)
	// Ensure reasonable bounds (1.0 to 3.0)
	if err != nil || m < 1 || m > 3 {
		return DEFAULT_GAS_LIMIT_MULTIPLIER
	}
	return m
}

func parseWei(s string) *big.Int {
	if s == "" {
		return nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() <= 0 {
		return nil
	}
	return v
}

func parsePositive(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// ParsePrivateKey parses a hex private key with an optional 0x prefix.
func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	return crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
}

func loadAccountsFromEnv(chainID int64) ([]*Account, error) {
	accountLabels := os.Getenv(envAccountsList)
	if accountLabels == "" {
		// single operator key
		privHex := os.Getenv(envOperatorPrivateKey)
		if privHex == "" {
			return nil, fmt.Errorf("neither %s nor %s is set", envAccountsList, envOperatorPrivateKey)
		}
		account, err := newAccount("operator", privHex, chainID)
		if err != nil {
			return nil, err
		}
		return []*Account{account}, nil
	}

	var accounts []*Account
	for _, label := range strings.Split(accountLabels, ",") {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		keyEnv := fmt.Sprintf(envAccountPrivateKeyFmt, strings.ToUpper(label))
		privHex := os.Getenv(keyEnv)
		if privHex == "" {
			return nil, fmt.Errorf("no private key found for account[%s] in %s", label, keyEnv)
		}
		account, err := newAccount(label, privHex, chainID)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func newAccount(label, privHex string, chainID int64) (*Account, error) {
	privKey, err := ParsePrivateKey(privHex)
	if err != nil {
		return nil, fmt.Errorf("invalid private key for %s: %w", label, err)
	}
	return &Account{
		Label:      label,
		Address:    crypto.PubkeyToAddress(privKey.PublicKey),
		ChainID:    chainID,
		PrivateKey: privKey,
	}, nil
}
