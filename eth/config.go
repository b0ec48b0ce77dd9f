package eth

import (
	"fmt"
	"math/big"
	"strings"
	"time"
)

// FeeMode selects how the Resolver prices transactions.
type FeeMode string

const (
	// FeeModeAuto uses EIP-1559 fees when the latest block reports a base fee.
	FeeModeAuto FeeMode = "auto"
	// FeeModeLegacy always uses eth_gasPrice.
	FeeModeLegacy FeeMode = "legacy"
	// FeeModeDynamic always uses EIP-1559 fees.
	FeeModeDynamic FeeMode = "dynamic"
)

// ParseFeeMode parses a fee mode name; the empty string means auto.
func ParseFeeMode(s string) (FeeMode, error) {
	switch FeeMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", FeeModeAuto:
		return FeeModeAuto, nil
	case FeeModeLegacy:
		return FeeModeLegacy, nil
	case FeeModeDynamic, "eip1559":
		return FeeModeDynamic, nil
	default:
		return "", fmt.Errorf("unknown fee mode %q", s)
	}
}

// Config supplies the client settings. It is implemented by pkg/config and by StaticConfig.
type Config interface {
	// ChainID is the expected chain; 0 adopts whatever the node reports.
	ChainID() int64
	// TransactionTimeout bounds receipt polling in Deploy and SendAndWait.
	TransactionTimeout() time.Duration
	// PollInterval is the delay between receipt queries.
	PollInterval() time.Duration
	// GasLimitMultiplier scales gas estimates; 1.0 uses the exact estimate.
	GasLimitMultiplier() float64
	// MaxFeePerGas caps the resolved gas price or fee cap; nil disables the check.
	MaxFeePerGas() *big.Int
	FeeMode() FeeMode
}

// Defaults used by StaticConfig for zero values.
const (
	DefaultTransactionTimeout = 300 * time.Second
	DefaultPollInterval       = 3 * time.Second
)

// StaticConfig is a Config built from literal values.
type StaticConfig struct {
	Chain         int64
	Timeout       time.Duration
	Poll          time.Duration
	GasMultiplier float64
	FeeCeiling    *big.Int
	Fees          FeeMode
}

var _ Config = StaticConfig{}

func (c StaticConfig) ChainID() int64 { return c.Chain }

func (c StaticConfig) TransactionTimeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTransactionTimeout
	}
	return c.Timeout
}

func (c StaticConfig) PollInterval() time.Duration {
	if c.Poll <= 0 {
		return DefaultPollInterval
	}
	return c.Poll
}

func (c StaticConfig) GasLimitMultiplier() float64 {
	if c.GasMultiplier < 1 {
		return 1
	}
	return c.GasMultiplier
}

func (c StaticConfig) MaxFeePerGas() *big.Int { return c.FeeCeiling }

func (c StaticConfig) FeeMode() FeeMode {
	if c.Fees == "" {
		return FeeModeAuto
	}
	return c.Fees
}
