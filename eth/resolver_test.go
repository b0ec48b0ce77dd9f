package eth

import (
	"context"
	"errors"
	"math/big"
	"sort"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/nando-os/ghost-rpc/internal/mocks"
)

var testAccount = common.HexToAddress(testAddrHex)

func newTestResolver(t *testing.T, cfg StaticConfig) (*Resolver, *mocks.Transport, *logtest.Hook) {
	t.Helper()
	m := mocks.NewTransport(t)
	logger, hook := logtest.NewNullLogger()
	return NewResolver(m, big.NewInt(296), cfg, logger), m, hook
}

func expectCall(m *mocks.Transport, method string, result string) *mock.Call {
	return m.On("Call", mock.Anything, method, mock.Anything).Return(result, nil)
}

func transferTx() UnsignedTransaction {
	to := testRecipient
	return UnsignedTransaction{To: &to, Value: big.NewInt(1)}
}

func TestResolver_Resolve_Dynamic(t *testing.T) {
	r, m, hook := newTestResolver(t, StaticConfig{})
	expectCall(m, "eth_estimateGas", `"0x5208"`).Once()
	expectCall(m, "eth_getBlockByNumber", `{"number":"0x10","baseFeePerGas":"0x64"}`).Once()
	expectCall(m, "eth_maxPriorityFeePerGas", `"0xa"`).Once()
	m.On("Call", mock.Anything, "eth_getTransactionCount", []any{testAccount, BlockLatest}).Return(`"0x5"`, nil).Once()

	tx, err := r.Resolve(context.Background(), transferTx(), testAccount)
	require.NoError(t, err)

	assert.Equal(t, testAccount, tx.From)
	assert.Equal(t, uint64(21000), *tx.GasLimit)
	assert.Equal(t, uint64(5), *tx.Nonce)
	assert.Equal(t, int64(296), tx.ChainID.Int64())
	assert.Nil(t, tx.GasPrice)
	assert.Equal(t, int64(10), tx.MaxPriorityFeePerGas.Int64())
	// 2 * base fee + tip
	assert.Equal(t, int64(210), tx.MaxFeePerGas.Int64())

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "Reserved nonce", hook.LastEntry().Message)
	assert.Equal(t, uint64(5), hook.LastEntry().Data["nonce"])
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
}

func TestResolver_Resolve_AutoFallsBackToLegacy(t *testing.T) {
	r, m, _ := newTestResolver(t, StaticConfig{})
	expectCall(m, "eth_estimateGas", `"0x5208"`).Once()
	expectCall(m, "eth_getBlockByNumber", `{"number":"0x10"}`).Once()
	expectCall(m, "eth_gasPrice", `"0x3b9aca00"`).Once()
	expectCall(m, "eth_getTransactionCount", `"0x0"`).Once()

	tx, err := r.Resolve(context.Background(), transferTx(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000_000), tx.GasPrice.Int64())
	assert.Nil(t, tx.MaxFeePerGas)
	assert.Nil(t, tx.MaxPriorityFeePerGas)
}

func TestResolver_Resolve_LegacyMode(t *testing.T) {
	r, m, _ := newTestResolver(t, StaticConfig{Fees: FeeModeLegacy})
	expectCall(m, "eth_estimateGas", `"0x5208"`).Once()
	expectCall(m, "eth_gasPrice", `"0x7"`).Once()
	expectCall(m, "eth_getTransactionCount", `"0x1"`).Once()

	tx, err := r.Resolve(context.Background(), transferTx(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, int64(7), tx.GasPrice.Int64())
	m.AssertNotCalled(t, "Call", mock.Anything, "eth_getBlockByNumber", mock.Anything)
}

func TestResolver_Resolve_DynamicModeWithoutBaseFee(t *testing.T) {
	r, m, _ := newTestResolver(t, StaticConfig{Fees: FeeModeDynamic})
	expectCall(m, "eth_estimateGas", `"0x5208"`).Once()
	expectCall(m, "eth_getBlockByNumber", `{"number":"0x10"}`).Once()

	_, err := r.Resolve(context.Background(), transferTx(), testAccount)
	var re *ResolutionError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "fees", re.Step)
	m.AssertNotCalled(t, "Call", mock.Anything, "eth_getTransactionCount", mock.Anything)
}

func TestResolver_Resolve_KeepsCallerFields(t *testing.T) {
	// no expectations: nothing may be queried
	r, _, _ := newTestResolver(t, StaticConfig{})
	partial := legacyTx()
	partial.Nonce = u64(42)
	partial.GasLimit = u64(50_000)

	tx, err := r.Resolve(context.Background(), partial, testAccount)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), *tx.Nonce)
	assert.Equal(t, uint64(50_000), *tx.GasLimit)
	assert.Equal(t, partial.GasPrice, tx.GasPrice)
	assert.Equal(t, testAccount, tx.From)

	// the input is left untouched
	assert.Equal(t, common.Address{}, partial.From)
	*tx.Nonce = 1
	assert.Equal(t, uint64(42), *partial.Nonce)
}

func TestResolver_Resolve_PartialDynamicFees(t *testing.T) {
	r, m, _ := newTestResolver(t, StaticConfig{Fees: FeeModeLegacy})
	expectCall(m, "eth_getBlockByNumber", `{"baseFeePerGas":"0x64"}`).Once()
	expectCall(m, "eth_getTransactionCount", `"0x0"`).Once()

	partial := transferTx()
	partial.GasLimit = u64(21000)
	partial.MaxPriorityFeePerGas = big.NewInt(3)

	tx, err := r.Resolve(context.Background(), partial, testAccount)
	require.NoError(t, err)
	assert.Equal(t, int64(3), tx.MaxPriorityFeePerGas.Int64())
	assert.Equal(t, int64(203), tx.MaxFeePerGas.Int64())
	assert.Nil(t, tx.GasPrice)
}

func TestResolver_Resolve_GasMultiplier(t *testing.T) {
	r, m, _ := newTestResolver(t, StaticConfig{GasMultiplier: 1.5, Fees: FeeModeLegacy})
	expectCall(m, "eth_estimateGas", `"0x5208"`).Once()
	expectCall(m, "eth_gasPrice", `"0x1"`).Once()
	expectCall(m, "eth_getTransactionCount", `"0x0"`).Once()

	tx, err := r.Resolve(context.Background(), transferTx(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, uint64(31500), *tx.GasLimit)
}

func TestResolver_Resolve_FeeCeiling(t *testing.T) {
	r, m, _ := newTestResolver(t, StaticConfig{Fees: FeeModeLegacy, FeeCeiling: big.NewInt(100)})
	expectCall(m, "eth_estimateGas", `"0x5208"`).Once()
	expectCall(m, "eth_gasPrice", `"0x3b9aca00"`).Once()

	_, err := r.Resolve(context.Background(), transferTx(), testAccount)
	var re *ResolutionError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "fees", re.Step)
	assert.Contains(t, err.Error(), "exceeds maximum")
}

func TestResolver_Resolve_EstimateFailure(t *testing.T) {
	r, m, _ := newTestResolver(t, StaticConfig{})
	reverted := &TransportError{Method: "eth_estimateGas", Code: 3, Message: "execution reverted"}
	m.On("Call", mock.Anything, "eth_estimateGas", mock.Anything).Return(nil, reverted).Once()

	_, err := r.Resolve(context.Background(), transferTx(), testAccount)
	var re *ResolutionError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "gas", re.Step)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 3, te.Code)
	assert.Equal(t, "execution reverted", te.Message)
}

func TestResolver_Resolve_NonceFailure(t *testing.T) {
	r, m, _ := newTestResolver(t, StaticConfig{})
	m.On("Call", mock.Anything, "eth_getTransactionCount", mock.Anything).
		Return(nil, &TransportError{Method: "eth_getTransactionCount", Err: errors.New("connection refused")}).Once()

	partial := legacyTx()
	partial.Nonce = nil
	_, err := r.Resolve(context.Background(), partial, testAccount)
	var re *ResolutionError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "nonce", re.Step)
}

func TestResolver_ConcurrentNonces(t *testing.T) {
	r, m, _ := newTestResolver(t, StaticConfig{})
	expectCall(m, "eth_getTransactionCount", `"0x7"`)

	const workers = 25
	var (
		mu     sync.Mutex
		nonces []uint64
	)
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			partial := legacyTx()
			partial.Nonce = nil
			tx, err := r.Resolve(ctx, partial, testAccount)
			if err != nil {
				return err
			}
			mu.Lock()
			nonces = append(nonces, *tx.Nonce)
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	sort.Slice(nonces, func(i, j int) bool { return nonces[i] < nonces[j] })
	require.Len(t, nonces, workers)
	for i, n := range nonces {
		assert.Equal(t, uint64(7+i), n)
	}
}

func TestResolver_NonceFollowsNode(t *testing.T) {
	r, m, _ := newTestResolver(t, StaticConfig{})
	expectCall(m, "eth_getTransactionCount", `"0x7"`).Once()
	expectCall(m, "eth_getTransactionCount", `"0xa"`).Once()

	n, err := r.reserveNonce(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), n)

	// transactions sent elsewhere pushed the confirmed count past the local counter
	n, err = r.reserveNonce(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), n)
}

func TestResolver_Release(t *testing.T) {
	r, m, _ := newTestResolver(t, StaticConfig{})
	expectCall(m, "eth_getTransactionCount", `"0x7"`)
	ctx := context.Background()

	first, err := r.reserveNonce(ctx, testAccount)
	require.NoError(t, err)
	second, err := r.reserveNonce(ctx, testAccount)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), second)

	assert.False(t, r.Release(testAccount, first), "only the latest reservation can be released")
	assert.True(t, r.Release(testAccount, second))

	again, err := r.reserveNonce(ctx, testAccount)
	require.NoError(t, err)
	assert.Equal(t, second, again)

	assert.False(t, r.Release(common.HexToAddress("0x01"), 0))
}

func TestResolver_Reset(t *testing.T) {
	r, m, _ := newTestResolver(t, StaticConfig{})
	expectCall(m, "eth_getTransactionCount", `"0x7"`).Times(2)
	expectCall(m, "eth_getTransactionCount", `"0x3"`).Once()
	ctx := context.Background()

	_, err := r.reserveNonce(ctx, testAccount)
	require.NoError(t, err)
	n, err := r.reserveNonce(ctx, testAccount)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), n)

	r.Reset(testAccount)
	n, err = r.reserveNonce(ctx, testAccount)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)
}
