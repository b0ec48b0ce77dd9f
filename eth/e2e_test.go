package eth

import (
	"context"
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/ethereum/go-ethereum/params"
	"github.com/ethereum/go-ethereum/rpc"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/nando-os/ghost-rpc/internal/contracts"
)

const simulatedChainID = 1337

// newSimulatedTransport starts an in-memory chain funding the test account and
// mines a block every few milliseconds until the test ends.
func newSimulatedTransport(t *testing.T) Transport {
	t.Helper()
	funds := new(big.Int).Mul(big.NewInt(1_000), big.NewInt(params.Ether))
	backend := simulated.NewBackend(types.GenesisAlloc{testAccount: {Balance: funds}})

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				backend.Commit()
			}
		}
	}()
	t.Cleanup(func() {
		close(done)
		<-stopped
		_ = backend.Close()
	})

	inproc, ok := backend.Client().(interface{ Client() *rpc.Client })
	require.True(t, ok, "simulated client does not expose its RPC client")
	tr, err := NewRPCTransport(inproc.Client())
	require.NoError(t, err)
	return tr
}

func newSimulatedClient(t *testing.T) *Client {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	cfg := StaticConfig{
		Chain:   simulatedChainID,
		Poll:    20 * time.Millisecond,
		Timeout: 10 * time.Second,
	}
	c, err := NewClient(context.Background(), newSimulatedTransport(t), testSigner(t), cfg, WithLogger(logger))
	require.NoError(t, err)
	return c
}

func TestE2E_Greeter(t *testing.T) {
	ctx := context.Background()
	c := newSimulatedClient(t)

	bal, err := c.Balance(ctx, c.Address())
	require.NoError(t, err)
	assert.Positive(t, bal.Sign())

	greeterABI := MustParseContractInterface(contracts.GreeterABI)
	greeter, receipt, err := c.Deploy(ctx, contracts.GreeterBytecode(), greeterABI, "initial_msg")
	require.NoError(t, err)
	assert.True(t, receipt.Succeeded())
	assert.NotEqual(t, common.Address{}, greeter.Address())

	out, err := greeter.Call(ctx, "greet")
	require.NoError(t, err)
	assert.Equal(t, []any{"initial_msg"}, out)

	receipt, err = greeter.SendAndWait(ctx, "setGreeting", "updated_msg")
	require.NoError(t, err)
	state, ok := c.State(receipt.TxHash)
	require.True(t, ok)
	assert.Equal(t, TxMined, state)

	out, err = greeter.Call(ctx, "greet")
	require.NoError(t, err)
	assert.Equal(t, []any{"updated_msg"}, out)

	nonce, err := c.Nonce(ctx, c.Address())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), nonce)
}

func TestE2E_ConcurrentTransfers(t *testing.T) {
	ctx := context.Background()
	c := newSimulatedClient(t)

	const transfers = 8
	hashes := make([]common.Hash, transfers)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < transfers; i++ {
		g.Go(func() error {
			hash, err := c.Transfer(gctx, testRecipient, big.NewInt(int64(i+1)))
			hashes[i] = hash
			return err
		})
	}
	require.NoError(t, g.Wait())

	for _, hash := range hashes {
		receipt, err := c.WaitForReceipt(ctx, hash, 0, 0)
		require.NoError(t, err)
		assert.True(t, receipt.Succeeded())
	}

	bal, err := c.Balance(ctx, testRecipient)
	require.NoError(t, err)
	// 1 + 2 + ... + 8
	assert.Equal(t, int64(36), bal.Int64())

	nonce, err := c.Nonce(ctx, c.Address())
	require.NoError(t, err)
	assert.Equal(t, uint64(transfers), nonce)
}

// TestE2E_LiveNode runs the Greeter flow against a real node, e.g. anvil or
// a Hedera JSON-RPC relay, when E2E_RPC_URL and E2E_PRIVATE_KEY are set.
func TestE2E_LiveNode(t *testing.T) {
	url, key := os.Getenv("E2E_RPC_URL"), os.Getenv("E2E_PRIVATE_KEY")
	if url == "" || key == "" {
		t.Skip("Set E2E_RPC_URL and E2E_PRIVATE_KEY to run against a live node")
	}
	ctx := context.Background()

	tr, err := Dial(ctx, url)
	require.NoError(t, err)
	defer tr.Close()
	signer, err := SignerFromHex(key)
	require.NoError(t, err)
	c, err := NewClient(ctx, tr, signer, StaticConfig{Timeout: 2 * time.Minute, Poll: time.Second})
	require.NoError(t, err)
	t.Logf("Connected to chain ID: %s as %s", c.ChainID(), c.Address().Hex())

	greeter, _, err := c.Deploy(ctx, contracts.GreeterBytecode(), MustParseContractInterface(contracts.GreeterABI), "initial_msg")
	require.NoError(t, err)
	t.Logf("Greeter deployed at: %s", greeter.Address().Hex())

	_, err = greeter.SendAndWait(ctx, "setGreeting", "updated_msg")
	require.NoError(t, err)
	out, err := greeter.Call(ctx, "greet")
	require.NoError(t, err)
	assert.Equal(t, []any{"updated_msg"}, out)
}
