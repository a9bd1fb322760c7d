package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"portfolio_dashboard/internal/app/store"
	"portfolio_dashboard/internal/domain/entity"
	"portfolio_dashboard/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type balanceReply struct {
	snapshot *entity.ChainSnapshot
	err      error
	gate     chan struct{} // when set, the reply waits until the gate is closed
}

// fakeClient is a scripted port.ChainDataClient keyed by address.
type fakeClient struct {
	mu           sync.Mutex
	balances     map[string]balanceReply
	transactions map[string][]entity.Transaction
	txErr        map[string]error
	balanceCalls atomic.Int32
	txCalls      atomic.Int32
	lastLimit    atomic.Int32
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		balances:     map[string]balanceReply{},
		transactions: map[string][]entity.Transaction{},
		txErr:        map[string]error{},
	}
}

func (f *fakeClient) setBalance(address string, reply balanceReply) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[address] = reply
}

func (f *fakeClient) FetchBalances(ctx context.Context, chain entity.Chain, address string) (*entity.ChainSnapshot, error) {
	f.balanceCalls.Add(1)
	f.mu.Lock()
	reply, ok := f.balances[address]
	f.mu.Unlock()
	if !ok {
		return nil, &entity.FetchError{Chain: chain, Operation: entity.OpBalances, Message: chain.Definition().BalancesFallbackMessage()}
	}
	if reply.gate != nil {
		select {
		case <-reply.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return reply.snapshot, reply.err
}

func (f *fakeClient) FetchTransactions(_ context.Context, _ entity.Chain, address string, limit int) ([]entity.Transaction, error) {
	f.txCalls.Add(1)
	f.lastLimit.Store(int32(limit))
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.txErr[address]; err != nil {
		return nil, err
	}
	return f.transactions[address], nil
}

func newTestService(client *fakeClient) (*PortfolioServiceImpl, *store.Store) {
	st := store.New()
	return NewPortfolioService(client, st, logger.NewNop(), Options{}), st
}

func TestSetAddress_FetchesAndCommits(t *testing.T) {
	client := newFakeClient()
	client.setBalance("sol1", balanceReply{snapshot: &entity.ChainSnapshot{NativeBalance: 2, NativePriceUSD: 100, NativeValueUSD: 200, Tokens: []entity.TokenHolding{}}})
	client.transactions["sol1"] = []entity.Transaction{{Hash: "h1", Timestamp: 10}}

	svc, st := newTestService(client)
	svc.SetAddress(context.Background(), entity.ChainSolana, "sol1")
	svc.Wait()

	state := st.State()
	assert.Equal(t, "sol1", state.Address(entity.ChainSolana))
	require.NotNil(t, state.Snapshot(entity.ChainSolana))
	assert.Equal(t, 200.0, state.Snapshot(entity.ChainSolana).NativeValueUSD)
	assert.Len(t, state.Transactions(entity.ChainSolana), 1)
	assert.False(t, state.Loading)
	assert.Empty(t, state.Error)
	assert.Equal(t, int32(DefaultTransactionLimit), client.lastLimit.Load())
}

func TestSetAddress_SameAddressIsNoop(t *testing.T) {
	client := newFakeClient()
	client.setBalance("sol1", balanceReply{snapshot: &entity.ChainSnapshot{}})

	svc, _ := newTestService(client)
	svc.SetAddress(context.Background(), entity.ChainSolana, "sol1")
	svc.Wait()
	svc.SetAddress(context.Background(), entity.ChainSolana, "sol1")
	svc.Wait()

	assert.Equal(t, int32(1), client.balanceCalls.Load())
}

func TestSetAddress_ConcurrentSameAddressFetchesOnce(t *testing.T) {
	client := newFakeClient()
	client.setBalance("sol1", balanceReply{snapshot: &entity.ChainSnapshot{}})
	svc, _ := newTestService(client)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.SetAddress(context.Background(), entity.ChainSolana, "sol1")
		}()
	}
	wg.Wait()
	svc.Wait()

	assert.Equal(t, int32(1), client.balanceCalls.Load())
}

func TestSetAddress_UntrackedChainIgnored(t *testing.T) {
	client := newFakeClient()
	svc, st := newTestService(client)

	svc.SetAddress(context.Background(), entity.Chain("bitcoin"), "bc1")
	svc.Wait()

	assert.Zero(t, client.balanceCalls.Load())
	assert.Equal(t, uint64(0), st.Version())
}

func TestSetAddress_DisconnectClearsWithoutNetworkCall(t *testing.T) {
	client := newFakeClient()
	client.setBalance("0xeth", balanceReply{snapshot: &entity.ChainSnapshot{NativeBalance: 1, NativeValueUSD: 3000}})
	client.transactions["0xeth"] = []entity.Transaction{{Hash: "h"}}

	svc, st := newTestService(client)
	svc.SetAddress(context.Background(), entity.ChainEthereum, "0xeth")
	svc.Wait()
	callsBefore := client.balanceCalls.Load() + client.txCalls.Load()

	svc.SetAddress(context.Background(), entity.ChainEthereum, "")

	state := st.State()
	assert.Nil(t, state.Snapshot(entity.ChainEthereum))
	assert.Empty(t, state.Transactions(entity.ChainEthereum))
	assert.Empty(t, state.Address(entity.ChainEthereum))
	assert.Equal(t, callsBefore, client.balanceCalls.Load()+client.txCalls.Load())
}

func TestPartialFailure_OneChainErrors(t *testing.T) {
	client := newFakeClient()
	client.setBalance("sol1", balanceReply{snapshot: &entity.ChainSnapshot{NativeBalance: 2, NativePriceUSD: 100, NativeValueUSD: 200}})
	client.setBalance("0xeth", balanceReply{err: &entity.FetchError{Chain: entity.ChainEthereum, Message: "rate limited"}})

	svc, st := newTestService(client)
	svc.SetAddress(context.Background(), entity.ChainSolana, "sol1")
	svc.Wait()
	svc.SetAddress(context.Background(), entity.ChainEthereum, "0xeth")
	svc.Wait()

	state := st.State()
	assert.Equal(t, "rate limited", state.Error)
	assert.Nil(t, state.Snapshot(entity.ChainEthereum))
	assert.Empty(t, state.Transactions(entity.ChainEthereum))
	assert.Equal(t, "rate limited", state.Chain(entity.ChainEthereum).Status.Error)
	require.NotNil(t, state.Snapshot(entity.ChainSolana))
	assert.Equal(t, 200.0, state.Snapshot(entity.ChainSolana).NativeValueUSD)
	assert.False(t, state.Loading)
}

func TestTransactionFailureIsAbsorbed(t *testing.T) {
	client := newFakeClient()
	client.setBalance("sol1", balanceReply{snapshot: &entity.ChainSnapshot{NativeBalance: 1, NativeValueUSD: 100}})
	client.txErr["sol1"] = errors.New("Failed to fetch Solana transactions")

	svc, st := newTestService(client)
	svc.SetAddress(context.Background(), entity.ChainSolana, "sol1")
	svc.Wait()

	state := st.State()
	assert.Empty(t, state.Error)
	assert.NotNil(t, state.Transactions(entity.ChainSolana))
	assert.Empty(t, state.Transactions(entity.ChainSolana))
	require.NotNil(t, state.Snapshot(entity.ChainSolana))
	assert.Equal(t, 100.0, state.Snapshot(entity.ChainSolana).NativeValueUSD)
}

func TestNilSnapshotWithoutErrorUsesFallback(t *testing.T) {
	client := newFakeClient()
	client.setBalance("0xeth", balanceReply{})

	svc, st := newTestService(client)
	svc.SetAddress(context.Background(), entity.ChainEthereum, "0xeth")
	svc.Wait()

	assert.Equal(t, "Failed to fetch Ethereum data", st.State().Error)
}

func TestRapidAddressChange_StaleResultDiscarded(t *testing.T) {
	client := newFakeClient()
	gate := make(chan struct{})
	client.setBalance("sol-old", balanceReply{snapshot: &entity.ChainSnapshot{NativeBalance: 1, NativeValueUSD: 1}, gate: gate})
	client.setBalance("sol-new", balanceReply{snapshot: &entity.ChainSnapshot{NativeBalance: 7, NativeValueUSD: 700}})

	svc, st := newTestService(client)
	svc.SetAddress(context.Background(), entity.ChainSolana, "sol-old")

	// Let the old request start, then switch wallets before it resolves.
	require.Eventually(t, func() bool { return client.balanceCalls.Load() == 1 }, time.Second, 5*time.Millisecond)
	svc.SetAddress(context.Background(), entity.ChainSolana, "sol-new")
	require.Eventually(t, func() bool {
		snap := st.State().Snapshot(entity.ChainSolana)
		return snap != nil && snap.NativeBalance == 7
	}, time.Second, 5*time.Millisecond)

	close(gate)
	svc.Wait()

	state := st.State()
	assert.Equal(t, "sol-new", state.Address(entity.ChainSolana))
	assert.Equal(t, 7.0, state.Snapshot(entity.ChainSolana).NativeBalance)
	assert.False(t, state.Loading)
}

func TestRefresh_OnlyConnectedChains(t *testing.T) {
	client := newFakeClient()
	client.setBalance("sol1", balanceReply{snapshot: &entity.ChainSnapshot{}})

	svc, st := newTestService(client)
	svc.Refresh(context.Background())
	svc.Wait()
	assert.Zero(t, client.balanceCalls.Load())

	st.SetAddress(entity.ChainSolana, "sol1")
	svc.Refresh(context.Background())
	svc.Wait()
	assert.Equal(t, int32(1), client.balanceCalls.Load())
}

func TestReset_ClearsEverything(t *testing.T) {
	client := newFakeClient()
	client.setBalance("sol1", balanceReply{snapshot: &entity.ChainSnapshot{NativeBalance: 1, NativeValueUSD: 1}})

	svc, st := newTestService(client)
	svc.SetAddress(context.Background(), entity.ChainSolana, "sol1")
	svc.Wait()
	svc.Reset()

	state := st.State()
	assert.Empty(t, state.Address(entity.ChainSolana))
	assert.Nil(t, state.Snapshot(entity.ChainSolana))
}

func TestStartStop_TimerRefreshes(t *testing.T) {
	client := newFakeClient()
	client.setBalance("sol1", balanceReply{snapshot: &entity.ChainSnapshot{}})

	st := store.New()
	st.SetAddress(entity.ChainSolana, "sol1")
	svc := NewPortfolioService(client, st, logger.NewNop(), Options{RefreshInterval: 10 * time.Millisecond, TransactionLimit: 5})

	svc.Start(context.Background())
	svc.Start(context.Background())
	require.Eventually(t, func() bool { return client.balanceCalls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	svc.Stop()

	calls := client.balanceCalls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, calls, client.balanceCalls.Load(), "no refresh after Stop")
	assert.Equal(t, int32(5), client.lastLimit.Load())

	svc.Stop()
}

func TestStart_ContextCancelEndsTimer(t *testing.T) {
	client := newFakeClient()
	svc, _ := newTestService(client)

	ctx, cancel := context.WithCancel(context.Background())
	svc.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		svc.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
}
