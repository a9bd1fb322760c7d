package service

import (
	"context"
	"sync"
	"time"

	"portfolio_dashboard/internal/app/port"
	"portfolio_dashboard/internal/app/store"
	"portfolio_dashboard/internal/domain/entity"
	"portfolio_dashboard/internal/pkg/metrics"

	"golang.org/x/sync/errgroup"
)

// Defaults used when Options leave a field unset.
const (
	DefaultRefreshInterval  = 30 * time.Second
	DefaultTransactionLimit = 10
)

// Options configures the refresh orchestrator.
type Options struct {
	RefreshInterval  time.Duration
	TransactionLimit int
}

// PortfolioServiceImpl implements port.PortfolioService.
// Each chain runs its own Idle -> Fetching -> Settled cycle against the shared store;
// the store's generation fencing decides which results get committed.
type PortfolioServiceImpl struct {
	client   port.ChainDataClient
	store    *store.Store
	logger   port.Logger
	interval time.Duration
	txLimit  int

	cycles sync.WaitGroup

	mu      sync.Mutex
	stop    chan struct{}
	stopped chan struct{}
}

// NewPortfolioService creates a new instance of PortfolioServiceImpl.
func NewPortfolioService(client port.ChainDataClient, st *store.Store, l port.Logger, opts Options) *PortfolioServiceImpl {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	if opts.TransactionLimit <= 0 {
		opts.TransactionLimit = DefaultTransactionLimit
	}
	return &PortfolioServiceImpl{
		client:   client,
		store:    st,
		logger:   l,
		interval: opts.RefreshInterval,
		txLimit:  opts.TransactionLimit,
	}
}

var _ port.PortfolioService = (*PortfolioServiceImpl)(nil)

// SetAddress implements port.PortfolioService.
// Disconnecting clears the chain synchronously without a network call. Connecting a new
// or different address starts a refresh cycle for that chain; the same address is a no-op.
func (s *PortfolioServiceImpl) SetAddress(ctx context.Context, chain entity.Chain, address string) {
	if !chain.Valid() {
		s.logger.Warn("Ignoring address for untracked chain", "chain", chain)
		return
	}
	if !s.store.SwapAddress(chain, address) {
		return
	}

	if address == "" {
		s.logger.Info("Wallet disconnected", "chain", chain)
		return
	}

	s.logger.Info("Wallet connected", "chain", chain, "address", address)
	s.trigger(ctx, chain, address)
}

// Refresh implements port.PortfolioService. Cycles already in flight are not awaited.
func (s *PortfolioServiceImpl) Refresh(ctx context.Context) {
	st := s.store.State()
	for _, chain := range entity.Chains {
		if address := st.Address(chain); address != "" {
			s.trigger(ctx, chain, address)
		}
	}
}

// Reset implements port.PortfolioService.
func (s *PortfolioServiceImpl) Reset() {
	s.store.ClearAll()
	s.logger.Info("Portfolio session cleared")
}

// Start starts the refresh timer. Calling Start on a running service does nothing.
func (s *PortfolioServiceImpl) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}
	s.stop = make(chan struct{})
	s.stopped = make(chan struct{})

	go s.loop(ctx, s.stop, s.stopped)
	s.logger.Info("Refresh timer started", "interval", s.interval.String())
}

// Stop tears the refresh timer down and waits for running cycles to settle.
func (s *PortfolioServiceImpl) Stop() {
	s.mu.Lock()
	stop, stopped := s.stop, s.stopped
	s.stop, s.stopped = nil, nil
	s.mu.Unlock()

	if stop != nil {
		close(stop)
		<-stopped
		s.logger.Info("Refresh timer stopped")
	}
	s.cycles.Wait()
}

// Wait blocks until every triggered cycle has settled.
func (s *PortfolioServiceImpl) Wait() {
	s.cycles.Wait()
}

func (s *PortfolioServiceImpl) loop(ctx context.Context, stop <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Refresh(ctx)
		case <-stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// trigger runs one cycle in the background. The cycle outlives the caller's context,
// so a finished HTTP request does not abort the fetch it started.
func (s *PortfolioServiceImpl) trigger(ctx context.Context, chain entity.Chain, address string) {
	s.cycles.Add(1)
	go func() {
		defer s.cycles.Done()
		s.runCycle(context.WithoutCancel(ctx), chain, address)
	}()
}

func (s *PortfolioServiceImpl) runCycle(ctx context.Context, chain entity.Chain, address string) {
	gen := s.store.BeginCycle(chain, address)
	if gen == 0 {
		s.logger.Debug("Skipping refresh cycle, address changed", "chain", chain, "address", address)
		return
	}

	var (
		snapshot *entity.ChainSnapshot
		txs      []entity.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap, err := s.client.FetchBalances(gctx, chain, address)
		if err != nil {
			return err
		}
		if snap == nil {
			return &entity.FetchError{Chain: chain, Operation: entity.OpBalances, Message: chain.Definition().BalancesFallbackMessage()}
		}
		snapshot = snap
		return nil
	})
	g.Go(func() error {
		list, err := s.client.FetchTransactions(gctx, chain, address, s.txLimit)
		if err != nil {
			s.logger.Debug("Transactions unavailable", "chain", chain, "address", address, "error", err)
			list = []entity.Transaction{}
		}
		txs = list
		return nil
	})
	balanceErr := g.Wait()

	res := store.CycleResult{
		Chain:        chain,
		Address:      address,
		Generation:   gen,
		Snapshot:     snapshot,
		Transactions: txs,
		Err:          balanceErr,
	}

	outcome := metrics.OutcomeSuccess
	switch {
	case !s.store.CompleteCycle(res):
		outcome = metrics.OutcomeStale
		s.logger.Debug("Discarded superseded refresh result", "chain", chain, "generation", gen)
	case balanceErr != nil:
		outcome = metrics.OutcomeError
		s.logger.Warn("Failed to refresh balances", "chain", chain, "address", address, "error", balanceErr)
	default:
		s.logger.Debug("Refresh cycle committed", "chain", chain, "generation", gen,
			"tokens", len(snapshot.Tokens), "transactions", len(txs))
	}
	metrics.RefreshCycles.WithLabelValues(chain.String(), outcome).Inc()
}
