package store

import (
	"slices"
	"sync"

	"portfolio_dashboard/internal/domain/entity"
)

// ChainState is everything the store holds for one chain.
type ChainState struct {
	Address      string
	Snapshot     *entity.ChainSnapshot
	Transactions []entity.Transaction
	Status       entity.ChainStatus
}

// State is an immutable copy of the store taken at read time.
// Version increases with every mutation and identifies the copy for memoization.
type State struct {
	Version uint64
	Chains  map[entity.Chain]ChainState
	Loading bool
	Error   string
}

// Chain returns the state of one chain; unknown chains read as empty.
func (s State) Chain(chain entity.Chain) ChainState {
	return s.Chains[chain]
}

// Address returns the connected address of chain, or "".
func (s State) Address(chain entity.Chain) string {
	return s.Chains[chain].Address
}

// Snapshot returns the current snapshot of chain, or nil.
func (s State) Snapshot(chain entity.Chain) *entity.ChainSnapshot {
	return s.Chains[chain].Snapshot
}

// Transactions returns the transaction list of chain.
func (s State) Transactions(chain entity.Chain) []entity.Transaction {
	return s.Chains[chain].Transactions
}

// CycleResult is the outcome of one refresh cycle for one chain.
type CycleResult struct {
	Chain        entity.Chain
	Address      string
	Generation   uint64
	Snapshot     *entity.ChainSnapshot
	Transactions []entity.Transaction
	Err          error
}

// Listener is notified with a fresh State after every mutation.
// Listeners must not mutate the store synchronously.
type Listener func(State)

// subscriber delivers states to one listener in version order, skipping states
// older than the last one delivered.
type subscriber struct {
	mu   sync.Mutex
	last uint64
	fn   Listener
}

func (sub *subscriber) deliver(st State) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if st.Version <= sub.last {
		return
	}
	sub.last = st.Version
	sub.fn(st)
}

type chainRecord struct {
	address      string
	snapshot     *entity.ChainSnapshot
	transactions []entity.Transaction
	status       entity.ChainStatus
	issued       uint64 // last generation handed out by BeginCycle
	committed    uint64 // last generation whose result was written
}

// Store is the session-lifetime portfolio state container.
// Every mutation replaces a whole field under the lock, so readers never observe a partial update.
type Store struct {
	mu        sync.RWMutex
	chains    map[entity.Chain]*chainRecord
	loading   bool
	errMsg    string
	version   uint64
	listeners []*subscriber
}

// New creates a store with all-empty defaults.
func New() *Store {
	s := &Store{chains: make(map[entity.Chain]*chainRecord, len(entity.Chains))}
	for _, c := range entity.Chains {
		s.chains[c] = &chainRecord{}
	}
	return s
}

// Subscribe registers l to be called after every mutation. Listeners run outside the lock
// and never observe a version older than one they have already seen; a state superseded
// while l was busy may be skipped.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, &subscriber{last: s.version, fn: l})
	s.mu.Unlock()
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

// Version returns the current state version.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Store) stateLocked() State {
	st := State{
		Version: s.version,
		Chains:  make(map[entity.Chain]ChainState, len(s.chains)),
		Loading: s.loading,
		Error:   s.errMsg,
	}
	for c, r := range s.chains {
		cs := ChainState{Address: r.address, Status: r.status}
		if r.snapshot != nil {
			snap := *r.snapshot
			snap.Tokens = slices.Clone(r.snapshot.Tokens)
			cs.Snapshot = &snap
		}
		cs.Transactions = slices.Clone(r.transactions)
		st.Chains[c] = cs
	}
	return st
}

// mutate runs fn under the write lock, bumps the version when fn reports a change,
// and notifies listeners afterwards.
func (s *Store) mutate(fn func() bool) {
	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return
	}
	s.version++
	st := s.stateLocked()
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l.deliver(st)
	}
}

func (s *Store) record(chain entity.Chain) *chainRecord {
	r, ok := s.chains[chain]
	if !ok {
		r = &chainRecord{}
		s.chains[chain] = r
	}
	return r
}

// SetAddress replaces the connected address of chain.
// An empty address disconnects the chain: its snapshot, transactions and status are cleared
// in the same mutation, so a snapshot never outlives its address.
func (s *Store) SetAddress(chain entity.Chain, address string) {
	s.mutate(func() bool {
		s.setAddressLocked(s.record(chain), address)
		return true
	})
}

func (s *Store) setAddressLocked(r *chainRecord, address string) {
	r.address = address
	if address == "" {
		r.snapshot = nil
		r.transactions = nil
		r.committed = r.issued
		r.status = entity.ChainStatus{Generation: r.committed}
		s.recomputeLoadingLocked()
	}
}

// SwapAddress sets the address of chain like SetAddress, but only when it differs from the
// current one. It reports whether the address changed.
func (s *Store) SwapAddress(chain entity.Chain, address string) bool {
	changed := false
	s.mutate(func() bool {
		r := s.record(chain)
		if r.address == address {
			return false
		}
		s.setAddressLocked(r, address)
		changed = true
		return true
	})
	return changed
}

// SetSnapshot replaces the snapshot of chain.
func (s *Store) SetSnapshot(chain entity.Chain, snapshot *entity.ChainSnapshot) {
	s.mutate(func() bool {
		s.record(chain).snapshot = snapshot
		return true
	})
}

// SetTransactions replaces the transaction list of chain.
func (s *Store) SetTransactions(chain entity.Chain, txs []entity.Transaction) {
	s.mutate(func() bool {
		s.record(chain).transactions = txs
		return true
	})
}

// SetChainStatus replaces the status record of chain and refreshes the combined loading flag.
func (s *Store) SetChainStatus(chain entity.Chain, status entity.ChainStatus) {
	s.mutate(func() bool {
		s.record(chain).status = status
		s.recomputeLoadingLocked()
		return true
	})
}

// SetLoading replaces the combined loading flag.
func (s *Store) SetLoading(loading bool) {
	s.mutate(func() bool {
		s.loading = loading
		return true
	})
}

// SetError replaces the combined error message. "" clears it.
func (s *Store) SetError(msg string) {
	s.mutate(func() bool {
		s.errMsg = msg
		return true
	})
}

// ClearAll resets every field. Generation counters survive so results of cycles
// started before the reset are discarded.
func (s *Store) ClearAll() {
	s.mutate(func() bool {
		for _, r := range s.chains {
			r.address = ""
			r.snapshot = nil
			r.transactions = nil
			r.committed = r.issued
			r.status = entity.ChainStatus{Generation: r.committed}
		}
		s.loading = false
		s.errMsg = ""
		return true
	})
}

// BeginCycle issues the next generation for chain and marks the chain loading.
// The chain and combined errors are cleared. It returns the generation to pass back
// in CycleResult, or 0 when the chain has no address matching address.
func (s *Store) BeginCycle(chain entity.Chain, address string) uint64 {
	var gen uint64
	s.mutate(func() bool {
		r := s.record(chain)
		if address == "" || r.address != address {
			return false
		}
		r.issued++
		gen = r.issued
		r.status = entity.ChainStatus{Loading: true, Generation: gen}
		s.loading = true
		s.errMsg = ""
		return true
	})
	return gen
}

// CompleteCycle commits the result of a cycle. It returns false, leaving the store untouched,
// when the result belongs to a superseded generation or to an address that is no longer connected.
//
// On success the snapshot and transactions are written before loading is cleared.
// On failure the error is recorded for the chain and as the combined error, and the chain's
// snapshot and transactions are emptied.
func (s *Store) CompleteCycle(res CycleResult) bool {
	committed := false
	s.mutate(func() bool {
		r := s.record(res.Chain)
		if res.Generation == 0 || res.Generation <= r.committed {
			return false
		}
		if r.address == "" || r.address != res.Address {
			return false
		}
		r.committed = res.Generation

		status := entity.ChainStatus{Generation: res.Generation}
		if res.Err != nil {
			r.snapshot = nil
			r.transactions = []entity.Transaction{}
			status.Error = res.Err.Error()
			s.errMsg = status.Error
		} else {
			r.snapshot = res.Snapshot
			r.transactions = res.Transactions
			if r.transactions == nil {
				r.transactions = []entity.Transaction{}
			}
		}
		// A newer cycle still in flight keeps the chain loading.
		status.Loading = r.issued > res.Generation
		r.status = status
		s.recomputeLoadingLocked()
		committed = true
		return true
	})
	return committed
}

func (s *Store) recomputeLoadingLocked() {
	loading := false
	for _, r := range s.chains {
		if r.status.Loading {
			loading = true
			break
		}
	}
	s.loading = loading
}
