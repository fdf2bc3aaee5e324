// Package feed provides the simulated price source shared by every order
// book in the process. Quotes are resampled on a fixed interval; each refresh
// replaces the whole snapshot map so readers never need a lock.
package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"orderbook_go/internal/infra"
)

// ErrInstrumentUnknown is returned by CurrentPrice for instruments the feed
// was never configured with.
var ErrInstrumentUnknown = errors.New("instrument unknown")

// DefaultRefreshInterval matches the original one-second quote cadence.
const DefaultRefreshInterval = time.Second

// Source is the quote contract the order book consumes. The book never
// depends on the simulator directly, so tests drive it with a deterministic
// stub instead.
type Source interface {
	// CurrentPrice returns the latest quote for the named instrument.
	CurrentPrice(instrument string) (decimal.Decimal, error)

	// Subscribe registers for refresh notifications. The returned channel
	// receives a coalesced signal after every snapshot replacement; the
	// cancel func must be called when the subscriber is done.
	Subscribe() (<-chan struct{}, func())
}

// InstrumentStats configures the sampling distribution for one instrument.
type InstrumentStats struct {
	Mean  float64 `yaml:"mean"`
	Sigma float64 `yaml:"sigma"`
}

// Simulator is a continuously refreshing quote source. It samples each
// instrument independently from a normal distribution and atomically swaps in
// a brand-new snapshot map, so CurrentPrice is lock-free and readers observe
// either the previous or the next snapshot, never a partial one.
type Simulator struct {
	stats    map[string]InstrumentStats
	interval time.Duration
	snapshot atomic.Pointer[map[string]decimal.Decimal]

	mu      sync.Mutex
	subs    map[uint64]chan struct{}
	nextSub uint64

	cancel   context.CancelFunc
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewSimulator creates a simulator for the configured instruments. A zero or
// negative interval falls back to DefaultRefreshInterval.
func NewSimulator(stats map[string]InstrumentStats, interval time.Duration) *Simulator {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	s := &Simulator{
		stats:    stats,
		interval: interval,
		subs:     make(map[uint64]chan struct{}),
	}
	empty := map[string]decimal.Decimal{}
	s.snapshot.Store(&empty)
	return s
}

// Start launches the refresh loop. The first snapshot is produced
// synchronously so CurrentPrice works as soon as Start returns.
func (s *Simulator) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.refresh()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.refresh()
			}
		}
	}()

	slog.Info("price feed started",
		slog.Int("instruments", len(s.stats)),
		slog.Duration("interval", s.interval))
}

// Stop ends the refresh loop. Idempotent; in-flight readers keep seeing the
// last published snapshot.
func (s *Simulator) Stop() {
	s.stopOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		s.wg.Wait()
		slog.Info("price feed stopped")
	})
}

// refresh samples a new quote per instrument and publishes the new snapshot.
func (s *Simulator) refresh() {
	next := make(map[string]decimal.Decimal, len(s.stats))
	for name, st := range s.stats {
		quote := rand.NormFloat64()*st.Sigma + st.Mean
		next[name] = decimal.NewFromFloat(quote).Round(4)
	}
	s.snapshot.Store(&next)
	infra.GlobalMetrics.RecordFeedRefresh()
	s.notify()
}

// CurrentPrice returns the latest quote for the instrument. Lock-free: it
// only dereferences the current snapshot pointer.
func (s *Simulator) CurrentPrice(instrument string) (decimal.Decimal, error) {
	quote, ok := (*s.snapshot.Load())[instrument]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInstrumentUnknown, instrument)
	}
	return quote, nil
}

// Subscribe registers a refresh listener. Signals are coalesced: a slow
// subscriber sees at least one wakeup for any burst of refreshes.
func (s *Simulator) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Simulator) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
