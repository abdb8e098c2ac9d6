package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/dompetkeluarga/backend/internal/store"
	"github.com/rs/zerolog"
)

// Watcher ties collection change streams to the derived read side.
// Whenever any collection in a user's partition changes it recomputes
// the summary, and piggybacks a reconciler pass on the same refresh, so
// due subscription bills appear without any timer. A partition where
// some collections are still empty or unreadable is fine; derivation is
// total over whatever snapshot it gets.
type Watcher struct {
	store      store.Store
	service    *FinanceService
	reconciler *Reconciler
	log        zerolog.Logger

	// onSummary, when set, receives every recomputed summary.
	onSummary func(Summary)
}

func NewWatcher(s store.Store, svc *FinanceService, rec *Reconciler, log zerolog.Logger) *Watcher {
	return &Watcher{store: s, service: svc, reconciler: rec, log: log}
}

// OnSummary registers a sink for recomputed summaries.
func (w *Watcher) OnSummary(fn func(Summary)) *Watcher {
	w.onSummary = fn
	return w
}

// Run watches every collection of the user's partition until ctx is
// cancelled. Signals from all collections fan in to one refresh loop;
// each Watch channel delivers an initial signal, so the first summary
// and reconciler pass happen immediately.
func (w *Watcher) Run(ctx context.Context, userID string) error {
	merged := make(chan struct{}, 1)
	var wg sync.WaitGroup

	for _, c := range store.AllCollections {
		ch, err := w.store.Watch(ctx, userID, c)
		if err != nil {
			return fmt.Errorf("watch %s: %w", c, err)
		}
		wg.Add(1)
		go func(ch <-chan struct{}) {
			defer wg.Done()
			for range ch {
				select {
				case merged <- struct{}{}:
				default:
					// A refresh is already pending; it will see this
					// change too.
				}
			}
		}(ch)
	}
	go func() {
		wg.Wait()
		close(merged)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-merged:
			if !ok {
				return nil
			}
			w.refresh(ctx, userID)
		}
	}
}

// WatcherManager starts one watcher per user partition, lazily, the
// first time that user is seen. Seeding of default entities happens on
// the same first sight, before the watch loop starts.
type WatcherManager struct {
	watcher *Watcher
	service *FinanceService
	log     zerolog.Logger

	mu     sync.Mutex
	active map[string]bool
}

func NewWatcherManager(w *Watcher, svc *FinanceService, log zerolog.Logger) *WatcherManager {
	return &WatcherManager{
		watcher: w,
		service: svc,
		log:     log,
		active:  make(map[string]bool),
	}
}

// Ensure starts the user's watcher if it is not already running. The
// watcher lives until ctx is cancelled; a watcher that exits on error
// is forgotten so the next request restarts it.
func (m *WatcherManager) Ensure(ctx context.Context, userID string) {
	if userID == "" {
		return
	}
	m.mu.Lock()
	if m.active[userID] {
		m.mu.Unlock()
		return
	}
	m.active[userID] = true
	m.mu.Unlock()

	go func() {
		if err := m.service.EnsureDefaults(ctx, userID); err != nil {
			m.log.Error().Err(err).Str("user", userID).Msg("failed to seed defaults")
		}
		err := m.watcher.Run(ctx, userID)
		if err != nil && err != context.Canceled {
			m.log.Error().Err(err).Str("user", userID).Msg("watcher stopped")
		}
		m.mu.Lock()
		delete(m.active, userID)
		m.mu.Unlock()
	}()
}

func (w *Watcher) refresh(ctx context.Context, userID string) {
	if res, err := w.reconciler.Run(ctx, userID); err != nil {
		w.log.Error().Err(err).Str("user", userID).Msg("reconciler pass failed")
	} else if res.Generated > 0 {
		w.log.Info().
			Str("user", userID).
			Int("generated", res.Generated).
			Msg("reconciler generated billing transactions")
	}

	summary, err := w.service.Summary(ctx, userID)
	if err != nil {
		w.log.Error().Err(err).Str("user", userID).Msg("summary recompute failed")
		return
	}
	if w.onSummary != nil {
		w.onSummary(summary)
	}
}
