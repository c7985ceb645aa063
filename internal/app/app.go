package app

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/fortetroy/fedramp-explorer/internal/domain/crosswalk"
	"github.com/fortetroy/fedramp-explorer/internal/domain/index"
	"github.com/fortetroy/fedramp-explorer/internal/ports"
)

// Snapshot pairs a corpus with the engine built from it. Immutable after
// publication; queries read whichever snapshot is current at call time.
type Snapshot struct {
	Corpus *ports.Corpus
	Engine *index.Engine
}

// App owns the published snapshot and coordinates refreshes. Queries are
// lock-free reads of an atomic pointer; at most one rebuild runs at a time,
// and refresh requests arriving mid-rebuild coalesce into a single queued run.
type App struct {
	loader  ports.Loader
	storage ports.Storage
	log     zerolog.Logger

	mirrorID string
	sources  ports.Sources

	current atomic.Pointer[Snapshot]

	mu       sync.Mutex
	building bool
	pending  bool
}

// New creates an App. Call Restore or Refresh before serving queries.
func New(loader ports.Loader, storage ports.Storage, mirrorID string, sources ports.Sources, log zerolog.Logger) *App {
	return &App{
		loader:   loader,
		storage:  storage,
		mirrorID: mirrorID,
		sources:  sources,
		log:      log,
	}
}

// Snapshot returns the currently published snapshot, or nil before the first
// successful load.
func (a *App) Snapshot() *Snapshot {
	return a.current.Load()
}

// Ready reports whether a snapshot has been published.
func (a *App) Ready() bool {
	return a.current.Load() != nil
}

// Restore loads the last persisted corpus, if any, and publishes it so a
// restarted process can answer queries before its first refresh completes.
// Returns false if no snapshot was stored.
func (a *App) Restore() (bool, error) {
	if a.storage == nil {
		return false, nil
	}
	corpus, err := a.storage.LoadCorpus(a.mirrorID)
	if err != nil {
		return false, err
	}
	if corpus == nil {
		return false, nil
	}
	a.publish(corpus)
	a.log.Info().Int("controls", len(corpus.Controls)).
		Int("documents", len(corpus.Documents)).
		Int("ksis", len(corpus.KSIControls)).
		Msg("restored corpus from snapshot store")
	return true, nil
}

// Refresh reloads the sources and publishes a new snapshot. Idempotent: if
// the source fingerprint matches the published corpus, the rebuild is
// skipped. A load failure leaves the prior snapshot published. If a rebuild
// is already in flight the request is queued to run once after it, never
// stacked.
func (a *App) Refresh() error {
	a.mu.Lock()
	if a.building {
		a.pending = true
		a.mu.Unlock()
		a.log.Debug().Msg("refresh already in flight; queued")
		return nil
	}
	a.building = true
	a.mu.Unlock()

	err := a.refreshOnce()

	for {
		a.mu.Lock()
		if !a.pending {
			a.building = false
			a.mu.Unlock()
			return err
		}
		a.pending = false
		a.mu.Unlock()
		err = a.refreshOnce()
	}
}

func (a *App) refreshOnce() error {
	if cur := a.current.Load(); cur != nil {
		fp, err := Fingerprint(a.sources)
		if err == nil && fp == cur.Corpus.Fingerprint {
			a.log.Debug().Uint64("fingerprint", fp).Msg("sources unchanged; refresh skipped")
			return nil
		}
	}

	corpus, err := a.loader.Load(a.sources)
	if err != nil {
		a.log.Error().Err(err).Msg("corpus load failed; prior snapshot retained")
		return err
	}

	a.publish(corpus)
	a.log.Info().Uint64("fingerprint", corpus.Fingerprint).
		Int("controls", len(corpus.Controls)).
		Int("documents", len(corpus.Documents)).
		Int("ksis", len(corpus.KSIControls)).
		Msg("published new snapshot")

	if a.storage != nil {
		if err := a.storage.SaveCorpus(a.mirrorID, corpus); err != nil {
			// Persistence failure does not invalidate the in-memory snapshot.
			a.log.Warn().Err(err).Msg("snapshot persist failed")
		}
	}
	return nil
}

// publish builds the engine off to the side and swaps it in atomically, so
// concurrent queries observe either the complete old snapshot or the
// complete new one.
func (a *App) publish(corpus *ports.Corpus) {
	snap := &Snapshot{Corpus: corpus, Engine: index.NewEngine(corpus)}
	a.current.Store(snap)
}

// Search runs a query against the published snapshot.
func (a *App) Search(query string, opts ports.SearchOptions) (*index.SearchResult, error) {
	snap := a.current.Load()
	if snap == nil {
		return nil, &ports.IndexNotReadyError{}
	}
	return snap.Engine.Search(query, opts), nil
}

// Crosswalk computes KSI coverage against a baseline tier.
func (a *App) Crosswalk(baseline ports.Baseline) ([]crosswalk.Result, *crosswalk.Summary, error) {
	snap := a.current.Load()
	if snap == nil {
		return nil, nil, &ports.IndexNotReadyError{}
	}
	results, summary := crosswalk.Resolve(snap.Corpus, baseline)
	return results, summary, nil
}

// Stats summarizes the published snapshot for health/stats surfaces.
type Stats struct {
	Ready       bool   `json:"ready"`
	Documents   int    `json:"documents"`
	Controls    int    `json:"controls"`
	KSIControls int    `json:"ksi_controls"`
	Tokens      int    `json:"tokens"`
	Fingerprint uint64 `json:"fingerprint"`
}

// Stats returns corpus and index counts for the published snapshot. Never an
// error: an unready engine reports Ready=false with zero counts.
func (a *App) Stats() Stats {
	snap := a.current.Load()
	if snap == nil {
		return Stats{}
	}
	return Stats{
		Ready:       true,
		Documents:   len(snap.Corpus.Documents),
		Controls:    len(snap.Corpus.Controls),
		KSIControls: len(snap.Corpus.KSIControls),
		Tokens:      len(snap.Engine.Index().Vocab),
		Fingerprint: snap.Corpus.Fingerprint,
	}
}
