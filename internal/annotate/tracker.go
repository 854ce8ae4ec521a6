// Package annotate keeps the latest section annotations of every open
// document, recomputing them whenever a document or the settings change.
package annotate

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/document"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/metrics"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/render"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/section"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/settings"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/stats"
)

// SettingsSource supplies the configuration a scan reads at the moment it
// runs.
type SettingsSource interface {
	Current() settings.Settings
}

type Option func(*Tracker)

// WithStats records every scan into s.
func WithStats(s *stats.ScanStats) Option {
	return func(t *Tracker) { t.stats = s }
}

// WithRenderer sets the renderer used by Hints.
func WithRenderer(r *render.Renderer) Option {
	return func(t *Tracker) { t.renderer = r }
}

// WithSourceLabel names the host in the scans_total metric.
func WithSourceLabel(label string) Option {
	return func(t *Tracker) { t.label = label }
}

type entry struct {
	scanMu sync.Mutex // one scan per document at a time

	unsubscribe func()
	snap        *document.Snapshot
	annotations []section.Annotation
}

// Tracker follows attached sessions. Each notification from a session
// triggers a synchronous rescan; the result replaces the previous one.
type Tracker struct {
	source   SettingsSource
	log      *slog.Logger
	stats    *stats.ScanStats
	renderer *render.Renderer
	label    string

	mu        sync.RWMutex
	entries   map[string]*entry
	listeners []func(uri string)
}

func NewTracker(source SettingsSource, log *slog.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		source:   source,
		log:      log,
		renderer: render.Default(),
		label:    "tracker",
		entries:  make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// OnUpdate registers fn to run after each recompute.
func (t *Tracker) OnUpdate(fn func(uri string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, fn)
}

// Attach starts following s and computes its annotations immediately.
// Attaching a URI that is already followed replaces the old subscription.
func (t *Tracker) Attach(s *document.Session) {
	t.attach(s, true)
}

// Follow attaches s unless its URI is already followed, and reports
// whether it attached.
func (t *Tracker) Follow(s *document.Session) bool {
	return t.attach(s, false)
}

func (t *Tracker) attach(s *document.Session, replace bool) bool {
	uri := s.URI()

	t.mu.Lock()
	old, existed := t.entries[uri]
	if existed && !replace {
		t.mu.Unlock()
		return false
	}
	e := &entry{}
	t.entries[uri] = e
	t.mu.Unlock()

	if existed && old.unsubscribe != nil {
		old.unsubscribe()
	}
	if !existed {
		metrics.OpenDocuments.Inc()
	}

	unsubscribe := s.Subscribe(func(snap *document.Snapshot) {
		t.recompute(uri, snap)
	})
	t.mu.Lock()
	e.unsubscribe = unsubscribe
	t.mu.Unlock()

	t.recompute(uri, s.Snapshot())
	return true
}

// Detach stops following uri and forgets its annotations.
func (t *Tracker) Detach(uri string) {
	t.mu.Lock()
	e, ok := t.entries[uri]
	delete(t.entries, uri)
	t.mu.Unlock()

	if !ok {
		return
	}
	if e.unsubscribe != nil {
		e.unsubscribe()
	}
	metrics.OpenDocuments.Dec()
	t.log.Debug("document detached", "uri", uri)
}

// URIs lists the followed documents in order.
func (t *Tracker) URIs() []string {
	t.mu.RLock()
	out := make([]string, 0, len(t.entries))
	for uri := range t.entries {
		out = append(out, uri)
	}
	t.mu.RUnlock()

	sort.Strings(out)
	return out
}

// Annotations returns the latest scan result for uri.
func (t *Tracker) Annotations(uri string) ([]section.Annotation, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.entries[uri]
	if !ok || e.snap == nil {
		return nil, false
	}
	out := make([]section.Annotation, len(e.annotations))
	copy(out, e.annotations)
	return out, true
}

// Hints renders the latest annotations for uri with the metric toggles in
// effect now.
func (t *Tracker) Hints(uri string) ([]Hint, bool) {
	t.mu.RLock()
	e, ok := t.entries[uri]
	var (
		snap        *document.Snapshot
		annotations []section.Annotation
	)
	if ok {
		snap, annotations = e.snap, e.annotations
	}
	t.mu.RUnlock()

	if snap == nil {
		return nil, false
	}
	return Decorate(snap, annotations, t.renderer, t.source.Current().Metrics()), true
}

// recompute scans snap and stores the result unless a newer snapshot of
// the same session has already been stored.
func (t *Tracker) recompute(uri string, snap *document.Snapshot) {
	t.mu.RLock()
	e, ok := t.entries[uri]
	t.mu.RUnlock()
	if !ok {
		return
	}

	e.scanMu.Lock()
	if stored := e.snap; stored != nil && snap.Generation() < stored.Generation() {
		e.scanMu.Unlock()
		t.log.Debug("stale snapshot skipped",
			"uri", uri,
			"generation", snap.Generation(),
			"current", stored.Generation(),
		)
		return
	}

	ranks := t.source.Current().Ranks()
	start := time.Now()
	annotations := section.Scan(snap, ranks)
	elapsed := time.Since(start)

	t.mu.Lock()
	current := t.entries[uri] == e
	if current {
		e.snap = snap
		e.annotations = annotations
	}
	listeners := make([]func(string), len(t.listeners))
	copy(listeners, t.listeners)
	t.mu.Unlock()
	e.scanMu.Unlock()

	words := 0
	for _, a := range annotations {
		words += a.Words
	}
	metrics.RecordScan(t.label, elapsed, len(annotations))
	if t.stats != nil {
		t.stats.Record(elapsed, len(annotations), words)
	}

	if !current {
		return
	}
	t.log.Debug("document scanned",
		"uri", uri,
		"version", snap.Version(),
		"sections", len(annotations),
		"duration_us", elapsed.Microseconds(),
	)
	for _, fn := range listeners {
		fn(uri)
	}
}
