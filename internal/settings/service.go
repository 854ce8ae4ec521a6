package settings

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/metrics"
)

// Service is the live configuration shared by a host's scans and renderers.
// Readers take snapshots with Current; writers persist through the Store
// before the new values become visible and subscribers are told.
type Service struct {
	store Store
	log   *slog.Logger

	writeMu sync.Mutex // serializes read-modify-write updates

	mu      sync.RWMutex
	current Settings
	subs    []func(Settings)
}

func NewService(store Store, log *slog.Logger) *Service {
	return &Service{
		store:   store,
		log:     log,
		current: Defaults(),
	}
}

// Load reads the persisted values, default-filling missing keys.
func (s *Service) Load(ctx context.Context) error {
	values, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	loaded := FromMap(values)

	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()

	s.log.Info("settings loaded", "settings", loaded.ToMap())
	return nil
}

func (s *Service) Current() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Subscribe registers fn to run after every successful change.
func (s *Service) Subscribe(fn func(Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Set changes one toggle.
func (s *Service) Set(ctx context.Context, key string, value bool) (Settings, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next, err := s.Current().With(key, value)
	if err != nil {
		return s.Current(), err
	}
	return next, s.apply(ctx, next)
}

// Toggle flips one toggle.
func (s *Service) Toggle(ctx context.Context, key string) (Settings, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cur := s.Current()
	v, err := cur.Get(key)
	if err != nil {
		return cur, err
	}
	next, _ := cur.With(key, !v)
	return next, s.apply(ctx, next)
}

// Merge applies the known keys of a partial update.
func (s *Service) Merge(ctx context.Context, values map[string]bool) (Settings, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := s.Current().Merge(values)
	return next, s.apply(ctx, next)
}

// Replace swaps in a complete set of values.
func (s *Service) Replace(ctx context.Context, next Settings) (Settings, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return next, s.apply(ctx, next)
}

// apply persists next, publishes it and notifies subscribers. Callers hold
// writeMu.
func (s *Service) apply(ctx context.Context, next Settings) error {
	prev := s.Current()
	if err := s.store.Save(ctx, next.ToMap()); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	s.mu.Lock()
	s.current = next
	subs := make([]func(Settings), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	changed := 0
	prevMap, nextMap := prev.ToMap(), next.ToMap()
	for _, k := range Keys() {
		if prevMap[k] != nextMap[k] {
			metrics.SettingsChanges.WithLabelValues(k).Inc()
			changed++
		}
	}
	s.log.Info("settings updated", "changed", changed, "settings", nextMap)

	for _, fn := range subs {
		fn(next)
	}
	return nil
}
