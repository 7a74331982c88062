package translation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ashwch/hearth/internal/logging"
)

// Hub is the part of the component registry the store depends on.
type Hub interface {
	Locator
	// Components returns the names of every loaded component.
	Components() []string
}

// Store caches parsed translation files per language and component. A
// component set up after a lookup is loaded on the next call.
type Store struct {
	hub    Hub
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]map[string]map[string]any
}

// NewStore returns an empty store reading components from hub. A nil logger
// discards output.
func NewStore(hub Hub, logger *slog.Logger) *Store {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Store{
		hub:    hub,
		logger: logger,
		cache:  map[string]map[string]map[string]any{},
	}
}

// GetComponentResources returns the flattened strings of every loaded
// component in one language, without fallback.
func (s *Store) GetComponentResources(ctx context.Context, lang string) (map[string]string, error) {
	normalized := NormalizeLanguage(lang)
	if normalized == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLanguage, lang)
	}
	components := s.hub.Components()

	data := make(map[string]map[string]any, len(components))
	missing := map[string]string{}
	s.mu.RLock()
	cached := s.cache[normalized]
	for _, name := range components {
		if entry, ok := cached[name]; ok {
			data[name] = entry
			continue
		}
		missing[name] = ""
	}
	s.mu.RUnlock()

	if len(missing) > 0 {
		loaded, err := s.loadMissing(ctx, normalized, missing)
		if err != nil {
			return nil, err
		}
		for name, entry := range loaded {
			data[name] = entry
		}
	}

	return Flatten(map[string]any{"component": BuildResources(data, components)}), nil
}

// loadMissing reads the files of the named components and caches them. An
// Invalidate racing with it does not affect the returned data.
func (s *Store) loadMissing(ctx context.Context, lang string, missing map[string]string) (map[string]map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result := make(map[string]map[string]any, len(missing))
	paths := make([]string, 0, len(missing))
	for name := range missing {
		path, err := ComponentTranslationFile(s.hub, name, lang)
		if err != nil {
			s.logger.Warn("no translation file for component", "component", name, "error", err)
			delete(missing, name)
			result[name] = s.store(lang, name, map[string]any{})
			continue
		}
		missing[name] = path
		paths = append(paths, path)
	}
	if len(paths) == 0 {
		return result, nil
	}

	done := make(chan map[string]map[string]any, 1)
	go func() {
		done <- loadTranslationsFiles(paths, s.logger)
	}()

	var loaded map[string]map[string]any
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case loaded = <-done:
	}

	for name, path := range missing {
		result[name] = s.store(lang, name, loaded[path])
	}
	return result, nil
}

// store caches data unless another caller got there first, and returns
// whichever entry ends up cached.
func (s *Store) store(lang, name string, data map[string]any) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	byComponent, ok := s.cache[lang]
	if !ok {
		byComponent = map[string]map[string]any{}
		s.cache[lang] = byComponent
	}
	if existing, exists := byComponent[name]; exists {
		return existing
	}
	byComponent[name] = data
	return data
}

// GetTranslations returns every backend string for lang. Keys the language
// leaves out are filled from its base language ("pt" for "pt-BR") and then
// from English. An unusable language code yields the English strings.
func (s *Store) GetTranslations(ctx context.Context, lang string) (map[string]string, error) {
	normalized := NormalizeLanguage(lang)
	if normalized == "" {
		s.logger.Debug("unusable language, falling back", "language", lang, "fallback", DefaultLanguage)
		normalized = DefaultLanguage
	}

	chain := fallbackChain(normalized)
	merged := map[string]string{}
	for i := len(chain) - 1; i >= 0; i-- {
		resources, err := s.GetComponentResources(ctx, chain[i])
		if err != nil {
			return nil, err
		}
		for key, value := range resources {
			merged[key] = value
		}
	}
	return merged, nil
}

// Invalidate drops cached files for lang, or for every language when lang is
// empty.
func (s *Store) Invalidate(lang string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lang == "" {
		s.cache = map[string]map[string]map[string]any{}
		return
	}
	delete(s.cache, NormalizeLanguage(lang))
}
