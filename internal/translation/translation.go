// Package translation loads the backend strings shipped by hub components.
//
// Every component keeps its JSON translation files in a ".translations"
// directory next to its manifest:
//
//	custom_components/<domain>/.translations/<platform>.<lang>.json
//	custom_components/.translations/<standalone>.<lang>.json
//	custom_components/<package>/.translations/<lang>.json
//
// Nested keys are flattened into dotted paths and exposed under
// "component.<domain>". Strings missing from the requested language fall back
// to English.
package translation

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ashwch/hearth/internal/component"
	"github.com/ashwch/hearth/internal/logging"
)

// DirName is the per-component directory holding translation files.
const DirName = ".translations"

var (
	// ErrUnknownComponent means no component of that name exists on disk.
	ErrUnknownComponent = errors.New("unknown component")
	// ErrInvalidLanguage means the code cannot be used in a file name.
	ErrInvalidLanguage = errors.New("invalid language")
)

// Locator resolves a component name to where it lives on disk.
type Locator interface {
	Lookup(name string) (component.Component, bool)
}

// Flatten turns nested mappings into a single level keyed by dotted paths.
func Flatten(data map[string]any) map[string]string {
	out := map[string]string{}
	flattenInto(out, "", data)
	return out
}

func flattenInto(out map[string]string, prefix string, data map[string]any) {
	for key, value := range data {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		switch v := value.(type) {
		case map[string]any:
			flattenInto(out, path, v)
		case string:
			out[path] = v
		case nil:
			out[path] = ""
		default:
			out[path] = fmt.Sprint(v)
		}
	}
}

// ComponentTranslationFile returns the translation file for component in the
// given language. Platforms are addressed as "<domain>.<platform>".
func ComponentTranslationFile(loc Locator, name, lang string) (string, error) {
	normalized := NormalizeLanguage(lang)
	if normalized == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidLanguage, lang)
	}
	comp, ok := loc.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownComponent, name)
	}

	var filename string
	switch comp.Kind {
	case component.KindPackage:
		filename = normalized + ".json"
	case component.KindPlatform:
		filename = comp.Platform + "." + normalized + ".json"
	default:
		filename = comp.Domain + "." + normalized + ".json"
	}
	return filepath.Join(comp.Dir, DirName, filename), nil
}

// LoadTranslationsFiles parses each path. A file that is missing, unreadable
// or not a JSON object yields an empty mapping.
func LoadTranslationsFiles(paths []string) map[string]map[string]any {
	return loadTranslationsFiles(paths, nil)
}

func loadTranslationsFiles(paths []string, logger *slog.Logger) map[string]map[string]any {
	if logger == nil {
		logger = logging.Discard()
	}
	loaded := make(map[string]map[string]any, len(paths))
	for _, path := range paths {
		loaded[path] = loadTranslationFile(path, logger)
	}
	return loaded
}

func loadTranslationFile(path string, logger *slog.Logger) map[string]any {
	bytes, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Debug("translation file not found", logging.Path(path))
		return map[string]any{}
	}
	if err != nil {
		logger.Warn("could not read translation file", logging.Path(path), "error", err)
		return map[string]any{}
	}

	var parsed map[string]any
	if err := json.Unmarshal(bytes, &parsed); err != nil {
		logger.Warn("could not parse translation file", logging.Path(path), "error", err)
		return map[string]any{}
	}
	if parsed == nil {
		return map[string]any{}
	}
	return parsed
}

// BuildResources groups the cached strings of every component under its
// domain. Platform strings merge into their domain, since clients cannot tell
// which platform an entity belongs to.
func BuildResources(cache map[string]map[string]any, components []string) map[string]any {
	sorted := append([]string(nil), components...)
	sort.Strings(sorted)

	resources := map[string]any{}
	for _, name := range sorted {
		domain := domainOf(name)
		target, ok := resources[domain].(map[string]any)
		if !ok {
			target = map[string]any{}
			resources[domain] = target
		}
		mergeInto(target, cache[name])
	}
	return resources
}

// mergeInto deep-merges src into dst without aliasing src's nested maps.
func mergeInto(dst map[string]any, src map[string]any) {
	for key, value := range src {
		nested, isMap := value.(map[string]any)
		if !isMap {
			dst[key] = value
			continue
		}
		existing, ok := dst[key].(map[string]any)
		if !ok {
			existing = map[string]any{}
			dst[key] = existing
		}
		mergeInto(existing, nested)
	}
}

func domainOf(name string) string {
	domain, _, _ := strings.Cut(name, ".")
	return domain
}
