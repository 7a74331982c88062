package component

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ashwch/hearth/internal/logging"
)

// DirName is the directory under the hub configuration that holds components.
const DirName = "custom_components"

const manifestFile = "manifest.yaml"

var (
	// ErrComponentNotFound means no manifest exists for the name.
	ErrComponentNotFound = errors.New("component not found")
	// ErrInvalidName rejects names outside [a-z0-9_], optionally dotted once.
	ErrInvalidName = errors.New("invalid component name")
)

var namePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

type Kind int

const (
	// KindPackage lives in its own directory: <name>/manifest.yaml.
	KindPackage Kind = iota
	// KindStandalone is a single manifest file: <name>.yaml.
	KindStandalone
	// KindPlatform implements a domain for one provider: <domain>/<platform>.yaml.
	KindPlatform
)

func (k Kind) String() string {
	switch k {
	case KindPackage:
		return "package"
	case KindStandalone:
		return "standalone"
	case KindPlatform:
		return "platform"
	default:
		return "unknown"
	}
}

type Manifest struct {
	Name          string   `yaml:"name" json:"name"`
	Version       string   `yaml:"version,omitempty" json:"version,omitempty"`
	Documentation string   `yaml:"documentation,omitempty" json:"documentation,omitempty"`
	Codeowners    []string `yaml:"codeowners,omitempty" json:"codeowners,omitempty"`
}

type Component struct {
	Name     string   `json:"name"`
	Domain   string   `json:"domain"`
	Platform string   `json:"platform,omitempty"`
	Kind     Kind     `json:"-"`
	Dir      string   `json:"dir"`
	Manifest Manifest `json:"manifest"`
}

// Registry discovers components on disk and tracks which ones are set up.
type Registry struct {
	root   string
	logger *slog.Logger

	mu     sync.RWMutex
	loaded map[string]Component
}

// NewRegistry returns a registry over components under root. A nil logger
// discards output.
func NewRegistry(root string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Registry{
		root:   root,
		logger: logger,
		loaded: map[string]Component{},
	}
}

func (r *Registry) Root() string {
	return r.root
}

// Resolve locates a component on disk without setting it up.
func (r *Registry) Resolve(name string) (Component, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	domain, platform, isPlatform := strings.Cut(name, ".")
	if !namePattern.MatchString(domain) || (isPlatform && !namePattern.MatchString(platform)) {
		return Component{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	if isPlatform {
		dir := filepath.Join(r.root, domain)
		return r.resolveAt(filepath.Join(dir, platform+".yaml"), Component{
			Name:     name,
			Domain:   domain,
			Platform: platform,
			Kind:     KindPlatform,
			Dir:      dir,
		})
	}

	pkgDir := filepath.Join(r.root, domain)
	comp, err := r.resolveAt(filepath.Join(pkgDir, manifestFile), Component{
		Name:   name,
		Domain: domain,
		Kind:   KindPackage,
		Dir:    pkgDir,
	})
	if !errors.Is(err, ErrComponentNotFound) {
		return comp, err
	}
	return r.resolveAt(filepath.Join(r.root, domain+".yaml"), Component{
		Name:   name,
		Domain: domain,
		Kind:   KindStandalone,
		Dir:    r.root,
	})
}

func (r *Registry) resolveAt(manifestPath string, comp Component) (Component, error) {
	bytes, err := os.ReadFile(manifestPath)
	if errors.Is(err, os.ErrNotExist) {
		return Component{}, fmt.Errorf("%w: %s", ErrComponentNotFound, comp.Name)
	}
	if err != nil {
		return Component{}, fmt.Errorf("could not read manifest for %s: %w", comp.Name, err)
	}
	if err := yaml.Unmarshal(bytes, &comp.Manifest); err != nil {
		return Component{}, fmt.Errorf("could not parse manifest for %s: %w", comp.Name, err)
	}
	if strings.TrimSpace(comp.Manifest.Name) == "" {
		comp.Manifest.Name = comp.Name
	}
	return comp, nil
}

// Setup registers domain and each domain.platform as loaded. Components that
// are already loaded are left untouched.
func (r *Registry) Setup(ctx context.Context, domain string, platforms ...string) error {
	names := make([]string, 0, len(platforms)+1)
	names = append(names, domain)
	for _, platform := range platforms {
		names = append(names, domain+"."+platform)
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		comp, err := r.Resolve(name)
		if err != nil {
			return fmt.Errorf("setup %s: %w", name, err)
		}

		r.mu.Lock()
		_, exists := r.loaded[comp.Name]
		if !exists {
			r.loaded[comp.Name] = comp
		}
		r.mu.Unlock()

		if !exists {
			r.logger.Info("component set up", "component", comp.Name, "kind", comp.Kind.String())
		}
	}
	return nil
}

// Lookup returns a loaded component, or resolves it from disk.
func (r *Registry) Lookup(name string) (Component, bool) {
	r.mu.RLock()
	comp, ok := r.loaded[name]
	r.mu.RUnlock()
	if ok {
		return comp, true
	}

	comp, err := r.Resolve(name)
	if err != nil {
		r.logger.Debug("component lookup failed", "component", name, "error", err)
		return Component{}, false
	}
	return comp, true
}

// Components returns the sorted names of loaded components.
func (r *Registry) Components() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.loaded))
	for name := range r.loaded {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Discover lists every component available under the root, sorted by name.
func (r *Registry) Discover() ([]Component, error) {
	entries, err := os.ReadDir(r.root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read components dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		entryName := entry.Name()
		if strings.HasPrefix(entryName, ".") {
			continue
		}
		if !entry.IsDir() {
			if base, ok := strings.CutSuffix(entryName, ".yaml"); ok {
				names = append(names, base)
			}
			continue
		}

		if _, err := os.Stat(filepath.Join(r.root, entryName, manifestFile)); err == nil {
			names = append(names, entryName)
		}
		children, err := os.ReadDir(filepath.Join(r.root, entryName))
		if err != nil {
			return nil, fmt.Errorf("could not read component dir %s: %w", entryName, err)
		}
		for _, child := range children {
			base, ok := strings.CutSuffix(child.Name(), ".yaml")
			if child.IsDir() || !ok || child.Name() == manifestFile {
				continue
			}
			names = append(names, entryName+"."+base)
		}
	}

	sort.Strings(names)
	found := make([]Component, 0, len(names))
	for _, name := range names {
		comp, err := r.Resolve(name)
		if err != nil {
			r.logger.Warn("skipping component", "component", name, "error", err)
			continue
		}
		found = append(found, comp)
	}
	return found, nil
}
