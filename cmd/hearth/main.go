package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/ashwch/hearth/internal/component"
	"github.com/ashwch/hearth/internal/config"
	"github.com/ashwch/hearth/internal/logging"
	"github.com/ashwch/hearth/internal/translation"
	"github.com/ashwch/hearth/internal/ui"
)

var version = "dev"

var errUsage = errors.New("usage")

type app struct {
	cfg      config.Config
	cfgPath  string
	logger   *slog.Logger
	registry *component.Registry
	store    *translation.Store
	stdout   io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 2
	}
	sub := args[0]
	args = args[1:]

	if sub == "version" || sub == "--version" {
		fmt.Fprintln(stdout, version)
		return 0
	}
	if sub == "help" || sub == "--help" || sub == "-h" {
		printUsage(stdout)
		return 0
	}

	a, err := newApp(stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "hearth: could not load config: %v\n", err)
		return 1
	}

	switch sub {
	case "translations":
		err = a.translations(ctx, args)
	case "translation-file":
		err = a.translationFile(args)
	case "translate":
		err = a.translate(ctx, args)
	case "browse":
		err = a.browse(ctx, args)
	case "components":
		err = a.components(ctx, args)
	case "config-path":
		fmt.Fprintln(stdout, a.cfgPath)
	case "config-get":
		err = a.configGet(args)
	case "config-set":
		err = a.configSet(args)
	default:
		fmt.Fprintf(stderr, "unknown hearth subcommand: %s\n", sub)
		printUsage(stderr)
		return 2
	}

	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if errors.Is(err, errUsage) {
		fmt.Fprintf(stderr, "hearth: %v\n", err)
		return 2
	}
	if err != nil {
		fmt.Fprintf(stderr, "hearth: %v\n", err)
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "hearth <translations|translation-file|translate|browse|components|config-path|config-get|config-set|version>")
}

func newApp(stdout, stderr io.Writer) (*app, error) {
	cfg, cfgPath, err := config.LoadOrCreate()
	if err != nil {
		return nil, err
	}
	logger := logging.New(stderr, cfg.Log.Level, cfg.Log.Color)
	registry := component.NewRegistry(cfg.Path(component.DirName), logger)
	return &app{
		cfg:      cfg,
		cfgPath:  cfgPath,
		logger:   logger,
		registry: registry,
		store:    translation.NewStore(registry, logger),
		stdout:   stdout,
	}, nil
}

// setupComponents sets up everything listed in the configuration. A
// component that fails is logged and skipped so the rest still load.
func (a *app) setupComponents(ctx context.Context) error {
	for _, comp := range a.cfg.Components {
		if err := a.registry.Setup(ctx, comp.Domain, comp.Platforms...); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			a.logger.Error("component setup failed", "component", comp.Domain, "error", err)
		}
	}
	return nil
}

func (a *app) language(flagValue string) string {
	if strings.TrimSpace(flagValue) != "" {
		return strings.TrimSpace(flagValue)
	}
	return a.cfg.Language
}

func (a *app) mergedTranslations(ctx context.Context, lang string) (map[string]string, error) {
	if err := a.setupComponents(ctx); err != nil {
		return nil, err
	}
	return a.store.GetTranslations(ctx, lang)
}

func (a *app) translations(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("translations", flag.ContinueOnError)
	lang := fs.String("language", "", "language code, defaults to the configured language")
	asJSON := fs.Bool("json", false, "output JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	merged, err := a.mergedTranslations(ctx, a.language(*lang))
	if err != nil {
		return err
	}
	if *asJSON {
		return a.printJSON(merged)
	}
	for _, entry := range ui.EntriesFromMap(merged) {
		fmt.Fprintf(a.stdout, "%s = %s\n", entry.Key, entry.Value)
	}
	return nil
}

func (a *app) translationFile(args []string) error {
	fs := flag.NewFlagSet("translation-file", flag.ContinueOnError)
	name := fs.String("component", "", "component name, e.g. switch.test")
	lang := fs.String("language", "", "language code, defaults to the configured language")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*name) == "" {
		return fmt.Errorf("%w: --component is required", errUsage)
	}

	path, err := translation.ComponentTranslationFile(a.registry, strings.TrimSpace(*name), a.language(*lang))
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, path)
	return nil
}

func (a *app) translate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("translate", flag.ContinueOnError)
	lang := fs.String("language", "", "language code, defaults to the configured language")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return fmt.Errorf("%w: translate needs a key", errUsage)
	}
	data, err := parseTemplateData(rest[1:])
	if err != nil {
		return err
	}

	language := a.language(*lang)
	merged, err := a.mergedTranslations(ctx, language)
	if err != nil {
		return err
	}
	translator, err := translation.NewTranslator(translation.NormalizeLanguage(language), merged)
	if err != nil {
		return fmt.Errorf("could not build translator: %w", err)
	}
	fmt.Fprintln(a.stdout, translator.Translate(rest[0], data))
	return nil
}

func parseTemplateData(pairs []string) (map[string]any, error) {
	data := map[string]any{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("%w: expected name=value, got %q", errUsage, pair)
		}
		data[strings.TrimSpace(key)] = value
	}
	return data, nil
}

func (a *app) browse(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("browse", flag.ContinueOnError)
	lang := fs.String("language", "", "language code, defaults to the configured language")
	backend := fs.String("ui", "", "override ui backend: auto|bubbletea|huh|tview|plain")
	if err := fs.Parse(args); err != nil {
		return err
	}

	language := a.language(*lang)
	merged, err := a.mergedTranslations(ctx, language)
	if err != nil {
		return err
	}
	entries := ui.EntriesFromMap(merged)
	if len(entries) == 0 {
		fmt.Fprintln(a.stdout, "no translations loaded")
		return nil
	}

	effective := ui.EffectiveBackend(*backend, a.cfg.UI.Backend)
	if ui.CanInteract(effective, false, a.stdout) {
		selected, used, err := ui.SelectTranslation(effective, language, entries)
		if err != nil {
			a.logger.Warn("interactive picker failed, printing plain list", "error", err)
		} else if used {
			if selected.Key != "" {
				fmt.Fprintf(a.stdout, "%s = %s\n", selected.Key, selected.Value)
			}
			return nil
		}
	}

	for _, entry := range entries {
		fmt.Fprintf(a.stdout, "%s = %s\n", entry.Key, entry.Value)
	}
	return nil
}

type componentStatus struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Version string `json:"version,omitempty"`
	Loaded  bool   `json:"loaded"`
}

func (a *app) components(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("components", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "output JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.setupComponents(ctx); err != nil {
		return err
	}
	found, err := a.registry.Discover()
	if err != nil {
		return err
	}
	loaded := map[string]struct{}{}
	for _, name := range a.registry.Components() {
		loaded[name] = struct{}{}
	}

	statuses := make([]componentStatus, 0, len(found))
	for _, comp := range found {
		_, isLoaded := loaded[comp.Name]
		statuses = append(statuses, componentStatus{
			Name:    comp.Name,
			Kind:    comp.Kind.String(),
			Title:   comp.Manifest.Name,
			Version: comp.Manifest.Version,
			Loaded:  isLoaded,
		})
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })

	if *asJSON {
		return a.printJSON(statuses)
	}
	if len(statuses) == 0 {
		fmt.Fprintf(a.stdout, "no components in %s\n", a.registry.Root())
		return nil
	}
	for _, status := range statuses {
		marker := " "
		if status.Loaded {
			marker = "*"
		}
		fmt.Fprintf(a.stdout, "%s %-24s %-10s %s\n", marker, status.Name, status.Kind, status.Title)
	}
	return nil
}

func (a *app) configGet(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: config-get <%s>", errUsage, strings.Join(config.Keys(), "|"))
	}
	value, err := a.cfg.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, value)
	return nil
}

func (a *app) configSet(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: config-set <key> <value>", errUsage)
	}
	stored, err := config.LoadFile(a.cfgPath)
	if err != nil {
		return err
	}
	if err := stored.Set(args[0], args[1]); err != nil {
		return err
	}
	if err := config.Save(a.cfgPath, stored); err != nil {
		return err
	}
	value, err := stored.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "%s=%s\n", strings.ToLower(strings.TrimSpace(args[0])), value)
	return nil
}

func (a *app) printJSON(v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, string(encoded))
	return nil
}
