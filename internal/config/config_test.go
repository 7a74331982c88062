package config

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/ashwch/hearth/internal/appdirs"
	"github.com/pelletier/go-toml/v2"
)

func TestSetGetRoundTrip(t *testing.T) {
	cfg := Default()

	if err := cfg.Set("language", "de_DE.UTF-8"); err != nil {
		t.Fatalf("set language failed: %v", err)
	}
	if err := cfg.Set("ui.backend", "tview"); err != nil {
		t.Fatalf("set ui.backend failed: %v", err)
	}
	if err := cfg.Set("log.level", "WARNING"); err != nil {
		t.Fatalf("set log.level failed: %v", err)
	}
	if err := cfg.Set("log.color", "off"); err != nil {
		t.Fatalf("set log.color failed: %v", err)
	}
	if err := cfg.Set("components", "switch.test, test_standalone,switch.demo"); err != nil {
		t.Fatalf("set components failed: %v", err)
	}

	cases := []struct {
		key  string
		want string
	}{
		{key: "language", want: "de-DE"},
		{key: "ui.backend", want: "tview"},
		{key: "log.level", want: "warn"},
		{key: "log.color", want: "false"},
		{key: "components", want: "switch,switch.test,switch.demo,test_standalone"},
		{key: "version", want: "1"},
	}
	for _, tc := range cases {
		got, err := cfg.Get(tc.key)
		if err != nil {
			t.Fatalf("get %s failed: %v", tc.key, err)
		}
		if got != tc.want {
			t.Fatalf("Get(%q)=%q want=%q", tc.key, got, tc.want)
		}
	}
}

func TestSetRejectsInvalidValues(t *testing.T) {
	cfg := Default()
	if err := cfg.Set("ui.backend", "neon-ui"); err == nil {
		t.Fatalf("expected invalid ui.backend to be rejected")
	}
	if err := cfg.Set("language", "%%bad-locale"); err == nil {
		t.Fatalf("expected invalid language to be rejected")
	}
	if err := cfg.Set("log.level", "chatty"); err == nil {
		t.Fatalf("expected invalid log.level to be rejected")
	}
	if err := cfg.Set("log.color", "notabool"); err == nil {
		t.Fatalf("expected invalid bool to be rejected")
	}
	if err := cfg.Set("nope", "x"); err == nil {
		t.Fatalf("expected unknown key to be rejected")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Language != "en" {
		t.Fatalf("expected default language en, got %q", cfg.Language)
	}
	if cfg.UI.Backend != "auto" {
		t.Fatalf("expected default ui backend auto, got %q", cfg.UI.Backend)
	}
	if cfg.Log.Level != "info" || !cfg.Log.Color {
		t.Fatalf("unexpected default log config: %+v", cfg.Log)
	}
	if len(cfg.Components) != 0 {
		t.Fatalf("expected no default components, got %v", cfg.Components)
	}
}

func TestPathResolvesUnderConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, appdirs.ConfigFileName)
	if err := Save(path, Default()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Dir() != dir {
		t.Fatalf("expected dir %q, got %q", dir, cfg.Dir())
	}
	want := filepath.Join(dir, "custom_components", "switch", ".translations", "test.en.json")
	if got := cfg.Path("custom_components", "switch", ".translations", "test.en.json"); got != want {
		t.Fatalf("Path()=%q want=%q", got, want)
	}
}

func TestLoadParsesComponentsAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, appdirs.ConfigFileName)
	content := `
language = "es"

[[components]]
domain = "Switch"
platforms = ["test", "test", ""]

[[components]]
domain = "switch"
platforms = ["demo"]

[[components]]
domain = "test_package"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Language != "es" {
		t.Fatalf("expected language es, got %q", cfg.Language)
	}
	if len(cfg.Components) != 2 {
		t.Fatalf("expected 2 merged components, got %+v", cfg.Components)
	}
	names := cfg.ComponentNames()
	want := []string{"switch", "switch.test", "switch.demo", "test_package"}
	if len(names) != len(want) {
		t.Fatalf("ComponentNames()=%v want=%v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("ComponentNames()[%d]=%q want=%q", i, names[i], want[i])
		}
	}
	if cfg.UI.Backend != "auto" {
		t.Fatalf("expected missing ui backend to default, got %q", cfg.UI.Backend)
	}
}

func TestLoadAppliesEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, appdirs.ConfigFileName)
	if err := Save(path, Default()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	t.Setenv("HEARTH_LANGUAGE", "pt_BR")
	t.Setenv("HEARTH_LOG_LEVEL", "debug")
	t.Setenv("HEARTH_UI", "plain")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Language != "pt-BR" {
		t.Fatalf("expected env language pt-BR, got %q", cfg.Language)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("expected env log level debug, got %q", cfg.Log.Level)
	}
	if cfg.UI.Backend != "plain" {
		t.Fatalf("expected env ui backend plain, got %q", cfg.UI.Backend)
	}
}

func TestLoadFileIgnoresEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, appdirs.ConfigFileName)
	if err := Save(path, Default()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	t.Setenv("HEARTH_LANGUAGE", "de")

	stored, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load file failed: %v", err)
	}
	if err := stored.Set("log.level", "debug"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := Save(path, stored); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	bytes, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config failed: %v", err)
	}
	var onDisk Config
	if err := toml.Unmarshal(bytes, &onDisk); err != nil {
		t.Fatalf("parse config failed: %v", err)
	}
	if onDisk.Language != "en" {
		t.Fatalf("expected stored language en, got %q", onDisk.Language)
	}
	if onDisk.Log.Level != "debug" {
		t.Fatalf("expected stored log level debug, got %q", onDisk.Log.Level)
	}

	effective, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if effective.Language != "de" {
		t.Fatalf("expected env language de, got %q", effective.Language)
	}
}

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "hub")
	t.Setenv(appdirs.ConfigDirEnv, dir)

	cfg, path, err := LoadOrCreate()
	if err != nil {
		t.Fatalf("LoadOrCreate failed: %v", err)
	}
	if path != filepath.Join(dir, appdirs.ConfigFileName) {
		t.Fatalf("unexpected config path %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file to be created: %v", err)
	}
	if cfg.Dir() != dir {
		t.Fatalf("expected config dir %q, got %q", dir, cfg.Dir())
	}

	again, _, err := LoadOrCreate()
	if err != nil {
		t.Fatalf("second LoadOrCreate failed: %v", err)
	}
	if again.Language != cfg.Language {
		t.Fatalf("expected stable language, got %q and %q", cfg.Language, again.Language)
	}
}

func TestSaveUsesPrivateFileMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not portable on windows")
	}

	cfg := Default()
	path := filepath.Join(t.TempDir(), appdirs.ConfigFileName)
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat config failed: %v", err)
	}
	if perms := info.Mode().Perm(); perms&0o077 != 0 {
		t.Fatalf("expected private permissions, got %o", perms)
	}
}

func TestSaveAtomicWriteProducesParseableConfigUnderConcurrentSaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), appdirs.ConfigFileName)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			cfg := Default()
			if idx%2 == 0 {
				cfg.Language = "de"
			} else {
				cfg.Language = "es"
			}
			if err := Save(path, cfg); err != nil {
				t.Errorf("save failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	bytes, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config failed: %v", err)
	}
	var parsed Config
	if err := toml.Unmarshal(bytes, &parsed); err != nil {
		t.Fatalf("expected final config to be parseable TOML, got error: %v\ncontent:\n%s", err, string(bytes))
	}
}
