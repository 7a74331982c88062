// Package hubtest writes small hub configuration trees for tests.
package hubtest

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFiles creates each relative path under root with the given content.
func WriteFiles(t testing.TB, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir for %s failed: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s failed: %v", rel, err)
		}
	}
}

// SampleFiles is a hub with one platform of the switch domain, a standalone
// component and a package component. The switch platform ships English,
// German and a partial Spanish translation, plus one malformed file.
func SampleFiles() map[string]string {
	return map[string]string{
		"custom_components/switch/manifest.yaml": "name: Switch\nversion: 1.0.0\n",
		"custom_components/switch/test.yaml":     "name: Test switch\n",

		"custom_components/switch/.translations/test.en.json": `{"state": {"string1": "Value 1", "string2": "Value 2"}}`,
		"custom_components/switch/.translations/test.de.json": `{"state": {"string1": "German Value 1", "string2": "German Value 2"}}`,
		"custom_components/switch/.translations/test.es.json": `{"state": {"string1": "Spanish Value 1"}}`,
		"custom_components/switch/.translations/invalid.json": `{"state": {"string1": `,

		"custom_components/test_standalone.yaml":        "name: Standalone\n",
		"custom_components/test_package/manifest.yaml": "name: Package\ncodeowners:\n  - \"@hearth\"\n",
	}
}

// SampleHub writes SampleFiles into a temp dir and returns the hub root.
func SampleHub(t testing.TB) string {
	t.Helper()
	root := t.TempDir()
	WriteFiles(t, root, SampleFiles())
	return root
}
