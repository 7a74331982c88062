package translation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTranslatorRendersTemplates(t *testing.T) {
	translator, err := NewTranslator("de", map[string]string{
		"component.switch.state.on":     "{{.Name}} ist an",
		"component.switch.state.string": "German Value 1",
	})
	require.NoError(t, err)
	require.Equal(t, "de", translator.Language())

	require.Equal(t, "Lamp ist an", translator.Translate("component.switch.state.on", map[string]any{"Name": "Lamp"}))
	require.Equal(t, "German Value 1", translator.Translate("component.switch.state.string", nil))
}

func TestTranslatorFallsBackToKey(t *testing.T) {
	translator, err := NewTranslator("en", map[string]string{})
	require.NoError(t, err)

	require.Equal(t, "component.light.state.on", translator.Translate("component.light.state.on", nil))
}

func TestTranslatorUnparseableLanguageUsesEnglish(t *testing.T) {
	translator, err := NewTranslator("invalid-language", map[string]string{"a.b": "Value"})
	require.NoError(t, err)
	require.Equal(t, "en", translator.Language())
	require.Equal(t, "Value", translator.Translate("a.b", nil))
}
