package translation

import (
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// Translator renders merged strings, including Go template placeholders such
// as "{{.Name}} turned on".
type Translator struct {
	lang      string
	raw       map[string]string
	localizer *i18n.Localizer
}

func NewTranslator(lang string, strings map[string]string) (*Translator, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}

	bundle := i18n.NewBundle(tag)
	messages := make([]*i18n.Message, 0, len(strings))
	for id, other := range strings {
		messages = append(messages, &i18n.Message{ID: id, Other: other})
	}
	if err := bundle.AddMessages(tag, messages...); err != nil {
		return nil, err
	}

	return &Translator{
		lang:      tag.String(),
		raw:       strings,
		localizer: i18n.NewLocalizer(bundle, tag.String()),
	}, nil
}

func (t *Translator) Language() string {
	return t.lang
}

// Translate renders key with data. Unknown keys come back unchanged and a
// string whose template fails to render is returned as stored.
func (t *Translator) Translate(key string, data map[string]any) string {
	out, err := t.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err == nil {
		return out
	}
	if raw, ok := t.raw[key]; ok {
		return raw
	}
	return key
}
