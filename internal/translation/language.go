package translation

import (
	"strings"

	"golang.org/x/text/language"
)

// DefaultLanguage provides every string a requested language leaves out.
const DefaultLanguage = "en"

// NormalizeLanguage turns values like "en_US.UTF-8" or "pt_br@latin" into
// "en-US" and "pt-BR". It returns "" for anything that is not shaped like a
// language tag. Only case and separators change; subtags are never remapped.
func NormalizeLanguage(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	trimmed = strings.Split(trimmed, ".")[0]
	trimmed = strings.Split(trimmed, "@")[0]
	trimmed = strings.ReplaceAll(trimmed, "_", "-")

	parts := strings.Split(trimmed, "-")
	for idx, part := range parts {
		if !isValidLanguageToken(strings.ToLower(part), idx == 0) {
			return ""
		}
	}

	formatted := formatSubtags(parts)
	// Raw keeps deprecated codes such as "iw" instead of mapping them to "he";
	// the value names files on disk.
	tag, err := language.Raw.Parse(formatted)
	if err != nil || !strings.EqualFold(tag.String(), formatted) {
		return formatted
	}
	return tag.String()
}

// formatSubtags applies BCP 47 casing: lower-case language, title-case
// script, upper-case region.
func formatSubtags(parts []string) string {
	out := make([]string, len(parts))
	for idx, part := range parts {
		lower := strings.ToLower(part)
		switch {
		case idx == 0:
			out[idx] = lower
		case len(lower) == 4 && isLetters(lower):
			out[idx] = strings.ToUpper(lower[:1]) + lower[1:]
		case len(lower) == 2 && isLetters(lower), len(lower) == 3 && isDigits(lower):
			out[idx] = strings.ToUpper(lower)
		default:
			out[idx] = lower
		}
	}
	return strings.Join(out, "-")
}

func isLetters(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// fallbackChain lists the languages consulted for lang, most specific first,
// always ending with DefaultLanguage.
func fallbackChain(lang string) []string {
	chain := []string{lang}
	if base, _, found := strings.Cut(lang, "-"); found && base != "" {
		chain = append(chain, base)
	}
	if chain[len(chain)-1] != DefaultLanguage {
		chain = append(chain, DefaultLanguage)
	}
	return dedupe(chain)
}

func dedupe(items []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

func isValidLanguageToken(token string, lettersOnly bool) bool {
	if len(token) < 2 || len(token) > 8 {
		return false
	}
	for _, r := range token {
		if r >= 'a' && r <= 'z' {
			continue
		}
		if !lettersOnly && r >= '0' && r <= '9' {
			continue
		}
		return false
	}
	return true
}
