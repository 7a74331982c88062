package ui

import (
	"io"
	"os"
	"strings"
)

const (
	BackendAuto      = "auto"
	BackendBubbleTea = "bubbletea"
	BackendHuh       = "huh"
	BackendTView     = "tview"
	BackendPlain     = "plain"
)

func NormalizeBackend(backend string) string {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendAuto, "":
		return BackendAuto
	case BackendBubbleTea:
		return BackendBubbleTea
	case BackendHuh:
		return BackendHuh
	case BackendTView:
		return BackendTView
	case BackendPlain:
		return BackendPlain
	default:
		return BackendAuto
	}
}

// EffectiveBackend prefers a per-invocation override over the configured one.
func EffectiveBackend(override string, configured string) string {
	if strings.TrimSpace(override) != "" {
		return NormalizeBackend(override)
	}
	return NormalizeBackend(configured)
}

func IsInteractiveBackend(backend string) bool {
	switch NormalizeBackend(backend) {
	case BackendPlain:
		return false
	default:
		return true
	}
}

// CanInteract reports whether a picker may take over the terminal. out is
// where the command writes its results; it must be a terminal too.
func CanInteract(backend string, jsonOutput bool, out io.Writer) bool {
	if jsonOutput || !IsInteractiveBackend(backend) {
		return false
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isTerminal(os.Stdin) && isTerminal(f)
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

func backendCandidates(backend string) []string {
	switch NormalizeBackend(backend) {
	case BackendBubbleTea:
		return []string{BackendBubbleTea, BackendHuh, BackendTView}
	case BackendHuh:
		return []string{BackendHuh, BackendBubbleTea, BackendTView}
	case BackendTView:
		return []string{BackendTView, BackendBubbleTea, BackendHuh}
	case BackendPlain:
		return []string{BackendPlain}
	default:
		return []string{BackendBubbleTea, BackendHuh, BackendTView}
	}
}
