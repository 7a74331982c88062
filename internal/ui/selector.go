package ui

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/rivo/tview"
)

// Entry is one flattened translation string.
type Entry struct {
	Key   string
	Value string
}

type selectorOption struct {
	Label string
	Entry Entry
}

// SelectTranslation lets the user pick one entry. The bool reports whether an
// interactive backend ran; a cancelled picker returns an empty Entry.
func SelectTranslation(backend string, title string, entries []Entry) (Entry, bool, error) {
	options := buildSelectionOptions(entries)
	if len(options) == 0 {
		return Entry{}, false, nil
	}

	var firstErr error
	for _, candidate := range backendCandidates(backend) {
		var (
			selected Entry
			used     bool
			err      error
		)
		switch candidate {
		case BackendBubbleTea:
			selected, used, err = selectWithBubbleTea(title, options)
		case BackendHuh:
			selected, used, err = selectWithHuh(title, options)
		case BackendTView:
			selected, used, err = selectWithTView(title, options)
		case BackendPlain:
			continue
		default:
			continue
		}
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if used {
			return selected, true, nil
		}
	}
	if firstErr != nil {
		return Entry{}, false, firstErr
	}
	return Entry{}, false, nil
}

// EntriesFromMap sorts a flattened translation map by key.
func EntriesFromMap(translations map[string]string) []Entry {
	entries := make([]Entry, 0, len(translations))
	for key, value := range translations {
		entries = append(entries, Entry{Key: key, Value: value})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

func buildSelectionOptions(entries []Entry) []selectorOption {
	options := make([]selectorOption, 0, len(entries))
	seen := map[string]struct{}{}

	for _, entry := range entries {
		key := strings.TrimSpace(entry.Key)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		options = append(options, selectorOption{
			Label: fmt.Sprintf("%s = %s", key, compactValue(entry.Value, 48)),
			Entry: entry,
		})
	}
	return options
}

func compactValue(value string, max int) string {
	value = strings.Join(strings.Fields(value), " ")
	runes := []rune(value)
	if max <= 3 || len(runes) <= max {
		return value
	}
	return string(runes[:max-3]) + "..."
}

func selectWithHuh(title string, options []selectorOption) (Entry, bool, error) {
	huhOptions := make([]huh.Option[string], 0, len(options))
	lookup := map[string]Entry{}
	for _, option := range options {
		key := strings.TrimSpace(option.Entry.Key)
		huhOptions = append(huhOptions, huh.NewOption(option.Label, key))
		lookup[key] = option.Entry
	}

	choice := huhOptions[0].Value

	prompt := huh.NewSelect[string]().
		Title("hearth translations").
		Description(strings.TrimSpace(title)).
		Options(huhOptions...).
		Filtering(true).
		Height(huhSelectHeight(len(huhOptions))).
		Value(&choice).
		WithTheme(huh.ThemeCharm())

	err := prompt.Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return Entry{}, true, nil
		}
		return Entry{}, false, err
	}
	selected, ok := lookup[strings.TrimSpace(choice)]
	if !ok {
		return Entry{}, true, nil
	}
	return selected, true, nil
}

type bubbleSelectorItem struct {
	label string
	key   string
	value string
}

func (i bubbleSelectorItem) Title() string       { return i.label }
func (i bubbleSelectorItem) Description() string { return i.value }
func (i bubbleSelectorItem) FilterValue() string { return i.key + " " + i.value }

type bubbleSelectorModel struct {
	list      list.Model
	selection string
	cancelled bool
	options   int
}

func (m bubbleSelectorModel) Init() tea.Cmd { return nil }

func (m bubbleSelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch k := msg.(type) {
	case tea.WindowSizeMsg:
		width, height := bubblePickerSize(k.Width, k.Height, m.options)
		m.list.SetSize(width, height)
		return m, nil
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch k.String() {
		case "q", "esc", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			if item, ok := m.list.SelectedItem().(bubbleSelectorItem); ok {
				m.selection = item.key
			}
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m bubbleSelectorModel) View() string {
	return m.list.View()
}

func selectWithBubbleTea(title string, options []selectorOption) (Entry, bool, error) {
	items := make([]list.Item, 0, len(options))
	lookup := map[string]Entry{}
	for _, option := range options {
		key := strings.TrimSpace(option.Entry.Key)
		lookup[key] = option.Entry
		items = append(items, bubbleSelectorItem{
			label: key,
			key:   key,
			value: compactValue(option.Entry.Value, 72),
		})
	}

	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)

	initialWidth, initialHeight := bubblePickerSize(80, 24, len(items))
	picker := list.New(items, delegate, initialWidth, initialHeight)
	picker.Title = fmt.Sprintf("hearth translations: %s", strings.TrimSpace(title))
	picker.SetShowHelp(false)
	picker.SetFilteringEnabled(true)

	model := bubbleSelectorModel{list: picker, options: len(items)}
	final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err != nil {
		return Entry{}, false, err
	}
	out, ok := final.(bubbleSelectorModel)
	if !ok || out.cancelled {
		return Entry{}, true, nil
	}

	selected, ok := lookup[strings.TrimSpace(out.selection)]
	if !ok {
		return Entry{}, true, nil
	}
	return selected, true, nil
}

func selectWithTView(title string, options []selectorOption) (Entry, bool, error) {
	app := tview.NewApplication()
	listView := tview.NewList()
	listView.SetBorder(true)
	listView.SetTitle(fmt.Sprintf("hearth translations: %s", strings.TrimSpace(title)))
	listView.ShowSecondaryText(true)

	selected := Entry{}
	used := false
	for _, option := range options {
		current := option
		listView.AddItem(current.Entry.Key, compactValue(current.Entry.Value, 72), 0, func() {
			selected = current.Entry
			used = true
			app.Stop()
		})
	}
	listView.SetDoneFunc(func() {
		app.Stop()
	})

	if err := app.SetRoot(listView, true).SetFocus(listView).Run(); err != nil {
		return Entry{}, false, err
	}
	if !used {
		return Entry{}, true, nil
	}
	return selected, true, nil
}

func clampInt(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

func bubblePickerSize(termWidth, termHeight, optionCount int) (int, int) {
	if termWidth <= 0 {
		termWidth = 80
	}
	if termHeight <= 0 {
		termHeight = 24
	}
	if optionCount < 1 {
		optionCount = 1
	}

	maxWidth := termWidth
	minWidth := 32
	if maxWidth < minWidth {
		minWidth = maxWidth
	}
	width := clampInt(termWidth-4, minWidth, maxWidth)

	// Each entry renders its key and value on two lines.
	visibleItems := clampInt(optionCount, 3, 12)
	desiredHeight := visibleItems*2 + 6

	maxHeight := termHeight - 2
	if maxHeight <= 0 {
		maxHeight = termHeight
	}
	if maxHeight <= 0 {
		maxHeight = 1
	}
	minHeight := 8
	if maxHeight < minHeight {
		minHeight = maxHeight
	}
	height := clampInt(desiredHeight, minHeight, maxHeight)
	return width, height
}

func huhSelectHeight(optionCount int) int {
	if optionCount < 1 {
		optionCount = 1
	}
	return clampInt(optionCount+1, 4, 10)
}
