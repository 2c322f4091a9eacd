package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mholloway/medley/internal/favorites"
	"github.com/mholloway/medley/internal/feed"
	"github.com/mholloway/medley/internal/feedstore"
	"github.com/mholloway/medley/internal/search"
)

// Section identifies which dashboard view is active.
type Section int

const (
	SectionFeed Section = iota
	SectionTrending
	SectionFavorites
	SectionSearch
)

// Commands are the async actions the App can trigger. Each returns a Cmd
// whose message reports completion; nil funcs disable the action.
type Commands struct {
	LoadInitial    func() tea.Cmd
	LoadMore       func() tea.Cmd
	EnsureTrending func() tea.Cmd
	SaveState      func() tea.Cmd
}

// App is the root Bubble Tea model. Feed mutations go through the store;
// the App keeps its own render copy of whatever collection is on screen.
type App struct {
	store *feedstore.Store
	favs  *favorites.Set
	query *search.State
	cmds  Commands

	section    Section
	typeFilter feed.Type // empty Type means all
	items      []feed.Item
	cursor     int

	reordering bool
	searching  bool
	input      textinput.Model
	spin       spinner.Model

	width   int
	height  int
	ready   bool
	loading bool
	err     string
}

// NewApp creates the dashboard model.
func NewApp(store *feedstore.Store, favs *favorites.Set, cmds Commands) App {
	input := textinput.New()
	input.Placeholder = "search title, source, author..."
	input.CharLimit = 120

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return App{
		store: store,
		favs:  favs,
		query: search.NewState(),
		cmds:  cmds,
		input: input,
		spin:  sp,
	}
}

// Init kicks off the first-run load.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.spin.Tick}
	if a.cmds.LoadInitial != nil {
		a.loading = true
		cmds = append(cmds, a.cmds.LoadInitial())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if a.searching {
			return a.handleSearchKey(msg)
		}
		return a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case BatchMerged:
		a.refresh()
		return a, nil

	case InitialLoadDone:
		a.loading = false
		if msg.Err != nil {
			a.err = msg.Err.Error()
		}
		a.refresh()
		return a, a.persist()

	case LoadMoreDone:
		a.loading = false
		if msg.Err != nil {
			a.err = msg.Err.Error()
		}
		a.refresh()
		if msg.Rejected {
			return a, nil
		}
		return a, a.persist()

	case TrendingLoaded:
		if msg.Err != nil {
			a.err = msg.Err.Error()
		}
		a.refresh()
		return a, a.persist()

	case RefreshTick:
		a.refresh()
		return a, nil
	}

	return a, nil
}

// handleKey processes keyboard input outside of search entry.
func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.err != "" {
		a.err = ""
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit

	case "1":
		return a.switchSection(SectionFeed), nil
	case "2":
		a = a.switchSection(SectionTrending)
		if a.cmds.EnsureTrending != nil {
			return a, a.cmds.EnsureTrending()
		}
		return a, nil
	case "3":
		return a.switchSection(SectionFavorites), nil
	case "/":
		a = a.switchSection(SectionSearch)
		a.searching = true
		a.input.Focus()
		return a, textinput.Blink

	case "t":
		// Filter is locked while reordering: move keys index into the
		// visible collection, and the store reorders the full one.
		if a.section == SectionFeed && !a.reordering {
			a.typeFilter = nextTypeFilter(a.typeFilter)
			a.refresh()
		}
		return a, nil

	case "j", "down":
		if a.cursor < len(a.items)-1 {
			a.cursor++
		}
		return a, a.maybeLoadMore()

	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil

	case "g", "home":
		a.cursor = 0
		return a, nil

	case "G", "end":
		if len(a.items) > 0 {
			a.cursor = len(a.items) - 1
		}
		return a, nil

	case "m":
		if a.cmds.LoadMore != nil && a.section == SectionFeed {
			a.loading = true
			return a, a.cmds.LoadMore()
		}
		return a, nil

	case "f":
		if len(a.items) > 0 && a.cursor < len(a.items) {
			a.favs.Toggle(a.items[a.cursor])
			a.refresh()
			return a, a.persist()
		}
		return a, nil

	case "d":
		if a.section == SectionFeed && a.typeFilter == "" {
			a.reordering = !a.reordering
		}
		return a, nil

	case "J", "shift+down":
		return a.moveCurrent(a.cursor + 1)

	case "K", "shift+up":
		return a.moveCurrent(a.cursor - 1)

	case "s":
		if a.store.HasUnsavedChanges() {
			a.store.SaveChanges()
			a.reordering = false
			a.refresh()
			return a, a.persist()
		}
		return a, nil

	case "esc":
		if a.store.HasUnsavedChanges() {
			a.store.DiscardChanges()
			a.refresh()
		}
		a.reordering = false
		return a, nil
	}

	return a, nil
}

// handleSearchKey processes input while the search bar is focused.
func (a App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit

	case "esc":
		a.searching = false
		a.input.Blur()
		a.input.SetValue("")
		a.query.Clear()
		return a.switchSection(SectionFeed), nil

	case "enter":
		a.query.SetQuery(a.input.Value())
		a.query.Run(a.store.Items())
		a.searching = false
		a.input.Blur()
		a.refresh()
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// moveCurrent shifts the highlighted item to the target index while in
// reorder mode.
func (a App) moveCurrent(target int) (tea.Model, tea.Cmd) {
	if !a.reordering || a.section != SectionFeed {
		return a, nil
	}
	if target < 0 || target >= len(a.items) {
		return a, nil
	}
	a.store.Reorder(a.cursor, target)
	a.cursor = target
	a.refresh()
	return a, nil
}

// maybeLoadMore fires a load-more when the cursor reaches the end of the
// unified feed. The coordinator's cooldown absorbs repeat triggers.
func (a App) maybeLoadMore() tea.Cmd {
	if a.section != SectionFeed || a.cmds.LoadMore == nil {
		return nil
	}
	if a.cursor < len(a.items)-1 {
		return nil
	}
	return a.cmds.LoadMore()
}

func (a App) switchSection(s Section) App {
	a.section = s
	a.cursor = 0
	a.reordering = false
	a.refresh()
	return a
}

// refresh re-reads the active collection into the render copy.
func (a *App) refresh() {
	switch a.section {
	case SectionFeed:
		visible := a.store.Visible()
		if a.typeFilter != "" {
			visible = search.ByType(visible, a.typeFilter)
		}
		a.items = visible
	case SectionTrending:
		a.items = a.store.Trending()
	case SectionFavorites:
		a.items = a.favs.Items()
	case SectionSearch:
		a.items = a.query.Results()
	}
	if a.cursor >= len(a.items) {
		a.cursor = max(0, len(a.items)-1)
	}
}

func (a App) persist() tea.Cmd {
	if a.cmds.SaveState == nil {
		return nil
	}
	return a.cmds.SaveState()
}

// nextTypeFilter cycles all -> news -> movie -> music -> social -> all.
func nextTypeFilter(current feed.Type) feed.Type {
	if current == "" {
		return feed.Types[0]
	}
	for i, t := range feed.Types {
		if t == current {
			if i == len(feed.Types)-1 {
				return ""
			}
			return feed.Types[i+1]
		}
	}
	return ""
}

// Cursor returns the current cursor position (for testing).
func (a App) Cursor() int {
	return a.cursor
}

// Items returns the current render copy (for testing).
func (a App) Items() []feed.Item {
	return a.items
}

// ActiveSection returns the visible section (for testing).
func (a App) ActiveSection() Section {
	return a.section
}

// LastUpdatedLabel formats the store's last merge time for the status bar.
func (a App) LastUpdatedLabel() string {
	at := a.store.LastUpdated()
	if at.IsZero() {
		return "never"
	}
	return at.Format(time.Kitchen)
}
