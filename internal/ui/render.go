package ui

import (
	"fmt"
	"strings"

	"github.com/mholloway/medley/internal/feed"
)

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(a.renderHeader())
	b.WriteString("\n")

	if a.searching {
		b.WriteString(SearchBar.Width(a.width).Render("/ " + a.input.View()))
		b.WriteString("\n")
	}

	contentHeight := a.height - 3
	if a.err != "" {
		contentHeight--
	}
	b.WriteString(a.renderItems(contentHeight))

	if a.err != "" {
		b.WriteString(ErrorStyle.Width(a.width).Render("Error: " + a.err + " (press any key to dismiss)"))
		b.WriteString("\n")
	}

	b.WriteString(a.renderStatusBar())
	return b.String()
}

func (a App) renderHeader() string {
	labels := []struct {
		section Section
		label   string
	}{
		{SectionFeed, "1:Feed"},
		{SectionTrending, "2:Trending"},
		{SectionFavorites, "3:Favorites"},
		{SectionSearch, "/:Search"},
	}

	parts := make([]string, 0, len(labels)+1)
	for _, l := range labels {
		if l.section == a.section {
			parts = append(parts, SectionHeader.Render(l.label))
		} else {
			parts = append(parts, StatusBarText.Render(l.label))
		}
	}
	if a.section == SectionFeed && a.typeFilter != "" {
		parts = append(parts, TypeBadge(a.typeFilter).Render(string(a.typeFilter)))
	}
	if a.reordering {
		parts = append(parts, DirtyIndicator.Render("[reorder]"))
	}
	return strings.Join(parts, " ")
}

func (a App) renderItems(height int) string {
	if len(a.items) == 0 {
		return HelpStyle.Render(a.emptyMessage()) + "\n"
	}

	// Keep the cursor inside the visible window.
	start := 0
	if height > 0 && a.cursor >= height {
		start = a.cursor - height + 1
	}
	end := len(a.items)
	if height > 0 && start+height < end {
		end = start + height
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(a.renderItem(a.items[i], i == a.cursor))
		b.WriteString("\n")
	}
	return b.String()
}

func (a App) renderItem(item feed.Item, selected bool) string {
	badge := TypeBadge(item.Type).Render(string(item.Type))

	mark := "  "
	if a.favs.Contains(item.ID) {
		mark = FavoriteMark.Render("* ")
	}

	line := item.Title
	if meta := itemMeta(item); meta != "" {
		line += " " + MetaText.Render(meta)
	}

	if selected {
		return badge + mark + SelectedItem.Render(line)
	}
	return badge + mark + NormalItem.Render(line)
}

// itemMeta builds the per-type metadata suffix.
func itemMeta(item feed.Item) string {
	switch item.Type {
	case feed.TypeNews:
		if item.ReadTime > 0 {
			return fmt.Sprintf("(%s, %d min)", item.Source, item.ReadTime)
		}
		return fmt.Sprintf("(%s)", item.Source)
	case feed.TypeMovie:
		if item.Rating > 0 {
			return fmt.Sprintf("(%.1f)", item.Rating)
		}
	case feed.TypeMusic:
		if item.Artist != "" {
			return fmt.Sprintf("(%s)", item.Artist)
		}
	case feed.TypeSocial:
		if item.Author != "" {
			return fmt.Sprintf("(@%s, %d likes)", item.Author, item.Likes)
		}
	}
	return ""
}

func (a App) emptyMessage() string {
	switch a.section {
	case SectionTrending:
		return "Nothing trending right now."
	case SectionFavorites:
		return "No favorites yet. Press f on an item to add one."
	case SectionSearch:
		return "Type a query and press enter."
	}
	if a.loading {
		return "Fetching your feed..."
	}
	return "Feed is empty. Press m to load content."
}

func (a App) renderStatusBar() string {
	var parts []string

	if a.loading {
		parts = append(parts, a.spin.View()+"loading")
	}

	parts = append(parts, fmt.Sprintf("%d/%d", min(a.cursor+1, len(a.items)), len(a.items)))
	parts = append(parts, StatusBarText.Render("updated "+a.LastUpdatedLabel()))

	if a.store.HasUnsavedChanges() {
		parts = append(parts, DirtyIndicator.Render("unsaved")+StatusBarText.Render(" s:save esc:discard"))
	} else if a.store.HasCustomOrder() {
		parts = append(parts, SavedIndicator.Render("custom order"))
	}

	keys := "j/k:move f:fav m:more d:reorder t:type q:quit"
	parts = append(parts, StatusBarKey.Render(keys))

	return StatusBar.Width(a.width).Render(strings.Join(parts, "  "))
}
