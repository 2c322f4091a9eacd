package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mholloway/medley/internal/feed"
)

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorSuccess   = lipgloss.Color("78")  // Green
	colorWarning   = lipgloss.Color("214") // Amber
)

// Type colors for visual differentiation of content kinds.
var typeColors = map[feed.Type]lipgloss.Color{
	feed.TypeNews:   lipgloss.Color("#58a6ff"), // blue
	feed.TypeMovie:  lipgloss.Color("#d2a8ff"), // purple
	feed.TypeMusic:  lipgloss.Color("#7ee787"), // green
	feed.TypeSocial: lipgloss.Color("#ffa657"), // orange
}

// SelectedItem style for the currently highlighted item.
var SelectedItem = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// NormalItem style for unselected items.
var NormalItem = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Padding(0, 1)

// FavoriteMark style for the favorite indicator.
var FavoriteMark = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// SectionHeader style for section titles.
var SectionHeader = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	MarginTop(1).
	Padding(0, 1)

// TypeBadge returns the badge style for a content type.
func TypeBadge(t feed.Type) lipgloss.Style {
	color, ok := typeColors[t]
	if !ok {
		color = colorSecondary
	}
	return lipgloss.NewStyle().
		Foreground(color).
		Background(lipgloss.Color("236")).
		Padding(0, 1).
		MarginRight(1)
}

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// DirtyIndicator style for the unsaved-changes marker.
var DirtyIndicator = lipgloss.NewStyle().
	Foreground(colorWarning).
	Bold(true)

// SavedIndicator style for the custom-order marker.
var SavedIndicator = lipgloss.NewStyle().
	Foreground(colorSuccess)

// ErrorStyle for displaying errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("196")).
	Bold(true).
	Padding(0, 1)

// HelpStyle for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(1, 2)

// SearchBar style for the search input bar.
var SearchBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("240")).
	Padding(0, 1)

// SearchCount style for the result count.
var SearchCount = lipgloss.NewStyle().
	Foreground(colorSecondary)

// MetaText style for secondary item metadata.
var MetaText = lipgloss.NewStyle().
	Foreground(colorMuted)
