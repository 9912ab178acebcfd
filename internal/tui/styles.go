package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

var (
	accentFg  = lipgloss.Color("#7C3AED")
	dimFg     = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	borderCol = lipgloss.Color("#243141")
	errorFg   = lipgloss.Color("#EF4444")

	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol)
	titleStyle = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(dimFg)
	errorStyle = lipgloss.NewStyle().Foreground(errorFg)
)

// Canvas ink for links and the lasso trail.
const (
	linkInk  = "#4B5563"
	trailInk = "#E6E6E6"
)

type keyMap struct {
	Cancel key.Binding
	Reset  key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding { return []key.Binding{k.Cancel, k.Reset, k.Help, k.Quit} }

func (k keyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

var keys = keyMap{
	Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel lasso")),
	Reset:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "clear selection")),
	Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}
