package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.Color("#2E7D32")
	colorSale   = lipgloss.Color("#D84315")
	colorMuted  = lipgloss.Color("241")
	colorError  = lipgloss.Color("#C62828")
	colorCursor = lipgloss.Color("#FBC02D")
)

type styles struct {
	App       lipgloss.Style
	Title     lipgloss.Style
	Tabs      lipgloss.Style
	ActiveTab lipgloss.Style
	Header    lipgloss.Style
	Row       lipgloss.Style
	Selected  lipgloss.Style
	Muted     lipgloss.Style
	Price     lipgloss.Style
	Struck    lipgloss.Style
	Badge     lipgloss.Style
	Favorite  lipgloss.Style
	Done      lipgloss.Style
	Section   lipgloss.Style
	Overlay   lipgloss.Style
	Error     lipgloss.Style
	Flash     lipgloss.Style
	Input     lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		App:       lipgloss.NewStyle().Padding(0, 1),
		Title:     lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		Tabs:      lipgloss.NewStyle().Foreground(colorMuted).PaddingRight(2),
		ActiveTab: lipgloss.NewStyle().Bold(true).Underline(true).Foreground(colorAccent).PaddingRight(2),
		Header:    lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(colorMuted),
		Row:       lipgloss.NewStyle().PaddingLeft(2),
		Selected:  lipgloss.NewStyle().PaddingLeft(1).BorderStyle(lipgloss.ThickBorder()).BorderLeft(true).BorderForeground(colorCursor),
		Muted:     lipgloss.NewStyle().Foreground(colorMuted),
		Price:     lipgloss.NewStyle().Bold(true),
		Struck:    lipgloss.NewStyle().Strikethrough(true).Foreground(colorMuted),
		Badge:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(colorSale).Padding(0, 1),
		Favorite:  lipgloss.NewStyle().Foreground(colorSale),
		Done:      lipgloss.NewStyle().Strikethrough(true).Foreground(colorMuted),
		Section:   lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		Overlay:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent).Padding(1, 2),
		Error:     lipgloss.NewStyle().Foreground(colorError),
		Flash:     lipgloss.NewStyle().Foreground(colorAccent).Italic(true),
		Input:     lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(colorMuted).Padding(0, 1),
	}
}
