package tui

import "github.com/charmbracelet/lipgloss"

// Theme holds the styles the views render with.
type Theme struct {
	Drawer      lipgloss.Style
	DrawerTitle lipgloss.Style
	Card        lipgloss.Style
	CardTitle   lipgloss.Style
	Item        lipgloss.Style
	Checked     lipgloss.Style
	Selected    lipgloss.Style
	Local       lipgloss.Style
	Modal       lipgloss.Style
	ModalTitle  lipgloss.Style
	Error       lipgloss.Style
	Alert       lipgloss.Style
	Footer      lipgloss.Style
}

// DefaultTheme is a blue drawer next to a white card.
var DefaultTheme = Theme{
	Drawer:      lipgloss.NewStyle().Background(lipgloss.Color("33")).Foreground(lipgloss.Color("231")).Bold(true).Padding(0, 1),
	DrawerTitle: lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Bold(true),
	Card:        lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("246")).Padding(0, 1).Margin(0, 1),
	CardTitle:   lipgloss.NewStyle().Bold(true).MarginBottom(1),
	Item:        lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	Checked:     lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Strikethrough(true),
	Selected:    lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true),
	Local:       lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	Modal:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("33")).Padding(1, 2).Width(50),
	ModalTitle:  lipgloss.NewStyle().Bold(true).Align(lipgloss.Center).Width(46).MarginBottom(1),
	Error:       lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	Alert:       lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("160")).Bold(true).Padding(0, 1),
	Footer:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
}
