package ui

import "github.com/charmbracelet/lipgloss"

// Colors used throughout the TUI.
var (
	ColorRed     = lipgloss.Color("#FF0000")
	ColorGreen   = lipgloss.Color("#00FF00")
	ColorYellow  = lipgloss.Color("#FFFF00")
	ColorCyan    = lipgloss.Color("#00FFFF")
	ColorGray    = lipgloss.Color("#666666")
	ColorDimGray = lipgloss.Color("#444444")
	ColorWhite   = lipgloss.Color("#FFFFFF")
	ColorMagenta = lipgloss.Color("#FF00FF")
)

// Base styles reused by UI components.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorCyan)

	RecordingDotStyle = lipgloss.NewStyle().
				Foreground(ColorRed).
				Bold(true)

	IdleDotStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	LockedBadgeStyle = lipgloss.NewStyle().
				Foreground(ColorMagenta).
				Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	WarningTextStyle = lipgloss.NewStyle().
				Foreground(ColorYellow)

	TimestampStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	PanelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorCyan).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	DividerStyle = lipgloss.NewStyle().
			Foreground(ColorDimGray)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta)

	// Record pad button, by state.
	PadIdleStyle = lipgloss.NewStyle().
			Foreground(ColorCyan).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray).
			Padding(0, 1)

	PadRecordingStyle = lipgloss.NewStyle().
				Foreground(ColorRed).
				Bold(true).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorRed).
				Padding(0, 1)

	PadCancelStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorYellow).
			Padding(0, 1)

	PadLockedStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMagenta).
			Padding(0, 1)

	HintStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			Italic(true)

	SavedStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)
)
