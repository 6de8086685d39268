package style

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/rescp17/mailingDashboard/pkg/notify"
	"github.com/rescp17/mailingDashboard/pkg/upload"
)

// --- Reusable Colors ---
var (
	colorPink      = lipgloss.Color("205")
	colorDarkGray  = lipgloss.Color("240")
	colorLightGray = lipgloss.Color("229")
	colorBlue      = lipgloss.Color("57")
	colorCyan      = lipgloss.Color("212")
	colorPurple    = lipgloss.Color("99")
	colorRed       = lipgloss.Color("196")
	colorGreen     = lipgloss.Color("42")
	colorYellow    = lipgloss.Color("220")
)

// --- General Purpose Styles ---
var (
	ErrorStyle   = lipgloss.NewStyle().Foreground(colorRed)
	SuccessStyle = lipgloss.NewStyle().Foreground(colorGreen)
	MutedStyle   = lipgloss.NewStyle().Foreground(colorDarkGray)
)

// --- Dashboard Styles ---
var (
	BaseStyle          = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(colorDarkGray)
	HighlightFontStyle = lipgloss.NewStyle().Foreground(colorCyan)
	ZoneTitleStyle     = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	CostsStyle         = lipgloss.NewStyle().Padding(0, 1).Foreground(colorLightGray)
)

// --- File Picker Styles ---
var (
	DocStyle      = lipgloss.NewStyle().Margin(1, 2)
	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorPink)
	CursorStyle   = lipgloss.NewStyle().Foreground(colorCyan).SetString("> ")
	NoCursorStyle = lipgloss.NewStyle().SetString("  ")
	DirStyle      = lipgloss.NewStyle().Foreground(colorPurple)
	FileStyle     = lipgloss.NewStyle().Foreground(colorLightGray)
	CSVStyle      = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	HelpStyle     = lipgloss.NewStyle().Faint(true)
	HeaderStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
)

// PhaseColor is the border colour of an upload zone in phase.
func PhaseColor(phase upload.Phase) lipgloss.Color {
	switch phase {
	case upload.PhaseSelected:
		return colorCyan
	case upload.PhaseEncoding, upload.PhaseSubmitting:
		return colorYellow
	case upload.PhaseSucceeded:
		return colorGreen
	case upload.PhaseFailed:
		return colorRed
	default:
		return colorDarkGray
	}
}

// ZoneStyle is the box of one region's upload zone.
func ZoneStyle(phase upload.Phase, focused, dragging bool) lipgloss.Style {
	border := lipgloss.RoundedBorder()
	if focused {
		border = lipgloss.ThickBorder()
	}
	if dragging {
		border = lipgloss.DoubleBorder()
	}
	s := lipgloss.NewStyle().
		Border(border).
		BorderForeground(PhaseColor(phase)).
		Padding(0, 1)
	if dragging {
		s = s.BorderForeground(colorBlue)
	}
	return s
}

// ToastStyle colours a notification by level.
func ToastStyle(level notify.Level) lipgloss.Style {
	s := lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.NormalBorder(), false, false, false, true)
	switch level {
	case notify.LevelSuccess:
		return s.BorderForeground(colorGreen).Foreground(colorGreen)
	case notify.LevelError:
		return s.BorderForeground(colorRed).Foreground(colorRed)
	default:
		return s.BorderForeground(colorCyan)
	}
}

// --- Common Components ---

// NewSpinner creates a spinner with a consistent style.
func NewSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorPink)
	return s
}

// NewTableStyles returns the default styles for tables, with our custom selection style.
func NewTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Selected = styles.Selected.Foreground(colorLightGray).Background(colorBlue).Bold(false)
	return styles
}
