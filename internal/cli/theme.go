package cli

import "github.com/charmbracelet/lipgloss"

// Theme defines the Sky Blue color palette shared by both tools
var Theme = struct {
	Primary lipgloss.Color // Main brand color (Sky Blue 400) #38BDF8

	// Semantic colors
	Success lipgloss.Color // Emerald 400 #34D399
	Error   lipgloss.Color // Rose 400 #FB7185
	Warning lipgloss.Color // Amber 400 #FBBF24

	TextSubtle lipgloss.Color // Muted text (Slate 400) #94A3B8

	// Progress bar gradient
	BarStart string
	BarEnd   string
}{
	Primary: lipgloss.Color("#38BDF8"), // Sky Blue 400

	Success: lipgloss.Color("#34D399"), // Emerald 400
	Error:   lipgloss.Color("#FB7185"), // Rose 400
	Warning: lipgloss.Color("#FBBF24"), // Amber 400

	TextSubtle: lipgloss.Color("#94A3B8"), // Slate 400

	BarStart: "#0EA5E9", // Sky Blue 500
	BarEnd:   "#34D399", // Emerald 400
}

var (
	titleStyle   = lipgloss.NewStyle().Foreground(Theme.Primary).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(Theme.Success)
	errorStyle   = lipgloss.NewStyle().Foreground(Theme.Error)
	warningStyle = lipgloss.NewStyle().Foreground(Theme.Warning)
	mutedStyle   = lipgloss.NewStyle().Foreground(Theme.TextSubtle)
)

func Title(s string) string   { return titleStyle.Render(s) }
func Success(s string) string { return successStyle.Render(s) }
func Error(s string) string   { return errorStyle.Render(s) }
func Warning(s string) string { return warningStyle.Render(s) }
func Muted(s string) string   { return mutedStyle.Render(s) }
