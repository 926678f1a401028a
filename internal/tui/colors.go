package tui

// Color constants for the shed TUI theme
const (
	ColorBorder = "#3A3F55" // Grey-blue

	// Text Colors
	ColorPrimaryText   = "#E6EAF2" // Titles, values
	ColorSecondaryText = "#B1B8C7" // Labels, captions
	ColorDisabledText  = "#6D7383" // Empty values, paused clock
	ColorHelpText      = "240"     // Dark grey for help text

	// Accent Colors (Purple theme)
	ColorAccentMain   = "#7C3AED" // Logo, session number, borders
	ColorAccentBright = "#A78BFA" // Running clock, highlights

	// State Colors
	ColorError   = "#EF4444"
	ColorSuccess = "#22C55E"
	ColorWarning = "#F59E0B" // Paused header
)

// Heatmap shades, from no practice to two hours or more.
var heatColors = [...]string{
	"#2D2A3E",
	"#4C1D95",
	"#6D28D9",
	"#8B5CF6",
	"#C4B5FD",
}
