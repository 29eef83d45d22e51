package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the color scheme of the player.
type Theme struct {
	Name    string
	Title   lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Border  lipgloss.Color
	Playing lipgloss.Color
	Paused  lipgloss.Color
	Error   lipgloss.Color
	// Gradient endpoints for titles and the progress bar.
	From, To lipgloss.Color
}

var (
	ThemeOcean = Theme{
		Name:    "ocean",
		Title:   lipgloss.Color("#00a8cc"),
		Accent:  lipgloss.Color("#ffd700"),
		Text:    lipgloss.Color("#e0f0ff"),
		Muted:   lipgloss.Color("#4488aa"),
		Border:  lipgloss.Color("#22557a"),
		Playing: lipgloss.Color("#00ff88"),
		Paused:  lipgloss.Color("#ffcc00"),
		Error:   lipgloss.Color("#ff4444"),
		From:    lipgloss.Color("#0077be"),
		To:      lipgloss.Color("#00e5ff"),
	}

	ThemeCyberpunk = Theme{
		Name:    "cyberpunk",
		Title:   lipgloss.Color("#ff00ff"),
		Accent:  lipgloss.Color("#ffff00"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#666666"),
		Border:  lipgloss.Color("#444466"),
		Playing: lipgloss.Color("#00ff00"),
		Paused:  lipgloss.Color("#ff8800"),
		Error:   lipgloss.Color("#ff0000"),
		From:    lipgloss.Color("#ff00ff"),
		To:      lipgloss.Color("#00ffff"),
	}

	ThemeRetro = Theme{
		Name:    "retro",
		Title:   lipgloss.Color("#00ff00"),
		Accent:  lipgloss.Color("#88ff88"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
		Border:  lipgloss.Color("#007700"),
		Playing: lipgloss.Color("#88ff88"),
		Paused:  lipgloss.Color("#ffff00"),
		Error:   lipgloss.Color("#ff0000"),
		From:    lipgloss.Color("#005500"),
		To:      lipgloss.Color("#88ff88"),
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Title:   lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#0088ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
		Border:  lipgloss.Color("#555555"),
		Playing: lipgloss.Color("#00ff00"),
		Paused:  lipgloss.Color("#ffaa00"),
		Error:   lipgloss.Color("#ff0000"),
		From:    lipgloss.Color("#888888"),
		To:      lipgloss.Color("#ffffff"),
	}

	ThemeSunset = Theme{
		Name:    "sunset",
		Title:   lipgloss.Color("#ff6b6b"),
		Accent:  lipgloss.Color("#ff9ff3"),
		Text:    lipgloss.Color("#fff5f5"),
		Muted:   lipgloss.Color("#8b6b8c"),
		Border:  lipgloss.Color("#5a3b5c"),
		Playing: lipgloss.Color("#5fd068"),
		Paused:  lipgloss.Color("#ffc048"),
		Error:   lipgloss.Color("#ff4757"),
		From:    lipgloss.Color("#ff6b6b"),
		To:      lipgloss.Color("#feca57"),
	}

	Themes = []Theme{
		ThemeOcean,
		ThemeCyberpunk,
		ThemeRetro,
		ThemeMinimal,
		ThemeSunset,
	}
)

// GetTheme returns the named theme, or the first theme when the name is
// unknown.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

// NextTheme returns the theme after the named one, wrapping around.
func NextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
