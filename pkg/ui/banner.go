package ui

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
)

// DrawBanner prints the startup header: program name, provider/model in use
// and the workspace.
func (u *UI) DrawBanner(version, provider, model, workspace string) {
	borderColor := lipgloss.Color("39")
	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 2)

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))
	infoStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	home, _ := os.UserHomeDir()
	shownWorkspace := workspace
	if home != "" {
		if rel, err := filepath.Rel(home, workspace); err == nil && !filepath.IsAbs(rel) {
			shownWorkspace = filepath.Join("~", rel)
		}
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render(fmt.Sprintf("valet %s", version)),
		infoStyle.Render(fmt.Sprintf("%s • %s", provider, model)),
		infoStyle.Render(shownWorkspace),
	)

	fmt.Println(borderStyle.Render(content))
}
