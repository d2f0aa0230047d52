package output

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	bannerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	versionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func Banner(version string) string {
	art := `                 __  __                 __                __
    ____  ____ _/ /_/ /____  _________ / /_  __  ______  / /____  _____
   / __ \/ __ '/ __/ __/ _ \/ ___/ __ \/ __ \/ / / / __ \/ __/ _ \/ ___/
  / /_/ / /_/ / /_/ /_/  __/ /  / / / / / / / /_/ / / / / /_/  __/ /
 / .___/\__,_/\__/\__/\___/_/  /_/ /_/_/ /_/\__,_/_/ /_/\__/\___/_/
/_/`
	return fmt.Sprintf("%s\n%s\n", bannerStyle.Render(art), versionStyle.Render("version "+version))
}
