package banner

import (
	"github.com/charmbracelet/lipgloss"

	"fgharness/internal/tui/styles"
)

const ascii = `
  __       _                                  
 / _| __ _| |__   __ _ _ __ _ __   ___  ___ ___ 
| |_ / _' | '_ \ / _' | '__| '_ \ / _ \/ __/ __|
|  _| (_| | | | | (_| | |  | | | |  __/\__ \__ \
|_|  \__, |_| |_|\__,_|_|  |_| |_|\___||___/___/
     |___/                                      `

func GetString() string {
	style := lipgloss.DefaultRenderer().NewStyle().
		Foreground(styles.ColorBanner).
		Bold(true)

	return "\n" + style.Render(ascii) + "\n"
}
