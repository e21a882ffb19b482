package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/stylequiz/internal/ui/theme"
)

const bannerArt = `
 ███████╗████████╗██╗   ██╗██╗     ███████╗ ██████╗ ██╗   ██╗██╗███████╗
 ██╔════╝╚══██╔══╝╚██╗ ██╔╝██║     ██╔════╝██╔═══██╗██║   ██║██║╚══███╔╝
 ███████╗   ██║    ╚████╔╝ ██║     █████╗  ██║   ██║██║   ██║██║  ███╔╝
 ╚════██║   ██║     ╚██╔╝  ██║     ██╔══╝  ██║▄▄ ██║██║   ██║██║ ███╔╝
 ███████║   ██║      ██║   ███████╗███████╗╚██████╔╝╚██████╔╝██║███████╗
 ╚══════╝   ╚═╝      ╚═╝   ╚══════╝╚══════╝ ╚══▀▀═╝  ╚═════╝ ╚═╝╚══════╝`

const bannerCompact = "S T Y L E Q U I Z"

// bannerMinWidth is the narrowest terminal that fits the full banner.
const bannerMinWidth = 76

// RenderBanner returns the STYLEQUIZ banner styled in the primary color,
// falling back to a compact form on narrow terminals.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < bannerMinWidth {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
