package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Teal and amber on both backgrounds.
	colorPrimary   = lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#2DD4BF"}
	colorSecondary = lipgloss.AdaptiveColor{Light: "#3D3D3D", Dark: "#ABABAB"}
	colorDim       = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorAccent    = lipgloss.AdaptiveColor{Light: "#F59E0B", Dark: "#F59E0B"}
	colorBorder    = lipgloss.AdaptiveColor{Light: "#DBDBDB", Dark: "#383838"}
	colorActiveBdr = lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#2DD4BF"}
	colorTabActive = lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#2DD4BF"}
	colorTabBg     = lipgloss.AdaptiveColor{Light: "#EEEEEE", Dark: "#1F2A2E"}
	colorStatusBg  = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#132226"}
	colorStatusFg  = lipgloss.AdaptiveColor{Light: "#3D3D3D", Dark: "#ABABAB"}
	colorGreen     = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"}
	colorSurface   = lipgloss.AdaptiveColor{Light: "#F4F4F4", Dark: "#182024"}

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			PaddingLeft(1)

	listPaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)

	listPaneActiveStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorActiveBdr)

	previewPaneStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorBorder)

	previewPaneActiveStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorActiveBdr)

	itemStaleStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true)

	itemTitleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	itemSelectedStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	itemCategoryStyle = lipgloss.NewStyle().
				Foreground(colorGreen)

	itemTimeStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	previewTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorPrimary).
				MarginBottom(1)

	previewCategoryStyle = lipgloss.NewStyle().
				Foreground(colorGreen).
				MarginBottom(1)

	previewBodyStyle = lipgloss.NewStyle().
				Foreground(colorSecondary)

	previewLinkStyle = lipgloss.NewStyle().
				Foreground(colorDim).
				Italic(true).
				MarginTop(1)

	tabActiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(colorTabActive).
			Padding(0, 1).
			Bold(true)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(colorSecondary).
				Background(colorTabBg).
				Padding(0, 1)

	tabSeparatorStyle = lipgloss.NewStyle().
				Foreground(colorDim)

	domainTabStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			PaddingLeft(1)

	domainTabActiveStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true).
				PaddingLeft(1)

	statusBarStyle = lipgloss.NewStyle().
			Background(colorStatusBg).
			Foreground(colorStatusFg).
			PaddingLeft(1).
			PaddingRight(1)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	searchPromptStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	helpDimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	helpCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 3)
)
