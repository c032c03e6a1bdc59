package styles

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// Palette used by every command. Colors are fixed hex values.
const (
	ColorAccent  = "#7D56F4"
	ColorTitle   = "#FAFAFA"
	ColorSubtle  = "#6C7086"
	ColorNormal  = "#CDD6F4"
	ColorSuccess = "#A6E3A1"
	ColorError   = "#F38BA8"
	ColorWarning = "#F9E2AF"
)

var (
	// Card styles
	CardStyle lipgloss.Style
	CardWidth = 80

	// Text styles
	TitleStyle    lipgloss.Style
	SubtitleStyle lipgloss.Style
	LabelStyle    lipgloss.Style // For field labels like "Column:", "Board:"
	ValueStyle    lipgloss.Style
	SectionStyle  lipgloss.Style

	// Status styles
	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style

	// Board view
	ColumnStyle      lipgloss.Style
	ColumnTitleStyle lipgloss.Style
	ColumnWidth      = 24
)

func init() {
	CardStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorAccent)).
		Padding(1, 2).
		Width(CardWidth)

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorTitle))

	SubtitleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorSubtle))

	LabelStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorAccent))

	ValueStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorNormal))

	SectionStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccent)).
		Bold(true).
		MarginTop(1)

	SuccessStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorSuccess))

	ErrorStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorError))

	WarningStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorWarning))

	ColumnStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorSubtle)).
		Padding(0, 1).
		Width(ColumnWidth)

	ColumnTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorAccent))
}

// ═══════════════════════════════════════════════════════════════════
// HELPER FUNCTIONS
// ═══════════════════════════════════════════════════════════════════

// ColoredText renders text with a hex color
func ColoredText(text, hexColor string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(hexColor)).
		Render(text)
}

// BoldColoredText renders bold text with a hex color
func BoldColoredText(text, hexColor string) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(hexColor)).
		Render(text)
}

// Field renders a "Label: value" line.
func Field(label, value string) string {
	return LabelStyle.Render(label+":") + " " + ValueStyle.Render(value)
}

// RenderCard wraps content in a styled card border
func RenderCard(content string) string {
	return CardStyle.Render(content)
}

// BoardColumn is one column of a rendered board, cards in order.
type BoardColumn struct {
	Title string
	Cards []string
}

// RenderBoard lays the columns out side by side.
func RenderBoard(columns []BoardColumn) string {
	if len(columns) == 0 {
		return SubtitleStyle.Render("(no columns)")
	}

	rendered := make([]string, 0, len(columns))
	for _, col := range columns {
		var b strings.Builder
		b.WriteString(ColumnTitleStyle.Render(col.Title))
		if len(col.Cards) == 0 {
			b.WriteString("\n" + SubtitleStyle.Render("(empty)"))
		}
		for _, card := range col.Cards {
			b.WriteString("\n• " + ValueStyle.Render(card))
		}
		rendered = append(rendered, ColumnStyle.Render(b.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}
