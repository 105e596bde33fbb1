package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// overlayCentered draws card over the middle of base. Without a known
// terminal size the card is appended below base instead.
func overlayCentered(base, card string, width, height int) string {
	if width <= 0 || height <= 0 {
		return base + "\n\n" + card
	}
	cw, ch := lipgloss.Width(card), lipgloss.Height(card)
	x, y := max(0, (width-cw)/2), max(0, (height-ch)/2)

	rows := strings.Split(lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top, base), "\n")
	block := strings.Split(lipgloss.PlaceHorizontal(cw, lipgloss.Left, card), "\n")
	for i, line := range block {
		if y+i >= len(rows) {
			break
		}
		rows[y+i] = spliceRow(rows[y+i], line, x, cw)
	}
	return strings.Join(rows, "\n")
}

// spliceRow replaces w cells of row starting at cell at with insert, keeping
// the escape sequences on either side intact.
func spliceRow(row, insert string, at, w int) string {
	left := ansi.Truncate(row, at, "")
	if gap := at - lipgloss.Width(left); gap > 0 {
		left += strings.Repeat(" ", gap)
	}
	return left + insert + ansi.TruncateLeft(row, at+w, "")
}
