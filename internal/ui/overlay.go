package ui

import (
	"github.com/charmbracelet/lipgloss/v2"
)

// overlay draws box centred over base.
func overlay(base, box string) string {
	x := max((lipgloss.Width(base)-lipgloss.Width(box))/2, 0)
	y := max((lipgloss.Height(base)-lipgloss.Height(box))/2, 0)

	canvas := lipgloss.NewCanvas(
		lipgloss.NewLayer(base).X(0).Y(0).Z(0),
		lipgloss.NewLayer(box).X(x).Y(y).Z(1),
	)
	return canvas.Render()
}
