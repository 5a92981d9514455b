package tui

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/recera/graphscope/pkg/scope"
	"github.com/recera/graphscope/pkg/viewport"
)

// Style definitions
var (
	// Colors
	primaryColor   = lipgloss.Color("#3b82f6")
	secondaryColor = lipgloss.Color("#64748b")
	scopeColor     = lipgloss.Color("#f59e0b")
	errorColor     = lipgloss.Color("#ef4444")
	mutedColor     = lipgloss.Color("#94a3b8")

	mainPaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor)

	thumbPaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(secondaryColor)

	scopeStyle = lipgloss.NewStyle().
			Foreground(scopeColor).
			Bold(true)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)
)

const fullHelpRows = 4

func (m Model) footerRows() int {
	if m.help.ShowAll {
		return 1 + fullHelpRows
	}
	return 2
}

// View implements tea.Model
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	mainLines := m.paneLines(paneMain)
	thumbLines := m.paneLines(paneThumb)
	if rect, ok := m.sess.Scope(); ok && thumbLines != nil {
		thumbLines = overlayScope(thumbLines, scopeCells(rect, m.lay.thumbCols, m.lay.thumbRows))
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		mainPaneStyle.Width(m.lay.mainCols).Height(m.lay.mainRows).Render(strings.Join(mainLines, "\n")),
		thumbPaneStyle.Width(m.lay.thumbCols).Height(m.lay.thumbRows).Render(strings.Join(thumbLines, "\n")),
	)
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatus(), m.help.View(m.keys))
}

// paneLines samples the raster through the pane's adapter
func (m Model) paneLines(p pane) []string {
	cols, rows := m.lay.size(p)
	if m.image == nil || !m.sess.Ready() {
		return blank(cols, rows)
	}
	a := m.sess.Main()
	if p == paneThumb {
		a = m.sess.Thumb()
	}
	lines := m.image.Sample(viewport.StateOf(a), cols, rows)
	if lines == nil {
		return blank(cols, rows)
	}
	return lines
}

func (m Model) renderStatus() string {
	var parts []string
	if m.loading {
		parts = append(parts, m.spinner.View()+" loading")
	}
	parts = append(parts, titleStyle.Render(filepath.Base(m.path)))

	if m.sess.Ready() {
		if main := m.mainSurface(); main != nil {
			parts = append(parts, fmt.Sprintf("zoom %.2fx", main.Zoom()))
		}
		if rect, ok := m.sess.Scope(); ok {
			parts = append(parts, mutedStyle.Render(fmt.Sprintf("scope %.0f,%.0f %.0fx%.0f", rect.X, rect.Y, rect.Width, rect.Height)))
		}
		if m.sess.Capturing() {
			parts = append(parts, scopeStyle.Render("dragging"))
		}
	}
	if m.reloads > 0 {
		parts = append(parts, mutedStyle.Render(fmt.Sprintf("reloaded %d", m.reloads)))
	}
	if m.err != nil {
		parts = append(parts, errorStyle.Render(m.err.Error()))
	}
	return strings.Join(parts, "  ")
}

func blank(cols, rows int) []string {
	lines := make([]string, rows)
	for i := range lines {
		lines[i] = strings.Repeat(" ", cols)
	}
	return lines
}

// cellRect is an inclusive range of cells
type cellRect struct {
	c0, r0, c1, r1 int
}

// scopeCells converts a scope rectangle in thumbnail pixels to the cells it
// covers, clipped to the pane
func scopeCells(r scope.Rect, cols, rows int) cellRect {
	c := cellRect{
		c0: int(math.Floor(r.X / cellWidth)),
		r0: int(math.Floor(r.Y / cellHeight)),
		c1: int(math.Ceil((r.X+r.Width)/cellWidth)) - 1,
		r1: int(math.Ceil((r.Y+r.Height)/cellHeight)) - 1,
	}
	c.c0 = min(max(c.c0, 0), cols-1)
	c.r0 = min(max(c.r0, 0), rows-1)
	c.c1 = min(max(c.c1, c.c0), cols-1)
	c.r1 = min(max(c.r1, c.r0), rows-1)
	return c
}

// overlayScope draws the frame of c over lines
func overlayScope(lines []string, c cellRect) []string {
	out := make([]string, len(lines))
	for row, line := range lines {
		if row < c.r0 || row > c.r1 {
			out[row] = line
			continue
		}
		cells := []byte(line)
		var b strings.Builder
		for col := 0; col < len(cells); col++ {
			if ch, ok := frameGlyph(c, col, row); ok {
				b.WriteString(scopeStyle.Render(string(ch)))
				continue
			}
			b.WriteByte(cells[col])
		}
		out[row] = b.String()
	}
	return out
}

func frameGlyph(c cellRect, col, row int) (byte, bool) {
	if col < c.c0 || col > c.c1 {
		return 0, false
	}
	edgeRow := row == c.r0 || row == c.r1
	edgeCol := col == c.c0 || col == c.c1
	switch {
	case edgeRow && edgeCol:
		return '+', true
	case edgeRow:
		return '-', true
	case edgeCol:
		return '|', true
	}
	return 0, false
}
