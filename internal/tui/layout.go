package tui

import (
	"math"

	"github.com/recera/graphscope/pkg/viewport"
)

type pane int

const (
	paneNone pane = iota
	paneMain
	paneThumb
)

// layout holds pane sizes in cells. Each pane has a one-cell border; the
// main pane's content starts at (1, 1) and the thumbnail sits to its right.
type layout struct {
	mainCols, mainRows   int
	thumbCols, thumbRows int
}

const minThumbColumns = 4

func computeLayout(width, height, thumbColumns, footer int, vb viewport.Size) layout {
	var l layout

	l.thumbCols = thumbColumns
	if l.thumbCols > width/3 {
		l.thumbCols = width / 3
	}
	if l.thumbCols < minThumbColumns {
		l.thumbCols = minThumbColumns
	}

	l.mainRows = max(height-2-footer, 1)
	l.mainCols = max(width-(l.thumbCols+2)-2, 1)

	// keep the thumbnail at the document's aspect ratio
	if vb.Empty() {
		l.thumbRows = l.thumbCols / 4
	} else {
		px := float64(l.thumbCols*cellWidth) * vb.Height / vb.Width
		l.thumbRows = int(math.Round(px / cellHeight))
	}
	l.thumbRows = min(max(l.thumbRows, 1), l.mainRows)
	return l
}

func (l layout) size(p pane) (cols, rows int) {
	switch p {
	case paneMain:
		return l.mainCols, l.mainRows
	case paneThumb:
		return l.thumbCols, l.thumbRows
	}
	return 0, 0
}

func (l layout) origin(p pane) (x, y int) {
	if p == paneThumb {
		return l.mainCols + 3, 1
	}
	return 1, 1
}

// container returns a pane's container size in pixels
func (l layout) container(p pane) viewport.Size {
	cols, rows := l.size(p)
	return viewport.Size{Width: float64(cols * cellWidth), Height: float64(rows * cellHeight)}
}

// hit returns the pane whose content contains the cell (x, y)
func (l layout) hit(x, y int) pane {
	for _, p := range []pane{paneMain, paneThumb} {
		ox, oy := l.origin(p)
		cols, rows := l.size(p)
		if x >= ox && x < ox+cols && y >= oy && y < oy+rows {
			return p
		}
	}
	return paneNone
}

// point maps a cell to the pixel at its center, relative to p's container.
// Cells outside the pane map outside the container.
func (l layout) point(p pane, x, y int) viewport.Point {
	ox, oy := l.origin(p)
	return viewport.Point{
		X: (float64(x-ox) + 0.5) * cellWidth,
		Y: (float64(y-oy) + 0.5) * cellHeight,
	}
}
