package terminal

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Draw lays the tree out and paints the screen. Each element node starts
// on its own row; its text children flow left to right with a single space
// between runs; nested elements stack below. Row spans are recorded on
// each node for click hit-testing.
func (t *Terminal) Draw() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Clear()
	width, height := t.screen.Size()
	bottom := drawNode(t.screen, t.root, 0, width, height, tcell.StyleDefault)
	t.root.top, t.root.bottom = 0, bottom
	t.screen.Show()
}

// drawNode paints one element node starting at row y and returns the row
// after its content.
func drawNode(screen tcell.Screen, n *termNode, y, width, height int, inherited tcell.Style) int {
	if y >= height {
		n.top, n.bottom = y, y
		return y
	}

	style := styleFor(n, inherited)
	n.top = y

	x := 0
	textDrawn := false
	row := y
	for _, c := range n.children {
		if c.isText {
			if x > 0 {
				x++
			}
			x = drawText(screen, c.text, x, row, width, style)
			c.top, c.bottom = row, row+1
			textDrawn = true
			continue
		}
		if textDrawn || x > 0 {
			// Text already occupies this row; children continue below.
			row++
			x = 0
			textDrawn = false
		}
		row = drawNode(screen, c, row, width, height, style)
	}
	if textDrawn || x > 0 || len(n.children) == 0 {
		row++
	}

	n.bottom = row
	return row
}

func drawText(screen tcell.Screen, text string, x, y, width int, style tcell.Style) int {
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if x+w > width {
			break
		}
		screen.SetContent(x, y, r, nil, style)
		x += w
	}
	return x
}

// styleFor resolves the node's style attributes over the inherited style.
func styleFor(n *termNode, inherited tcell.Style) tcell.Style {
	style := inherited
	if fg, ok := n.attrs["fg"].(string); ok {
		style = style.Foreground(tcell.GetColor(fg))
	}
	if bg, ok := n.attrs["bg"].(string); ok {
		style = style.Background(tcell.GetColor(bg))
	}
	if _, ok := n.attrs["bold"]; ok {
		style = style.Bold(true)
	}
	return style
}
