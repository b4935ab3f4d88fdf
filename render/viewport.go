package render

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Viewport is the visible window over the laid-out page.
type Viewport struct {
	Width  int
	Height int
	Scroll int // first visible line
}

// ScrollTo makes the given line the top of the viewport, clamped to the
// page's scroll range.
func (v *Viewport) ScrollTo(line, pageHeight int) {
	max := pageHeight - v.Height
	if max < 0 {
		max = 0
	}
	if line > max {
		line = max
	}
	if line < 0 {
		line = 0
	}
	v.Scroll = line
}

// ScrollTop scrolls the content region to the top.
func (v *Viewport) ScrollTop() {
	v.Scroll = 0
}

// Visible returns the page lines currently inside the viewport.
func (v *Viewport) Visible(p *Page) []string {
	if p == nil || v.Scroll >= len(p.Lines) {
		return nil
	}
	end := v.Scroll + v.Height
	if end > len(p.Lines) {
		end = len(p.Lines)
	}
	return p.Lines[v.Scroll:end]
}

// TerminalSize returns the current terminal dimensions.
func TerminalSize() (width, height int, err error) {
	ws, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, fmt.Errorf("getting terminal size: %w", err)
	}
	return int(ws.Col), int(ws.Row), nil
}
