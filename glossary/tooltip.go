package glossary

// Tooltip is the single shared tooltip element. There is one instance per
// overlay, repositioned and refilled on each hover.
type Tooltip struct {
	Visible bool
	TermID  string
	Markup  string
	X, Y    int
}

// Tooltip placement relative to the pointer, and the box size used for
// viewport clamping.
const (
	tooltipOffsetX = 2
	tooltipOffsetY = 1
	TooltipWidth   = 44
	TooltipHeight  = 8
)

// Hover shows the tooltip for a term near the pointer position, clamped to
// the viewport. Returns false when the term has no cached definition or is
// not linked from the current fragment; the tooltip is left hidden.
func (o *Overlay) Hover(termID string, x, y, viewportW, viewportH int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.fetched || !o.links[termID] {
		return false
	}
	markup, ok := o.index[termID]
	if !ok {
		return false
	}

	px, py := clamp(x+tooltipOffsetX, y+tooltipOffsetY, viewportW, viewportH)
	o.tooltip = Tooltip{
		Visible: true,
		TermID:  termID,
		Markup:  markup,
		X:       px,
		Y:       py,
	}
	return true
}

// Move repositions the visible tooltip as the pointer moves.
func (o *Overlay) Move(x, y, viewportW, viewportH int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.tooltip.Visible {
		return
	}
	o.tooltip.X, o.tooltip.Y = clamp(x+tooltipOffsetX, y+tooltipOffsetY, viewportW, viewportH)
}

// Leave hides the tooltip when the pointer leaves the link.
func (o *Overlay) Leave() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.tooltip = Tooltip{}
}

// Click closes the tooltip. Returns the term id that was showing, so the
// router can silently replace the current history hash.
func (o *Overlay) Click() (termID string, closed bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.tooltip.Visible {
		return "", false
	}
	termID = o.tooltip.TermID
	o.tooltip = Tooltip{}
	return termID, true
}

// Current returns a copy of the shared tooltip state.
func (o *Overlay) Current() Tooltip {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.tooltip
}

// clamp keeps the tooltip box inside the viewport edges.
func clamp(x, y, viewportW, viewportH int) (int, int) {
	if x+TooltipWidth > viewportW {
		x = viewportW - TooltipWidth
	}
	if x < 0 {
		x = 0
	}
	if y+TooltipHeight > viewportH {
		y = viewportH - TooltipHeight
	}
	if y < 0 {
		y = 0
	}
	return x, y
}
