package display

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"

	"tachometer/core"
)

// Text rows are 8-pixel pages; y offsets are font baselines
const (
	RowHeight      = 8
	normalBaseline = 6
	largeBaseline  = 22
)

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// Panel is a pixel display with an off-screen buffer, such as *ssd1306.Device
type Panel interface {
	drivers.Displayer
	ClearBuffer()
}

// TextRenderer implements core.Renderer by drawing tinyfont glyphs on a Panel
type TextRenderer struct {
	panel Panel
	small tinyfont.Fonter
	large tinyfont.Fonter
}

// NewTextRenderer creates a renderer using small for normal rows and large
// for single-statistic values
func NewTextRenderer(panel Panel, small, large tinyfont.Fonter) *TextRenderer {
	return &TextRenderer{panel: panel, small: small, large: large}
}

func (r *TextRenderer) Clear() {
	r.panel.ClearBuffer()
}

func (r *TextRenderer) DisplayText(row uint8, text string, maxLen int) {
	y := int16(row)*RowHeight + normalBaseline
	tinyfont.WriteLine(r.panel, r.small, 0, y, core.Truncate(text, maxLen), white)
}

func (r *TextRenderer) DisplayTextLarge(row uint8, text string, maxLen int) {
	y := int16(row)*RowHeight + largeBaseline
	tinyfont.WriteLine(r.panel, r.large, 0, y, core.Truncate(text, maxLen), white)
}

func (r *TextRenderer) Flush() error {
	return r.panel.Display()
}
