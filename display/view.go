package display

import (
	"tachometer/core"
	"tachometer/ride"
)

// Line is one text item on a screen
type Line struct {
	Row    uint8
	Text   string
	MaxLen int
	Large  bool
}

// Screen is the full content of one redraw
type Screen struct {
	Lines []Line
}

// View returns the screen for the current mode
func (c *Controller) View(s ride.Strings) Screen {
	return ViewFor(c.mode, s)
}

// ViewFor builds the screen for mode m from the formatted statistics
func ViewFor(m Mode, s ride.Strings) Screen {
	switch m {
	case Speed:
		return single("SPEED:", 6, s.Speed, "km/h", 4)
	case Distance:
		return single("DISTANCE:", 10, s.Distance, "kilometres", 11)
	case AvgSpeed:
		return single("AVERAGE SPEED:", 15, s.Avg, "km/h", 4)
	default:
		return Screen{Lines: []Line{
			{Row: 1, Text: s.SpeedLine, MaxLen: 20},
			{Row: 3, Text: s.AvgLine, MaxLen: 20},
			{Row: 5, Text: s.DistanceLine, MaxLen: 20},
			{Row: 7, Text: s.TimeLine, MaxLen: 20},
		}}
	}
}

func single(title string, titleLen int, value, unit string, unitLen int) Screen {
	return Screen{Lines: []Line{
		{Row: 1, Text: title, MaxLen: titleLen},
		{Row: 3, Text: value, MaxLen: 10, Large: true},
		{Row: 6, Text: unit, MaxLen: unitLen},
	}}
}

// Draw clears the renderer, writes every line and flushes the frame
func (sc Screen) Draw(r core.Renderer) error {
	r.Clear()
	for _, l := range sc.Lines {
		if l.Large {
			r.DisplayTextLarge(l.Row, l.Text, l.MaxLen)
		} else {
			r.DisplayText(l.Row, l.Text, l.MaxLen)
		}
	}
	return r.Flush()
}
