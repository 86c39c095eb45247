//go:build rp2040 || rp2350

package main

import (
	"machine"
	"time"

	"tinygo.org/x/drivers/ssd1306"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"

	"tachometer/core"
	"tachometer/display"
)

// SSD1306 wiring on SPI0
const (
	oledSCK   = machine.GPIO18
	oledMOSI  = machine.GPIO19
	oledCS    = machine.GPIO17
	oledDC    = machine.GPIO20
	oledReset = machine.GPIO21

	oledWidth  = 128
	oledHeight = 64
	oledSPIHz  = 8000000
)

// NewOLEDRenderer configures SPI0 and the panel and returns a text
// renderer drawing on it
func NewOLEDRenderer() (*display.TextRenderer, error) {
	err := machine.SPI0.Configure(machine.SPIConfig{
		Frequency: oledSPIHz,
		SCK:       oledSCK,
		SDO:       oledMOSI,
		Mode:      0,
	})
	if err != nil {
		return nil, err
	}

	dev := ssd1306.NewSPI(machine.SPI0, oledDC, oledReset, oledCS)
	dev.Configure(ssd1306.Config{
		Width:  oledWidth,
		Height: oledHeight,
	})
	dev.ClearDisplay()

	return display.NewTextRenderer(dev, &tinyfont.TomThumb, &freemono.Bold18pt7b), nil
}

// splash shows the boot banner for a second
func splash(r core.Renderer) {
	r.Clear()
	r.DisplayText(2, "BICYCLE", 20)
	r.DisplayText(4, "TACHOMETER", 20)
	if err := r.Flush(); err != nil {
		core.ErrorPrintln("[display] splash flush failed: " + err.Error())
	}
	time.Sleep(time.Second)
}
