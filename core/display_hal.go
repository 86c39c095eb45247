package core

// Renderer is the abstract text display interface used by the display views.
// Rows are 8-pixel text pages on a 128x64 panel (0-7).
type Renderer interface {
	// Clear blanks the frame
	Clear()

	// DisplayText writes text at a row using the normal font.
	// Text longer than maxLen is truncated.
	DisplayText(row uint8, text string, maxLen int)

	// DisplayTextLarge writes text at a row using the 3x font used on
	// single-statistic screens. A large line covers three rows.
	DisplayTextLarge(row uint8, text string, maxLen int)

	// Flush pushes the frame to the panel
	Flush() error
}

// Truncate returns at most maxLen bytes of s. A non-positive maxLen yields "".
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(s) > maxLen {
		return s[:maxLen]
	}
	return s
}
