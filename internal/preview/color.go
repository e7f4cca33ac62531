package preview

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	hueStart = 236.0
	hueEnd   = 0.0
)

var (
	backgroundColor = color.RGBA{R: 0x10, G: 0x10, B: 0x14, A: 0xff}
	gridColor       = color.RGBA{R: 0x30, G: 0x30, B: 0x38, A: 0xff}
	pathColor       = color.RGBA{R: 0xa0, G: 0xa0, B: 0xa0, A: 0xff}
)

// stepColor maps a node position in the sequence to a hue running from blue
// (first) to red (last)
func stepColor(i, n int) color.Color {
	if n <= 1 {
		return colorful.Hsv(hueStart, 1, 0.90)
	}

	hue := hueStart - (hueStart-hueEnd)*float64(i)/float64(n-1)
	return colorful.Hsv(hue, 1, 0.90)
}
