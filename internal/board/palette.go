package board

import "image/color"

// Color is a named palette entry. Value is plain RGBA; gocv handles the
// BGR channel order internally.
type Color struct {
	Name  string
	Value color.RGBA
}

// The fixed drawing palette.
var (
	Red   = Color{Name: "Red", Value: color.RGBA{R: 255, A: 255}}
	Green = Color{Name: "Green", Value: color.RGBA{G: 255, A: 255}}
	Blue  = Color{Name: "Blue", Value: color.RGBA{B: 255, A: 255}}
	Black = Color{Name: "Black", Value: color.RGBA{A: 255}}
	White = Color{Name: "White", Value: color.RGBA{R: 255, G: 255, B: 255, A: 255}}
)

// Palette lists the selectable colors in swatch order.
var Palette = []Color{Red, Green, Blue, Black, White}

// ColorByName looks up a palette color by its name.
func ColorByName(name string) (Color, bool) {
	for _, c := range Palette {
		if c.Name == name {
			return c, true
		}
	}
	return Color{}, false
}
