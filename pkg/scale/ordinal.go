package scale

import "image/color"

// Category10 is the ten-colour categorical palette used for condition bars.
var Category10 = []color.RGBA{
	{0x1f, 0x77, 0xb4, 0xff},
	{0xff, 0x7f, 0x0e, 0xff},
	{0x2c, 0xa0, 0x2c, 0xff},
	{0xd6, 0x27, 0x28, 0xff},
	{0x94, 0x67, 0xbd, 0xff},
	{0x8c, 0x56, 0x4b, 0xff},
	{0xe3, 0x77, 0xc2, 0xff},
	{0x7f, 0x7f, 0x7f, 0xff},
	{0xbc, 0xbd, 0x22, 0xff},
	{0x17, 0xbe, 0xcf, 0xff},
}

// Ordinal assigns palette colours to keys in the order keys are first seen
// and keeps the assignment for its lifetime, so a condition keeps its colour
// across filter changes. The palette wraps when exhausted.
type Ordinal struct {
	palette  []color.RGBA
	assigned map[string]color.RGBA
	next     int
}

// NewOrdinal returns an ordinal scale over palette (Category10 when empty).
func NewOrdinal(palette []color.RGBA) *Ordinal {
	if len(palette) == 0 {
		palette = Category10
	}
	return &Ordinal{palette: palette, assigned: make(map[string]color.RGBA)}
}

// Color returns key's colour, assigning the next palette slot on first use.
func (o *Ordinal) Color(key string) color.RGBA {
	if c, ok := o.assigned[key]; ok {
		return c
	}
	c := o.palette[o.next%len(o.palette)]
	o.next++
	o.assigned[key] = c
	return c
}

// Hex formats a colour as #rrggbb.
func Hex(c color.RGBA) string {
	const digits = "0123456789abcdef"
	b := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i, v := range []uint8{c.R, c.G, c.B} {
		b[1+2*i] = digits[v>>4]
		b[2+2*i] = digits[v&0x0f]
	}
	return string(b)
}
