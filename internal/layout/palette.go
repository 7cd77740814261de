package layout

import "fmt"

type Color struct {
	R, G, B uint8
}

func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// StyleToken names one entry of the fixed report palette.
type StyleToken int

const (
	StyleQuota StyleToken = iota
	StyleProgress
	StyleLanding
	StyleDeduction
	StyleSummary
)

type Theme struct {
	Accent     Color
	HeaderFill Color
	HeaderText Color
	BandFill   Color
	TotalsFill Color
	TotalsText Color
	Border     Color
}

var (
	Black = Color{0, 0, 0}
	White = Color{255, 255, 255}
	Grey  = Color{110, 110, 110}
)

var palette = map[StyleToken]Theme{
	StyleQuota: {
		Accent:     Color{31, 78, 121},
		HeaderFill: Color{31, 78, 121},
		HeaderText: White,
		BandFill:   Color{234, 241, 248},
		TotalsFill: Color{189, 215, 238},
		TotalsText: Black,
		Border:     Color{155, 180, 205},
	},
	StyleProgress: {
		Accent:     Color{84, 96, 110},
		HeaderFill: Color{84, 96, 110},
		HeaderText: White,
		BandFill:   Color{240, 242, 244},
		TotalsFill: Color{214, 219, 224},
		TotalsText: Black,
		Border:     Color{170, 178, 186},
	},
	StyleLanding: {
		Accent:     Color{56, 118, 29},
		HeaderFill: Color{56, 118, 29},
		HeaderText: White,
		BandFill:   Color{236, 245, 231},
		TotalsFill: Color{198, 224, 180},
		TotalsText: Black,
		Border:     Color{160, 196, 140},
	},
	StyleDeduction: {
		Accent:     Color{191, 87, 0},
		HeaderFill: Color{191, 87, 0},
		HeaderText: White,
		BandFill:   Color{252, 238, 226},
		TotalsFill: Color{248, 203, 173},
		TotalsText: Black,
		Border:     Color{230, 170, 130},
	},
	StyleSummary: {
		Accent:     Color{32, 32, 64},
		HeaderFill: Color{32, 32, 64},
		HeaderText: White,
		BandFill:   Color{238, 238, 245},
		TotalsFill: Color{255, 230, 153},
		TotalsText: Black,
		Border:     Color{150, 150, 175},
	},
}

func (s StyleToken) Theme() Theme {
	if t, ok := palette[s]; ok {
		return t
	}
	return palette[StyleSummary]
}
