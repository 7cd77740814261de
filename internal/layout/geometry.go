package layout

import (
	"errors"
	"fmt"
)

var ErrGeometry = errors.New("invalid page geometry")

// Geometry describes a fixed page in millimetres plus the fixed heights of
// every block kind. Font sizes are in points.
type Geometry struct {
	PageWidth    float64
	PageHeight   float64
	MarginTop    float64
	MarginBottom float64
	MarginLeft   float64
	MarginRight  float64

	LetterheadHeight float64
	LogoWidth        float64
	TitleHeight      float64
	HeaderHeight     float64
	RowHeight        float64
	TotalsHeight     float64
	StampHeight      float64
	SectionGap       float64
	CellPadding      float64

	FontSize        float64
	HeaderFontSize  float64
	TitleFontSize   float64
	CompanyFontSize float64
}

// A4 is the portrait geometry used by both backends.
func A4() Geometry {
	return Geometry{
		PageWidth:    210,
		PageHeight:   297,
		MarginTop:    10,
		MarginBottom: 10,
		MarginLeft:   10,
		MarginRight:  10,

		LetterheadHeight: 26,
		LogoWidth:        28,
		TitleHeight:      8,
		HeaderHeight:     7,
		RowHeight:        5.5,
		TotalsHeight:     6.5,
		StampHeight:      6,
		SectionGap:       4,
		CellPadding:      1.2,

		FontSize:        7.5,
		HeaderFontSize:  7.5,
		TitleFontSize:   10,
		CompanyFontSize: 12,
	}
}

func (g Geometry) ContentWidth() float64 {
	return g.PageWidth - g.MarginLeft - g.MarginRight
}

// contentTop is the first usable y below the letterhead.
func (g Geometry) contentTop() float64 {
	return g.MarginTop + g.LetterheadHeight
}

// contentBottom is the lowest y a block may reach; the stamp sits below it.
func (g Geometry) contentBottom() float64 {
	return g.PageHeight - g.MarginBottom - g.StampHeight
}

// UsableHeight is the vertical space available to sections on one page.
func (g Geometry) UsableHeight() float64 {
	return g.contentBottom() - g.contentTop()
}

// sectionHeadroom is the space a section needs before it may start on the
// current page: its title, its column header and one row.
func (g Geometry) sectionHeadroom() float64 {
	return g.TitleHeight + g.HeaderHeight + g.RowHeight
}

func (g Geometry) Validate() error {
	if g.PageWidth <= 0 || g.PageHeight <= 0 {
		return fmt.Errorf("%w: page size %.1fx%.1f", ErrGeometry, g.PageWidth, g.PageHeight)
	}
	if g.ContentWidth() <= 0 {
		return fmt.Errorf("%w: no horizontal space", ErrGeometry)
	}
	for _, h := range []float64{g.TitleHeight, g.HeaderHeight, g.RowHeight, g.TotalsHeight} {
		if h <= 0 {
			return fmt.Errorf("%w: block heights must be positive", ErrGeometry)
		}
	}
	need := g.TitleHeight + g.HeaderHeight + max(g.RowHeight, g.TotalsHeight)
	if need > g.UsableHeight() {
		return fmt.Errorf("%w: %.1fmm needed for one section, %.1fmm usable", ErrGeometry, need, g.UsableHeight())
	}
	return nil
}

// Measurer reports the rendered width, in millimetres, of s at a font size
// in points.
type Measurer interface {
	TextWidth(s string, size float64, bold bool) float64
}
