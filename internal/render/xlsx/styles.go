package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/anyulbade/quota-settlement/internal/layout"
)

// styleKey identifies one distinct cell appearance. Styles are created once
// per key and reused.
type styleKey struct {
	kind   layout.BlockKind
	style  layout.StyleToken
	banded bool
	bold   bool
	align  layout.Align
	format layout.Format
	size   float64
}

func keyFor(b layout.Block, c layout.PlacedCell) styleKey {
	return styleKey{
		kind:   b.Kind,
		style:  b.Style,
		banded: b.Banded,
		bold:   c.Bold,
		align:  c.Align,
		format: c.Format,
		size:   c.FontSize,
	}
}

func (w *writer) style(k styleKey) (int, error) {
	if id, ok := w.styles[k]; ok {
		return id, nil
	}
	id, err := w.f.NewStyle(styleFor(k))
	if err != nil {
		return 0, fmt.Errorf("create style: %w", err)
	}
	w.styles[k] = id
	return id, nil
}

func styleFor(k styleKey) *excelize.Style {
	theme := k.style.Theme()
	s := &excelize.Style{
		Font: &excelize.Font{
			Family: fontFamily,
			Size:   k.size,
			Bold:   k.bold,
			Color:  layout.Black.Hex(),
		},
		Alignment: &excelize.Alignment{
			Horizontal: horizontal(k.align),
			Vertical:   "center",
			Indent:     indent(k.align),
		},
	}
	if f := numFmt(k.format); f != "" {
		s.CustomNumFmt = &f
	}

	switch k.kind {
	case layout.BlockTitle:
		s.Font.Color = theme.Accent.Hex()
		s.Border = []excelize.Border{{Type: "bottom", Color: theme.Accent.Hex(), Style: 2}}
	case layout.BlockHeader:
		s.Font.Color = theme.HeaderText.Hex()
		s.Fill = solid(theme.HeaderFill)
		s.Border = box(theme.Border)
	case layout.BlockRow:
		if k.banded {
			s.Fill = solid(theme.BandFill)
		}
		s.Border = box(theme.Border)
	case layout.BlockTotals:
		s.Font.Color = theme.TotalsText.Hex()
		s.Fill = solid(theme.TotalsFill)
		s.Border = box(theme.Border)
	case layout.BlockStamp:
		s.Font.Color = layout.Grey.Hex()
	}
	return s
}

func solid(c layout.Color) excelize.Fill {
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{c.Hex()}}
}

func box(c layout.Color) []excelize.Border {
	out := make([]excelize.Border, 0, 4)
	for _, side := range []string{"left", "top", "right", "bottom"} {
		out = append(out, excelize.Border{Type: side, Color: c.Hex(), Style: 1})
	}
	return out
}

func horizontal(a layout.Align) string {
	switch a {
	case layout.AlignRight:
		return "right"
	case layout.AlignCenter:
		return "center"
	}
	return "left"
}

func indent(a layout.Align) int {
	if a == layout.AlignLeft {
		return 1
	}
	return 0
}

// numFmt matches the text the layout engine produces for each numeric format.
func numFmt(f layout.Format) string {
	switch f {
	case layout.FormatIndex:
		return "0"
	case layout.FormatInteger:
		return "#,##0"
	case layout.FormatTons, layout.FormatRate:
		return "#,##0.000"
	case layout.FormatMoney:
		return "#,##0.00"
	case layout.FormatPercent:
		return `#,##0.00"%"`
	case layout.FormatShare:
		return `#,##0.0000"%"`
	}
	return ""
}
