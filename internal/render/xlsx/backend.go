// Package xlsx writes a laid-out report document as a spreadsheet. The page
// layout is reproduced on a grid whose column boundaries are the union of
// every cell edge in the document; wider cells become merged ranges.
package xlsx

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"slices"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/anyulbade/quota-settlement/internal/layout"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	SheetName   = "Settlement"
	fontFamily  = "Arial"

	mmPerChar = 1.85
	ptPerMM   = 72 / 25.4
	pxPerMM   = 96 / 25.4
)

type Option func(*Backend)

func WithSheetName(name string) Option {
	return func(b *Backend) {
		b.sheet = name
	}
}

type Backend struct {
	sheet string
}

func New(opts ...Option) *Backend {
	b := &Backend{sheet: SheetName}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Backend) ContentType() string { return ContentType }

func (b *Backend) Extension() string { return "xlsx" }

func (b *Backend) Render(doc *layout.Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), b.sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	w := &writer{
		f:      f,
		sheet:  b.sheet,
		doc:    doc,
		grid:   gridOf(doc),
		styles: make(map[styleKey]int),
	}
	if err := w.setup(); err != nil {
		return nil, err
	}
	if err := w.pages(); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// gridOf collects the sorted distinct x positions of every cell edge.
func gridOf(doc *layout.Document) []float64 {
	g := doc.Geometry
	edges := []float64{g.MarginLeft, g.PageWidth - g.MarginRight}
	for _, p := range doc.Pages {
		for _, b := range p.Blocks {
			for _, c := range b.Cells {
				edges = append(edges, snap(c.X), snap(c.X+c.Width))
			}
		}
	}
	slices.Sort(edges)
	return slices.Compact(edges)
}

func snap(x float64) float64 {
	return math.Round(x*100) / 100
}

type writer struct {
	f      *excelize.File
	sheet  string
	doc    *layout.Document
	grid   []float64
	styles map[styleKey]int
	row    int
}

func (w *writer) setup() error {
	g := w.doc.Geometry
	lh := w.doc.Letterhead
	if err := w.f.SetDocProps(&excelize.DocProperties{
		Title:   lh.Title,
		Creator: lh.CompanyName,
	}); err != nil {
		return fmt.Errorf("set properties: %w", err)
	}

	size, orientation := 9, "portrait"
	if err := w.f.SetPageLayout(w.sheet, &excelize.PageLayoutOptions{Size: &size, Orientation: &orientation}); err != nil {
		return fmt.Errorf("set page layout: %w", err)
	}
	left, right := g.MarginLeft/25.4, g.MarginRight/25.4
	top, bottom := g.MarginTop/25.4, g.MarginBottom/25.4
	if err := w.f.SetPageMargins(w.sheet, &excelize.PageLayoutMarginsOptions{
		Left: &left, Right: &right, Top: &top, Bottom: &bottom,
	}); err != nil {
		return fmt.Errorf("set margins: %w", err)
	}
	noGrid := false
	if err := w.f.SetSheetView(w.sheet, 0, &excelize.ViewOptions{ShowGridLines: &noGrid}); err != nil {
		return fmt.Errorf("set sheet view: %w", err)
	}

	for i := 1; i < len(w.grid); i++ {
		col, err := excelize.ColumnNumberToName(i)
		if err != nil {
			return err
		}
		width := (w.grid[i] - w.grid[i-1]) / mmPerChar
		if err := w.f.SetColWidth(w.sheet, col, col, width); err != nil {
			return fmt.Errorf("set column %s width: %w", col, err)
		}
	}
	return nil
}

func (w *writer) pages() error {
	for i, p := range w.doc.Pages {
		if i > 0 {
			if err := w.f.InsertPageBreak(w.sheet, cellName(1, w.row+1)); err != nil {
				return fmt.Errorf("insert page break: %w", err)
			}
		}
		for _, b := range p.Blocks {
			var err error
			if b.Kind == layout.BlockLetterhead {
				err = w.letterhead(b, i == 0)
			} else {
				err = w.line(b, b.Cells, b.Height)
			}
			if err != nil {
				return fmt.Errorf("page %d %s: %w", p.Number, b.Kind, err)
			}
		}
	}
	return nil
}

// letterhead writes one spreadsheet row per letterhead line. The logo is
// placed once, on the first page.
func (w *writer) letterhead(b layout.Block, first bool) error {
	top := w.row + 1
	var ys []float64
	for _, c := range b.Cells {
		if !slices.Contains(ys, c.Y) {
			ys = append(ys, c.Y)
		}
	}
	slices.Sort(ys)

	used := 0.0
	for _, y := range ys {
		var cells []layout.PlacedCell
		height := 0.0
		for _, c := range b.Cells {
			if c.Y == y {
				cells = append(cells, c)
				height = c.Height
			}
		}
		if err := w.line(b, cells, height); err != nil {
			return err
		}
		used += height
	}
	if rest := b.Height - used; rest > 0 {
		if err := w.line(b, nil, rest); err != nil {
			return err
		}
	}

	if first && w.doc.Letterhead.Logo != nil {
		w.logo(w.doc.Letterhead.Logo, top)
	}
	return nil
}

func (w *writer) logo(logo *layout.Logo, row int) {
	ext := ""
	switch logo.MimeType {
	case "image/png":
		ext = ".png"
	case "image/jpeg":
		ext = ".jpg"
	case "image/gif":
		ext = ".gif"
	default:
		log.Warn().Str("mime", logo.MimeType).Msg("unsupported logo type, skipping")
		return
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(logo.Data))
	if err != nil || cfg.Width == 0 || cfg.Height == 0 {
		log.Warn().Err(err).Msg("failed to decode logo, skipping")
		return
	}

	g := w.doc.Geometry
	maxW := g.LogoWidth * pxPerMM
	maxH := (g.LetterheadHeight - 4) * pxPerMM
	scale := min(maxW/float64(cfg.Width), maxH/float64(cfg.Height))
	err = w.f.AddPictureFromBytes(w.sheet, cellName(1, row), &excelize.Picture{
		Extension: ext,
		File:      logo.Data,
		Format: &excelize.GraphicOptions{
			ScaleX:          scale,
			ScaleY:          scale,
			LockAspectRatio: true,
			Positioning:     "oneCell",
		},
	})
	if err != nil {
		log.Warn().Err(err).Msg("failed to embed logo, skipping")
	}
}

// line writes cells on a new spreadsheet row of the given height in mm.
func (w *writer) line(b layout.Block, cells []layout.PlacedCell, height float64) error {
	w.row++
	if err := w.f.SetRowHeight(w.sheet, w.row, height*ptPerMM); err != nil {
		return fmt.Errorf("set row height: %w", err)
	}
	for _, c := range cells {
		if err := w.cell(b, c); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) cell(b layout.Block, c layout.PlacedCell) error {
	first := w.column(c.X)
	last := w.column(c.X+c.Width) - 1
	if last < first {
		last = first
	}
	start := cellName(first, w.row)
	end := cellName(last, w.row)

	if last > first {
		if err := w.f.MergeCell(w.sheet, start, end); err != nil {
			return fmt.Errorf("merge %s:%s: %w", start, end, err)
		}
	}

	if c.Number != nil {
		v := c.Number.InexactFloat64()
		if err := w.f.SetCellFloat(w.sheet, start, v, int(c.Format.Places()), 64); err != nil {
			return fmt.Errorf("set %s: %w", start, err)
		}
	} else if c.Text != "" {
		if err := w.f.SetCellStr(w.sheet, start, c.Text); err != nil {
			return fmt.Errorf("set %s: %w", start, err)
		}
	}

	id, err := w.style(keyFor(b, c))
	if err != nil {
		return err
	}
	return w.f.SetCellStyle(w.sheet, start, end, id)
}

// column returns the 1-based grid column starting at x.
func (w *writer) column(x float64) int {
	i, _ := slices.BinarySearch(w.grid, snap(x))
	return i + 1
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
