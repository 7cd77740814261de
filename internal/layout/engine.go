// Package layout places report sections onto fixed-size pages. The result is
// a backend-neutral Document of positioned blocks that the PDF and
// spreadsheet renderers draw without recomputing any value or position.
package layout

import (
	"errors"
	"fmt"
)

var ErrLayout = errors.New("invalid section layout")

type Labels struct {
	Continued string
	PageStamp string
	TaxID     string
	Season    string
	Generated string
}

func DefaultLabels() Labels {
	return Labels{
		Continued: "(continued)",
		PageStamp: "Page %d of %d",
		TaxID:     "Tax ID",
		Season:    "Season",
		Generated: "Generated",
	}
}

type Engine struct {
	geom    Geometry
	measure Measurer
	labels  Labels
}

func NewEngine(geom Geometry, m Measurer) (*Engine, error) {
	if err := geom.Validate(); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.New("layout: measurer is required")
	}
	return &Engine{geom: geom, measure: m, labels: DefaultLabels()}, nil
}

func (e *Engine) Geometry() Geometry {
	return e.geom
}

// state is the paginator's position in the page/section state machine.
type state int

const (
	awaitingHeader state = iota
	renderingSection
	rowOverflow
	pageBreak
	sectionComplete
	done
)

// Paginate lays out sections in order. Running out of vertical space always
// resolves into a page break; rows are never split across pages.
func (e *Engine) Paginate(lh Letterhead, sections []Section) (*Document, error) {
	for i, s := range sections {
		if err := e.check(s); err != nil {
			return nil, fmt.Errorf("section %d %q: %w", i, s.Title, err)
		}
	}

	r := &run{Engine: e, lh: lh, sections: sections}
	st := awaitingHeader
	for st != done {
		st = r.step(st)
	}
	r.stampPages()

	doc := &Document{
		Geometry:   e.geom,
		Letterhead: lh,
		Sections:   sections,
		Pages:      make([]Page, len(r.pages)),
	}
	for i, p := range r.pages {
		doc.Pages[i] = *p
	}
	return doc, nil
}

func (e *Engine) check(s Section) error {
	if len(s.Columns) == 0 {
		return fmt.Errorf("%w: no columns", ErrLayout)
	}
	if s.Width() > e.geom.ContentWidth()+0.01 {
		return fmt.Errorf("%w: columns span %.1fmm, page allows %.1fmm", ErrLayout, s.Width(), e.geom.ContentWidth())
	}
	rows := s.Rows
	if s.Totals != nil {
		rows = append(rows[:len(rows):len(rows)], s.Totals)
	}
	for i, row := range rows {
		n := 0
		for _, c := range row {
			n += c.span()
		}
		if n > len(s.Columns) {
			return fmt.Errorf("%w: row %d covers %d of %d columns", ErrLayout, i, n, len(s.Columns))
		}
		bold := s.Totals != nil && i == len(rows)-1
		if err := e.checkNumbers(s, row, i, bold); err != nil {
			return err
		}
	}
	return nil
}

// checkNumbers rejects a row whose formatted figures do not fit their cells.
// Text may be truncated on the page; a figure may not.
func (e *Engine) checkNumbers(s Section, row Row, i int, bold bool) error {
	col := 0
	for _, c := range row {
		span := c.span()
		if c.Number != nil {
			var w float64
			for _, sc := range s.Columns[col : col+span] {
				w += sc.Width
			}
			format := c.Format
			if format == FormatAuto {
				format = s.Columns[col].Format
			}
			text := FormatNumber(*c.Number, format)
			if e.measure.TextWidth(text, e.geom.FontSize, bold) > w-2*e.geom.CellPadding {
				return fmt.Errorf("%w: row %d value %s does not fit %.1fmm column %q",
					ErrLayout, i, text, w, s.Columns[col].Label)
			}
		}
		col += span
	}
	return nil
}

type run struct {
	*Engine
	lh       Letterhead
	sections []Section

	pages []*Page
	y     float64

	sec     int
	row     int
	started bool
}

func (r *run) step(st state) state {
	switch st {
	case awaitingHeader:
		r.newPage()
		if r.sec >= len(r.sections) {
			return done
		}
		return renderingSection

	case renderingSection:
		s := r.sections[r.sec]
		if !r.started {
			if !r.fits(r.geom.sectionHeadroom()) && r.pageHasContent() {
				return pageBreak
			}
			r.drawTitle(s, false)
			r.drawHeader(s)
			r.started = true
		}
		if r.row >= len(s.Rows) {
			return sectionComplete
		}
		if !r.fits(r.geom.RowHeight) {
			return rowOverflow
		}
		r.drawRow(s, r.row)
		r.row++
		return renderingSection

	case rowOverflow:
		return pageBreak

	case pageBreak:
		r.newPage()
		if r.started {
			s := r.sections[r.sec]
			r.drawTitle(s, true)
			r.drawHeader(s)
		}
		return renderingSection

	case sectionComplete:
		s := r.sections[r.sec]
		if s.Totals != nil {
			if !r.fits(r.geom.TotalsHeight) {
				return pageBreak
			}
			r.drawTotals(s)
		}
		r.y += r.geom.SectionGap
		r.sec++
		r.row = 0
		r.started = false
		if r.sec >= len(r.sections) {
			return done
		}
		return renderingSection
	}
	return done
}

func (r *run) page() *Page {
	return r.pages[len(r.pages)-1]
}

func (r *run) fits(h float64) bool {
	return r.y+h <= r.geom.contentBottom()+1e-9
}

// pageHasContent reports whether the current page holds anything besides
// its letterhead.
func (r *run) pageHasContent() bool {
	return len(r.page().Blocks) > 1
}

func (r *run) newPage() {
	p := &Page{Number: len(r.pages) + 1}
	r.pages = append(r.pages, p)
	r.y = r.geom.MarginTop
	r.drawLetterhead()
	r.y = r.geom.contentTop()
}

func (r *run) drawLetterhead() {
	g := r.geom
	left := g.MarginLeft
	if r.lh.Logo != nil && len(r.lh.Logo.Data) > 0 {
		left += g.LogoWidth + 2
	}
	split := g.MarginLeft + g.ContentWidth()*0.55
	leftW := split - left
	rightW := g.MarginLeft + g.ContentWidth() - split
	lineH := (g.LetterheadHeight - 4) / 4

	line := func(x, w float64, i int, text string, size float64, bold bool, align Align) PlacedCell {
		return PlacedCell{
			X:        x,
			Y:        g.MarginTop + float64(i)*lineH,
			Width:    w,
			Height:   lineH,
			Span:     1,
			Text:     Truncate(text, w, size, bold, r.measure),
			Align:    align,
			Bold:     bold,
			FontSize: size,
		}
	}

	var cells []PlacedCell
	cells = append(cells, line(left, leftW, 0, r.lh.CompanyName, g.CompanyFontSize, true, AlignLeft))
	if r.lh.TaxID != "" {
		cells = append(cells, line(left, leftW, 1, r.labels.TaxID+": "+r.lh.TaxID, g.FontSize, false, AlignLeft))
	}
	if r.lh.Address != "" {
		cells = append(cells, line(left, leftW, 2, r.lh.Address, g.FontSize, false, AlignLeft))
	}
	cells = append(cells, line(split, rightW, 0, r.lh.Title, g.TitleFontSize, true, AlignRight))
	if r.lh.SeasonName != "" {
		cells = append(cells, line(split, rightW, 1, r.labels.Season+": "+r.lh.SeasonName, g.FontSize, false, AlignRight))
	}
	if !r.lh.GeneratedAt.IsZero() {
		stamp := r.labels.Generated + ": " + FormatTime(r.lh.GeneratedAt, FormatDateTime)
		cells = append(cells, line(split, rightW, 2, stamp, g.FontSize, false, AlignRight))
	}

	r.page().Blocks = append(r.page().Blocks, Block{
		Kind:    BlockLetterhead,
		Section: -1,
		Y:       g.MarginTop,
		Height:  g.LetterheadHeight,
		Cells:   cells,
	})
}

func (r *run) drawTitle(s Section, continued bool) {
	g := r.geom
	text := s.Title
	if continued {
		text += " " + r.labels.Continued
	}
	w := s.Width()
	r.push(Block{
		Kind:      BlockTitle,
		Section:   r.sec,
		Height:    g.TitleHeight,
		Style:     s.Style,
		Continued: continued,
		Cells: []PlacedCell{{
			X:        g.MarginLeft,
			Width:    w,
			Height:   g.TitleHeight,
			Span:     len(s.Columns),
			Text:     Truncate(text, w-2*g.CellPadding, g.TitleFontSize, true, r.measure),
			Align:    AlignLeft,
			Bold:     true,
			FontSize: g.TitleFontSize,
		}},
	})
}

func (r *run) drawHeader(s Section) {
	g := r.geom
	cells := make([]PlacedCell, len(s.Columns))
	x := g.MarginLeft
	for i, c := range s.Columns {
		cells[i] = PlacedCell{
			X:        x,
			Width:    c.Width,
			Height:   g.HeaderHeight,
			Column:   i,
			Span:     1,
			Text:     Truncate(c.Label, c.Width-2*g.CellPadding, g.HeaderFontSize, true, r.measure),
			Align:    AlignCenter,
			Bold:     true,
			FontSize: g.HeaderFontSize,
		}
		x += c.Width
	}
	r.push(Block{Kind: BlockHeader, Section: r.sec, Height: g.HeaderHeight, Style: s.Style, Cells: cells})
}

func (r *run) drawRow(s Section, i int) {
	r.push(Block{
		Kind:     BlockRow,
		Section:  r.sec,
		RowIndex: i,
		Height:   r.geom.RowHeight,
		Style:    s.Style,
		Banded:   i%2 == 1,
		Cells:    r.placeCells(s, s.Rows[i], r.geom.RowHeight, false),
	})
}

func (r *run) drawTotals(s Section) {
	r.push(Block{
		Kind:     BlockTotals,
		Section:  r.sec,
		RowIndex: -1,
		Height:   r.geom.TotalsHeight,
		Style:    s.Style,
		Cells:    r.placeCells(s, s.Totals, r.geom.TotalsHeight, true),
	})
}

func (r *run) placeCells(s Section, row Row, height float64, bold bool) []PlacedCell {
	g := r.geom
	cells := make([]PlacedCell, 0, len(row))
	x := g.MarginLeft
	col := 0
	for _, c := range row {
		span := c.span()
		var w float64
		for _, sc := range s.Columns[col : col+span] {
			w += sc.Width
		}
		column := s.Columns[col]

		format := c.Format
		if format == FormatAuto {
			format = column.Format
		}
		align := column.Align
		if align == AlignAuto || c.Format != FormatAuto || span > 1 {
			align = format.align()
		}

		pc := PlacedCell{
			X:        x,
			Width:    w,
			Height:   height,
			Column:   col,
			Span:     span,
			Format:   format,
			Align:    align,
			Bold:     bold,
			FontSize: g.FontSize,
		}
		text := c.Text
		if c.Number != nil {
			rounded := Round(*c.Number, format)
			pc.Number = &rounded
			text = FormatNumber(*c.Number, format)
		}
		pc.Text = Truncate(text, w-2*g.CellPadding, g.FontSize, bold, r.measure)
		cells = append(cells, pc)

		x += w
		col += span
	}
	return cells
}

func (r *run) push(b Block) {
	b.Y = r.y
	for i := range b.Cells {
		b.Cells[i].Y = r.y
	}
	r.page().Blocks = append(r.page().Blocks, b)
	r.y += b.Height
}

// stampPages runs once, after every page exists, so each stamp carries the
// final page count.
func (r *run) stampPages() {
	g := r.geom
	total := len(r.pages)
	y := g.PageHeight - g.MarginBottom - g.StampHeight
	for i, p := range r.pages {
		p.Number = i + 1
		p.Total = total
		p.Blocks = append(p.Blocks, Block{
			Kind:     BlockStamp,
			Section:  -1,
			RowIndex: -1,
			Y:        y,
			Height:   g.StampHeight,
			Cells: []PlacedCell{{
				X:        g.MarginLeft,
				Y:        y,
				Width:    g.ContentWidth(),
				Height:   g.StampHeight,
				Span:     1,
				Text:     fmt.Sprintf(r.labels.PageStamp, i+1, total),
				Align:    AlignRight,
				FontSize: g.FontSize,
			}},
		})
	}
}
