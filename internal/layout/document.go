package layout

import (
	"time"

	"github.com/shopspring/decimal"
)

// Column is one column of a section. Width is in millimetres.
type Column struct {
	Label  string
	Width  float64
	Format Format
	Align  Align
}

// Cell is one unrendered value. Number cells are formatted by the engine;
// Span > 1 merges the cell over the following columns.
type Cell struct {
	Text   string
	Number *decimal.Decimal
	Format Format
	Span   int
}

func Text(s string) Cell {
	return Cell{Text: s}
}

func Number(d decimal.Decimal) Cell {
	return Cell{Number: &d}
}

func NumberAs(d decimal.Decimal, f Format) Cell {
	return Cell{Number: &d, Format: f}
}

func (c Cell) Spanning(n int) Cell {
	c.Span = n
	return c
}

func (c Cell) span() int {
	if c.Span < 1 {
		return 1
	}
	return c.Span
}

type Row []Cell

// Section describes one table block of the report, independent of backend.
type Section struct {
	Title   string
	Columns []Column
	Rows    []Row
	Totals  Row
	Style   StyleToken
}

func (s Section) Width() float64 {
	var w float64
	for _, c := range s.Columns {
		w += c.Width
	}
	return w
}

type Logo struct {
	Data     []byte
	MimeType string
}

// Letterhead is repeated at the top of every page.
type Letterhead struct {
	CompanyName string
	TaxID       string
	Address     string
	SeasonName  string
	Title       string
	GeneratedAt time.Time
	Logo        *Logo
}

type BlockKind int

const (
	BlockLetterhead BlockKind = iota
	BlockTitle
	BlockHeader
	BlockRow
	BlockTotals
	BlockStamp
)

func (k BlockKind) String() string {
	switch k {
	case BlockLetterhead:
		return "letterhead"
	case BlockTitle:
		return "title"
	case BlockHeader:
		return "header"
	case BlockRow:
		return "row"
	case BlockTotals:
		return "totals"
	case BlockStamp:
		return "stamp"
	}
	return "unknown"
}

// PlacedCell is a cell positioned on a page with its final display text.
// Number carries the display-rounded value of numeric cells.
type PlacedCell struct {
	X, Y          float64
	Width, Height float64
	Column        int
	Span          int
	Text          string
	Number        *decimal.Decimal
	Format        Format
	Align         Align
	Bold          bool
	FontSize      float64
}

type Block struct {
	Kind      BlockKind
	Section   int
	RowIndex  int
	Y, Height float64
	Style     StyleToken
	Banded    bool
	Continued bool
	Cells     []PlacedCell
}

type Page struct {
	Number int
	Total  int
	Blocks []Block
}

// Document is the laid-out report shared by every backend.
type Document struct {
	Geometry   Geometry
	Letterhead Letterhead
	Sections   []Section
	Pages      []Page
}

// Value is one displayed cell, in drawing order.
type Value struct {
	Page   int
	Kind   BlockKind
	Text   string
	Number *decimal.Decimal
}

// Values lists every non-empty displayed cell in page and drawing order.
func (d *Document) Values() []Value {
	var out []Value
	for _, p := range d.Pages {
		for _, b := range p.Blocks {
			for _, c := range b.Cells {
				if c.Text == "" {
					continue
				}
				out = append(out, Value{Page: p.Number, Kind: b.Kind, Text: c.Text, Number: c.Number})
			}
		}
	}
	return out
}
