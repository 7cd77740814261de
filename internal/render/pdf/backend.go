// Package pdf draws a laid-out report document as a PDF file.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog/log"

	"github.com/anyulbade/quota-settlement/internal/layout"
)

const (
	ContentType = "application/pdf"
	logoName    = "letterhead-logo"
	// ptToMM converts a font size in points to millimetres.
	ptToMM = 25.4 / 72
)

type Option func(*Backend)

// WithCompression toggles stream compression. Tests turn it off to read the
// drawn text back from the output.
func WithCompression(on bool) Option {
	return func(b *Backend) {
		b.compress = on
	}
}

func WithCreator(name string) Option {
	return func(b *Backend) {
		b.creator = name
	}
}

type Backend struct {
	compress bool
	creator  string
}

func New(opts ...Option) *Backend {
	b := &Backend{compress: true, creator: "quota-settlement"}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Backend) ContentType() string { return ContentType }

func (b *Backend) Extension() string { return "pdf" }

func (b *Backend) Render(doc *layout.Document) ([]byte, error) {
	g := doc.Geometry
	f := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: g.PageWidth, Ht: g.PageHeight},
	})
	f.SetAutoPageBreak(false, 0)
	f.SetMargins(g.MarginLeft, g.MarginTop, g.MarginRight)
	f.SetCompression(b.compress)
	f.SetTitle(doc.Letterhead.Title, true)
	f.SetAuthor(doc.Letterhead.CompanyName, true)
	f.SetCreator(b.creator, true)
	if !doc.Letterhead.GeneratedAt.IsZero() {
		f.SetCreationDate(doc.Letterhead.GeneratedAt)
	}

	d := &drawer{
		f:    f,
		tr:   f.UnicodeTranslatorFromDescriptor(""),
		geom: g,
	}
	d.logo = d.registerLogo(doc.Letterhead.Logo)

	for _, p := range doc.Pages {
		f.AddPage()
		for _, blk := range p.Blocks {
			d.block(blk)
		}
	}

	var buf bytes.Buffer
	if err := f.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

type logoBox struct {
	w, h float64
}

type drawer struct {
	f    *fpdf.Fpdf
	tr   func(string) string
	geom layout.Geometry
	logo *logoBox
}

// registerLogo embeds the logo once for all pages. An unreadable logo is
// dropped and the letterhead is drawn without it.
func (d *drawer) registerLogo(logo *layout.Logo) *logoBox {
	if logo == nil || len(logo.Data) == 0 {
		return nil
	}
	imageType := ""
	switch logo.MimeType {
	case "image/png":
		imageType = "PNG"
	case "image/jpeg":
		imageType = "JPG"
	case "image/gif":
		imageType = "GIF"
	default:
		log.Warn().Str("mime", logo.MimeType).Msg("unsupported logo type, skipping")
		return nil
	}

	info := d.f.RegisterImageOptionsReader(logoName, fpdf.ImageOptions{ImageType: imageType}, bytes.NewReader(logo.Data))
	if d.f.Err() || info == nil {
		log.Warn().Err(d.f.Error()).Msg("failed to decode logo, skipping")
		d.f.ClearError()
		return nil
	}

	maxW := d.geom.LogoWidth
	maxH := d.geom.LetterheadHeight - 4
	w, h := info.Width(), info.Height()
	if w <= 0 || h <= 0 {
		return nil
	}
	scale := min(maxW/w, maxH/h)
	return &logoBox{w: w * scale, h: h * scale}
}

func (d *drawer) block(b layout.Block) {
	theme := b.Style.Theme()
	switch b.Kind {
	case layout.BlockLetterhead:
		if d.logo != nil {
			d.f.ImageOptions(logoName, d.geom.MarginLeft, d.geom.MarginTop, d.logo.w, d.logo.h,
				false, fpdf.ImageOptions{}, 0, "")
		}
		for _, c := range b.Cells {
			d.text(c, layout.Black, 0)
		}
		y := b.Y + b.Height - 2
		d.setDraw(layout.Grey)
		d.f.SetLineWidth(0.3)
		d.f.Line(d.geom.MarginLeft, y, d.geom.PageWidth-d.geom.MarginRight, y)

	case layout.BlockTitle:
		c := b.Cells[0]
		d.text(c, theme.Accent, d.geom.CellPadding)
		d.setDraw(theme.Accent)
		d.f.SetLineWidth(0.4)
		d.f.Line(c.X, c.Y+c.Height-0.8, c.X+c.Width, c.Y+c.Height-0.8)

	case layout.BlockHeader:
		for _, c := range b.Cells {
			d.box(c, &theme.HeaderFill, theme.Border)
			d.text(c, theme.HeaderText, d.geom.CellPadding)
		}

	case layout.BlockRow:
		for _, c := range b.Cells {
			var fill *layout.Color
			if b.Banded {
				fill = &theme.BandFill
			}
			d.box(c, fill, theme.Border)
			d.text(c, layout.Black, d.geom.CellPadding)
		}

	case layout.BlockTotals:
		for _, c := range b.Cells {
			d.box(c, &theme.TotalsFill, theme.Border)
			d.text(c, theme.TotalsText, d.geom.CellPadding)
		}

	case layout.BlockStamp:
		for _, c := range b.Cells {
			d.text(c, layout.Grey, 0)
		}
	}
}

func (d *drawer) box(c layout.PlacedCell, fill *layout.Color, border layout.Color) {
	d.setDraw(border)
	d.f.SetLineWidth(0.1)
	style := "D"
	if fill != nil {
		d.f.SetFillColor(int(fill.R), int(fill.G), int(fill.B))
		style = "FD"
	}
	d.f.Rect(c.X, c.Y, c.Width, c.Height, style)
}

func (d *drawer) text(c layout.PlacedCell, color layout.Color, padding float64) {
	if c.Text == "" {
		return
	}
	d.f.SetFont(fontFamily, fontStyle(c.Bold), c.FontSize)
	d.f.SetTextColor(int(color.R), int(color.G), int(color.B))

	s := d.tr(c.Text)
	w := d.f.GetStringWidth(s)
	var x float64
	switch c.Align {
	case layout.AlignRight:
		x = c.X + c.Width - padding - w
	case layout.AlignCenter:
		x = c.X + (c.Width-w)/2
	default:
		x = c.X + padding
	}
	baseline := c.Y + (c.Height+c.FontSize*ptToMM*0.7)/2
	d.f.Text(x, baseline, s)
}

func (d *drawer) setDraw(c layout.Color) {
	d.f.SetDrawColor(int(c.R), int(c.G), int(c.B))
}
