package pdf

import (
	"sync"

	"github.com/go-pdf/fpdf"
)

const fontFamily = "Helvetica"

// Metrics measures text with the same core font and encoding the PDF backend
// draws with. It is safe for concurrent use.
type Metrics struct {
	mu  sync.Mutex
	doc *fpdf.Fpdf
	tr  func(string) string
}

func NewMetrics() *Metrics {
	doc := fpdf.New("P", "mm", "A4", "")
	return &Metrics{doc: doc, tr: doc.UnicodeTranslatorFromDescriptor("")}
}

// TextWidth returns the width of s in millimetres at size points.
func (m *Metrics) TextWidth(s string, size float64, bold bool) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc.SetFont(fontFamily, fontStyle(bold), size)
	return m.doc.GetStringWidth(m.tr(s))
}

func fontStyle(bold bool) string {
	if bold {
		return "B"
	}
	return ""
}
