// Package render defines the output formats a laid-out report can be written
// in. Backends live in subpackages and only draw; they never move a block or
// change a value computed by the layout engine.
package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anyulbade/quota-settlement/internal/layout"
)

var ErrUnknownFormat = errors.New("unknown report format")

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPDF, FormatXLSX:
		return f, nil
	case "":
		return FormatPDF, nil
	case "excel", "xls":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Backend writes a laid-out document in one format.
type Backend interface {
	Render(doc *layout.Document) ([]byte, error)
	ContentType() string
	Extension() string
}

// Registry maps formats to backends.
type Registry struct {
	backends map[Format]Backend
}

func NewRegistry() *Registry {
	return &Registry{backends: make(map[Format]Backend)}
}

func (r *Registry) Register(f Format, b Backend) {
	r.backends[f] = b
}

func (r *Registry) Get(f Format) (Backend, error) {
	b, ok := r.backends[f]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	return b, nil
}

func (r *Registry) Formats() []Format {
	out := make([]Format, 0, len(r.backends))
	for _, f := range []Format{FormatPDF, FormatXLSX} {
		if _, ok := r.backends[f]; ok {
			out = append(out, f)
		}
	}
	return out
}
