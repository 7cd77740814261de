package layout

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Format selects how a cell value is displayed. FormatAuto on a cell defers
// to its column.
type Format int

const (
	FormatAuto Format = iota
	FormatText
	FormatIndex
	FormatCode
	FormatInteger
	FormatTons
	FormatMoney
	FormatRate
	FormatPercent
	FormatShare
	FormatDate
	FormatDateTime
)

func (f Format) Numeric() bool {
	switch f {
	case FormatInteger, FormatTons, FormatMoney, FormatRate, FormatPercent, FormatShare:
		return true
	}
	return false
}

// Places is the number of decimals shown for numeric formats.
func (f Format) Places() int32 {
	switch f {
	case FormatTons, FormatRate:
		return 3
	case FormatMoney, FormatPercent:
		return 2
	case FormatShare:
		return 4
	}
	return 0
}

func (f Format) align() Align {
	switch {
	case f.Numeric():
		return AlignRight
	case f == FormatIndex || f == FormatCode:
		return AlignCenter
	}
	return AlignLeft
}

type Align int

const (
	AlignAuto Align = iota
	AlignLeft
	AlignCenter
	AlignRight
)

var printer = message.NewPrinter(language.English)

// Round applies the display rounding of f to d.
func Round(d decimal.Decimal, f Format) decimal.Decimal {
	return d.Round(f.Places())
}

// FormatNumber renders d for display with thousands grouping. This is the
// only place numbers are rounded.
func FormatNumber(d decimal.Decimal, f Format) string {
	if f == FormatIndex {
		return d.Round(0).String()
	}
	v := Round(d, f).InexactFloat64()
	verb := "%." + strconv.Itoa(int(f.Places())) + "f"
	if f == FormatPercent || f == FormatShare {
		verb += "%%"
	}
	return printer.Sprintf(verb, v)
}

func FormatTime(t time.Time, f Format) string {
	if t.IsZero() {
		return ""
	}
	if f == FormatDateTime {
		return t.Format("2006-01-02 15:04")
	}
	return t.Format("2006-01-02")
}

func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatText:
		return "text"
	case FormatIndex:
		return "index"
	case FormatCode:
		return "code"
	case FormatInteger:
		return "integer"
	case FormatTons:
		return "tons"
	case FormatMoney:
		return "money"
	case FormatRate:
		return "rate"
	case FormatPercent:
		return "percent"
	case FormatShare:
		return "share"
	case FormatDate:
		return "date"
	case FormatDateTime:
		return "datetime"
	}
	return fmt.Sprintf("format(%d)", int(f))
}
