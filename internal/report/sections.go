// Package report turns a computed settlement into the ordered section
// descriptors shared by every output format.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anyulbade/quota-settlement/internal/fx"
	"github.com/anyulbade/quota-settlement/internal/layout"
	"github.com/anyulbade/quota-settlement/internal/model"
	"github.com/anyulbade/quota-settlement/internal/settlement"
)

const (
	Title     = "Quota Settlement"
	NoRecords = "No records"
)

var hundred = decimal.NewFromInt(100)

// Build returns the letterhead and the sections of a settlement report:
// quotas, progress, landings, deductions and the settlement summary. Rows
// keep the order of res; every figure is taken from res as computed.
func Build(res *settlement.Result, logo *model.Logo, generatedAt time.Time) (layout.Letterhead, []layout.Section) {
	lh := layout.Letterhead{
		CompanyName: res.Period.Company.Name,
		TaxID:       res.Period.Company.TaxID,
		Address:     res.Period.Company.Address,
		SeasonName:  res.Period.SeasonName,
		Title:       Title,
		GeneratedAt: res.LocalTime(generatedAt),
	}
	if logo != nil && len(logo.Data) > 0 {
		lh.Logo = &layout.Logo{Data: logo.Data, MimeType: logo.MimeType}
	}

	return lh, []layout.Section{
		quotaSection(res),
		progressSection(res),
		landingSection(res),
		deductionSection(res),
		summarySection(res),
	}
}

func quotaSection(res *settlement.Result) layout.Section {
	cols := []layout.Column{
		{Label: "#", Width: 8, Format: layout.FormatIndex},
		{Label: "Zone", Width: 14, Format: layout.FormatCode},
		{Label: "Name", Width: 52, Format: layout.FormatText},
		{Label: "Ownership", Width: 20, Format: layout.FormatCode},
		{Label: "State", Width: 20, Format: layout.FormatCode},
		{Label: "Share", Width: 22, Format: layout.FormatShare},
		{Label: "Price/t (USD)", Width: 26, Format: layout.FormatMoney},
		{Label: "Limit (t)", Width: 28, Format: layout.FormatTons},
	}

	rows := make([]layout.Row, 0, len(res.Quotas))
	for i, q := range res.Quotas {
		rows = append(rows, layout.Row{
			index(i),
			layout.Text(q.ZoneID),
			layout.Text(q.Name),
			layout.Text(q.OwnershipLabel()),
			layout.Text(q.StateLabel()),
			layout.Number(q.SharePercent),
			layout.Number(q.PricePerTon),
			layout.Number(q.LimitTons),
		})
	}

	return layout.Section{
		Title:   "Quota Allocations",
		Columns: cols,
		Rows:    orEmpty(rows, len(cols)),
		Totals: layout.Row{
			layout.Text("TOTAL").Spanning(7),
			layout.Number(res.Progress.TotalQuotaTons),
		},
		Style: layout.StyleQuota,
	}
}

func progressSection(res *settlement.Result) layout.Section {
	p := res.Progress
	return layout.Section{
		Title: "Season Progress",
		Columns: []layout.Column{
			{Label: "Quota (t)", Width: 47.5, Format: layout.FormatTons},
			{Label: "Landed (t)", Width: 47.5, Format: layout.FormatTons},
			{Label: "Balance (t)", Width: 47.5, Format: layout.FormatTons},
			{Label: "Advance", Width: 47.5, Format: layout.FormatPercent},
		},
		Rows: []layout.Row{{
			layout.Number(p.TotalQuotaTons),
			layout.Number(p.TotalLandedTons),
			layout.Number(p.BalanceTons),
			layout.Number(p.PercentAdvanced.Mul(hundred)),
		}},
		Style: layout.StyleProgress,
	}
}

func landingSection(res *settlement.Result) layout.Section {
	cols := []layout.Column{
		{Label: "#", Width: 8, Format: layout.FormatIndex},
		{Label: "Unloaded at", Width: 34, Format: layout.FormatDateTime},
		{Label: "Species", Width: 60, Format: layout.FormatText},
		{Label: "Tonnage (t)", Width: 28, Format: layout.FormatTons},
		{Label: "Price/t (USD)", Width: 28, Format: layout.FormatMoney},
		{Label: "Amount (USD)", Width: 32, Format: layout.FormatMoney},
	}

	price := res.Totals.PricePerTonUSD
	rows := make([]layout.Row, 0, len(res.Landings))
	for i, l := range res.Landings {
		rows = append(rows, layout.Row{
			index(i),
			layout.Text(layout.FormatTime(res.LocalTime(l.UnloadedAt), layout.FormatDateTime)),
			layout.Text(species(l.Landing)),
			layout.Number(l.Tonnage),
			layout.Number(price),
			layout.Number(l.AmountDue),
		})
	}

	return layout.Section{
		Title:   "Landings",
		Columns: cols,
		Rows:    orEmpty(rows, len(cols)),
		Totals: layout.Row{
			layout.Text("TOTAL").Spanning(3),
			layout.Number(res.Progress.TotalLandedTons),
			layout.Text(""),
			layout.Number(res.Totals.TotalIncomeUSD),
		},
		Style: layout.StyleLanding,
	}
}

func deductionSection(res *settlement.Result) layout.Section {
	domestic := string(model.CurrencyDomestic)
	foreign := string(model.CurrencyForeign)
	cols := []layout.Column{
		{Label: "#", Width: 8, Format: layout.FormatIndex},
		{Label: "Date", Width: 22, Format: layout.FormatDate},
		{Label: "Description", Width: 70, Format: layout.FormatText},
		{Label: "Cur.", Width: 14, Format: layout.FormatCode},
		{Label: "Rate", Width: 20, Format: layout.FormatRate},
		{Label: "Amount (" + domestic + ")", Width: 28, Format: layout.FormatMoney},
		{Label: "Amount (" + foreign + ")", Width: 28, Format: layout.FormatMoney},
	}

	rows := make([]layout.Row, 0, len(res.Deductions))
	for i, d := range res.Deductions {
		rows = append(rows, layout.Row{
			index(i),
			layout.Text(d.OperationDay.String()),
			layout.Text(d.Label()),
			layout.Text(string(d.Currency)),
			layout.Number(d.Rate),
			layout.Number(d.AmountDomestic),
			layout.Number(d.AmountForeign),
		})
	}

	return layout.Section{
		Title:   "Deductions",
		Columns: cols,
		Rows:    orEmpty(rows, len(cols)),
		Totals: layout.Row{
			layout.Text("TOTAL").Spanning(5),
			layout.Number(res.Totals.TotalDeductionsDomestic),
			layout.Number(res.Totals.TotalDeductionsForeign),
		},
		Style: layout.StyleDeduction,
	}
}

func summarySection(res *settlement.Result) layout.Section {
	t := res.Totals
	rows := []layout.Row{
		{layout.Text("Gross catch value (USD)"), layout.Number(t.TotalIncomeUSD)},
		{layout.Text("Price per ton (USD)"), layout.Number(t.PricePerTonUSD)},
		{layout.Text("Settlement base"), layout.NumberAs(t.BasePercent, layout.FormatPercent)},
		{layout.Text("Liquidation amount (USD)"), layout.Number(t.LiquidationAmount)},
		{layout.Text("Total deductions (USD)"), layout.Number(t.TotalDeductionsForeign)},
	}
	if dates := res.FallbackDates(); len(dates) > 0 {
		rows = append(rows, layout.Row{layout.Text(fallbackNote(dates)).Spanning(2)})
	}

	return layout.Section{
		Title: "Settlement Summary",
		Columns: []layout.Column{
			{Label: "Concept", Width: 130, Format: layout.FormatText},
			{Label: "Amount", Width: 60, Format: layout.FormatMoney},
		},
		Rows: rows,
		Totals: layout.Row{
			layout.Text("NET BALANCE (USD)"),
			layout.Number(t.NetBalanceUSD),
		},
		Style: layout.StyleSummary,
	}
}

func fallbackNote(dates []fx.Date) string {
	days := make([]string, len(dates))
	for i, d := range dates {
		days[i] = d.String()
	}
	return fmt.Sprintf("No exchange rate within %d days for %s; rate %s applied.",
		fx.LookbackDays, strings.Join(days, ", "), fx.FallbackRate.StringFixed(3))
}

func index(i int) layout.Cell {
	return layout.Cell{Text: strconv.Itoa(i + 1)}
}

func species(l model.Landing) string {
	if l.SpeciesName == "" {
		return l.SpeciesCode
	}
	if l.SpeciesCode == "" {
		return l.SpeciesName
	}
	return l.SpeciesCode + " - " + l.SpeciesName
}

func orEmpty(rows []layout.Row, cols int) []layout.Row {
	if len(rows) > 0 {
		return rows
	}
	return []layout.Row{{layout.Text(NoRecords).Spanning(cols)}}
}
